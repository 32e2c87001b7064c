package common

import (
	"time"

	equbdomain "equb-app-go/internal/domain/equb"
	memberdomain "equb-app-go/internal/domain/member"
	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

type EqubResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Cadence      string          `json:"cadence"`
	BaseAmount   decimal.Decimal `json:"baseAmount"`
	StartDate    string          `json:"startDate"`
	Status       string          `json:"status"`
	CurrentRound int             `json:"currentRound"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type PeriodResponse struct {
	ID          string `json:"id"`
	EqubID      string `json:"equbId"`
	Sequence    int    `json:"sequence"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	IsCompleted bool   `json:"isCompleted"`
}

type PersonResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Address *string `json:"address"`
}

type MemberResponse struct {
	ID                string          `json:"id"`
	EqubID            string          `json:"equbId"`
	PersonID          string          `json:"personId"`
	Share             string          `json:"share"`
	IsActive          bool            `json:"isActive"`
	HasReceivedPayout bool            `json:"hasReceivedPayout"`
	CreatedAt         time.Time       `json:"createdAt"`
	Person            *PersonResponse `json:"person,omitempty"`
	Equb              *EqubResponse   `json:"equb,omitempty"`
}

func NewEqubResponse(equb equbdomain.Equb) EqubResponse {
	return EqubResponse{
		ID:           equb.ID,
		Name:         equb.Name,
		Cadence:      string(equb.Cadence),
		BaseAmount:   equb.BaseAmount,
		StartDate:    equb.StartDate.UTC().Format(DateLayout),
		Status:       string(equb.Status),
		CurrentRound: equb.CurrentRound,
		CreatedAt:    equb.CreatedAt,
		UpdatedAt:    equb.UpdatedAt,
	}
}

func NewPeriodResponse(period equbdomain.Period) PeriodResponse {
	return PeriodResponse{
		ID:          period.ID,
		EqubID:      period.EqubID,
		Sequence:    period.Sequence,
		StartDate:   period.StartDate.UTC().Format(DateLayout),
		EndDate:     period.EndDate.UTC().Format(DateLayout),
		IsCompleted: period.IsCompleted,
	}
}

func NewPersonResponse(person memberdomain.Person) PersonResponse {
	return PersonResponse{
		ID:      person.ID,
		Name:    person.Name,
		Phone:   person.Phone,
		Address: person.Address,
	}
}

// NewMemberResponse includes the person and equb only when they were loaded.
func NewMemberResponse(member memberdomain.Member) MemberResponse {
	response := MemberResponse{
		ID:                member.ID,
		EqubID:            member.EqubID,
		PersonID:          member.PersonID,
		Share:             string(member.Share),
		IsActive:          member.IsActive,
		HasReceivedPayout: member.HasReceivedPayout,
		CreatedAt:         member.CreatedAt,
	}
	if member.Person.ID != "" {
		person := NewPersonResponse(member.Person)
		response.Person = &person
	}
	if member.Equb.ID != "" {
		equb := NewEqubResponse(member.Equb)
		response.Equb = &equb
	}
	return response
}
