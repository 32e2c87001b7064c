package handler

import (
	"equb-app-go/internal/transport/httpserver/handler/attendance"
	"equb-app-go/internal/transport/httpserver/handler/common"
	"equb-app-go/internal/transport/httpserver/handler/equbs"
	"equb-app-go/internal/transport/httpserver/handler/members"
	"equb-app-go/internal/transport/httpserver/handler/payouts"
	"equb-app-go/internal/transport/httpserver/handler/reporting"
)

type Handlers struct {
	Common     *common.Handlers
	Equbs      *equbs.Handlers
	Members    *members.Handlers
	Attendance *attendance.Handlers
	Payouts    *payouts.Handlers
	Reporting  *reporting.Handlers
}

func New(
	common *common.Handlers,
	equbs *equbs.Handlers,
	members *members.Handlers,
	attendance *attendance.Handlers,
	payouts *payouts.Handlers,
	reporting *reporting.Handlers,
) *Handlers {
	return &Handlers{
		Common:     common,
		Equbs:      equbs,
		Members:    members,
		Attendance: attendance,
		Payouts:    payouts,
		Reporting:  reporting,
	}
}
