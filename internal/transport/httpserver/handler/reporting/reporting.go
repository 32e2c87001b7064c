package reporting

import (
	"net/http"
	"time"

	reportingdomain "equb-app-go/internal/domain/reporting"
	commonhandler "equb-app-go/internal/transport/httpserver/handler/common"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type dashboardResponse struct {
	TotalExpected  decimal.Decimal `json:"totalExpected"`
	TotalCollected decimal.Decimal `json:"totalCollected"`
	TotalEqubs     int             `json:"totalEqubs"`
	ActiveEqubs    int             `json:"activeEqubs"`
	TotalMembers   int             `json:"totalMembers"`
}

type equbStatsResponse struct {
	EqubID               string          `json:"equbId"`
	TotalContributions   decimal.Decimal `json:"totalContributions"`
	TotalPayouts         decimal.Decimal `json:"totalPayouts"`
	CompletionPercentage int             `json:"completionPercentage"`
	AverageAttendance    int             `json:"averageAttendance"`
	TotalMembers         int             `json:"totalMembers"`
	ActivePeriods        int             `json:"activePeriods"`
}

type memberStatsResponse struct {
	MemberID           string          `json:"memberId"`
	TotalContributions decimal.Decimal `json:"totalContributions"`
	TotalReceived      decimal.Decimal `json:"totalReceived"`
	PaidPayments       int64           `json:"paidPayments"`
	MissedPayments     int64           `json:"missedPayments"`
	AttendanceRate     int             `json:"attendanceRate"`
	TotalEqubs         int64           `json:"totalEqubs"`
	HasReceivedPayout  bool            `json:"hasReceivedPayout"`
}

type transactionResponse struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	EqubName      string          `json:"equbName"`
	MemberName    string          `json:"memberName"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        string          `json:"status"`
}

func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}

	stats, err := h.Reporting.Dashboard(r.Context(), adminID)
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "reporting.dashboard", err, "admin_id", adminID)
		return
	}
	commonhandler.WriteJSON(w, http.StatusOK, dashboardResponse{
		TotalExpected:  stats.TotalExpected,
		TotalCollected: stats.TotalCollected,
		TotalEqubs:     stats.TotalEqubs,
		ActiveEqubs:    stats.ActiveEqubs,
		TotalMembers:   stats.TotalMembers,
	})
}

func (h *Handlers) EqubStats(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}
	equbID := chi.URLParam(r, "id")

	stats, err := h.Reporting.EqubStats(r.Context(), adminID, equbID)
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "reporting.equb_stats", err, "admin_id", adminID, "equb_id", equbID)
		return
	}
	commonhandler.WriteJSON(w, http.StatusOK, equbStatsResponse{
		EqubID:               stats.EqubID,
		TotalContributions:   stats.TotalContributions,
		TotalPayouts:         stats.TotalPayouts,
		CompletionPercentage: stats.CompletionPercentage,
		AverageAttendance:    stats.AverageAttendance,
		TotalMembers:         stats.TotalMembers,
		ActivePeriods:        stats.ActivePeriods,
	})
}

func (h *Handlers) MemberStats(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}
	memberID := chi.URLParam(r, "id")

	stats, err := h.Reporting.MemberStats(r.Context(), adminID, memberID)
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "reporting.member_stats", err, "admin_id", adminID, "member_id", memberID)
		return
	}
	commonhandler.WriteJSON(w, http.StatusOK, memberStatsResponse{
		MemberID:           stats.MemberID,
		TotalContributions: stats.TotalContributions,
		TotalReceived:      stats.TotalReceived,
		PaidPayments:       stats.PaidPayments,
		MissedPayments:     stats.MissedPayments,
		AttendanceRate:     stats.AttendanceRate,
		TotalEqubs:         stats.TotalEqubs,
		HasReceivedPayout:  stats.HasReceivedPayout,
	})
}

func (h *Handlers) Transactions(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}

	items, err := h.Reporting.Transactions(r.Context(), adminID)
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "reporting.transactions", err, "admin_id", adminID)
		return
	}

	response := make([]transactionResponse, 0, len(items))
	for _, item := range items {
		response = append(response, toTransactionResponse(item))
	}
	commonhandler.WriteJSON(w, http.StatusOK, response)
}

func toTransactionResponse(item reportingdomain.Transaction) transactionResponse {
	return transactionResponse{
		ID:            item.ID,
		Type:          string(item.Type),
		Amount:        item.Amount,
		Date:          item.Date,
		EqubName:      item.EqubName,
		MemberName:    item.MemberName,
		PaymentMethod: item.PaymentMethod,
		Status:        item.Status,
	}
}
