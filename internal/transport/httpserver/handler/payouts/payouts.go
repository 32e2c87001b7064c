package payouts

import (
	"net/http"
	"strings"
	"time"

	payoutdomain "equb-app-go/internal/domain/payout"
	commonhandler "equb-app-go/internal/transport/httpserver/handler/common"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type randomWinnerRequest struct {
	EqubID   string `json:"equbId"`
	PeriodID string `json:"periodId"`
}

type manualWinnerRequest struct {
	EqubID   string `json:"equbId"`
	MemberID string `json:"memberId"`
	PeriodID string `json:"periodId"`
}

type payoutResponse struct {
	ID         string                        `json:"id"`
	EqubID     string                        `json:"equbId"`
	MemberID   string                        `json:"memberId"`
	PeriodID   string                        `json:"periodId"`
	Amount     decimal.Decimal               `json:"amount"`
	PayoutDate time.Time                     `json:"payoutDate"`
	Equb       *commonhandler.EqubResponse   `json:"equb,omitempty"`
	Member     *commonhandler.MemberResponse `json:"member,omitempty"`
	Period     *commonhandler.PeriodResponse `json:"period,omitempty"`
}

func (h *Handlers) SelectRandomWinner(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}

	var req randomWinnerRequest
	if err := commonhandler.DecodeJSON(r, &req); err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if strings.TrimSpace(req.EqubID) == "" || strings.TrimSpace(req.PeriodID) == "" {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "equbId and periodId are required")
		return
	}

	payout, err := h.Payouts.SelectRandomWinner(r.Context(), payoutdomain.RandomInput{
		AdminID:  adminID,
		EqubID:   strings.TrimSpace(req.EqubID),
		PeriodID: strings.TrimSpace(req.PeriodID),
	})
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "payouts.random", err, "admin_id", adminID, "equb_id", req.EqubID, "period_id", req.PeriodID)
		return
	}

	h.log.Info("payouts.random: settled", "equb_id", payout.EqubID, "member_id", payout.MemberID, "amount", payout.Amount.String())
	h.cache.Invalidate(adminID)
	commonhandler.WriteJSON(w, http.StatusCreated, toPayoutResponse(*payout))
}

func (h *Handlers) RecordManualWinner(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}

	var req manualWinnerRequest
	if err := commonhandler.DecodeJSON(r, &req); err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if strings.TrimSpace(req.EqubID) == "" || strings.TrimSpace(req.MemberID) == "" || strings.TrimSpace(req.PeriodID) == "" {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "equbId, memberId and periodId are required")
		return
	}

	payout, err := h.Payouts.RecordManualWinner(r.Context(), payoutdomain.ManualInput{
		AdminID:  adminID,
		EqubID:   strings.TrimSpace(req.EqubID),
		MemberID: strings.TrimSpace(req.MemberID),
		PeriodID: strings.TrimSpace(req.PeriodID),
	})
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "payouts.manual", err, "admin_id", adminID, "equb_id", req.EqubID, "member_id", req.MemberID)
		return
	}

	h.log.Info("payouts.manual: settled", "equb_id", payout.EqubID, "member_id", payout.MemberID, "amount", payout.Amount.String())
	h.cache.Invalidate(adminID)
	commonhandler.WriteJSON(w, http.StatusCreated, toPayoutResponse(*payout))
}

func (h *Handlers) ListPayouts(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	page, err := commonhandler.ParsePage(query)
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	minAmount, err := commonhandler.ParseDecimalParam(query.Get("minAmount"))
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid minAmount")
		return
	}
	maxAmount, err := commonhandler.ParseDecimalParam(query.Get("maxAmount"))
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid maxAmount")
		return
	}
	from, err := commonhandler.ParseDateParam(query.Get("from"))
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid from")
		return
	}
	to, err := commonhandler.ParseDateParam(query.Get("to"))
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid to")
		return
	}
	if to != nil {
		// Inclusive of the whole day.
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &end
	}

	payouts, total, err := h.Payouts.ListPayouts(r.Context(), adminID, payoutdomain.ListFilter{
		MemberID:  strings.TrimSpace(query.Get("memberId")),
		EqubID:    strings.TrimSpace(query.Get("equbId")),
		PeriodID:  strings.TrimSpace(query.Get("periodId")),
		MinAmount: minAmount,
		MaxAmount: maxAmount,
		Search:    strings.TrimSpace(query.Get("search")),
		From:      from,
		To:        to,
		Limit:     page.Limit,
		Offset:    page.Offset(),
	})
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "payouts.list", err, "admin_id", adminID)
		return
	}

	response := make([]payoutResponse, 0, len(payouts))
	for _, payout := range payouts {
		response = append(response, toPayoutResponse(payout))
	}
	commonhandler.WriteJSON(w, http.StatusOK, commonhandler.NewPage(response, total, page))
}

func (h *Handlers) GetPayout(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	payout, err := h.Payouts.GetPayout(r.Context(), adminID, id)
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "payouts.get", err, "admin_id", adminID, "payout_id", id)
		return
	}
	commonhandler.WriteJSON(w, http.StatusOK, toPayoutResponse(*payout))
}

func toPayoutResponse(payout payoutdomain.Payout) payoutResponse {
	response := payoutResponse{
		ID:         payout.ID,
		EqubID:     payout.EqubID,
		MemberID:   payout.MemberID,
		PeriodID:   payout.PeriodID,
		Amount:     payout.Amount,
		PayoutDate: payout.PayoutDate,
	}
	if payout.Equb.ID != "" {
		equb := commonhandler.NewEqubResponse(payout.Equb)
		response.Equb = &equb
	}
	if payout.Member.ID != "" {
		member := commonhandler.NewMemberResponse(payout.Member)
		response.Member = &member
	}
	if payout.Period.ID != "" {
		period := commonhandler.NewPeriodResponse(payout.Period)
		response.Period = &period
	}
	return response
}
