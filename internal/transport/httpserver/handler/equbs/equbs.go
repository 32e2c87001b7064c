package equbs

import (
	"net/http"
	"strings"

	equbdomain "equb-app-go/internal/domain/equb"
	commonhandler "equb-app-go/internal/transport/httpserver/handler/common"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type createEqubRequest struct {
	Name                string          `json:"name"`
	Cadence             string          `json:"cadence"`
	StartDate           string          `json:"startDate"`
	BaseAmount          decimal.Decimal `json:"baseAmount"`
	ExpectedMemberCount int             `json:"expectedMemberCount"`
}

type updateEqubRequest struct {
	Name       *string          `json:"name"`
	BaseAmount *decimal.Decimal `json:"baseAmount"`
}

type equbDetailsResponse struct {
	commonhandler.EqubResponse
	MemberCount   int64                          `json:"memberCount"`
	CurrentPeriod *commonhandler.PeriodResponse  `json:"currentPeriod"`
	Periods       []commonhandler.PeriodResponse `json:"periods"`
}

func (h *Handlers) CreateEqub(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}

	var req createEqubRequest
	if err := commonhandler.DecodeJSON(r, &req); err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	startDate, err := commonhandler.ParseDateRequired(req.StartDate)
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid startDate")
		return
	}

	details, err := h.Equbs.CreateEqub(r.Context(), equbdomain.CreateEqubInput{
		AdminID:             adminID,
		Name:                req.Name,
		Cadence:             equbdomain.Cadence(strings.ToUpper(strings.TrimSpace(req.Cadence))),
		StartDate:           startDate,
		BaseAmount:          req.BaseAmount,
		ExpectedMemberCount: req.ExpectedMemberCount,
	})
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "equbs.create", err, "admin_id", adminID)
		return
	}

	h.cache.Invalidate(adminID)
	commonhandler.WriteJSON(w, http.StatusCreated, toDetailsResponse(*details))
}

func (h *Handlers) ListEqubs(w http.ResponseWriter, r *http.Request) {
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

	filter := equbdomain.ListFilter{
		Search:    query.Get("search"),
		Cadence:   equbdomain.Cadence(strings.ToUpper(strings.TrimSpace(query.Get("cadence")))),
		Status:    equbdomain.Status(strings.ToUpper(strings.TrimSpace(query.Get("status")))),
		MinAmount: minAmount,
		MaxAmount: maxAmount,
		Limit:     page.Limit,
		Offset:    page.Offset(),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid status")
		return
	}

	items, total, err := h.Equbs.ListEqubs(r.Context(), adminID, filter)
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "equbs.list", err, "admin_id", adminID)
		return
	}

	response := make([]commonhandler.EqubResponse, 0, len(items))
	for _, item := range items {
		response = append(response, commonhandler.NewEqubResponse(item))
	}
	commonhandler.WriteJSON(w, http.StatusOK, commonhandler.NewPage(response, total, page))
}

func (h *Handlers) GetEqub(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}
	equbID := chi.URLParam(r, "id")

	details, err := h.Equbs.GetEqub(r.Context(), adminID, equbID)
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "equbs.get", err, "admin_id", adminID, "equb_id", equbID)
		return
	}
	commonhandler.WriteJSON(w, http.StatusOK, toDetailsResponse(*details))
}

func (h *Handlers) UpdateEqub(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}
	equbID := chi.URLParam(r, "id")

	var req updateEqubRequest
	if err := commonhandler.DecodeJSON(r, &req); err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if req.Name == nil && req.BaseAmount == nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "no fields to update")
		return
	}

	details, err := h.Equbs.UpdateEqub(r.Context(), equbdomain.UpdateEqubInput{
		AdminID:    adminID,
		EqubID:     equbID,
		Name:       req.Name,
		BaseAmount: req.BaseAmount,
	})
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "equbs.update", err, "admin_id", adminID, "equb_id", equbID)
		return
	}

	h.cache.Invalidate(adminID)
	commonhandler.WriteJSON(w, http.StatusOK, toDetailsResponse(*details))
}

func (h *Handlers) DeleteEqub(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}
	equbID := chi.URLParam(r, "id")

	if err := h.Equbs.DeleteEqub(r.Context(), adminID, equbID); err != nil {
		commonhandler.WriteDomainError(w, h.log, "equbs.delete", err, "admin_id", adminID, "equb_id", equbID)
		return
	}

	h.cache.Invalidate(adminID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) RegeneratePeriods(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}
	equbID := chi.URLParam(r, "id")

	details, err := h.Equbs.RegeneratePeriods(r.Context(), adminID, equbID)
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "equbs.regenerate_periods", err, "admin_id", adminID, "equb_id", equbID)
		return
	}
	h.log.Info("equbs.regenerate_periods: done", "equb_id", equbID, "periods", len(details.Periods))
	commonhandler.WriteJSON(w, http.StatusOK, toDetailsResponse(*details))
}

func toDetailsResponse(details equbdomain.Details) equbDetailsResponse {
	periods := make([]commonhandler.PeriodResponse, 0, len(details.Periods))
	for _, period := range details.Periods {
		periods = append(periods, commonhandler.NewPeriodResponse(period))
	}

	response := equbDetailsResponse{
		EqubResponse: commonhandler.NewEqubResponse(details.Equb),
		MemberCount:  details.MemberCount,
		Periods:      periods,
	}
	if current, ok := details.CurrentPeriod(); ok {
		period := commonhandler.NewPeriodResponse(current)
		response.CurrentPeriod = &period
	}
	return response
}
