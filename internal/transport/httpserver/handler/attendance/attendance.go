package attendance

import (
	"net/http"
	"strings"
	"time"

	attendancedomain "equb-app-go/internal/domain/attendance"
	commonhandler "equb-app-go/internal/transport/httpserver/handler/common"
	"github.com/go-chi/chi/v5"
)

type recordAttendanceRequest struct {
	MemberID string  `json:"memberId"`
	PeriodID string  `json:"periodId"`
	Status   string  `json:"status"`
	Note     *string `json:"note"`
}

type attendanceResponse struct {
	ID         string                        `json:"id"`
	MemberID   string                        `json:"memberId"`
	PeriodID   string                        `json:"periodId"`
	Status     string                        `json:"status"`
	RecordedBy *string                       `json:"recordedBy"`
	Note       *string                       `json:"note"`
	RecordedAt time.Time                     `json:"recordedAt"`
	UpdatedAt  time.Time                     `json:"updatedAt"`
	Member     *commonhandler.MemberResponse `json:"member,omitempty"`
	Period     *commonhandler.PeriodResponse `json:"period,omitempty"`
}

func (h *Handlers) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}

	var req recordAttendanceRequest
	if err := commonhandler.DecodeJSON(r, &req); err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if strings.TrimSpace(req.MemberID) == "" || strings.TrimSpace(req.PeriodID) == "" {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "memberId and periodId are required")
		return
	}

	record, err := h.Attendance.Record(r.Context(), attendancedomain.RecordInput{
		AdminID:  adminID,
		MemberID: strings.TrimSpace(req.MemberID),
		PeriodID: strings.TrimSpace(req.PeriodID),
		Status:   parseStatus(req.Status),
		Note:     req.Note,
	})
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "attendance.record", err, "admin_id", adminID, "member_id", req.MemberID, "period_id", req.PeriodID)
		return
	}

	h.cache.Invalidate(adminID)
	commonhandler.WriteJSON(w, http.StatusOK, toAttendanceResponse(*record))
}

func (h *Handlers) ListAttendance(w http.ResponseWriter, r *http.Request) {
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

	records, total, err := h.Attendance.List(r.Context(), adminID, attendancedomain.ListFilter{
		MemberID: strings.TrimSpace(query.Get("memberId")),
		EqubID:   strings.TrimSpace(query.Get("equbId")),
		PeriodID: strings.TrimSpace(query.Get("periodId")),
		Status:   parseStatus(query.Get("status")),
		Search:   strings.TrimSpace(query.Get("search")),
		From:     from,
		To:       to,
		Limit:    page.Limit,
		Offset:   page.Offset(),
	})
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "attendance.list", err, "admin_id", adminID)
		return
	}

	response := make([]attendanceResponse, 0, len(records))
	for _, record := range records {
		response = append(response, toAttendanceResponse(record))
	}
	commonhandler.WriteJSON(w, http.StatusOK, commonhandler.NewPage(response, total, page))
}

func (h *Handlers) GetAttendance(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	record, err := h.Attendance.Get(r.Context(), adminID, id)
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "attendance.get", err, "admin_id", adminID, "attendance_id", id)
		return
	}
	commonhandler.WriteJSON(w, http.StatusOK, toAttendanceResponse(*record))
}

func (h *Handlers) DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.Attendance.Delete(r.Context(), adminID, id); err != nil {
		commonhandler.WriteDomainError(w, h.log, "attendance.delete", err, "admin_id", adminID, "attendance_id", id)
		return
	}

	h.cache.Invalidate(adminID)
	w.WriteHeader(http.StatusNoContent)
}

func parseStatus(value string) attendancedomain.Status {
	return attendancedomain.Status(strings.ToUpper(strings.TrimSpace(value)))
}

func toAttendanceResponse(record attendancedomain.Attendance) attendanceResponse {
	response := attendanceResponse{
		ID:         record.ID,
		MemberID:   record.MemberID,
		PeriodID:   record.PeriodID,
		Status:     string(record.Status),
		RecordedBy: record.RecordedBy,
		Note:       record.Note,
		RecordedAt: record.RecordedAt,
		UpdatedAt:  record.UpdatedAt,
	}
	if record.Member.ID != "" {
		member := commonhandler.NewMemberResponse(record.Member)
		response.Member = &member
	}
	if record.Period.ID != "" {
		period := commonhandler.NewPeriodResponse(record.Period)
		response.Period = &period
	}
	return response
}
