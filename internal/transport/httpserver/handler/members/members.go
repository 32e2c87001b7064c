package members

import (
	"net/http"
	"strings"

	memberdomain "equb-app-go/internal/domain/member"
	commonhandler "equb-app-go/internal/transport/httpserver/handler/common"
	"github.com/go-chi/chi/v5"
)

type createMemberRequest struct {
	EqubID   string `json:"equbId"`
	PersonID string `json:"personId"`
	Share    string `json:"share"`
}

type updateMemberRequest struct {
	Share    *string `json:"share"`
	IsActive *bool   `json:"isActive"`
}

type resetPayoutsResponse struct {
	EqubID  string `json:"equbId"`
	Cleared int64  `json:"cleared"`
}

func (h *Handlers) CreateMember(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}

	var req createMemberRequest
	if err := commonhandler.DecodeJSON(r, &req); err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if strings.TrimSpace(req.EqubID) == "" || strings.TrimSpace(req.PersonID) == "" {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "equbId and personId are required")
		return
	}

	member, err := h.Members.CreateMember(r.Context(), memberdomain.CreateMemberInput{
		AdminID:  adminID,
		EqubID:   strings.TrimSpace(req.EqubID),
		PersonID: strings.TrimSpace(req.PersonID),
		Share:    parseShare(req.Share),
	})
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "members.create", err, "admin_id", adminID, "equb_id", req.EqubID)
		return
	}

	h.cache.Invalidate(adminID)
	commonhandler.WriteJSON(w, http.StatusCreated, commonhandler.NewMemberResponse(*member))
}

func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
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
	isActive, err := commonhandler.ParseBoolParam(query.Get("isActive"))
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid isActive")
		return
	}
	hasReceived, err := commonhandler.ParseBoolParam(query.Get("hasReceivedPayout"))
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid hasReceivedPayout")
		return
	}

	members, total, err := h.Members.ListMembers(r.Context(), adminID, memberdomain.ListFilter{
		EqubID:            strings.TrimSpace(query.Get("equbId")),
		IsActive:          isActive,
		HasReceivedPayout: hasReceived,
		Share:             parseShare(query.Get("share")),
		Search:            query.Get("search"),
		Limit:             page.Limit,
		Offset:            page.Offset(),
	})
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "members.list", err, "admin_id", adminID)
		return
	}

	commonhandler.WriteJSON(w, http.StatusOK, commonhandler.NewPage(toMemberResponses(members), total, page))
}

func (h *Handlers) GetMember(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}
	memberID := chi.URLParam(r, "id")

	member, err := h.Members.GetMember(r.Context(), adminID, memberID)
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "members.get", err, "admin_id", adminID, "member_id", memberID)
		return
	}
	commonhandler.WriteJSON(w, http.StatusOK, commonhandler.NewMemberResponse(*member))
}

func (h *Handlers) UpdateMember(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}
	memberID := chi.URLParam(r, "id")

	var req updateMemberRequest
	if err := commonhandler.DecodeJSON(r, &req); err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if req.Share == nil && req.IsActive == nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "no fields to update")
		return
	}

	input := memberdomain.UpdateMemberInput{
		AdminID:  adminID,
		MemberID: memberID,
		IsActive: req.IsActive,
	}
	if req.Share != nil {
		share := parseShare(*req.Share)
		input.Share = &share
	}

	member, err := h.Members.UpdateMember(r.Context(), input)
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "members.update", err, "admin_id", adminID, "member_id", memberID)
		return
	}

	h.cache.Invalidate(adminID)
	commonhandler.WriteJSON(w, http.StatusOK, commonhandler.NewMemberResponse(*member))
}

func (h *Handlers) RemoveMember(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}
	memberID := chi.URLParam(r, "id")

	if err := h.Members.RemoveMember(r.Context(), adminID, memberID); err != nil {
		commonhandler.WriteDomainError(w, h.log, "members.remove", err, "admin_id", adminID, "member_id", memberID)
		return
	}

	h.cache.Invalidate(adminID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) EligibleWinners(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}
	equbID := chi.URLParam(r, "id")

	members, err := h.Members.EligibleWinners(r.Context(), adminID, equbID)
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "members.eligible_winners", err, "admin_id", adminID, "equb_id", equbID)
		return
	}
	commonhandler.WriteJSON(w, http.StatusOK, toMemberResponses(members))
}

func (h *Handlers) ResetPayouts(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}
	equbID := chi.URLParam(r, "id")

	result, err := h.Members.ResetPayouts(r.Context(), adminID, equbID)
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "members.reset_payouts", err, "admin_id", adminID, "equb_id", equbID)
		return
	}

	h.log.Info("members.reset_payouts: new cycle", "equb_id", equbID, "cleared", result.Cleared)
	h.cache.Invalidate(adminID)
	commonhandler.WriteJSON(w, http.StatusOK, resetPayoutsResponse{EqubID: result.EqubID, Cleared: result.Cleared})
}

func parseShare(value string) memberdomain.Share {
	return memberdomain.Share(strings.ToUpper(strings.TrimSpace(value)))
}

func toMemberResponses(members []memberdomain.Member) []commonhandler.MemberResponse {
	response := make([]commonhandler.MemberResponse, 0, len(members))
	for _, member := range members {
		response = append(response, commonhandler.NewMemberResponse(member))
	}
	return response
}
