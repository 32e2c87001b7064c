package members

import (
	"net/http"

	memberdomain "equb-app-go/internal/domain/member"
	commonhandler "equb-app-go/internal/transport/httpserver/handler/common"
)

type createPersonRequest struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Address *string `json:"address"`
}

func (h *Handlers) CreatePerson(w http.ResponseWriter, r *http.Request) {
	adminID, ok := commonhandler.RequireAdmin(w, r)
	if !ok {
		return
	}

	var req createPersonRequest
	if err := commonhandler.DecodeJSON(r, &req); err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	person, err := h.Members.CreatePerson(r.Context(), memberdomain.CreatePersonInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "people.create", err, "admin_id", adminID)
		return
	}
	commonhandler.WriteJSON(w, http.StatusCreated, commonhandler.NewPersonResponse(*person))
}

func (h *Handlers) ListPeople(w http.ResponseWriter, r *http.Request) {
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

	people, total, err := h.Members.ListPeople(r.Context(), query.Get("search"), page.Limit, page.Offset())
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "people.list", err, "admin_id", adminID)
		return
	}

	response := make([]commonhandler.PersonResponse, 0, len(people))
	for _, person := range people {
		response = append(response, commonhandler.NewPersonResponse(person))
	}
	commonhandler.WriteJSON(w, http.StatusOK, commonhandler.NewPage(response, total, page))
}
