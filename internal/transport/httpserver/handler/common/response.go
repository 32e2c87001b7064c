package common

import (
	"encoding/json"
	"net/http"

	"equb-app-go/internal/domain/apperr"
	"equb-app-go/pkg/logger"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeError(w, status, code, message)
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	writeJSON(w, status, payload)
}

func DecodeJSON(r *http.Request, dst interface{}) error {
	return decodeJSON(r, dst)
}

// StatusOf maps a domain error kind to an HTTP status.
func StatusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInvalidInput, apperr.KindInvalidOperation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteDomainError logs err under op and writes the classified response.
// Unclassified errors never leak their message.
func WriteDomainError(w http.ResponseWriter, log logger.Logger, op string, err error, args ...any) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		log.InternalError(op+": failed", err, args...)
		writeError(w, status, "internal_error", "internal error")
		return
	}
	log.BusinessError(op+": rejected", err, args...)
	writeError(w, status, apperr.CodeOf(err), apperr.MessageOf(err))
}
