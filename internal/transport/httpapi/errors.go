package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	domaincorr "promette/internal/domain/correspondence"
	"promette/internal/ports"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// statusForError maps the error taxonomy onto the HTTP surface: 400 for
// malformed input, 404, 409 for the retryable concurrency conflict, 422
// for business-rule violations, 500 for exhaustion and storage failures.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, ports.ErrCorrespondenceNotFound),
		errors.Is(err, ports.ErrPositionNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, ports.ErrStateConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, domaincorr.ErrIllegalTransition):
		return http.StatusUnprocessableEntity, "ILLEGAL_TRANSITION"
	case errors.Is(err, domaincorr.ErrMissingNotes):
		return http.StatusUnprocessableEntity, "MISSING_NOTES"
	case errors.Is(err, domaincorr.ErrMissingRecipient):
		return http.StatusUnprocessableEntity, "MISSING_RECIPIENT"
	case errors.Is(err, domaincorr.ErrUnknownPosition):
		return http.StatusUnprocessableEntity, "UNKNOWN_POSITION"
	case errors.Is(err, domaincorr.ErrEditLocked):
		return http.StatusUnprocessableEntity, "EDIT_LOCKED"
	case errors.Is(err, domaincorr.ErrNotCreator):
		return http.StatusUnprocessableEntity, "NOT_CREATOR"
	case errors.Is(err, domaincorr.ErrUnknownState),
		errors.Is(err, domaincorr.ErrUnknownScope),
		errors.Is(err, domaincorr.ErrInvalidReceivedDate),
		errors.Is(err, domaincorr.ErrSummaryRequired),
		errors.Is(err, domaincorr.ErrSummaryTooLong),
		errors.Is(err, domaincorr.ErrUnknownPriority),
		errors.Is(err, domaincorr.ErrUnknownDeliveryMethod),
		errors.Is(err, domaincorr.ErrActorRequired):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, domaincorr.ErrSequenceExhausted):
		return http.StatusInternalServerError, "SEQUENCE_EXHAUSTED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status, code := statusForError(err)
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: err.Error()}})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{Code: "INVALID_INPUT", Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
