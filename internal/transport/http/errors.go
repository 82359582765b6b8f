package http

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/cimillas/concert-ledger/internal/domain"
)

const (
	codeMethodNotAllowed     = "method_not_allowed"
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeInvalidID            = "invalid_id"
	codeBandNotFound         = "band_not_found"
	codeVenueNotFound        = "venue_not_found"
	codeConcertNotFound      = "concert_not_found"
	codeReferentialIntegrity = "referential_integrity"
	codeRateLimited          = "rate_limited"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeLedgerError maps ledger errors onto the HTTP envelope. Anything it
// does not recognise is reported as an internal error.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrBandNotFound):
		writeError(w, http.StatusNotFound, codeBandNotFound, err.Error())
	case errors.Is(err, domain.ErrVenueNotFound):
		writeError(w, http.StatusNotFound, codeVenueNotFound, err.Error())
	case errors.Is(err, domain.ErrConcertNotFound):
		writeError(w, http.StatusNotFound, codeConcertNotFound, err.Error())
	case errors.Is(err, domain.ErrReferentialIntegrity):
		writeError(w, http.StatusConflict, codeReferentialIntegrity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
