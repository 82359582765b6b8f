package http

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/cimillas/concert-ledger/internal/domain"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Request bodies carry no field rules: strings are stored as given and
// unknown band or venue IDs are rejected by the ledger as integrity errors.

type createBandRequest struct {
	Name     string `json:"name"`
	Hometown string `json:"hometown"`
}

type createVenueRequest struct {
	Title string `json:"title"`
	City  string `json:"city"`
}

type scheduleConcertRequest struct {
	BandID  int64  `json:"band_id"`
	VenueID int64  `json:"venue_id"`
	Date    string `json:"date"`
}

// decodeRequest reads a JSON body into dst. On failure the error response
// has already been written.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return false
	}
	return true
}

// pathID parses a positive integer route parameter.
func pathID(r *http.Request, key string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidID
	}
	if err := requestValidator().Var(id, "gt=0"); err != nil {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
