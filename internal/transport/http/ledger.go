package http

import (
	"context"
	"net/http"

	"github.com/cimillas/concert-ledger/internal/app"
	"github.com/cimillas/concert-ledger/internal/domain"
	"github.com/cimillas/concert-ledger/internal/metrics"
)

// LedgerService is the subset of app.Ledger the HTTP surface needs.
type LedgerService interface {
	CreateBand(ctx context.Context, in app.CreateBandInput) (domain.Band, error)
	CreateVenue(ctx context.Context, in app.CreateVenueInput) (domain.Venue, error)
	ScheduleConcert(ctx context.Context, in app.ScheduleConcertInput) (domain.Concert, error)

	GetBand(ctx context.Context, id int64) (*domain.Band, error)
	GetVenue(ctx context.Context, id int64) (*domain.Venue, error)
	GetConcert(ctx context.Context, id int64) (*domain.ConcertDetails, error)
	ListBands(ctx context.Context) ([]domain.Band, error)
	ListVenues(ctx context.Context) ([]domain.Venue, error)

	ConcertsOfBand(ctx context.Context, bandID int64) ([]domain.Concert, error)
	VenuesOfBand(ctx context.Context, bandID int64) ([]domain.Venue, error)
	ConcertsAtVenue(ctx context.Context, venueID int64) ([]domain.Concert, error)
	BandsAtVenue(ctx context.Context, venueID int64) ([]domain.Band, error)
	ConcertOn(ctx context.Context, venueID int64, date string) (*domain.Concert, error)
	MostFrequentBand(ctx context.Context, venueID int64) (*domain.Band, error)
	MostPerformances(ctx context.Context) (*domain.Band, error)
	IsHometownShow(ctx context.Context, concertID int64) (bool, error)
	IntroductionLine(ctx context.Context, concertID int64) (string, error)
	AllIntroductions(ctx context.Context, bandID int64) ([]string, error)
}

type ledgerHandlers struct {
	svc     LedgerService
	metrics *metrics.Metrics
}

type bandResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Hometown string `json:"hometown"`
}

type venueResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	City  string `json:"city"`
}

type concertResponse struct {
	ID      int64  `json:"id"`
	BandID  int64  `json:"band_id"`
	VenueID int64  `json:"venue_id"`
	Date    string `json:"date"`
}

type concertDetailsResponse struct {
	concertResponse
	Band         bandResponse  `json:"band"`
	Venue        venueResponse `json:"venue"`
	HometownShow bool          `json:"hometown_show"`
	Introduction string        `json:"introduction"`
}

type hometownShowResponse struct {
	ConcertID    int64 `json:"concert_id"`
	HometownShow bool  `json:"hometown_show"`
}

type introductionResponse struct {
	ConcertID    int64  `json:"concert_id"`
	Introduction string `json:"introduction"`
}

func toBandResponse(b domain.Band) bandResponse {
	return bandResponse{ID: b.ID, Name: b.Name, Hometown: b.Hometown}
}

func toVenueResponse(v domain.Venue) venueResponse {
	return venueResponse{ID: v.ID, Title: v.Title, City: v.City}
}

func toConcertResponse(c domain.Concert) concertResponse {
	return concertResponse{ID: c.ID, BandID: c.BandID, VenueID: c.VenueID, Date: c.Date}
}

func bandList(bands []domain.Band) []bandResponse {
	resp := make([]bandResponse, 0, len(bands))
	for _, b := range bands {
		resp = append(resp, toBandResponse(b))
	}
	return resp
}

func venueList(venues []domain.Venue) []venueResponse {
	resp := make([]venueResponse, 0, len(venues))
	for _, v := range venues {
		resp = append(resp, toVenueResponse(v))
	}
	return resp
}

func concertList(concerts []domain.Concert) []concertResponse {
	resp := make([]concertResponse, 0, len(concerts))
	for _, c := range concerts {
		resp = append(resp, toConcertResponse(c))
	}
	return resp
}

func (h *ledgerHandlers) createBand(w http.ResponseWriter, r *http.Request) {
	var req createBandRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	band, err := h.svc.CreateBand(r.Context(), app.CreateBandInput{Name: req.Name, Hometown: req.Hometown})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	h.metrics.RecordCreated("band")
	writeJSON(w, http.StatusCreated, toBandResponse(band))
}

func (h *ledgerHandlers) listBands(w http.ResponseWriter, r *http.Request) {
	bands, err := h.svc.ListBands(r.Context())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bandList(bands))
}

func (h *ledgerHandlers) getBand(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "bandID")
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	band, err := h.svc.GetBand(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if band == nil {
		writeError(w, http.StatusNotFound, codeBandNotFound, "band not found")
		return
	}
	writeJSON(w, http.StatusOK, toBandResponse(*band))
}

func (h *ledgerHandlers) bandConcerts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "bandID")
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	concerts, err := h.svc.ConcertsOfBand(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, concertList(concerts))
}

func (h *ledgerHandlers) bandVenues(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "bandID")
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	venues, err := h.svc.VenuesOfBand(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, venueList(venues))
}

func (h *ledgerHandlers) bandIntroductions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "bandID")
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	lines, err := h.svc.AllIntroductions(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if lines == nil {
		lines = []string{}
	}
	writeJSON(w, http.StatusOK, lines)
}

func (h *ledgerHandlers) mostPerformances(w http.ResponseWriter, r *http.Request) {
	band, err := h.svc.MostPerformances(r.Context())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if band == nil {
		writeError(w, http.StatusNotFound, codeBandNotFound, "no concerts recorded")
		return
	}
	writeJSON(w, http.StatusOK, toBandResponse(*band))
}

func (h *ledgerHandlers) createVenue(w http.ResponseWriter, r *http.Request) {
	var req createVenueRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	venue, err := h.svc.CreateVenue(r.Context(), app.CreateVenueInput{Title: req.Title, City: req.City})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	h.metrics.RecordCreated("venue")
	writeJSON(w, http.StatusCreated, toVenueResponse(venue))
}

func (h *ledgerHandlers) listVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.svc.ListVenues(r.Context())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, venueList(venues))
}

func (h *ledgerHandlers) getVenue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "venueID")
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	venue, err := h.svc.GetVenue(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if venue == nil {
		writeError(w, http.StatusNotFound, codeVenueNotFound, "venue not found")
		return
	}
	writeJSON(w, http.StatusOK, toVenueResponse(*venue))
}

func (h *ledgerHandlers) venueConcerts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "venueID")
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	concerts, err := h.svc.ConcertsAtVenue(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, concertList(concerts))
}

func (h *ledgerHandlers) venueBands(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "venueID")
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	bands, err := h.svc.BandsAtVenue(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bandList(bands))
}

func (h *ledgerHandlers) venueConcertOn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "venueID")
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	date := r.URL.Query().Get("date")
	concert, err := h.svc.ConcertOn(r.Context(), id, date)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if concert == nil {
		writeError(w, http.StatusNotFound, codeConcertNotFound, "no concert on "+date)
		return
	}
	writeJSON(w, http.StatusOK, toConcertResponse(*concert))
}

func (h *ledgerHandlers) mostFrequentBand(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "venueID")
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	band, err := h.svc.MostFrequentBand(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if band == nil {
		writeError(w, http.StatusNotFound, codeBandNotFound, "no concerts at venue")
		return
	}
	writeJSON(w, http.StatusOK, toBandResponse(*band))
}

func (h *ledgerHandlers) scheduleConcert(w http.ResponseWriter, r *http.Request) {
	var req scheduleConcertRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	concert, err := h.svc.ScheduleConcert(r.Context(), app.ScheduleConcertInput{
		BandID:  req.BandID,
		VenueID: req.VenueID,
		Date:    req.Date,
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	h.metrics.RecordCreated("concert")
	writeJSON(w, http.StatusCreated, toConcertResponse(concert))
}

func (h *ledgerHandlers) getConcert(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "concertID")
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	details, err := h.svc.GetConcert(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if details == nil {
		writeLedgerError(w, domain.ErrConcertNotFound)
		return
	}
	writeJSON(w, http.StatusOK, concertDetailsResponse{
		concertResponse: toConcertResponse(details.Concert),
		Band:            toBandResponse(details.Band),
		Venue:           toVenueResponse(details.Venue),
		HometownShow:    details.IsHometownShow(),
		Introduction:    details.Introduction(),
	})
}

func (h *ledgerHandlers) hometownShow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "concertID")
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	home, err := h.svc.IsHometownShow(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hometownShowResponse{ConcertID: id, HometownShow: home})
}

func (h *ledgerHandlers) introduction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "concertID")
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	line, err := h.svc.IntroductionLine(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, introductionResponse{ConcertID: id, Introduction: line})
}
