package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/cimillas/concert-ledger/internal/metrics"
)

// RouterOptions configures the middleware stack around the ledger routes.
type RouterOptions struct {
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
	CORSOrigins []string
	// RateLimit is requests per minute per client IP; zero disables it.
	RateLimit int
}

// NewRouter wires every ledger route plus /health and, when metrics are
// configured, /metrics.
func NewRouter(svc LedgerService, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(opts.Logger, opts.Metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(opts.CORSOrigins))
	r.Use(RateLimit(opts.RateLimit))

	r.NotFound(NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(MethodNotAllowedHandler().ServeHTTP)

	r.Get("/health", HealthHandler)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}

	h := &ledgerHandlers{svc: svc, metrics: opts.Metrics}
	r.Route("/bands", func(r chi.Router) {
		r.Post("/", h.createBand)
		r.Get("/", h.listBands)
		r.Get("/most-performances", h.mostPerformances)
		r.Route("/{bandID}", func(r chi.Router) {
			r.Get("/", h.getBand)
			r.Get("/concerts", h.bandConcerts)
			r.Get("/venues", h.bandVenues)
			r.Get("/introductions", h.bandIntroductions)
		})
	})

	r.Route("/venues", func(r chi.Router) {
		r.Post("/", h.createVenue)
		r.Get("/", h.listVenues)
		r.Route("/{venueID}", func(r chi.Router) {
			r.Get("/", h.getVenue)
			r.Get("/concerts", h.venueConcerts)
			r.Get("/concerts/on", h.venueConcertOn)
			r.Get("/bands", h.venueBands)
			r.Get("/most-frequent-band", h.mostFrequentBand)
		})
	})

	r.Route("/concerts", func(r chi.Router) {
		r.Post("/", h.scheduleConcert)
		r.Route("/{concertID}", func(r chi.Router) {
			r.Get("/", h.getConcert)
			r.Get("/hometown-show", h.hometownShow)
			r.Get("/introduction", h.introduction)
		})
	})

	return r
}
