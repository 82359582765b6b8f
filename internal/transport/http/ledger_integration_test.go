package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/cimillas/concert-ledger/internal/app"
	"github.com/cimillas/concert-ledger/internal/clock"
	"github.com/cimillas/concert-ledger/internal/metrics"
	"github.com/cimillas/concert-ledger/internal/storage/postgres"
	"github.com/cimillas/concert-ledger/internal/storage/sqlite"
	"github.com/cimillas/concert-ledger/internal/testutil"
)

func TestLedger_HTTPIntegration_SQLite(t *testing.T) {
	store, err := sqlite.Open(context.Background(), sqlite.MemoryPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	m := metrics.New()
	router := NewRouter(app.NewLedger(store, clock.NewSystem(), zerolog.Nop()), RouterOptions{
		Logger:  zerolog.Nop(),
		Metrics: m,
	})

	band := postJSON[bandResponse](t, router, "/bands", `{"name":"The Beatles","hometown":"Liverpool"}`)
	venue := postJSON[venueResponse](t, router, "/venues", `{"title":"Madison Square Garden","city":"New York"}`)
	concert := postJSON[concertResponse](t, router, "/concerts",
		`{"band_id":`+strconv.FormatInt(band.ID, 10)+`,"venue_id":`+strconv.FormatInt(venue.ID, 10)+`,"date":"2024-09-19"}`)

	var details concertDetailsResponse
	getJSON(t, router, "/concerts/"+strconv.FormatInt(concert.ID, 10), &details)
	if details.HometownShow {
		t.Fatal("expected away show")
	}
	if details.Introduction != "Hello New York!!!!! We are The Beatles and we're from Liverpool" {
		t.Fatalf("unexpected introduction %q", details.Introduction)
	}
	if details.Band.ID != band.ID || details.Venue.ID != venue.ID {
		t.Fatalf("unexpected details %+v", details)
	}

	var concerts []concertResponse
	getJSON(t, router, "/bands/"+strconv.FormatInt(band.ID, 10)+"/concerts", &concerts)
	if len(concerts) != 1 || concerts[0].ID != concert.ID {
		t.Fatalf("unexpected band concerts %+v", concerts)
	}

	var top bandResponse
	getJSON(t, router, "/venues/"+strconv.FormatInt(venue.ID, 10)+"/most-frequent-band", &top)
	if top.ID != band.ID {
		t.Fatalf("expected most frequent band %d, got %+v", band.ID, top)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/concerts",
		bytes.NewBufferString(`{"band_id":`+strconv.FormatInt(band.ID, 10)+`,"venue_id":999,"date":"2024-09-20"}`)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown venue, got %d", rec.Code)
	}
	var errResp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Code != codeVenueNotFound {
		t.Fatalf("expected code %s, got %s", codeVenueNotFound, errResp.Code)
	}

	for _, tc := range []struct {
		body string
		code string
	}{
		{body: `{"band_id":0,"venue_id":` + strconv.FormatInt(venue.ID, 10) + `,"date":"2024-09-20"}`, code: codeBandNotFound},
		{body: `{"venue_id":` + strconv.FormatInt(venue.ID, 10) + `,"date":"2024-09-20"}`, code: codeBandNotFound},
		{body: `{"band_id":` + strconv.FormatInt(band.ID, 10) + `,"venue_id":-4,"date":"2024-09-20"}`, code: codeVenueNotFound},
	} {
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/concerts", bytes.NewBufferString(tc.body)))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected status 404, got %d", tc.body, rec.Code)
		}
		var resp errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if resp.Code != tc.code {
			t.Fatalf("%s: expected code %s, got %s", tc.body, tc.code, resp.Code)
		}
	}

	blank := postJSON[bandResponse](t, router, "/bands", `{"name":"","hometown":""}`)
	if blank.Name != "" || blank.ID == band.ID {
		t.Fatalf("expected a new band with an empty name, got %+v", blank)
	}
	undated := postJSON[concertResponse](t, router, "/concerts",
		`{"band_id":`+strconv.FormatInt(band.ID, 10)+`,"venue_id":`+strconv.FormatInt(venue.ID, 10)+`}`)
	if undated.Date != "" {
		t.Fatalf("expected empty date to be stored, got %q", undated.Date)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !bytes.Contains(rec.Body.Bytes(), []byte(`concert_ledger_records_created_total{kind="concert"} 2`)) {
		t.Fatalf("expected concert write in metrics, got %q", rec.Body.String())
	}
}

func TestLedger_HTTPIntegration_Postgres(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	bandID := testutil.InsertBand(t, ctx, pool, "Queen", "London")
	venueID := testutil.InsertVenue(t, ctx, pool, "Wembley Stadium", "London")

	repo := postgres.NewLedgerRepository(pool)
	router := NewRouter(app.NewLedger(repo, clock.NewSystem(), zerolog.Nop()), RouterOptions{Logger: zerolog.Nop()})

	concert := postJSON[concertResponse](t, router, "/concerts",
		`{"band_id":`+strconv.FormatInt(bandID, 10)+`,"venue_id":`+strconv.FormatInt(venueID, 10)+`,"date":"2024-02-01"}`)

	var home hometownShowResponse
	getJSON(t, router, "/concerts/"+strconv.FormatInt(concert.ID, 10)+"/hometown-show", &home)
	if !home.HometownShow {
		t.Fatal("expected hometown show")
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM concerts WHERE band_id = $1`, bandID).Scan(&count); err != nil {
		t.Fatalf("query count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 concert, got %d", count)
	}
}

func postJSON[T any](t *testing.T, h http.Handler, target, body string) T {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST %s: expected status 201, got %d (%s)", target, rec.Code, rec.Body.String())
	}
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("POST %s: decode response: %v", target, err)
	}
	return out
}

func getJSON(t *testing.T, h http.Handler, target string, out any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s: expected status 200, got %d (%s)", target, rec.Code, rec.Body.String())
	}
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("GET %s: decode response: %v", target, err)
	}
}
