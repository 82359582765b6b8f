// Command seed writes the demo bands, venues and concerts and prints a
// report of every derived fact.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cimillas/concert-ledger/internal/app"
	"github.com/cimillas/concert-ledger/internal/clock"
	"github.com/cimillas/concert-ledger/internal/config"
	"github.com/cimillas/concert-ledger/internal/logging"
	"github.com/cimillas/concert-ledger/internal/storage"
)

func main() {
	reportOnly := flag.Bool("report-only", false, "print the report without writing demo data")
	flag.Parse()

	if _, err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if err := run(context.Background(), cfg, logger, *reportOnly, os.Stdout); err != nil {
		logger.Error().Err(err).Msg("seed failed")
		os.Exit(1)
	}
}

// run returns instead of exiting so the deferred store close always runs.
func run(ctx context.Context, cfg config.Config, logger zerolog.Logger, reportOnly bool, out io.Writer) error {
	store, err := storage.Open(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("close store")
		}
	}()

	ledger := app.NewLedger(store, clock.NewSystem(), logger)
	if !reportOnly {
		res, err := ledger.Seed(ctx)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info().
			Int("bands", len(res.Bands)).
			Int("venues", len(res.Venues)).
			Int("concerts", len(res.Concerts)).
			Msg("seeded")
	}

	rep, err := ledger.Report(ctx)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	printReport(out, rep)
	return nil
}

func printReport(w io.Writer, rep app.Report) {
	fmt.Fprintf(w, "Report generated %s\n", rep.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintln(w, "Bands:")
	for _, b := range rep.Bands {
		fmt.Fprintf(w, "  #%d %s (%s)\n", b.Band.ID, b.Band.Name, b.Band.Hometown)
		fmt.Fprintf(w, "    concerts: %d, venues: %s\n", len(b.Concerts), venueTitles(b))
		for _, line := range b.Introductions {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}

	fmt.Fprintln(w, "Venues:")
	for _, v := range rep.Venues {
		top := "-"
		if v.MostFrequentBand != nil {
			top = v.MostFrequentBand.Name
		}
		fmt.Fprintf(w, "  #%d %s (%s) concerts: %d, most frequent band: %s\n",
			v.Venue.ID, v.Venue.Title, v.Venue.City, len(v.Concerts), top)
	}

	fmt.Fprintln(w, "Concerts:")
	for _, c := range rep.Concerts {
		fmt.Fprintf(w, "  #%d %s: %s at %s, hometown show: %t\n",
			c.Details.Concert.ID, c.Details.Concert.Date, c.Details.Band.Name, c.Details.Venue.Title, c.HometownShow)
	}

	if rep.MostPerformances != nil {
		fmt.Fprintf(w, "Most performances: %s\n", rep.MostPerformances.Name)
	}
}

func venueTitles(b app.BandReport) string {
	titles := make([]string, 0, len(b.Venues))
	for _, v := range b.Venues {
		titles = append(titles, v.Title)
	}
	return strings.Join(titles, ", ")
}
