package main

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cimillas/concert-ledger/internal/app"
	"github.com/cimillas/concert-ledger/internal/clock"
	"github.com/cimillas/concert-ledger/internal/config"
	"github.com/cimillas/concert-ledger/internal/storage/sqlite"
)

func TestPrintReport(t *testing.T) {
	store, err := sqlite.Open(context.Background(), sqlite.MemoryPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ledger := app.NewLedger(store, clock.NewFixed(time.Date(2024, 9, 21, 12, 0, 0, 0, time.UTC)), zerolog.Nop())
	if _, err := ledger.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	rep, err := ledger.Report(context.Background())
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	var buf bytes.Buffer
	printReport(&buf, rep)
	out := buf.String()

	for _, want := range []string{
		"Report generated 2024-09-21T12:00:00Z",
		"#1 The Beatles (Liverpool)",
		"Hello New York!!!!! We are The Beatles and we're from Liverpool",
		"The O2 Arena (London) concerts: 1, most frequent band: Pink Floyd",
		"2024-09-20: Pink Floyd at The O2 Arena, hometown show: true",
		"Most performances: The Beatles",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
}

func TestRun_ClosesFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concerts.db")
	cfg := config.Default()
	cfg.Store = config.StoreConfig{Driver: config.DriverSQLite, Path: path}
	ctx := context.Background()

	var seeded bytes.Buffer
	if err := run(ctx, cfg, zerolog.Nop(), false, &seeded); err != nil {
		t.Fatalf("seed run: %v", err)
	}
	if _, err := os.Stat(path + "-wal"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected write-ahead log removed on close, stat err: %v", err)
	}

	var reported bytes.Buffer
	if err := run(ctx, cfg, zerolog.Nop(), true, &reported); err != nil {
		t.Fatalf("report run: %v", err)
	}
	if !strings.Contains(reported.String(), "Most performances: The Beatles") {
		t.Fatalf("expected seeded data in report:\n%s", reported.String())
	}
	if strings.Count(reported.String(), "The Beatles (Liverpool)") != 1 {
		t.Fatalf("report-only run should not seed again:\n%s", reported.String())
	}
}

func TestRun_UnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = "mysql"

	err := run(context.Background(), cfg, zerolog.Nop(), false, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "open store") {
		t.Fatalf("expected open store error, got %v", err)
	}
}
