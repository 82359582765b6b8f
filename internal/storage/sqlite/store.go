// Package sqlite provides the SQLite-backed ledger repository.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cimillas/concert-ledger/internal/domain"
	"github.com/cimillas/concert-ledger/migrations"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store persists bands, venues and concerts in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens the database at path (or MemoryPath) and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := MemoryPath + "?_pragma=foreign_keys(1)"
	if path != MemoryPath {
		dsn = filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection: the whole ledger shares a single session, and an
	// in-memory database only lives as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ensureForeignKeysEnabled(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrations.ApplySQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the handle for tests and tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

func ensureForeignKeysEnabled(ctx context.Context, db *sql.DB) error {
	var enabled int
	if err := db.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&enabled); err != nil {
		return fmt.Errorf("check sqlite foreign key pragma: %w", err)
	}
	if enabled != 1 {
		return fmt.Errorf("sqlite foreign keys are disabled")
	}
	return nil
}

func (s *Store) CreateBand(ctx context.Context, band domain.Band) (domain.Band, error) {
	const stmt = `INSERT INTO bands (name, hometown) VALUES (?, ?)`
	res, err := s.exec(ctx, stmt, band.Name, band.Hometown)
	if err != nil {
		return domain.Band{}, fmt.Errorf("create band: %w", err)
	}
	band.ID, err = res.LastInsertId()
	if err != nil {
		return domain.Band{}, fmt.Errorf("band id: %w", err)
	}
	return band, nil
}

func (s *Store) CreateVenue(ctx context.Context, venue domain.Venue) (domain.Venue, error) {
	const stmt = `INSERT INTO venues (title, city) VALUES (?, ?)`
	res, err := s.exec(ctx, stmt, venue.Title, venue.City)
	if err != nil {
		return domain.Venue{}, fmt.Errorf("create venue: %w", err)
	}
	venue.ID, err = res.LastInsertId()
	if err != nil {
		return domain.Venue{}, fmt.Errorf("venue id: %w", err)
	}
	return venue, nil
}

// CreateConcert checks both references inside one transaction so the
// caller learns which one is missing; the foreign keys still back it up.
func (s *Store) CreateConcert(ctx context.Context, concert domain.Concert) (domain.Concert, error) {
	err := s.withTx(ctx, func(ctx context.Context) error {
		if ok, err := s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM bands WHERE id = ?)`, concert.BandID); err != nil {
			return fmt.Errorf("check band: %w", err)
		} else if !ok {
			return domain.ErrBandNotFound
		}
		if ok, err := s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM venues WHERE id = ?)`, concert.VenueID); err != nil {
			return fmt.Errorf("check venue: %w", err)
		} else if !ok {
			return domain.ErrVenueNotFound
		}

		const stmt = `INSERT INTO concerts (date, band_id, venue_id) VALUES (?, ?, ?)`
		res, err := s.exec(ctx, stmt, concert.Date, concert.BandID, concert.VenueID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrReferentialIntegrity
			}
			return fmt.Errorf("create concert: %w", err)
		}
		concert.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("concert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Concert{}, err
	}
	return concert, nil
}

func (s *Store) GetBand(ctx context.Context, id int64) (*domain.Band, error) {
	const query = `SELECT id, name, hometown FROM bands WHERE id = ?`
	var b domain.Band
	err := s.queryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.Hometown)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get band: %w", err)
	}
	return &b, nil
}

func (s *Store) GetVenue(ctx context.Context, id int64) (*domain.Venue, error) {
	const query = `SELECT id, title, city FROM venues WHERE id = ?`
	var v domain.Venue
	err := s.queryRow(ctx, query, id).Scan(&v.ID, &v.Title, &v.City)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get venue: %w", err)
	}
	return &v, nil
}

const concertDetailsSelect = `
SELECT c.id, c.band_id, c.venue_id, c.date,
       b.id, b.name, b.hometown,
       v.id, v.title, v.city
FROM concerts c
JOIN bands b ON b.id = c.band_id
JOIN venues v ON v.id = c.venue_id`

func (s *Store) GetConcertDetails(ctx context.Context, id int64) (*domain.ConcertDetails, error) {
	d, err := scanConcertDetails(s.queryRow(ctx, concertDetailsSelect+` WHERE c.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get concert: %w", err)
	}
	return &d, nil
}

func (s *Store) ListBands(ctx context.Context) ([]domain.Band, error) {
	return s.listBands(ctx, `SELECT id, name, hometown FROM bands ORDER BY id ASC`)
}

func (s *Store) ListVenues(ctx context.Context) ([]domain.Venue, error) {
	return s.listVenues(ctx, `SELECT id, title, city FROM venues ORDER BY id ASC`)
}

func (s *Store) ListConcertsByBand(ctx context.Context, bandID int64) ([]domain.ConcertDetails, error) {
	rows, err := s.query(ctx, concertDetailsSelect+` WHERE c.band_id = ? ORDER BY c.id ASC`, bandID)
	if err != nil {
		return nil, fmt.Errorf("list band concerts: %w", err)
	}
	defer rows.Close()

	var out []domain.ConcertDetails
	for rows.Next() {
		d, err := scanConcertDetails(rows)
		if err != nil {
			return nil, fmt.Errorf("scan concert: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate concerts: %w", err)
	}
	return out, nil
}

func (s *Store) ListConcertsByVenue(ctx context.Context, venueID int64) ([]domain.Concert, error) {
	const query = `
SELECT id, band_id, venue_id, date
FROM concerts
WHERE venue_id = ?
ORDER BY id ASC`
	rows, err := s.query(ctx, query, venueID)
	if err != nil {
		return nil, fmt.Errorf("list venue concerts: %w", err)
	}
	defer rows.Close()

	var out []domain.Concert
	for rows.Next() {
		var c domain.Concert
		if err := rows.Scan(&c.ID, &c.BandID, &c.VenueID, &c.Date); err != nil {
			return nil, fmt.Errorf("scan concert: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate concerts: %w", err)
	}
	return out, nil
}

func (s *Store) ListVenuesByBand(ctx context.Context, bandID int64) ([]domain.Venue, error) {
	const query = `
SELECT DISTINCT v.id, v.title, v.city
FROM venues v
JOIN concerts c ON c.venue_id = v.id
WHERE c.band_id = ?
ORDER BY v.id ASC`
	return s.listVenues(ctx, query, bandID)
}

func (s *Store) ListBandsByVenue(ctx context.Context, venueID int64) ([]domain.Band, error) {
	const query = `
SELECT DISTINCT b.id, b.name, b.hometown
FROM bands b
JOIN concerts c ON c.band_id = b.id
WHERE c.venue_id = ?
ORDER BY b.id ASC`
	return s.listBands(ctx, query, venueID)
}

func (s *Store) FindConcertOn(ctx context.Context, venueID int64, date string) (*domain.Concert, error) {
	const query = `
SELECT id, band_id, venue_id, date
FROM concerts
WHERE venue_id = ? AND date = ?
ORDER BY id ASC
LIMIT 1`
	var c domain.Concert
	err := s.queryRow(ctx, query, venueID, date).Scan(&c.ID, &c.BandID, &c.VenueID, &c.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find concert on %s: %w", date, err)
	}
	return &c, nil
}

func (s *Store) TopBand(ctx context.Context, venueID *int64) (*domain.Band, error) {
	const query = `
SELECT b.id, b.name, b.hometown
FROM concerts c
JOIN bands b ON b.id = c.band_id
WHERE ? IS NULL OR c.venue_id = ?
GROUP BY b.id, b.name, b.hometown
ORDER BY COUNT(c.id) DESC, b.id ASC
LIMIT 1`
	var scope sql.NullInt64
	if venueID != nil {
		scope = sql.NullInt64{Int64: *venueID, Valid: true}
	}
	var b domain.Band
	err := s.queryRow(ctx, query, scope, scope).Scan(&b.ID, &b.Name, &b.Hometown)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("top band: %w", err)
	}
	return &b, nil
}

func (s *Store) listBands(ctx context.Context, query string, args ...any) ([]domain.Band, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bands: %w", err)
	}
	defer rows.Close()

	var out []domain.Band
	for rows.Next() {
		var b domain.Band
		if err := rows.Scan(&b.ID, &b.Name, &b.Hometown); err != nil {
			return nil, fmt.Errorf("scan band: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bands: %w", err)
	}
	return out, nil
}

func (s *Store) listVenues(ctx context.Context, query string, args ...any) ([]domain.Venue, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	var out []domain.Venue
	for rows.Next() {
		var v domain.Venue
		if err := rows.Scan(&v.ID, &v.Title, &v.City); err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate venues: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConcertDetails(row rowScanner) (domain.ConcertDetails, error) {
	var d domain.ConcertDetails
	err := row.Scan(
		&d.Concert.ID, &d.Concert.BandID, &d.Concert.VenueID, &d.Concert.Date,
		&d.Band.ID, &d.Band.Name, &d.Band.Hometown,
		&d.Venue.ID, &d.Venue.Title, &d.Venue.City,
	)
	return d, err
}

func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	if err := s.queryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
