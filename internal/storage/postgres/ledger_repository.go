package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cimillas/concert-ledger/internal/domain"
)

type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func (r *LedgerRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *LedgerRepository) CreateBand(ctx context.Context, band domain.Band) (domain.Band, error) {
	const stmt = `INSERT INTO bands (name, hometown) VALUES ($1, $2) RETURNING id`
	if err := r.queryRow(ctx, stmt, band.Name, band.Hometown).Scan(&band.ID); err != nil {
		return domain.Band{}, fmt.Errorf("create band: %w", err)
	}
	return band, nil
}

func (r *LedgerRepository) CreateVenue(ctx context.Context, venue domain.Venue) (domain.Venue, error) {
	const stmt = `INSERT INTO venues (title, city) VALUES ($1, $2) RETURNING id`
	if err := r.queryRow(ctx, stmt, venue.Title, venue.City).Scan(&venue.ID); err != nil {
		return domain.Venue{}, fmt.Errorf("create venue: %w", err)
	}
	return venue, nil
}

func (r *LedgerRepository) CreateConcert(ctx context.Context, concert domain.Concert) (domain.Concert, error) {
	err := r.WithTx(ctx, func(ctx context.Context) error {
		if ok, err := r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM bands WHERE id = $1)`, concert.BandID); err != nil {
			return fmt.Errorf("check band: %w", err)
		} else if !ok {
			return domain.ErrBandNotFound
		}
		if ok, err := r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM venues WHERE id = $1)`, concert.VenueID); err != nil {
			return fmt.Errorf("check venue: %w", err)
		} else if !ok {
			return domain.ErrVenueNotFound
		}

		const stmt = `
INSERT INTO concerts (date, band_id, venue_id)
VALUES ($1, $2, $3)
RETURNING id`
		err := r.queryRow(ctx, stmt, concert.Date, concert.BandID, concert.VenueID).Scan(&concert.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrReferentialIntegrity
			}
			return fmt.Errorf("create concert: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Concert{}, err
	}
	return concert, nil
}

func (r *LedgerRepository) GetBand(ctx context.Context, id int64) (*domain.Band, error) {
	const query = `SELECT id, name, hometown FROM bands WHERE id = $1`
	var b domain.Band
	err := r.queryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.Hometown)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get band: %w", err)
	}
	return &b, nil
}

func (r *LedgerRepository) GetVenue(ctx context.Context, id int64) (*domain.Venue, error) {
	const query = `SELECT id, title, city FROM venues WHERE id = $1`
	var v domain.Venue
	err := r.queryRow(ctx, query, id).Scan(&v.ID, &v.Title, &v.City)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

func (r *LedgerRepository) GetConcertDetails(ctx context.Context, id int64) (*domain.ConcertDetails, error) {
	d, err := scanConcertDetails(r.queryRow(ctx, concertDetailsSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get concert: %w", err)
	}
	return &d, nil
}

func (r *LedgerRepository) ListBands(ctx context.Context) ([]domain.Band, error) {
	return r.listBands(ctx, `SELECT id, name, hometown FROM bands ORDER BY id ASC`)
}

func (r *LedgerRepository) ListVenues(ctx context.Context) ([]domain.Venue, error) {
	return r.listVenues(ctx, `SELECT id, title, city FROM venues ORDER BY id ASC`)
}

func (r *LedgerRepository) ListConcertsByBand(ctx context.Context, bandID int64) ([]domain.ConcertDetails, error) {
	rows, err := r.query(ctx, concertDetailsSelect+` WHERE c.band_id = $1 ORDER BY c.id ASC`, bandID)
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
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate concerts: %w", rows.Err())
	}
	return out, nil
}

func (r *LedgerRepository) ListConcertsByVenue(ctx context.Context, venueID int64) ([]domain.Concert, error) {
	const query = `
SELECT id, band_id, venue_id, date
FROM concerts
WHERE venue_id = $1
ORDER BY id ASC`
	rows, err := r.query(ctx, query, venueID)
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
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate concerts: %w", rows.Err())
	}
	return out, nil
}

func (r *LedgerRepository) ListVenuesByBand(ctx context.Context, bandID int64) ([]domain.Venue, error) {
	const query = `
SELECT DISTINCT v.id, v.title, v.city
FROM venues v
JOIN concerts c ON c.venue_id = v.id
WHERE c.band_id = $1
ORDER BY v.id ASC`
	return r.listVenues(ctx, query, bandID)
}

func (r *LedgerRepository) ListBandsByVenue(ctx context.Context, venueID int64) ([]domain.Band, error) {
	const query = `
SELECT DISTINCT b.id, b.name, b.hometown
FROM bands b
JOIN concerts c ON c.band_id = b.id
WHERE c.venue_id = $1
ORDER BY b.id ASC`
	return r.listBands(ctx, query, venueID)
}

func (r *LedgerRepository) FindConcertOn(ctx context.Context, venueID int64, date string) (*domain.Concert, error) {
	const query = `
SELECT id, band_id, venue_id, date
FROM concerts
WHERE venue_id = $1 AND date = $2
ORDER BY id ASC
LIMIT 1`
	var c domain.Concert
	err := r.queryRow(ctx, query, venueID, date).Scan(&c.ID, &c.BandID, &c.VenueID, &c.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find concert on %s: %w", date, err)
	}
	return &c, nil
}

func (r *LedgerRepository) TopBand(ctx context.Context, venueID *int64) (*domain.Band, error) {
	const query = `
SELECT b.id, b.name, b.hometown
FROM concerts c
JOIN bands b ON b.id = c.band_id
WHERE $1::BIGINT IS NULL OR c.venue_id = $1
GROUP BY b.id, b.name, b.hometown
ORDER BY COUNT(c.id) DESC, b.id ASC
LIMIT 1`
	var b domain.Band
	err := r.queryRow(ctx, query, venueID).Scan(&b.ID, &b.Name, &b.Hometown)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("top band: %w", err)
	}
	return &b, nil
}

func (r *LedgerRepository) listBands(ctx context.Context, query string, args ...any) ([]domain.Band, error) {
	rows, err := r.query(ctx, query, args...)
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
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate bands: %w", rows.Err())
	}
	return out, nil
}

func (r *LedgerRepository) listVenues(ctx context.Context, query string, args ...any) ([]domain.Venue, error) {
	rows, err := r.query(ctx, query, args...)
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
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate venues: %w", rows.Err())
	}
	return out, nil
}

func scanConcertDetails(row pgx.Row) (domain.ConcertDetails, error) {
	var d domain.ConcertDetails
	err := row.Scan(
		&d.Concert.ID, &d.Concert.BandID, &d.Concert.VenueID, &d.Concert.Date,
		&d.Band.ID, &d.Band.Name, &d.Band.Hometown,
		&d.Venue.ID, &d.Venue.Title, &d.Venue.City,
	)
	return d, err
}

func (r *LedgerRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	if err := r.queryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *LedgerRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *LedgerRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
