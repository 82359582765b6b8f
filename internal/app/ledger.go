package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cimillas/concert-ledger/internal/clock"
	"github.com/cimillas/concert-ledger/internal/domain"
)

// LedgerRepository is the relational store behind the ledger.
// Lookups that find nothing return nil/empty results, not errors.
type LedgerRepository interface {
	CreateBand(ctx context.Context, band domain.Band) (domain.Band, error)
	CreateVenue(ctx context.Context, venue domain.Venue) (domain.Venue, error)
	CreateConcert(ctx context.Context, concert domain.Concert) (domain.Concert, error)

	GetBand(ctx context.Context, id int64) (*domain.Band, error)
	GetVenue(ctx context.Context, id int64) (*domain.Venue, error)
	GetConcertDetails(ctx context.Context, id int64) (*domain.ConcertDetails, error)
	ListBands(ctx context.Context) ([]domain.Band, error)
	ListVenues(ctx context.Context) ([]domain.Venue, error)

	ListConcertsByBand(ctx context.Context, bandID int64) ([]domain.ConcertDetails, error)
	ListConcertsByVenue(ctx context.Context, venueID int64) ([]domain.Concert, error)
	ListVenuesByBand(ctx context.Context, bandID int64) ([]domain.Venue, error)
	ListBandsByVenue(ctx context.Context, venueID int64) ([]domain.Band, error)
	FindConcertOn(ctx context.Context, venueID int64, date string) (*domain.Concert, error)

	// TopBand returns the band with the most concerts, optionally scoped to
	// one venue. Ties go to the lowest band ID.
	TopBand(ctx context.Context, venueID *int64) (*domain.Band, error)
}

// Ledger is the read/write surface over bands, venues and concerts.
type Ledger struct {
	repo   LedgerRepository
	clock  clock.Clock
	logger zerolog.Logger
}

func NewLedger(repo LedgerRepository, clk clock.Clock, logger zerolog.Logger) *Ledger {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Ledger{
		repo:   repo,
		clock:  clk,
		logger: logger.With().Str("component", "ledger").Logger(),
	}
}

type CreateBandInput struct {
	Name     string
	Hometown string
}

// CreateBand stores the band as given; empty names and hometowns are kept.
func (l *Ledger) CreateBand(ctx context.Context, in CreateBandInput) (domain.Band, error) {
	band, err := l.repo.CreateBand(ctx, domain.Band{Name: in.Name, Hometown: in.Hometown})
	if err != nil {
		return domain.Band{}, err
	}
	l.logger.Debug().Int64("band_id", band.ID).Str("name", band.Name).Msg("band created")
	return band, nil
}

type CreateVenueInput struct {
	Title string
	City  string
}

func (l *Ledger) CreateVenue(ctx context.Context, in CreateVenueInput) (domain.Venue, error) {
	venue, err := l.repo.CreateVenue(ctx, domain.Venue{Title: in.Title, City: in.City})
	if err != nil {
		return domain.Venue{}, err
	}
	l.logger.Debug().Int64("venue_id", venue.ID).Str("title", venue.Title).Msg("venue created")
	return venue, nil
}

type ScheduleConcertInput struct {
	BandID  int64
	VenueID int64
	Date    string
}

// ScheduleConcert books a band into a venue. Any band or venue ID that does
// not name a stored row, zero and negative IDs included, fails with an error
// wrapping domain.ErrReferentialIntegrity. The date is stored verbatim and the
// same band, venue and date may be booked more than once.
func (l *Ledger) ScheduleConcert(ctx context.Context, in ScheduleConcertInput) (domain.Concert, error) {
	concert, err := l.repo.CreateConcert(ctx, domain.Concert{
		BandID:  in.BandID,
		VenueID: in.VenueID,
		Date:    in.Date,
	})
	if err != nil {
		return domain.Concert{}, err
	}
	l.logger.Debug().
		Int64("concert_id", concert.ID).
		Int64("band_id", concert.BandID).
		Int64("venue_id", concert.VenueID).
		Str("date", concert.Date).
		Msg("concert scheduled")
	return concert, nil
}

func (l *Ledger) GetBand(ctx context.Context, id int64) (*domain.Band, error) {
	return l.repo.GetBand(ctx, id)
}

func (l *Ledger) GetVenue(ctx context.Context, id int64) (*domain.Venue, error) {
	return l.repo.GetVenue(ctx, id)
}

// GetConcert returns the concert with its band and venue, or nil.
func (l *Ledger) GetConcert(ctx context.Context, id int64) (*domain.ConcertDetails, error) {
	return l.repo.GetConcertDetails(ctx, id)
}

func (l *Ledger) ListBands(ctx context.Context) ([]domain.Band, error) {
	return l.repo.ListBands(ctx)
}

func (l *Ledger) ListVenues(ctx context.Context) ([]domain.Venue, error) {
	return l.repo.ListVenues(ctx)
}

// ConcertsOfBand returns the band's concerts in insertion order.
func (l *Ledger) ConcertsOfBand(ctx context.Context, bandID int64) ([]domain.Concert, error) {
	details, err := l.repo.ListConcertsByBand(ctx, bandID)
	if err != nil {
		return nil, err
	}
	concerts := make([]domain.Concert, 0, len(details))
	for _, d := range details {
		concerts = append(concerts, d.Concert)
	}
	return concerts, nil
}

// VenuesOfBand returns each venue the band has played once.
func (l *Ledger) VenuesOfBand(ctx context.Context, bandID int64) ([]domain.Venue, error) {
	return l.repo.ListVenuesByBand(ctx, bandID)
}

func (l *Ledger) ConcertsAtVenue(ctx context.Context, venueID int64) ([]domain.Concert, error) {
	return l.repo.ListConcertsByVenue(ctx, venueID)
}

// BandsAtVenue returns each band that has played the venue once.
func (l *Ledger) BandsAtVenue(ctx context.Context, venueID int64) ([]domain.Band, error) {
	return l.repo.ListBandsByVenue(ctx, venueID)
}

// ConcertOn returns the earliest-booked concert at the venue on date, or nil.
func (l *Ledger) ConcertOn(ctx context.Context, venueID int64, date string) (*domain.Concert, error) {
	return l.repo.FindConcertOn(ctx, venueID, date)
}

// MostFrequentBand returns the band with the most concerts at the venue,
// lowest band ID on a tie, or nil when the venue has none.
func (l *Ledger) MostFrequentBand(ctx context.Context, venueID int64) (*domain.Band, error) {
	return l.repo.TopBand(ctx, &venueID)
}

// MostPerformances is MostFrequentBand across every venue.
func (l *Ledger) MostPerformances(ctx context.Context) (*domain.Band, error) {
	return l.repo.TopBand(ctx, nil)
}

func (l *Ledger) IsHometownShow(ctx context.Context, concertID int64) (bool, error) {
	details, err := l.concertDetails(ctx, concertID)
	if err != nil {
		return false, err
	}
	return details.IsHometownShow(), nil
}

func (l *Ledger) IntroductionLine(ctx context.Context, concertID int64) (string, error) {
	details, err := l.concertDetails(ctx, concertID)
	if err != nil {
		return "", err
	}
	return details.Introduction(), nil
}

// AllIntroductions returns the introduction for each of the band's concerts,
// in insertion order.
func (l *Ledger) AllIntroductions(ctx context.Context, bandID int64) ([]string, error) {
	details, err := l.repo.ListConcertsByBand(ctx, bandID)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(details))
	for _, d := range details {
		lines = append(lines, d.Introduction())
	}
	return lines, nil
}

func (l *Ledger) concertDetails(ctx context.Context, concertID int64) (domain.ConcertDetails, error) {
	details, err := l.repo.GetConcertDetails(ctx, concertID)
	if err != nil {
		return domain.ConcertDetails{}, err
	}
	if details == nil {
		return domain.ConcertDetails{}, domain.ErrConcertNotFound
	}
	return *details, nil
}
