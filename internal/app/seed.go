package app

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/cimillas/concert-ledger/internal/domain"
)

// SeedResult holds the rows written by Seed.
type SeedResult struct {
	Bands    []domain.Band
	Venues   []domain.Venue
	Concerts []domain.Concert
}

// Seed writes the demo data set: two bands, two venues, one concert each.
func (l *Ledger) Seed(ctx context.Context) (SeedResult, error) {
	var res SeedResult

	for _, in := range []CreateBandInput{
		{Name: "The Beatles", Hometown: "Liverpool"},
		{Name: "Pink Floyd", Hometown: "London"},
	} {
		band, err := l.CreateBand(ctx, in)
		if err != nil {
			return SeedResult{}, fmt.Errorf("seed band %q: %w", in.Name, err)
		}
		res.Bands = append(res.Bands, band)
	}

	for _, in := range []CreateVenueInput{
		{Title: "Madison Square Garden", City: "New York"},
		{Title: "The O2 Arena", City: "London"},
	} {
		venue, err := l.CreateVenue(ctx, in)
		if err != nil {
			return SeedResult{}, fmt.Errorf("seed venue %q: %w", in.Title, err)
		}
		res.Venues = append(res.Venues, venue)
	}

	dates := []string{"2024-09-19", "2024-09-20"}
	for i, date := range dates {
		concert, err := l.ScheduleConcert(ctx, ScheduleConcertInput{
			BandID:  res.Bands[i].ID,
			VenueID: res.Venues[i].ID,
			Date:    date,
		})
		if err != nil {
			return SeedResult{}, fmt.Errorf("seed concert %s: %w", date, err)
		}
		res.Concerts = append(res.Concerts, concert)
	}

	return res, nil
}

// BandReport summarises one band.
type BandReport struct {
	Band          domain.Band
	Concerts      []domain.Concert
	Venues        []domain.Venue
	Introductions []string
}

// VenueReport summarises one venue.
type VenueReport struct {
	Venue            domain.Venue
	Concerts         []domain.Concert
	Bands            []domain.Band
	MostFrequentBand *domain.Band
}

// ConcertReport summarises one concert.
type ConcertReport struct {
	Details      domain.ConcertDetails
	HometownShow bool
	Introduction string
}

// Report is a snapshot of every band, venue and concert with derived facts.
type Report struct {
	GeneratedAt      time.Time
	Bands            []BandReport
	Venues           []VenueReport
	Concerts         []ConcertReport
	MostPerformances *domain.Band
}

// Report walks the whole ledger. Intended for small data sets.
func (l *Ledger) Report(ctx context.Context) (Report, error) {
	rep := Report{GeneratedAt: l.clock.Now()}

	bands, err := l.ListBands(ctx)
	if err != nil {
		return Report{}, err
	}
	for _, band := range bands {
		details, err := l.repo.ListConcertsByBand(ctx, band.ID)
		if err != nil {
			return Report{}, err
		}
		venues, err := l.VenuesOfBand(ctx, band.ID)
		if err != nil {
			return Report{}, err
		}
		br := BandReport{Band: band, Venues: venues}
		for _, d := range details {
			br.Concerts = append(br.Concerts, d.Concert)
			br.Introductions = append(br.Introductions, d.Introduction())
			rep.Concerts = append(rep.Concerts, ConcertReport{
				Details:      d,
				HometownShow: d.IsHometownShow(),
				Introduction: d.Introduction(),
			})
		}
		rep.Bands = append(rep.Bands, br)
	}
	slices.SortFunc(rep.Concerts, func(a, b ConcertReport) int {
		return cmp.Compare(a.Details.Concert.ID, b.Details.Concert.ID)
	})

	venues, err := l.ListVenues(ctx)
	if err != nil {
		return Report{}, err
	}
	for _, venue := range venues {
		concerts, err := l.ConcertsAtVenue(ctx, venue.ID)
		if err != nil {
			return Report{}, err
		}
		played, err := l.BandsAtVenue(ctx, venue.ID)
		if err != nil {
			return Report{}, err
		}
		top, err := l.MostFrequentBand(ctx, venue.ID)
		if err != nil {
			return Report{}, err
		}
		rep.Venues = append(rep.Venues, VenueReport{
			Venue:            venue,
			Concerts:         concerts,
			Bands:            played,
			MostFrequentBand: top,
		})
	}

	rep.MostPerformances, err = l.MostPerformances(ctx)
	if err != nil {
		return Report{}, err
	}
	return rep, nil
}
