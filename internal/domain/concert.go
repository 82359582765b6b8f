package domain

import "fmt"

// Concert links one band to one venue on a date. The date is stored as given.
type Concert struct {
	ID      int64
	BandID  int64
	VenueID int64
	Date    string
}

// ConcertDetails is a concert joined with its band and venue.
type ConcertDetails struct {
	Concert Concert
	Band    Band
	Venue   Venue
}

// IsHometownShow reports whether the venue is in the band's hometown.
// Cities are compared exactly, including case.
func (c ConcertDetails) IsHometownShow() bool {
	return c.Venue.City == c.Band.Hometown
}

// Introduction returns the line the band opens the show with.
func (c ConcertDetails) Introduction() string {
	return fmt.Sprintf("Hello %s!!!!! We are %s and we're from %s", c.Venue.City, c.Band.Name, c.Band.Hometown)
}
