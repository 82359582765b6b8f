package domain

import "testing"

func TestConcertDetails_IsHometownShow(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		hometown string
		city     string
		want     bool
	}{
		{name: "same city", hometown: "London", city: "London", want: true},
		{name: "different city", hometown: "Liverpool", city: "New York", want: false},
		{name: "case differs", hometown: "london", city: "London", want: false},
		{name: "trailing space", hometown: "London ", city: "London", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := ConcertDetails{
				Band:  Band{Name: "Queen", Hometown: tc.hometown},
				Venue: Venue{Title: "Wembley Stadium", City: tc.city},
			}
			if got := c.IsHometownShow(); got != tc.want {
				t.Fatalf("IsHometownShow() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestConcertDetails_Introduction(t *testing.T) {
	t.Parallel()

	c := ConcertDetails{
		Concert: Concert{ID: 7, Date: "2024-09-19"},
		Band:    Band{ID: 1, Name: "The Beatles", Hometown: "Liverpool"},
		Venue:   Venue{ID: 2, Title: "Madison Square Garden", City: "New York"},
	}

	want := "Hello New York!!!!! We are The Beatles and we're from Liverpool"
	if got := c.Introduction(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	// Only city, name and hometown feed the line.
	other := c
	other.Concert = Concert{ID: 99, Date: "1999-01-01"}
	other.Band.ID = 42
	other.Venue.Title = "Somewhere Else"
	if other.Introduction() != c.Introduction() {
		t.Fatalf("expected identical introductions, got %q and %q", other.Introduction(), c.Introduction())
	}
}
