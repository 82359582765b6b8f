// Package clock lets the ledger stamp reports without reading the wall
// clock directly.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem returns the wall clock, in UTC.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

type fixedClock time.Time

// NewFixed always returns t. Used by tests and reproducible reports.
func NewFixed(t time.Time) Clock {
	return fixedClock(t.UTC())
}

func (f fixedClock) Now() time.Time {
	return time.Time(f)
}
