package domain

import (
	"errors"
	"fmt"
)

var (
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	ErrBandNotFound         = fmt.Errorf("%w: band not found", ErrReferentialIntegrity)
	ErrVenueNotFound        = fmt.Errorf("%w: venue not found", ErrReferentialIntegrity)
	ErrConcertNotFound      = errors.New("concert not found")
	ErrInvalidID            = errors.New("invalid id")
)
