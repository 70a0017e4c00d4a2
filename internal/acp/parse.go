package acp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrMalformedDistance is returned for control distances that are not numbers.
	ErrMalformedDistance = errors.New("malformed control distance")
	// ErrMalformedStart is returned for start times in no accepted layout.
	ErrMalformedStart = errors.New("malformed start time")
)

var kmPerMile = decimal.RequireFromString("1.609344")

// Bounds on the textual form of a distance. Arithmetic on a decimal rescales
// it to the other operand's exponent, so exponents far from zero are costly.
const (
	maxDistanceLen      = 32
	minDistanceExponent = -9
	maxDistanceExponent = 6
)

// ParseKm parses a control distance. A bare number or a "km" suffix is read as
// kilometres, a "mi" suffix as statute miles. Precision is limited to
// nanometre-level fractions of a kilometre.
func ParseKm(s string) (decimal.Decimal, error) {
	if len(s) > maxDistanceLen {
		return decimal.Zero, fmt.Errorf("%w: too long", ErrMalformedDistance)
	}
	v := strings.ToLower(strings.TrimSpace(s))
	factor := decimal.NewFromInt(1)
	switch {
	case strings.HasSuffix(v, "km"):
		v = strings.TrimSuffix(v, "km")
	case strings.HasSuffix(v, "mi"):
		v = strings.TrimSuffix(v, "mi")
		factor = kmPerMile
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedDistance, s)
	}
	if exp := d.Exponent(); exp < minDistanceExponent || exp > maxDistanceExponent {
		return decimal.Zero, fmt.Errorf("%w: %q exceeds supported precision", ErrMalformedDistance, s)
	}
	return d.Mul(factor).Round(-minDistanceExponent), nil
}

// StartLayout is the minute-resolution layout used by the entry form. Times in
// this layout carry no offset and are read as UTC.
const StartLayout = "2006-01-02T15:04"

// ParseStart parses an event start time given in RFC 3339 or StartLayout.
func ParseStart(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(StartLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedStart, s)
	}
	return t, nil
}
