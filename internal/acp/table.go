package acp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidBrevetDistance is returned when a nominal distance is not one of
	// the canonical ACP brevet lengths.
	ErrInvalidBrevetDistance = errors.New("invalid brevet distance")
	// ErrOutOfRangeControl is returned when a control lies before the start or
	// past the overrun allowance of its brevet.
	ErrOutOfRangeControl = errors.New("control distance out of range")
)

// BrevetDistance is the nominal length of an event in kilometres.
type BrevetDistance int

// Canonical ACP brevet distances.
const (
	Brevet200  BrevetDistance = 200
	Brevet300  BrevetDistance = 300
	Brevet400  BrevetDistance = 400
	Brevet600  BrevetDistance = 600
	Brevet1000 BrevetDistance = 1000
)

var brevetDistances = [...]BrevetDistance{Brevet200, Brevet300, Brevet400, Brevet600, Brevet1000}

// BrevetDistances returns the canonical distances in ascending order.
func BrevetDistances() []BrevetDistance {
	d := brevetDistances
	return d[:]
}

// Validate returns ErrInvalidBrevetDistance unless b is canonical.
func (b BrevetDistance) Validate() error {
	for _, d := range brevetDistances {
		if b == d {
			return nil
		}
	}
	return fmt.Errorf("%w: %d km", ErrInvalidBrevetDistance, int(b))
}

// Km returns the distance as a decimal.
func (b BrevetDistance) Km() decimal.Decimal {
	return decimal.NewFromInt(int64(b))
}

// ParseBrevetDistance parses a nominal distance such as "300" or "300km".
func ParseBrevetDistance(s string) (BrevetDistance, error) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "km")
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBrevetDistance, s)
	}
	b := BrevetDistance(n)
	if err := b.Validate(); err != nil {
		return 0, err
	}
	return b, nil
}

// Bracket is one row of the speed table. Kilometres up to UpperKm that were not
// covered by an earlier bracket are ridden between MinKmh and MaxKmh.
type Bracket struct {
	UpperKm int64
	MinKmh  decimal.Decimal
	MaxKmh  decimal.Decimal
}

// Upper returns the bracket's upper bound as a decimal.
func (b Bracket) Upper() decimal.Decimal {
	return decimal.NewFromInt(b.UpperKm)
}

var speedTable = [...]Bracket{
	{UpperKm: 200, MinKmh: decimal.NewFromInt(15), MaxKmh: decimal.NewFromInt(34)},
	{UpperKm: 400, MinKmh: decimal.NewFromInt(15), MaxKmh: decimal.NewFromInt(32)},
	{UpperKm: 600, MinKmh: decimal.NewFromInt(15), MaxKmh: decimal.NewFromInt(30)},
	{UpperKm: 1000, MinKmh: decimal.RequireFromString("11.428"), MaxKmh: decimal.NewFromInt(28)},
}

// SpeedTable returns a copy of the bracket table sorted by upper bound.
func SpeedTable() []Bracket {
	t := speedTable
	return t[:]
}

// finish holds the fixed allowances granted to a control at or past the
// nominal distance of a brevet.
type finish struct {
	open  time.Duration // zero when the open time is computed from the table
	close time.Duration
}

// 300 km is not a bracket bound, so both ends of its finish window are fixed.
var virtualFinish = map[BrevetDistance]finish{
	Brevet300: {open: 9 * time.Hour, close: 20 * time.Hour},
}

// Published ACP total time limits.
var finishClose = map[BrevetDistance]time.Duration{
	Brevet200:  13*time.Hour + 30*time.Minute,
	Brevet300:  20 * time.Hour,
	Brevet400:  27 * time.Hour,
	Brevet600:  40 * time.Hour,
	Brevet1000: 75 * time.Hour,
}

var (
	// overrunFactor is how far past the nominal distance a control may sit.
	overrunFactor = decimal.RequireFromString("1.2")

	// Controls up to neutralKm close at a flat neutralKmh pace plus one hour.
	neutralKm     = decimal.NewFromInt(60)
	neutralKmh    = decimal.NewFromInt(20)
	neutralFloor  = time.Hour
	minutesInHour = decimal.NewFromInt(60)
)

// MaxControlKm returns the furthest control distance accepted for b.
func MaxControlKm(b BrevetDistance) decimal.Decimal {
	return b.Km().Mul(overrunFactor)
}
