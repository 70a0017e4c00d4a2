package acp

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OpenTime returns the earliest time a rider may check in at a control
// controlKm along a brevet of nominal distance brevet started at start. The
// result keeps the UTC offset of start, even across a daylight saving change
// in its location.
func OpenTime(controlKm decimal.Decimal, brevet BrevetDistance, start time.Time) (time.Time, error) {
	if err := validate(controlKm, brevet); err != nil {
		return time.Time{}, err
	}
	if controlKm.IsZero() {
		return start, nil
	}
	if f, ok := virtualFinish[brevet]; ok && f.open > 0 && controlKm.GreaterThanOrEqual(brevet.Km()) {
		return shift(start, f.open), nil
	}

	hours := decimal.Zero
	last := decimal.Zero
	for _, b := range speedTable {
		upper := b.Upper()
		switch {
		case upper.GreaterThanOrEqual(controlKm):
			hours = hours.Add(controlKm.Sub(last).Div(b.MaxKmh))
			return shift(start, elapsed(hours)), nil
		case withinOverrun(controlKm, brevet) && upper.GreaterThanOrEqual(brevet.Km()):
			// past the finish: open as if the control were at the bracket bound
			hours = hours.Add(upper.Sub(last).Div(b.MaxKmh))
			return shift(start, elapsed(hours)), nil
		default:
			hours = hours.Add(upper.Sub(last).Div(b.MaxKmh))
			last = upper
		}
	}
	return time.Time{}, outOfRange(controlKm, brevet)
}

// CloseTime returns the latest time a rider may check in at a control
// controlKm along a brevet of nominal distance brevet started at start. The
// result keeps the UTC offset of start, as OpenTime does.
func CloseTime(controlKm decimal.Decimal, brevet BrevetDistance, start time.Time) (time.Time, error) {
	if err := validate(controlKm, brevet); err != nil {
		return time.Time{}, err
	}
	if controlKm.LessThanOrEqual(neutralKm) {
		return shift(start, neutralFloor + elapsed(controlKm.Div(neutralKmh))), nil
	}
	if f, ok := virtualFinish[brevet]; ok && controlKm.GreaterThanOrEqual(brevet.Km()) {
		return shift(start, f.close), nil
	}

	hours := decimal.Zero
	last := decimal.Zero
	for _, b := range speedTable {
		upper := b.Upper()
		switch {
		case upper.GreaterThan(controlKm):
			hours = hours.Add(controlKm.Sub(last).Div(b.MinKmh))
			return shift(start, elapsed(hours)), nil
		case withinOverrun(controlKm, brevet) && upper.GreaterThanOrEqual(brevet.Km()):
			return shift(start, finishClose[brevet]), nil
		case upper.Equal(controlKm):
			hours = hours.Add(controlKm.Sub(last).Div(b.MinKmh))
			return shift(start, elapsed(hours)), nil
		default:
			hours = hours.Add(upper.Sub(last).Div(b.MinKmh))
			last = upper
		}
	}
	return time.Time{}, outOfRange(controlKm, brevet)
}

// shift returns start moved by d. The result is pinned to the UTC offset of
// start when its location observes a different one at that instant.
func shift(start time.Time, d time.Duration) time.Time {
	t := start.Add(d)
	name, offset := start.Zone()
	if _, o := t.Zone(); o == offset {
		return t
	}
	return t.In(time.FixedZone(name, offset))
}

// elapsed converts fractional hours to whole hours plus the remainder rounded
// half to even to the minute.
func elapsed(hours decimal.Decimal) time.Duration {
	whole := hours.Floor()
	minutes := hours.Sub(whole).Mul(minutesInHour).RoundBank(0)
	return time.Duration(whole.IntPart())*time.Hour + time.Duration(minutes.IntPart())*time.Minute
}

func withinOverrun(controlKm decimal.Decimal, brevet BrevetDistance) bool {
	return controlKm.LessThanOrEqual(MaxControlKm(brevet))
}

func validate(controlKm decimal.Decimal, brevet BrevetDistance) error {
	if err := brevet.Validate(); err != nil {
		return err
	}
	// checked before any comparison rescales controlKm
	if exp := controlKm.Exponent(); exp < minDistanceExponent || exp > maxDistanceExponent {
		return fmt.Errorf("%w: exponent %d outside [%d, %d]", ErrMalformedDistance, exp, minDistanceExponent, maxDistanceExponent)
	}
	if controlKm.IsNegative() || !withinOverrun(controlKm, brevet) {
		return outOfRange(controlKm, brevet)
	}
	return nil
}

func outOfRange(controlKm decimal.Decimal, brevet BrevetDistance) error {
	return fmt.Errorf("%w: %s km on a %d km brevet (max %s km)",
		ErrOutOfRangeControl, controlKm, int(brevet), MaxControlKm(brevet))
}
