package acp

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Window is the check-in window of a single control.
type Window struct {
	ControlKm decimal.Decimal
	Open      time.Time
	Close     time.Time
}

// ControlWindow returns both ends of the check-in window of a control.
func ControlWindow(controlKm decimal.Decimal, brevet BrevetDistance, start time.Time) (Window, error) {
	open, err := OpenTime(controlKm, brevet, start)
	if err != nil {
		return Window{}, err
	}
	closing, err := CloseTime(controlKm, brevet, start)
	if err != nil {
		return Window{}, err
	}
	return Window{ControlKm: controlKm, Open: open, Close: closing}, nil
}

// Schedule computes the windows of every control of a route sheet, in input
// order. The first invalid control aborts the whole sheet.
func Schedule(brevet BrevetDistance, start time.Time, controls []decimal.Decimal) ([]Window, error) {
	if err := brevet.Validate(); err != nil {
		return nil, err
	}
	windows := make([]Window, 0, len(controls))
	for i, km := range controls {
		w, err := ControlWindow(km, brevet, start)
		if err != nil {
			return nil, fmt.Errorf("control %d: %w", i+1, err)
		}
		windows = append(windows, w)
	}
	return windows, nil
}
