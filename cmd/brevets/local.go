package main

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"brevets/internal/acp"
	"brevets/internal/brevetapi"
)

// localClient answers brevetapi queries in-process.
type localClient struct{}

var _ brevetapi.Client = localClient{}

func (localClient) GetControlTimes(_ context.Context, km string, brevetDistKm int, beginDate string) (brevetapi.ControlTimes, error) {
	d, err := acp.ParseKm(km)
	if err != nil {
		return brevetapi.ControlTimes{}, err
	}
	begin, err := acp.ParseStart(beginDate)
	if err != nil {
		return brevetapi.ControlTimes{}, err
	}
	w, err := acp.ControlWindow(d, acp.BrevetDistance(brevetDistKm), begin)
	if err != nil {
		return brevetapi.ControlTimes{}, err
	}
	return toControlTimes(w), nil
}

func (localClient) PostSchedule(_ context.Context, req brevetapi.ScheduleRequest) (brevetapi.Schedule, error) {
	begin, err := acp.ParseStart(req.BeginDate)
	if err != nil {
		return brevetapi.Schedule{}, err
	}
	controls := make([]decimal.Decimal, 0, len(req.Controls))
	for _, s := range req.Controls {
		d, err := acp.ParseKm(s)
		if err != nil {
			return brevetapi.Schedule{}, err
		}
		controls = append(controls, d)
	}
	windows, err := acp.Schedule(acp.BrevetDistance(req.BrevetDistKm), begin, controls)
	if err != nil {
		return brevetapi.Schedule{}, err
	}

	out := brevetapi.Schedule{
		BrevetDistKm: req.BrevetDistKm,
		BeginDate:    begin.Format(time.RFC3339),
	}
	for _, w := range windows {
		out.Controls = append(out.Controls, toControlTimes(w))
	}
	return out, nil
}

func (localClient) GetBrevets(context.Context) (brevetapi.Brevets, error) {
	out := brevetapi.Brevets{MaxControlKm: make(map[int]float64)}
	for _, b := range acp.BrevetDistances() {
		out.Distances = append(out.Distances, int(b))
		out.MaxControlKm[int(b)] = acp.MaxControlKm(b).InexactFloat64()
	}
	for _, b := range acp.SpeedTable() {
		out.SpeedTable = append(out.SpeedTable, brevetapi.Bracket{
			UpperKm: b.UpperKm,
			MinKmh:  b.MinKmh.InexactFloat64(),
			MaxKmh:  b.MaxKmh.InexactFloat64(),
		})
	}
	return out, nil
}

func toControlTimes(w acp.Window) brevetapi.ControlTimes {
	return brevetapi.ControlTimes{
		ControlKm: w.ControlKm.InexactFloat64(),
		Open:      w.Open.Format(time.RFC3339),
		Close:     w.Close.Format(time.RFC3339),
	}
}
