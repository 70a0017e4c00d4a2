package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"brevets/internal/acp"
)

type windowResponse struct {
	ControlKm float64 `json:"control_km"`
	Open      string  `json:"open"`
	Close     string  `json:"close"`
}

type scheduleRequest struct {
	BrevetDistKm int               `json:"brevet_dist_km"`
	BeginDate    string            `json:"begin_date"`
	Controls     []controlDistance `json:"controls"`
}

type scheduleResponse struct {
	BrevetDistKm int              `json:"brevet_dist_km"`
	BeginDate    string           `json:"begin_date"`
	Controls     []windowResponse `json:"controls"`
}

type bracketResponse struct {
	UpperKm int64   `json:"upper_km"`
	MinKmh  float64 `json:"min_kmh"`
	MaxKmh  float64 `json:"max_kmh"`
}

type brevetsResponse struct {
	Distances    []int             `json:"distances"`
	MaxControlKm map[int]float64   `json:"max_control_km"`
	SpeedTable   []bracketResponse `json:"speed_table"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// controlDistance accepts a JSON number or a string with an optional unit
// suffix, e.g. 60, "60.5" or "100mi".
type controlDistance decimal.Decimal

func (c *controlDistance) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	d, err := acp.ParseKm(s)
	if err != nil {
		return err
	}
	*c = controlDistance(d)
	return nil
}

// maxScheduleControls bounds the size of a single route sheet.
const maxScheduleControls = 256

// ControlTimesHandler returns a handler that calculates the check-in window of
// a single control from the km, brevet_dist_km and begin_date query params.
func ControlTimesHandler(m *Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		kmStr := q.Get("km")
		brevetStr := q.Get("brevet_dist_km")
		beginStr := q.Get("begin_date")

		if kmStr == "" || brevetStr == "" || beginStr == "" {
			writeError(w, http.StatusBadRequest, "missing required query parameters")
			return
		}
		controlKm, err := acp.ParseKm(kmStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		brevet, err := acp.ParseBrevetDistance(brevetStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		begin, err := acp.ParseStart(beginStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		win, err := acp.ControlWindow(controlKm, brevet, begin)
		m.recordCalculation(brevet, err)
		if err != nil {
			writeCalcError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toWindowResponse(win))
	})
}

// ScheduleHandler returns a handler that calculates the windows of every
// control of a route sheet posted as JSON.
func ScheduleHandler(m *Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req scheduleRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if req.BeginDate == "" || len(req.Controls) == 0 {
			writeError(w, http.StatusBadRequest, "begin_date and controls are required")
			return
		}
		if len(req.Controls) > maxScheduleControls {
			writeError(w, http.StatusBadRequest, "too many controls")
			return
		}
		brevet := acp.BrevetDistance(req.BrevetDistKm)
		begin, err := acp.ParseStart(req.BeginDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		controls := make([]decimal.Decimal, len(req.Controls))
		for i, c := range req.Controls {
			controls[i] = decimal.Decimal(c)
		}
		windows, err := acp.Schedule(brevet, begin, controls)
		m.recordCalculation(brevet, err)
		if err != nil {
			writeCalcError(w, r, err)
			return
		}

		resp := scheduleResponse{
			BrevetDistKm: int(brevet),
			BeginDate:    begin.Format(time.RFC3339),
			Controls:     make([]windowResponse, 0, len(windows)),
		}
		for _, win := range windows {
			resp.Controls = append(resp.Controls, toWindowResponse(win))
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

// BrevetsHandler returns a handler describing the canonical distances and the
// speed table the calculation uses.
func BrevetsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := brevetsResponse{MaxControlKm: make(map[int]float64)}
		for _, b := range acp.BrevetDistances() {
			resp.Distances = append(resp.Distances, int(b))
			resp.MaxControlKm[int(b)] = acp.MaxControlKm(b).InexactFloat64()
		}
		for _, b := range acp.SpeedTable() {
			resp.SpeedTable = append(resp.SpeedTable, bracketResponse{
				UpperKm: b.UpperKm,
				MinKmh:  b.MinKmh.InexactFloat64(),
				MaxKmh:  b.MaxKmh.InexactFloat64(),
			})
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

func toWindowResponse(win acp.Window) windowResponse {
	return windowResponse{
		ControlKm: win.ControlKm.InexactFloat64(),
		Open:      win.Open.Format(time.RFC3339),
		Close:     win.Close.Format(time.RFC3339),
	}
}

// writeCalcError reports caller input errors as 400 and anything else as 500.
func writeCalcError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, acp.ErrOutOfRangeControl) || errors.Is(err, acp.ErrInvalidBrevetDistance) ||
		errors.Is(err, acp.ErrMalformedDistance) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Error("control time calculation failed", "err", err, "request_id", RequestID(r.Context()))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
