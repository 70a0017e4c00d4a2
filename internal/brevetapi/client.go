package brevetapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client defines methods to query a running brevets API.
type Client interface {
	GetControlTimes(ctx context.Context, km string, brevetDistKm int, beginDate string) (ControlTimes, error)
	PostSchedule(ctx context.Context, req ScheduleRequest) (Schedule, error)
	GetBrevets(ctx context.Context) (Brevets, error)
}

// APIError is returned for any non-200 answer.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("brevets api %d: %s", e.StatusCode, e.Message)
}

type client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) Client {
	return &client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *client) GetControlTimes(ctx context.Context, km string, brevetDistKm int, beginDate string) (ControlTimes, error) {
	q := url.Values{}
	q.Set("km", km)
	q.Set("brevet_dist_km", fmt.Sprint(brevetDistKm))
	q.Set("begin_date", beginDate)

	var out ControlTimes
	err := c.do(ctx, http.MethodGet, "/api/v1/control-times?"+q.Encode(), nil, &out)
	return out, err
}

func (c *client) PostSchedule(ctx context.Context, req ScheduleRequest) (Schedule, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Schedule{}, err
	}
	var out Schedule
	err = c.do(ctx, http.MethodPost, "/api/v1/schedules", body, &out)
	return out, err
}

func (c *client) GetBrevets(ctx context.Context) (Brevets, error) {
	var out Brevets
	err := c.do(ctx, http.MethodGet, "/api/v1/brevets", nil, &out)
	return out, err
}

func (c *client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(b))
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
