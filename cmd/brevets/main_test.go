package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brevets/internal/acp"
	"brevets/internal/brevetapi"
	"brevets/internal/handler"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"brevets"}, args...))
	return out.String(), err
}

func TestTimesCommand(t *testing.T) {
	out, err := run(t, "times", "-b", "300", "-s", "2021-01-01T00:00", "300")
	require.NoError(t, err)
	assert.Contains(t, out, "300 km")
	assert.Contains(t, out, "2021-01-01T09:00:00Z")
	assert.Contains(t, out, "2021-01-01T20:00:00Z")

	out, err = run(t, "times", "--json", "-b", "200", "-s", "2021-01-01T00:00:00+01:00", "0")
	require.NoError(t, err)
	var ct brevetapi.ControlTimes
	require.NoError(t, json.Unmarshal([]byte(out), &ct))
	assert.Equal(t, brevetapi.ControlTimes{ControlKm: 0, Open: "2021-01-01T00:00:00+01:00", Close: "2021-01-01T01:00:00+01:00"}, ct)

	_, err = run(t, "times", "-b", "300", "-s", "2021-01-01T00:00", "500")
	assert.ErrorIs(t, err, acp.ErrOutOfRangeControl)

	_, err = run(t, "times", "-b", "250", "-s", "2021-01-01T00:00", "10")
	assert.ErrorIs(t, err, acp.ErrInvalidBrevetDistance)
}

func TestScheduleCommand(t *testing.T) {
	out, err := run(t, "schedule", "-b", "200", "-s", "2021-01-01T00:00", "0", "60", "175", "205")
	require.NoError(t, err)
	assert.Contains(t, out, "200 km brevet starting 2021-01-01T00:00:00Z")
	assert.Contains(t, out, "2021-01-01T01:46:00Z")
	assert.Contains(t, out, "2021-01-01T13:30:00Z")

	_, err = run(t, "schedule", "-b", "200")
	assert.ErrorIs(t, err, errNoControls)

	_, err = run(t, "schedule", "-b", "200", "-s", "2021-01-01T00:00", "0", "ten")
	assert.ErrorIs(t, err, acp.ErrMalformedDistance)
}

func TestBrevetsCommand(t *testing.T) {
	out, err := run(t, "brevets")
	require.NoError(t, err)
	assert.Contains(t, out, "600-1000 km")
	assert.Contains(t, out, "11.428")
	assert.Contains(t, out, "1200 km")
}

func TestRemoteCommands(t *testing.T) {
	srv := httptest.NewServer(handler.NewRouter(handler.Options{}))
	defer srv.Close()

	out, err := run(t, "times", "--remote", srv.URL, "-b", "300", "-s", "2021-01-01T00:00", "300")
	require.NoError(t, err)
	assert.Contains(t, out, "2021-01-01T09:00:00Z")

	out, err = run(t, "schedule", "--remote", srv.URL, "--json", "-b", "400", "-s", "2021-01-01T00:00", "0", "400")
	require.NoError(t, err)
	var s brevetapi.Schedule
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	require.Len(t, s.Controls, 2)
	assert.Equal(t, "2021-01-02T03:00:00Z", s.Controls[1].Close)

	_, err = run(t, "times", "--remote", srv.URL, "-b", "300", "-s", "2021-01-01T00:00", "500")
	var apiErr *brevetapi.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "control distance out of range")
}

func TestSetupLogger(t *testing.T) {
	assert.NoError(t, setupLogger(io.Discard, "debug", "json"))
	assert.NoError(t, setupLogger(io.Discard, "WARN", "text"))
	assert.Error(t, setupLogger(io.Discard, "loud", "text"))
	assert.Error(t, setupLogger(io.Discard, "info", "xml"))

	_, err := run(t, "--log-format", "yaml", "brevets")
	assert.Error(t, err)
}
