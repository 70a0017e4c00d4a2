package acp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKm(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"0":        "0",
		" 150 ":    "150",
		"60.5":     "60.5",
		"200km":    "200",
		"200 KM":   "200",
		"100mi":    "160.9344",
		"12.5 mi":  "20.1168",
		"1000.000": "1000",
	}
	for in, want := range tests {
		got, err := ParseKm(in)
		require.NoErrorf(t, err, "ParseKm(%q) must not error", in)
		assert.Truef(t, km(want).Equal(got), "ParseKm(%q) = %s, want %s", in, got, want)
	}

	for _, in := range []string{"", "km", "abc", "12,5"} {
		_, err := ParseKm(in)
		assert.ErrorIsf(t, err, ErrMalformedDistance, "ParseKm(%q)", in)
	}

	got, err := ParseKm("0.000000001")
	require.NoError(t, err)
	assert.Equal(t, int32(-9), got.Exponent())
	got, err = ParseKm("1e3")
	require.NoError(t, err)
	assert.True(t, km("1000").Equal(got))
}

func TestParseKmRejectsExtremeExponents(t *testing.T) {
	t.Parallel()
	for _, in := range []string{
		"1e-999999999",
		"1e-20000",
		"0.0000000001",
		"1e999999999",
		"1e7",
		"1000000000000000000000000000000000",
	} {
		began := time.Now()
		_, err := ParseKm(in)
		assert.ErrorIsf(t, err, ErrMalformedDistance, "ParseKm(%q)", in)
		assert.Lessf(t, time.Since(began), time.Second, "ParseKm(%q) took too long", in)
	}
}

func TestParseBrevetDistance(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"200", "300", " 400 ", "600km", "1000"} {
		b, err := ParseBrevetDistance(in)
		require.NoErrorf(t, err, "ParseBrevetDistance(%q) must not error", in)
		assert.NoError(t, b.Validate())
	}
	for _, in := range []string{"", "250", "1200", "two hundred"} {
		_, err := ParseBrevetDistance(in)
		assert.ErrorIsf(t, err, ErrInvalidBrevetDistance, "ParseBrevetDistance(%q)", in)
	}
}

func TestParseStart(t *testing.T) {
	t.Parallel()
	got, err := ParseStart("2021-01-01T00:00")
	require.NoError(t, err)
	assert.Equal(t, start, got)

	got, err = ParseStart("2021-01-01T07:00:00-08:00")
	require.NoError(t, err)
	_, offset := got.Zone()
	assert.Equal(t, -8*60*60, offset)
	assert.True(t, got.Equal(time.Date(2021, time.January, 1, 15, 0, 0, 0, time.UTC)))

	_, err = ParseStart("01/01/2021 00:00")
	assert.ErrorIs(t, err, ErrMalformedStart)
}

func TestSpeedTableIsACopy(t *testing.T) {
	t.Parallel()
	table := SpeedTable()
	require.Len(t, table, 4)
	table[0].UpperKm = 1
	assert.Equal(t, int64(200), SpeedTable()[0].UpperKm)

	for i := 1; i < len(table); i++ {
		assert.Less(t, table[i-1].UpperKm, table[i].UpperKm)
	}
	assert.Equal(t, []BrevetDistance{200, 300, 400, 600, 1000}, BrevetDistances())
}
