package acp

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

func km(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func hm(h, m int) time.Duration { return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute }

func TestOpenTime(t *testing.T) {
	t.Parallel()
	tests := []struct {
		control string
		brevet  BrevetDistance
		want    time.Duration
	}{
		{"0", Brevet300, 0},
		{"0", Brevet1000, 0},
		{"60", Brevet200, hm(1, 46)},
		{"175", Brevet200, hm(5, 9)},
		{"200", Brevet200, hm(5, 53)},
		{"205", Brevet200, hm(5, 53)},
		{"240", Brevet200, hm(5, 53)},
		{"300", Brevet300, hm(9, 0)},
		{"360", Brevet300, hm(9, 0)},
		{"350", Brevet400, hm(10, 34)},
		{"400", Brevet400, hm(12, 8)},
		{"480", Brevet400, hm(12, 8)},
		{"550", Brevet600, hm(17, 8)},
		{"600", Brevet600, hm(18, 48)},
		{"890", Brevet1000, hm(29, 9)},
		{"1000", Brevet1000, hm(33, 5)},
		{"1200", Brevet1000, hm(33, 5)},
	}
	for _, tc := range tests {
		got, err := OpenTime(km(tc.control), tc.brevet, start)
		require.NoErrorf(t, err, "OpenTime(%s, %d) must not error", tc.control, tc.brevet)
		assert.Equalf(t, start.Add(tc.want), got, "OpenTime(%s, %d)", tc.control, tc.brevet)
	}
}

func TestCloseTime(t *testing.T) {
	t.Parallel()
	tests := []struct {
		control string
		brevet  BrevetDistance
		want    time.Duration
	}{
		{"0", Brevet300, hm(1, 0)},
		{"0", Brevet400, hm(1, 0)},
		{"20", Brevet200, hm(2, 0)},
		{"30", Brevet200, hm(2, 30)},
		{"60", Brevet200, hm(4, 0)},
		{"61", Brevet200, hm(4, 4)},
		{"175", Brevet200, hm(11, 40)},
		{"200", Brevet200, hm(13, 30)},
		{"240", Brevet200, hm(13, 30)},
		{"250", Brevet300, hm(16, 40)},
		{"300", Brevet300, hm(20, 0)},
		{"360", Brevet300, hm(20, 0)},
		{"200", Brevet400, hm(13, 20)},
		{"400", Brevet400, hm(27, 0)},
		{"400", Brevet600, hm(26, 40)},
		{"550", Brevet600, hm(36, 40)},
		{"600", Brevet600, hm(40, 0)},
		{"890", Brevet1000, hm(65, 23)},
		{"1000", Brevet1000, hm(75, 0)},
		{"1100", Brevet1000, hm(75, 0)},
	}
	for _, tc := range tests {
		got, err := CloseTime(km(tc.control), tc.brevet, start)
		require.NoErrorf(t, err, "CloseTime(%s, %d) must not error", tc.control, tc.brevet)
		assert.Equalf(t, start.Add(tc.want), got, "CloseTime(%s, %d)", tc.control, tc.brevet)
	}
}

func TestTimesRejectBadInput(t *testing.T) {
	t.Parallel()
	tests := []struct {
		control string
		brevet  BrevetDistance
		want    error
	}{
		{"241", Brevet200, ErrOutOfRangeControl},
		{"361", Brevet300, ErrOutOfRangeControl},
		{"1200.1", Brevet1000, ErrOutOfRangeControl},
		{"-1", Brevet200, ErrOutOfRangeControl},
		{"100", BrevetDistance(250), ErrInvalidBrevetDistance},
		{"0", BrevetDistance(0), ErrInvalidBrevetDistance},
		{"1e-20000", Brevet200, ErrMalformedDistance},
		{"1e12", Brevet1000, ErrMalformedDistance},
	}
	for _, tc := range tests {
		_, err := OpenTime(km(tc.control), tc.brevet, start)
		assert.ErrorIsf(t, err, tc.want, "OpenTime(%s, %d)", tc.control, tc.brevet)
		_, err = CloseTime(km(tc.control), tc.brevet, start)
		assert.ErrorIsf(t, err, tc.want, "CloseTime(%s, %d)", tc.control, tc.brevet)
	}
}

func TestTimesKeepStartOffset(t *testing.T) {
	t.Parallel()
	zone := time.FixedZone("PST", -8*60*60)
	begin := time.Date(2021, time.January, 1, 7, 0, 0, 0, zone)

	open, err := OpenTime(km("300"), Brevet300, begin)
	require.NoError(t, err)
	closing, err := CloseTime(km("300"), Brevet300, begin)
	require.NoError(t, err)

	for _, got := range []time.Time{open, closing} {
		name, offset := got.Zone()
		assert.Equal(t, "PST", name)
		assert.Equal(t, -8*60*60, offset)
	}
	assert.Equal(t, "2021-01-01T16:00:00-08:00", open.Format(time.RFC3339))
	assert.Equal(t, "2021-01-02T03:00:00-08:00", closing.Format(time.RFC3339))
}

func TestTimesKeepOffsetAcrossDST(t *testing.T) {
	t.Parallel()
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	// clocks go forward at 02:00 on 14 March 2021
	begin := time.Date(2021, time.March, 13, 12, 0, 0, 0, la)

	open, err := OpenTime(km("300"), Brevet300, begin)
	require.NoError(t, err)
	assert.Equal(t, "2021-03-13T21:00:00-08:00", open.Format(time.RFC3339))

	closing, err := CloseTime(km("300"), Brevet300, begin)
	require.NoError(t, err)
	assert.Equal(t, "2021-03-14T08:00:00-08:00", closing.Format(time.RFC3339))
	assert.True(t, closing.Equal(begin.Add(20*time.Hour)))
	name, offset := closing.Zone()
	assert.Equal(t, "PST", name)
	assert.Equal(t, -8*60*60, offset)
}

func TestWindowInvariants(t *testing.T) {
	t.Parallel()
	for _, brevet := range BrevetDistances() {
		var prevOpen, prevClose time.Time
		// half kilometre steps from the start to the end of the overrun allowance
		steps := int64(brevet) * 12 / 5
		for i := int64(0); i <= steps; i++ {
			d := decimal.New(i*5, -1)
			w, err := ControlWindow(d, brevet, start)
			require.NoErrorf(t, err, "ControlWindow(%s, %d) must not error", d, brevet)

			assert.Falsef(t, w.Close.Before(w.Open), "close before open at %s km of %d", d, brevet)
			if i > 0 {
				assert.Falsef(t, w.Open.Before(prevOpen), "open time decreased at %s km of %d", d, brevet)
				assert.Falsef(t, w.Close.Before(prevClose), "close time decreased at %s km of %d", d, brevet)
			} else {
				assert.Equal(t, start, w.Open)
			}
			prevOpen, prevClose = w.Open, w.Close

			again, err := ControlWindow(d, brevet, start)
			require.NoError(t, err)
			assert.Equal(t, w, again)
		}
	}
}

func TestFirstBracketPace(t *testing.T) {
	t.Parallel()
	for _, brevet := range []BrevetDistance{Brevet200, Brevet400, Brevet600, Brevet1000} {
		for d := int64(1); d < 200; d++ {
			dist := decimal.NewFromInt(d)
			open, err := OpenTime(dist, brevet, start)
			require.NoError(t, err)
			assert.Equal(t, start.Add(elapsed(dist.Div(decimal.NewFromInt(34)))), open)

			closing, err := CloseTime(dist, brevet, start)
			require.NoError(t, err)
			if d <= 60 {
				assert.Equal(t, start.Add(time.Hour+elapsed(dist.Div(decimal.NewFromInt(20)))), closing)
			} else {
				assert.Equal(t, start.Add(elapsed(dist.Div(decimal.NewFromInt(15)))), closing)
			}
		}
	}
}

func TestElapsed(t *testing.T) {
	t.Parallel()
	assert.Equal(t, time.Duration(0), elapsed(decimal.Zero))
	assert.Equal(t, hm(1, 30), elapsed(km("1.5")))
	// 0.025h is 1.5 minutes, 0.075h is 4.5 minutes: halves round to even
	assert.Equal(t, 2*time.Minute, elapsed(km("0.025")))
	assert.Equal(t, 4*time.Minute, elapsed(km("0.075")))
	// a remainder that rounds up to a full hour carries over
	assert.Equal(t, hm(40, 0), elapsed(km("39.9999999999999999")))
}
