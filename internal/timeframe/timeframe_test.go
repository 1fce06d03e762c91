package timeframe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

func TestResolveFilter(t *testing.T) {
	t.Run("resolves known tokens to the right duration", func(t *testing.T) {
		cases := []struct {
			filter   string
			duration time.Duration
			bucket   BucketSize
		}{
			{"24h", 24 * time.Hour, BucketSizeHour},
			{"3d", 3 * 24 * time.Hour, BucketSizeHour},
			{"7d", 7 * 24 * time.Hour, BucketSizeDay},
			{"30d", 30 * 24 * time.Hour, BucketSizeDay},
			{"365d", 365 * 24 * time.Hour, BucketSizeWeek},
		}
		for _, tc := range cases {
			r := ResolveFilter(tc.filter, now)
			assert.Equal(t, now, r.To, tc.filter)
			assert.Equal(t, tc.duration, r.Duration(), tc.filter)
			assert.Equal(t, tc.bucket, r.Bucket, tc.filter)
		}
	})

	t.Run("unknown token falls back to 7 days", func(t *testing.T) {
		r := ResolveFilter("bogus", now)
		assert.Equal(t, RangeLabelLast7Days, r.Label)
		assert.Equal(t, 7*24*time.Hour, r.Duration())
	})

	t.Run("empty token falls back to 7 days", func(t *testing.T) {
		r := ResolveFilter("", now)
		assert.Equal(t, RangeLabelLast7Days, r.Label)
	})
}

func TestKnownFilter(t *testing.T) {
	assert.True(t, KnownFilter("24h"))
	assert.True(t, KnownFilter("365d"))
	assert.False(t, KnownFilter("14d"))
	assert.False(t, KnownFilter(""))
}

func TestRangeContains(t *testing.T) {
	r := ResolveFilter("24h", now)

	assert.True(t, r.Contains(r.From), "window start is included")
	assert.False(t, r.Contains(r.To), "window end is excluded")
	assert.True(t, r.Contains(r.From.Add(time.Hour)))
	assert.False(t, r.Contains(r.From.Add(-time.Nanosecond)))
}

func TestRangePrevious(t *testing.T) {
	r := ResolveFilter("7d", now)
	prev := r.Previous()

	assert.Equal(t, r.From, prev.To, "previous window ends where current begins")
	assert.Equal(t, r.Duration(), prev.Duration())
	assert.Equal(t, r.Bucket, prev.Bucket)
	assert.Equal(t, r.Label, prev.Label)
}

func TestNewRange(t *testing.T) {
	t.Run("rejects inverted windows", func(t *testing.T) {
		_, err := NewRange(now, now.Add(-time.Hour))
		assert.Error(t, err)

		_, err = NewRange(now, now)
		assert.Error(t, err)
	})

	t.Run("picks bucket from window length", func(t *testing.T) {
		r, err := NewRange(now.Add(-2*time.Hour), now)
		require.NoError(t, err)
		assert.Equal(t, BucketSizeHour, r.Bucket)

		r, err = NewRange(now.AddDate(0, 0, -10), now)
		require.NoError(t, err)
		assert.Equal(t, BucketSizeDay, r.Bucket)

		r, err = NewRange(now.AddDate(0, 0, -100), now)
		require.NoError(t, err)
		assert.Equal(t, BucketSizeWeek, r.Bucket)
	})
}

func TestBucketStarts(t *testing.T) {
	t.Run("24h window yields 25 hourly buckets when not aligned", func(t *testing.T) {
		r := ResolveFilter("24h", now)
		starts := ResolveFilter("24h", now).BucketStarts()
		// From is 10:30, truncated to 10:00, so one extra bucket covers
		// the leading half hour.
		assert.Len(t, starts, 25)
		assert.Equal(t, TruncateToBucket(r.From, BucketSizeHour), starts[0])
	})

	t.Run("aligned 24h window yields exactly 24 buckets", func(t *testing.T) {
		aligned := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
		r := ResolveFilter("24h", aligned)
		assert.Len(t, r.BucketStarts(), 24)
	})

	t.Run("boundaries are contiguous and ascending", func(t *testing.T) {
		r := ResolveFilter("30d", now)
		starts := r.BucketStarts()
		require.NotEmpty(t, starts)
		for i := 1; i < len(starts); i++ {
			assert.Equal(t, starts[i-1].AddDate(0, 0, 1), starts[i])
		}
	})

	t.Run("last bucket start is before the window end", func(t *testing.T) {
		for _, filter := range []string{"24h", "3d", "7d", "30d", "365d"} {
			starts := ResolveFilter(filter, now).BucketStarts()
			require.NotEmpty(t, starts, filter)
			assert.True(t, starts[len(starts)-1].Before(now), filter)
		}
	})
}

func TestTruncateToBucket(t *testing.T) {
	ts := time.Date(2026, 3, 18, 14, 45, 30, 0, time.UTC) // Wednesday

	t.Run("hour", func(t *testing.T) {
		got := TruncateToBucket(ts, BucketSizeHour)
		assert.Equal(t, time.Date(2026, 3, 18, 14, 0, 0, 0, time.UTC), got)
	})

	t.Run("day", func(t *testing.T) {
		got := TruncateToBucket(ts, BucketSizeDay)
		assert.Equal(t, time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("week starts on Monday", func(t *testing.T) {
		got := TruncateToBucket(ts, BucketSizeWeek)
		assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), got)
		assert.Equal(t, time.Monday, got.Weekday())
	})

	t.Run("Sunday truncates back to the preceding Monday", func(t *testing.T) {
		sunday := time.Date(2026, 3, 22, 8, 0, 0, 0, time.UTC)
		got := TruncateToBucket(sunday, BucketSizeWeek)
		assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("non-UTC input truncates in UTC", func(t *testing.T) {
		loc := time.FixedZone("CEST", 2*3600)
		local := time.Date(2026, 3, 18, 1, 15, 0, 0, loc) // 23:15 UTC previous day
		got := TruncateToBucket(local, BucketSizeDay)
		assert.Equal(t, time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC), got)
	})
}
