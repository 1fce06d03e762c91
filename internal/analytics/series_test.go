package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitlens/internal/analytics"
	"visitlens/internal/events"
	"visitlens/internal/testsupport"
	"visitlens/internal/timeframe"
)

// resolveWindowAround builds a window that comfortably covers events laid
// out shortly after t0.
func resolveWindowAround(t0 time.Time, filter string) timeframe.Range {
	return timeframe.ResolveFilter(filter, t0.Add(48*time.Hour))
}

func TestBuildTimeSeries(t *testing.T) {
	t.Run("series is contiguous and zero-filled", func(t *testing.T) {
		r := resolveWindowAround(base, "7d")
		rows := []events.Event{
			testsupport.PageView(1, "v1", "s1", "/", base),
		}

		series := analytics.BuildTimeSeries(rows, r)
		require.Len(t, series, len(r.BucketStarts()))

		var nonZero int
		for i, p := range series {
			if i > 0 {
				assert.True(t, series[i-1].BucketStart.Before(p.BucketStart))
			}
			if p.Views > 0 {
				nonZero++
			}
		}
		assert.Equal(t, 1, nonZero)
	})

	t.Run("views land in the right bucket", func(t *testing.T) {
		r := resolveWindowAround(base, "7d") // daily buckets
		rows := []events.Event{
			testsupport.PageView(1, "v1", "s1", "/", base),
			testsupport.PageView(1, "v2", "s2", "/", base.Add(30*time.Minute)),
			testsupport.PageView(1, "v3", "s3", "/", base.AddDate(0, 0, 1)),
		}

		series := analytics.BuildTimeSeries(rows, r)
		byBucket := make(map[time.Time]analytics.TimeSeriesPoint)
		for _, p := range series {
			byBucket[p.BucketStart] = p
		}

		day1 := timeframe.TruncateToBucket(base, timeframe.BucketSizeDay)
		day2 := day1.AddDate(0, 0, 1)
		assert.Equal(t, int64(2), byBucket[day1].Views)
		assert.Equal(t, int64(2), byBucket[day1].UniqueVisitors)
		assert.Equal(t, int64(1), byBucket[day2].Views)
	})

	t.Run("heartbeats count visitors but not views", func(t *testing.T) {
		r := resolveWindowAround(base, "7d")
		rows := []events.Event{
			testsupport.Heartbeat(1, "v1", "s1", "/", base),
		}

		series := analytics.BuildTimeSeries(rows, r)
		day := timeframe.TruncateToBucket(base, timeframe.BucketSizeDay)
		for _, p := range series {
			if p.BucketStart.Equal(day) {
				assert.Equal(t, int64(0), p.Views)
				assert.Equal(t, int64(1), p.UniqueVisitors)
			}
		}
	})

	t.Run("events outside the window are dropped", func(t *testing.T) {
		r := resolveWindowAround(base, "24h")
		rows := []events.Event{
			testsupport.PageView(1, "v1", "s1", "/", base.AddDate(0, 0, -10)),
		}

		for _, p := range analytics.BuildTimeSeries(rows, r) {
			assert.Zero(t, p.Views)
			assert.Zero(t, p.UniqueVisitors)
		}
	})
}

func TestTrend(t *testing.T) {
	point := func(views int64) analytics.TimeSeriesPoint {
		return analytics.TimeSeriesPoint{Views: views}
	}

	t.Run("growing series has positive slope", func(t *testing.T) {
		slope := analytics.Trend([]analytics.TimeSeriesPoint{point(1), point(2), point(3), point(4)})
		assert.InDelta(t, 1.0, slope, 1e-9)
	})

	t.Run("declining series has negative slope", func(t *testing.T) {
		slope := analytics.Trend([]analytics.TimeSeriesPoint{point(9), point(6), point(3)})
		assert.Negative(t, slope)
	})

	t.Run("flat series has zero slope", func(t *testing.T) {
		slope := analytics.Trend([]analytics.TimeSeriesPoint{point(5), point(5), point(5)})
		assert.Zero(t, slope)
	})

	t.Run("degenerate series has zero slope", func(t *testing.T) {
		assert.Zero(t, analytics.Trend(nil))
		assert.Zero(t, analytics.Trend([]analytics.TimeSeriesPoint{point(7)}))
	})
}
