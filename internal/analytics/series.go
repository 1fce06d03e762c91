package analytics

import (
	"time"

	"visitlens/internal/events"
	"visitlens/internal/timeframe"
)

// TimeSeriesPoint is one bucket of a traffic time series.
type TimeSeriesPoint struct {
	BucketStart    time.Time `json:"bucket_start"`
	Views          int64     `json:"views"`
	UniqueVisitors int64     `json:"unique_visitors"`
}

// BuildTimeSeries buckets events into the range's granularity. Buckets
// without events are emitted with zero counts so callers always receive a
// contiguous, chronologically ordered series.
func BuildTimeSeries(rows []events.Event, r timeframe.Range) []TimeSeriesPoint {
	starts := r.BucketStarts()

	views := make(map[time.Time]int64, len(starts))
	visitors := make(map[time.Time]map[string]struct{}, len(starts))

	for i := range rows {
		e := &rows[i]
		if !r.Contains(e.Timestamp) {
			continue
		}
		bucket := r.BucketFor(e.Timestamp)
		if e.IsPageView() {
			views[bucket]++
		}
		set := visitors[bucket]
		if set == nil {
			set = make(map[string]struct{})
			visitors[bucket] = set
		}
		set[e.VisitorHash] = struct{}{}
	}

	series := make([]TimeSeriesPoint, len(starts))
	for i, start := range starts {
		series[i] = TimeSeriesPoint{
			BucketStart:    start,
			Views:          views[start],
			UniqueVisitors: int64(len(visitors[start])),
		}
	}
	return series
}

// Trend computes the least-squares slope of views over the series. A
// positive slope means traffic is growing bucket over bucket.
func Trend(points []TimeSeriesPoint) float64 {
	if len(points) < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	n := float64(len(points))

	for i, point := range points {
		x := float64(i)
		y := float64(point.Views)

		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denominator
}
