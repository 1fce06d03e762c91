// Package timeframe resolves symbolic report filters into concrete time
// windows with a bucket granularity and a comparison window.
package timeframe

import (
	"fmt"
	"time"
)

// BucketSize is the width of a single time-series bucket.
type BucketSize string

const (
	BucketSizeHour BucketSize = "hour"
	BucketSizeDay  BucketSize = "day"
	BucketSizeWeek BucketSize = "week"
)

// RangeLabel represents the available symbolic range options.
type RangeLabel string

const (
	RangeLabelLast24Hours RangeLabel = "24h"
	RangeLabelLast3Days   RangeLabel = "3d"
	RangeLabelLast7Days   RangeLabel = "7d"
	RangeLabelLast30Days  RangeLabel = "30d"
	RangeLabelLast365Days RangeLabel = "365d"
)

// DefaultRangeLabel is used when a filter token is not recognized.
const DefaultRangeLabel = RangeLabelLast7Days

var rangeDurations = map[RangeLabel]time.Duration{
	RangeLabelLast24Hours: 24 * time.Hour,
	RangeLabelLast3Days:   3 * 24 * time.Hour,
	RangeLabelLast7Days:   7 * 24 * time.Hour,
	RangeLabelLast30Days:  30 * 24 * time.Hour,
	RangeLabelLast365Days: 365 * 24 * time.Hour,
}

// Range is a half-open window [From, To) with a resolved bucket size.
type Range struct {
	From   time.Time
	To     time.Time
	Label  RangeLabel
	Bucket BucketSize
}

// ResolveFilter maps a symbolic filter token to the window ending at now.
// Unknown tokens fall back to the 7-day default instead of erroring.
func ResolveFilter(filter string, now time.Time) Range {
	label := RangeLabel(filter)
	duration, ok := rangeDurations[label]
	if !ok {
		label = DefaultRangeLabel
		duration = rangeDurations[label]
	}

	to := now.UTC()
	from := to.Add(-duration)
	return Range{
		From:   from,
		To:     to,
		Label:  label,
		Bucket: appropriateBucketSize(from, to),
	}
}

// KnownFilter reports whether the token maps to a defined range.
func KnownFilter(filter string) bool {
	_, ok := rangeDurations[RangeLabel(filter)]
	return ok
}

// NewRange builds a Range from an explicit window, picking the bucket size
// from the window length.
func NewRange(from, to time.Time) (Range, error) {
	if !from.Before(to) {
		return Range{}, fmt.Errorf("from must be before to")
	}
	from, to = from.UTC(), to.UTC()
	return Range{
		From:   from,
		To:     to,
		Bucket: appropriateBucketSize(from, to),
	}, nil
}

// appropriateBucketSize picks hourly for windows up to 3 days, daily up to
// 30 days, weekly beyond that.
func appropriateBucketSize(from, to time.Time) BucketSize {
	window := to.Sub(from)
	switch {
	case window <= 3*24*time.Hour:
		return BucketSizeHour
	case window <= 30*24*time.Hour:
		return BucketSizeDay
	default:
		return BucketSizeWeek
	}
}

// Duration returns the window length.
func (r Range) Duration() time.Duration {
	return r.To.Sub(r.From)
}

// Contains reports whether t falls inside the half-open window.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// Previous returns the immediately preceding window of identical duration
// and bucket size, used for period-over-period comparison.
func (r Range) Previous() Range {
	d := r.Duration()
	return Range{
		From:   r.From.Add(-d),
		To:     r.From,
		Label:  r.Label,
		Bucket: r.Bucket,
	}
}

// BucketStarts enumerates the chronologically ordered bucket boundaries
// covering [From, To). The first boundary is From truncated to the bucket
// size, so every instant of the window belongs to exactly one bucket.
func (r Range) BucketStarts() []time.Time {
	var starts []time.Time
	for cur := TruncateToBucket(r.From, r.Bucket); cur.Before(r.To); cur = r.nextBucket(cur) {
		starts = append(starts, cur)
	}
	return starts
}

// BucketFor maps an instant to the start of its bucket.
func (r Range) BucketFor(t time.Time) time.Time {
	return TruncateToBucket(t, r.Bucket)
}

func (r Range) nextBucket(t time.Time) time.Time {
	switch r.Bucket {
	case BucketSizeHour:
		return t.Add(time.Hour)
	case BucketSizeDay:
		return t.AddDate(0, 0, 1)
	case BucketSizeWeek:
		return t.AddDate(0, 0, 7)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// TruncateToBucket truncates a time to its bucket boundary in UTC. Weeks
// start on Monday.
func TruncateToBucket(t time.Time, bucket BucketSize) time.Time {
	utc := t.UTC()
	year, month, day := utc.Year(), utc.Month(), utc.Day()

	switch bucket {
	case BucketSizeWeek:
		weekday := int(utc.Weekday())
		if weekday == 0 { // Sunday
			weekday = 7
		}
		return time.Date(year, month, day-(weekday-1), 0, 0, 0, 0, time.UTC)
	case BucketSizeDay:
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	case BucketSizeHour:
		return time.Date(year, month, day, utc.Hour(), 0, 0, 0, time.UTC)
	default:
		return utc
	}
}
