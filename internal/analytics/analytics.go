// Package analytics computes aggregate statistics over event sets fetched
// for a bounded time window.
//
// Every analyzer here is a pure function over a slice of events the store
// already returned; nothing in this package touches storage or performs
// I/O. The package is organized into focused modules:
//   - totals.go: aggregate totals (views, visitors, sessions, bounce rate)
//   - breakdowns.go: top-N frequency tables (pages, referrers, browsers, ...)
//   - series.go: zero-filled time series and trend slope
//   - heatmap.go: day-of-week/hour activity grid and peak-time analysis
//   - calendar.go: 365-day contribution calendar
//   - comparison.go: period-over-period comparison reports
//   - service.go: the exposed query operations, caching and orchestration
package analytics

// MetricCountResult represents a generic key-count pair for breakdowns
type MetricCountResult struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}
