package analytics

import (
	"visitlens/internal/events"
)

// Totals holds the core aggregate metrics of a window.
type Totals struct {
	TotalViews       int64   `json:"total_views"`
	UniqueVisitors   int64   `json:"unique_visitors"`
	TotalSessions    int64   `json:"total_sessions"`
	BounceRate       float64 `json:"bounce_rate"`        // fraction in [0,1]
	AvgVisitDuration float64 `json:"avg_visit_duration"` // seconds
}

// sessionActivity tracks what happened within one session.
type sessionActivity struct {
	pageViews  int64
	heartbeats int64
	duration   int64
}

// ComputeTotals aggregates the core metrics from an event set. Empty input
// degrades to all-zero totals; no rate here can divide by zero.
func ComputeTotals(rows []events.Event) Totals {
	if len(rows) == 0 {
		return Totals{}
	}

	visitors := make(map[string]struct{})
	sessions := make(map[string]*sessionActivity)

	var totalViews int64
	for i := range rows {
		e := &rows[i]
		visitors[e.VisitorHash] = struct{}{}

		activity := sessions[e.SessionID]
		if activity == nil {
			activity = &sessionActivity{}
			sessions[e.SessionID] = activity
		}

		switch e.EventType {
		case events.EventTypePageView:
			totalViews++
			activity.pageViews++
			activity.duration += int64(e.DurationSeconds)
		case events.EventTypeHeartbeat:
			activity.heartbeats++
			activity.duration += int64(e.DurationSeconds)
		}
	}

	var bounced, durationSessions, durationSum int64
	for _, activity := range sessions {
		if activity.pageViews == 1 && activity.heartbeats == 0 {
			bounced++
		}
		if activity.duration > 0 {
			durationSessions++
			durationSum += activity.duration
		}
	}

	totals := Totals{
		TotalViews:     totalViews,
		UniqueVisitors: int64(len(visitors)),
		TotalSessions:  int64(len(sessions)),
	}
	if totals.TotalSessions > 0 {
		totals.BounceRate = float64(bounced) / float64(totals.TotalSessions)
	}
	if durationSessions > 0 {
		totals.AvgVisitDuration = float64(durationSum) / float64(durationSessions)
	}
	return totals
}

// CountUniqueVisitors returns the cardinality of distinct visitor hashes.
func CountUniqueVisitors(rows []events.Event) int64 {
	visitors := make(map[string]struct{}, len(rows))
	for i := range rows {
		visitors[rows[i].VisitorHash] = struct{}{}
	}
	return int64(len(visitors))
}
