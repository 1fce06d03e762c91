package analytics

import (
	"time"

	"visitlens/internal/events"
)

// CalendarDays is the length of the contribution calendar window.
const CalendarDays = 365

// ContributionDay is one day of the contribution calendar.
type ContributionDay struct {
	Date           string `json:"date"` // YYYY-MM-DD, UTC
	Visits         int64  `json:"visits"`
	UniqueVisitors int64  `json:"unique_visitors"`
	Intensity      int    `json:"intensity"` // 0..4
}

// BuildContributionCalendar produces 365 daily buckets ending at today
// (the caller's reference instant). Intensity is relative to the busiest
// day inside the window, never an absolute scale, so a project with a
// single active day shows level 4 for that day.
func BuildContributionCalendar(rows []events.Event, today time.Time) []ContributionDay {
	end := time.Date(today.UTC().Year(), today.UTC().Month(), today.UTC().Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -(CalendarDays - 1))

	visits := make(map[string]int64)
	visitors := make(map[string]map[string]struct{})

	for i := range rows {
		e := &rows[i]
		if !e.IsPageView() {
			continue
		}
		day := e.Timestamp.UTC().Format("2006-01-02")
		visits[day]++
		set := visitors[day]
		if set == nil {
			set = make(map[string]struct{})
			visitors[day] = set
		}
		set[e.VisitorHash] = struct{}{}
	}

	days := make([]ContributionDay, 0, CalendarDays)
	var maxVisits int64
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		date := cur.Format("2006-01-02")
		day := ContributionDay{
			Date:           date,
			Visits:         visits[date],
			UniqueVisitors: int64(len(visitors[date])),
		}
		if day.Visits > maxVisits {
			maxVisits = day.Visits
		}
		days = append(days, day)
	}

	for i := range days {
		days[i].Intensity = intensityLevel(days[i].Visits, maxVisits)
	}
	return days
}

// intensityLevel scales visits to 0..4 by quartile position relative to
// the maximum day: ceil(4*visits/maxVisits) clamped to [1,4], 0 for a
// zero-visit day.
func intensityLevel(visits, maxVisits int64) int {
	if visits <= 0 || maxVisits <= 0 {
		return 0
	}
	level := int((4*visits + maxVisits - 1) / maxVisits)
	if level < 1 {
		level = 1
	}
	if level > 4 {
		level = 4
	}
	return level
}
