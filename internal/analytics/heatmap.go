package analytics

import (
	"sort"

	"visitlens/internal/events"
)

// ActivityCell is one cell of the 7x24 day-of-week/hour grid.
// DayOfWeek follows time.Weekday: 0 is Sunday.
type ActivityCell struct {
	DayOfWeek int   `json:"day_of_week"`
	Hour      int   `json:"hour"`
	Count     int64 `json:"count"`
}

// HourActivity is the summed activity of one hour across all days.
type HourActivity struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// DayActivity is the summed activity of one weekday across all hours.
type DayActivity struct {
	DayOfWeek int   `json:"day_of_week"`
	Count     int64 `json:"count"`
}

// PeakTimeAnalysis names the busiest hours and days of the grid.
type PeakTimeAnalysis struct {
	TopHours []HourActivity `json:"top_hours"` // 5 highest-summed hours
	TopDays  []DayActivity  `json:"top_days"`  // 3 highest-summed days
	PeakHour int            `json:"peak_hour"`
	PeakDay  int            `json:"peak_day"`
}

const (
	topHourCount = 5
	topDayCount  = 3
)

// BuildHeatmap counts pageview and heartbeat events into a fixed 7x24
// grid keyed by UTC day-of-week and hour. All 168 cells are always
// present, zero-valued when empty, ordered day-major.
func BuildHeatmap(rows []events.Event) []ActivityCell {
	var grid [7][24]int64
	for i := range rows {
		e := &rows[i]
		if !e.IsPageView() && !e.IsHeartbeat() {
			continue
		}
		ts := e.Timestamp.UTC()
		grid[int(ts.Weekday())][ts.Hour()]++
	}

	cells := make([]ActivityCell, 0, 7*24)
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			cells = append(cells, ActivityCell{
				DayOfWeek: day,
				Hour:      hour,
				Count:     grid[day][hour],
			})
		}
	}
	return cells
}

// AnalyzePeakTimes derives top hours and days from a heatmap grid. Ties
// are broken by the earliest hour or day index.
func AnalyzePeakTimes(cells []ActivityCell) PeakTimeAnalysis {
	var hourSums [24]int64
	var daySums [7]int64
	for _, cell := range cells {
		if cell.Hour >= 0 && cell.Hour < 24 {
			hourSums[cell.Hour] += cell.Count
		}
		if cell.DayOfWeek >= 0 && cell.DayOfWeek < 7 {
			daySums[cell.DayOfWeek] += cell.Count
		}
	}

	hours := make([]HourActivity, 24)
	for h := range hourSums {
		hours[h] = HourActivity{Hour: h, Count: hourSums[h]}
	}
	sort.SliceStable(hours, func(i, j int) bool {
		if hours[i].Count != hours[j].Count {
			return hours[i].Count > hours[j].Count
		}
		return hours[i].Hour < hours[j].Hour
	})

	days := make([]DayActivity, 7)
	for d := range daySums {
		days[d] = DayActivity{DayOfWeek: d, Count: daySums[d]}
	}
	sort.SliceStable(days, func(i, j int) bool {
		if days[i].Count != days[j].Count {
			return days[i].Count > days[j].Count
		}
		return days[i].DayOfWeek < days[j].DayOfWeek
	})

	return PeakTimeAnalysis{
		TopHours: hours[:topHourCount],
		TopDays:  days[:topDayCount],
		PeakHour: hours[0].Hour,
		PeakDay:  days[0].DayOfWeek,
	}
}
