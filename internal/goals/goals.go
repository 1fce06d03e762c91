// Package goals computes conversion rates for configured goals: a goal is
// hit when a pageview's path matches its pattern (URL goals) or a custom
// event carries its name (event goals).
package goals

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"visitlens/internal/events"
	"visitlens/internal/pkg/match"
)

// GoalType distinguishes URL goals from custom event goals.
type GoalType string

const (
	GoalTypeURL   GoalType = "url"
	GoalTypeEvent GoalType = "event"
)

// ConversionGoal is a configured conversion target scoped to a project.
type ConversionGoal struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID    uint      `gorm:"index;not null" json:"project_id"`
	Name         string    `gorm:"not null" json:"name"`
	Type         GoalType  `gorm:"not null" json:"type"`
	MatchPattern string    `gorm:"not null" json:"match_pattern"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// GoalStats is the computed conversion outcome of one goal, with the
// previous comparison window alongside.
type GoalStats struct {
	GoalID                 uint    `json:"goal_id"`
	Name                   string  `json:"name"`
	Completions            int64   `json:"completions"`
	ConversionRate         float64 `json:"conversion_rate"`          // fraction in [0,1]
	PreviousConversionRate float64 `json:"previous_conversion_rate"` // fraction in [0,1]
	RateDeltaPoints        float64 `json:"rate_delta_points"`        // signed percent points
}

// Hit reports whether a single event satisfies the goal.
func (g *ConversionGoal) Hit(e *events.Event, matcher *match.Matcher) bool {
	switch g.Type {
	case GoalTypeURL:
		return e.IsPageView() && matcher.Matches(g.MatchPattern, e.Path)
	case GoalTypeEvent:
		return e.IsCustom() && e.EventName == g.MatchPattern
	default:
		return false
	}
}

// ComputeStats evaluates the goal over the current and previous windows.
// Completions are distinct visitors; the rate divides by the window's
// distinct visitor count and is 0 when there are no visitors.
func (g *ConversionGoal) ComputeStats(current, previous []events.Event, matcher *match.Matcher) GoalStats {
	currentRate, completions := conversionRate(g, current, matcher)
	previousRate, _ := conversionRate(g, previous, matcher)

	return GoalStats{
		GoalID:                 g.ID,
		Name:                   g.Name,
		Completions:            completions,
		ConversionRate:         currentRate,
		PreviousConversionRate: previousRate,
		RateDeltaPoints:        (currentRate - previousRate) * 100,
	}
}

func conversionRate(g *ConversionGoal, rows []events.Event, matcher *match.Matcher) (float64, int64) {
	visitors := make(map[string]struct{})
	converted := make(map[string]struct{})

	for i := range rows {
		e := &rows[i]
		visitors[e.VisitorHash] = struct{}{}
		if g.Hit(e, matcher) {
			converted[e.VisitorHash] = struct{}{}
		}
	}

	if len(visitors) == 0 {
		return 0, 0
	}
	return float64(len(converted)) / float64(len(visitors)), int64(len(converted))
}

// ListActiveGoals returns a project's active goals in creation order.
func ListActiveGoals(db *gorm.DB, projectID uint) ([]ConversionGoal, error) {
	var list []ConversionGoal
	err := db.Where("project_id = ? AND is_active = ?", projectID, true).
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("error listing conversion goals: %w", err)
	}
	return list, nil
}
