package funnels

import (
	"sort"
	"time"

	"visitlens/internal/events"
	"visitlens/internal/pkg/match"
)

// StepResult is the outcome of one funnel step over the analyzed window.
type StepResult struct {
	StepIndex       int      `json:"step_index"`
	Name            string   `json:"name"`
	VisitorsReached int64    `json:"visitors_reached"`
	DropOffPercent  float64  `json:"drop_off_percent"`
	// AvgSecondsToNext is nil for the final step and when no session
	// progressed past this step.
	AvgSecondsToNext *float64 `json:"avg_seconds_to_next,omitempty"`
}

// sessionProgress tracks how far one session advanced through the steps.
type sessionProgress struct {
	visitor   string
	stepTimes []time.Time
}

// Analyze walks every session of the window through the funnel's steps in
// order. A step is credited only when an event matching it occurs at or
// after the event that satisfied the previous step, so out-of-order visits
// never count toward later steps.
func Analyze(funnel *Funnel, rows []events.Event, matcher *match.Matcher) ([]StepResult, error) {
	if err := funnel.Validate(); err != nil {
		return nil, err
	}
	steps := funnel.Steps

	ordered := make([]events.Event, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	sessions := make(map[string]*sessionProgress)
	for i := range ordered {
		e := &ordered[i]
		progress := sessions[e.SessionID]
		if progress == nil {
			progress = &sessionProgress{visitor: e.VisitorHash}
			sessions[e.SessionID] = progress
		}

		next := len(progress.stepTimes)
		if next < len(steps) && stepMatches(&steps[next], e, matcher) {
			progress.stepTimes = append(progress.stepTimes, e.Timestamp)
		}
	}

	results := make([]StepResult, len(steps))
	var prevReached int64
	for i := range steps {
		visitors := make(map[string]struct{})
		var deltaSum float64
		var deltaCount int64

		for _, progress := range sessions {
			if len(progress.stepTimes) <= i {
				continue
			}
			visitors[progress.visitor] = struct{}{}
			if len(progress.stepTimes) > i+1 {
				deltaSum += progress.stepTimes[i+1].Sub(progress.stepTimes[i]).Seconds()
				deltaCount++
			}
		}

		reached := int64(len(visitors))
		result := StepResult{
			StepIndex:       i,
			Name:            steps[i].Name,
			VisitorsReached: reached,
		}
		if i > 0 && prevReached > 0 {
			result.DropOffPercent = float64(prevReached-reached) / float64(prevReached) * 100
		}
		if i < len(steps)-1 && deltaCount > 0 {
			avg := deltaSum / float64(deltaCount)
			result.AvgSecondsToNext = &avg
		}

		results[i] = result
		prevReached = reached
	}
	return results, nil
}

// stepMatches checks one event against one step. URL steps match the path
// by pattern; event steps match custom events by exact name.
func stepMatches(step *FunnelStep, e *events.Event, matcher *match.Matcher) bool {
	switch step.Type {
	case StepTypePageView:
		return e.IsPageView() && matcher.Matches(step.MatchPattern, e.Path)
	case StepTypeEvent:
		return e.IsCustom() && e.EventName == step.MatchPattern
	default:
		return false
	}
}
