package analytics

import (
	"sort"

	"visitlens/internal/events"
)

// BreakdownField names an event attribute a top-N table can be built over.
type BreakdownField string

const (
	FieldPath      BreakdownField = "path"
	FieldReferrer  BreakdownField = "referrer"
	FieldBrowser   BreakdownField = "browser"
	FieldOS        BreakdownField = "os"
	FieldDevice    BreakdownField = "device"
	FieldCountry   BreakdownField = "country"
	FieldCity      BreakdownField = "city"
	FieldEventName BreakdownField = "event_name"
)

// OtherBucketName is the fold target for chart breakdowns past the limit.
const OtherBucketName = "Other"

// DefaultBreakdownLimit is the number of entries a chart breakdown keeps
// before folding the remainder into the Other bucket.
const DefaultBreakdownLimit = 10

// fieldValue extracts the breakdown value of an event. The second return
// is false when the attribute is absent; absent values are excluded from
// breakdowns rather than counted as "Unknown".
func fieldValue(e *events.Event, field BreakdownField) (string, bool) {
	switch field {
	case FieldPath:
		return e.Path, e.Path != ""
	case FieldReferrer:
		return deref(e.Referrer)
	case FieldBrowser:
		return deref(e.Browser)
	case FieldOS:
		return deref(e.OS)
	case FieldDevice:
		return deref(e.Device)
	case FieldCountry:
		return deref(e.Country)
	case FieldCity:
		return deref(e.City)
	case FieldEventName:
		return e.EventName, e.EventName != ""
	default:
		return "", false
	}
}

func deref(s *string) (string, bool) {
	if s == nil || *s == "" {
		return "", false
	}
	return *s, true
}

// TopFieldValues builds a frequency table of the field over pageview events
// (custom events for FieldEventName), sorted descending with ties broken by
// first-seen order, truncated to limit. A limit <= 0 keeps everything.
func TopFieldValues(rows []events.Event, field BreakdownField, limit int) []MetricCountResult {
	counts := make(map[string]int64)
	firstSeen := make(map[string]int)

	for i := range rows {
		e := &rows[i]
		if field == FieldEventName {
			if !e.IsCustom() {
				continue
			}
		} else if !e.IsPageView() {
			continue
		}

		value, ok := fieldValue(e, field)
		if !ok {
			continue
		}
		if _, seen := counts[value]; !seen {
			firstSeen[value] = i
		}
		counts[value]++
	}

	results := make([]MetricCountResult, 0, len(counts))
	for name, count := range counts {
		results = append(results, MetricCountResult{Name: name, Count: count})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		return firstSeen[results[i].Name] < firstSeen[results[j].Name]
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// FoldOther keeps the top limit entries of a full frequency table and folds
// the remainder into a single "Other" bucket, for chart use.
func FoldOther(results []MetricCountResult, limit int) []MetricCountResult {
	if limit <= 0 || len(results) <= limit {
		return results
	}

	folded := make([]MetricCountResult, limit, limit+1)
	copy(folded, results[:limit])

	var rest int64
	for _, r := range results[limit:] {
		rest += r.Count
	}
	if rest > 0 {
		folded = append(folded, MetricCountResult{Name: OtherBucketName, Count: rest})
	}
	return folded
}
