package analytics

// Direction indicates how a metric moved between periods.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
	DirectionNew  Direction = "new" // previous period had no data
)

// MetricComparison holds one metric's period-over-period movement.
// Favorable already accounts for metrics where a decrease is good, so
// callers never need to know which metrics are inverted.
type MetricComparison struct {
	Current       float64   `json:"current"`
	Previous      float64   `json:"previous"`
	PercentChange float64   `json:"percent_change"`
	Direction     Direction `json:"direction"`
	Favorable     bool      `json:"favorable"`
}

// ComparisonReport is the full period-over-period report for a window.
type ComparisonReport struct {
	Current  Totals `json:"current"`
	Previous Totals `json:"previous"`

	Views          MetricComparison `json:"views"`
	UniqueVisitors MetricComparison `json:"unique_visitors"`
	BounceRate     MetricComparison `json:"bounce_rate"`

	CurrentSeries  []TimeSeriesPoint `json:"current_series"`
	PreviousSeries []TimeSeriesPoint `json:"previous_series"`
	TrendSlope     float64           `json:"trend_slope"`
}

// CompareMetric computes the percentage change between two values.
// previous=0, current=0 is flat 0%; previous=0 with current>0 signals a
// "new" +100% movement instead of dividing by zero. lowerIsBetter inverts
// the favorability of the direction (bounce rate).
func CompareMetric(current, previous float64, lowerIsBetter bool) MetricComparison {
	c := MetricComparison{Current: current, Previous: previous}

	switch {
	case previous == 0 && current == 0:
		c.Direction = DirectionFlat
		c.Favorable = true
	case previous == 0:
		c.PercentChange = 100
		c.Direction = DirectionNew
		c.Favorable = !lowerIsBetter
	default:
		c.PercentChange = (current - previous) / previous * 100
		switch {
		case c.PercentChange > 0:
			c.Direction = DirectionUp
			c.Favorable = !lowerIsBetter
		case c.PercentChange < 0:
			c.Direction = DirectionDown
			c.Favorable = lowerIsBetter
		default:
			c.Direction = DirectionFlat
			c.Favorable = true
		}
	}
	return c
}

// BuildComparisonReport assembles the report from totals and series of the
// current and previous windows.
func BuildComparisonReport(current, previous Totals, currentSeries, previousSeries []TimeSeriesPoint) *ComparisonReport {
	return &ComparisonReport{
		Current:        current,
		Previous:       previous,
		Views:          CompareMetric(float64(current.TotalViews), float64(previous.TotalViews), false),
		UniqueVisitors: CompareMetric(float64(current.UniqueVisitors), float64(previous.UniqueVisitors), false),
		BounceRate:     CompareMetric(current.BounceRate, previous.BounceRate, true),
		CurrentSeries:  currentSeries,
		PreviousSeries: previousSeries,
		TrendSlope:     Trend(currentSeries),
	}
}
