package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"visitlens/internal/config"
	"visitlens/internal/events"
	"visitlens/internal/funnels"
	"visitlens/internal/goals"
	"visitlens/internal/pkg/async"
	"visitlens/internal/pkg/match"
	"visitlens/internal/pkg/resultcache"
	"visitlens/internal/segments"
	"visitlens/internal/timeframe"
)

// Report is the full dashboard payload for one window.
type Report struct {
	Stats            Totals              `json:"stats"`
	Series           []TimeSeriesPoint   `json:"series"`
	TopPages         []MetricCountResult `json:"top_pages"`
	TopReferrers     []MetricCountResult `json:"top_referrers"`
	Browsers         []MetricCountResult `json:"browsers"`
	OperatingSystems []MetricCountResult `json:"operating_systems"`
	Devices          []MetricCountResult `json:"devices"`
	Countries        []MetricCountResult `json:"countries"`
	TopCustomEvents  []MetricCountResult `json:"top_custom_events"`
	Heatmap          []ActivityCell      `json:"heatmap"`
	PeakTimes        PeakTimeAnalysis    `json:"peak_times"`
	BucketSize       string              `json:"bucket_size"`
}

// Service exposes the query operations consumed by the routing layer. All
// heavy lifting happens in the pure analyzers; the service fetches the
// bounded event window, fans independent sections out on a worker pool,
// and memoizes results per (project, query shape).
type Service struct {
	db      *gorm.DB
	store   *events.Store
	cache   *resultcache.Cache // nil disables memoization
	pool    *async.Pool
	matcher *match.Matcher
	logger  *slog.Logger

	heatmapLookbackDays int
	now                 func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithNowFunc pins the reference clock, used by tests.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCache attaches a result cache.
func WithCache(cache *resultcache.Cache) Option {
	return func(s *Service) { s.cache = cache }
}

// NewService wires the analytics query surface.
func NewService(db *gorm.DB, store *events.Store, cfg *config.Config, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		db:                  db,
		store:               store,
		pool:                async.NewPool(4),
		matcher:             match.NewMatcher(),
		logger:              logger,
		heatmapLookbackDays: cfg.HeatmapLookbackDays,
		now:                 func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InvalidateProject drops every cached result of a project. The ingestion
// write path calls this after storing new events.
func (s *Service) InvalidateProject(projectID uint) {
	if s.cache != nil {
		s.cache.Invalidate(projectID)
	}
}

// resolveWindow maps the symbolic filter to a concrete window ending at
// the service clock. Unknown tokens use the 7-day default.
func (s *Service) resolveWindow(filter string) timeframe.Range {
	return timeframe.ResolveFilter(filter, s.now())
}

// GetStats returns the core aggregate metrics for the filter window.
func (s *Service) GetStats(ctx context.Context, projectID uint, filter string) (Totals, error) {
	shape := "stats:" + filter
	if cached, ok := s.cached(projectID, shape); ok {
		if totals, ok := cached.(Totals); ok {
			return totals, nil
		}
	}

	r := s.resolveWindow(filter)
	rows, err := s.store.Query(ctx, projectID, r.From, r.To)
	if err != nil {
		return Totals{}, err
	}

	totals := ComputeTotals(rows)
	s.remember(projectID, shape, totals)
	return totals, nil
}

// GetReport assembles the dashboard report. The heatmap and peak times use
// a stable trailing lookback window independent of the report filter so
// day/hour patterns stay meaningful for short filters.
func (s *Service) GetReport(ctx context.Context, projectID uint, filter string) (*Report, error) {
	shape := "report:" + filter
	if cached, ok := s.cached(projectID, shape); ok {
		if report, ok := cached.(*Report); ok {
			return report, nil
		}
	}

	r := s.resolveWindow(filter)
	rows, err := s.store.Query(ctx, projectID, r.From, r.To)
	if err != nil {
		return nil, err
	}

	now := s.now()
	lookback, err := s.store.Query(ctx, projectID, now.AddDate(0, 0, -s.heatmapLookbackDays), now)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Stats:      ComputeTotals(rows),
		BucketSize: string(r.Bucket),
	}

	tasks := []async.Task{
		{Name: "series", Execute: func() (interface{}, error) {
			return BuildTimeSeries(rows, r), nil
		}},
		{Name: "topPages", Execute: func() (interface{}, error) {
			return FoldOther(TopFieldValues(rows, FieldPath, 0), DefaultBreakdownLimit), nil
		}},
		{Name: "topReferrers", Execute: func() (interface{}, error) {
			return FoldOther(TopFieldValues(rows, FieldReferrer, 0), DefaultBreakdownLimit), nil
		}},
		{Name: "browsers", Execute: func() (interface{}, error) {
			return FoldOther(TopFieldValues(rows, FieldBrowser, 0), DefaultBreakdownLimit), nil
		}},
		{Name: "operatingSystems", Execute: func() (interface{}, error) {
			return FoldOther(TopFieldValues(rows, FieldOS, 0), DefaultBreakdownLimit), nil
		}},
		{Name: "devices", Execute: func() (interface{}, error) {
			return FoldOther(TopFieldValues(rows, FieldDevice, 0), DefaultBreakdownLimit), nil
		}},
		{Name: "countries", Execute: func() (interface{}, error) {
			return FoldOther(TopFieldValues(rows, FieldCountry, 0), DefaultBreakdownLimit), nil
		}},
		{Name: "topCustomEvents", Execute: func() (interface{}, error) {
			return FoldOther(TopFieldValues(rows, FieldEventName, 0), DefaultBreakdownLimit), nil
		}},
		{Name: "heatmap", Execute: func() (interface{}, error) {
			return BuildHeatmap(lookback), nil
		}},
	}

	results := s.pool.Run(ctx, tasks)
	if err := async.FirstError(results); err != nil {
		return nil, err
	}

	report.Series = results["series"].Data.([]TimeSeriesPoint)
	report.TopPages = results["topPages"].Data.([]MetricCountResult)
	report.TopReferrers = results["topReferrers"].Data.([]MetricCountResult)
	report.Browsers = results["browsers"].Data.([]MetricCountResult)
	report.OperatingSystems = results["operatingSystems"].Data.([]MetricCountResult)
	report.Devices = results["devices"].Data.([]MetricCountResult)
	report.Countries = results["countries"].Data.([]MetricCountResult)
	report.TopCustomEvents = results["topCustomEvents"].Data.([]MetricCountResult)
	report.Heatmap = results["heatmap"].Data.([]ActivityCell)
	report.PeakTimes = AnalyzePeakTimes(report.Heatmap)

	s.remember(projectID, shape, report)
	return report, nil
}

// GetComparisonReport computes the window and its immediately preceding
// window of identical duration, with percentage deltas per metric.
func (s *Service) GetComparisonReport(ctx context.Context, projectID uint, filter string) (*ComparisonReport, error) {
	shape := "comparison:" + filter
	if cached, ok := s.cached(projectID, shape); ok {
		if report, ok := cached.(*ComparisonReport); ok {
			return report, nil
		}
	}

	current := s.resolveWindow(filter)
	previous := current.Previous()

	currentRows, err := s.store.Query(ctx, projectID, current.From, current.To)
	if err != nil {
		return nil, err
	}
	previousRows, err := s.store.Query(ctx, projectID, previous.From, previous.To)
	if err != nil {
		return nil, err
	}

	report := BuildComparisonReport(
		ComputeTotals(currentRows),
		ComputeTotals(previousRows),
		BuildTimeSeries(currentRows, current),
		BuildTimeSeries(previousRows, previous),
	)

	s.remember(projectID, shape, report)
	return report, nil
}

// GetCalendar returns the 365-day contribution calendar ending today.
func (s *Service) GetCalendar(ctx context.Context, projectID uint) ([]ContributionDay, error) {
	shape := "calendar"
	if cached, ok := s.cached(projectID, shape); ok {
		if days, ok := cached.([]ContributionDay); ok {
			return days, nil
		}
	}

	now := s.now()
	rows, err := s.store.Query(ctx, projectID, now.AddDate(0, 0, -CalendarDays), now)
	if err != nil {
		return nil, err
	}

	days := BuildContributionCalendar(rows, now)
	s.remember(projectID, shape, days)
	return days, nil
}

// GetGoalStats computes conversion stats for every active goal of the
// project, including the previous comparison window.
func (s *Service) GetGoalStats(ctx context.Context, projectID uint, filter string) ([]goals.GoalStats, error) {
	shape := "goals:" + filter
	if cached, ok := s.cached(projectID, shape); ok {
		if stats, ok := cached.([]goals.GoalStats); ok {
			return stats, nil
		}
	}

	activeGoals, err := goals.ListActiveGoals(s.db, projectID)
	if err != nil {
		return nil, err
	}

	current := s.resolveWindow(filter)
	previous := current.Previous()

	currentRows, err := s.store.Query(ctx, projectID, current.From, current.To)
	if err != nil {
		return nil, err
	}
	previousRows, err := s.store.Query(ctx, projectID, previous.From, previous.To)
	if err != nil {
		return nil, err
	}

	stats := make([]goals.GoalStats, len(activeGoals))
	for i := range activeGoals {
		stats[i] = activeGoals[i].ComputeStats(currentRows, previousRows, s.matcher)
	}

	s.remember(projectID, shape, stats)
	return stats, nil
}

// GetFunnelAnalysis evaluates the funnel's ordered steps per session over
// the filter window.
func (s *Service) GetFunnelAnalysis(ctx context.Context, projectID, funnelID uint, filter string) ([]funnels.StepResult, error) {
	shape := fmt.Sprintf("funnel:%d:%s", funnelID, filter)
	if cached, ok := s.cached(projectID, shape); ok {
		if steps, ok := cached.([]funnels.StepResult); ok {
			return steps, nil
		}
	}

	funnel, err := funnels.GetFunnel(s.db, projectID, funnelID)
	if err != nil {
		return nil, err
	}
	// Malformed definitions are rejected before any event is fetched.
	if err := funnel.Validate(); err != nil {
		return nil, err
	}

	r := s.resolveWindow(filter)
	rows, err := s.store.Query(ctx, projectID, r.From, r.To)
	if err != nil {
		return nil, err
	}

	results, err := funnels.Analyze(funnel, rows, s.matcher)
	if err != nil {
		return nil, err
	}

	s.remember(projectID, shape, results)
	return results, nil
}

// GetSegmentAnalysis filters the window's events through the segment's
// filter tree and aggregates the matching subset with the regular core
// aggregator.
func (s *Service) GetSegmentAnalysis(ctx context.Context, projectID, segmentID uint, filter string) (Totals, error) {
	shape := fmt.Sprintf("segment:%d:%s", segmentID, filter)
	if cached, ok := s.cached(projectID, shape); ok {
		if totals, ok := cached.(Totals); ok {
			return totals, nil
		}
	}

	segment, err := segments.GetSegment(s.db, projectID, segmentID)
	if err != nil {
		return Totals{}, err
	}
	// Unknown fields or operators surface here, not mid-computation.
	if err := segment.FilterTree.Validate(); err != nil {
		return Totals{}, err
	}

	r := s.resolveWindow(filter)
	rows, err := s.store.Query(ctx, projectID, r.From, r.To)
	if err != nil {
		return Totals{}, err
	}

	totals := ComputeTotals(segments.FilterEvents(rows, &segment.FilterTree))
	s.remember(projectID, shape, totals)
	return totals, nil
}

func (s *Service) cached(projectID uint, shape string) (interface{}, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(projectID, shape)
}

func (s *Service) remember(projectID uint, shape string, value interface{}) {
	if s.cache != nil {
		s.cache.Set(projectID, shape, value)
	}
}
