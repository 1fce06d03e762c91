package analytics_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitlens/internal/analytics"
	"visitlens/internal/events"
	"visitlens/internal/testsupport"
)

func TestTopFieldValues(t *testing.T) {
	t.Run("counts pageview paths descending", func(t *testing.T) {
		rows := []events.Event{
			testsupport.PageView(1, "v1", "s1", "/pricing", base),
			testsupport.PageView(1, "v1", "s1", "/", base),
			testsupport.PageView(1, "v2", "s2", "/", base),
			testsupport.PageView(1, "v3", "s3", "/", base),
			testsupport.PageView(1, "v3", "s3", "/pricing", base),
			testsupport.PageView(1, "v3", "s3", "/docs", base),
		}

		top := analytics.TopFieldValues(rows, analytics.FieldPath, 0)
		require.Len(t, top, 3)
		assert.Equal(t, analytics.MetricCountResult{Name: "/", Count: 3}, top[0])
		assert.Equal(t, analytics.MetricCountResult{Name: "/pricing", Count: 2}, top[1])
		assert.Equal(t, analytics.MetricCountResult{Name: "/docs", Count: 1}, top[2])
	})

	t.Run("ties break by first appearance", func(t *testing.T) {
		rows := []events.Event{
			testsupport.PageView(1, "v1", "s1", "/b", base),
			testsupport.PageView(1, "v1", "s1", "/a", base),
		}
		top := analytics.TopFieldValues(rows, analytics.FieldPath, 0)
		require.Len(t, top, 2)
		assert.Equal(t, "/b", top[0].Name)
		assert.Equal(t, "/a", top[1].Name)
	})

	t.Run("absent attributes are excluded, not bucketed as unknown", func(t *testing.T) {
		withBrowser := testsupport.WithBrowser(
			testsupport.PageView(1, "v1", "s1", "/", base), "Chrome", "macOS", "desktop")
		bare := testsupport.PageView(1, "v2", "s2", "/", base)

		top := analytics.TopFieldValues([]events.Event{withBrowser, bare}, analytics.FieldBrowser, 0)
		require.Len(t, top, 1)
		assert.Equal(t, "Chrome", top[0].Name)
	})

	t.Run("event name breakdown uses custom events only", func(t *testing.T) {
		rows := []events.Event{
			testsupport.CustomEvent(1, "v1", "s1", "signup", "/", base),
			testsupport.CustomEvent(1, "v2", "s2", "signup", "/", base),
			testsupport.PageView(1, "v3", "s3", "/signup", base),
		}
		top := analytics.TopFieldValues(rows, analytics.FieldEventName, 0)
		require.Len(t, top, 1)
		assert.Equal(t, analytics.MetricCountResult{Name: "signup", Count: 2}, top[0])
	})

	t.Run("limit truncates the table", func(t *testing.T) {
		var rows []events.Event
		for i := 0; i < 20; i++ {
			rows = append(rows, testsupport.PageView(1, "v1", "s1", fmt.Sprintf("/p%02d", i), base))
		}
		top := analytics.TopFieldValues(rows, analytics.FieldPath, 5)
		assert.Len(t, top, 5)
	})

	t.Run("heartbeats never contribute to breakdowns", func(t *testing.T) {
		rows := []events.Event{
			testsupport.Heartbeat(1, "v1", "s1", "/only-heartbeat", base),
		}
		assert.Empty(t, analytics.TopFieldValues(rows, analytics.FieldPath, 0))
	})
}

func TestFoldOther(t *testing.T) {
	table := []analytics.MetricCountResult{
		{Name: "/", Count: 50},
		{Name: "/pricing", Count: 20},
		{Name: "/docs", Count: 10},
		{Name: "/blog", Count: 5},
	}

	t.Run("folds the tail into Other", func(t *testing.T) {
		folded := analytics.FoldOther(table, 2)
		require.Len(t, folded, 3)
		assert.Equal(t, "/", folded[0].Name)
		assert.Equal(t, "/pricing", folded[1].Name)
		assert.Equal(t, analytics.MetricCountResult{Name: analytics.OtherBucketName, Count: 15}, folded[2])
	})

	t.Run("short tables pass through untouched", func(t *testing.T) {
		folded := analytics.FoldOther(table, 10)
		assert.Equal(t, table, folded)
	})

	t.Run("total volume is preserved", func(t *testing.T) {
		var before, after int64
		for _, r := range table {
			before += r.Count
		}
		for _, r := range analytics.FoldOther(table, 1) {
			after += r.Count
		}
		assert.Equal(t, before, after)
	})
}

// keeps the series analyzer honest against the totals analyzer
func TestSeriesViewsMatchTotals(t *testing.T) {
	rows := []events.Event{
		testsupport.PageView(1, "v1", "s1", "/", base),
		testsupport.PageView(1, "v2", "s2", "/a", base.Add(2*time.Hour)),
		testsupport.PageView(1, "v2", "s2", "/b", base.Add(26*time.Hour)),
		testsupport.Heartbeat(1, "v1", "s1", "/", base.Add(time.Hour)),
	}
	r := resolveWindowAround(base, "7d")

	var seriesViews int64
	for _, p := range analytics.BuildTimeSeries(rows, r) {
		seriesViews += p.Views
	}
	assert.Equal(t, analytics.ComputeTotals(rows).TotalViews, seriesViews)
}
