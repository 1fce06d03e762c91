package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitlens/internal/config"
	"visitlens/internal/events"
	"visitlens/internal/testsupport"
)

func TestStoreQueryWindow(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	project := testsupport.CreateTestProject(t, db, "store.test")
	store := events.NewStore(db, config.PrivacyModeStandard, testsupport.GetLogger())

	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	testsupport.InsertEvents(t, db,
		testsupport.PageView(project.ID, "v1", "s1", "/", from.Add(-time.Second)),
		testsupport.PageView(project.ID, "v1", "s1", "/first", from),
		testsupport.PageView(project.ID, "v2", "s2", "/mid", from.Add(3*24*time.Hour)),
		testsupport.PageView(project.ID, "v2", "s2", "/last", to.Add(-time.Second)),
		testsupport.PageView(project.ID, "v3", "s3", "/after", to),
	)

	rows, err := store.Query(context.Background(), project.ID, from, to)
	require.NoError(t, err)

	require.Len(t, rows, 3, "window start included, window end excluded")
	assert.Equal(t, "/first", rows[0].Path)
	assert.Equal(t, "/mid", rows[1].Path)
	assert.Equal(t, "/last", rows[2].Path)
}

func TestStoreQueryScopesByProject(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	mine := testsupport.CreateTestProject(t, db, "mine.test")
	other := testsupport.CreateTestProject(t, db, "other.test")
	store := events.NewStore(db, config.PrivacyModeStandard, testsupport.GetLogger())

	ts := time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)
	testsupport.InsertEvents(t, db,
		testsupport.PageView(mine.ID, "v1", "s1", "/", ts),
		testsupport.PageView(other.ID, "v9", "s9", "/", ts),
	)

	rows, err := store.Query(context.Background(), mine.ID, ts.Add(-time.Hour), ts.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.ID, rows[0].ProjectID)
}

func TestStoreQueryEmptyWindow(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	project := testsupport.CreateTestProject(t, db, "empty.test")
	store := events.NewStore(db, config.PrivacyModeStandard, testsupport.GetLogger())

	rows, err := store.Query(context.Background(), project.ID,
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStorePrivacyRedaction(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	project := testsupport.CreateTestProject(t, db, "privacy.test")

	ts := time.Date(2026, 5, 3, 9, 0, 0, 0, time.UTC)
	row := testsupport.PageView(project.ID, "v1", "s1", "/", ts)
	row = testsupport.WithGeo(row, "DE", "Berlin")
	row = testsupport.WithReferrer(row, "https://google.com")
	testsupport.InsertEvents(t, db, row)

	query := func(mode config.PrivacyMode) events.Event {
		store := events.NewStore(db, mode, testsupport.GetLogger())
		rows, err := store.Query(context.Background(), project.ID, ts.Add(-time.Hour), ts.Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		return rows[0]
	}

	t.Run("standard keeps everything", func(t *testing.T) {
		e := query(config.PrivacyModeStandard)
		require.NotNil(t, e.City)
		require.NotNil(t, e.Country)
		require.NotNil(t, e.Referrer)
		assert.Equal(t, "Berlin", *e.City)
	})

	t.Run("strict drops city", func(t *testing.T) {
		e := query(config.PrivacyModeStrict)
		assert.Nil(t, e.City)
		require.NotNil(t, e.Country)
		assert.Equal(t, "DE", *e.Country)
		assert.NotNil(t, e.Referrer)
	})

	t.Run("paranoid drops city, country and referrer", func(t *testing.T) {
		e := query(config.PrivacyModeParanoid)
		assert.Nil(t, e.City)
		assert.Nil(t, e.Country)
		assert.Nil(t, e.Referrer)
	})
}
