// Package testsupport provides shared test database setup and event
// factories.
package testsupport

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"visitlens/internal/events"
	"visitlens/internal/projects"
)

// testDBCache caches test databases by test name to allow multiple calls
// within the same test to share the same database
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// allModels returns all visitlens models for migration
func allModels() []any {
	return []any{
		&projects.Project{},
		&events.Event{},
	}
}

// SetupTestDB creates a test database with the core models migrated. Uses
// a named in-memory database with cache=shared so multiple connections in
// one test share the same database; cached by root test name.
func SetupTestDB(t *testing.T, extraModels ...any) *gorm.DB {
	t.Helper()

	testName := t.Name()
	rootName := testName
	if idx := strings.Index(testName, "/"); idx > 0 {
		rootName = testName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	models := append(allModels(), extraModels...)
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// GetLogger returns a quiet test logger
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// CreateTestProject creates a project, reusing one with the same domain
func CreateTestProject(t *testing.T, db *gorm.DB, domain string) projects.Project {
	t.Helper()

	var project projects.Project
	if db.Where("domain = ?", domain).First(&project).Error == nil {
		return project
	}
	project = projects.Project{
		Name:      domain,
		Domain:    domain,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&project).Error)
	return project
}

// PageView creates a pageview event row
func PageView(projectID uint, visitor, session, path string, ts time.Time) events.Event {
	return events.Event{
		ProjectID:   projectID,
		VisitorHash: visitor,
		SessionID:   session,
		EventType:   events.EventTypePageView,
		Path:        path,
		Timestamp:   ts.UTC(),
	}
}

// Heartbeat creates a heartbeat event row
func Heartbeat(projectID uint, visitor, session, path string, ts time.Time) events.Event {
	return events.Event{
		ProjectID:   projectID,
		VisitorHash: visitor,
		SessionID:   session,
		EventType:   events.EventTypeHeartbeat,
		Path:        path,
		Timestamp:   ts.UTC(),
	}
}

// CustomEvent creates a named custom event row
func CustomEvent(projectID uint, visitor, session, name, path string, ts time.Time) events.Event {
	return events.Event{
		ProjectID:   projectID,
		VisitorHash: visitor,
		SessionID:   session,
		EventType:   events.EventTypeCustom,
		EventName:   name,
		Path:        path,
		Timestamp:   ts.UTC(),
	}
}

// WithBrowser sets browser/OS/device attributes on an event
func WithBrowser(e events.Event, browser, osName, device string) events.Event {
	e.Browser = &browser
	e.OS = &osName
	e.Device = &device
	return e
}

// WithGeo sets country/city attributes on an event
func WithGeo(e events.Event, country, city string) events.Event {
	e.Country = &country
	e.City = &city
	return e
}

// WithReferrer sets the referrer attribute on an event
func WithReferrer(e events.Event, referrer string) events.Event {
	e.Referrer = &referrer
	return e
}

// InsertEvents stores event rows for a test
func InsertEvents(t *testing.T, db *gorm.DB, rows ...events.Event) {
	t.Helper()
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}
}
