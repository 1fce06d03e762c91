// Package seeder generates realistic demo traffic for local development.
// The traffic shape comes from an embedded YAML profile so the mix of
// journeys, referrers and devices can be tuned without touching code.
package seeder

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"visitlens/internal/events"
	"visitlens/internal/funnels"
	"visitlens/internal/goals"
	"visitlens/internal/projects"
	"visitlens/internal/segments"
)

//go:embed profile.yaml
var defaultProfileYAML []byte

// Profile describes the traffic mix the seeder draws from.
type Profile struct {
	Journeys []struct {
		Paths  []string `yaml:"paths"`
		Weight int      `yaml:"weight"`
	} `yaml:"journeys"`
	Referrers []struct {
		Value  string `yaml:"value"`
		Weight int    `yaml:"weight"`
	} `yaml:"referrers"`
	Browsers []struct {
		Name   string `yaml:"name"`
		OS     string `yaml:"os"`
		Device string `yaml:"device"`
		Weight int    `yaml:"weight"`
	} `yaml:"browsers"`
	Geo []struct {
		Country string `yaml:"country"`
		City    string `yaml:"city"`
		Weight  int    `yaml:"weight"`
	} `yaml:"geo"`
	CustomEvents []struct {
		Name   string `yaml:"name"`
		Weight int    `yaml:"weight"`
	} `yaml:"custom_events"`
}

// LoadDefaultProfile parses the embedded traffic profile.
func LoadDefaultProfile() (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(defaultProfileYAML, &p); err != nil {
		return nil, fmt.Errorf("error parsing seed profile: %w", err)
	}
	if len(p.Journeys) == 0 {
		return nil, fmt.Errorf("seed profile has no journeys")
	}
	return &p, nil
}

// Seeder generates demo events, goals, funnels and segments for a project.
type Seeder struct {
	db      *gorm.DB
	logger  *slog.Logger
	profile *Profile

	SessionCount int
	LookbackDays int
}

// NewSeeder creates a seeder with the embedded default profile.
func NewSeeder(db *gorm.DB, logger *slog.Logger, sessionCount int) (*Seeder, error) {
	profile, err := LoadDefaultProfile()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		db:           db,
		logger:       logger,
		profile:      profile,
		SessionCount: sessionCount,
		LookbackDays: 365,
	}, nil
}

// SeedDomain seeds the project registered for domain, creating it first if
// needed.
func (s *Seeder) SeedDomain(ctx context.Context, domain string) error {
	start := time.Now()
	s.logger.Info("Seeding demo data",
		slog.String("domain", domain),
		slog.Int("sessions", s.SessionCount))

	project, err := projects.GetProjectByDomain(s.db, domain)
	if err != nil {
		project = &projects.Project{Name: domain, Domain: domain, CreatedAt: time.Now().UTC()}
		if err := s.db.Create(project).Error; err != nil {
			return fmt.Errorf("error creating seed project: %w", err)
		}
	}

	if err := s.seedEvents(ctx, project.ID); err != nil {
		return err
	}
	if err := s.seedDefinitions(project.ID); err != nil {
		return err
	}

	s.logger.Info("Seeding completed",
		slog.String("domain", domain),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// seedEvents writes one batch insert per generated session.
func (s *Seeder) seedEvents(ctx context.Context, projectID uint) error {
	now := time.Now().UTC()

	for i := 0; i < s.SessionCount; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Bias sessions toward recent days so short filters have data.
		daysBack := rand.IntN(s.LookbackDays)
		if rand.IntN(3) == 0 {
			daysBack = rand.IntN(7)
		}
		sessionStart := now.AddDate(0, 0, -daysBack).
			Add(-time.Duration(rand.IntN(12)) * time.Hour)

		rows := s.generateSession(projectID, i, sessionStart)
		if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
			return fmt.Errorf("error inserting seed events: %w", err)
		}
	}
	return nil
}

// generateSession walks one weighted journey as a single visitor session.
func (s *Seeder) generateSession(projectID uint, n int, start time.Time) []events.Event {
	journey := s.profile.Journeys[weightedIndex(len(s.profile.Journeys), func(i int) int {
		return s.profile.Journeys[i].Weight
	})]
	browser := s.profile.Browsers[weightedIndex(len(s.profile.Browsers), func(i int) int {
		return s.profile.Browsers[i].Weight
	})]
	geo := s.profile.Geo[weightedIndex(len(s.profile.Geo), func(i int) int {
		return s.profile.Geo[i].Weight
	})]
	referrer := s.profile.Referrers[weightedIndex(len(s.profile.Referrers), func(i int) int {
		return s.profile.Referrers[i].Weight
	})]

	visitor := fmt.Sprintf("seed-visitor-%03d", rand.IntN(s.SessionCount/4+1))
	session := fmt.Sprintf("seed-session-%d-%d", start.Unix(), n)

	rows := make([]events.Event, 0, len(journey.Paths)+2)
	ts := start
	for stepIdx, path := range journey.Paths {
		e := events.Event{
			ProjectID:   projectID,
			VisitorHash: visitor,
			SessionID:   session,
			EventType:   events.EventTypePageView,
			Path:        path,
			Browser:     ptr(browser.Name),
			OS:          ptr(browser.OS),
			Device:      ptr(browser.Device),
			Country:     ptr(geo.Country),
			City:        ptr(geo.City),
			Timestamp:   ts,
		}
		if stepIdx == 0 && referrer.Value != "" {
			e.Referrer = ptr(referrer.Value)
		}
		rows = append(rows, e)
		ts = ts.Add(time.Duration(20+rand.IntN(160)) * time.Second)
	}

	// Longer journeys occasionally fire a heartbeat and a custom event.
	if len(journey.Paths) > 2 && rand.IntN(2) == 0 {
		rows = append(rows, events.Event{
			ProjectID:       projectID,
			VisitorHash:     visitor,
			SessionID:       session,
			EventType:       events.EventTypeHeartbeat,
			Path:            journey.Paths[len(journey.Paths)-1],
			DurationSeconds: 30 + rand.IntN(240),
			Timestamp:       ts,
		})
		ts = ts.Add(30 * time.Second)
	}
	if len(s.profile.CustomEvents) > 0 && rand.IntN(4) == 0 {
		custom := s.profile.CustomEvents[weightedIndex(len(s.profile.CustomEvents), func(i int) int {
			return s.profile.CustomEvents[i].Weight
		})]
		rows = append(rows, events.Event{
			ProjectID:   projectID,
			VisitorHash: visitor,
			SessionID:   session,
			EventType:   events.EventTypeCustom,
			EventName:   custom.Name,
			Path:        journey.Paths[len(journey.Paths)-1],
			Timestamp:   ts,
		})
	}
	return rows
}

// seedDefinitions installs demo goals, a funnel and a segment once.
func (s *Seeder) seedDefinitions(projectID uint) error {
	var count int64
	if err := s.db.Model(&goals.ConversionGoal{}).Where("project_id = ?", projectID).Count(&count).Error; err != nil {
		return fmt.Errorf("error checking seeded goals: %w", err)
	}
	if count > 0 {
		return nil
	}

	demoGoals := []goals.ConversionGoal{
		{ProjectID: projectID, Name: "Signup", Type: goals.GoalTypeURL, MatchPattern: "/signup", IsActive: true},
		{ProjectID: projectID, Name: "Newsletter", Type: goals.GoalTypeEvent, MatchPattern: "newsletter_signup", IsActive: true},
	}
	if err := s.db.Create(&demoGoals).Error; err != nil {
		return fmt.Errorf("error seeding goals: %w", err)
	}

	funnel := funnels.Funnel{
		ProjectID: projectID,
		Name:      "Signup funnel",
		Steps: []funnels.FunnelStep{
			{Position: 0, Name: "Landing", Type: funnels.StepTypePageView, MatchPattern: "/"},
			{Position: 1, Name: "Pricing", Type: funnels.StepTypePageView, MatchPattern: "/pricing"},
			{Position: 2, Name: "Signup", Type: funnels.StepTypePageView, MatchPattern: "/signup"},
		},
	}
	if err := s.db.Create(&funnel).Error; err != nil {
		return fmt.Errorf("error seeding funnel: %w", err)
	}

	segment := segments.Segment{
		ProjectID: projectID,
		Name:      "Mobile US",
		FilterTree: segments.And(
			segments.Leaf(segments.FieldDevice, segments.OperatorEquals, "mobile"),
			segments.Leaf(segments.FieldCountry, segments.OperatorEquals, "US"),
		),
	}
	if err := s.db.Create(&segment).Error; err != nil {
		return fmt.Errorf("error seeding segment: %w", err)
	}
	return nil
}

// weightedIndex picks an index proportionally to weight(i); zero and
// negative weights count as 1.
func weightedIndex(n int, weight func(int) int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += max(weight(i), 1)
	}
	pick := rand.IntN(total)
	for i := 0; i < n; i++ {
		pick -= max(weight(i), 1)
		if pick < 0 {
			return i
		}
	}
	return n - 1
}

func ptr(s string) *string {
	return &s
}
