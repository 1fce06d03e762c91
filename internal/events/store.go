package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"visitlens/internal/config"
)

// Store is the read-only query surface over the durable event log. It is
// the only component that touches storage; every analyzer works on the
// slice of events it returns.
//
// The privacy mode is fixed at construction (not read from ambient state)
// and determines which optional visitor attributes the returned events
// carry. Analyzers stay privacy-agnostic and simply treat nil fields as
// absent.
type Store struct {
	db      *gorm.DB
	privacy config.PrivacyMode
	logger  *slog.Logger
}

// NewStore creates a Store bound to the given privacy mode.
func NewStore(db *gorm.DB, privacy config.PrivacyMode, logger *slog.Logger) *Store {
	return &Store{db: db, privacy: privacy, logger: logger}
}

// Query returns all events of a project inside the half-open window
// [from, to), ordered by timestamp ascending. Storage failures are
// propagated unchanged; an empty window is not an error.
func (s *Store) Query(ctx context.Context, projectID uint, from, to time.Time) ([]Event, error) {
	var rows []Event
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Where("timestamp >= ? AND timestamp < ?", from.UTC(), to.UTC()).
		Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error querying events: %w", err)
	}

	s.redact(rows)

	s.logger.Debug("event store query",
		slog.Uint64("projectID", uint64(projectID)),
		slog.Time("from", from),
		slog.Time("to", to),
		slog.Int("rows", len(rows)))

	return rows, nil
}

// redact blanks optional visitor attributes according to the active
// privacy mode. Standard mode keeps everything the collector stored.
func (s *Store) redact(rows []Event) {
	switch s.privacy {
	case config.PrivacyModeStrict:
		for i := range rows {
			rows[i].City = nil
		}
	case config.PrivacyModeParanoid:
		for i := range rows {
			rows[i].City = nil
			rows[i].Country = nil
			rows[i].Referrer = nil
		}
	}
}
