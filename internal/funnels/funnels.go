// Package funnels evaluates ordered multi-step conversion sequences per
// visitor session.
package funnels

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// StepType says what kind of event satisfies a funnel step.
type StepType string

const (
	StepTypePageView StepType = "pageview"
	StepTypeEvent    StepType = "event"
)

// MinSteps is the smallest meaningful funnel.
const MinSteps = 2

// ErrTooFewSteps marks a funnel definition with fewer than two steps.
var ErrTooFewSteps = errors.New("funnel needs at least two steps")

// FunnelNotFoundError marks a lookup for a missing funnel.
type FunnelNotFoundError struct {
	ID uint
}

func (e *FunnelNotFoundError) Error() string {
	return fmt.Sprintf("funnel not found: %d", e.ID)
}

// Funnel is an ordered conversion sequence. Step order is fixed at
// creation and analysis must respect it.
type Funnel struct {
	ID        uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID uint         `gorm:"index;not null" json:"project_id"`
	Name      string       `gorm:"not null" json:"name"`
	Steps     []FunnelStep `gorm:"foreignKey:FunnelID" json:"steps"`
	CreatedAt time.Time    `json:"created_at"`
}

// FunnelStep is one stage of the sequence, matched by URL pattern or
// custom event name.
type FunnelStep struct {
	ID           uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	FunnelID     uint     `gorm:"index;not null" json:"funnel_id"`
	Position     int      `gorm:"not null" json:"position"` // 0-based, significant
	Name         string   `gorm:"not null" json:"name"`
	Type         StepType `gorm:"not null" json:"type"`
	MatchPattern string   `gorm:"not null" json:"match_pattern"`
}

// Validate checks the funnel definition.
func (f *Funnel) Validate() error {
	if len(f.Steps) < MinSteps {
		return ErrTooFewSteps
	}
	return nil
}

// GetFunnel fetches a project's funnel with its steps in position order.
func GetFunnel(db *gorm.DB, projectID, funnelID uint) (*Funnel, error) {
	var funnel Funnel
	err := db.Where("project_id = ?", projectID).
		Preload("Steps", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		First(&funnel, funnelID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &FunnelNotFoundError{ID: funnelID}
		}
		return nil, fmt.Errorf("unexpected error querying funnel: %w", err)
	}
	return &funnel, nil
}

// ListFunnels returns all funnels of a project with their steps.
func ListFunnels(db *gorm.DB, projectID uint) ([]Funnel, error) {
	var list []Funnel
	err := db.Where("project_id = ?", projectID).
		Preload("Steps", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("error listing funnels: %w", err)
	}
	return list, nil
}
