// Package projects holds the tracked project (tenant) model. All events,
// goals, funnels and segments are scoped to one project.
package projects

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectNotFoundError represents an error when a project is not found
type ProjectNotFoundError struct {
	ID uint
}

func (e *ProjectNotFoundError) Error() string {
	return fmt.Sprintf("project not found: %d", e.ID)
}

// NewProjectNotFoundError creates a new ProjectNotFoundError
func NewProjectNotFoundError(id uint) *ProjectNotFoundError {
	return &ProjectNotFoundError{ID: id}
}

// Project represents a tracked website or application
type Project struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PublicID  string    `gorm:"uniqueIndex;size:36;not null" json:"public_id"`
	Name      string    `gorm:"not null" json:"name"`
	Domain    string    `gorm:"unique;not null" json:"domain"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns the public identifier used by external callers.
func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.PublicID == "" {
		p.PublicID = uuid.NewString()
	}
	return nil
}

// GetProjectOrNotFound retrieves a project by internal ID
func GetProjectOrNotFound(db *gorm.DB, id uint) (*Project, error) {
	var project Project
	if err := db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewProjectNotFoundError(id)
		}
		return nil, fmt.Errorf("unexpected error querying project: %w", err)
	}
	return &project, nil
}

// GetProjectByDomain retrieves a project by exact domain match
func GetProjectByDomain(db *gorm.DB, domain string) (*Project, error) {
	var project Project
	if err := db.Where("domain = ?", domain).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ProjectNotFoundError{}
		}
		return nil, fmt.Errorf("unexpected error querying project: %w", err)
	}
	return &project, nil
}

// ListProjects returns all projects ordered by creation time
func ListProjects(db *gorm.DB) ([]Project, error) {
	var list []Project
	if err := db.Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("error listing projects: %w", err)
	}
	return list, nil
}
