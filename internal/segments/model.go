package segments

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Segment is a saved visitor filter scoped to one project.
type Segment struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID  uint       `gorm:"index;not null" json:"project_id"`
	Name       string     `gorm:"not null" json:"name"`
	FilterTree FilterNode `gorm:"type:text;not null" json:"filter_tree"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// GetSegment fetches a project's segment by ID.
func GetSegment(db *gorm.DB, projectID, segmentID uint) (*Segment, error) {
	var segment Segment
	err := db.Where("project_id = ?", projectID).First(&segment, segmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &SegmentNotFoundError{ID: segmentID}
		}
		return nil, fmt.Errorf("unexpected error querying segment: %w", err)
	}
	return &segment, nil
}

// ListSegments returns all segments of a project.
func ListSegments(db *gorm.DB, projectID uint) ([]Segment, error) {
	var list []Segment
	if err := db.Where("project_id = ?", projectID).Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("error listing segments: %w", err)
	}
	return list, nil
}
