package events

import "time"

// EventType represents the type of event.
type EventType int

const (
	EventTypePageView  EventType = 1
	EventTypeHeartbeat EventType = 2
	EventTypeCustom    EventType = 3
)

// Event represents a tracked visitor interaction. Events are append-only
// facts created by the collection endpoint; everything in this repository
// reads them and never mutates them.
//
// VisitorHash is an opaque rotating identity token. It is only ever used
// as an equality-comparable value and must not be decoded.
type Event struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"`
	ProjectID       uint      `gorm:"index:idx_project_timestamp;not null"`
	VisitorHash     string    `gorm:"index;size:64;not null"`
	SessionID       string    `gorm:"index;size:64;not null"`
	EventType       EventType `gorm:"not null;default:1"`
	EventName       string    `gorm:"index"` // set for custom events only
	Path            string    `gorm:"index;not null"`
	Referrer        *string
	Country         *string `gorm:"size:2"`
	City            *string
	Browser         *string
	OS              *string
	Device          *string
	DurationSeconds int
	Timestamp       time.Time `gorm:"index:idx_project_timestamp;not null"`
	CreatedAt       time.Time
}

// IsPageView reports whether the event is a pageview.
func (e *Event) IsPageView() bool {
	return e.EventType == EventTypePageView
}

// IsHeartbeat reports whether the event is a heartbeat.
func (e *Event) IsHeartbeat() bool {
	return e.EventType == EventTypeHeartbeat
}

// IsCustom reports whether the event is a named custom event.
func (e *Event) IsCustom() bool {
	return e.EventType == EventTypeCustom
}
