package models

import (
	"time"

	"gorm.io/gorm"
)

// Doubt session statuses.
const (
	DoubtPending   = "pending"
	DoubtScheduled = "scheduled"
	DoubtCompleted = "completed"
	DoubtRejected  = "rejected"
)

// DoubtSession is a student's request for mentor help. Every existing row
// counts toward the student's rolling 7-day quota regardless of status.
type DoubtSession struct {
	gorm.Model
	StudentID   uint   `gorm:"not null;index"`
	CourseID    uint   `gorm:"not null"`
	MentorID    *uint
	Topic       string `gorm:"not null"`
	Description string
	Status      string `gorm:"default:pending"`
	ScheduledAt *time.Time
	MeetLink    string
}
