package models

import (
	"time"

	"gorm.io/gorm"
)

// Submission statuses. A resubmission always resets to pending.
const (
	SubmissionPending = "pending"
	SubmissionGraded  = "graded"
)

type Assessment struct {
	gorm.Model
	WeekID      uint   `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Description string
	Timer       int `gorm:"default:60"` // minutes
}

// AssessmentResponse holds at most one row per (student, assessment); the
// unique index is what resolves concurrent find-or-create races.
type AssessmentResponse struct {
	gorm.Model
	StudentID     uint `gorm:"not null;uniqueIndex:idx_student_assessment"`
	AssessmentID  uint `gorm:"not null;uniqueIndex:idx_student_assessment"`
	SubmissionURL string
	SubmittedAt   time.Time
	Status        string `gorm:"default:pending"`
	Score         *int
}

// ProjectSubmission holds at most one row per (student, week).
type ProjectSubmission struct {
	gorm.Model
	StudentID   uint `gorm:"not null;uniqueIndex:idx_student_week_project"`
	WeekID      uint `gorm:"not null;uniqueIndex:idx_student_week_project"`
	GithubURL   string
	LiveURL     string
	DemoURL     string
	Description string
	Status      string `gorm:"default:pending"`
	Score       *int
	Review      string
}

// StudentProgress records week completion. One row per (student, week),
// created on the first gating submission and never deleted. IsCompleted only
// ever transitions false -> true.
type StudentProgress struct {
	gorm.Model
	StudentID   uint `gorm:"not null;uniqueIndex:idx_student_week"`
	WeekID      uint `gorm:"not null;uniqueIndex:idx_student_week"`
	IsCompleted bool
	IsUnlocked  bool
	CompletedAt *time.Time
}
