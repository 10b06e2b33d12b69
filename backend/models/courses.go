package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Description string
	ImageURL    string
	Status      string        `gorm:"default:unpublished"` // published, unpublished
	Months      []CourseMonth `gorm:"constraint:OnDelete:CASCADE"`
}

// CourseMonth groups weeks. Order is significant: the global week sequence is
// (month.Order, week.Order).
type CourseMonth struct {
	gorm.Model
	CourseID uint         `gorm:"not null;index"`
	Title    string       `gorm:"not null"`
	Type     string       `gorm:"default:common"` // common, team
	Order    int          `gorm:"column:sequence_order;not null"`
	Weeks    []CourseWeek `gorm:"foreignKey:MonthID;constraint:OnDelete:CASCADE"`
}

// CourseWeek is the smallest schedulable unit of content. A week may carry an
// assessment, require a project submission, or both.
type CourseWeek struct {
	gorm.Model
	MonthID uint   `gorm:"not null;index"`
	Title   string `gorm:"not null"`
	Order   int    `gorm:"column:sequence_order;not null"`
	Content string

	IsProject          bool
	ProjectTitle       string
	ProjectDescription string

	Assessment *Assessment  `gorm:"foreignKey:WeekID"`
	Mentors    []WeekMentor `gorm:"foreignKey:WeekID"`
}

type WeekMentor struct {
	gorm.Model
	WeekID   uint `gorm:"not null;uniqueIndex:idx_week_mentor"`
	MentorID uint `gorm:"not null;uniqueIndex:idx_week_mentor"`
}

// Enrollment links a student to a course; existence implies content visibility.
type Enrollment struct {
	gorm.Model
	StudentID uint   `gorm:"not null;uniqueIndex:idx_student_course"`
	CourseID  uint   `gorm:"not null;uniqueIndex:idx_student_course"`
	Course    Course `gorm:"foreignKey:CourseID"`
}
