package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"project/backend/models"
)

// doubtRequestLimit is the rolling budget per student: at most 3 sessions
// created within the trailing 7 days, evaluated at request time.
const (
	doubtRequestLimit  = 3
	doubtRequestWindow = 7 * 24 * time.Hour
)

type DoubtService struct {
	DB *gorm.DB
}

func NewDoubtService(db *gorm.DB) *DoubtService {
	return &DoubtService{DB: db}
}

type DoubtRequestInput struct {
	StudentID   uint
	CourseID    uint   `json:"course_id" validate:"required"`
	MentorID    *uint  `json:"mentor_id"`
	Topic       string `json:"topic" validate:"required"`
	Description string `json:"description"`
}

// CreateRequest inserts a pending doubt session unless the student's 7-day
// quota is exhausted. The check is a single count-then-insert; under
// concurrency the limit can be exceeded by one, which is accepted.
func (s *DoubtService) CreateRequest(input DoubtRequestInput) (*models.DoubtSession, error) {
	windowStart := time.Now().Add(-doubtRequestWindow)

	var recent int64
	err := s.DB.Model(&models.DoubtSession{}).
		Where("student_id = ? AND created_at >= ?", input.StudentID, windowStart).
		Count(&recent).Error
	if err != nil {
		return nil, err
	}

	if recent >= doubtRequestLimit {
		return nil, ErrDoubtQuotaExceeded
	}

	session := models.DoubtSession{
		StudentID:   input.StudentID,
		CourseID:    input.CourseID,
		MentorID:    input.MentorID,
		Topic:       input.Topic,
		Description: input.Description,
		Status:      models.DoubtPending,
	}
	if err := s.DB.Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// StudentSessionView is a session row joined with course and mentor names.
type StudentSessionView struct {
	ID          uint       `json:"id"`
	Topic       string     `json:"topic"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	MeetLink    string     `json:"meet_link"`
	CourseTitle string     `json:"course_title"`
	MentorName  string     `json:"mentor_name"`
}

func (s *DoubtService) ListStudentSessions(studentID uint) ([]StudentSessionView, error) {
	var sessions []StudentSessionView
	err := s.DB.Model(&models.DoubtSession{}).
		Select(`doubt_sessions.id, doubt_sessions.topic, doubt_sessions.description,
			doubt_sessions.status, doubt_sessions.created_at, doubt_sessions.scheduled_at,
			doubt_sessions.meet_link, courses.title AS course_title, users.name AS mentor_name`).
		Joins("LEFT JOIN courses ON courses.id = doubt_sessions.course_id").
		Joins("LEFT JOIN users ON users.id = doubt_sessions.mentor_id").
		Where("doubt_sessions.student_id = ?", studentID).
		Order("doubt_sessions.created_at DESC").
		Scan(&sessions).Error
	return sessions, err
}

// MentorRequestView is a pending request as seen from the mentor queue.
type MentorRequestView struct {
	ID           uint      `json:"id"`
	Topic        string    `json:"topic"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	StudentName  string    `json:"student_name"`
	StudentEmail string    `json:"student_email"`
	CourseTitle  string    `json:"course_title"`
}

// ListMentorRequests returns pending sessions addressed to the mentor or not
// yet claimed by anyone.
func (s *DoubtService) ListMentorRequests(mentorID uint) ([]MentorRequestView, error) {
	var requests []MentorRequestView
	err := s.DB.Model(&models.DoubtSession{}).
		Select(`doubt_sessions.id, doubt_sessions.topic, doubt_sessions.description,
			doubt_sessions.created_at, users.name AS student_name, users.email AS student_email,
			courses.title AS course_title`).
		Joins("JOIN users ON users.id = doubt_sessions.student_id").
		Joins("LEFT JOIN courses ON courses.id = doubt_sessions.course_id").
		Where("doubt_sessions.status = ? AND (doubt_sessions.mentor_id IS NULL OR doubt_sessions.mentor_id = ?)",
			models.DoubtPending, mentorID).
		Order("doubt_sessions.created_at ASC").
		Scan(&requests).Error
	return requests, err
}

// CourseMentorView is a mentor available for a course, derived from week
// assignments.
type CourseMentorView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *DoubtService) ListCourseMentors(courseID uint) ([]CourseMentorView, error) {
	var mentors []CourseMentorView
	err := s.DB.Model(&models.WeekMentor{}).
		Select("DISTINCT users.id, users.name, users.email").
		Joins("JOIN course_weeks ON course_weeks.id = week_mentors.week_id").
		Joins("JOIN course_months ON course_months.id = course_weeks.month_id").
		Joins("JOIN users ON users.id = week_mentors.mentor_id").
		Where("course_months.course_id = ?", courseID).
		Scan(&mentors).Error
	return mentors, err
}

// Schedule transitions a pending session to scheduled with a meeting link and
// time, claiming it for the mentor. Returns the student so the caller can
// notify them.
func (s *DoubtService) Schedule(sessionID, mentorID uint, scheduledAt time.Time, meetLink string) (*models.DoubtSession, *models.User, error) {
	var session models.DoubtSession
	if err := s.DB.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if session.Status != models.DoubtPending {
		return nil, nil, ErrNotSchedulable
	}

	session.Status = models.DoubtScheduled
	session.MentorID = &mentorID
	session.ScheduledAt = &scheduledAt
	session.MeetLink = meetLink
	if err := s.DB.Save(&session).Error; err != nil {
		return nil, nil, err
	}

	var student models.User
	if err := s.DB.First(&student, session.StudentID).Error; err != nil {
		return &session, nil, nil
	}
	return &session, &student, nil
}

// Reject marks a pending session rejected. Rejected sessions still count
// toward the student's quota until they age out of the window.
func (s *DoubtService) Reject(sessionID uint) error {
	result := s.DB.Model(&models.DoubtSession{}).
		Where("id = ?", sessionID).
		Update("status", models.DoubtRejected)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
