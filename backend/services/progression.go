package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"project/backend/models"
)

// MonthView and WeekView are the course structure annotated with the
// student's lock and completion state, in the shape the dashboard consumes.
type MonthView struct {
	ID    uint       `json:"id"`
	Title string     `json:"title"`
	Type  string     `json:"type"`
	Order int        `json:"order"`
	Weeks []WeekView `json:"weeks"`
}

type WeekView struct {
	ID                 uint               `json:"id"`
	Title              string             `json:"title"`
	Order              int                `json:"order"`
	Content            string             `json:"content,omitempty"`
	IsProject          bool               `json:"is_project"`
	ProjectTitle       string             `json:"project_title,omitempty"`
	ProjectDescription string             `json:"project_description,omitempty"`
	Assessment         *models.Assessment `json:"assessment,omitempty"`
	IsCompleted        bool               `json:"is_completed"`
	IsLocked           bool               `json:"is_locked"`
}

// ApplyLockState annotates an ordered course structure with per-week lock
// state. Weeks are flattened across months preserving (month order, week
// order). The first week in the global sequence is always unlocked; every
// other week is locked exactly when its immediate predecessor is incomplete.
//
// The rule is local, not cumulative: completing week N unlocks week N+1 even
// if some earlier week was never completed. That matches the shipped product
// behavior and must not be "fixed" to an all-previous-completed rule.
func ApplyLockState(months []models.CourseMonth, completed map[uint]bool) []MonthView {
	views := make([]MonthView, 0, len(months))
	var flat []*WeekView

	for _, m := range months {
		mv := MonthView{
			ID:    m.ID,
			Title: m.Title,
			Type:  m.Type,
			Order: m.Order,
			Weeks: make([]WeekView, 0, len(m.Weeks)),
		}
		for _, w := range m.Weeks {
			mv.Weeks = append(mv.Weeks, WeekView{
				ID:                 w.ID,
				Title:              w.Title,
				Order:              w.Order,
				Content:            w.Content,
				IsProject:          w.IsProject,
				ProjectTitle:       w.ProjectTitle,
				ProjectDescription: w.ProjectDescription,
				Assessment:         w.Assessment,
				IsCompleted:        completed[w.ID],
			})
		}
		views = append(views, mv)
	}

	for i := range views {
		for j := range views[i].Weeks {
			flat = append(flat, &views[i].Weeks[j])
		}
	}

	for i, w := range flat {
		if i == 0 {
			w.IsLocked = false
			continue
		}
		w.IsLocked = !flat[i-1].IsCompleted
	}

	return views
}

// ProgressionService is the course progression engine: it computes unlock
// state and reacts to gating submissions by marking weeks complete.
type ProgressionService struct {
	DB *gorm.DB
}

func NewProgressionService(db *gorm.DB) *ProgressionService {
	return &ProgressionService{DB: db}
}

// GetCourseContent returns the course structure for a student with lock and
// completion annotations.
func (s *ProgressionService) GetCourseContent(studentID, courseID uint) ([]MonthView, error) {
	var months []models.CourseMonth
	err := s.DB.
		Preload("Weeks", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order ASC")
		}).
		Preload("Weeks.Assessment").
		Where("course_id = ?", courseID).
		Order("sequence_order ASC").
		Find(&months).Error
	if err != nil {
		return nil, err
	}

	var progress []models.StudentProgress
	if err := s.DB.Where("student_id = ? AND is_completed = ?", studentID, true).
		Find(&progress).Error; err != nil {
		return nil, err
	}

	completed := make(map[uint]bool, len(progress))
	for _, p := range progress {
		completed[p.WeekID] = true
	}

	return ApplyLockState(months, completed), nil
}

// SubmitAssignment upserts the student's response for an assessment and marks
// the owning week complete. A resubmission overwrites the previous URL and
// reopens grading. The upsert and the completion run in one transaction.
func (s *ProgressionService) SubmitAssignment(studentID, assessmentID, weekID uint, url string) error {
	var assessment models.Assessment
	if err := s.DB.First(&assessment, assessmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	now := time.Now()
	return s.DB.Transaction(func(tx *gorm.DB) error {
		response := models.AssessmentResponse{
			StudentID:     studentID,
			AssessmentID:  assessmentID,
			SubmissionURL: url,
			SubmittedAt:   now,
			Status:        models.SubmissionPending,
		}
		// Single atomic upsert keyed on (student, assessment); two racing
		// first submissions resolve at the unique index.
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "assessment_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"submission_url": url,
				"submitted_at":   now,
				"status":         models.SubmissionPending,
				"updated_at":     now,
			}),
		}).Create(&response).Error
		if err != nil {
			return err
		}

		return s.markWeekCompleted(tx, studentID, weekID)
	})
}

// ProjectInput carries the links and description of a project submission.
type ProjectInput struct {
	GithubURL   string `json:"github_url"`
	LiveURL     string `json:"live_url"`
	DemoURL     string `json:"demo_url"`
	Description string `json:"description" validate:"required"`
}

// SubmitProject upserts the student's project for a week and marks the week
// complete, mirroring SubmitAssignment.
func (s *ProgressionService) SubmitProject(studentID, weekID uint, input ProjectInput) error {
	var week models.CourseWeek
	if err := s.DB.First(&week, weekID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	now := time.Now()
	return s.DB.Transaction(func(tx *gorm.DB) error {
		submission := models.ProjectSubmission{
			StudentID:   studentID,
			WeekID:      weekID,
			GithubURL:   input.GithubURL,
			LiveURL:     input.LiveURL,
			DemoURL:     input.DemoURL,
			Description: input.Description,
			Status:      models.SubmissionPending,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "week_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"github_url":  input.GithubURL,
				"live_url":    input.LiveURL,
				"demo_url":    input.DemoURL,
				"description": input.Description,
				"status":      models.SubmissionPending,
				"updated_at":  now,
			}),
		}).Create(&submission).Error
		if err != nil {
			return err
		}

		return s.markWeekCompleted(tx, studentID, weekID)
	})
}

// markWeekCompleted idempotently ensures a completed StudentProgress row for
// (student, week). A week completes on the first gating submission, even when
// it carries several assessments. Re-invocation on an already-complete week
// is a no-op and does not refresh CompletedAt.
func (s *ProgressionService) markWeekCompleted(tx *gorm.DB, studentID, weekID uint) error {
	var progress models.StudentProgress
	err := tx.Where("student_id = ? AND week_id = ?", studentID, weekID).First(&progress).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		now := time.Now()
		progress = models.StudentProgress{
			StudentID:   studentID,
			WeekID:      weekID,
			IsCompleted: true,
			IsUnlocked:  true,
			CompletedAt: &now,
		}
		err = tx.Create(&progress).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		// Lost the insert race; fall through to the update path.
		if err := tx.Where("student_id = ? AND week_id = ?", studentID, weekID).
			First(&progress).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if progress.IsCompleted {
		return nil
	}

	now := time.Now()
	return tx.Model(&progress).Updates(map[string]interface{}{
		"is_completed": true,
		"completed_at": now,
	}).Error
}
