package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"project/backend/models"
)

// Score ranges. Assignments and projects use distinct scales; they must not
// be unified.
const (
	maxAssignmentScore = 100
	maxProjectScore    = 10
)

// GradingService is the mentor-side transition of submissions from pending to
// graded. Grading only records evaluative metadata; week completion was
// already granted at submission time.
type GradingService struct {
	DB *gorm.DB
}

func NewGradingService(db *gorm.DB) *GradingService {
	return &GradingService{DB: db}
}

// ScoreAssignment records an assignment score in [0, 100]. Out-of-range input
// is rejected before any write.
func (s *GradingService) ScoreAssignment(responseID uint, score int) error {
	if score < 0 || score > maxAssignmentScore {
		return ErrInvalidAssignmentScore
	}

	var response models.AssessmentResponse
	if err := s.DB.First(&response, responseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return s.DB.Model(&response).Updates(map[string]interface{}{
		"score":  score,
		"status": models.SubmissionGraded,
	}).Error
}

// ScoreProject records a project score in [0, 10] with an optional free-text
// review.
func (s *GradingService) ScoreProject(submissionID uint, score int, review string) error {
	if score < 0 || score > maxProjectScore {
		return ErrInvalidProjectScore
	}

	var submission models.ProjectSubmission
	if err := s.DB.First(&submission, submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return s.DB.Model(&submission).Updates(map[string]interface{}{
		"score":  score,
		"status": models.SubmissionGraded,
		"review": review,
	}).Error
}

// PendingAssignmentView is a pending response on one of the mentor's weeks.
type PendingAssignmentView struct {
	ID              uint      `json:"id"`
	StudentName     string    `json:"student_name"`
	AssessmentTitle string    `json:"assessment_title"`
	WeekTitle       string    `json:"week_title"`
	SubmissionURL   string    `json:"submission_url"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

func (s *GradingService) PendingAssignments(mentorID uint) ([]PendingAssignmentView, error) {
	var pending []PendingAssignmentView
	err := s.DB.Model(&models.AssessmentResponse{}).
		Select(`assessment_responses.id, users.name AS student_name,
			assessments.title AS assessment_title, course_weeks.title AS week_title,
			assessment_responses.submission_url, assessment_responses.submitted_at`).
		Joins("JOIN assessments ON assessments.id = assessment_responses.assessment_id").
		Joins("JOIN course_weeks ON course_weeks.id = assessments.week_id").
		Joins("JOIN week_mentors ON week_mentors.week_id = course_weeks.id").
		Joins("JOIN users ON users.id = assessment_responses.student_id").
		Where("assessment_responses.status = ? AND week_mentors.mentor_id = ?",
			models.SubmissionPending, mentorID).
		Order("assessment_responses.submitted_at ASC").
		Scan(&pending).Error
	return pending, err
}

// PendingProjectView is a pending project on one of the mentor's weeks.
type PendingProjectView struct {
	ID          uint      `json:"id"`
	StudentName string    `json:"student_name"`
	WeekTitle   string    `json:"week_title"`
	GithubURL   string    `json:"github_url"`
	LiveURL     string    `json:"live_url"`
	DemoURL     string    `json:"demo_url"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *GradingService) PendingProjects(mentorID uint) ([]PendingProjectView, error) {
	var pending []PendingProjectView
	err := s.DB.Model(&models.ProjectSubmission{}).
		Select(`project_submissions.id, users.name AS student_name,
			course_weeks.title AS week_title, project_submissions.github_url,
			project_submissions.live_url, project_submissions.demo_url,
			project_submissions.description, project_submissions.created_at`).
		Joins("JOIN course_weeks ON course_weeks.id = project_submissions.week_id").
		Joins("JOIN week_mentors ON week_mentors.week_id = course_weeks.id").
		Joins("JOIN users ON users.id = project_submissions.student_id").
		Where("project_submissions.status = ? AND week_mentors.mentor_id = ?",
			models.SubmissionPending, mentorID).
		Order("project_submissions.created_at ASC").
		Scan(&pending).Error
	return pending, err
}
