package controllers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"project/backend/config"
	"project/backend/middleware"
	"project/backend/models"
	"project/backend/services"
	"project/backend/utils"
)

type StudentController struct {
	DB          *gorm.DB
	Cfg         *config.Config
	Progression *services.ProgressionService
}

func NewStudentController(db *gorm.DB, cfg *config.Config, progression *services.ProgressionService) *StudentController {
	return &StudentController{DB: db, Cfg: cfg, Progression: progression}
}

// GetDashboardStats godoc
// @Summary Student overview stats
// @Description Enrolled course count, completed weeks and average score
// @Tags student
// @Produce json
// @Security ApiKeyAuth
// @Router /student/stats [get]
func (sc *StudentController) GetDashboardStats(c *fiber.Ctx) error {
	studentID := middleware.UserID(c)

	var enrolled int64
	if err := sc.DB.Model(&models.Enrollment{}).
		Where("student_id = ?", studentID).Count(&enrolled).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var completedWeeks int64
	if err := sc.DB.Model(&models.StudentProgress{}).
		Where("student_id = ? AND is_completed = ?", studentID, true).
		Count(&completedWeeks).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var responses []models.AssessmentResponse
	if err := sc.DB.Where("student_id = ? AND score IS NOT NULL", studentID).
		Find(&responses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	avgScore := "0"
	if len(responses) > 0 {
		total := 0
		for _, r := range responses {
			total += *r.Score
		}
		avgScore = fmt.Sprintf("%.1f", float64(total)/float64(len(responses)))
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"enrolled_courses": enrolled,
		"completed_weeks":  completedWeeks,
		"avg_score":        avgScore,
	})
}

func (sc *StudentController) GetEnrolledCourses(c *fiber.Ctx) error {
	studentID := middleware.UserID(c)

	var enrollments []models.Enrollment
	if err := sc.DB.Preload("Course").
		Where("student_id = ?", studentID).
		Find(&enrollments).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	courses := make([]fiber.Map, 0, len(enrollments))
	for _, e := range enrollments {
		courses = append(courses, fiber.Map{
			"id":          e.Course.ID,
			"title":       e.Course.Title,
			"description": e.Course.Description,
			"image_url":   e.Course.ImageURL,
		})
	}

	return utils.Success(c, fiber.StatusOK, courses)
}

// GetCourseContent godoc
// @Summary Course content with lock state
// @Description Months and weeks annotated with is_locked / is_completed
// @Tags student
// @Produce json
// @Security ApiKeyAuth
// @Router /student/courses/{id}/content [get]
func (sc *StudentController) GetCourseContent(c *fiber.Ctx) error {
	studentID := middleware.UserID(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var enrollment models.Enrollment
	err = sc.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Forbidden(c, "Not enrolled in this course")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	content, err := sc.Progression.GetCourseContent(studentID, uint(courseID))
	if err != nil {
		return utils.InternalServerError(c, "Could not fetch course content")
	}

	return utils.Success(c, fiber.StatusOK, content)
}

type AssignmentSubmissionInput struct {
	URL string `json:"url" validate:"required,url"`
}

// SubmitAssignment godoc
// @Summary Submit an assignment
// @Description Upserts the response and marks the owning week complete
// @Tags student
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Router /student/weeks/{weekId}/assessments/{assessmentId} [post]
func (sc *StudentController) SubmitAssignment(c *fiber.Ctx) error {
	studentID := middleware.UserID(c)

	weekID, err := strconv.Atoi(c.Params("weekId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid week ID")
	}
	assessmentID, err := strconv.Atoi(c.Params("assessmentId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid assessment ID")
	}

	var input AssignmentSubmissionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validator.New().Struct(input); err != nil {
		return utils.ValidationError(c, fieldErrors(err))
	}

	err = sc.Progression.SubmitAssignment(studentID, uint(assessmentID), uint(weekID), input.URL)
	if errors.Is(err, services.ErrNotFound) {
		return utils.NotFound(c, "Assessment not found")
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not submit assignment")
	}

	return utils.SuccessMessage(c, "Assignment submitted")
}

// SubmitProject godoc
// @Summary Submit a project
// @Description Upserts the submission and marks the week complete
// @Tags student
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Router /student/weeks/{weekId}/project [post]
func (sc *StudentController) SubmitProject(c *fiber.Ctx) error {
	studentID := middleware.UserID(c)

	weekID, err := strconv.Atoi(c.Params("weekId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid week ID")
	}

	var input services.ProjectInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validator.New().Struct(input); err != nil {
		return utils.ValidationError(c, fieldErrors(err))
	}

	err = sc.Progression.SubmitProject(studentID, uint(weekID), input)
	if errors.Is(err, services.ErrNotFound) {
		return utils.NotFound(c, "Week not found")
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not submit project")
	}

	return utils.SuccessMessage(c, "Project submitted")
}

// GetSubmissions returns the student's full submission history, assignments
// and projects together.
func (sc *StudentController) GetSubmissions(c *fiber.Ctx) error {
	studentID := middleware.UserID(c)

	var assignments []models.AssessmentResponse
	if err := sc.DB.Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&assignments).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var projects []models.ProjectSubmission
	if err := sc.DB.Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"assignments": assignments,
		"projects":    projects,
	})
}

// GetApprovedProjects returns a user's graded projects for the public
// profile page.
func (sc *StudentController) GetApprovedProjects(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("userId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var projects []models.ProjectSubmission
	if err := sc.DB.Where("student_id = ? AND status = ?", userID, models.SubmissionGraded).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, projects)
}

type ProfileInput struct {
	Bio          string `json:"bio"`
	GithubURL    string `json:"github_url" validate:"omitempty,url"`
	LinkedinURL  string `json:"linkedin_url" validate:"omitempty,url"`
	WebsiteURL   string `json:"website_url" validate:"omitempty,url"`
	TwitterURL   string `json:"twitter_url" validate:"omitempty,url"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	ResumeURL    string `json:"resume_url" validate:"omitempty,url"`
}

func (sc *StudentController) UpdateProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input ProfileInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validator.New().Struct(input); err != nil {
		return utils.ValidationError(c, fieldErrors(err))
	}

	err := sc.DB.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"bio":           input.Bio,
			"github_url":    input.GithubURL,
			"linkedin_url":  input.LinkedinURL,
			"website_url":   input.WebsiteURL,
			"twitter_url":   input.TwitterURL,
			"contact_email": input.ContactEmail,
			"resume_url":    input.ResumeURL,
		}).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not update profile")
	}

	return utils.SuccessMessage(c, "Profile updated")
}
