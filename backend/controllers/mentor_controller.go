package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"project/backend/config"
	"project/backend/middleware"
	"project/backend/models"
	"project/backend/services"
	"project/backend/utils"
)

type MentorController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Grading *services.GradingService
	Doubt   *services.DoubtService
	Mailer  utils.Mailer
}

func NewMentorController(db *gorm.DB, cfg *config.Config, grading *services.GradingService, doubt *services.DoubtService, mailer utils.Mailer) *MentorController {
	return &MentorController{DB: db, Cfg: cfg, Grading: grading, Doubt: doubt, Mailer: mailer}
}

// AssignedWeekView is a week the mentor is responsible for, with its course.
type AssignedWeekView struct {
	WeekID      uint   `json:"week_id"`
	WeekTitle   string `json:"week_title"`
	MonthTitle  string `json:"month_title"`
	CourseTitle string `json:"course_title"`
}

func (mc *MentorController) GetAssignedWeeks(c *fiber.Ctx) error {
	mentorID := middleware.UserID(c)

	var weeks []AssignedWeekView
	err := mc.DB.Model(&models.WeekMentor{}).
		Select(`course_weeks.id AS week_id, course_weeks.title AS week_title,
			course_months.title AS month_title, courses.title AS course_title`).
		Joins("JOIN course_weeks ON course_weeks.id = week_mentors.week_id").
		Joins("JOIN course_months ON course_months.id = course_weeks.month_id").
		Joins("JOIN courses ON courses.id = course_months.course_id").
		Where("week_mentors.mentor_id = ?", mentorID).
		Order("courses.id, course_months.sequence_order, course_weeks.sequence_order").
		Scan(&weeks).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, weeks)
}

func (mc *MentorController) GetPendingAssignments(c *fiber.Ctx) error {
	mentorID := middleware.UserID(c)

	pending, err := mc.Grading.PendingAssignments(mentorID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, pending)
}

func (mc *MentorController) GetPendingProjects(c *fiber.Ctx) error {
	mentorID := middleware.UserID(c)

	pending, err := mc.Grading.PendingProjects(mentorID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, pending)
}

type AssignmentScoreInput struct {
	Score *int `json:"score" validate:"required"`
}

// ScoreAssignment godoc
// @Summary Score a pending assignment
// @Description Records a 0-100 score and marks the response graded
// @Tags mentor
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Router /mentor/assignments/{id}/score [put]
func (mc *MentorController) ScoreAssignment(c *fiber.Ctx) error {
	responseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid submission ID")
	}

	var input AssignmentScoreInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validator.New().Struct(input); err != nil {
		return utils.ValidationError(c, fieldErrors(err))
	}

	err = mc.Grading.ScoreAssignment(uint(responseID), *input.Score)
	switch {
	case errors.Is(err, services.ErrInvalidAssignmentScore):
		return utils.ValidationError(c, map[string]string{"score": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFound(c, "Submission not found")
	case err != nil:
		return utils.InternalServerError(c, "Could not score assignment")
	}

	return utils.SuccessMessage(c, "Assignment scored")
}

type ProjectScoreInput struct {
	Score  *int   `json:"score" validate:"required"`
	Review string `json:"review"`
}

// ScoreProject godoc
// @Summary Score a pending project
// @Description Records a 0-10 score with an optional review
// @Tags mentor
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Router /mentor/projects/{id}/score [put]
func (mc *MentorController) ScoreProject(c *fiber.Ctx) error {
	submissionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid submission ID")
	}

	var input ProjectScoreInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validator.New().Struct(input); err != nil {
		return utils.ValidationError(c, fieldErrors(err))
	}

	err = mc.Grading.ScoreProject(uint(submissionID), *input.Score, input.Review)
	switch {
	case errors.Is(err, services.ErrInvalidProjectScore):
		return utils.ValidationError(c, map[string]string{"score": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFound(c, "Submission not found")
	case err != nil:
		return utils.InternalServerError(c, "Could not score project")
	}

	return utils.SuccessMessage(c, "Project scored")
}

func (mc *MentorController) GetDoubtRequests(c *fiber.Ctx) error {
	mentorID := middleware.UserID(c)

	requests, err := mc.Doubt.ListMentorRequests(mentorID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, requests)
}

type ScheduleDoubtInput struct {
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	MeetLink    string    `json:"meet_link" validate:"required,url"`
}

// ScheduleDoubtSession claims a pending request for the mentor, records the
// meeting details and notifies the student by email.
func (mc *MentorController) ScheduleDoubtSession(c *fiber.Ctx) error {
	mentorID := middleware.UserID(c)

	sessionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid session ID")
	}

	var input ScheduleDoubtInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validator.New().Struct(input); err != nil {
		return utils.ValidationError(c, fieldErrors(err))
	}

	session, student, err := mc.Doubt.Schedule(uint(sessionID), mentorID, input.ScheduledAt, input.MeetLink)
	switch {
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFound(c, "Doubt session not found")
	case errors.Is(err, services.ErrNotSchedulable):
		return utils.BadRequest(c, "Doubt session is not pending")
	case err != nil:
		return utils.InternalServerError(c, "Could not schedule session")
	}

	if student != nil {
		// Fire-and-forget: a failed notification never fails the scheduling.
		go mc.Mailer.Send(
			student.Email,
			"Your doubt session is scheduled",
			fmt.Sprintf("<p>Your session on <b>%s</b> is scheduled for %s.</p><p>Join: <a href=%q>%s</a></p>",
				session.Topic, input.ScheduledAt.Format(time.RFC1123), input.MeetLink, input.MeetLink),
		)
	}

	return utils.Success(c, fiber.StatusOK, session)
}

func (mc *MentorController) RejectDoubtSession(c *fiber.Ctx) error {
	sessionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid session ID")
	}

	err = mc.Doubt.Reject(uint(sessionID))
	if errors.Is(err, services.ErrNotFound) {
		return utils.NotFound(c, "Doubt session not found")
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not reject session")
	}

	return utils.SuccessMessage(c, "Doubt session rejected")
}
