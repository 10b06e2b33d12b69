package controllers

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"project/backend/config"
	"project/backend/middleware"
	"project/backend/services"
	"project/backend/utils"
)

type DoubtController struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Doubt *services.DoubtService
}

func NewDoubtController(db *gorm.DB, cfg *config.Config, doubt *services.DoubtService) *DoubtController {
	return &DoubtController{DB: db, Cfg: cfg, Doubt: doubt}
}

// CreateRequest godoc
// @Summary Request a doubt session
// @Description Creates a pending session, limited to 3 per rolling 7 days
// @Tags doubt
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Router /student/doubts [post]
func (dc *DoubtController) CreateRequest(c *fiber.Ctx) error {
	studentID := middleware.UserID(c)

	var input services.DoubtRequestInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.StudentID = studentID
	if err := validator.New().Struct(input); err != nil {
		return utils.ValidationError(c, fieldErrors(err))
	}

	session, err := dc.Doubt.CreateRequest(input)
	if errors.Is(err, services.ErrDoubtQuotaExceeded) {
		return utils.QuotaExceeded(c, err.Error())
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not create doubt request")
	}

	return utils.Created(c, session)
}

func (dc *DoubtController) ListOwnSessions(c *fiber.Ctx) error {
	studentID := middleware.UserID(c)

	sessions, err := dc.Doubt.ListStudentSessions(studentID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, sessions)
}

// ListCourseMentors returns the mentors assigned to any week of a course, so
// the student can address a doubt request.
func (dc *DoubtController) ListCourseMentors(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	mentors, err := dc.Doubt.ListCourseMentors(uint(courseID))
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, mentors)
}
