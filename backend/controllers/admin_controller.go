package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"project/backend/config"
	"project/backend/models"
	"project/backend/utils"
)

type AdminController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Mailer utils.Mailer
}

func NewAdminController(db *gorm.DB, cfg *config.Config, mailer utils.Mailer) *AdminController {
	return &AdminController{DB: db, Cfg: cfg, Mailer: mailer}
}

// --- Course builder ---

type AssessmentInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Timer       int    `json:"timer" validate:"min=0"`
}

type WeekInput struct {
	Title              string           `json:"title" validate:"required"`
	Order              int              `json:"order"`
	Content            string           `json:"content"`
	IsProject          bool             `json:"is_project"`
	ProjectTitle       string           `json:"project_title"`
	ProjectDescription string           `json:"project_description"`
	Assessment         *AssessmentInput `json:"assessment"`
	MentorIDs          []uint           `json:"mentor_ids"`
}

type MonthInput struct {
	Title string      `json:"title" validate:"required"`
	Type  string      `json:"type" validate:"omitempty,oneof=common team"`
	Order int         `json:"order"`
	Weeks []WeekInput `json:"weeks" validate:"dive"`
}

type CourseInput struct {
	Title       string       `json:"title" validate:"required,min=3"`
	Description string       `json:"description" validate:"required,min=10"`
	ImageURL    string       `json:"image_url"`
	Status      string       `json:"status" validate:"omitempty,oneof=published unpublished"`
	Months      []MonthInput `json:"months" validate:"dive"`
}

// CreateCourse godoc
// @Summary Create a course
// @Description Creates a course with nested months, weeks and assessments
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Router /admin/courses [post]
func (ac *AdminController) CreateCourse(c *fiber.Ctx) error {
	var input CourseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validator.New().Struct(input); err != nil {
		return utils.ValidationError(c, fieldErrors(err))
	}

	course := models.Course{
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Status:      input.Status,
	}
	if course.Status == "" {
		course.Status = "unpublished"
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&course).Error; err != nil {
			return err
		}
		for mi, m := range input.Months {
			month := models.CourseMonth{
				CourseID: course.ID,
				Title:    m.Title,
				Type:     m.Type,
				Order:    orderOrIndex(m.Order, mi),
			}
			if month.Type == "" {
				month.Type = "common"
			}
			if err := tx.Create(&month).Error; err != nil {
				return err
			}
			for wi, w := range m.Weeks {
				week := models.CourseWeek{
					MonthID:            month.ID,
					Title:              w.Title,
					Order:              orderOrIndex(w.Order, wi),
					Content:            w.Content,
					IsProject:          w.IsProject,
					ProjectTitle:       w.ProjectTitle,
					ProjectDescription: w.ProjectDescription,
				}
				if err := tx.Create(&week).Error; err != nil {
					return err
				}
				if w.Assessment != nil {
					assessment := models.Assessment{
						WeekID:      week.ID,
						Title:       w.Assessment.Title,
						Description: w.Assessment.Description,
						Timer:       w.Assessment.Timer,
					}
					if err := tx.Create(&assessment).Error; err != nil {
						return err
					}
				}
				for _, mentorID := range w.MentorIDs {
					if err := tx.Create(&models.WeekMentor{WeekID: week.ID, MentorID: mentorID}).Error; err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}

	return utils.Created(c, fiber.Map{"id": course.ID, "title": course.Title})
}

func orderOrIndex(order, index int) int {
	if order > 0 {
		return order
	}
	return index + 1
}

func (ac *AdminController) ListCourses(c *fiber.Ctx) error {
	var courses []models.Course
	if err := ac.DB.Order("created_at DESC").Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, courses)
}

func (ac *AdminController) UpdateCourseStatus(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		Status string `json:"status" validate:"required,oneof=published unpublished"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validator.New().Struct(input); err != nil {
		return utils.ValidationError(c, fieldErrors(err))
	}

	result := ac.DB.Model(&models.Course{}).Where("id = ?", courseID).
		Update("status", input.Status)
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not update course")
	}
	if result.RowsAffected == 0 {
		return utils.NotFound(c, "Course not found")
	}

	return utils.SuccessMessage(c, "Course status updated")
}

// EnrollStudent links a student to a course. Enrollment implies visibility of
// the course content.
func (ac *AdminController) EnrollStudent(c *fiber.Ctx) error {
	var input struct {
		StudentID uint `json:"student_id" validate:"required"`
		CourseID  uint `json:"course_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validator.New().Struct(input); err != nil {
		return utils.ValidationError(c, fieldErrors(err))
	}

	enrollment := models.Enrollment{StudentID: input.StudentID, CourseID: input.CourseID}
	if err := ac.DB.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.BadRequest(c, "Student already enrolled")
		}
		return utils.InternalServerError(c, "Could not enroll student")
	}

	return utils.Created(c, enrollment)
}

// --- Coupons ---

type CouponInput struct {
	Code              string     `json:"code" validate:"omitempty,min=3"`
	DiscountPercent   int        `json:"discount_percent" validate:"required,min=1,max=100"`
	MaxDiscountAmount *int       `json:"max_discount_amount"`
	MaxUses           *int       `json:"max_uses"`
	IsActive          bool       `json:"is_active"`
	ExpiresAt         *time.Time `json:"expires_at"`
	PartnerID         *uint      `json:"partner_id"`
	PartnerRevenue    *int       `json:"partner_revenue" validate:"omitempty,min=0,max=100"`
}

// CreateCoupon godoc
// @Summary Create a coupon
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Router /admin/coupons [post]
func (ac *AdminController) CreateCoupon(c *fiber.Ctx) error {
	var input CouponInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validator.New().Struct(input); err != nil {
		return utils.ValidationError(c, fieldErrors(err))
	}

	code := strings.ToUpper(input.Code)
	if code == "" {
		// Generated referral codes for partner coupons.
		code = strings.ToUpper(uuid.NewString()[:8])
	}

	coupon := models.Coupon{
		Code:              code,
		DiscountPercent:   input.DiscountPercent,
		MaxDiscountAmount: input.MaxDiscountAmount,
		MaxUses:           input.MaxUses,
		IsActive:          input.IsActive,
		ExpiresAt:         input.ExpiresAt,
		PartnerID:         input.PartnerID,
		PartnerRevenue:    input.PartnerRevenue,
	}
	if err := ac.DB.Create(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.BadRequest(c, "Coupon code already exists")
		}
		return utils.InternalServerError(c, "Could not create coupon")
	}

	return utils.Created(c, coupon)
}

func (ac *AdminController) ListCoupons(c *fiber.Ctx) error {
	var coupons []models.Coupon
	if err := ac.DB.Order("created_at DESC").Find(&coupons).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, coupons)
}

func (ac *AdminController) UpdateCoupon(c *fiber.Ctx) error {
	couponID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid coupon ID")
	}

	var input CouponInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validator.New().Struct(input); err != nil {
		return utils.ValidationError(c, fieldErrors(err))
	}

	var coupon models.Coupon
	if err := ac.DB.First(&coupon, couponID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Coupon not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	coupon.Code = strings.ToUpper(input.Code)
	coupon.DiscountPercent = input.DiscountPercent
	coupon.MaxDiscountAmount = input.MaxDiscountAmount
	coupon.MaxUses = input.MaxUses
	coupon.IsActive = input.IsActive
	coupon.ExpiresAt = input.ExpiresAt
	coupon.PartnerID = input.PartnerID
	coupon.PartnerRevenue = input.PartnerRevenue

	if err := ac.DB.Save(&coupon).Error; err != nil {
		return utils.InternalServerError(c, "Could not update coupon")
	}

	return utils.Success(c, fiber.StatusOK, coupon)
}

func (ac *AdminController) ToggleCoupon(c *fiber.Ctx) error {
	couponID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid coupon ID")
	}

	var input struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	result := ac.DB.Model(&models.Coupon{}).Where("id = ?", couponID).
		Update("is_active", input.IsActive)
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not update coupon")
	}
	if result.RowsAffected == 0 {
		return utils.NotFound(c, "Coupon not found")
	}

	return utils.SuccessMessage(c, "Coupon status updated")
}

func (ac *AdminController) DeleteCoupon(c *fiber.Ctx) error {
	couponID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid coupon ID")
	}

	result := ac.DB.Delete(&models.Coupon{}, couponID)
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not delete coupon")
	}
	if result.RowsAffected == 0 {
		return utils.NotFound(c, "Coupon not found")
	}

	return utils.SuccessMessage(c, "Coupon deleted")
}

// --- User management ---

func (ac *AdminController) ListUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := ac.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, users)
}

// UpdateUserRole changes an account's role. The role comes from the closed
// enum; anything else is rejected before the write.
func (ac *AdminController) UpdateUserRole(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var input struct {
		Role string `json:"role" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	role, ok := models.ParseRole(input.Role)
	if !ok {
		return utils.ValidationError(c, map[string]string{"role": "must be one of student, mentor, admin, partner_agency"})
	}

	result := ac.DB.Model(&models.User{}).Where("id = ?", userID).Update("role", role)
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not update user")
	}
	if result.RowsAffected == 0 {
		return utils.NotFound(c, "User not found")
	}

	return utils.SuccessMessage(c, "User role updated")
}

// --- Partner applications ---

func (ac *AdminController) ListPartnerApplications(c *fiber.Ctx) error {
	var applications []models.PartnerApplication
	if err := ac.DB.Order("created_at DESC").Find(&applications).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, applications)
}

// ApprovePartnerApplication promotes the applicant to partner_agency and
// notifies them by email.
func (ac *AdminController) ApprovePartnerApplication(c *fiber.Ctx) error {
	applicationID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid application ID")
	}

	var application models.PartnerApplication
	if err := ac.DB.First(&application, applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Application not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", application.UserID).
			Update("role", models.RolePartner).Error; err != nil {
			return err
		}
		return tx.Model(&application).Update("status", "approved").Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not approve application")
	}

	go ac.Mailer.Send(
		application.Email,
		"Partner application approved",
		"<p>Congratulations! Your agency <b>"+application.AgencyName+"</b> has been approved as a partner.</p>",
	)

	return utils.SuccessMessage(c, "Application approved")
}

func (ac *AdminController) RejectPartnerApplication(c *fiber.Ctx) error {
	applicationID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid application ID")
	}

	result := ac.DB.Model(&models.PartnerApplication{}).
		Where("id = ?", applicationID).
		Update("status", "rejected")
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not reject application")
	}
	if result.RowsAffected == 0 {
		return utils.NotFound(c, "Application not found")
	}

	return utils.SuccessMessage(c, "Application rejected")
}
