package controllers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"project/backend/config"
	"project/backend/middleware"
	"project/backend/models"
	"project/backend/utils"
)

type PartnerController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewPartnerController(db *gorm.DB, cfg *config.Config) *PartnerController {
	return &PartnerController{DB: db, Cfg: cfg}
}

type PartnerApplicationInput struct {
	AgencyName  string `json:"agency_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	ContactNo   string `json:"contact_no" validate:"required"`
	WebsiteURL  string `json:"website_url" validate:"omitempty,url"`
	Description string `json:"description"`
}

// Apply godoc
// @Summary Submit a partner agency application
// @Tags partner
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Router /partner/apply [post]
func (pc *PartnerController) Apply(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input PartnerApplicationInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validator.New().Struct(input); err != nil {
		return utils.ValidationError(c, fieldErrors(err))
	}

	application := models.PartnerApplication{
		UserID:      userID,
		AgencyName:  input.AgencyName,
		Email:       input.Email,
		ContactNo:   input.ContactNo,
		WebsiteURL:  input.WebsiteURL,
		Description: input.Description,
		Status:      "pending",
	}
	if err := pc.DB.Create(&application).Error; err != nil {
		return utils.InternalServerError(c, "Could not submit application")
	}

	return utils.Created(c, application)
}

// GetCoupons returns the coupons linked to the partner's referral program.
func (pc *PartnerController) GetCoupons(c *fiber.Ctx) error {
	partnerID := middleware.UserID(c)

	var coupons []models.Coupon
	if err := pc.DB.Where("partner_id = ?", partnerID).
		Order("created_at DESC").
		Find(&coupons).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, coupons)
}

// GetOverview aggregates coupon usage for the partner dashboard.
func (pc *PartnerController) GetOverview(c *fiber.Ctx) error {
	partnerID := middleware.UserID(c)

	var coupons []models.Coupon
	if err := pc.DB.Where("partner_id = ?", partnerID).Find(&coupons).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	totalUses := 0
	active := 0
	for _, coupon := range coupons {
		totalUses += coupon.Uses
		if coupon.IsActive {
			active++
		}
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"coupons":        len(coupons),
		"active_coupons": active,
		"total_uses":     totalUses,
	})
}
