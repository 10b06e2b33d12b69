package models

import (
	"time"

	"gorm.io/gorm"
)

type Coupon struct {
	gorm.Model
	Code              string `gorm:"unique;not null"`
	DiscountPercent   int    `gorm:"not null"`
	MaxDiscountAmount *int
	MaxUses           *int
	Uses              int `gorm:"default:0"`
	IsActive          bool
	ExpiresAt         *time.Time

	// Set when the coupon belongs to a partner agency's referral program.
	PartnerID      *uint
	PartnerRevenue *int // partner's revenue share, percent
}
