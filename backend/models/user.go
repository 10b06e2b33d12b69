package models

import "gorm.io/gorm"

// Role is the closed set of account roles. Handlers dispatch on this type
// instead of comparing raw strings.
type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
	RoleAdmin   Role = "admin"
	RolePartner Role = "partner_agency"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleMentor, RoleAdmin, RolePartner:
		return true
	}
	return false
}

func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

type User struct {
	gorm.Model
	Name         string `gorm:"not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         Role   `gorm:"default:student"`

	// Public profile fields, editable by the user.
	Bio          string
	GithubURL    string
	LinkedinURL  string
	WebsiteURL   string
	TwitterURL   string
	ContactEmail string
	ResumeURL    string
}

type PartnerApplication struct {
	gorm.Model
	UserID      uint   `gorm:"not null;index"`
	AgencyName  string `gorm:"not null"`
	Email       string `gorm:"not null"`
	ContactNo   string `gorm:"not null"`
	WebsiteURL  string
	Description string
	Status      string `gorm:"default:pending"` // pending, approved, rejected
}
