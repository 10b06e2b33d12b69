package utils

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"project/backend/config"
	"project/backend/models"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the schema for all entities. The composite
// unique indexes on StudentProgress, AssessmentResponse and ProjectSubmission
// are part of the correctness model: concurrent find-or-create submissions
// for the same key resolve at the database, not in application code.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.PartnerApplication{},
		&models.Course{},
		&models.CourseMonth{},
		&models.CourseWeek{},
		&models.WeekMentor{},
		&models.Enrollment{},
		&models.Assessment{},
		&models.AssessmentResponse{},
		&models.ProjectSubmission{},
		&models.StudentProgress{},
		&models.DoubtSession{},
		&models.Coupon{},
	)
}
