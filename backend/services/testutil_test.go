package services

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"project/backend/models"
	"project/backend/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := utils.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

// seedCourse creates a course with one month and the given weeks, returning
// the week ids in order.
func seedCourse(t *testing.T, db *gorm.DB, weekTitles ...string) (uint, []uint) {
	t.Helper()

	course := models.Course{Title: "Backend Bootcamp", Description: "From zero to deployed", Status: "published"}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("seeding course: %v", err)
	}
	month := models.CourseMonth{CourseID: course.ID, Title: "Month 1", Order: 1}
	if err := db.Create(&month).Error; err != nil {
		t.Fatalf("seeding month: %v", err)
	}

	weekIDs := make([]uint, 0, len(weekTitles))
	for i, title := range weekTitles {
		week := models.CourseWeek{MonthID: month.ID, Title: title, Order: i + 1}
		if err := db.Create(&week).Error; err != nil {
			t.Fatalf("seeding week: %v", err)
		}
		weekIDs = append(weekIDs, week.ID)
	}
	return course.ID, weekIDs
}

func seedStudent(t *testing.T, db *gorm.DB) uint {
	t.Helper()

	student := models.User{Name: "Asha", Email: "asha@example.com", PasswordHash: "x", Role: models.RoleStudent}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("seeding student: %v", err)
	}
	return student.ID
}
