package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"project/backend/config"
	"project/backend/models"
	"project/backend/routes"
	"project/backend/utils"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	cfg := &config.Config{JWTSecret: "testsecret", AppName: "Learning Platform"}
	logger := utils.InitLogger()
	limiter := utils.NewRateLimiter(cfg, logger) // no Redis configured: allows everything
	mailer := utils.NewMailer(cfg, limiter, logger)

	app := fiber.New()
	routes.SetupRoutes(app, routes.Deps{
		DB:      db,
		Cfg:     cfg,
		Logger:  logger,
		Limiter: limiter,
		Mailer:  mailer,
	})

	return &testEnv{app: app, db: db, cfg: cfg}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := e.app.Test(req)
	require.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp, result
}

// createUser seeds a user directly and returns its id and a valid token.
func (e *testEnv) createUser(t *testing.T, name, email string, role models.Role) (uint, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := models.User{Name: name, Email: email, PasswordHash: string(hash), Role: role}
	require.NoError(t, e.db.Create(&user).Error)

	token, err := utils.GenerateJWTToken(user.ID, role, e.cfg)
	require.NoError(t, err)
	return user.ID, token
}

// seedEnrolledCourse creates a course with the given weeks and enrolls the
// student, returning the course id and week ids.
func (e *testEnv) seedEnrolledCourse(t *testing.T, studentID uint, weekCount int) (uint, []uint) {
	t.Helper()

	course := models.Course{Title: "Go Bootcamp", Description: "Twelve weeks of Go", Status: "published"}
	require.NoError(t, e.db.Create(&course).Error)
	month := models.CourseMonth{CourseID: course.ID, Title: "Month 1", Order: 1}
	require.NoError(t, e.db.Create(&month).Error)

	weekIDs := make([]uint, 0, weekCount)
	for i := 0; i < weekCount; i++ {
		week := models.CourseWeek{MonthID: month.ID, Title: fmt.Sprintf("Week %d", i+1), Order: i + 1}
		require.NoError(t, e.db.Create(&week).Error)
		weekIDs = append(weekIDs, week.ID)
	}

	require.NoError(t, e.db.Create(&models.Enrollment{StudentID: studentID, CourseID: course.ID}).Error)
	return course.ID, weekIDs
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	resp, result := env.request(t, "POST", "/api/auth/register", "", map[string]interface{}{
		"name":     "Asha",
		"email":    "asha@example.com",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, result["success"])
	data := result["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, "student", data["user"].(map[string]interface{})["role"])

	resp, result = env.request(t, "POST", "/api/auth/login", "", map[string]interface{}{
		"email":    "asha@example.com",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, result["success"])

	resp, result = env.request(t, "POST", "/api/auth/login", "", map[string]interface{}{
		"email":    "asha@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, false, result["success"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]interface{}{
		"name":     "Asha",
		"email":    "asha@example.com",
		"password": "password123",
	}
	resp, _ := env.request(t, "POST", "/api/auth/register", "", payload)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, result := env.request(t, "POST", "/api/auth/register", "", payload)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, result["success"])
}

func TestSubmitProjectUnlocksContent(t *testing.T) {
	env := newTestEnv(t)
	studentID, token := env.createUser(t, "Asha", "asha@example.com", models.RoleStudent)
	courseID, weekIDs := env.seedEnrolledCourse(t, studentID, 3)

	path := fmt.Sprintf("/api/student/courses/%d/content", courseID)
	resp, result := env.request(t, "GET", path, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	weeks := result["data"].([]interface{})[0].(map[string]interface{})["weeks"].([]interface{})
	require.Len(t, weeks, 3)
	assert.Equal(t, false, weeks[0].(map[string]interface{})["is_locked"])
	assert.Equal(t, true, weeks[1].(map[string]interface{})["is_locked"])

	resp, _ = env.request(t, "POST", fmt.Sprintf("/api/student/weeks/%d/project", weekIDs[0]), token,
		map[string]interface{}{"description": "URL shortener in Go"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, result = env.request(t, "GET", path, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	weeks = result["data"].([]interface{})[0].(map[string]interface{})["weeks"].([]interface{})
	assert.Equal(t, true, weeks[0].(map[string]interface{})["is_completed"])
	assert.Equal(t, false, weeks[1].(map[string]interface{})["is_locked"])
	assert.Equal(t, true, weeks[2].(map[string]interface{})["is_locked"])
}

func TestCourseContentRequiresEnrollment(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "Asha", "asha@example.com", models.RoleStudent)

	otherID, _ := env.createUser(t, "Bisi", "bisi@example.com", models.RoleStudent)
	courseID, _ := env.seedEnrolledCourse(t, otherID, 1)

	resp, result := env.request(t, "GET", fmt.Sprintf("/api/student/courses/%d/content", courseID), token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, false, result["success"])
}

func TestDoubtQuotaOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	studentID, token := env.createUser(t, "Asha", "asha@example.com", models.RoleStudent)
	courseID, _ := env.seedEnrolledCourse(t, studentID, 1)

	payload := map[string]interface{}{
		"course_id": courseID,
		"topic":     "pointer receivers",
	}
	for i := 0; i < 3; i++ {
		resp, _ := env.request(t, "POST", "/api/student/doubts", token, payload)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode, "request %d", i+1)
	}

	resp, result := env.request(t, "POST", "/api/student/doubts", token, payload)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, false, result["success"])
}

func TestScoreValidationOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	studentID, studentToken := env.createUser(t, "Asha", "asha@example.com", models.RoleStudent)
	_, mentorToken := env.createUser(t, "Femi", "femi@example.com", models.RoleMentor)
	_, weekIDs := env.seedEnrolledCourse(t, studentID, 1)

	assessment := models.Assessment{WeekID: weekIDs[0], Title: "Quiz 1"}
	require.NoError(t, env.db.Create(&assessment).Error)

	resp, _ := env.request(t, "POST",
		fmt.Sprintf("/api/student/weeks/%d/assessments/%d", weekIDs[0], assessment.ID),
		studentToken, map[string]interface{}{"url": "https://example.com/answers"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response models.AssessmentResponse
	require.NoError(t, env.db.First(&response).Error)

	resp, result := env.request(t, "PUT",
		fmt.Sprintf("/api/mentor/assignments/%d/score", response.ID),
		mentorToken, map[string]interface{}{"score": 150})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, false, result["success"])

	resp, _ = env.request(t, "PUT",
		fmt.Sprintf("/api/mentor/assignments/%d/score", response.ID),
		mentorToken, map[string]interface{}{"score": 92})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRoleGuards(t *testing.T) {
	env := newTestEnv(t)
	_, studentToken := env.createUser(t, "Asha", "asha@example.com", models.RoleStudent)

	resp, _ := env.request(t, "GET", "/api/admin/coupons", studentToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = env.request(t, "GET", "/api/mentor/assignments", studentToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = env.request(t, "GET", "/api/student/stats", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
