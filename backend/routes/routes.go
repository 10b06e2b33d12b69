package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"project/backend/config"
	"project/backend/controllers"
	"project/backend/middleware"
	"project/backend/models"
	"project/backend/services"
	"project/backend/utils"
)

// Deps are the shared collaborators injected into controllers.
type Deps struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Logger  *log.Logger
	Limiter utils.RateLimiter
	Mailer  utils.Mailer
}

func SetupRoutes(app *fiber.App, deps Deps) {
	progression := services.NewProgressionService(deps.DB)
	doubt := services.NewDoubtService(deps.DB)
	grading := services.NewGradingService(deps.DB)

	authController := controllers.NewAuthController(deps.DB, deps.Cfg, deps.Limiter)
	studentController := controllers.NewStudentController(deps.DB, deps.Cfg, progression)
	doubtController := controllers.NewDoubtController(deps.DB, deps.Cfg, doubt)
	mentorController := controllers.NewMentorController(deps.DB, deps.Cfg, grading, doubt, deps.Mailer)
	adminController := controllers.NewAdminController(deps.DB, deps.Cfg, deps.Mailer)
	partnerController := controllers.NewPartnerController(deps.DB, deps.Cfg)

	authMiddleware := middleware.AuthMiddleware(deps.Cfg)

	// Auth routes
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Public profile
	app.Get("/api/profile/:userId/projects", studentController.GetApprovedProjects)

	// Student routes
	student := app.Group("/api/student", authMiddleware, middleware.RequireRoles(models.RoleStudent))
	student.Get("/stats", studentController.GetDashboardStats)
	student.Get("/courses", studentController.GetEnrolledCourses)
	student.Get("/courses/:id/content", studentController.GetCourseContent)
	student.Get("/courses/:id/mentors", doubtController.ListCourseMentors)
	student.Get("/submissions", studentController.GetSubmissions)
	student.Post("/weeks/:weekId/assessments/:assessmentId", studentController.SubmitAssignment)
	student.Post("/weeks/:weekId/project", studentController.SubmitProject)
	student.Post("/doubts", doubtController.CreateRequest)
	student.Get("/doubts", doubtController.ListOwnSessions)

	// Profile update is open to any authenticated role
	app.Put("/api/profile", authMiddleware, studentController.UpdateProfile)

	// Mentor routes
	mentor := app.Group("/api/mentor", authMiddleware, middleware.RequireRoles(models.RoleMentor, models.RoleAdmin))
	mentor.Get("/weeks", mentorController.GetAssignedWeeks)
	mentor.Get("/assignments", mentorController.GetPendingAssignments)
	mentor.Get("/projects", mentorController.GetPendingProjects)
	mentor.Put("/assignments/:id/score", mentorController.ScoreAssignment)
	mentor.Put("/projects/:id/score", mentorController.ScoreProject)
	mentor.Get("/doubts", mentorController.GetDoubtRequests)
	mentor.Put("/doubts/:id/schedule", mentorController.ScheduleDoubtSession)
	mentor.Put("/doubts/:id/reject", mentorController.RejectDoubtSession)

	// Admin routes
	admin := app.Group("/api/admin", authMiddleware, middleware.RequireRoles(models.RoleAdmin))
	admin.Post("/courses", adminController.CreateCourse)
	admin.Get("/courses", adminController.ListCourses)
	admin.Put("/courses/:id/status", adminController.UpdateCourseStatus)
	admin.Post("/enrollments", adminController.EnrollStudent)
	admin.Post("/coupons", adminController.CreateCoupon)
	admin.Get("/coupons", adminController.ListCoupons)
	admin.Put("/coupons/:id", adminController.UpdateCoupon)
	admin.Put("/coupons/:id/toggle", adminController.ToggleCoupon)
	admin.Delete("/coupons/:id", adminController.DeleteCoupon)
	admin.Get("/users", adminController.ListUsers)
	admin.Put("/users/:id/role", adminController.UpdateUserRole)
	admin.Get("/partner-applications", adminController.ListPartnerApplications)
	admin.Put("/partner-applications/:id/approve", adminController.ApprovePartnerApplication)
	admin.Put("/partner-applications/:id/reject", adminController.RejectPartnerApplication)

	// Partner routes
	app.Post("/api/partner/apply", authMiddleware, partnerController.Apply)
	partner := app.Group("/api/partner", authMiddleware, middleware.RequireRoles(models.RolePartner, models.RoleAdmin))
	partner.Get("/coupons", partnerController.GetCoupons)
	partner.Get("/overview", partnerController.GetOverview)
}
