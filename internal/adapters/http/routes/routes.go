package routes

import (
	"time"

	"sehatku-paylater/internal/adapters/http/handlers"
	"sehatku-paylater/internal/adapters/http/middleware"
	"sehatku-paylater/internal/config"
	"sehatku-paylater/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// Services groups the application services exposed over HTTP
type Services struct {
	Auth      *services.AuthService
	User      *services.UserService
	BPJS      *services.BPJSService
	PayLater  *services.PayLaterService
	Hospital  *services.HospitalService
	Disease   *services.DiseaseService
	Treatment *services.TreatmentService
	Dashboard *services.DashboardService
}

// Setup configures all routes for the application
func Setup(app *fiber.App, svc *Services, healthHandler *handlers.HealthHandler, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(svc.Auth, cfg)
	userHandler := handlers.NewUserHandler(svc.User, svc.BPJS, svc.Auth)
	hospitalHandler := handlers.NewHospitalHandler(svc.Hospital)
	diseaseHandler := handlers.NewDiseaseHandler(svc.Disease)
	payLaterHandler := handlers.NewPayLaterHandler(svc.PayLater)
	treatmentHandler := handlers.NewTreatmentHandler(svc.Treatment)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	apiV1 := app.Group("/api/v1")

	setupAuthRoutes(apiV1.Group("/auth", middleware.NoCacheHeaders()), authHandler, cfg)

	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	setupUserRoutes(userRoutes, userHandler)

	profileRoutes := apiV1.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	setupProfileRoutes(profileRoutes, userHandler)

	setupHospitalRoutes(apiV1.Group("/hospitals"), hospitalHandler, cfg)
	setupDiseaseRoutes(apiV1.Group("/diseases"), diseaseHandler, cfg)

	payLaterRoutes := apiV1.Group("/paylaters")
	payLaterRoutes.Use(middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	setupPayLaterRoutes(payLaterRoutes, payLaterHandler)

	treatmentRoutes := apiV1.Group("/treatments")
	treatmentRoutes.Use(middleware.AuthMiddleware(cfg))
	setupTreatmentRoutes(treatmentRoutes, treatmentHandler)

	dashboardRoutes := apiV1.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg), middleware.HospitalAdminOnly())
	dashboardRoutes.Get("/", dashboardHandler.GetAdminDashboard)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures user management and BPJS routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", middleware.HospitalAdminOnly(), handler.ListUsers)
	router.Post("/", middleware.HospitalAdminOnly(), handler.CreateUser)
	router.Get("/:id", handler.GetUser)
	router.Patch("/:id", handler.UpdateUser)
	router.Delete("/:id", middleware.HospitalAdminOnly(), handler.DeleteUser)

	router.Put("/:id/bpjs", handler.UpdateBPJS)
	router.Get("/:id/bpjs-status", handler.BPJSStatus)
}

// setupProfileRoutes configures the current user's profile routes
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.GetProfile)
	router.Patch("/", handler.UpdateProfile)
	router.Put("/password", handler.ChangePassword)
}

// setupHospitalRoutes configures hospital routes. Reads are public.
func setupHospitalRoutes(router fiber.Router, handler *handlers.HospitalHandler, cfg *config.Config) {
	router.Get("/", middleware.CatalogueCache(5*time.Minute), handler.List)
	router.Get("/:id", middleware.CatalogueCache(5*time.Minute), handler.Get)

	admin := []fiber.Handler{middleware.AuthMiddleware(cfg), middleware.HospitalAdminOnly()}
	router.Post("/", append(admin, handler.Create)...)
	router.Patch("/:id", append(admin, handler.Update)...)
	router.Delete("/:id", append(admin, handler.Delete)...)
}

// setupDiseaseRoutes configures disease catalogue routes. Reads are public.
func setupDiseaseRoutes(router fiber.Router, handler *handlers.DiseaseHandler, cfg *config.Config) {
	router.Get("/", middleware.CatalogueCache(5*time.Minute), handler.List)
	router.Get("/:id", middleware.CatalogueCache(5*time.Minute), handler.Get)

	admin := []fiber.Handler{middleware.AuthMiddleware(cfg), middleware.HospitalAdminOnly()}
	router.Post("/", append(admin, handler.Create)...)
	router.Patch("/:id", append(admin, handler.Update)...)
	router.Delete("/:id", append(admin, handler.Delete)...)
}

// setupPayLaterRoutes configures PayLater routes
func setupPayLaterRoutes(router fiber.Router, handler *handlers.PayLaterHandler) {
	router.Get("/", handler.List)
	router.Get("/:id", handler.Get)
	router.Post("/", handler.Create)

	// Admin only
	router.Patch("/:id/approve", middleware.HospitalAdminOnly(), handler.Approve)
	router.Patch("/:id/reject", middleware.HospitalAdminOnly(), handler.Reject)
	router.Patch("/:id/paid", middleware.HospitalAdminOnly(), handler.MarkPaid)
	router.Patch("/:id", middleware.HospitalAdminOnly(), handler.Update)
	router.Delete("/:id", middleware.HospitalAdminOnly(), handler.Delete)
}

// setupTreatmentRoutes configures treatment routes
func setupTreatmentRoutes(router fiber.Router, handler *handlers.TreatmentHandler) {
	router.Post("/cost-estimate", handler.CostEstimate)
	router.Post("/", handler.Create)
	router.Get("/", handler.List)
	router.Get("/:id", handler.Get)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)

	// Admin only
	router.Patch("/:id/approve", middleware.HospitalAdminOnly(), handler.Approve)
}
