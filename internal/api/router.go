package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/b2world/ems-backend/internal/api/handler"
	"github.com/b2world/ems-backend/internal/api/middleware"
	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"

	_ "github.com/b2world/ems-backend/docs"
)

// Services groups everything the HTTP layer calls into.
type Services struct {
	Auth          ports.AuthService
	Users         ports.UserService
	Attendance    ports.AttendanceService
	Payroll       ports.PayrollService
	Leave         ports.LeaveService
	Tasks         ports.TaskService
	Training      ports.TrainingService
	Offboarding   ports.OffboardingService
	Notifications ports.NotificationService
	Chatbot       ports.ChatbotService
	Analytics     ports.AnalyticsService
}

// Options configures the router.
type Options struct {
	Tokens   middleware.AccessVerifier
	Location *time.Location
	Probes   map[string]handler.Probe
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(opts.Log))
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("ems"))

	// --- Infrastructure routes ---
	e.GET("/health", handler.Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(opts.Probes).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	admin := middleware.RBAC(domain.RoleAdmin)
	managers := middleware.RBAC(domain.RoleAdmin, domain.RoleManager)

	// --- Auth (public) ---
	authH := handler.NewAuthHandler(svc.Auth)
	auth := api.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh-token", authH.Refresh)
	auth.POST("/logout", authH.Logout)

	// Everything below requires an access token.
	secured := api.Group("", middleware.Auth(opts.Tokens))

	// --- Users ---
	userH := handler.NewUserHandler(svc.Users)
	secured.GET("/employee/profile", userH.Profile)
	secured.PUT("/employee/update-details", userH.UpdateSelf)

	employees := secured.Group("/employees", admin)
	employees.POST("", userH.Create)
	employees.GET("", userH.List)
	employees.GET("/:id", userH.Get)
	employees.PUT("/:id", userH.Update)
	employees.DELETE("/:id", userH.Delete)

	// --- Manager ---
	taskH := handler.NewTaskHandler(svc.Tasks)
	manager := secured.Group("/manager", managers)
	manager.GET("/team", userH.Team)
	manager.POST("/assign-task", taskH.Assign)
	manager.GET("/tasks", taskH.Assigned)
	manager.PUT("/tasks/:id/review", taskH.Review)

	secured.GET("/tasks/mine", taskH.Mine)
	secured.POST("/tasks/:id/report", taskH.Report)

	// --- Attendance ---
	attH := handler.NewAttendanceHandler(svc.Attendance, opts.Location)
	secured.POST("/attendance/clock-in", attH.ClockIn)
	secured.POST("/attendance/clock-out", attH.ClockOut)
	secured.GET("/attendance/calendar", attH.Calendar)

	// --- Leave ---
	leaveH := handler.NewLeaveHandler(svc.Leave)
	secured.POST("/leave/apply", leaveH.Apply)
	secured.GET("/leave/mine", leaveH.Mine)
	secured.PUT("/leave/approve/:id", leaveH.Decide, managers)
	secured.GET("/leave/manager-requests", leaveH.TeamRequests, managers)

	// --- Payroll ---
	payH := handler.NewPayrollHandler(svc.Payroll)
	secured.POST("/payroll/calculate", payH.Calculate, admin)
	secured.GET("/payroll/payslip/:userId/:month/:year", payH.Payslip)
	secured.GET("/payroll/history", payH.History)
	secured.GET("/payroll/record/:id", payH.Record)

	// --- Training ---
	trainH := handler.NewTrainingHandler(svc.Training)
	secured.POST("/training/create", trainH.Create, managers)
	secured.GET("/training/my-courses", trainH.MyCourses)
	secured.POST("/training/complete/:id", trainH.Complete)

	// --- Offboarding ---
	offH := handler.NewOffboardingHandler(svc.Offboarding)
	secured.POST("/offboarding/resign", offH.Resign)
	secured.PUT("/offboarding/update-clearance/:userId", offH.UpdateClearance, managers)
	secured.GET("/offboarding/experience-letter/:userId", offH.ExperienceLetter, admin)
	secured.GET("/offboarding/relieving-letter/:userId", offH.RelievingLetter, admin)
	secured.GET("/offboarding/status/:userId", offH.Status)

	// --- Notifications ---
	notH := handler.NewNotificationHandler(svc.Notifications)
	secured.GET("/notifications", notH.All)
	secured.GET("/notifications/unread", notH.Unread)
	secured.PUT("/notifications/mark-as-read", notH.MarkRead)

	// --- Chatbot ---
	chatH := handler.NewChatbotHandler(svc.Chatbot)
	secured.POST("/chatbot/ask", chatH.Ask)
	secured.GET("/chatbot/history", chatH.History)

	// --- Analytics ---
	anaH := handler.NewAnalyticsHandler(svc.Analytics, opts.Location)
	secured.GET("/analytics/dashboard", anaH.Dashboard, admin)

	return e
}
