package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/field-service/internal/audit"
	"github.com/BruksfildServices01/field-service/internal/config"
	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/handlers"
	infraRepo "github.com/BruksfildServices01/field-service/internal/infra/repository"
	"github.com/BruksfildServices01/field-service/internal/middleware"
	"github.com/BruksfildServices01/field-service/internal/models"
	"github.com/BruksfildServices01/field-service/internal/realtime"
	"github.com/BruksfildServices01/field-service/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/field-service/internal/usecase/appointment"
)

// Deps are the process-wide singletons built in main.
type Deps struct {
	DB         *gorm.DB
	Config     *config.Config
	Log        logrus.FieldLogger
	Channel    *realtime.Channel
	Audit      *audit.Dispatcher
	Reconciler *ucAppointment.Reconciler
	Staging    domain.StagingBuffer
	Storage    domain.EvidenceStorage
	Clock      timezone.Clock
	Health     map[string]handlers.Pinger
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware(d.Config))
	r.Use(middleware.RequestLogger(d.Log))

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(d.DB)
	assignmentRepo := infraRepo.NewAssignmentGormRepository(d.DB)
	evidenceRepo := infraRepo.NewEvidenceGormRepository(d.DB)
	feedbackRepo := infraRepo.NewFeedbackGormRepository(d.DB)
	directoryRepo := infraRepo.NewDirectoryGormRepository(d.DB)

	hub := realtime.NewHub(d.Channel, d.Log, d.Config.OriginAllowed)

	// ======================================================
	// 🧠 USE CASES (ADMIN)
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(
		appointmentRepo,
		assignmentRepo,
		directoryRepo,
		d.Channel,
		d.Audit,
	)

	assignWorkersUC := ucAppointment.NewAssignWorkers(
		appointmentRepo,
		assignmentRepo,
		directoryRepo,
		d.Reconciler,
		d.Audit,
		d.Clock,
	)

	overrideStatusUC := ucAppointment.NewOverrideStatus(
		appointmentRepo,
		d.Channel,
		d.Audit,
	)

	getViewUC := ucAppointment.NewGetAppointmentView(
		appointmentRepo,
		assignmentRepo,
		evidenceRepo,
		feedbackRepo,
		feedbackRepo,
		directoryRepo,
		d.Staging,
	)

	listAppointmentsByDateUC := ucAppointment.NewListAppointmentsByDate(
		appointmentRepo,
		assignmentRepo,
	)

	listAppointmentsByMonthUC := ucAppointment.NewListAppointmentsByMonth(
		appointmentRepo,
		assignmentRepo,
	)

	// ======================================================
	// 🧠 USE CASES (PUBLIC LINK)
	// ======================================================
	gate := ucAppointment.NewCompletionGate(appointmentRepo, assignmentRepo)

	startWorkUC := ucAppointment.NewStartWork(
		appointmentRepo,
		assignmentRepo,
		d.Reconciler,
		d.Audit,
		d.Clock,
	)

	stagePhotoUC := ucAppointment.NewStagePhoto(
		appointmentRepo,
		assignmentRepo,
		d.Staging,
		d.Storage,
	)

	unstagePhotoUC := ucAppointment.NewUnstagePhoto(appointmentRepo, d.Staging)
	listStagedUC := ucAppointment.NewListStagedPhotos(appointmentRepo, d.Staging)

	submitWorkUC := ucAppointment.NewSubmitWork(
		appointmentRepo,
		assignmentRepo,
		evidenceRepo,
		feedbackRepo,
		d.Staging,
		gate,
		d.Reconciler,
		d.Audit,
		d.Clock,
		d.Log,
	)

	saveNoteUC := ucAppointment.NewSaveNote(
		appointmentRepo,
		assignmentRepo,
		feedbackRepo,
		d.Channel,
	)

	submitRatingUC := ucAppointment.NewSubmitRating(
		appointmentRepo,
		feedbackRepo,
		d.Channel,
		d.Audit,
	)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(d.DB, d.Config)

	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		assignWorkersUC,
		overrideStatusUC,
		getViewUC,
		listAppointmentsByDateUC,
		listAppointmentsByMonthUC,
		hub,
		d.Clock,
	)

	publicHandler := handlers.NewPublicHandler(
		getViewUC,
		startWorkUC,
		stagePhotoUC,
		unstagePhotoUC,
		listStagedUC,
		submitWorkUC,
		saveNoteUC,
		submitRatingUC,
		hub,
	)

	auditLogsHandler := handlers.NewAuditLogsHandler(d.DB)
	healthHandler := handlers.NewHealthHandler(d.DB, d.Health)

	// ======================================================
	// ❤️ HEALTH
	// ======================================================
	r.GET("/health", healthHandler.Check)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA (link do agendamento)
		// ------------------------------
		publicAPI := api.Group("/public/appointments/:publicId")
		{
			publicAPI.GET("", publicHandler.Get)
			publicAPI.GET("/ws", publicHandler.Watch)
			publicAPI.POST("/rating", publicHandler.Rate)

			worker := publicAPI.Group("/workers/:workerId")
			{
				worker.POST("/start", publicHandler.Start)
				worker.POST("/photos", publicHandler.StagePhoto)
				worker.GET("/photos", publicHandler.ListStaged)
				worker.DELETE("/photos/:index", publicHandler.UnstagePhoto)
				worker.POST("/submit", publicHandler.Submit)
				worker.PUT("/note", publicHandler.SaveNote)
			}
		}

		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(d.Config))
		{
			secured.GET("/me", authHandler.Me)

			// ------------------------------
			// APPOINTMENTS (admin)
			// ------------------------------
			admin := secured.Group("/appointments")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.POST("", appointmentHandler.Create)
				admin.GET("", appointmentHandler.ListByDate)
				admin.GET("/month", appointmentHandler.ListByMonth)
				admin.GET("/:id", appointmentHandler.Get)
				admin.GET("/:id/ws", appointmentHandler.Watch)
				admin.PUT("/:id/workers", appointmentHandler.AssignWorkers)
				admin.PATCH("/:id/status", appointmentHandler.UpdateStatus)
				admin.GET("/:id/audit-logs", auditLogsHandler.List)
			}
		}
	}
}
