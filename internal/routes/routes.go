package routes

import (
	"clinic-management-server/internal/config"
	"clinic-management-server/internal/handlers"
	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, logger *zap.Logger) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db, logger)
	queueHandler := handlers.NewQueueHandler(db, cfg, logger)
	medicalRecordHandler := handlers.NewMedicalRecordHandler(db)
	labReportHandler := handlers.NewLabReportHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg)) // Apply JWT authentication middleware
	{
		// Auth related routes that must work for pending accounts too, so the
		// client can show the holding page and let the user sign out.
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// Everything below requires an approved account.
		approved := private.Group("")
		approved.Use(middleware.ApprovalMiddleware(db))

		// User management routes
		userRoutes := approved.Group("/users")
		{
			// Accessible by all authenticated, approved users (booking flow)
			userRoutes.GET("/doctors", userHandler.GetDoctors)

			// Accessible by doctors, receptionists and admins
			userRoutes.GET("/patients", userHandler.GetPatients)

			// Admin-only routes
			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/approvals", userHandler.GetPendingApprovals)
				adminRoutes.PATCH("/:id/approval", userHandler.DecideApproval)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeleteUser)
			}
		}

		// Appointment routes
		appointmentRoutes := approved.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient, models.RoleReceptionist, models.RoleAdmin), appointmentHandler.CreateAppointment)

			// All authenticated users can get their own appointments
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser) // Logic inside handler differentiates by role

			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID) // Authorization inside handler

			// Status updates (doctor, receptionist, admin; patient for cancellation)
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus) // Authorization inside handler

			appointmentRoutes.PATCH("/:id/reschedule", appointmentHandler.RescheduleAppointment) // Authorization inside handler
		}

		// Queue routes
		queueRoutes := approved.Group("/queue")
		{
			queueRoutes.POST("/check-in", middleware.RoleAuthMiddleware(models.RoleReceptionist, models.RoleAdmin), queueHandler.CheckIn)

			// Doctors read their own queue; receptionists and admins pass ?doctorId=
			queueRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleReceptionist, models.RoleAdmin), queueHandler.GetDoctorQueue)
			queueRoutes.POST("/call-next", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleReceptionist, models.RoleAdmin), queueHandler.CallNextPatient)

			queueRoutes.PATCH("/:id/complete", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleReceptionist, models.RoleAdmin), queueHandler.CompleteQueueEntry)
			queueRoutes.PATCH("/:id/cancel", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleReceptionist, models.RoleAdmin), queueHandler.CancelQueueEntry)
			queueRoutes.PATCH("/:id/priority", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleReceptionist, models.RoleAdmin), queueHandler.UpdatePriority)
		}

		// Medical Record routes
		medicalRecordRoutes := approved.Group("/medical-records")
		{
			medicalRecordRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor), medicalRecordHandler.CreateMedicalRecord)
			medicalRecordRoutes.GET("/patient/:patientId", medicalRecordHandler.GetMedicalRecordsForPatient) // Auth in handler
			medicalRecordRoutes.GET("/:id", medicalRecordHandler.GetMedicalRecordByID)                       // Auth in handler
			medicalRecordRoutes.PUT("/:id", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), medicalRecordHandler.UpdateMedicalRecord)
			medicalRecordRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), medicalRecordHandler.DeleteMedicalRecord)
		}

		// Lab report routes
		labRoutes := approved.Group("/lab-reports")
		{
			labRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor), labReportHandler.CreateLabReport)
			labRoutes.GET("", labReportHandler.GetLabReports) // Logic inside handler differentiates by role
			labRoutes.PATCH("/:id/complete", middleware.RoleAuthMiddleware(models.RoleLabTechnician), labReportHandler.CompleteLabReport)
			labRoutes.PATCH("/:id/cancel", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), labReportHandler.CancelLabReport)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
