package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"clinic-management-server/internal/config"
	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:               "development",
		JWTSecret:                 "test_secret",
		JWTRefreshSecret:          "test_refresh_secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 1,
		AverageConsultMinutes:     15,
	}
}

// setupTestDB opens a fresh in-memory database per test. The database name is
// unique so parallel tests never share state.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

// setupRouter wires the handlers behind the same middleware chain the real
// server uses.
func setupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	authHandler := NewAuthHandler(db, cfg)
	userHandler := NewUserHandler(db)
	appointmentHandler := NewAppointmentHandler(db, zap.NewNop())
	queueHandler := NewQueueHandler(db, cfg, zap.NewNop())
	medicalRecordHandler := NewMedicalRecordHandler(db)
	labReportHandler := NewLabReportHandler(db)

	public := router.Group("/api/v1")
	{
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/refresh-token", authHandler.RefreshToken)
	}

	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		private.GET("/auth/profile", authHandler.GetProfile)

		approved := private.Group("")
		approved.Use(middleware.ApprovalMiddleware(db))

		users := approved.Group("/users")
		{
			users.GET("/doctors", userHandler.GetDoctors)
			admin := users.Group("", middleware.RoleAuthMiddleware(models.RoleAdmin))
			admin.GET("/approvals", userHandler.GetPendingApprovals)
			admin.PATCH("/:id/approval", userHandler.DecideApproval)
		}

		appointments := approved.Group("/appointments")
		{
			appointments.POST("", middleware.RoleAuthMiddleware(models.RolePatient, models.RoleReceptionist, models.RoleAdmin), appointmentHandler.CreateAppointment)
			appointments.GET("", appointmentHandler.GetAppointmentsForUser)
			appointments.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointments.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
			appointments.PATCH("/:id/reschedule", appointmentHandler.RescheduleAppointment)
		}

		queue := approved.Group("/queue", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleReceptionist, models.RoleAdmin))
		{
			queue.POST("/check-in", middleware.RoleAuthMiddleware(models.RoleReceptionist, models.RoleAdmin), queueHandler.CheckIn)
			queue.GET("", queueHandler.GetDoctorQueue)
			queue.POST("/call-next", queueHandler.CallNextPatient)
			queue.PATCH("/:id/complete", queueHandler.CompleteQueueEntry)
			queue.PATCH("/:id/cancel", queueHandler.CancelQueueEntry)
			queue.PATCH("/:id/priority", queueHandler.UpdatePriority)
		}

		records := approved.Group("/medical-records")
		{
			records.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor), medicalRecordHandler.CreateMedicalRecord)
			records.GET("/patient/:patientId", medicalRecordHandler.GetMedicalRecordsForPatient)
			records.GET("/:id", medicalRecordHandler.GetMedicalRecordByID)
			records.PUT("/:id", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), medicalRecordHandler.UpdateMedicalRecord)
			records.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), medicalRecordHandler.DeleteMedicalRecord)
		}

		labs := approved.Group("/lab-reports")
		{
			labs.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor), labReportHandler.CreateLabReport)
			labs.GET("", labReportHandler.GetLabReports)
			labs.PATCH("/:id/complete", middleware.RoleAuthMiddleware(models.RoleLabTechnician), labReportHandler.CompleteLabReport)
			labs.PATCH("/:id/cancel", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), labReportHandler.CancelLabReport)
		}
	}

	return router
}

func createTestUser(t *testing.T, db *gorm.DB, role models.Role, email string) models.User {
	t.Helper()
	user := models.User{
		FirstName:      "Test",
		LastName:       string(role),
		Email:          email,
		Role:           role,
		ApprovalStatus: models.ApprovalApproved,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(&user).Error)
	return user
}

func accessTokenFor(t *testing.T, cfg *config.Config, user *models.User) string {
	t.Helper()
	access, _, err := utils.GenerateTokens(user, cfg)
	require.NoError(t, err)
	return access
}

func performRequest(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) utils.ResponseData {
	t.Helper()
	var resp utils.ResponseData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeDataInto(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	resp := decodeResponse(t, rec)
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}
