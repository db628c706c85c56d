package handlers

import (
	"fmt"
	"time"

	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LabReportHandler handles lab report related requests.
type LabReportHandler struct {
	DB *gorm.DB
}

// NewLabReportHandler creates a new LabReportHandler.
func NewLabReportHandler(db *gorm.DB) *LabReportHandler {
	return &LabReportHandler{DB: db}
}

// CreateLabReportRequest represents the request body for ordering a lab test.
type CreateLabReportRequest struct {
	PatientID string `json:"patientId" binding:"required,uuid"`
	TestType  string `json:"testType" binding:"required"`
	Notes     string `json:"notes"`
}

// CreateLabReport handles ordering a lab test for a patient.
// Only accessible by doctors.
func (h *LabReportHandler) CreateLabReport(c *gin.Context) {
	var req CreateLabReportRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Doctor ID not found in token")
		return
	}

	var patient models.User
	if err := h.DB.Where("id = ? AND role = ?", req.PatientID, models.RolePatient).First(&patient).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error verifying patient: "+err.Error())
		}
		return
	}

	report := models.LabReport{
		PatientID: req.PatientID,
		DoctorID:  doctorID,
		TestType:  req.TestType,
		Notes:     req.Notes,
		Status:    models.LabReportPending,
	}

	if err := h.DB.Create(&report).Error; err != nil {
		utils.InternalServerError(c, "Failed to create lab report: "+err.Error())
		return
	}

	utils.Created(c, "Lab report created successfully", report)
}

// GetLabReports handles fetching lab reports visible to the logged-in user.
// Lab technicians see all pending work, doctors see reports they ordered,
// patients see their own.
func (h *LabReportHandler) GetLabReports(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	query := h.DB.Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var reports []models.LabReport
	var err error

	switch userRole {
	case models.RoleLabTechnician, models.RoleAdmin:
		err = query.Find(&reports).Error
	case models.RoleDoctor:
		err = query.Where("doctor_id = ?", userID).Find(&reports).Error
	case models.RolePatient:
		err = query.Where("patient_id = ?", userID).Find(&reports).Error
	default:
		utils.Forbidden(c, "User role not permitted to view lab reports")
		return
	}

	if err != nil {
		utils.InternalServerError(c, "Failed to fetch lab reports: "+err.Error())
		return
	}

	utils.Success(c, "Lab reports fetched successfully", reports)
}

// CompleteLabReportRequest represents the request body for completing a lab
// report with results.
type CompleteLabReportRequest struct {
	Results string `json:"results" binding:"required"`
	Notes   string `json:"notes"`
}

// CompleteLabReport handles a lab technician submitting results for a pending
// report. Completing an already-completed or cancelled report is rejected.
func (h *LabReportHandler) CompleteLabReport(c *gin.Context) {
	reportID := c.Param("id")
	if _, err := uuid.Parse(reportID); err != nil {
		utils.BadRequest(c, "Invalid lab report ID format")
		return
	}

	var req CompleteLabReportRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	technicianID, _ := middleware.GetUserIDFromContext(c)

	var report models.LabReport
	if err := h.DB.First(&report, "id = ?", reportID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Lab report not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !models.CanTransitionLabReport(report.Status, models.LabReportCompleted) {
		utils.Conflict(c, fmt.Sprintf("Invalid status transition: lab report is already %s", report.Status))
		return
	}

	now := time.Now()
	report.Status = models.LabReportCompleted
	report.TechnicianID = technicianID
	report.Results = req.Results
	report.CompletedAt = &now
	if req.Notes != "" {
		report.Notes = req.Notes
	}

	if err := h.DB.Save(&report).Error; err != nil {
		utils.InternalServerError(c, "Failed to complete lab report: "+err.Error())
		return
	}

	utils.Success(c, "Lab report completed successfully", report)
}

// CancelLabReport handles cancelling a pending lab report.
// Accessible by the ordering doctor or an admin.
func (h *LabReportHandler) CancelLabReport(c *gin.Context) {
	reportID := c.Param("id")
	if _, err := uuid.Parse(reportID); err != nil {
		utils.BadRequest(c, "Invalid lab report ID format")
		return
	}

	var report models.LabReport
	if err := h.DB.First(&report, "id = ?", reportID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Lab report not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	isAdmin := userRole == models.RoleAdmin
	isOrderingDoctor := userRole == models.RoleDoctor && userID == report.DoctorID
	if !isAdmin && !isOrderingDoctor {
		utils.Forbidden(c, "You are not authorized to cancel this lab report")
		return
	}

	if !models.CanTransitionLabReport(report.Status, models.LabReportCancelled) {
		utils.Conflict(c, fmt.Sprintf("Invalid status transition: lab report is already %s", report.Status))
		return
	}

	report.Status = models.LabReportCancelled
	if err := h.DB.Save(&report).Error; err != nil {
		utils.InternalServerError(c, "Failed to cancel lab report: "+err.Error())
		return
	}

	utils.Success(c, "Lab report cancelled successfully", report)
}
