package handlers

import (
	"fmt"
	"time"

	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Logger: logger}
}

// CreateAppointmentRequest represents the request body for creating an appointment.
type CreateAppointmentRequest struct {
	DoctorID        string    `json:"doctorId" binding:"required,uuid"`
	PatientID       string    `json:"patientId" binding:"required,uuid"`
	AppointmentDate time.Time `json:"appointmentDate" binding:"required"`
	StartTime       time.Time `json:"startTime" binding:"required"`
	EndTime         time.Time `json:"endTime" binding:"required"`
	Reason          string    `json:"reason" binding:"required"`
	Notes           string    `json:"notes"`
	IsOnline        bool      `json:"isOnline"`
	ZoomMeetingURL  string    `json:"zoomMeetingUrl"`
}

// CreateAppointment handles creating a new appointment.
// Initiated by a patient booking for themselves, or by a receptionist/admin
// booking on a patient's behalf.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	requestingRole, _ := middleware.GetUserRoleFromContext(c)
	if requestingRole == models.RolePatient && userID != req.PatientID {
		utils.Forbidden(c, "Patients can only book appointments for themselves.")
		return
	}

	// Verify doctor exists and is an approved doctor
	var doctor models.User
	if err := h.DB.Where("id = ? AND role = ?", req.DoctorID, models.RoleDoctor).First(&doctor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found or user is not a doctor")
		} else {
			utils.InternalServerError(c, "Database error verifying doctor: "+err.Error())
		}
		return
	}
	// Verify patient exists
	var patient models.User
	if err := h.DB.Where("id = ? AND role = ?", req.PatientID, models.RolePatient).First(&patient).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error verifying patient: "+err.Error())
		}
		return
	}

	if !req.StartTime.Before(req.EndTime) {
		utils.BadRequest(c, "Appointment start time must be before end time.")
		return
	}
	sy, sm, sd := req.StartTime.Date()
	dy, dm, dd := req.AppointmentDate.Date()
	if sy != dy || sm != dm || sd != dd {
		utils.BadRequest(c, "Start time must fall on the appointment date.")
		return
	}
	if req.StartTime.Before(time.Now()) {
		utils.BadRequest(c, "Appointment date must be in the future.")
		return
	}

	appointment := models.Appointment{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: req.AppointmentDate,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Reason:          req.Reason,
		Notes:           req.Notes,
		IsOnline:        req.IsOnline,
		ZoomMeetingURL:  req.ZoomMeetingURL,
		Status:          models.StatusPending,
	}

	if err := h.DB.Create(&appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to create appointment: "+err.Error())
		return
	}

	h.Logger.Info("appointment created",
		zap.String("appointmentID", appointment.ID),
		zap.String("doctorID", appointment.DoctorID),
		zap.String("patientID", appointment.PatientID))

	utils.Created(c, "Appointment created successfully", appointment)
}

// GetAppointmentsForUser handles fetching appointments for the logged-in user.
// Patients see their own, doctors see theirs, receptionists and admins see all.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	userRole, _ := middleware.GetUserRoleFromContext(c)

	var appointments []models.Appointment
	var err error

	query := h.DB.Preload("Patient").Preload("Doctor").Order("start_time asc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	switch userRole {
	case models.RolePatient:
		err = query.Where("patient_id = ?", userID).Find(&appointments).Error
	case models.RoleDoctor:
		err = query.Where("doctor_id = ?", userID).Find(&appointments).Error
	case models.RoleReceptionist, models.RoleAdmin:
		err = query.Find(&appointments).Error
	default:
		utils.Forbidden(c, "User role not permitted to view appointments this way.")
		return
	}

	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID handles fetching a single appointment by its ID.
// Accessible by the involved patient or doctor, receptionists and admins.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointmentID := c.Param("id")
	if _, err := uuid.Parse(appointmentID); err != nil {
		utils.BadRequest(c, "Invalid Appointment ID format")
		return
	}

	var appointment models.Appointment
	if err := h.DB.Preload("Patient").Preload("Doctor").First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	if !canAccessAppointment(userID, userRole, &appointment) {
		utils.Forbidden(c, "You are not authorized to view this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", appointment)
}

// UpdateAppointmentStatusRequest represents the request body for updating an appointment's status.
type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=pending confirmed completed cancelled no_show"`
	Notes  string                   `json:"notes"` // Optional notes for status change (e.g., cancellation reason)
}

// UpdateAppointmentStatus handles updating the status of an appointment.
// The transition table is enforced here: an illegal move is answered with a
// 409 so the client can surface it instead of retrying.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	appointmentID := c.Param("id")
	if _, err := uuid.Parse(appointmentID); err != nil {
		utils.BadRequest(c, "Invalid Appointment ID format")
		return
	}

	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	// Authorization:
	// - Patients may only cancel their own appointments
	// - Doctors may update status on their own appointments
	// - Receptionists and admins may update any appointment
	canUpdate := false
	switch userRole {
	case models.RoleAdmin, models.RoleReceptionist:
		canUpdate = true
	case models.RoleDoctor:
		canUpdate = userID == appointment.DoctorID
	case models.RolePatient:
		if userID != appointment.PatientID {
			break
		}
		if req.Status != models.StatusCancelled {
			utils.Forbidden(c, "Patients can only cancel appointments.")
			return
		}
		canUpdate = true
	}

	if !canUpdate {
		utils.Forbidden(c, "You are not authorized to update this appointment's status.")
		return
	}

	if !models.CanTransition(appointment.Status, req.Status) {
		utils.Conflict(c, fmt.Sprintf("Invalid status transition: appointment is already %s and cannot become %s",
			appointment.Status, req.Status))
		return
	}

	previous := appointment.Status
	appointment.Status = req.Status
	if req.Notes != "" {
		appointment.Notes = req.Notes
	}

	if err := h.DB.Save(&appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to update appointment status: "+err.Error())
		return
	}

	h.Logger.Info("appointment status updated",
		zap.String("appointmentID", appointment.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(appointment.Status)))

	utils.Success(c, "Appointment status updated successfully", appointment)
}

// RescheduleAppointmentRequest represents the request body for rescheduling an appointment.
type RescheduleAppointmentRequest struct {
	AppointmentDate time.Time `json:"appointmentDate" binding:"required"`
	StartTime       time.Time `json:"startTime" binding:"required"`
	EndTime         time.Time `json:"endTime" binding:"required"`
	Notes           string    `json:"notes"` // Optional notes for rescheduling
}

// RescheduleAppointment handles rescheduling an appointment. Only active
// (pending or confirmed) appointments can move; the status resets to pending
// so the new slot is re-confirmed.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	appointmentID := c.Param("id")
	if _, err := uuid.Parse(appointmentID); err != nil {
		utils.BadRequest(c, "Invalid Appointment ID format")
		return
	}

	var req RescheduleAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if !req.StartTime.Before(req.EndTime) {
		utils.BadRequest(c, "Appointment start time must be before end time.")
		return
	}
	sy, sm, sd := req.StartTime.Date()
	dy, dm, dd := req.AppointmentDate.Date()
	if sy != dy || sm != dm || sd != dd {
		utils.BadRequest(c, "Start time must fall on the appointment date.")
		return
	}
	if req.StartTime.Before(time.Now()) {
		utils.BadRequest(c, "New appointment date must be in the future.")
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	if !canAccessAppointment(userID, userRole, &appointment) {
		utils.Forbidden(c, "You are not authorized to reschedule this appointment.")
		return
	}

	if appointment.Status.IsTerminal() {
		utils.Conflict(c, fmt.Sprintf("Cannot reschedule an appointment that is already %s", appointment.Status))
		return
	}

	appointment.AppointmentDate = req.AppointmentDate
	appointment.StartTime = req.StartTime
	appointment.EndTime = req.EndTime
	appointment.Status = models.StatusPending
	if req.Notes != "" {
		appointment.Notes = req.Notes
	}

	if err := h.DB.Save(&appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to reschedule appointment: "+err.Error())
		return
	}

	utils.Success(c, "Appointment rescheduled successfully", appointment)
}

// canAccessAppointment reports whether the user may act on the appointment:
// the involved patient or doctor, or any receptionist/admin.
func canAccessAppointment(userID string, role models.Role, appointment *models.Appointment) bool {
	switch role {
	case models.RoleAdmin, models.RoleReceptionist:
		return true
	case models.RoleDoctor:
		return userID == appointment.DoctorID
	case models.RolePatient:
		return userID == appointment.PatientID
	}
	return false
}
