package handlers

import (
	"fmt"
	"time"

	"clinic-management-server/internal/config"
	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueueHandler handles the same-day patient queue for doctors.
type QueueHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Logger *zap.Logger
}

// NewQueueHandler creates a new QueueHandler.
func NewQueueHandler(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *QueueHandler {
	return &QueueHandler{DB: db, Cfg: cfg, Logger: logger}
}

// CheckInRequest represents the request body for checking a patient into a
// doctor's queue.
type CheckInRequest struct {
	PatientID     string `json:"patientId" binding:"required,uuid"`
	DoctorID      string `json:"doctorId" binding:"required,uuid"`
	AppointmentID string `json:"appointmentId" binding:"omitempty,uuid"`
	Priority      string `json:"priority" binding:"omitempty,oneof=low normal high"`
}

// DoctorQueueResponse represents a doctor's queue view.
type DoctorQueueResponse struct {
	NextPatient *models.QueueEntry  `json:"nextPatient"`
	QueueItems  []models.QueueEntry `json:"queueItems"`
}

// CheckIn appends a patient to a doctor's same-day queue. The queue number is
// allocated inside a transaction from the highest number already assigned
// today; on MySQL the scan takes row locks (SELECT ... FOR UPDATE) so two
// concurrent check-ins cannot share a number. The locking clause is skipped on
// sqlite, which serializes writers itself and rejects FOR UPDATE.
func (h *QueueHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var doctor models.User
	if err := h.DB.Where("id = ? AND role = ?", req.DoctorID, models.RoleDoctor).First(&doctor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found or user is not a doctor")
		} else {
			utils.InternalServerError(c, "Database error verifying doctor: "+err.Error())
		}
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

	priority := models.QueuePriority(req.Priority)
	if req.Priority == "" {
		priority = models.PriorityNormal
	}

	var appointmentID *string
	var appointment models.Appointment
	if req.AppointmentID != "" {
		if err := h.DB.First(&appointment, "id = ?", req.AppointmentID).Error; err != nil {
			utils.NotFound(c, "Appointment not found")
			return
		}
		if appointment.PatientID != req.PatientID || appointment.DoctorID != req.DoctorID {
			utils.BadRequest(c, "Appointment does not belong to this patient and doctor")
			return
		}
		if appointment.Status.IsTerminal() {
			utils.Conflict(c, fmt.Sprintf("Cannot check in an appointment that is already %s", appointment.Status))
			return
		}
		appointmentID = &req.AppointmentID
	}

	now := time.Now()
	dayStart, dayEnd := dayBounds(now)

	var entry models.QueueEntry
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var maxNumber int
		maxQuery := tx.Model(&models.QueueEntry{}).
			Where("doctor_id = ? AND check_in_time >= ? AND check_in_time < ?", req.DoctorID, dayStart, dayEnd)
		if tx.Dialector.Name() == "mysql" {
			maxQuery = maxQuery.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := maxQuery.
			Select("COALESCE(MAX(queue_number), 0)").
			Scan(&maxNumber).Error; err != nil {
			return err
		}

		var waitingAhead int64
		if err := tx.Model(&models.QueueEntry{}).
			Where("doctor_id = ? AND status = ? AND check_in_time >= ? AND check_in_time < ?",
				req.DoctorID, models.QueueWaiting, dayStart, dayEnd).
			Count(&waitingAhead).Error; err != nil {
			return err
		}

		entry = models.QueueEntry{
			DoctorID:             req.DoctorID,
			PatientID:            req.PatientID,
			AppointmentID:        appointmentID,
			QueueNumber:          maxNumber + 1,
			Status:               models.QueueWaiting,
			Priority:             priority,
			CheckInTime:          now,
			EstimatedWaitMinutes: int(waitingAhead) * h.Cfg.AverageConsultMinutes,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		if appointmentID != nil {
			appointment.QueueNumber = &entry.QueueNumber
			if models.CanTransition(appointment.Status, models.StatusConfirmed) {
				appointment.Status = models.StatusConfirmed
			}
			if err := tx.Save(&appointment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to check in patient: "+err.Error())
		return
	}

	h.Logger.Info("patient checked in",
		zap.String("doctorID", entry.DoctorID),
		zap.String("patientID", entry.PatientID),
		zap.Int("queueNumber", entry.QueueNumber))

	utils.Created(c, "Patient checked in successfully", entry)
}

// GetDoctorQueue returns the doctor's same-day queue ordered in call order,
// together with the entry that is (or would be) up next.
func (h *QueueHandler) GetDoctorQueue(c *gin.Context) {
	doctorID, ok := h.resolveDoctorID(c)
	if !ok {
		return
	}

	entries, err := h.todayEntries(h.DB, doctorID)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch queue: "+err.Error())
		return
	}

	models.SortQueue(entries)

	var next *models.QueueEntry
	for i := range entries {
		if entries[i].Status == models.QueueInProgress {
			next = &entries[i]
			break
		}
	}
	if next == nil {
		next = models.NextWaiting(entries)
	}

	utils.Success(c, "Queue fetched successfully", DoctorQueueResponse{
		NextPatient: next,
		QueueItems:  entries,
	})
}

// CallNextPatient promotes the next waiting entry for a doctor. Any entry
// still in progress is demoted back to waiting first, so at most one entry per
// doctor is in progress afterwards. An empty queue is a defined empty result,
// not an error.
func (h *QueueHandler) CallNextPatient(c *gin.Context) {
	doctorID, ok := h.resolveDoctorID(c)
	if !ok {
		return
	}

	var promoted *models.QueueEntry
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		entries, err := h.todayEntries(tx, doctorID)
		if err != nil {
			return err
		}

		next := models.NextWaiting(entries)

		for i := range entries {
			if entries[i].Status == models.QueueInProgress {
				entries[i].Status = models.QueueWaiting
				if err := tx.Save(&entries[i]).Error; err != nil {
					return err
				}
			}
		}

		if next == nil {
			return nil
		}

		next.Status = models.QueueInProgress
		if err := tx.Save(next).Error; err != nil {
			return err
		}
		promoted = next
		return nil
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to call next patient: "+err.Error())
		return
	}

	if promoted == nil {
		utils.Success(c, "Queue is empty", nil)
		return
	}

	h.Logger.Info("next patient called",
		zap.String("doctorID", doctorID),
		zap.String("patientID", promoted.PatientID),
		zap.Int("queueNumber", promoted.QueueNumber))

	utils.Success(c, "Next patient called", promoted)
}

// UpdateQueueStatusRequest represents the request body for completing or
// cancelling a queue entry.
type UpdateQueueStatusRequest struct {
	Notes string `json:"notes"`
}

// CompleteQueueEntry marks a queue entry completed and mirrors the completion
// onto the linked appointment.
func (h *QueueHandler) CompleteQueueEntry(c *gin.Context) {
	h.finishQueueEntry(c, models.QueueCompleted, models.StatusCompleted, "Queue entry completed")
}

// CancelQueueEntry marks a queue entry cancelled and mirrors the cancellation
// onto the linked appointment.
func (h *QueueHandler) CancelQueueEntry(c *gin.Context) {
	h.finishQueueEntry(c, models.QueueCancelled, models.StatusCancelled, "Queue entry cancelled")
}

func (h *QueueHandler) finishQueueEntry(c *gin.Context, to models.QueueStatus, mirror models.AppointmentStatus, message string) {
	entryID := c.Param("id")
	if _, err := uuid.Parse(entryID); err != nil {
		utils.BadRequest(c, "Invalid queue entry ID format")
		return
	}

	var entry models.QueueEntry
	if err := h.DB.First(&entry, "id = ?", entryID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Queue entry not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !h.mayManageQueue(c, entry.DoctorID) {
		return
	}

	if !models.CanTransitionQueue(entry.Status, to) {
		utils.Conflict(c, fmt.Sprintf("Invalid status transition: queue entry is already %s and cannot become %s",
			entry.Status, to))
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		entry.Status = to
		if err := tx.Save(&entry).Error; err != nil {
			return err
		}

		if entry.AppointmentID == nil {
			return nil
		}
		var appointment models.Appointment
		if err := tx.First(&appointment, "id = ?", *entry.AppointmentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		if models.CanTransition(appointment.Status, mirror) {
			appointment.Status = mirror
			if err := tx.Save(&appointment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to update queue entry: "+err.Error())
		return
	}

	utils.Success(c, message, entry)
}

// UpdatePriorityRequest represents the request body for changing an entry's
// priority band.
type UpdatePriorityRequest struct {
	Priority string `json:"priority" binding:"required,oneof=low normal high"`
}

// UpdatePriority changes the priority band of a waiting queue entry.
func (h *QueueHandler) UpdatePriority(c *gin.Context) {
	entryID := c.Param("id")
	if _, err := uuid.Parse(entryID); err != nil {
		utils.BadRequest(c, "Invalid queue entry ID format")
		return
	}

	var req UpdatePriorityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var entry models.QueueEntry
	if err := h.DB.First(&entry, "id = ?", entryID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Queue entry not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !h.mayManageQueue(c, entry.DoctorID) {
		return
	}

	if entry.Status != models.QueueWaiting {
		utils.Conflict(c, fmt.Sprintf("Only waiting entries can change priority; entry is %s", entry.Status))
		return
	}

	entry.Priority = models.QueuePriority(req.Priority)
	if err := h.DB.Save(&entry).Error; err != nil {
		utils.InternalServerError(c, "Failed to update priority: "+err.Error())
		return
	}

	utils.Success(c, "Priority updated successfully", entry)
}

// resolveDoctorID determines which doctor's queue the caller may act on.
// Doctors always act on their own queue; receptionists and admins name the
// doctor with the doctorId parameter.
func (h *QueueHandler) resolveDoctorID(c *gin.Context) (string, bool) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	if role == models.RoleDoctor {
		return userID, true
	}

	doctorID := c.Param("doctorId")
	if doctorID == "" {
		doctorID = c.Query("doctorId")
	}
	if doctorID == "" {
		utils.BadRequest(c, "doctorId is required")
		return "", false
	}
	if _, err := uuid.Parse(doctorID); err != nil {
		utils.BadRequest(c, "Invalid doctor ID format")
		return "", false
	}
	return doctorID, true
}

// mayManageQueue checks that the caller is the owning doctor, a receptionist
// or an admin. Writes the error response itself when access is denied.
func (h *QueueHandler) mayManageQueue(c *gin.Context, doctorID string) bool {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	switch role {
	case models.RoleAdmin, models.RoleReceptionist:
		return true
	case models.RoleDoctor:
		if userID == doctorID {
			return true
		}
	}
	utils.Forbidden(c, "You are not authorized to manage this doctor's queue.")
	return false
}

func (h *QueueHandler) todayEntries(db *gorm.DB, doctorID string) ([]models.QueueEntry, error) {
	dayStart, dayEnd := dayBounds(time.Now())
	var entries []models.QueueEntry
	err := db.Where("doctor_id = ? AND check_in_time >= ? AND check_in_time < ?", doctorID, dayStart, dayEnd).
		Find(&entries).Error
	return entries, err
}

func dayBounds(t time.Time) (time.Time, time.Time) {
	year, month, day := t.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
