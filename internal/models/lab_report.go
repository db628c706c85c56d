package models

import (
	"time"
)

// LabReportStatus represents the processing status of a lab report.
type LabReportStatus string

const (
	LabReportPending   LabReportStatus = "pending"
	LabReportCompleted LabReportStatus = "completed"
	LabReportCancelled LabReportStatus = "cancelled"
)

// labReportTransitions lists the statuses reachable from each report status.
var labReportTransitions = map[LabReportStatus][]LabReportStatus{
	LabReportPending:   {LabReportCompleted, LabReportCancelled},
	LabReportCompleted: {},
	LabReportCancelled: {},
}

// CanTransitionLabReport reports whether a lab report may move from one status
// to another.
func CanTransitionLabReport(from, to LabReportStatus) bool {
	for _, allowed := range labReportTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// LabReport represents a lab test ordered for a patient and processed by a
// lab technician.
type LabReport struct {
	BaseModel
	PatientID    string          `gorm:"size:36;index" json:"patientId"`
	DoctorID     string          `gorm:"size:36;index" json:"doctorId"`
	TechnicianID string          `gorm:"size:36;index" json:"technicianId,omitempty"`
	TestType     string          `gorm:"size:100;not null" json:"testType"`
	Status       LabReportStatus `gorm:"size:20;default:'pending'" json:"status"`
	Results      string          `gorm:"type:text" json:"results"`
	Notes        string          `gorm:"type:text" json:"notes"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`

	// Relations
	Patient    User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor     User `gorm:"foreignKey:DoctorID" json:"-"`
	Technician User `gorm:"foreignKey:TechnicianID" json:"-"`
}
