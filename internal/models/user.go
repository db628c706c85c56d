package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleDoctor        Role = "doctor"
	RoleReceptionist  Role = "receptionist"
	RoleLabTechnician Role = "lab_technician"
	RolePatient       Role = "patient"
)

// ApprovalStatus represents the administrative sign-off state of an account.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// roleDashboardRoutes maps each role to the default dashboard route the client
// should land on. Unknown roles fall back to the root route.
var roleDashboardRoutes = map[Role]string{
	RolePatient:       "/PatientDashboard",
	RoleDoctor:        "/DoctorDashboard",
	RoleReceptionist:  "/ReceptionistDashboard",
	RoleLabTechnician: "/LabDashboard",
	RoleAdmin:         "/AdminDashboard",
}

// DefaultDashboardRoute returns the default dashboard route for a role.
func DefaultDashboardRoute(role Role) string {
	if route, ok := roleDashboardRoutes[role]; ok {
		return route
	}
	return "/"
}

// ValidRole reports whether role is one of the five known account roles.
func ValidRole(role Role) bool {
	_, ok := roleDashboardRoutes[role]
	return ok
}

// RequiresApproval reports whether accounts with this role need administrative
// approval before first use. Patients are implicitly approved.
func RequiresApproval(role Role) bool {
	return role != RolePatient
}

// InitialApprovalStatus returns the approval status a freshly registered
// account starts in.
func InitialApprovalStatus(role Role) ApprovalStatus {
	if RequiresApproval(role) {
		return ApprovalPending
	}
	return ApprovalApproved
}

// User represents a user in the system
type User struct {
	BaseModel
	Email          string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password       string         `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName      string         `gorm:"size:100" json:"firstName"`
	LastName       string         `gorm:"size:100" json:"lastName"`
	Role           Role           `gorm:"size:20;default:'patient'" json:"role"`
	ApprovalStatus ApprovalStatus `gorm:"size:20;default:'pending'" json:"approvalStatus"`
	Specialization string         `gorm:"size:100" json:"specialization,omitempty"`
	DateOfBirth    *time.Time     `json:"dateOfBirth,omitempty"`
	PhoneNumber    string         `json:"phoneNumber,omitempty"`
	Address        string         `json:"address,omitempty"`
	ProfileImage   string         `json:"profileImage,omitempty"`

	// Relations (not always preloaded)
	RefreshTokens       []RefreshToken  `gorm:"foreignKey:UserID" json:"-"`
	DoctorAppointments  []Appointment   `gorm:"foreignKey:DoctorID" json:"-"`
	PatientAppointments []Appointment   `gorm:"foreignKey:PatientID" json:"-"`
	MedicalRecords      []MedicalRecord `gorm:"foreignKey:PatientID" json:"-"`
	LabReports          []LabReport     `gorm:"foreignKey:PatientID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	Role           Role           `json:"role"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus"`
	DefaultRoute   string         `json:"defaultRoute"`
	Specialization string         `json:"specialization,omitempty"`
	DateOfBirth    *time.Time     `json:"dateOfBirth,omitempty"`
	PhoneNumber    string         `json:"phoneNumber,omitempty"`
	Address        string         `json:"address,omitempty"`
	ProfileImage   string         `json:"profileImage,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           u.Role,
		ApprovalStatus: u.ApprovalStatus,
		DefaultRoute:   DefaultDashboardRoute(u.Role),
		Specialization: u.Specialization,
		DateOfBirth:    u.DateOfBirth,
		PhoneNumber:    u.PhoneNumber,
		Address:        u.Address,
		ProfileImage:   u.ProfileImage,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
