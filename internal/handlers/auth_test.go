package handlers

import (
	"net/http"
	"testing"

	"clinic-management-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterPatientIsApprovedImmediately(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, testConfig())

	rec := performRequest(router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"firstName": "Pat",
		"lastName":  "Ient",
		"email":     "pat@clinic.test",
		"password":  "password123",
		"role":      "patient",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user models.UserSanitized
	decodeDataInto(t, rec, &user)
	assert.Equal(t, models.ApprovalApproved, user.ApprovalStatus)
	assert.Equal(t, "/PatientDashboard", user.DefaultRoute)
}

func TestRegisterStaffStartsPending(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, testConfig())

	rec := performRequest(router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"firstName": "Doc",
		"lastName":  "Tor",
		"email":     "doc@clinic.test",
		"password":  "password123",
		"role":      "doctor",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "pending approval")

	var user models.UserSanitized
	decodeDataInto(t, rec, &user)
	assert.Equal(t, models.ApprovalPending, user.ApprovalStatus)
}

func TestRegisterRejectsAdminSelfSignup(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, testConfig())

	rec := performRequest(router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"firstName": "Evil",
		"lastName":  "Admin",
		"email":     "admin@clinic.test",
		"password":  "password123",
		"role":      "admin",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, testConfig())
	createTestUser(t, db, models.RolePatient, "pat@clinic.test")

	rec := performRequest(router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"firstName": "Pat",
		"lastName":  "Ient",
		"email":     "pat@clinic.test",
		"password":  "password123",
		"role":      "patient",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestLoginReturnsTokensAndDefaultRoute(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, testConfig())
	createTestUser(t, db, models.RoleDoctor, "doc@clinic.test")

	rec := performRequest(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "doc@clinic.test",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LoginResponse
	decodeDataInto(t, rec, &resp)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "/DoctorDashboard", resp.User.DefaultRoute)
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, testConfig())
	createTestUser(t, db, models.RolePatient, "pat@clinic.test")

	rec := performRequest(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "pat@clinic.test",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectedAccountRefused(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, testConfig())

	user := createTestUser(t, db, models.RoleDoctor, "rejected@clinic.test")
	user.ApprovalStatus = models.ApprovalRejected
	require.NoError(t, db.Save(&user).Error)

	rec := performRequest(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "rejected@clinic.test",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "rejected")
}

func TestPendingAccountCanLoginButNotUseDashboard(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	router := setupRouter(db, cfg)

	user := createTestUser(t, db, models.RoleDoctor, "pending@clinic.test")
	user.ApprovalStatus = models.ApprovalPending
	require.NoError(t, db.Save(&user).Error)

	rec := performRequest(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "pending@clinic.test",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	decodeDataInto(t, rec, &resp)

	// the profile still works so the client can show the holding page
	rec = performRequest(router, http.MethodGet, "/api/v1/auth/profile", resp.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// but approval-gated routes stay closed
	rec = performRequest(router, http.MethodGet, "/api/v1/appointments", resp.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRefreshTokenRotation(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, testConfig())
	createTestUser(t, db, models.RolePatient, "pat@clinic.test")

	rec := performRequest(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "pat@clinic.test",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var login LoginResponse
	decodeDataInto(t, rec, &login)

	rec = performRequest(router, http.MethodPost, "/api/v1/auth/refresh-token", "", gin.H{
		"refreshToken": login.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var refreshed RefreshTokenResponse
	decodeDataInto(t, rec, &refreshed)
	assert.NotEmpty(t, refreshed.AccessToken)

	// the old refresh token is revoked by rotation
	rec = performRequest(router, http.MethodPost, "/api/v1/auth/refresh-token", "", gin.H{
		"refreshToken": login.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApprovalFlow(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	router := setupRouter(db, cfg)

	admin := createTestUser(t, db, models.RoleAdmin, "admin@clinic.test")
	adminToken := accessTokenFor(t, cfg, &admin)

	staff := createTestUser(t, db, models.RoleReceptionist, "staff@clinic.test")
	staff.ApprovalStatus = models.ApprovalPending
	require.NoError(t, db.Save(&staff).Error)

	// pending account shows up in the approvals list
	rec := performRequest(router, http.MethodGet, "/api/v1/users/approvals", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []models.UserSanitized
	decodeDataInto(t, rec, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, staff.ID, pending[0].ID)

	// approve it
	rec = performRequest(router, http.MethodPatch, "/api/v1/users/"+staff.ID+"/approval", adminToken, gin.H{
		"decision": "approved",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// a second decision on the same account conflicts
	rec = performRequest(router, http.MethodPatch, "/api/v1/users/"+staff.ID+"/approval", adminToken, gin.H{
		"decision": "rejected",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestApprovalEndpointAdminOnly(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	router := setupRouter(db, cfg)

	doctor := createTestUser(t, db, models.RoleDoctor, "doc@clinic.test")
	doctorToken := accessTokenFor(t, cfg, &doctor)

	rec := performRequest(router, http.MethodGet, "/api/v1/users/approvals", doctorToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
