package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/secretary-dev/secretary/db"
	"github.com/secretary-dev/secretary/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettingsTestRouter(t *testing.T) (*gin.Engine, *models.User) {
	t.Helper()

	r := newAlertsTestRouter(t, 1)

	group := r.Group("/api/settings", fakeAuth(1))
	group.GET("", GetSettings)
	group.PUT("", UpdateSettings)

	user := &models.User{
		Name:         "Owner",
		Email:        "owner@example.com",
		PasswordHash: "x",
		BriefingTime: "08:00",
	}
	require.NoError(t, db.DB.Create(user).Error)
	require.Equal(t, uint(1), user.ID)

	return r, user
}

func putSettings(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestGetSettingsEndpoint(t *testing.T) {
	r, _ := newSettingsTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/settings")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Settings SettingsResponse `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "08:00", body.Settings.BriefingTime)
	assert.Empty(t, body.Settings.VIPSenders)
}

func TestUpdateSettingsEndpoint(t *testing.T) {
	r, user := newSettingsTestRouter(t)

	w := putSettings(r, `{
		"vip_senders": ["boss@corp.com"],
		"emergency_keywords": ["urgent", "server down"],
		"briefing_time": "07:30",
		"sms_number": "+15550100"
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Settings SettingsResponse `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"boss@corp.com"}, body.Settings.VIPSenders)
	assert.Equal(t, "07:30", body.Settings.BriefingTime)
	assert.Equal(t, "+15550100", body.Settings.SMSNumber)

	var got models.User
	require.NoError(t, db.DB.First(&got, user.ID).Error)
	assert.Equal(t, "07:30", got.BriefingTime)
	assert.JSONEq(t, `["urgent","server down"]`, string(got.EmergencyKeywords))
}

func TestUpdateSettingsPartial(t *testing.T) {
	r, user := newSettingsTestRouter(t)

	require.NoError(t, db.DB.Model(user).Update("mailbox_user", "owner@example.com").Error)

	w := putSettings(r, `{"briefing_time": "09:15"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.User
	require.NoError(t, db.DB.First(&got, user.ID).Error)
	assert.Equal(t, "09:15", got.BriefingTime)
	// Untouched fields survive a partial update.
	assert.Equal(t, "owner@example.com", got.MailboxUser)
}

func TestUpdateSettingsValidation(t *testing.T) {
	r, _ := newSettingsTestRouter(t)

	w := putSettings(r, `{"briefing_time": "25:99"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = putSettings(r, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = putSettings(r, `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
