package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/secretary-dev/secretary/db"
	"github.com/secretary-dev/secretary/internal/alerts"
	"github.com/secretary-dev/secretary/internal/middleware"
	"github.com/secretary-dev/secretary/internal/models"
	"github.com/secretary-dev/secretary/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeAuth injects an authenticated user the way AuthMiddleware would after
// verifying a token.
func fakeAuth(userID uint) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(types.ContextUserKey, middleware.AuthenticatedUser{
			ID:    userID,
			Name:  "Owner",
			Email: "owner@example.com",
		})
		ctx.Next()
	}
}

func newAlertsTestRouter(t *testing.T, userID uint) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(
		&models.User{},
		&models.Email{},
		&models.CalendarEvent{},
		&models.Alert{},
	))

	previous := db.DB
	db.DB = gdb
	t.Cleanup(func() { db.DB = previous })

	r := gin.New()

	group := r.Group("/api/alerts", fakeAuth(userID))
	group.GET("", GetAlerts)
	group.GET("/unread", GetUnreadAlerts)
	group.GET("/stats/summary", GetAlertStats)
	group.PUT("/mark-all-read", MarkAllAlertsRead)
	group.GET("/:alert_id", GetAlert)
	group.PUT("/:alert_id/read", MarkAlertRead)
	group.PUT("/:alert_id/dismiss", DismissAlert)

	return r
}

func createAlert(t *testing.T, userID uint, mutate func(*models.Alert)) *models.Alert {
	t.Helper()

	alert := &models.Alert{
		UserID:   userID,
		Title:    "Test Alert",
		Message:  "Something happened",
		Type:     models.AlertTypeSystem,
		Priority: models.PriorityNormal,
		Status:   models.StatusPending,
	}

	if mutate != nil {
		mutate(alert)
	}

	require.NoError(t, db.DB.Create(alert).Error)
	return alert
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func doRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGetAlertsEndpoint(t *testing.T) {
	r := newAlertsTestRouter(t, 1)

	createAlert(t, 1, func(a *models.Alert) { a.Type = models.AlertTypeEmailVIP })
	createAlert(t, 1, nil)
	createAlert(t, 2, nil)

	w := doRequest(r, http.MethodGet, "/api/alerts")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Alerts []AlertResponse `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Alerts, 2)

	w = doRequest(r, http.MethodGet, "/api/alerts?alert_type=email_vip")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Alerts, 1)
	assert.Equal(t, "email_vip", body.Alerts[0].Type)
}

func TestGetAlertsRejectsUnknownFilterValues(t *testing.T) {
	r := newAlertsTestRouter(t, 1)

	w := doRequest(r, http.MethodGet, "/api/alerts?alert_type=bogus")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodGet, "/api/alerts?status=bogus")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodGet, "/api/alerts?priority=bogus")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAlertsFiltersByPriority(t *testing.T) {
	r := newAlertsTestRouter(t, 1)

	createAlert(t, 1, func(a *models.Alert) {
		a.Priority = models.PriorityUrgent
	})
	createAlert(t, 1, nil)

	w := doRequest(r, http.MethodGet, "/api/alerts?priority=urgent")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Alerts []AlertResponse `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Alerts, 1)
	assert.Equal(t, "urgent", body.Alerts[0].Priority)
}

func TestGetAlertEndpoint(t *testing.T) {
	r := newAlertsTestRouter(t, 1)
	alert := createAlert(t, 1, nil)

	w := doRequest(r, http.MethodGet, "/api/alerts/"+itoa(alert.ID))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Alert AlertResponse `json:"alert"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, alert.ID, body.Alert.ID)

	w = doRequest(r, http.MethodGet, "/api/alerts/99999")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodGet, "/api/alerts/not-a-number")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAlertHidesOtherUsers(t *testing.T) {
	r := newAlertsTestRouter(t, 1)
	other := createAlert(t, 2, nil)

	w := doRequest(r, http.MethodGet, "/api/alerts/"+itoa(other.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkAlertReadEndpoint(t *testing.T) {
	r := newAlertsTestRouter(t, 1)
	alert := createAlert(t, 1, nil)

	w := doRequest(r, http.MethodPut, "/api/alerts/"+itoa(alert.ID)+"/read")
	require.Equal(t, http.StatusOK, w.Code)

	store := alerts.NewStore(db.DB)
	got, err := store.GetByID(1, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRead, got.Status)

	// Reading a terminal alert conflicts.
	w = doRequest(r, http.MethodPut, "/api/alerts/"+itoa(alert.ID)+"/read")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDismissAlertEndpoint(t *testing.T) {
	r := newAlertsTestRouter(t, 1)
	alert := createAlert(t, 1, nil)

	w := doRequest(r, http.MethodPut, "/api/alerts/"+itoa(alert.ID)+"/dismiss")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodPut, "/api/alerts/"+itoa(alert.ID)+"/dismiss")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(r, http.MethodPut, "/api/alerts/99999/dismiss")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkAllAlertsReadEndpoint(t *testing.T) {
	r := newAlertsTestRouter(t, 1)

	createAlert(t, 1, nil)
	createAlert(t, 1, nil)
	dismissed := createAlert(t, 1, nil)
	store := alerts.NewStore(db.DB)
	require.NoError(t, store.Dismiss(1, dismissed.ID, time.Now().UTC()))

	w := doRequest(r, http.MethodPut, "/api/alerts/mark-all-read")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		MarkedRead int64 `json:"marked_read"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.MarkedRead)
}

func TestGetUnreadAlertsEndpoint(t *testing.T) {
	r := newAlertsTestRouter(t, 1)

	createAlert(t, 1, nil)
	read := createAlert(t, 1, nil)
	store := alerts.NewStore(db.DB)
	require.NoError(t, store.MarkRead(1, read.ID, time.Now().UTC()))

	w := doRequest(r, http.MethodGet, "/api/alerts/unread")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Alerts []AlertResponse `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Alerts, 1)
}

func TestGetAlertStatsEndpoint(t *testing.T) {
	r := newAlertsTestRouter(t, 1)

	createAlert(t, 1, func(a *models.Alert) {
		a.Type = models.AlertTypeEmailEmergency
		a.Priority = models.PriorityUrgent
	})
	createAlert(t, 1, func(a *models.Alert) {
		a.Type = models.AlertTypeMeetingReminder
	})

	w := doRequest(r, http.MethodGet, "/api/alerts/stats/summary")
	require.Equal(t, http.StatusOK, w.Code)

	var stats alerts.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(2), stats.Unread)
	assert.Equal(t, int64(1), stats.Urgent)
	assert.Equal(t, int64(1), stats.Meeting)
}
