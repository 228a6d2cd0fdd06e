package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/secretary-dev/secretary/db"
	"github.com/secretary-dev/secretary/internal/alerts"
	"github.com/secretary-dev/secretary/internal/models"
	"github.com/secretary-dev/secretary/internal/utils"
)

type AlertResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	Type        string     `json:"alert_type"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Metadata    any        `json:"metadata,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	DismissedAt *time.Time `json:"dismissed_at,omitempty"`
}

func toAlertResponse(alert models.Alert) AlertResponse {
	resp := AlertResponse{
		ID:          alert.ID,
		Title:       alert.Title,
		Message:     alert.Message,
		Type:        string(alert.Type),
		Priority:    string(alert.Priority),
		Status:      string(alert.Status),
		CreatedAt:   alert.CreatedAt,
		SentAt:      alert.SentAt,
		ReadAt:      alert.ReadAt,
		DismissedAt: alert.DismissedAt,
	}

	if len(alert.Metadata) > 0 {
		resp.Metadata = alert.Metadata
	}

	return resp
}

func GetAlerts(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var filter alerts.ListFilter

	if typeStr := ctx.Query("alert_type"); typeStr != "" {
		alertType, err := models.ParseAlertType(typeStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert type"})
			return
		}
		filter.Type = &alertType
	}

	if priorityStr := ctx.Query("priority"); priorityStr != "" {
		priority, err := models.ParseAlertPriority(priorityStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
		filter.Priority = &priority
	}

	if statusStr := ctx.Query("status"); statusStr != "" {
		status, err := models.ParseAlertStatus(statusStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		filter.Status = &status
	}

	filter.Limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	if filter.Offset < 0 {
		filter.Offset = 0
	}

	store := alerts.NewStore(db.DB)

	results, err := store.List(userID, filter)

	if err != nil {
		log.Printf("Failed to list alerts for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	responses := make([]AlertResponse, 0, len(results))
	for _, alert := range results {
		responses = append(responses, toAlertResponse(alert))
	}

	ctx.JSON(http.StatusOK, gin.H{"alerts": responses})
}

func GetUnreadAlerts(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	store := alerts.NewStore(db.DB)

	results, err := store.Unread(userID)

	if err != nil {
		log.Printf("Failed to list unread alerts for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	responses := make([]AlertResponse, 0, len(results))
	for _, alert := range results {
		responses = append(responses, toAlertResponse(alert))
	}

	ctx.JSON(http.StatusOK, gin.H{"alerts": responses})
}

func GetAlert(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	alertID, err := utils.GetAlertID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := alerts.NewStore(db.DB)

	alert, err := store.GetByID(userID, uint(alertID))

	if err != nil {
		if errors.Is(err, alerts.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		log.Printf("Failed to fetch alert %d: %v", alertID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"alert": toAlertResponse(*alert)})
}

func MarkAlertRead(ctx *gin.Context) {
	transitionAlert(ctx, "Alert marked as read", func(store *alerts.Store, userID, alertID uint) error {
		return store.MarkRead(userID, alertID, time.Now().UTC())
	})
}

func DismissAlert(ctx *gin.Context) {
	transitionAlert(ctx, "Alert dismissed", func(store *alerts.Store, userID, alertID uint) error {
		return store.Dismiss(userID, alertID, time.Now().UTC())
	})
}

func transitionAlert(ctx *gin.Context, successMessage string, transition func(store *alerts.Store, userID, alertID uint) error) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	alertID, err := utils.GetAlertID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := alerts.NewStore(db.DB)

	err = transition(store, userID, uint(alertID))

	if err != nil {
		switch {
		case errors.Is(err, alerts.ErrNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
		case errors.Is(err, alerts.ErrInvalidTransition):
			ctx.JSON(http.StatusConflict, gin.H{"error": "Alert is already in a terminal state"})
		default:
			log.Printf("Failed to transition alert %d: %v", alertID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": successMessage})
}

func MarkAllAlertsRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	store := alerts.NewStore(db.DB)

	count, err := store.MarkAllRead(userID, time.Now().UTC())

	if err != nil {
		log.Printf("Failed to mark all alerts read for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"marked_read": count})
}

func GetAlertStats(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	store := alerts.NewStore(db.DB)

	stats, err := store.Stats(userID)

	if err != nil {
		log.Printf("Failed to compute alert stats for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
