package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/secretary-dev/secretary/db"
	"github.com/secretary-dev/secretary/internal/models"
	"github.com/secretary-dev/secretary/internal/utils"
)

type CalendarEventResponse struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Location      string    `json:"location"`
	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   time.Time `json:"end_datetime"`
	IsAllDay      bool      `json:"is_all_day"`
	MeetingLink   string    `json:"meeting_link,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	Status        string    `json:"status"`
}

func GetUpcomingEvents(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	hoursAhead, err := strconv.Atoi(ctx.DefaultQuery("hours", "24"))

	if err != nil || hoursAhead <= 0 {
		hoursAhead = 24
	}

	now := time.Now().UTC()

	var events []models.CalendarEvent

	err = db.DB.Where("user_id = ? AND start_datetime >= ? AND start_datetime <= ?",
		userID, now, now.Add(time.Duration(hoursAhead)*time.Hour)).
		Order("start_datetime").
		Find(&events).Error

	if err != nil {
		log.Printf("Failed to list upcoming events for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	responses := make([]CalendarEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, CalendarEventResponse{
			ID:            event.ID,
			Title:         event.Title,
			Location:      event.Location,
			StartDatetime: event.StartDatetime,
			EndDatetime:   event.EndDatetime,
			IsAllDay:      event.IsAllDay,
			MeetingLink:   event.MeetingLink,
			Summary:       event.Summary,
			Status:        event.Status,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"events": responses})
}
