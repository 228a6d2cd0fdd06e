package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/secretary-dev/secretary/db"
	"github.com/secretary-dev/secretary/internal/models"
	"github.com/secretary-dev/secretary/internal/utils"
	"gorm.io/gorm"
)

type EmailResponse struct {
	ID          uint      `json:"id"`
	SenderEmail string    `json:"sender_email"`
	SenderName  string    `json:"sender_name"`
	Subject     string    `json:"subject"`
	Summary     string    `json:"summary"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	IsEmergency bool      `json:"is_emergency"`
	IsFromVIP   bool      `json:"is_from_vip"`
	ReceivedAt  time.Time `json:"received_at"`
}

func toEmailResponse(email models.Email) EmailResponse {
	return EmailResponse{
		ID:          email.ID,
		SenderEmail: email.SenderEmail,
		SenderName:  email.SenderName,
		Subject:     email.Subject,
		Summary:     email.Summary,
		Status:      string(email.Status),
		Priority:    string(email.Priority),
		IsEmergency: email.IsEmergency,
		IsFromVIP:   email.IsFromVIP,
		ReceivedAt:  email.ReceivedAt,
	}
}

func GetEmails(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	query := db.DB.Where("user_id = ?", userID)

	if statusStr := ctx.Query("status"); statusStr != "" {
		status, err := models.ParseEmailStatus(statusStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		query = query.Where("status = ?", status)
	}

	var emails []models.Email

	if err := query.Order("received_at DESC").Limit(50).Find(&emails).Error; err != nil {
		log.Printf("Failed to list emails for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	responses := make([]EmailResponse, 0, len(emails))
	for _, email := range emails {
		responses = append(responses, toEmailResponse(email))
	}

	ctx.JSON(http.StatusOK, gin.H{"emails": responses})
}

func GetEmail(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	emailID, err := utils.GetEmailID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var email models.Email

	err = db.DB.Where("id = ? AND user_id = ?", emailID, userID).First(&email).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
			return
		}
		log.Printf("Failed to fetch email %d: %v", emailID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"email": gin.H{
			"id":              email.ID,
			"sender_email":    email.SenderEmail,
			"sender_name":     email.SenderName,
			"subject":         email.Subject,
			"body":            email.Body,
			"summary":         email.Summary,
			"sentiment":       email.Sentiment,
			"suggested_reply": email.SuggestedReply,
			"status":          email.Status,
			"priority":        email.Priority,
			"is_emergency":    email.IsEmergency,
			"is_from_vip":     email.IsFromVIP,
			"received_at":     email.ReceivedAt,
		},
	})
}

func MarkEmailRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	emailID, err := utils.GetEmailID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := db.DB.Model(&models.Email{}).
		Where("id = ? AND user_id = ?", emailID, userID).
		Update("status", models.EmailStatusRead)

	if result.Error != nil {
		log.Printf("Failed to mark email %d read: %v", emailID, result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Email marked as read"})
}
