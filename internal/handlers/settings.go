package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/secretary-dev/secretary/db"
	"github.com/secretary-dev/secretary/internal/models"
	"github.com/secretary-dev/secretary/internal/utils"
)

type SettingsResponse struct {
	IMAPServer        string   `json:"imap_server"`
	IMAPPort          int      `json:"imap_port"`
	SMTPServer        string   `json:"smtp_server"`
	SMTPPort          int      `json:"smtp_port"`
	MailboxUser       string   `json:"mailbox_user"`
	VIPSenders        []string `json:"vip_senders"`
	EmergencyKeywords []string `json:"emergency_keywords"`
	BriefingTime      string   `json:"briefing_time"`
	PushEndpoint      string   `json:"push_endpoint"`
	SMSNumber         string   `json:"sms_number"`
}

// UpdateSettingsRequest carries a partial update; nil fields are untouched.
// The mailbox password is accepted here but never echoed back.
type UpdateSettingsRequest struct {
	IMAPServer        *string   `json:"imap_server"`
	IMAPPort          *int      `json:"imap_port"`
	SMTPServer        *string   `json:"smtp_server"`
	SMTPPort          *int      `json:"smtp_port"`
	MailboxUser       *string   `json:"mailbox_user"`
	MailboxPassword   *string   `json:"mailbox_password"`
	VIPSenders        *[]string `json:"vip_senders"`
	EmergencyKeywords *[]string `json:"emergency_keywords"`
	BriefingTime      *string   `json:"briefing_time"`
	PushEndpoint      *string   `json:"push_endpoint"`
	SMSNumber         *string   `json:"sms_number"`
}

func toSettingsResponse(user *models.User) SettingsResponse {
	resp := SettingsResponse{
		IMAPServer:        user.IMAPServer,
		IMAPPort:          user.IMAPPort,
		SMTPServer:        user.SMTPServer,
		SMTPPort:          user.SMTPPort,
		MailboxUser:       user.MailboxUser,
		BriefingTime:      user.BriefingTime,
		PushEndpoint:      user.PushEndpoint,
		SMSNumber:         user.SMSNumber,
		VIPSenders:        []string{},
		EmergencyKeywords: []string{},
	}

	if len(user.VIPSenders) > 0 {
		_ = json.Unmarshal(user.VIPSenders, &resp.VIPSenders)
	}

	if len(user.EmergencyKeywords) > 0 {
		_ = json.Unmarshal(user.EmergencyKeywords, &resp.EmergencyKeywords)
	}

	return resp
}

func GetSettings(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		log.Printf("Failed to fetch user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"settings": toSettingsResponse(&user)})
}

func UpdateSettings(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdateSettingsRequest

	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updates := make(map[string]interface{})

	if req.IMAPServer != nil {
		updates["imap_server"] = *req.IMAPServer
	}
	if req.IMAPPort != nil {
		updates["imap_port"] = *req.IMAPPort
	}
	if req.SMTPServer != nil {
		updates["smtp_server"] = *req.SMTPServer
	}
	if req.SMTPPort != nil {
		updates["smtp_port"] = *req.SMTPPort
	}
	if req.MailboxUser != nil {
		updates["mailbox_user"] = *req.MailboxUser
	}
	if req.MailboxPassword != nil {
		updates["mailbox_password"] = *req.MailboxPassword
	}
	if req.PushEndpoint != nil {
		updates["push_endpoint"] = *req.PushEndpoint
	}
	if req.SMSNumber != nil {
		updates["sms_number"] = *req.SMSNumber
	}

	if req.BriefingTime != nil {
		if _, err := time.Parse("15:04", *req.BriefingTime); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Briefing time must be in HH:MM format"})
			return
		}
		updates["briefing_time"] = *req.BriefingTime
	}

	if req.VIPSenders != nil {
		encoded, err := json.Marshal(*req.VIPSenders)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid VIP senders list"})
			return
		}
		updates["vip_senders"] = encoded
	}

	if req.EmergencyKeywords != nil {
		encoded, err := json.Marshal(*req.EmergencyKeywords)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid emergency keywords list"})
			return
		}
		updates["emergency_keywords"] = encoded
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	if err := db.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		log.Printf("Failed to update settings for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		log.Printf("Failed to refresh user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":  "Settings updated successfully",
		"settings": toSettingsResponse(&user),
	})
}
