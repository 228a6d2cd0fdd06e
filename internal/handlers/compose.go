package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/secretary-dev/secretary/db"
	"github.com/secretary-dev/secretary/internal/ai"
	"github.com/secretary-dev/secretary/internal/mail"
	"github.com/secretary-dev/secretary/internal/models"
	"github.com/secretary-dev/secretary/internal/utils"
	"gorm.io/gorm"
)

// ReplyDrafter is the slice of the AI collaborator the compose endpoints use.
type ReplyDrafter interface {
	DraftReply(subject, body, tone string) (string, error)
}

// OutboundMailer sends a message to an arbitrary recipient through the
// user's own SMTP server.
type OutboundMailer interface {
	Send(user *models.User, to, subject, text, html string) error
}

// Wired at startup. A nil collaborator means the capability is unavailable
// and the endpoint answers 503.
var (
	Drafter ReplyDrafter
	Mailer  OutboundMailer
	Fetcher mail.Fetcher
)

type ReplyDraftRequest struct {
	Tone string `json:"tone"`
}

type SendEmailRequest struct {
	ToEmail  string `json:"to_email" binding:"required,email"`
	Subject  string `json:"subject" binding:"required"`
	Body     string `json:"body" binding:"required"`
	BodyHTML string `json:"body_html"`
}

// DraftEmailReply asks the AI collaborator for a suggested reply to one of
// the user's emails and stores it on the email record.
func DraftEmailReply(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if Drafter == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Reply drafting is not available"})
		return
	}

	emailID, err := utils.GetEmailID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The request body is optional; an absent tone falls back to the default.
	var req ReplyDraftRequest

	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Tone == "" {
		req.Tone = ai.DefaultReplyTone
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

	draft, err := Drafter.DraftReply(email.Subject, email.Body, req.Tone)

	if err != nil {
		log.Printf("Failed to draft reply for email %d: %v", email.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate reply draft"})
		return
	}

	if err := db.DB.Model(&email).Update("suggested_reply", draft).Error; err != nil {
		log.Printf("Failed to store reply draft for email %d: %v", email.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"reply_draft": draft})
}

// SendEmail sends a message through the user's configured SMTP server.
func SendEmail(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if Mailer == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Outbound email is not available"})
		return
	}

	var req SendEmailRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		log.Printf("Failed to fetch user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if user.SMTPServer == "" || user.MailboxUser == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Mailbox is not configured. Set your SMTP server in settings first."})
		return
	}

	if err := Mailer.Send(&user, req.ToEmail, req.Subject, req.Body, req.BodyHTML); err != nil {
		log.Printf("Failed to send email for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Email sent successfully"})
}

// SyncEmails triggers an immediate mailbox fetch instead of waiting for the
// scheduled check.
func SyncEmails(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if Fetcher == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Mailbox sync is not available"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		log.Printf("Failed to fetch user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if user.IMAPServer == "" || user.MailboxUser == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Mailbox is not configured. Set your IMAP server in settings first."})
		return
	}

	emails, err := Fetcher.FetchNew(&user)

	if err != nil {
		log.Printf("Failed to sync mailbox for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync mailbox"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Mailbox synced",
		"fetched": len(emails),
	})
}
