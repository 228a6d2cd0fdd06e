package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type EmailStatus string

const (
	EmailStatusUnread    EmailStatus = "unread"
	EmailStatusRead      EmailStatus = "read"
	EmailStatusArchived  EmailStatus = "archived"
	EmailStatusImportant EmailStatus = "important"
	EmailStatusEmergency EmailStatus = "emergency"
)

func ParseEmailStatus(s string) (EmailStatus, error) {
	switch st := EmailStatus(s); st {
	case EmailStatusUnread, EmailStatusRead, EmailStatusArchived,
		EmailStatusImportant, EmailStatusEmergency:
		return st, nil
	}
	return "", fmt.Errorf("unknown email status %q", s)
}

type Email struct {
	gorm.Model

	UserID uint `gorm:"not null;index"`

	MessageID      string `gorm:"uniqueIndex;size:255"`
	SenderEmail    string `gorm:"not null;index;size:255"`
	SenderName     string `gorm:"size:255"`
	RecipientEmail string `gorm:"not null;size:255"`
	Subject        string `gorm:"not null"`
	Body           string
	BodyHTML       string

	Status      EmailStatus   `gorm:"not null;default:unread"`
	Priority    AlertPriority `gorm:"not null;default:normal"`
	IsEmergency bool          `gorm:"default:false"`
	IsFromVIP   bool          `gorm:"default:false"`

	// Populated by upstream annotation before the core sees the email.
	Summary   string
	Sentiment string `gorm:"size:50"`

	// Last AI-drafted reply, kept so the client can re-show it without a
	// fresh completion.
	SuggestedReply string

	ReceivedAt  time.Time `gorm:"not null"`
	ProcessedAt *time.Time

	// Relationships
	User   User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Alerts []Alert `gorm:"foreignKey:EmailID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
