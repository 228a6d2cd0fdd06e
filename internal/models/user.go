package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model

	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	IsActive     bool   `gorm:"default:true"`

	// Mailbox settings for the IMAP/SMTP collaborators.
	IMAPServer      string `gorm:"size:255"`
	IMAPPort        int    `gorm:"default:993"`
	SMTPServer      string `gorm:"size:255"`
	SMTPPort        int    `gorm:"default:587"`
	MailboxUser     string `gorm:"size:255"`
	MailboxPassword string

	// Alert settings.
	VIPSenders        datatypes.JSON `gorm:"column:vip_senders;type:jsonb"` // array of email addresses
	EmergencyKeywords datatypes.JSON `gorm:"type:jsonb"` // array of keywords
	BriefingTime      string         `gorm:"size:10;default:08:00"`

	// Delivery endpoints for the push/SMS gateways. Empty disables the channel
	// for this user without touching per-alert flags.
	PushEndpoint string `gorm:"size:500"`
	SMSNumber    string `gorm:"size:50"`

	// Relationships
	Emails         []Email         `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	CalendarEvents []CalendarEvent `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Alerts         []Alert         `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
