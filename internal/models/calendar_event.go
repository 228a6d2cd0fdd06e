package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CalendarEvent struct {
	gorm.Model

	UserID uint `gorm:"not null;index"`

	RemoteEventID string `gorm:"uniqueIndex;size:255"`
	CalendarID    string `gorm:"not null;size:255"`

	Title       string `gorm:"not null;size:500"`
	Description string
	Location    string `gorm:"size:500"`

	StartDatetime time.Time `gorm:"not null"`
	EndDatetime   time.Time `gorm:"not null"`
	IsAllDay      bool      `gorm:"default:false"`
	Timezone      string    `gorm:"size:50;default:UTC"`

	OrganizerEmail string         `gorm:"size:255"`
	Attendees      datatypes.JSON `gorm:"type:jsonb"`

	MeetingLink     string `gorm:"size:500"`
	MeetingPlatform string `gorm:"size:50"`

	Summary          string
	PreparationNotes string

	ReminderSent          bool `gorm:"default:false"`
	ReminderMinutesBefore int  `gorm:"default:15"`

	Status string `gorm:"size:20;default:confirmed"` // confirmed, tentative, cancelled

	// Relationships
	User   User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Alerts []Alert `gorm:"foreignKey:CalendarEventID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
