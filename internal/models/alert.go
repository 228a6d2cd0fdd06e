package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AlertType string

const (
	AlertTypeEmailVIP        AlertType = "email_vip"
	AlertTypeEmailEmergency  AlertType = "email_emergency"
	AlertTypeMeetingReminder AlertType = "meeting_reminder"
	AlertTypeMorningBriefing AlertType = "morning_briefing"
	AlertTypeSystem          AlertType = "system"
)

// ParseAlertType rejects unknown values at the deserialization boundary.
func ParseAlertType(s string) (AlertType, error) {
	switch t := AlertType(s); t {
	case AlertTypeEmailVIP, AlertTypeEmailEmergency, AlertTypeMeetingReminder,
		AlertTypeMorningBriefing, AlertTypeSystem:
		return t, nil
	}
	return "", fmt.Errorf("unknown alert type %q", s)
}

type AlertPriority string

const (
	PriorityLow    AlertPriority = "low"
	PriorityNormal AlertPriority = "normal"
	PriorityHigh   AlertPriority = "high"
	PriorityUrgent AlertPriority = "urgent"
)

func ParseAlertPriority(s string) (AlertPriority, error) {
	switch p := AlertPriority(s); p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return p, nil
	}
	return "", fmt.Errorf("unknown alert priority %q", s)
}

// Rank orders priorities for sorting and filtering: low < normal < high < urgent.
func (p AlertPriority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityNormal:
		return 1
	case PriorityHigh:
		return 2
	case PriorityUrgent:
		return 3
	}
	return -1
}

type AlertStatus string

const (
	StatusPending   AlertStatus = "pending"
	StatusSent      AlertStatus = "sent"
	StatusRead      AlertStatus = "read"
	StatusDismissed AlertStatus = "dismissed"
)

func ParseAlertStatus(s string) (AlertStatus, error) {
	switch st := AlertStatus(s); st {
	case StatusPending, StatusSent, StatusRead, StatusDismissed:
		return st, nil
	}
	return "", fmt.Errorf("unknown alert status %q", s)
}

// Terminal reports whether no transition may leave the status.
func (s AlertStatus) Terminal() bool {
	return s == StatusRead || s == StatusDismissed
}

type Alert struct {
	gorm.Model

	UserID uint `gorm:"not null;index"`

	Title    string        `gorm:"not null"`
	Message  string        `gorm:"not null"`
	Type     AlertType     `gorm:"not null;index"`
	Priority AlertPriority `gorm:"not null;default:normal"`
	Status   AlertStatus   `gorm:"not null;default:pending;index"`

	// At most one of the two is set; both unset for briefing/system alerts.
	EmailID         *uint `gorm:"index"`
	CalendarEventID *uint `gorm:"index"`

	// Delivery channels, chosen at creation time from type and priority.
	SendEmail bool `gorm:"default:false"`
	SendPush  bool `gorm:"default:true"`
	SendSMS   bool `gorm:"default:false"`

	Metadata datatypes.JSON `gorm:"type:jsonb"`

	ScheduledFor *time.Time
	SentAt       *time.Time
	ReadAt       *time.Time
	DismissedAt  *time.Time

	// Relationships
	User          User           `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Email         *Email         `gorm:"foreignKey:EmailID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	CalendarEvent *CalendarEvent `gorm:"foreignKey:CalendarEventID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
