package calendar

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/secretary-dev/secretary/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Source fetches events from the user's remote calendar provider. The OAuth
// dance and wire format live behind this boundary.
type Source interface {
	FetchEvents(user *models.User, horizon time.Duration) ([]RemoteEvent, error)
}

type RemoteEvent struct {
	ID              string
	CalendarID      string
	Title           string
	Description     string
	Location        string
	Start           time.Time
	End             time.Time
	IsAllDay        bool
	OrganizerEmail  string
	Attendees       []Attendee
	MeetingLink     string
	MeetingPlatform string
}

type Attendee struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Summarizer is the slice of the AI collaborator used to annotate events.
type Summarizer interface {
	Summarize(subject, body string) string
}

// Service keeps the local calendar mirror and answers the reminder queries
// the scheduler depends on.
type Service struct {
	db         *gorm.DB
	source     Source
	summarizer Summarizer
}

func NewService(db *gorm.DB, source Source, summarizer Summarizer) *Service {
	return &Service{db: db, source: source, summarizer: summarizer}
}

const defaultSyncHorizon = 7 * 24 * time.Hour

// SyncEvents pulls the user's remote events and persists the ones not seen
// before. Existing events are never mutated here.
func (s *Service) SyncEvents(user *models.User) ([]models.CalendarEvent, error) {
	if s.source == nil {
		return nil, nil
	}

	remote, err := s.source.FetchEvents(user, defaultSyncHorizon)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar events: %w", err)
	}

	var synced []models.CalendarEvent

	for _, ev := range remote {
		var existing models.CalendarEvent

		err := s.db.Where("remote_event_id = ?", ev.ID).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return synced, err
		}

		attendees, _ := json.Marshal(ev.Attendees)

		event := models.CalendarEvent{
			UserID:          user.ID,
			RemoteEventID:   ev.ID,
			CalendarID:      ev.CalendarID,
			Title:           ev.Title,
			Description:     ev.Description,
			Location:        ev.Location,
			StartDatetime:   ev.Start,
			EndDatetime:     ev.End,
			IsAllDay:        ev.IsAllDay,
			OrganizerEmail:  ev.OrganizerEmail,
			Attendees:       datatypes.JSON(attendees),
			MeetingLink:     ev.MeetingLink,
			MeetingPlatform: ev.MeetingPlatform,
		}

		if s.summarizer != nil {
			description := ev.Description
			if description == "" {
				description = "Meeting scheduled"
			}
			event.Summary = s.summarizer.Summarize(ev.Title, description)
		}

		if err := s.db.Create(&event).Error; err != nil {
			return synced, fmt.Errorf("persisting event %s: %w", ev.ID, err)
		}

		synced = append(synced, event)
	}

	return synced, nil
}

// Upcoming returns the user's events starting within the horizon, soonest first.
func (s *Service) Upcoming(userID uint, horizon time.Duration) ([]models.CalendarEvent, error) {
	now := time.Now().UTC()

	var events []models.CalendarEvent

	err := s.db.Where("user_id = ? AND start_datetime >= ? AND start_datetime <= ?",
		userID, now, now.Add(horizon)).
		Order("start_datetime").
		Find(&events).Error

	return events, err
}

// EventsNeedingReminder returns events whose reminder window has opened:
// reminder not yet sent and the start time within reminder_minutes_before
// from now. The per-event window is applied in Go so the query stays portable.
func (s *Service) EventsNeedingReminder() ([]models.CalendarEvent, error) {
	now := time.Now().UTC()

	var candidates []models.CalendarEvent

	err := s.db.Where("reminder_sent = ? AND start_datetime > ?", false, now).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	var due []models.CalendarEvent

	for _, event := range candidates {
		window := time.Duration(event.ReminderMinutesBefore) * time.Minute
		if event.StartDatetime.Sub(now) <= window {
			due = append(due, event)
		}
	}

	return due, nil
}

func (s *Service) MarkReminderSent(event *models.CalendarEvent) error {
	err := s.db.Model(&models.CalendarEvent{}).
		Where("id = ?", event.ID).
		Update("reminder_sent", true).Error
	if err != nil {
		return err
	}

	event.ReminderSent = true
	return nil
}
