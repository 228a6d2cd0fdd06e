package scheduler

import (
	"log"
	"time"

	"github.com/secretary-dev/secretary/internal/ai"
	"github.com/secretary-dev/secretary/internal/alerts"
	"github.com/secretary-dev/secretary/internal/calendar"
	"github.com/secretary-dev/secretary/internal/mail"
	"github.com/secretary-dev/secretary/internal/models"
	"gorm.io/gorm"
)

// Briefer is the slice of the AI collaborator the briefing task needs.
type Briefer interface {
	GenerateBriefing(emails []ai.EmailDigest, events []ai.EventDigest) string
}

// Tasks holds the producer task bodies the scheduler drives. Each task loops
// over users and logs-and-continues on per-user failure, so one unreachable
// mailbox never aborts the batch for everyone else.
type Tasks struct {
	db         *gorm.DB
	store      *alerts.Store
	factory    *alerts.Factory
	dispatcher *alerts.Dispatcher
	mail       mail.Fetcher
	calendar   *calendar.Service
	briefer    Briefer
}

func NewTasks(db *gorm.DB, store *alerts.Store, factory *alerts.Factory, dispatcher *alerts.Dispatcher, fetcher mail.Fetcher, cal *calendar.Service, briefer Briefer) *Tasks {
	return &Tasks{
		db:         db,
		store:      store,
		factory:    factory,
		dispatcher: dispatcher,
		mail:       fetcher,
		calendar:   cal,
		briefer:    briefer,
	}
}

// RegisterAll wires the five producer tasks at their cadences.
func (t *Tasks) RegisterAll(s *Scheduler) {
	s.Register("check_new_emails", 5*time.Minute, t.CheckNewEmails)
	s.Register("sync_calendar_events", 10*time.Minute, t.SyncCalendarEvents)
	s.Register("send_meeting_reminders", time.Minute, t.SendMeetingReminders)
	s.Register("send_morning_briefings", time.Minute, t.SendMorningBriefings)
	s.Register("process_pending_alerts", 30*time.Second, t.ProcessPendingAlerts)
}

// CheckNewEmails polls every configured mailbox and raises VIP/emergency
// alerts for qualifying messages. An email carrying both flags produces two
// alerts.
func (t *Tasks) CheckNewEmails() {
	var users []models.User

	err := t.db.Where("is_active = ? AND mailbox_user <> ''", true).Find(&users).Error
	if err != nil {
		log.Printf("Error loading mailbox users: %v", err)
		return
	}

	for i := range users {
		user := &users[i]

		emails, err := t.mail.FetchNew(user)
		if err != nil {
			log.Printf("Error checking emails for user %d: %v", user.ID, err)
			continue
		}

		for j := range emails {
			t.processNewEmail(&emails[j], user)
		}

		if len(emails) > 0 {
			log.Printf("Processed %d new emails for user %d", len(emails), user.ID)
		}
	}
}

func (t *Tasks) processNewEmail(email *models.Email, user *models.User) {
	if email.IsFromVIP {
		if _, err := t.factory.CreateEmailVIPAlert(email, user); err != nil {
			log.Printf("Error creating VIP alert for email %d: %v", email.ID, err)
		}
	}

	if email.IsEmergency {
		if _, err := t.factory.CreateEmergencyEmailAlert(email, user); err != nil {
			log.Printf("Error creating emergency alert for email %d: %v", email.ID, err)
		}
	}
}

func (t *Tasks) SyncCalendarEvents() {
	var users []models.User

	err := t.db.Where("is_active = ?", true).Find(&users).Error
	if err != nil {
		log.Printf("Error loading users for calendar sync: %v", err)
		return
	}

	for i := range users {
		user := &users[i]

		events, err := t.calendar.SyncEvents(user)
		if err != nil {
			log.Printf("Error syncing calendar for user %d: %v", user.ID, err)
			continue
		}

		if len(events) > 0 {
			log.Printf("Synced %d calendar events for user %d", len(events), user.ID)
		}
	}
}

// SendMeetingReminders raises one reminder alert per event whose window has
// opened, then marks the event so it never reminds twice.
func (t *Tasks) SendMeetingReminders() {
	events, err := t.calendar.EventsNeedingReminder()
	if err != nil {
		log.Printf("Error loading events needing reminders: %v", err)
		return
	}

	sent := 0

	for i := range events {
		event := &events[i]

		var user models.User

		if err := t.db.First(&user, event.UserID).Error; err != nil {
			log.Printf("Error loading user %d for event %d: %v", event.UserID, event.ID, err)
			continue
		}

		if _, err := t.factory.CreateMeetingReminderAlert(event, &user); err != nil {
			log.Printf("Error sending reminder for event %d: %v", event.ID, err)
			continue
		}

		if err := t.calendar.MarkReminderSent(event); err != nil {
			log.Printf("Error marking reminder sent for event %d: %v", event.ID, err)
			continue
		}

		sent++
	}

	if sent > 0 {
		log.Printf("Sent %d meeting reminders", sent)
	}
}

// SendMorningBriefings fires once per user per day, after the user's
// configured wall-clock time, guarded by the existing-briefing check.
func (t *Tasks) SendMorningBriefings() {
	var users []models.User

	err := t.db.Where("is_active = ?", true).Find(&users).Error
	if err != nil {
		log.Printf("Error loading users for briefings: %v", err)
		return
	}

	now := time.Now().UTC()

	for i := range users {
		user := &users[i]

		briefingTime := user.BriefingTime
		if briefingTime == "" {
			briefingTime = "08:00"
		}

		// HH:MM strings compare correctly lexicographically.
		if now.Format("15:04") < briefingTime {
			continue
		}

		todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

		exists, err := t.store.HasBriefingSince(user.ID, todayStart)
		if err != nil {
			log.Printf("Error checking existing briefing for user %d: %v", user.ID, err)
			continue
		}

		if exists {
			continue
		}

		briefing := t.generateDailyBriefing(user, now)

		if _, err := t.factory.CreateMorningBriefingAlert(user, briefing); err != nil {
			log.Printf("Error sending morning briefing to user %d: %v", user.ID, err)
			continue
		}

		log.Printf("Sent morning briefing to user %d", user.ID)
	}
}

func (t *Tasks) generateDailyBriefing(user *models.User, now time.Time) string {
	var recentEmails []models.Email

	err := t.db.Where("user_id = ? AND received_at >= ? AND status IN ?",
		user.ID, now.Add(-24*time.Hour),
		[]models.EmailStatus{models.EmailStatusUnread, models.EmailStatusImportant, models.EmailStatusEmergency}).
		Order("received_at DESC").
		Limit(10).
		Find(&recentEmails).Error
	if err != nil {
		log.Printf("Error loading recent emails for user %d: %v", user.ID, err)
	}

	upcoming, err := t.calendar.Upcoming(user.ID, 24*time.Hour)
	if err != nil {
		log.Printf("Error loading upcoming events for user %d: %v", user.ID, err)
	}

	emailDigests := make([]ai.EmailDigest, 0, len(recentEmails))
	for _, e := range recentEmails {
		summary := e.Summary
		if summary == "" {
			summary = e.Subject
		}

		emailDigests = append(emailDigests, ai.EmailDigest{
			SenderName:  e.SenderName,
			Subject:     e.Subject,
			Summary:     summary,
			Priority:    string(e.Priority),
			IsEmergency: e.IsEmergency,
			IsFromVIP:   e.IsFromVIP,
		})
	}

	eventDigests := make([]ai.EventDigest, 0, len(upcoming))
	for _, ev := range upcoming {
		location := ev.Location
		if location == "" {
			location = "Not specified"
		}

		eventDigests = append(eventDigests, ai.EventDigest{
			Title:     ev.Title,
			StartTime: ev.StartDatetime.Format("15:04"),
			Location:  location,
			Summary:   ev.Summary,
		})
	}

	return t.briefer.GenerateBriefing(emailDigests, eventDigests)
}

// ProcessPendingAlerts sweeps alerts left in a non-terminal delivery state
// and re-attempts dispatch.
func (t *Tasks) ProcessPendingAlerts() {
	pending, err := t.store.DuePending(time.Now().UTC())
	if err != nil {
		log.Printf("Error loading pending alerts: %v", err)
		return
	}

	for i := range pending {
		alert := &pending[i]

		var user models.User

		if err := t.db.First(&user, alert.UserID).Error; err != nil {
			log.Printf("Error loading user %d for alert %d: %v", alert.UserID, alert.ID, err)
			continue
		}

		if err := t.dispatcher.Dispatch(alert, &user); err != nil {
			log.Printf("Error processing alert %d: %v", alert.ID, err)
		}
	}
}
