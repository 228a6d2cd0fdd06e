package alerts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/secretary-dev/secretary/internal/models"
	"gorm.io/datatypes"
)

// Factory builds typed alerts from domain events. Every construction persists
// the alert and synchronously runs one dispatch attempt before returning; a
// persistence failure aborts the whole operation and propagates to the caller.
type Factory struct {
	store      *Store
	dispatcher *Dispatcher
}

func NewFactory(store *Store, dispatcher *Dispatcher) *Factory {
	return &Factory{store: store, dispatcher: dispatcher}
}

func (f *Factory) CreateEmailVIPAlert(email *models.Email, user *models.User) (*models.Alert, error) {
	alert := &models.Alert{
		UserID:    user.ID,
		EmailID:   &email.ID,
		Title:     fmt.Sprintf("VIP Email from %s", email.SenderName),
		Message:   fmt.Sprintf("You received an important email from %s: %s", email.SenderName, email.Subject),
		Type:      models.AlertTypeEmailVIP,
		Priority:  models.PriorityHigh,
		Status:    models.StatusPending,
		SendEmail: true,
		SendPush:  true,
		Metadata: metadataJSON(map[string]interface{}{
			"sender_email": email.SenderEmail,
			"subject":      email.Subject,
			"summary":      email.Summary,
		}),
	}

	return f.createAndDispatch(alert, user)
}

func (f *Factory) CreateEmergencyEmailAlert(email *models.Email, user *models.User) (*models.Alert, error) {
	alert := &models.Alert{
		UserID:    user.ID,
		EmailID:   &email.ID,
		Title:     fmt.Sprintf("URGENT: Emergency Email from %s", email.SenderName),
		Message:   fmt.Sprintf("URGENT EMAIL DETECTED from %s: %s. Immediate attention required.", email.SenderName, email.Subject),
		Type:      models.AlertTypeEmailEmergency,
		Priority:  models.PriorityUrgent,
		Status:    models.StatusPending,
		SendEmail: true,
		SendPush:  true,
		SendSMS:   true,
		Metadata: metadataJSON(map[string]interface{}{
			"sender_email":       email.SenderEmail,
			"subject":            email.Subject,
			"summary":            email.Summary,
			"emergency_detected": true,
		}),
	}

	return f.createAndDispatch(alert, user)
}

func (f *Factory) CreateMeetingReminderAlert(event *models.CalendarEvent, user *models.User) (*models.Alert, error) {
	minutesUntil := int(time.Until(event.StartDatetime).Minutes())

	alert := &models.Alert{
		UserID:          user.ID,
		CalendarEventID: &event.ID,
		Title:           fmt.Sprintf("Meeting Reminder: %s", event.Title),
		Message:         fmt.Sprintf("Your meeting '%s' starts in %d minutes.", event.Title, minutesUntil),
		Type:            models.AlertTypeMeetingReminder,
		Priority:        models.PriorityNormal,
		Status:          models.StatusPending,
		SendEmail:       false,
		SendPush:        true,
		Metadata: metadataJSON(map[string]interface{}{
			"meeting_title":     event.Title,
			"meeting_link":      event.MeetingLink,
			"location":          event.Location,
			"minutes_until":     minutesUntil,
			"preparation_notes": event.PreparationNotes,
		}),
	}

	return f.createAndDispatch(alert, user)
}

func (f *Factory) CreateMorningBriefingAlert(user *models.User, briefing string) (*models.Alert, error) {
	alert := &models.Alert{
		UserID:    user.ID,
		Title:     "Your Daily Morning Briefing",
		Message:   briefing,
		Type:      models.AlertTypeMorningBriefing,
		Priority:  models.PriorityNormal,
		Status:    models.StatusPending,
		SendEmail: true,
		SendPush:  true,
		Metadata: metadataJSON(map[string]interface{}{
			"briefing_type": "daily",
			"generated_at":  time.Now().UTC().Format(time.RFC3339),
		}),
	}

	return f.createAndDispatch(alert, user)
}

func (f *Factory) createAndDispatch(alert *models.Alert, user *models.User) (*models.Alert, error) {
	if err := f.store.Create(alert); err != nil {
		return nil, err
	}

	if err := f.dispatcher.Dispatch(alert, user); err != nil {
		return nil, err
	}

	return alert, nil
}

func metadataJSON(m map[string]interface{}) datatypes.JSON {
	b, _ := json.Marshal(m)
	return datatypes.JSON(b)
}
