package alerts

import (
	"log"
	"time"

	"github.com/secretary-dev/secretary/internal/channels"
	"github.com/secretary-dev/secretary/internal/models"
)

// Dispatcher attempts delivery of an alert on every channel the alert has
// enabled. Channels are tried in turn; one failure never cancels its siblings
// and never blocks the pending -> sent transition.
type Dispatcher struct {
	store *Store
	email channels.EmailSender
	push  channels.PushSender
	sms   channels.SMSSender

	// OnDispatched, when set, is invoked after every dispatch attempt so the
	// API layer can refresh connected clients of the owner.
	OnDispatched func(userID uint)
}

func NewDispatcher(store *Store, email channels.EmailSender, push channels.PushSender, sms channels.SMSSender) *Dispatcher {
	return &Dispatcher{
		store: store,
		email: email,
		push:  push,
		sms:   sms,
	}
}

// Dispatch runs the delivery attempt. The only error it can return is a
// persistence failure on the state transition; channel failures are logged
// and swallowed. Re-dispatching a sent alert retries its channels without
// touching sent_at; alerts in a terminal state are never redelivered.
func (d *Dispatcher) Dispatch(alert *models.Alert, user *models.User) error {
	if alert.Status.Terminal() {
		return nil
	}

	if alert.SendEmail && d.email != nil {
		subject, text, html := RenderEmail(alert)

		if err := d.email.SendEmail(user, subject, text, html); err != nil {
			log.Printf("Email delivery failed for alert %d: %v", alert.ID, err)
		} else {
			log.Printf("Email notification sent for alert %d", alert.ID)
		}
	}

	if alert.SendPush && d.push != nil {
		if err := d.push.SendPush(user, alert); err != nil {
			log.Printf("Push delivery failed for alert %d: %v", alert.ID, err)
		}
	}

	if alert.SendSMS && d.sms != nil {
		if err := d.sms.SendSMS(user, alert); err != nil {
			log.Printf("SMS delivery failed for alert %d: %v", alert.ID, err)
		}
	}

	if err := d.store.MarkSent(alert, time.Now().UTC()); err != nil {
		return err
	}

	if d.OnDispatched != nil {
		d.OnDispatched(alert.UserID)
	}

	return nil
}
