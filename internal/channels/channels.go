package channels

import "github.com/secretary-dev/secretary/internal/models"

// Each delivery medium is independently callable and independently failable.
// The dispatch engine treats a nil implementation as a disabled channel.

type EmailSender interface {
	SendEmail(user *models.User, subject, text, html string) error
}

type PushSender interface {
	SendPush(user *models.User, alert *models.Alert) error
}

type SMSSender interface {
	SendSMS(user *models.User, alert *models.Alert) error
}
