package mail

import (
	"encoding/json"
	"strings"

	"github.com/secretary-dev/secretary/internal/models"
)

// Fetcher pulls new messages for a user's mailbox. Every returned email
// already carries its annotation flags (summary, VIP, emergency), so the
// scheduler tasks only read them.
type Fetcher interface {
	FetchNew(user *models.User) ([]models.Email, error)
}

// Annotator is the slice of the AI collaborator the mailbox needs.
type Annotator interface {
	Summarize(subject, body string) string
	AnalyzeSentiment(text string) string
}

// isVIPSender matches the sender address against the user's VIP list,
// case-insensitively.
func isVIPSender(senderEmail string, user *models.User) bool {
	var vips []string

	if len(user.VIPSenders) == 0 {
		return false
	}

	if err := json.Unmarshal(user.VIPSenders, &vips); err != nil {
		return false
	}

	sender := strings.ToLower(senderEmail)

	for _, vip := range vips {
		if strings.ToLower(vip) == sender {
			return true
		}
	}

	return false
}

// hasEmergencyKeywords reports whether any of the user's emergency keywords
// occurs in the text.
func hasEmergencyKeywords(text string, user *models.User) bool {
	var keywords []string

	if len(user.EmergencyKeywords) == 0 {
		return false
	}

	if err := json.Unmarshal(user.EmergencyKeywords, &keywords); err != nil {
		return false
	}

	lower := strings.ToLower(text)

	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}

	return false
}

// classify derives priority and status from the annotation flags. Emergency
// outranks VIP.
func classify(email *models.Email) {
	switch {
	case email.IsEmergency:
		email.Priority = models.PriorityUrgent
		email.Status = models.EmailStatusEmergency
	case email.IsFromVIP:
		email.Priority = models.PriorityHigh
		email.Status = models.EmailStatusImportant
	default:
		email.Priority = models.PriorityNormal
		email.Status = models.EmailStatusUnread
	}
}
