package alerts

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/secretary-dev/secretary/internal/models"
)

// RenderEmail builds the subject, plain-text fallback and HTML body for the
// email channel. The HTML carries a type-specific details fragment built from
// the alert metadata.
func RenderEmail(alert *models.Alert) (subject, text, htmlBody string) {
	subject = fmt.Sprintf("Secretary: %s", alert.Title)

	text = fmt.Sprintf("%s\n\n%s\n\n---\nThis notification was sent by your Secretary assistant.\n",
		alert.Title, alert.Message)

	var b strings.Builder

	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(alert.Title))
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(alert.Message))
	b.WriteString(renderMetadata(alert))
	b.WriteString("<hr><p><small>This notification was sent by your Secretary assistant.</small></p>")
	b.WriteString("</body></html>")

	return subject, text, b.String()
}

func renderMetadata(alert *models.Alert) string {
	if len(alert.Metadata) == 0 {
		return ""
	}

	var meta map[string]interface{}

	if err := json.Unmarshal(alert.Metadata, &meta); err != nil {
		return ""
	}

	switch alert.Type {
	case models.AlertTypeEmailVIP, models.AlertTypeEmailEmergency:
		var b strings.Builder
		b.WriteString(`<div style="background-color: #f5f5f5; padding: 10px; margin: 10px 0;">`)
		b.WriteString("<strong>Email Details:</strong><br>")
		fmt.Fprintf(&b, "From: %s<br>", metaString(meta, "sender_email", "Unknown"))
		fmt.Fprintf(&b, "Subject: %s<br>", metaString(meta, "subject", "No subject"))
		fmt.Fprintf(&b, "Summary: %s", metaString(meta, "summary", "No summary available"))
		b.WriteString("</div>")
		return b.String()

	case models.AlertTypeMeetingReminder:
		var b strings.Builder
		b.WriteString(`<div style="background-color: #e3f2fd; padding: 10px; margin: 10px 0;">`)
		b.WriteString("<strong>Meeting Details:</strong><br>")
		fmt.Fprintf(&b, "Location: %s<br>", metaString(meta, "location", "Not specified"))
		if link := metaString(meta, "meeting_link", ""); link != "" {
			fmt.Fprintf(&b, "Meeting Link: %s<br>", link)
		}
		if notes := metaString(meta, "preparation_notes", ""); notes != "" {
			fmt.Fprintf(&b, "Preparation Notes: %s<br>", notes)
		}
		b.WriteString("</div>")
		return b.String()
	}

	return ""
}

func metaString(meta map[string]interface{}, key, fallback string) string {
	if v, ok := meta[key].(string); ok && v != "" {
		return html.EscapeString(v)
	}
	return fallback
}
