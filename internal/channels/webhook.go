package channels

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/secretary-dev/secretary/internal/models"
)

// The push and SMS gateways accept a JSON POST and answer with an HTTP
// status; everything past that boundary belongs to the gateway.

type PushPayload struct {
	UserID   uint   `json:"user_id"`
	AlertID  uint   `json:"alert_id"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Type     string `json:"type"`
	Priority string `json:"priority"`
}

type SMSPayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// WebhookPushChannel posts alert payloads to the user's registered push endpoint.
type WebhookPushChannel struct {
	client *http.Client
}

func NewWebhookPushChannel() *WebhookPushChannel {
	return &WebhookPushChannel{client: &http.Client{Timeout: 10 * time.Second}}
}

func (c *WebhookPushChannel) SendPush(user *models.User, alert *models.Alert) error {
	if user.PushEndpoint == "" {
		return fmt.Errorf("user %d has no push endpoint registered", user.ID)
	}

	payload := PushPayload{
		UserID:   user.ID,
		AlertID:  alert.ID,
		Title:    alert.Title,
		Message:  alert.Message,
		Type:     string(alert.Type),
		Priority: string(alert.Priority),
	}

	return postJSON(c.client, user.PushEndpoint, payload)
}

// WebhookSMSChannel posts alert text to an SMS gateway shared by all users.
type WebhookSMSChannel struct {
	gatewayURL string
	client     *http.Client
}

func NewWebhookSMSChannel(gatewayURL string) *WebhookSMSChannel {
	return &WebhookSMSChannel{
		gatewayURL: gatewayURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *WebhookSMSChannel) SendSMS(user *models.User, alert *models.Alert) error {
	if c.gatewayURL == "" {
		return fmt.Errorf("SMS gateway is not configured")
	}

	if user.SMSNumber == "" {
		return fmt.Errorf("user %d has no SMS number registered", user.ID)
	}

	payload := SMSPayload{
		To:      user.SMSNumber,
		Message: fmt.Sprintf("%s: %s", alert.Title, alert.Message),
	}

	return postJSON(c.client, c.gatewayURL, payload)
}

func postJSON(client *http.Client, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	resp, err := client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
