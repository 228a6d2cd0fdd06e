package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	defaultEndpoint = "https://api.openai.com/v1"
	defaultModel    = "gpt-3.5-turbo"
)

// Client talks to an OpenAI-compatible chat-completions endpoint. It is an
// advisory collaborator: every method degrades to a static fallback on error
// so annotation failures never break alert processing.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

func NewClient(endpoint, apiKey, model string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	if model == "" {
		model = defaultModel
	}

	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Summarize produces a 1-2 sentence summary of an email. On failure it falls
// back to a truncated excerpt of the body.
func (c *Client) Summarize(subject, body string) string {
	prompt := fmt.Sprintf(
		"Please provide a concise summary of this email in 1-2 sentences:\n\nSubject: %s\nBody: %s\n\nFocus on the key points and any required actions.",
		subject, truncate(body, 1000))

	out, err := c.complete(
		"You are an AI assistant that summarizes emails concisely and professionally.",
		prompt, 150, 0.3)

	if err != nil {
		log.Printf("Error summarizing email: %v", err)
		return fmt.Sprintf("Email %q: %s", subject, truncate(body, 100))
	}

	return out
}

var replyToneInstructions = map[string]string{
	"professional": "formal and professional",
	"friendly":     "warm and friendly but professional",
	"casual":       "casual and approachable",
	"formal":       "very formal and respectful",
}

// DefaultReplyTone is used when a draft request does not name a tone.
const DefaultReplyTone = "professional"

// DraftReply writes a suggested reply to an email in the requested tone.
// Unknown tones fall back to the default. Unlike the annotation helpers this
// returns the error: a failed draft must not be stored or shown as a reply.
func (c *Client) DraftReply(subject, body, tone string) (string, error) {
	instruction, ok := replyToneInstructions[tone]
	if !ok {
		instruction = replyToneInstructions[DefaultReplyTone]
	}

	prompt := fmt.Sprintf(
		"Draft a reply to this email:\n\nSubject: %s\nBody: %s\n\nThe reply should:\n- Acknowledge the sender\n- Address the key points\n- Keep a %s tone\n- End with a clear call to action\n- Stay within 2-3 short paragraphs",
		subject, truncate(body, 800), instruction)

	return c.complete(
		fmt.Sprintf("You are an AI assistant that drafts email replies. Your replies are %s.", instruction),
		prompt, 400, 0.7)
}

// AnalyzeSentiment classifies text as positive, negative or neutral. An error
// or an off-script answer degrades to neutral.
func (c *Client) AnalyzeSentiment(text string) string {
	out, err := c.complete(
		"Analyze the sentiment of the following text. Respond with only one word: positive, negative, or neutral.",
		truncate(text, 500), 10, 0.1)

	if err != nil {
		log.Printf("Error analyzing sentiment: %v", err)
		return "neutral"
	}

	switch sentiment := strings.ToLower(strings.TrimSpace(out)); sentiment {
	case "positive", "negative", "neutral":
		return sentiment
	default:
		return "neutral"
	}
}

type EmailDigest struct {
	SenderName  string
	Subject     string
	Summary     string
	Priority    string
	IsEmergency bool
	IsFromVIP   bool
}

type EventDigest struct {
	Title     string
	StartTime string
	Location  string
	Summary   string
}

// GenerateBriefing writes the daily briefing from recent important emails and
// upcoming events.
func (c *Client) GenerateBriefing(emails []EmailDigest, events []EventDigest) string {
	if len(emails) > 10 {
		emails = emails[:10]
	}

	if len(events) > 5 {
		events = events[:5]
	}

	emailLines := "No important emails"
	if len(emails) > 0 {
		var lines []string
		for _, e := range emails {
			lines = append(lines, fmt.Sprintf("- From %s: %s", e.SenderName, e.Summary))
		}
		emailLines = strings.Join(lines, "\n")
	}

	eventLines := "No upcoming events"
	if len(events) > 0 {
		var lines []string
		for _, e := range events {
			lines = append(lines, fmt.Sprintf("- %s at %s", e.Title, e.StartTime))
		}
		eventLines = strings.Join(lines, "\n")
	}

	prompt := fmt.Sprintf(
		"Create a concise morning briefing based on this information:\n\nRecent Important Emails:\n%s\n\nUpcoming Calendar Events:\n%s\n\nFormat as a professional daily briefing with a good morning greeting, an email summary section, calendar highlights and any recommended actions.",
		emailLines, eventLines)

	out, err := c.complete(
		"You are an AI assistant creating daily briefings. Be concise, professional, and helpful.",
		prompt, 400, 0.5)

	if err != nil {
		log.Printf("Error generating morning briefing: %v", err)
		return "Good morning! Your briefing is being prepared. Please check back shortly."
	}

	return out
}

func (c *Client) complete(system, user string, maxTokens int, temperature float64) (string, error) {
	url := fmt.Sprintf("%s/chat/completions", c.endpoint)

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponse

	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("response contained no choices")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Back off to a rune boundary so multi-byte characters survive intact
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
