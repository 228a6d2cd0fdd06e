package channels

import (
	"testing"

	"github.com/secretary-dev/secretary/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBuildMIMEMessageMultipart(t *testing.T) {
	msg := buildMIMEMessage("assistant@example.com", "owner@example.com",
		"Secretary: Test", "plain body", "<p>html body</p>")

	assert.Contains(t, msg, "From: assistant@example.com\r\n")
	assert.Contains(t, msg, "To: owner@example.com\r\n")
	assert.Contains(t, msg, "Subject: Secretary: Test\r\n")
	assert.Contains(t, msg, "multipart/alternative")
	assert.Contains(t, msg, "Content-Type: text/plain; charset=utf-8")
	assert.Contains(t, msg, "Content-Type: text/html; charset=utf-8")
	assert.Contains(t, msg, "plain body")
	assert.Contains(t, msg, "<p>html body</p>")
	assert.Contains(t, msg, "--secretary-alt-boundary--")
}

func TestBuildMIMEMessagePlainOnly(t *testing.T) {
	msg := buildMIMEMessage("assistant@example.com", "owner@example.com",
		"Secretary: Test", "plain body", "")

	assert.Contains(t, msg, "Content-Type: text/plain; charset=utf-8")
	assert.NotContains(t, msg, "multipart/alternative")
	assert.NotContains(t, msg, "boundary")
}

func TestSendEmailRequiresConfiguration(t *testing.T) {
	channel := NewSMTPChannel()

	err := channel.SendEmail(&models.User{Email: "owner@example.com"},
		"subject", "text", "")
	assert.Error(t, err)
}
