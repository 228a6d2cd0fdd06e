package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlertType(t *testing.T) {
	valid := []string{"email_vip", "email_emergency", "meeting_reminder", "morning_briefing", "system"}

	for _, s := range valid {
		got, err := ParseAlertType(s)
		require.NoError(t, err)
		assert.Equal(t, AlertType(s), got)
	}

	for _, s := range []string{"", "EMAIL_VIP", "reminder", "email-vip"} {
		_, err := ParseAlertType(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestParseAlertPriority(t *testing.T) {
	valid := []string{"low", "normal", "high", "urgent"}

	for _, s := range valid {
		got, err := ParseAlertPriority(s)
		require.NoError(t, err)
		assert.Equal(t, AlertPriority(s), got)
	}

	_, err := ParseAlertPriority("critical")
	assert.Error(t, err)
}

func TestParseAlertStatus(t *testing.T) {
	valid := []string{"pending", "sent", "read", "dismissed"}

	for _, s := range valid {
		got, err := ParseAlertStatus(s)
		require.NoError(t, err)
		assert.Equal(t, AlertStatus(s), got)
	}

	_, err := ParseAlertStatus("archived")
	assert.Error(t, err)
}

func TestPriorityRankOrdering(t *testing.T) {
	assert.Less(t, PriorityLow.Rank(), PriorityNormal.Rank())
	assert.Less(t, PriorityNormal.Rank(), PriorityHigh.Rank())
	assert.Less(t, PriorityHigh.Rank(), PriorityUrgent.Rank())
	assert.Equal(t, -1, AlertPriority("bogus").Rank())
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusSent.Terminal())
	assert.True(t, StatusRead.Terminal())
	assert.True(t, StatusDismissed.Terminal())
}

func TestParseEmailStatus(t *testing.T) {
	valid := []string{"unread", "read", "archived", "important", "emergency"}

	for _, s := range valid {
		got, err := ParseEmailStatus(s)
		require.NoError(t, err)
		assert.Equal(t, EmailStatus(s), got)
	}

	_, err := ParseEmailStatus("spam")
	assert.Error(t, err)
}
