package mail

import (
	"encoding/json"
	"testing"

	"github.com/secretary-dev/secretary/internal/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func jsonList(items ...string) datatypes.JSON {
	b, _ := json.Marshal(items)
	return datatypes.JSON(b)
}

func TestIsVIPSender(t *testing.T) {
	user := &models.User{VIPSenders: jsonList("Boss@Corp.com", "cfo@corp.com")}

	assert.True(t, isVIPSender("boss@corp.com", user))
	assert.True(t, isVIPSender("BOSS@CORP.COM", user))
	assert.True(t, isVIPSender("cfo@corp.com", user))
	assert.False(t, isVIPSender("intern@corp.com", user))
}

func TestIsVIPSenderEmptyOrBrokenList(t *testing.T) {
	assert.False(t, isVIPSender("boss@corp.com", &models.User{}))

	broken := &models.User{VIPSenders: datatypes.JSON(`{"not":"a list"}`)}
	assert.False(t, isVIPSender("boss@corp.com", broken))
}

func TestHasEmergencyKeywords(t *testing.T) {
	user := &models.User{EmergencyKeywords: jsonList("URGENT", "server down")}

	assert.True(t, hasEmergencyKeywords("This is urgent, please respond", user))
	assert.True(t, hasEmergencyKeywords("FYI the Server Down page fired", user))
	assert.False(t, hasEmergencyKeywords("weekly newsletter", user))
	assert.False(t, hasEmergencyKeywords("", user))
}

func TestHasEmergencyKeywordsIgnoresEmptyKeyword(t *testing.T) {
	user := &models.User{EmergencyKeywords: jsonList("")}

	assert.False(t, hasEmergencyKeywords("anything at all", user))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		emergency  bool
		vip        bool
		wantStatus models.EmailStatus
		wantPrio   models.AlertPriority
	}{
		{"plain", false, false, models.EmailStatusUnread, models.PriorityNormal},
		{"vip", false, true, models.EmailStatusImportant, models.PriorityHigh},
		{"emergency", true, false, models.EmailStatusEmergency, models.PriorityUrgent},
		{"emergency outranks vip", true, true, models.EmailStatusEmergency, models.PriorityUrgent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := &models.Email{IsEmergency: tt.emergency, IsFromVIP: tt.vip}
			classify(email)

			assert.Equal(t, tt.wantStatus, email.Status)
			assert.Equal(t, tt.wantPrio, email.Priority)
		})
	}
}
