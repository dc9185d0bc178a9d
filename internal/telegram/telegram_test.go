package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRejectsMissingCredentials(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		chatID string
	}{
		{name: "no token", token: "", chatID: "12345"},
		{name: "no chat id", token: "123:abc", chatID: ""},
		{name: "neither", token: "", chatID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.token, tt.chatID)
			assert.ErrorIs(t, err, ErrNoCredentials)
		})
	}
}

func TestNewRejectsNonNumericChatID(t *testing.T) {
	_, err := New("123:abc", "not-a-number")
	assert.ErrorIs(t, err, ErrNoCredentials)
}
