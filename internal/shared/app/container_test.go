package app

import (
	"testing"

	"aerolink/internal/notifications"
	"aerolink/internal/shared/config"

	"github.com/stretchr/testify/assert"
)

func TestVerificationSender(t *testing.T) {
	notifier := &notifications.Service{}

	tests := []struct {
		name     string
		cfg      config.Config
		notifier *notifications.Service
		wantNil  bool
	}{
		{"no notifier", config.Config{Email: config.EmailConfig{SMTPHost: "smtp.example.com"}}, nil, true},
		{"log mailer only", config.Config{}, notifier, true},
		{"smtp configured", config.Config{Email: config.EmailConfig{SMTPHost: "smtp.example.com"}}, notifier, false},
		{"kafka configured", config.Config{Kafka: config.KafkaConfig{Enabled: true}}, notifier, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := verificationSender(&tt.cfg, tt.notifier)
			if tt.wantNil {
				assert.Nil(t, got)
			} else {
				assert.NotNil(t, got)
			}
		})
	}
}

func TestConfirmationSenderKeepsNilInterface(t *testing.T) {
	assert.True(t, confirmationSender(nil) == nil)
	assert.NotNil(t, confirmationSender(&notifications.Service{}))
}
