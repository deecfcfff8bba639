package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "linkguard/pkg/errors"
)

func TestSeverityColor(t *testing.T) {
	tests := []struct {
		severity string
		want     int
	}{
		{"high", 0xef4444},
		{"medium", 0xfacc15},
		{"low", 0x4ade80},
		{"HIGH", 0xef4444},
		{"critical", 0x808080},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SeverityColor(tt.severity), tt.severity)
	}
}

func TestBuildEmbed(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	embed := BuildEmbed(Message{
		Title:       "High risk link detected",
		Description: "Analysis for: http://bad.example",
		Severity:    "high",
		Fields:      map[string]string{"Verdict": "Malicious", "Protocol": "http", "Risk Score": "95"},
		Timestamp:   ts,
	})

	assert.Equal(t, "High risk link detected", embed.Title)
	assert.Equal(t, 0xef4444, embed.Color)
	assert.Equal(t, "2025-03-01T12:00:00Z", embed.Timestamp)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "Protocol", embed.Fields[0].Name)
	assert.Equal(t, "Risk Score", embed.Fields[1].Name)
	assert.Equal(t, "Verdict", embed.Fields[2].Name)
}

func TestNewNotificationClientNotConfigured(t *testing.T) {
	t.Setenv("DISCORD_WEBHOOK_ID", "")
	t.Setenv("DISCORD_WEBHOOK_TOKEN", "")
	t.Setenv("DISCORD_TOKEN", "")

	_, err := NewNotificationClient()
	assert.ErrorIs(t, err, apperrors.ErrNotifierNotConfigured)
}

func TestNewNotificationClientWebhook(t *testing.T) {
	t.Setenv("DISCORD_WEBHOOK_ID", "123")
	t.Setenv("DISCORD_WEBHOOK_TOKEN", "secret")

	c, err := NewNotificationClient()
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}
