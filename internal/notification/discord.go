package notification

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	apperrors "linkguard/pkg/errors"
	"linkguard/pkg/risk"
)

type Message struct {
	Title       string
	Description string
	Severity    string
	URL         string
	Fields      map[string]string
	Timestamp   time.Time
}

// NotificationClient posts embeds either through a webhook
// (DISCORD_WEBHOOK_ID, DISCORD_WEBHOOK_TOKEN) or as a bot
// (DISCORD_TOKEN, DISCORD_CHANNEL_ID). The webhook wins when both are set.
type NotificationClient struct {
	sg           *discordgo.Session
	webhookID    string
	webhookToken string
	channelID    string
}

func NewNotificationClient() (*NotificationClient, error) {
	if id, token := os.Getenv("DISCORD_WEBHOOK_ID"), os.Getenv("DISCORD_WEBHOOK_TOKEN"); id != "" && token != "" {
		sg, err := discordgo.New("")
		if err != nil {
			return nil, err
		}
		return &NotificationClient{sg: sg, webhookID: id, webhookToken: token}, nil
	}

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("%w: set DISCORD_WEBHOOK_ID/DISCORD_WEBHOOK_TOKEN or DISCORD_TOKEN", apperrors.ErrNotifierNotConfigured)
	}
	channelID := os.Getenv("DISCORD_CHANNEL_ID")
	if channelID == "" {
		return nil, fmt.Errorf("%w: DISCORD_CHANNEL_ID not set", apperrors.ErrNotifierNotConfigured)
	}

	sg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	if err := sg.Open(); err != nil {
		return nil, err
	}

	return &NotificationClient{sg: sg, channelID: channelID}, nil
}

// SeverityColor maps a risk tier name to its embed color.
func SeverityColor(severity string) int {
	tier, ok := risk.ParseTier(severity)
	if !ok {
		return 0x808080
	}
	c, err := strconv.ParseInt(strings.TrimPrefix(tier.Color(), "#"), 16, 32)
	if err != nil {
		return 0x808080
	}
	return int(c)
}

// BuildEmbed converts msg into a Discord embed. Fields are sorted by name.
func BuildEmbed(msg Message) *discordgo.MessageEmbed {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	embed := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Description,
		URL:         msg.URL,
		Color:       SeverityColor(msg.Severity),
		Timestamp:   msg.Timestamp.Format(time.RFC3339),
	}

	if len(msg.Fields) > 0 {
		keys := make([]string, 0, len(msg.Fields))
		for key := range msg.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fields := make([]*discordgo.MessageEmbedField, 0, len(keys))
		for _, key := range keys {
			fields = append(fields, &discordgo.MessageEmbedField{
				Name:   key,
				Value:  msg.Fields[key],
				Inline: true,
			})
		}
		embed.Fields = fields
	}
	return embed
}

func (c *NotificationClient) Send(msg Message) error {
	if c.sg == nil {
		return fmt.Errorf("Discord client not initialized")
	}

	embed := BuildEmbed(msg)

	if c.webhookID != "" {
		_, err := c.sg.WebhookExecute(c.webhookID, c.webhookToken, false, &discordgo.WebhookParams{
			Username: "LinkGuard",
			Embeds:   []*discordgo.MessageEmbed{embed},
		})
		return err
	}

	_, err := c.sg.ChannelMessageSendEmbed(c.channelID, embed)
	return err
}

func (c *NotificationClient) Close() error {
	if c.sg != nil && c.webhookID == "" {
		return c.sg.Close()
	}
	return nil
}
