package hooks

import (
	"strconv"

	"github.com/sirupsen/logrus"

	"linkguard/internal/notification"
	"linkguard/pkg/logger"
	"linkguard/pkg/risk"
)

// Sender delivers a notification. *notification.NotificationClient
// satisfies it.
type Sender interface {
	Send(msg notification.Message) error
}

type NotifierHookConfig struct {
	MinTier risk.Tier
}

// NotifierHook alerts on reports at or above MinTier.
type NotifierHook struct {
	Config NotifierHookConfig
	sender Sender
	logger *logger.Logger
}

func NewNotifierHook(config NotifierHookConfig, sender Sender) *NotifierHook {
	if config.MinTier == "" {
		config.MinTier = risk.High
	}
	return &NotifierHook{
		Config: config,
		sender: sender,
		logger: logger.NewLogger(logrus.InfoLevel),
	}
}

func (n *NotifierHook) Name() string {
	return "notifier"
}

func (n *NotifierHook) Description() string {
	return "Sends a Discord alert when a scan result reaches the configured risk tier (notify.min_tier)"
}

func (n *NotifierHook) Execute(ctx HookContext) error {
	rep := ctx.Report
	if rep == nil || !rep.Supported || rep.Header == nil {
		return nil
	}
	tier := rep.Tier()
	if !tier.AtLeast(n.Config.MinTier) {
		return nil
	}

	msg := notification.Message{
		Title:       "LinkGuard: " + tier.String() + " risk result",
		Description: rep.Header.SubjectLine(),
		Severity:    tier.String(),
		Fields: map[string]string{
			"Verdict":    rep.Header.Verdict,
			"Risk Score": strconv.Itoa(rep.Header.Gauge.Score),
			"Protocol":   rep.Protocol,
		},
	}
	if rep.Header.RedirectedTo != "" {
		msg.Fields["Redirected To"] = rep.Header.RedirectedTo
	}
	if ctx.Result != nil {
		if u := ctx.Result.Details.String("urlscan.result_url"); u != "" {
			msg.URL = u
		}
	}

	if err := n.sender.Send(msg); err != nil {
		n.logger.WithError(err).Error("Failed to send Discord notification")
		return err
	}
	n.logger.WithFields(logger.Fields{"tier": tier, "protocol": rep.Protocol}).Info("Sent risk notification")
	return nil
}
