package alert

import (
	"context"

	"go.uber.org/zap"
)

// LogChannel writes notifications to the structured log. It is the default
// channel wired in the server and a useful stand-in until chat/email/pager
// collaborators are configured.
type LogChannel struct {
	logger *zap.SugaredLogger
}

// NewLogChannel creates a log-backed channel.
func NewLogChannel(logger *zap.SugaredLogger) *LogChannel {
	return &LogChannel{logger: logger}
}

// Name implements Channel.
func (c *LogChannel) Name() string { return "log" }

// Send implements Channel.
func (c *LogChannel) Send(ctx context.Context, p Payload) error {
	c.logger.Infow("sla notification",
		"sla", p.SLAID,
		"name", p.SLAName,
		"type", p.Type,
		"status", p.Status,
		"compliance", p.Compliance,
		"escalate", p.Escalate,
	)
	return nil
}
