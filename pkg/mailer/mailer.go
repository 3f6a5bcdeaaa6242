// Package mailer delivers activation codes to registrants.
package mailer

import (
	"context"
	"time"

	"user-activation/pkg/utils"

	"go.uber.org/zap"
)

// Sender delivers an activation code out of band.
type Sender interface {
	SendActivationCode(ctx context.Context, email, code string) error
}

// New returns an SMTP sender when a host is configured and a log sender otherwise.
func New(config utils.EmailConfig, ttl time.Duration, log *zap.Logger) Sender {
	if config.Host == "" {
		log.Warn("SMTP_HOST not set, activation codes will only be logged")
		return NewLogSender(log)
	}
	return NewSMTPSender(config, ttl, log)
}

// LogSender writes activation codes to the log. Meant for local development.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.With(zap.String("sender", "log"))}
}

func (s *LogSender) SendActivationCode(_ context.Context, email, code string) error {
	s.log.Info("Activation code generated",
		zap.String("email", email),
		zap.String("activation_code", code),
	)
	return nil
}
