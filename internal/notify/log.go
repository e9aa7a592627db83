package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/guttosm/dipwatch/internal/domain/models"
	"github.com/guttosm/dipwatch/internal/logger"
)

// Log writes the notification to the application log instead of sending it.
type Log struct {
	log zerolog.Logger
}

// NewLog constructs the log-only notifier used for local runs.
func NewLog() *Log {
	return &Log{log: logger.With("notify.log")}
}

// Notify logs sender, recipients, subject and body at info level. It never fails.
func (l *Log) Notify(_ context.Context, n models.Notification) error {
	l.log.Info().
		Str("sender", n.Sender).
		Strs("recipients", n.Recipients).
		Str("subject", n.Subject).
		Str("body", n.Body).
		Msg("notification")
	return nil
}
