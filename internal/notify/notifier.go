package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Notifier delivers one operational notification.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

type Notification struct {
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sentAt"`
}

// Multi fans a notification out to every sink, a failing sink does not stop the others.
type Multi []Notifier

func (that Multi) Notify(ctx context.Context, subject, body string) error {
	var errs []error

	for _, sink := range that {
		if err := sink.Notify(ctx, subject, body); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

type logNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier - writes notifications to the application log.
func NewLogNotifier(logger *slog.Logger) Notifier {
	return &logNotifier{logger: logger.With("component", "notify")}
}

func (that *logNotifier) Notify(ctx context.Context, subject, body string) error {
	that.logger.InfoContext(ctx, "notification", "subject", subject, "body", body)
	return nil
}
