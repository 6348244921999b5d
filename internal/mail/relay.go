package mail

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Relay consumes queued emails and delivers them over SMTP. It is the
// other half of QueueMailer, run as the mailworker command.
type Relay struct {
	queue   Queue
	channel string
	sender  Mailer
	logger  *slog.Logger
}

func NewRelay(queue Queue, channel string, sender Mailer, logger *slog.Logger) *Relay {
	return &Relay{
		queue:   queue,
		channel: channel,
		sender:  sender,
		logger:  logger,
	}
}

// Run blocks consuming the queue until ctx is cancelled. Undecodable
// messages are dropped; delivery failures are returned to the queue for
// redelivery.
func (r *Relay) Run(ctx context.Context) error {
	return r.queue.Subscribe(ctx, r.channel, func(ctx context.Context, msg Message) error {
		var email Email
		if err := json.Unmarshal(msg.Data, &email); err != nil {
			r.logger.Error("dropping undecodable mail message", "id", msg.ID, "error", err)
			return nil
		}

		if err := r.sender.Send(ctx, email); err != nil {
			r.logger.Error("mail delivery failed", "id", msg.ID, "to", email.To, "error", err)
			return err
		}

		r.logger.Info("mail delivered", "id", msg.ID, "to", email.To)
		return nil
	})
}
