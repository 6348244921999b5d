package mail

import (
	"context"
	"fmt"

	"github.com/donelist/apiserver/config"
)

// Email is a rendered outbound message.
type Email struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
}

// Mailer delivers an email best-effort. Implementations either hand the
// message to an SMTP server directly or publish it for an out-of-process
// relay; callers never wait on the mail-server round trip.
type Mailer interface {
	Send(ctx context.Context, email Email) error
	Close() error
}

// New constructs the Mailer selected by config.
func New(ctx context.Context, cfg config.Config) (Mailer, error) {
	switch cfg.Mail.Backend {
	case "smtp":
		return NewSMTPMailer(cfg.Email), nil
	case "rabbitmq":
		queue, err := NewRabbitMQQueue(cfg.Mail.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return NewQueueMailer(queue, cfg.Mail.Queue), nil
	case "pubsub":
		queue, err := NewPubSubQueue(ctx, cfg.Mail.PubSub)
		if err != nil {
			return nil, err
		}
		return NewQueueMailer(queue, cfg.Mail.Queue), nil
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.Mail.Backend)
	}
}
