/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/donelist/apiserver/config"
	"github.com/donelist/apiserver/internal/mail"
	"github.com/spf13/cobra"
)

// mailworkerCmd represents the mailworker command. It consumes queued
// emails and delivers them over SMTP; it only makes sense when the server
// runs with MAIL_BACKEND=rabbitmq or pubsub.
var mailworkerCmd = &cobra.Command{
	Use:   "mailworker",
	Short: "Deliver queued outbound email over SMTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		var queue mail.Queue
		switch cfg.Mail.Backend {
		case "rabbitmq":
			queue, err = mail.NewRabbitMQQueue(cfg.Mail.RabbitMQ)
		case "pubsub":
			queue, err = mail.NewPubSubQueue(cmd.Context(), cfg.Mail.PubSub)
		default:
			return errors.New("mailworker requires MAIL_BACKEND=rabbitmq or pubsub")
		}
		if err != nil {
			return err
		}
		defer func() {
			_ = queue.Close()
		}()

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		relay := mail.NewRelay(queue, cfg.Mail.Queue, mail.NewSMTPMailer(cfg.Email), logger)

		logger.Info("mailworker started", "backend", cfg.Mail.Backend, "queue", cfg.Mail.Queue)
		if err := relay.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mailworkerCmd)
}
