package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"leadbot/internal/bot"
)

func newWebhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the Telegram webhook registration",
	}
	cmd.AddCommand(newWebhookSetCmd())
	cmd.AddCommand(newWebhookDeleteCmd())
	return cmd
}

func newWebhookSetCmd() *cobra.Command {
	var (
		url         string
		dropPending bool
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Point Telegram at WEBHOOK_URL (or --url)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), configFlag(cmd), true)
			if err != nil {
				return err
			}
			defer a.Close()

			if url == "" {
				url = a.cfg.WebhookURL
			}
			if url == "" {
				return fmt.Errorf("webhook url is empty, set WEBHOOK_URL or --url")
			}
			if a.api == nil {
				return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
			}
			if err := bot.SetWebhook(a.api, url, a.cfg.WebhookSecret, dropPending); err != nil {
				return fmt.Errorf("set webhook: %w", err)
			}
			a.log.Info("webhook registered")
			fmt.Fprintln(cmd.OutOrStdout(), "webhook set:", url)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Public URL of /api/telegram.")
	cmd.Flags().BoolVar(&dropPending, "drop-pending", false, "Discard updates queued on Telegram's side.")
	return cmd
}

func newWebhookDeleteCmd() *cobra.Command {
	var dropPending bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the Telegram webhook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), configFlag(cmd), true)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.api == nil {
				return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
			}
			if err := bot.DeleteWebhook(a.api, dropPending); err != nil {
				return fmt.Errorf("delete webhook: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "webhook deleted")
			return nil
		},
	}
	cmd.Flags().BoolVar(&dropPending, "drop-pending", false, "Discard updates queued on Telegram's side.")
	return cmd
}
