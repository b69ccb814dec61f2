package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"leadbot/internal/bot"
	"leadbot/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Telegram webhook and the admin API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, configFlag(cmd), true)
			if err != nil {
				return err
			}
			defer a.Close()
			if addr != "" {
				a.cfg.HTTPAddr = addr
			}

			stopScheduler, err := a.startScheduler()
			if err != nil {
				return err
			}
			defer stopScheduler()

			webhook := bot.NewWebhookHandler(a.dispatcher(), a.cfg.WebhookSecret, a.log)
			router := server.NewRouter(webhook, a.adminHandler().Routes(), a.serverOptions(), a.log)

			a.log.Info("leadbot started", zap.String("mode", "webhook"))
			return server.Run(ctx, a.cfg.HTTPAddr, router, a.log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides HTTP_ADDR.")
	return cmd
}

func newPollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Receive updates by long polling and serve the admin API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := newApp(ctx, configFlag(cmd), true)
			if err != nil {
				return err
			}
			defer a.Close()

			stopScheduler, err := a.startScheduler()
			if err != nil {
				return err
			}
			defer stopScheduler()

			router := server.NewRouter(nil, a.adminHandler().Routes(), a.serverOptions(), a.log)
			httpErr := make(chan error, 1)
			go func() {
				httpErr <- server.Run(ctx, a.cfg.HTTPAddr, router, a.log)
				cancel()
			}()

			a.log.Info("leadbot started", zap.String("mode", "polling"))
			pollErr := bot.NewPoller(a.api, a.dispatcher(), a.log).Start(ctx)
			cancel()

			if err := <-httpErr; err != nil {
				return err
			}
			if pollErr != nil && !errors.Is(pollErr, context.Canceled) {
				return pollErr
			}
			return nil
		},
	}
}

func (a *app) serverOptions() server.Options {
	return server.Options{
		Addr:          a.cfg.HTTPAddr,
		PanelUser:     a.cfg.PanelUser,
		PanelPassword: a.cfg.PanelPassword,
	}
}

func (a *app) startScheduler() (func(), error) {
	s, err := a.scheduler()
	if err != nil || s == nil {
		return func() {}, err
	}
	s.Start()
	a.log.Info("admin reports scheduled", zap.Int("jobs", s.Len()))
	return s.Stop, nil
}
