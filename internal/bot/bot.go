package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// NewAPI authorizes token against Telegram. An empty token yields a nil
// client, which Delivery treats as unconfigured.
func NewAPI(token string, log *zap.Logger) (*tgbotapi.BotAPI, error) {
	if token == "" {
		log.Warn("TELEGRAM_BOT_TOKEN is not set, outbound messages are disabled")
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	log.Info("bot authorized", zap.String("account", api.Self.UserName))
	return api, nil
}

// Poller feeds long-polled updates to a handler, for running without a public URL.
type Poller struct {
	api     *tgbotapi.BotAPI
	updates UpdateHandler
	log     *zap.Logger
}

func NewPoller(api *tgbotapi.BotAPI, updates UpdateHandler, log *zap.Logger) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{api: api, updates: updates, log: log.Named("poller")}
}

// Start begins polling updates until ctx is cancelled.
func (p *Poller) Start(ctx context.Context) error {
	if p.api == nil {
		return fmt.Errorf("polling requires TELEGRAM_BOT_TOKEN")
	}

	// getUpdates is refused while a webhook is registered.
	if err := DeleteWebhook(p.api, false); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := p.api.GetUpdatesChan(updateConfig)

	p.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		p.api.StopReceivingUpdates()
	}()

	for update := range updates {
		p.dispatch(ctx, update)
	}

	p.log.Info("polling stopped")
	return nil
}

// dispatch hands one update over. A shutdown stops polling but lets the
// update in flight, a broadcast fan-out included, run to completion.
func (p *Poller) dispatch(ctx context.Context, update tgbotapi.Update) {
	p.updates.HandleUpdate(context.WithoutCancel(ctx), update)
}
