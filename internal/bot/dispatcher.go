package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"leadbot/internal/service"
)

// MessageHandler runs the registration funnel.
type MessageHandler interface {
	Handle(ctx context.Context, msg service.IncomingMessage) error
}

// BroadcastHandler runs the admin broadcast protocol.
type BroadcastHandler interface {
	Stage(ctx context.Context, msg service.IncomingMessage) error
	HandleCallback(ctx context.Context, cb service.IncomingCallback) error
}

// UpdateHandler consumes one Telegram update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// Dispatcher routes every update to the funnel or the broadcast protocol.
type Dispatcher struct {
	funnel    MessageHandler
	broadcast BroadcastHandler
	messenger service.Messenger
	admin     service.AdminID
	log       *zap.Logger
}

func NewDispatcher(funnel MessageHandler, broadcast BroadcastHandler, messenger service.Messenger, admin service.AdminID, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		funnel:    funnel,
		broadcast: broadcast,
		messenger: messenger,
		admin:     admin,
		log:       log.Named("dispatcher"),
	}
}

// HandleUpdate never fails: errors are logged and, for messages, reported to the chat.
func (d *Dispatcher) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	log := d.log.With(zap.String("request_id", uuid.NewString()), zap.Int("update_id", update.UpdateID))

	switch {
	case update.CallbackQuery != nil:
		d.handleCallback(ctx, log, update.CallbackQuery)
	case update.Message != nil:
		d.handleMessage(ctx, log, update.Message)
	case update.EditedMessage != nil:
		d.handleMessage(ctx, log, update.EditedMessage)
	default:
		log.Debug("ignored update")
	}
}

func (d *Dispatcher) handleCallback(ctx context.Context, log *zap.Logger, cq *tgbotapi.CallbackQuery) {
	defer d.recoverPanic(ctx, log, 0)

	cb := service.IncomingCallback{ID: cq.ID, Data: cq.Data}
	if cq.From != nil {
		cb.FromID = cq.From.ID
	}
	if cq.Message != nil && cq.Message.Chat != nil {
		cb.ChatID = cq.Message.Chat.ID
	}
	log.Debug("callback", zap.Int64("telegram_id", cb.FromID), zap.String("data", cb.Data))

	if err := d.broadcast.HandleCallback(ctx, cb); err != nil {
		log.Error("handle callback", zap.Error(err))
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, log *zap.Logger, m *tgbotapi.Message) {
	if m.From == nil || m.Chat == nil {
		return
	}
	chatID := m.Chat.ID
	defer d.recoverPanic(ctx, log, chatID)

	msg := service.IncomingMessage{
		From:      service.Sender{TelegramID: m.From.ID, Username: m.From.UserName},
		ChatID:    chatID,
		MessageID: m.MessageID,
		Text:      m.Text,
	}
	log = log.With(zap.Int64("telegram_id", msg.From.TelegramID))

	var err error
	if d.admin.Is(msg.From.TelegramID) && !service.IsStartCommand(msg.Text) {
		log.Debug("admin message")
		err = d.broadcast.Stage(ctx, msg)
	} else {
		err = d.funnel.Handle(ctx, msg)
	}
	if err != nil {
		log.Error("handle message", zap.Error(err))
		d.notifyFailure(ctx, log, chatID)
	}
}

func (d *Dispatcher) recoverPanic(ctx context.Context, log *zap.Logger, chatID int64) {
	r := recover()
	if r == nil {
		return
	}
	log.Error("panic in update handler", zap.Error(fmt.Errorf("%v", r)), zap.Stack("stack"))
	if chatID != 0 {
		d.notifyFailure(ctx, log, chatID)
	}
}

func (d *Dispatcher) notifyFailure(ctx context.Context, log *zap.Logger, chatID int64) {
	if !d.messenger.Configured() {
		return
	}
	if err := d.messenger.SendText(ctx, chatID, service.ServerErrorNotice); err != nil {
		log.Error("send error notice", zap.Error(err))
	}
}
