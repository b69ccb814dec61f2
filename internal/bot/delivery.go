package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"leadbot/internal/service"
)

// Delivery sends outbound calls through the Telegram Bot API.
// A Delivery without an API client reports service.ErrNotConfigured.
type Delivery struct {
	api *tgbotapi.BotAPI
}

func NewDelivery(api *tgbotapi.BotAPI) *Delivery {
	return &Delivery{api: api}
}

func (d *Delivery) Configured() bool {
	return d != nil && d.api != nil
}

func (d *Delivery) SendText(ctx context.Context, chatID int64, text string) error {
	if err := d.ready(ctx); err != nil {
		return err
	}
	_, err := d.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (d *Delivery) CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error {
	if err := d.ready(ctx); err != nil {
		return err
	}
	_, err := d.api.CopyMessage(tgbotapi.NewCopyMessage(toChatID, fromChatID, messageID))
	return err
}

func (d *Delivery) AnswerCallback(ctx context.Context, callbackID string) error {
	if err := d.ready(ctx); err != nil {
		return err
	}
	_, err := d.api.Request(tgbotapi.NewCallback(callbackID, ""))
	return err
}

func (d *Delivery) SendWithButtons(ctx context.Context, chatID int64, text string, buttons []service.Button) error {
	if err := d.ready(ctx); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = inlineKeyboard(buttons)
	_, err := d.api.Send(msg)
	return err
}

func (d *Delivery) ready(ctx context.Context) error {
	if !d.Configured() {
		return service.ErrNotConfigured
	}
	return ctx.Err()
}

// inlineKeyboard lays buttons out on a single row.
func inlineKeyboard(buttons []service.Button) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Code))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}
