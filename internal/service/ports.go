package service

import (
	"context"
	"errors"

	"leadbot/internal/model"
)

// ErrNotConfigured is returned by a Messenger that has no bot credential.
var ErrNotConfigured = errors.New("messenger not configured")

// Button is a single inline keyboard button.
type Button struct {
	Label string
	Code  string
}

// Messenger delivers outbound Telegram calls.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID string) error
	SendWithButtons(ctx context.Context, chatID int64, text string, buttons []Button) error
	Configured() bool
}

// UserStore persists funnel users.
type UserStore interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, id uint, upd model.UserUpdate) (*model.User, error)
	Upsert(ctx context.Context, telegramID int64, create model.User, upd model.UserUpdate) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	ListByIDs(ctx context.Context, ids []uint) ([]model.User, error)
}

// SettingsStore persists the singleton settings row.
type SettingsStore interface {
	GetOrCreate(ctx context.Context) (*model.Settings, error)
	Update(ctx context.Context, upd model.SettingsUpdate) (*model.Settings, error)
	ClearBroadcastIf(ctx context.Context, ref model.MessageRef) (bool, error)
}

// Sender identifies the Telegram account behind an update.
type Sender struct {
	TelegramID int64
	Username   string
}

// IncomingMessage is a message or edited message from a private chat.
type IncomingMessage struct {
	From      Sender
	ChatID    int64
	MessageID int
	Text      string
}

// IncomingCallback is an inline button press. Zero values mean the field was absent.
type IncomingCallback struct {
	ID     string
	FromID int64
	ChatID int64
	Data   string
}

// AdminID is the configured admin Telegram identity; zero means no admin.
type AdminID int64

// Is reports whether telegramID is the admin.
func (a AdminID) Is(telegramID int64) bool {
	return a != 0 && int64(a) == telegramID
}
