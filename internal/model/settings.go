package model

import (
	"strings"
	"time"
)

// SettingsID is the primary key of the singleton settings row.
const SettingsID uint = 1

const (
	DefaultGreetingText = "Assalomu alaykum! Ismingizni kiriting:"
	DefaultAskPhoneText = "Telefon raqamingizni kiriting (masalan: +99890xxxxxxx):"
	DefaultAskJobText   = "Kasbingiz yoki nima ish qilishingizni yozing:"
	DefaultFinalMessage = "Rahmat! Siz ro'yxatdan o'tdingiz. Menejerlarimiz siz bilan bog'lanishadi."
	// DefaultSubscribedMessage replaces an empty final message when questions are off.
	DefaultSubscribedMessage = "Rahmat! Siz ro'yxatga olindingiz. Yangiliklar bo'yicha shu bot orqali xabar beramiz."
)

// Settings is the single configuration row shared by the bot and the admin console.
type Settings struct {
	ID                  uint      `gorm:"primaryKey" db:"id"`
	GreetingText        string    `db:"greeting_text"`
	AskPhoneText        string    `db:"ask_phone_text"`
	AskJobText          string    `db:"ask_job_text"`
	FinalMessage        string    `db:"final_message"`
	QuestionsEnabled    bool      `db:"questions_enabled"`
	BroadcastFromChatID *int64    `db:"broadcast_from_chat_id"`
	BroadcastMessageID  *int      `db:"broadcast_message_id"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

// TableName keeps the table name stable across store backends.
func (Settings) TableName() string {
	return "bot_settings"
}

// NewSettings returns the row inserted on first access.
func NewSettings() Settings {
	return Settings{
		ID:               SettingsID,
		GreetingText:     DefaultGreetingText,
		AskPhoneText:     DefaultAskPhoneText,
		AskJobText:       DefaultAskJobText,
		FinalMessage:     DefaultFinalMessage,
		QuestionsEnabled: true,
	}
}

// Prompts resolves the prompt texts with defaults applied.
func (s *Settings) Prompts() Prompts {
	return Prompts{
		Greeting: orDefault(s.GreetingText, DefaultGreetingText),
		AskPhone: orDefault(s.AskPhoneText, DefaultAskPhoneText),
		AskJob:   orDefault(s.AskJobText, DefaultAskJobText),
		Final:    orDefault(s.FinalMessage, DefaultFinalMessage),
	}
}

// SubscribedMessage is what a user gets on /start while questions are off.
func (s *Settings) SubscribedMessage() string {
	return orDefault(s.FinalMessage, DefaultSubscribedMessage)
}

// Pending returns the staged broadcast, if any.
func (s *Settings) Pending() PendingBroadcast {
	if s.BroadcastFromChatID == nil || s.BroadcastMessageID == nil {
		return NoPendingBroadcast()
	}
	return StagedBroadcast(MessageRef{ChatID: *s.BroadcastFromChatID, MessageID: *s.BroadcastMessageID})
}

// SetPending stores p into the nullable pointer columns.
func (s *Settings) SetPending(p PendingBroadcast) {
	ref, ok := p.Source()
	if !ok {
		s.BroadcastFromChatID = nil
		s.BroadcastMessageID = nil
		return
	}
	chatID, messageID := ref.ChatID, ref.MessageID
	s.BroadcastFromChatID = &chatID
	s.BroadcastMessageID = &messageID
}

// Prompts are the four funnel texts.
type Prompts struct {
	Greeting string
	AskPhone string
	AskJob   string
	Final    string
}

// SettingsUpdate is a partial settings update; nil fields are left untouched.
type SettingsUpdate struct {
	GreetingText     *string
	AskPhoneText     *string
	AskJobText       *string
	FinalMessage     *string
	QuestionsEnabled *bool
	Broadcast        *PendingBroadcast
}

// Columns returns the update as a column map.
func (u SettingsUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if u.GreetingText != nil {
		cols["greeting_text"] = *u.GreetingText
	}
	if u.AskPhoneText != nil {
		cols["ask_phone_text"] = *u.AskPhoneText
	}
	if u.AskJobText != nil {
		cols["ask_job_text"] = *u.AskJobText
	}
	if u.FinalMessage != nil {
		cols["final_message"] = *u.FinalMessage
	}
	if u.QuestionsEnabled != nil {
		cols["questions_enabled"] = *u.QuestionsEnabled
	}
	if u.Broadcast != nil {
		var tmp Settings
		tmp.SetPending(*u.Broadcast)
		cols["broadcast_from_chat_id"] = tmp.BroadcastFromChatID
		cols["broadcast_message_id"] = tmp.BroadcastMessageID
	}
	return cols
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
