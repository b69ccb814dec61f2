package service

import (
	"context"
	"strings"

	"github.com/AlekSi/pointer"

	"leadbot/internal/model"
)

// PromptSettings is the admin-editable part of the settings row.
type PromptSettings struct {
	GreetingText     string `json:"greetingText"`
	AskPhoneText     string `json:"askPhoneText"`
	AskJobText       string `json:"askJobText"`
	FinalMessage     string `json:"finalMessage"`
	QuestionsEnabled bool   `json:"questionsEnabled"`
}

// SettingsService reads and edits the bot settings for the admin console.
type SettingsService struct {
	store SettingsStore
}

func NewSettingsService(store SettingsStore) *SettingsService {
	return &SettingsService{store: store}
}

func (s *SettingsService) Get(ctx context.Context) (PromptSettings, error) {
	settings, err := s.store.GetOrCreate(ctx)
	if err != nil {
		return PromptSettings{}, err
	}
	return toPromptSettings(settings), nil
}

// Save trims the prompts and replaces empty ones with the defaults.
// The pending broadcast is left alone.
func (s *SettingsService) Save(ctx context.Context, in PromptSettings) (PromptSettings, error) {
	upd := model.SettingsUpdate{
		GreetingText:     pointer.ToString(trimOr(in.GreetingText, model.DefaultGreetingText)),
		AskPhoneText:     pointer.ToString(trimOr(in.AskPhoneText, model.DefaultAskPhoneText)),
		AskJobText:       pointer.ToString(trimOr(in.AskJobText, model.DefaultAskJobText)),
		FinalMessage:     pointer.ToString(trimOr(in.FinalMessage, model.DefaultFinalMessage)),
		QuestionsEnabled: pointer.ToBool(in.QuestionsEnabled),
	}
	settings, err := s.store.Update(ctx, upd)
	if err != nil {
		return PromptSettings{}, err
	}
	return toPromptSettings(settings), nil
}

func toPromptSettings(s *model.Settings) PromptSettings {
	return PromptSettings{
		GreetingText:     s.GreetingText,
		AskPhoneText:     s.AskPhoneText,
		AskJobText:       s.AskJobText,
		FinalMessage:     s.FinalMessage,
		QuestionsEnabled: s.QuestionsEnabled,
	}
}

func trimOr(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
