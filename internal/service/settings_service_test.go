package service

import (
	"context"
	"testing"

	"leadbot/internal/model"
)

func TestSettingsSaveNormalizes(t *testing.T) {
	ctx := context.Background()
	store := newFakeSettings()
	svc := NewSettingsService(store)

	saved, err := svc.Save(ctx, PromptSettings{
		GreetingText:     "  Salom!  ",
		AskPhoneText:     "",
		AskJobText:       "\t",
		FinalMessage:     "Rahmat",
		QuestionsEnabled: false,
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	want := PromptSettings{
		GreetingText:     "Salom!",
		AskPhoneText:     model.DefaultAskPhoneText,
		AskJobText:       model.DefaultAskJobText,
		FinalMessage:     "Rahmat",
		QuestionsEnabled: false,
	}
	if saved != want {
		t.Fatalf("Save() = %+v, want %+v", saved, want)
	}

	got, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != want {
		t.Fatalf("Get() = %+v, want %+v", got, want)
	}
}

func TestSettingsSaveKeepsPendingBroadcast(t *testing.T) {
	ctx := context.Background()
	store := newFakeSettings()
	ref := model.MessageRef{ChatID: 1, MessageID: 2}
	store.set(func(s *model.Settings) { s.SetPending(model.StagedBroadcast(ref)) })

	if _, err := NewSettingsService(store).Save(ctx, PromptSettings{QuestionsEnabled: true}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got, ok := store.pending().Source(); !ok || got != ref {
		t.Fatalf("pending = %+v, staged = %v", got, ok)
	}
}

func TestSettingsGetDefaults(t *testing.T) {
	got, err := NewSettingsService(newFakeSettings()).Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.GreetingText != model.DefaultGreetingText || !got.QuestionsEnabled {
		t.Fatalf("Get() = %+v", got)
	}
}
