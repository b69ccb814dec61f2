package model

import (
	"testing"

	"github.com/AlekSi/pointer"
)

func TestPendingBroadcastRoundTrip(t *testing.T) {
	var s Settings
	if s.Pending().Staged() {
		t.Fatal("zero settings have a pending broadcast")
	}

	ref := MessageRef{ChatID: -100, MessageID: 7}
	s.SetPending(StagedBroadcast(ref))
	got, ok := s.Pending().Source()
	if !ok || got != ref {
		t.Fatalf("Pending() = %+v, %v", got, ok)
	}

	s.SetPending(NoPendingBroadcast())
	if s.BroadcastFromChatID != nil || s.BroadcastMessageID != nil {
		t.Fatal("clearing left pointer columns set")
	}
}

func TestPendingBroadcastNeedsBothColumns(t *testing.T) {
	s := Settings{BroadcastFromChatID: pointer.ToInt64(1)}
	if s.Pending().Staged() {
		t.Fatal("half-written pointer reported as staged")
	}
}

func TestSettingsUpdateColumns(t *testing.T) {
	none := NoPendingBroadcast()
	cols := SettingsUpdate{QuestionsEnabled: pointer.ToBool(false), Broadcast: &none}.Columns()

	if v, ok := cols["questions_enabled"]; !ok || v != false {
		t.Fatalf("questions_enabled = %v, %v", v, ok)
	}
	if v := cols["broadcast_from_chat_id"].(*int64); v != nil {
		t.Fatalf("broadcast_from_chat_id = %v", *v)
	}
	if _, ok := cols["greeting_text"]; ok {
		t.Fatal("unset field present in columns")
	}
}

func TestUserUpdate(t *testing.T) {
	if !(UserUpdate{}).Empty() {
		t.Fatal("zero update is not empty")
	}

	step := StepDone
	upd := UserUpdate{Job: pointer.ToString("dev"), Step: &step}
	cols := upd.Columns()
	if len(cols) != 2 || cols["job"] != "dev" || cols["step"] != "DONE" {
		t.Fatalf("Columns() = %v", cols)
	}

	u := User{Name: "Ali", Step: StepAskJob}
	upd.Apply(&u)
	if u.Name != "Ali" || u.Job != "dev" || u.Step != StepDone {
		t.Fatalf("Apply() = %+v", u)
	}
}

func TestPromptsFallBackToDefaults(t *testing.T) {
	s := Settings{GreetingText: "Hi", FinalMessage: "  "}
	p := s.Prompts()
	if p.Greeting != "Hi" || p.AskPhone != DefaultAskPhoneText || p.Final != DefaultFinalMessage {
		t.Fatalf("Prompts() = %+v", p)
	}
	if s.SubscribedMessage() != DefaultSubscribedMessage {
		t.Fatalf("SubscribedMessage() = %q", s.SubscribedMessage())
	}
}

func TestStepRank(t *testing.T) {
	order := []Step{StepAskName, StepAskPhone, StepAskJob, StepDone}
	for i, s := range order {
		if !s.Valid() || s.Rank() != i {
			t.Fatalf("%s: valid=%v rank=%d", s, s.Valid(), s.Rank())
		}
	}
	if Step("X").Valid() || Step("X").Rank() != -1 {
		t.Fatal("unknown step accepted")
	}
}
