package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlekSi/pointer"
	"go.uber.org/zap"

	"leadbot/internal/model"
)

// Field names the user attribute a funnel step collects.
type Field int

const (
	FieldNone Field = iota
	FieldName
	FieldPhone
	FieldJob
)

// Transition is the outcome of one funnel step.
type Transition struct {
	From  model.Step
	To    model.Step
	Field Field
	Value string
	Reply string
}

// Update converts the transition into a store update.
func (t Transition) Update() model.UserUpdate {
	var upd model.UserUpdate
	switch t.Field {
	case FieldName:
		upd.Name = pointer.ToString(t.Value)
	case FieldPhone:
		upd.Phone = pointer.ToString(t.Value)
	case FieldJob:
		upd.Job = pointer.ToString(t.Value)
	}
	if t.To != t.From {
		to := t.To
		upd.Step = &to
	}
	return upd
}

// Advance computes the next funnel step for text received at step.
// It returns false for steps it does not know.
func Advance(step model.Step, text string, prompts model.Prompts) (Transition, bool) {
	t := Transition{From: step, Value: text}
	switch step {
	case model.StepAskName:
		t.To, t.Field, t.Reply = model.StepAskPhone, FieldName, prompts.AskPhone
	case model.StepAskPhone:
		t.To, t.Field, t.Reply = model.StepAskJob, FieldPhone, prompts.AskJob
	case model.StepAskJob:
		t.To, t.Field, t.Reply = model.StepDone, FieldJob, prompts.Final
	case model.StepDone:
		t.To, t.Field, t.Value, t.Reply = model.StepDone, FieldNone, "", AlreadyRegisteredNotice
	default:
		return Transition{}, false
	}
	return t, true
}

// IsStartCommand reports whether text is /start, optionally addressed to the bot or carrying a payload.
func IsStartCommand(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	cmd := fields[0]
	return cmd == StartCommand || strings.HasPrefix(cmd, StartCommand+"@")
}

// FunnelService drives the name, phone, job registration dialog.
type FunnelService struct {
	users     UserStore
	settings  SettingsStore
	messenger Messenger
	log       *zap.Logger
}

func NewFunnelService(users UserStore, settings SettingsStore, messenger Messenger, log *zap.Logger) *FunnelService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FunnelService{users: users, settings: settings, messenger: messenger, log: log.Named("funnel")}
}

// Handle processes one inbound message from a non-admin sender, or /start from anyone.
func (s *FunnelService) Handle(ctx context.Context, msg IncomingMessage) error {
	settings, err := s.settings.GetOrCreate(ctx)
	if err != nil {
		return err
	}

	if IsStartCommand(msg.Text) {
		return s.start(ctx, msg, settings)
	}

	if !settings.QuestionsEnabled {
		// Register silently so a disabled funnel never spams the chat.
		_, err := s.users.Upsert(ctx, msg.From.TelegramID, doneUser(msg.From), model.UserUpdate{
			Username: pointer.ToString(msg.From.Username),
			Step:     stepPtr(model.StepDone),
		})
		return err
	}

	user, err := s.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	user = s.refreshUsername(ctx, user, msg.From.Username)

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		s.reply(ctx, msg.ChatID, TextOnlyNotice)
		return nil
	}

	t, ok := Advance(user.Step, text, settings.Prompts())
	if !ok {
		s.log.Warn("unknown funnel step",
			zap.Int64("telegram_id", user.TelegramID),
			zap.String("step", user.Step.String()),
		)
		return nil
	}

	if upd := t.Update(); !upd.Empty() {
		if _, err := s.users.Update(ctx, user.ID, upd); err != nil {
			return fmt.Errorf("advance %s: %w", t.From, err)
		}
	}
	if t.From != t.To {
		s.log.Info("funnel step",
			zap.Int64("telegram_id", user.TelegramID),
			zap.String("from", t.From.String()),
			zap.String("to", t.To.String()),
		)
	}

	s.reply(ctx, msg.ChatID, t.Reply)
	return nil
}

func (s *FunnelService) start(ctx context.Context, msg IncomingMessage, settings *model.Settings) error {
	username := pointer.ToString(msg.From.Username)

	if !settings.QuestionsEnabled {
		if _, err := s.users.Upsert(ctx, msg.From.TelegramID, doneUser(msg.From), model.UserUpdate{
			Username: username,
			Step:     stepPtr(model.StepDone),
		}); err != nil {
			return err
		}
		s.reply(ctx, msg.ChatID, settings.SubscribedMessage())
		return nil
	}

	// /start always restarts the funnel, whatever was collected before.
	empty := pointer.ToString("")
	create := model.User{Username: msg.From.Username, Step: model.StepAskName}
	if _, err := s.users.Upsert(ctx, msg.From.TelegramID, create, model.UserUpdate{
		Username: username,
		Name:     empty,
		Phone:    empty,
		Job:      empty,
		Step:     stepPtr(model.StepAskName),
	}); err != nil {
		return err
	}
	s.log.Info("funnel started", zap.Int64("telegram_id", msg.From.TelegramID))

	s.reply(ctx, msg.ChatID, settings.Prompts().Greeting)
	return nil
}

// ensureUser loads the sender, creating an ASK_NAME record on first contact.
func (s *FunnelService) ensureUser(ctx context.Context, from Sender) (*model.User, error) {
	user, err := s.users.FindByTelegramID(ctx, from.TelegramID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	user = &model.User{TelegramID: from.TelegramID, Username: from.Username, Step: model.StepAskName}
	err = s.users.Create(ctx, user)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, model.ErrDuplicate):
		// Lost a first-contact race; the other insert wins.
		return s.users.FindByTelegramID(ctx, from.TelegramID)
	default:
		return nil, err
	}
}

func (s *FunnelService) refreshUsername(ctx context.Context, user *model.User, username string) *model.User {
	if user.Username == username {
		return user
	}
	updated, err := s.users.Update(ctx, user.ID, model.UserUpdate{Username: pointer.ToString(username)})
	if err != nil {
		s.log.Warn("could not update username", zap.Int64("telegram_id", user.TelegramID), zap.Error(err))
		return user
	}
	return updated
}

func (s *FunnelService) reply(ctx context.Context, chatID int64, text string) {
	if err := s.messenger.SendText(ctx, chatID, text); err != nil {
		s.log.Error("send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func doneUser(from Sender) model.User {
	return model.User{TelegramID: from.TelegramID, Username: from.Username, Step: model.StepDone}
}

func stepPtr(s model.Step) *model.Step {
	return &s
}
