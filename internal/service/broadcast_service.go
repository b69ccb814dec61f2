package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"leadbot/internal/model"
)

// BatchResult lists the Telegram IDs a fan-out reached and missed.
type BatchResult struct {
	Delivered []int64 `json:"delivered"`
	Failed    []int64 `json:"failed"`
}

// Sent is the number of successful deliveries.
func (r BatchResult) Sent() int {
	return len(r.Delivered)
}

// BroadcastService implements staging, confirming and cancelling admin broadcasts.
type BroadcastService struct {
	users     UserStore
	settings  SettingsStore
	messenger Messenger
	admin     AdminID
	log       *zap.Logger
}

func NewBroadcastService(users UserStore, settings SettingsStore, messenger Messenger, admin AdminID, log *zap.Logger) *BroadcastService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BroadcastService{
		users:     users,
		settings:  settings,
		messenger: messenger,
		admin:     admin,
		log:       log.Named("broadcast"),
	}
}

// Stage stores the admin's message as the broadcast candidate and asks for confirmation.
// A previously staged message is replaced.
func (s *BroadcastService) Stage(ctx context.Context, msg IncomingMessage) error {
	if !s.messenger.Configured() {
		s.notify(ctx, msg.ChatID, BroadcastNoToken)
		return nil
	}

	pending := model.StagedBroadcast(model.MessageRef{ChatID: msg.ChatID, MessageID: msg.MessageID})
	if _, err := s.settings.Update(ctx, model.SettingsUpdate{Broadcast: &pending}); err != nil {
		return fmt.Errorf("stage broadcast: %w", err)
	}
	s.log.Info("broadcast staged",
		zap.Int64("chat_id", msg.ChatID),
		zap.Int("message_id", msg.MessageID),
	)

	if err := s.messenger.SendWithButtons(ctx, msg.ChatID, BroadcastConfirmPrompt, BroadcastButtons); err != nil {
		s.log.Error("send confirmation keyboard", zap.Error(err))
		s.notify(ctx, msg.ChatID, BroadcastButtonsFailed)
	}
	return nil
}

// HandleCallback answers an inline button press.
func (s *BroadcastService) HandleCallback(ctx context.Context, cb IncomingCallback) error {
	// Answer first so the client stops its spinner whatever happens next.
	if cb.ID != "" {
		if err := s.messenger.AnswerCallback(ctx, cb.ID); err != nil {
			s.log.Warn("answer callback", zap.String("callback_id", cb.ID), zap.Error(err))
		}
	}

	if cb.Data == "" || cb.ChatID == 0 || cb.FromID == 0 {
		return nil
	}

	if !s.admin.Is(cb.FromID) {
		s.log.Warn("callback from non-admin", zap.Int64("telegram_id", cb.FromID), zap.String("data", cb.Data))
		s.notify(ctx, cb.ChatID, BroadcastAdminOnly)
		return nil
	}

	switch cb.Data {
	case CallbackBroadcastYes:
		return s.confirm(ctx, cb.ChatID)
	case CallbackBroadcastNo:
		return s.cancel(ctx, cb.ChatID)
	default:
		return nil
	}
}

func (s *BroadcastService) confirm(ctx context.Context, adminChatID int64) error {
	settings, err := s.settings.GetOrCreate(ctx)
	if err != nil {
		return err
	}
	ref, ok := settings.Pending().Source()
	if !ok {
		s.notify(ctx, adminChatID, BroadcastNothingStaged)
		return nil
	}
	if !s.messenger.Configured() {
		s.log.Error("bot token missing, cannot broadcast")
		s.notify(ctx, adminChatID, BroadcastConfigError)
		return nil
	}

	users, err := s.users.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	result := s.Fanout(ctx, ref, users)

	// A message staged while the loop ran stays pending.
	cleared, err := s.settings.ClearBroadcastIf(ctx, ref)
	if err != nil {
		s.log.Error("clear broadcast", zap.Error(err))
	} else if !cleared {
		s.log.Info("broadcast restaged during fan-out, keeping new candidate")
	}

	s.log.Info("broadcast finished",
		zap.Int("users", len(users)),
		zap.Int("delivered", len(result.Delivered)),
		zap.Int("failed", len(result.Failed)),
	)
	s.notify(ctx, adminChatID, fmt.Sprintf(BroadcastSentReport, result.Sent()))
	return nil
}

func (s *BroadcastService) cancel(ctx context.Context, adminChatID int64) error {
	none := model.NoPendingBroadcast()
	if _, err := s.settings.Update(ctx, model.SettingsUpdate{Broadcast: &none}); err != nil {
		return fmt.Errorf("cancel broadcast: %w", err)
	}
	s.log.Info("broadcast cancelled")
	s.notify(ctx, adminChatID, BroadcastCancelled)
	return nil
}

// Fanout copies ref to every user in order. Failures are logged and the loop goes on.
func (s *BroadcastService) Fanout(ctx context.Context, ref model.MessageRef, users []model.User) BatchResult {
	var result BatchResult
	for _, u := range users {
		if err := s.messenger.CopyMessage(ctx, u.TelegramID, ref.ChatID, ref.MessageID); err != nil {
			s.log.Warn("copy message", zap.Uint("user_id", u.ID), zap.Int64("telegram_id", u.TelegramID), zap.Error(err))
			result.Failed = append(result.Failed, u.TelegramID)
			continue
		}
		result.Delivered = append(result.Delivered, u.TelegramID)
	}
	return result
}

func (s *BroadcastService) notify(ctx context.Context, chatID int64, text string) {
	if err := s.messenger.SendText(ctx, chatID, text); err != nil {
		s.log.Error("send notice", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
