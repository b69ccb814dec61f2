package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"leadbot/internal/model"
)

var (
	// ErrEmptyText rejects a direct message without text.
	ErrEmptyText = errors.New("message text is empty")
	// ErrNoRecipients rejects a direct message without recipients.
	ErrNoRecipients = errors.New("no recipients selected")
)

// DirectMessage is a text the operator sends from the admin console.
type DirectMessage struct {
	UserIDs []uint
	All     bool
	Text    string
}

// UserService backs the admin console user list, direct messages and export.
type UserService struct {
	users     UserStore
	messenger Messenger
	log       *zap.Logger
}

func NewUserService(users UserStore, messenger Messenger, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{users: users, messenger: messenger, log: log.Named("users")}
}

// List returns every user, newest first.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.ListAll(ctx)
}

// Send delivers msg.Text to the selected users one by one.
func (s *UserService) Send(ctx context.Context, msg DirectMessage) (BatchResult, error) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return BatchResult{}, ErrEmptyText
	}
	if !msg.All && len(msg.UserIDs) == 0 {
		return BatchResult{}, ErrNoRecipients
	}
	if !s.messenger.Configured() {
		return BatchResult{}, ErrNotConfigured
	}

	var (
		recipients []model.User
		err        error
	)
	if msg.All {
		recipients, err = s.users.ListAll(ctx)
	} else {
		recipients, err = s.users.ListByIDs(ctx, msg.UserIDs)
	}
	if err != nil {
		return BatchResult{}, fmt.Errorf("load recipients: %w", err)
	}

	var result BatchResult
	for _, u := range recipients {
		if err := s.messenger.SendText(ctx, u.TelegramID, text); err != nil {
			s.log.Warn("send direct message", zap.Int64("telegram_id", u.TelegramID), zap.Error(err))
			result.Failed = append(result.Failed, u.TelegramID)
			continue
		}
		result.Delivered = append(result.Delivered, u.TelegramID)
	}
	s.log.Info("direct message sent",
		zap.Int("recipients", len(recipients)),
		zap.Int("delivered", len(result.Delivered)),
	)
	return result, nil
}

var exportHeader = []string{"id", "telegram_id", "username", "name", "phone", "job", "step", "created_at"}

// ExportCSV writes all users as CSV.
func (s *UserService) ExportCSV(ctx context.Context, w io.Writer) error {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, u := range users {
		row := []string{
			strconv.FormatUint(uint64(u.ID), 10),
			strconv.FormatInt(u.TelegramID, 10),
			u.Username,
			u.Name,
			u.Phone,
			u.Job,
			u.Step.String(),
			u.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
