package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"leadbot/internal/model"
)

// Summary aggregates funnel progress for the admin.
type Summary struct {
	Total            int            `json:"total"`
	Completed        int            `json:"completed"`
	InProgress       int            `json:"inProgress"`
	NewSince         int            `json:"newSince"`
	ByStep           map[string]int `json:"byStep"`
	QuestionsEnabled bool           `json:"questionsEnabled"`
	BroadcastStaged  bool           `json:"broadcastStaged"`
	GeneratedAt      time.Time      `json:"generatedAt"`
}

// ReportService builds admin summaries and delivers them to the admin chat.
type ReportService struct {
	users     UserStore
	settings  SettingsStore
	messenger Messenger
	admin     AdminID
	window    time.Duration
	log       *zap.Logger
}

// NewReportService counts users created within window as new.
func NewReportService(users UserStore, settings SettingsStore, messenger Messenger, admin AdminID, window time.Duration, log *zap.Logger) *ReportService {
	if log == nil {
		log = zap.NewNop()
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &ReportService{
		users:     users,
		settings:  settings,
		messenger: messenger,
		admin:     admin,
		window:    window,
		log:       log.Named("report"),
	}
}

func (s *ReportService) Summary(ctx context.Context, now time.Time) (Summary, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return Summary{}, err
	}
	settings, err := s.settings.GetOrCreate(ctx)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{
		Total:            len(users),
		ByStep:           make(map[string]int),
		QuestionsEnabled: settings.QuestionsEnabled,
		BroadcastStaged:  settings.Pending().Staged(),
		GeneratedAt:      now,
	}
	since := now.Add(-s.window)
	for _, u := range users {
		sum.ByStep[u.Step.String()]++
		if u.Step == model.StepDone {
			sum.Completed++
		} else {
			sum.InProgress++
		}
		if u.CreatedAt.After(since) {
			sum.NewSince++
		}
	}
	return sum, nil
}

// FormatSummary renders sum as a plain-text chat message.
func FormatSummary(sum Summary) string {
	var b strings.Builder
	b.WriteString("📋 Hisobot\n")
	b.WriteString(fmt.Sprintf("🗓 %s\n\n", sum.GeneratedAt.Format("02.01.2006 15:04")))
	b.WriteString(fmt.Sprintf("Jami foydalanuvchilar: %d\n", sum.Total))
	b.WriteString(fmt.Sprintf("Ro'yxatdan o'tganlar: %d\n", sum.Completed))
	b.WriteString(fmt.Sprintf("Jarayonda: %d\n", sum.InProgress))
	b.WriteString(fmt.Sprintf("Yangi: %d\n", sum.NewSince))
	if !sum.QuestionsEnabled {
		b.WriteString("Savollar o'chirilgan.\n")
	}
	if sum.BroadcastStaged {
		b.WriteString("Tasdiqlanmagan xabar kutilmoqda.\n")
	}
	return strings.TrimSpace(b.String())
}

// SendToAdmin delivers the current summary to the admin chat.
func (s *ReportService) SendToAdmin(ctx context.Context, now time.Time) error {
	if s.admin == 0 {
		return fmt.Errorf("admin id is not configured")
	}
	if !s.messenger.Configured() {
		return ErrNotConfigured
	}
	sum, err := s.Summary(ctx, now)
	if err != nil {
		return fmt.Errorf("build summary: %w", err)
	}
	if err := s.messenger.SendText(ctx, int64(s.admin), FormatSummary(sum)); err != nil {
		return fmt.Errorf("send summary: %w", err)
	}
	s.log.Info("report sent", zap.Int("total", sum.Total), zap.Int("completed", sum.Completed))
	return nil
}
