package pgstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"leadbot/internal/model"
)

const settingsColumns = `id, greeting_text, ask_phone_text, ask_job_text, final_message, questions_enabled,
	broadcast_from_chat_id, broadcast_message_id, created_at, updated_at`

// SettingsRepository stores the singleton settings row in PostgreSQL.
type SettingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) GetOrCreate(ctx context.Context) (*model.Settings, error) {
	d := model.NewSettings()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bot_settings (id, greeting_text, ask_phone_text, ask_job_text, final_message, questions_enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, d.ID, d.GreetingText, d.AskPhoneText, d.AskJobText, d.FinalMessage, d.QuestionsEnabled)
	if err != nil {
		return nil, fmt.Errorf("SettingsRepository.GetOrCreate: %w", err)
	}

	var settings model.Settings
	if err := r.db.GetContext(ctx, &settings, `SELECT `+settingsColumns+` FROM bot_settings WHERE id = $1`, model.SettingsID); err != nil {
		return nil, fmt.Errorf("SettingsRepository.GetOrCreate: %w", err)
	}
	return &settings, nil
}

func (r *SettingsRepository) Update(ctx context.Context, upd model.SettingsUpdate) (*model.Settings, error) {
	if _, err := r.GetOrCreate(ctx); err != nil {
		return nil, err
	}
	set, args := assignments(upd.Columns(), 1)
	if len(set) == 0 {
		return r.GetOrCreate(ctx)
	}
	args = append(args, model.SettingsID)
	query := fmt.Sprintf(`UPDATE bot_settings SET %s, updated_at = NOW() WHERE id = $%d RETURNING `+settingsColumns,
		strings.Join(set, ", "), len(args))

	var settings model.Settings
	if err := r.db.GetContext(ctx, &settings, query, args...); err != nil {
		return nil, fmt.Errorf("SettingsRepository.Update: %w", err)
	}
	return &settings, nil
}

func (r *SettingsRepository) ClearBroadcastIf(ctx context.Context, ref model.MessageRef) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bot_settings
		SET broadcast_from_chat_id = NULL, broadcast_message_id = NULL, updated_at = NOW()
		WHERE id = $1 AND broadcast_from_chat_id = $2 AND broadcast_message_id = $3
	`, model.SettingsID, ref.ChatID, ref.MessageID)
	if err != nil {
		return false, fmt.Errorf("SettingsRepository.ClearBroadcastIf: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("SettingsRepository.ClearBroadcastIf: %w", err)
	}
	return n > 0, nil
}
