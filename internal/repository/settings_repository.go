package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"leadbot/internal/model"
)

// SettingsRepository stores the singleton bot settings row.
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetOrCreate returns the settings row, inserting defaults on first access.
func (r *SettingsRepository) GetOrCreate(ctx context.Context) (*model.Settings, error) {
	db := r.db.WithContext(ctx)
	var settings model.Settings
	err := db.First(&settings, model.SettingsID).Error
	if err == nil {
		return &settings, nil
	}
	if translate(err) != model.ErrNotFound {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	defaults := model.NewSettings()
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults).Error; err != nil {
		return nil, fmt.Errorf("create settings: %w", err)
	}
	if err := db.First(&settings, model.SettingsID).Error; err != nil {
		return nil, fmt.Errorf("reload settings: %w", err)
	}
	return &settings, nil
}

func (r *SettingsRepository) Update(ctx context.Context, upd model.SettingsUpdate) (*model.Settings, error) {
	if _, err := r.GetOrCreate(ctx); err != nil {
		return nil, err
	}
	cols := upd.Columns()
	db := r.db.WithContext(ctx)
	if len(cols) > 0 {
		if err := db.Model(&model.Settings{}).Where("id = ?", model.SettingsID).Updates(cols).Error; err != nil {
			return nil, fmt.Errorf("update settings: %w", err)
		}
	}
	var settings model.Settings
	if err := db.First(&settings, model.SettingsID).Error; err != nil {
		return nil, fmt.Errorf("reload settings: %w", err)
	}
	return &settings, nil
}

// ClearBroadcastIf empties the pending broadcast only while it still points at ref.
func (r *SettingsRepository) ClearBroadcastIf(ctx context.Context, ref model.MessageRef) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Settings{}).
		Where("id = ? AND broadcast_from_chat_id = ? AND broadcast_message_id = ?", model.SettingsID, ref.ChatID, ref.MessageID).
		Updates(map[string]interface{}{
			"broadcast_from_chat_id": gorm.Expr("NULL"),
			"broadcast_message_id":   gorm.Expr("NULL"),
		})
	if res.Error != nil {
		return false, fmt.Errorf("clear broadcast: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
