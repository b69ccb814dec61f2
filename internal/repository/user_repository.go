package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"leadbot/internal/model"
)

// UserRepository handles CRUD for funnel users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Create inserts user. A concurrent insert of the same TelegramID yields model.ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if err = translate(err); err == model.ErrDuplicate {
			return err
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, id uint, upd model.UserUpdate) (*model.User, error) {
	db := r.db.WithContext(ctx)
	if !upd.Empty() {
		res := db.Model(&model.User{}).Where("id = ?", id).Updates(upd.Columns())
		if res.Error != nil {
			return nil, fmt.Errorf("update user: %w", translate(res.Error))
		}
		if res.RowsAffected == 0 {
			return nil, model.ErrNotFound
		}
	}
	var user model.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Upsert inserts create when no row has telegramID, otherwise applies upd to the existing row.
func (r *UserRepository) Upsert(ctx context.Context, telegramID int64, create model.User, upd model.UserUpdate) (*model.User, error) {
	create.TelegramID = telegramID
	db := r.db.WithContext(ctx)

	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "telegram_id"}},
	}
	if upd.Empty() {
		onConflict.DoNothing = true
	} else {
		cols := upd.Columns()
		cols["updated_at"] = gorm.Expr("CURRENT_TIMESTAMP")
		onConflict.DoUpdates = clause.Assignments(cols)
	}

	if err := db.Clauses(onConflict).Create(&create).Error; err != nil {
		return nil, fmt.Errorf("upsert user: %w", translate(err))
	}
	return r.FindByTelegramID(ctx, telegramID)
}

func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) ListByIDs(ctx context.Context, ids []uint) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []model.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
