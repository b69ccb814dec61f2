package pgstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"leadbot/internal/model"
)

const userColumns = `id, telegram_id, username, name, phone, job, step, created_at, updated_at`

// UserRepository stores funnel users in PostgreSQL.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO users (telegram_id, username, name, phone, job, step)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`,
		user.TelegramID,
		user.Username,
		user.Name,
		user.Phone,
		user.Job,
		string(user.Step),
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err = translate(err); err == model.ErrDuplicate {
			return err
		}
		return fmt.Errorf("UserRepository.Create: %w", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, id uint, upd model.UserUpdate) (*model.User, error) {
	set, args := assignments(upd.Columns(), 1)
	var user model.User
	var err error
	if len(set) == 0 {
		err = r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	} else {
		args = append(args, id)
		query := fmt.Sprintf(`UPDATE users SET %s, updated_at = NOW() WHERE id = $%d RETURNING `+userColumns,
			strings.Join(set, ", "), len(args))
		err = r.db.GetContext(ctx, &user, query, args...)
	}
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) Upsert(ctx context.Context, telegramID int64, create model.User, upd model.UserUpdate) (*model.User, error) {
	args := []interface{}{telegramID, create.Username, create.Name, create.Phone, create.Job, string(create.Step)}
	conflict := `DO NOTHING`
	if set, extra := assignments(upd.Columns(), len(args)+1); len(set) > 0 {
		args = append(args, extra...)
		conflict = `DO UPDATE SET ` + strings.Join(set, ", ") + `, updated_at = NOW()`
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (telegram_id, username, name, phone, job, step)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (telegram_id) `+conflict, args...)
	if err != nil {
		return nil, fmt.Errorf("UserRepository.Upsert: %w", translate(err))
	}
	return r.FindByTelegramID(ctx, telegramID)
}

func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, fmt.Errorf("UserRepository.ListAll: %w", err)
	}
	return users, nil
}

func (r *UserRepository) ListByIDs(ctx context.Context, ids []uint) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM users WHERE id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("UserRepository.ListByIDs: %w", err)
	}
	var users []model.User
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("UserRepository.ListByIDs: %w", err)
	}
	return users, nil
}

// assignments renders "col = $n" pairs in a stable order starting at placeholder first.
func assignments(cols map[string]interface{}, first int) ([]string, []interface{}) {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	set := make([]string, 0, len(names))
	args := make([]interface{}, 0, len(names))
	for i, name := range names {
		set = append(set, fmt.Sprintf("%s = $%d", name, first+i))
		args = append(args, cols[name])
	}
	return set, args
}
