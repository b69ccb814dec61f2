package model

import "time"

// User stores a funnel participant keyed by Telegram identity.
type User struct {
	ID         uint      `gorm:"primaryKey" db:"id"`
	TelegramID int64     `gorm:"uniqueIndex" db:"telegram_id"`
	Username   string    `db:"username"`
	Name       string    `db:"name"`
	Phone      string    `db:"phone"`
	Job        string    `db:"job"`
	Step       Step      `gorm:"type:varchar(16);not null" db:"step"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Username *string
	Name     *string
	Phone    *string
	Job      *string
	Step     *Step
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Name == nil && u.Phone == nil && u.Job == nil && u.Step == nil
}

// Columns returns the update as a column map.
func (u UserUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if u.Username != nil {
		cols["username"] = *u.Username
	}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Phone != nil {
		cols["phone"] = *u.Phone
	}
	if u.Job != nil {
		cols["job"] = *u.Job
	}
	if u.Step != nil {
		cols["step"] = string(*u.Step)
	}
	return cols
}

// Apply copies the set fields onto user.
func (u UserUpdate) Apply(user *User) {
	if u.Username != nil {
		user.Username = *u.Username
	}
	if u.Name != nil {
		user.Name = *u.Name
	}
	if u.Phone != nil {
		user.Phone = *u.Phone
	}
	if u.Job != nil {
		user.Job = *u.Job
	}
	if u.Step != nil {
		user.Step = *u.Step
	}
}
