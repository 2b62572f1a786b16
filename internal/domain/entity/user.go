package entity

import (
	"time"
)

// Максимальная длина имени пользователя (после обрезки пробелов)
const MaxUsernameLen = 50

// User представляет игрока. Создаётся один раз и далее не изменяется.
type User struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	Username  *string   `gorm:"size:50" json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// DisplayName возвращает имя пользователя или заглушку, если имя не задано
func (u *User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return "Unknown User"
}
