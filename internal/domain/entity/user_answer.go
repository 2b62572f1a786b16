package entity

import (
	"time"
)

// UserAnswer представляет ответ пользователя на вопрос в рамках сессии.
// Пара (session_id, question_id) уникальна: на вопрос отвечают один раз.
type UserAnswer struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_user_answers_session_question" json:"session_id"`
	QuestionID  string    `gorm:"type:uuid;not null;uniqueIndex:idx_user_answers_session_question" json:"question_id"`
	AnswerIndex int       `gorm:"not null" json:"answer_index"`
	IsCorrect   bool      `gorm:"not null" json:"is_correct"`
	AnsweredAt  time.Time `gorm:"not null" json:"answered_at"`
}

// TableName определяет имя таблицы для GORM
func (UserAnswer) TableName() string {
	return "user_answers"
}
