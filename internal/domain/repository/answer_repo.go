package repository

import (
	"github.com/yourusername/trivia-game/internal/domain/entity"
)

// AnswerRepository определяет методы для работы с ответами пользователей
type AnswerRepository interface {
	// Create сохраняет ответ. При нарушении уникальности (session_id, question_id)
	// возвращает apperrors.ErrConflict — это гарантия "один ответ на вопрос"
	// на уровне хранилища, а не только проверки в движке.
	Create(answer *entity.UserAnswer) error
	GetBySession(sessionID string) ([]entity.UserAnswer, error)
	GetBySessionAndQuestion(sessionID, questionID string) (*entity.UserAnswer, error)
}
