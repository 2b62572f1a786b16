package repository

import (
	"time"

	"github.com/yourusername/trivia-game/internal/domain/entity"
)

// SessionFilters описывает необязательные фильтры списка сессий.
// Заданные поля комбинируются через логическое И.
type SessionFilters struct {
	Status string
	UserID string
	Limit  int
}

// SessionRepository определяет методы для работы с игровыми сессиями
type SessionRepository interface {
	Create(session *entity.GameSession) error
	GetByID(id string) (*entity.GameSession, error)
	// List возвращает сессии новейшие первыми, с применёнными фильтрами
	List(filters SessionFilters) ([]entity.GameSession, error)

	// UpdateProgress точечно обновляет агрегаты сессии (счёт, статус, завершение).
	// Обновление срабатывает только для in_progress сессии, чтобы гонка со
	// sweep-ом не вернула терминальную сессию в игру. Возвращает true,
	// если строка изменена.
	UpdateProgress(id string, currentScore, questionsAnswered int, status string, completedAt *time.Time) (bool, error)

	// IsQuestionInUse проверяет, входит ли вопрос в набор хотя бы одной активной сессии
	IsQuestionInUse(questionID string) (bool, error)

	// GetOverdueInProgress возвращает активные сессии, чей лимит времени истёк к моменту now
	GetOverdueInProgress(now time.Time) ([]entity.GameSession, error)
	// MarkExpired переводит сессию в expired; обновление срабатывает только
	// если сессия всё ещё in_progress. Возвращает true, если строка изменена.
	MarkExpired(id string, completedAt time.Time) (bool, error)
}
