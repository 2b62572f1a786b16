package repository

import (
	"github.com/yourusername/trivia-game/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с банком вопросов
type QuestionRepository interface {
	Create(question *entity.Question) error
	GetByID(id string) (*entity.Question, error)
	// GetByIDs возвращает вопросы по списку идентификаторов (порядок не гарантируется)
	GetByIDs(ids []string) ([]entity.Question, error)
	GetAll() ([]entity.Question, error)
	Update(question *entity.Question) error
	Delete(id string) error

	// GetRandomByCategory возвращает до limit случайных вопросов категории
	// (равновероятная выборка без повторов)
	GetRandomByCategory(category string, limit int) ([]entity.Question, error)
	CountByCategory(category string) (int64, error)
}
