package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/trivia-game/internal/domain/entity"
	apperrors "github.com/yourusername/trivia-game/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create создает новый вопрос
func (r *QuestionRepo) Create(question *entity.Question) error {
	if err := r.db.Create(question).Error; err != nil {
		return fmt.Errorf("%w: failed to create question", apperrors.ErrInternal)
	}
	return nil
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(id string) (*entity.Question, error) {
	var question entity.Question
	err := r.db.Where("id = ?", id).First(&question).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to get question", apperrors.ErrInternal)
	}
	return &question, nil
}

// GetByIDs возвращает вопросы по списку идентификаторов
func (r *QuestionRepo) GetByIDs(ids []string) ([]entity.Question, error) {
	if len(ids) == 0 {
		return []entity.Question{}, nil
	}
	var questions []entity.Question
	err := r.db.Where("id IN ?", ids).Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get questions", apperrors.ErrInternal)
	}
	return questions, nil
}

// GetAll возвращает все вопросы банка, новейшие первыми
func (r *QuestionRepo) GetAll() ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.Order("created_at DESC").Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list questions", apperrors.ErrInternal)
	}
	return questions, nil
}

// Update обновляет информацию о вопросе
func (r *QuestionRepo) Update(question *entity.Question) error {
	if err := r.db.Save(question).Error; err != nil {
		return fmt.Errorf("%w: failed to update question", apperrors.ErrInternal)
	}
	return nil
}

// Delete удаляет вопрос
func (r *QuestionRepo) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&entity.Question{})
	if result.Error != nil {
		return fmt.Errorf("%w: failed to delete question", apperrors.ErrInternal)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetRandomByCategory возвращает до limit случайных вопросов категории.
// ORDER BY RANDOM() даёт равновероятную выборку без повторов; объёмы банка
// вопросов небольшие, поэтому оптимизации вроде TABLESAMPLE не требуются.
func (r *QuestionRepo) GetRandomByCategory(category string, limit int) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.Where("category = ?", category).
		Order("RANDOM()").
		Limit(limit).
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to select random questions", apperrors.ErrInternal)
	}
	return questions, nil
}

// CountByCategory возвращает количество вопросов в категории
func (r *QuestionRepo) CountByCategory(category string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Question{}).Where("category = ?", category).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count questions", apperrors.ErrInternal)
	}
	return count, nil
}
