package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yourusername/trivia-game/internal/domain/entity"
	apperrors "github.com/yourusername/trivia-game/internal/pkg/errors"
)

// Код SQLSTATE нарушения уникального ограничения в PostgreSQL
const pgUniqueViolation = "23505"

// AnswerRepo реализует repository.AnswerRepository
type AnswerRepo struct {
	db *gorm.DB
}

// NewAnswerRepo создает новый репозиторий ответов
func NewAnswerRepo(db *gorm.DB) *AnswerRepo {
	return &AnswerRepo{db: db}
}

// Create сохраняет ответ пользователя. Повторный ответ на тот же вопрос
// сессии отсекается уникальным индексом (session_id, question_id):
// проверка "прочитал-затем-записал" в движке не защищает от двух
// конкурентных запросов, ограничение в базе — защищает.
func (r *AnswerRepo) Create(answer *entity.UserAnswer) error {
	if err := r.db.Create(answer).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("%w: failed to create answer", apperrors.ErrInternal)
	}
	return nil
}

// GetBySession возвращает все ответы сессии в порядке их подачи
func (r *AnswerRepo) GetBySession(sessionID string) ([]entity.UserAnswer, error) {
	var answers []entity.UserAnswer
	err := r.db.Where("session_id = ?", sessionID).
		Order("answered_at ASC").
		Find(&answers).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get session answers", apperrors.ErrInternal)
	}
	return answers, nil
}

// GetBySessionAndQuestion возвращает ответ на конкретный вопрос сессии или ErrNotFound
func (r *AnswerRepo) GetBySessionAndQuestion(sessionID, questionID string) (*entity.UserAnswer, error) {
	var answer entity.UserAnswer
	err := r.db.Where("session_id = ? AND question_id = ?", sessionID, questionID).
		First(&answer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to get answer", apperrors.ErrInternal)
	}
	return &answer, nil
}

// isUniqueViolation распознаёт нарушение уникального ограничения
// как в переводе GORM, так и в исходной ошибке драйвера pgx
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
