package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/trivia-game/internal/domain/entity"
	"github.com/yourusername/trivia-game/internal/domain/repository"
	apperrors "github.com/yourusername/trivia-game/internal/pkg/errors"
)

// SessionRepo реализует repository.SessionRepository
type SessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo создает новый репозиторий игровых сессий
func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create создает новую игровую сессию
func (r *SessionRepo) Create(session *entity.GameSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("%w: failed to create session", apperrors.ErrInternal)
	}
	return nil
}

// GetByID возвращает сессию по ID
func (r *SessionRepo) GetByID(id string) (*entity.GameSession, error) {
	var session entity.GameSession
	err := r.db.Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to get session", apperrors.ErrInternal)
	}
	return &session, nil
}

// List возвращает сессии новейшие первыми с применёнными фильтрами
func (r *SessionRepo) List(filters repository.SessionFilters) ([]entity.GameSession, error) {
	query := r.db.Order("started_at DESC")
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	var sessions []entity.GameSession
	if err := query.Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to list sessions", apperrors.ErrInternal)
	}
	return sessions, nil
}

// UpdateProgress точечно обновляет агрегаты сессии (без full Save,
// чтобы не перетирать неизменяемые поля вроде selected_questions).
// Условие status = 'in_progress' симметрично MarkExpired: запись ответа,
// проигравшая гонку sweep-у, не перезапишет expired.
func (r *SessionRepo) UpdateProgress(id string, currentScore, questionsAnswered int, status string, completedAt *time.Time) (bool, error) {
	result := r.db.Model(&entity.GameSession{}).
		Where("id = ? AND status = ?", id, entity.SessionStatusInProgress).
		Updates(map[string]interface{}{
			"current_score":      currentScore,
			"questions_answered": questionsAnswered,
			"status":             status,
			"completed_at":       completedAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("%w: failed to update session progress", apperrors.ErrInternal)
	}
	return result.RowsAffected > 0, nil
}

// IsQuestionInUse проверяет, входит ли вопрос в набор хотя бы одной активной сессии.
// Используется JSONB containment по selected_questions.
func (r *SessionRepo) IsQuestionInUse(questionID string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.GameSession{}).
		Where("status = ?", entity.SessionStatusInProgress).
		Where("selected_questions @> ?", fmt.Sprintf(`[%q]`, questionID)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: failed to check question usage", apperrors.ErrInternal)
	}
	return count > 0, nil
}

// GetOverdueInProgress возвращает активные сессии с истёкшим лимитом времени
func (r *SessionRepo) GetOverdueInProgress(now time.Time) ([]entity.GameSession, error) {
	var sessions []entity.GameSession
	err := r.db.
		Where("status = ?", entity.SessionStatusInProgress).
		Where("time_limit IS NOT NULL").
		Where("started_at + make_interval(secs => time_limit) < ?", now).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to find overdue sessions", apperrors.ErrInternal)
	}
	return sessions, nil
}

// MarkExpired переводит сессию в expired. Условие status = 'in_progress'
// гарантирует, что терминальная сессия не будет перезаписана гонкой
// между sweep-ом и параллельным завершением игры.
func (r *SessionRepo) MarkExpired(id string, completedAt time.Time) (bool, error) {
	result := r.db.Model(&entity.GameSession{}).
		Where("id = ? AND status = ?", id, entity.SessionStatusInProgress).
		Updates(map[string]interface{}{
			"status":       entity.SessionStatusExpired,
			"completed_at": completedAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("%w: failed to expire session", apperrors.ErrInternal)
	}
	return result.RowsAffected > 0, nil
}
