package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/trivia-game/internal/domain/entity"
	"github.com/yourusername/trivia-game/internal/domain/repository"
	apperrors "github.com/yourusername/trivia-game/internal/pkg/errors"
)

// UserService предоставляет методы для работы с пользователями
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// CreateUser создает нового пользователя с необязательным именем.
// Имя, если оно передано, после обрезки пробелов должно быть от 1 до 50 символов.
func (s *UserService) CreateUser(username *string) (*entity.User, error) {
	var normalized *string
	if username != nil {
		trimmed := strings.TrimSpace(*username)
		if len(trimmed) == 0 || len([]rune(trimmed)) > entity.MaxUsernameLen {
			return nil, fmt.Errorf("%w: username must be between 1 and %d characters", apperrors.ErrValidation, entity.MaxUsernameLen)
		}
		normalized = &trimmed
	}

	user := &entity.User{
		ID:        uuid.NewString(),
		Username:  normalized,
		CreatedAt: time.Now(),
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser возвращает пользователя по идентификатору.
// Некорректный формат идентификатора — ошибка валидации, корректный,
// но неизвестный — not found.
func (s *UserService) GetUser(id string) (*entity.User, error) {
	if !isValidUUID(id) {
		return nil, fmt.Errorf("%w: id must be a valid UUID", apperrors.ErrValidation)
	}
	return s.userRepo.GetByID(id)
}

// isValidUUID проверяет, что строка является UUID в каноническом формате 8-4-4-4-12
func isValidUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
