package service

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/yourusername/trivia-game/internal/domain/entity"
	"github.com/yourusername/trivia-game/internal/domain/repository"
	apperrors "github.com/yourusername/trivia-game/internal/pkg/errors"
)

// QuestionService предоставляет методы для работы с банком вопросов
type QuestionService struct {
	questionRepo repository.QuestionRepository
	sessionRepo  repository.SessionRepository
}

// NewQuestionService создает новый сервис банка вопросов
func NewQuestionService(questionRepo repository.QuestionRepository, sessionRepo repository.SessionRepository) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		sessionRepo:  sessionRepo,
	}
}

// CreateQuestionInput описывает данные для создания вопроса
type CreateQuestionInput struct {
	Category           string
	Prompt             string
	Answers            []string
	CorrectAnswerIndex int
	Score              int
}

// UpdateQuestionInput описывает частичное обновление вопроса.
// nil-поля остаются без изменений.
type UpdateQuestionInput struct {
	Category           *string
	Prompt             *string
	Answers            []string
	CorrectAnswerIndex *int
	Score              *int
}

// CreateQuestion создает новый вопрос после полной валидации полей
func (s *QuestionService) CreateQuestion(input CreateQuestionInput) (*entity.Question, error) {
	category := strings.TrimSpace(input.Category)
	prompt := strings.TrimSpace(input.Prompt)
	answers, err := normalizeAnswers(input.Answers)
	if err != nil {
		return nil, err
	}
	if err := validateQuestionFields(category, prompt, answers, input.CorrectAnswerIndex, input.Score); err != nil {
		return nil, err
	}

	question := &entity.Question{
		ID:                 uuid.NewString(),
		Category:           category,
		Prompt:             prompt,
		Answers:            answers,
		CorrectAnswerIndex: input.CorrectAnswerIndex,
		Score:              input.Score,
	}

	if err := s.questionRepo.Create(question); err != nil {
		return nil, err
	}

	return question, nil
}

// GetQuestion возвращает вопрос по ID
func (s *QuestionService) GetQuestion(id string) (*entity.Question, error) {
	return s.questionRepo.GetByID(id)
}

// ListQuestions возвращает все вопросы банка
func (s *QuestionService) ListQuestions() ([]entity.Question, error) {
	return s.questionRepo.GetAll()
}

// UpdateQuestion применяет частичное обновление. Вопрос, занятый активной
// сессией, изменять нельзя. Непереданные поля берутся из текущих значений,
// и итоговый вопрос валидируется целиком (в частности, корректность индекса
// проверяется против возможно обновлённого списка ответов).
func (s *QuestionService) UpdateQuestion(id string, input UpdateQuestionInput) (*entity.Question, error) {
	question, err := s.questionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	inUse, err := s.sessionRepo.IsQuestionInUse(id)
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, fmt.Errorf("%w: cannot update question in use", apperrors.ErrConflict)
	}

	if input.Category != nil {
		question.Category = strings.TrimSpace(*input.Category)
	}
	if input.Prompt != nil {
		question.Prompt = strings.TrimSpace(*input.Prompt)
	}
	if input.Answers != nil {
		answers, err := normalizeAnswers(input.Answers)
		if err != nil {
			return nil, err
		}
		question.Answers = answers
	}
	if input.CorrectAnswerIndex != nil {
		question.CorrectAnswerIndex = *input.CorrectAnswerIndex
	}
	if input.Score != nil {
		question.Score = *input.Score
	}

	if err := validateQuestionFields(question.Category, question.Prompt, question.Answers, question.CorrectAnswerIndex, question.Score); err != nil {
		return nil, err
	}

	if err := s.questionRepo.Update(question); err != nil {
		return nil, err
	}

	return question, nil
}

// DeleteQuestion удаляет вопрос с тем же ограничением занятости, что и обновление
func (s *QuestionService) DeleteQuestion(id string) error {
	if _, err := s.questionRepo.GetByID(id); err != nil {
		return err
	}

	inUse, err := s.sessionRepo.IsQuestionInUse(id)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("%w: cannot delete question in use", apperrors.ErrConflict)
	}

	return s.questionRepo.Delete(id)
}

// IsInUse проверяет, занят ли вопрос хотя бы одной активной сессией
func (s *QuestionService) IsInUse(id string) (bool, error) {
	return s.sessionRepo.IsQuestionInUse(id)
}

// SelectForNewSession собирает набор вопросов новой сессии по квоте
// категория→количество. Внутри категории выборка равновероятная без повторов;
// итоговый набор дополнительно перемешивается, чтобы порядок вопросов
// не выдавал порядок категорий.
func (s *QuestionService) SelectForNewSession(quota map[string]int) ([]entity.Question, error) {
	var selected []entity.Question

	for category, count := range quota {
		available, err := s.questionRepo.CountByCategory(category)
		if err != nil {
			return nil, err
		}
		if available < int64(count) {
			return nil, fmt.Errorf("%w: category %q has %d questions, %d required",
				apperrors.ErrInsufficientData, category, available, count)
		}

		questions, err := s.questionRepo.GetRandomByCategory(category, count)
		if err != nil {
			return nil, err
		}
		// Страховка от гонки между подсчётом и выборкой
		if len(questions) < count {
			return nil, fmt.Errorf("%w: category %q has %d questions, %d required",
				apperrors.ErrInsufficientData, category, len(questions), count)
		}
		selected = append(selected, questions...)
	}

	shuffleQuestions(selected)
	return selected, nil
}

// shuffleQuestions выполняет перемешивание Фишера-Йетса
func shuffleQuestions(questions []entity.Question) {
	rand.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
}

// normalizeAnswers обрезает пробелы и отклоняет пустые варианты
func normalizeAnswers(answers []string) (entity.StringArray, error) {
	normalized := make(entity.StringArray, 0, len(answers))
	for _, a := range answers {
		trimmed := strings.TrimSpace(a)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: answers must not be empty", apperrors.ErrValidation)
		}
		normalized = append(normalized, trimmed)
	}
	return normalized, nil
}

// validateQuestionFields проверяет инварианты вопроса из предметной области:
// непустые категория и текст, 2..4 варианта, индекс в диапазоне, положительный счёт
func validateQuestionFields(category, prompt string, answers []string, correctAnswerIndex, score int) error {
	if category == "" {
		return fmt.Errorf("%w: category is required", apperrors.ErrValidation)
	}
	if prompt == "" {
		return fmt.Errorf("%w: question is required", apperrors.ErrValidation)
	}
	if len(answers) < entity.MinAnswers || len(answers) > entity.MaxAnswers {
		return fmt.Errorf("%w: invalid number of answers, must be between %d and %d",
			apperrors.ErrValidation, entity.MinAnswers, entity.MaxAnswers)
	}
	if correctAnswerIndex < 0 || correctAnswerIndex >= len(answers) {
		return fmt.Errorf("%w: correct_answer_index must be between 0 and %d",
			apperrors.ErrValidation, len(answers)-1)
	}
	if score <= 0 {
		return fmt.Errorf("%w: score must be a positive integer", apperrors.ErrValidation)
	}
	return nil
}
