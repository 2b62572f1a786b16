package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trivia-game/internal/domain/entity"
	"github.com/yourusername/trivia-game/internal/domain/repository"
	apperrors "github.com/yourusername/trivia-game/internal/pkg/errors"
)

// ============================================================================
// Моки для QuestionService
// MockQuestionRepository и MockSessionRepository используются также
// в session_service_test.go
// ============================================================================

// MockQuestionRepository реализует repository.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(id string) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByIDs(ids []string) ([]entity.Question, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetAll() ([]entity.Question, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetRandomByCategory(category string, limit int) ([]entity.Question, error) {
	args := m.Called(category, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) CountByCategory(category string) (int64, error) {
	args := m.Called(category)
	return args.Get(0).(int64), args.Error(1)
}

// MockSessionRepository реализует repository.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(session *entity.GameSession) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(id string) (*entity.GameSession, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.GameSession), args.Error(1)
}

func (m *MockSessionRepository) List(filters repository.SessionFilters) ([]entity.GameSession, error) {
	args := m.Called(filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.GameSession), args.Error(1)
}

func (m *MockSessionRepository) UpdateProgress(id string, currentScore, questionsAnswered int, status string, completedAt *time.Time) (bool, error) {
	args := m.Called(id, currentScore, questionsAnswered, status, completedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRepository) IsQuestionInUse(questionID string) (bool, error) {
	args := m.Called(questionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRepository) GetOverdueInProgress(now time.Time) ([]entity.GameSession, error) {
	args := m.Called(now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.GameSession), args.Error(1)
}

func (m *MockSessionRepository) MarkExpired(id string, completedAt time.Time) (bool, error) {
	args := m.Called(id, completedAt)
	return args.Bool(0), args.Error(1)
}

// helper для указателя на int
func intPtr(v int) *int { return &v }

func validCreateInput() CreateQuestionInput {
	return CreateQuestionInput{
		Category:           "Science",
		Prompt:             "What planet is known as the Red Planet?",
		Answers:            []string{"Venus", "Mars", "Jupiter"},
		CorrectAnswerIndex: 1,
		Score:              10,
	}
}

func TestQuestionService_CreateQuestion_Success(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	mockSessionRepo := new(MockSessionRepository)
	mockQuestionRepo.On("Create", mock.AnythingOfType("*entity.Question")).Return(nil)

	questionService := NewQuestionService(mockQuestionRepo, mockSessionRepo)

	// Act
	question, err := questionService.CreateQuestion(validCreateInput())

	// Assert
	require.NoError(t, err)
	require.NotNil(t, question)
	assert.NotEmpty(t, question.ID)
	assert.Equal(t, "Science", question.Category)
	assert.Equal(t, 1, question.CorrectAnswerIndex)
	mockQuestionRepo.AssertExpectations(t)
}

func TestQuestionService_CreateQuestion_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*CreateQuestionInput)
	}{
		{"empty category", func(in *CreateQuestionInput) { in.Category = "   " }},
		{"empty prompt", func(in *CreateQuestionInput) { in.Prompt = "" }},
		{"too few answers", func(in *CreateQuestionInput) { in.Answers = []string{"Only one"} }},
		{"too many answers", func(in *CreateQuestionInput) { in.Answers = []string{"A", "B", "C", "D", "E"} }},
		{"blank answer entry", func(in *CreateQuestionInput) { in.Answers = []string{"A", "  "} }},
		{"index out of range", func(in *CreateQuestionInput) { in.CorrectAnswerIndex = 3 }},
		{"negative index", func(in *CreateQuestionInput) { in.CorrectAnswerIndex = -1 }},
		{"zero score", func(in *CreateQuestionInput) { in.Score = 0 }},
		{"negative score", func(in *CreateQuestionInput) { in.Score = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mockQuestionRepo := new(MockQuestionRepository)
			mockSessionRepo := new(MockSessionRepository)
			questionService := NewQuestionService(mockQuestionRepo, mockSessionRepo)

			input := validCreateInput()
			tt.modify(&input)

			// Act
			question, err := questionService.CreateQuestion(input)

			// Assert
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Nil(t, question)
			mockQuestionRepo.AssertNotCalled(t, "Create")
		})
	}
}

func TestQuestionService_UpdateQuestion_MergesPartialFields(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	mockSessionRepo := new(MockSessionRepository)

	questionID := "6f1b2a3c-0000-4000-8000-000000000010"
	existing := &entity.Question{
		ID:                 questionID,
		Category:           "Music",
		Prompt:             "Who composed the Ninth Symphony?",
		Answers:            entity.StringArray{"Mozart", "Beethoven", "Bach"},
		CorrectAnswerIndex: 1,
		Score:              10,
	}

	mockQuestionRepo.On("GetByID", questionID).Return(existing, nil)
	mockSessionRepo.On("IsQuestionInUse", questionID).Return(false, nil)
	mockQuestionRepo.On("Update", mock.AnythingOfType("*entity.Question")).Return(nil)

	questionService := NewQuestionService(mockQuestionRepo, mockSessionRepo)

	// Act: обновляем только score
	updated, err := questionService.UpdateQuestion(questionID, UpdateQuestionInput{
		Score: intPtr(25),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 25, updated.Score)
	assert.Equal(t, "Music", updated.Category, "Непереданные поля должны сохраниться")
	assert.Equal(t, 1, updated.CorrectAnswerIndex)
	mockQuestionRepo.AssertExpectations(t)
}

func TestQuestionService_UpdateQuestion_RevalidatesMergedQuestion(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	mockSessionRepo := new(MockSessionRepository)

	questionID := "6f1b2a3c-0000-4000-8000-000000000011"
	existing := &entity.Question{
		ID:                 questionID,
		Category:           "Sports",
		Prompt:             "How many players are on a volleyball team?",
		Answers:            entity.StringArray{"5", "6", "7", "8"},
		CorrectAnswerIndex: 3,
		Score:              10,
	}

	mockQuestionRepo.On("GetByID", questionID).Return(existing, nil)
	mockSessionRepo.On("IsQuestionInUse", questionID).Return(false, nil)

	questionService := NewQuestionService(mockQuestionRepo, mockSessionRepo)

	// Act: сокращаем список ответов так, что старый индекс 3 выходит за диапазон
	updated, err := questionService.UpdateQuestion(questionID, UpdateQuestionInput{
		Answers: []string{"5", "6"},
	})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Индекс должен проверяться против нового списка ответов")
	assert.Nil(t, updated)
	mockQuestionRepo.AssertNotCalled(t, "Update")
}

func TestQuestionService_UpdateQuestion_InUseConflict(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	mockSessionRepo := new(MockSessionRepository)

	questionID := "6f1b2a3c-0000-4000-8000-000000000012"
	existing := &entity.Question{ID: questionID, Category: "Sports", Answers: entity.StringArray{"A", "B"}, Score: 10}

	mockQuestionRepo.On("GetByID", questionID).Return(existing, nil)
	mockSessionRepo.On("IsQuestionInUse", questionID).Return(true, nil)

	questionService := NewQuestionService(mockQuestionRepo, mockSessionRepo)

	// Act
	updated, err := questionService.UpdateQuestion(questionID, UpdateQuestionInput{Score: intPtr(20)})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrConflict, "Занятый активной сессией вопрос изменять нельзя")
	assert.Nil(t, updated)
	mockQuestionRepo.AssertNotCalled(t, "Update")
}

func TestQuestionService_DeleteQuestion_InUseConflict(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	mockSessionRepo := new(MockSessionRepository)

	questionID := "6f1b2a3c-0000-4000-8000-000000000013"
	existing := &entity.Question{ID: questionID}

	mockQuestionRepo.On("GetByID", questionID).Return(existing, nil)
	mockSessionRepo.On("IsQuestionInUse", questionID).Return(true, nil)

	questionService := NewQuestionService(mockQuestionRepo, mockSessionRepo)

	// Act
	err := questionService.DeleteQuestion(questionID)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	mockQuestionRepo.AssertNotCalled(t, "Delete")
}

func TestQuestionService_DeleteQuestion_Success(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	mockSessionRepo := new(MockSessionRepository)

	questionID := "6f1b2a3c-0000-4000-8000-000000000014"
	existing := &entity.Question{ID: questionID}

	mockQuestionRepo.On("GetByID", questionID).Return(existing, nil)
	mockSessionRepo.On("IsQuestionInUse", questionID).Return(false, nil)
	mockQuestionRepo.On("Delete", questionID).Return(nil)

	questionService := NewQuestionService(mockQuestionRepo, mockSessionRepo)

	// Act
	err := questionService.DeleteQuestion(questionID)

	// Assert
	require.NoError(t, err)
	mockQuestionRepo.AssertExpectations(t)
}

func TestQuestionService_SelectForNewSession_Success(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	mockSessionRepo := new(MockSessionRepository)

	sports := []entity.Question{
		{ID: "s1", Category: "Sports"},
		{ID: "s2", Category: "Sports"},
	}
	science := []entity.Question{
		{ID: "n1", Category: "Science"},
		{ID: "n2", Category: "Science"},
	}

	mockQuestionRepo.On("CountByCategory", "Sports").Return(int64(5), nil)
	mockQuestionRepo.On("CountByCategory", "Science").Return(int64(5), nil)
	mockQuestionRepo.On("GetRandomByCategory", "Sports", 2).Return(sports, nil)
	mockQuestionRepo.On("GetRandomByCategory", "Science", 2).Return(science, nil)

	questionService := NewQuestionService(mockQuestionRepo, mockSessionRepo)

	// Act
	selected, err := questionService.SelectForNewSession(map[string]int{"Sports": 2, "Science": 2})

	// Assert
	require.NoError(t, err)
	assert.Len(t, selected, 4)

	ids := make(map[string]bool, len(selected))
	for _, q := range selected {
		ids[q.ID] = true
	}
	assert.Len(t, ids, 4, "Все вопросы набора должны быть уникальными")
	mockQuestionRepo.AssertExpectations(t)
}

func TestQuestionService_SelectForNewSession_InsufficientCategory(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	mockSessionRepo := new(MockSessionRepository)

	// В категории Music всего один вопрос при требуемых двух
	mockQuestionRepo.On("CountByCategory", "Music").Return(int64(1), nil)

	questionService := NewQuestionService(mockQuestionRepo, mockSessionRepo)

	// Act
	selected, err := questionService.SelectForNewSession(map[string]int{"Music": 2})

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientData)
	assert.Contains(t, err.Error(), "Music", "Ошибка должна называть категорию с нехваткой вопросов")
	assert.Nil(t, selected)
	mockQuestionRepo.AssertNotCalled(t, "GetRandomByCategory")
}
