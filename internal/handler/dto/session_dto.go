package dto

import (
	"time"

	"github.com/yourusername/trivia-game/internal/domain/entity"
)

// SessionRules описывает правила игры, действующие для сессии
type SessionRules struct {
	TotalQuestions       int     `json:"total_questions"`
	QuestionsPerCategory int     `json:"questions_per_category"`
	WinThresholdPercent  float64 `json:"win_threshold_percent"`
	TimeLimit            *int    `json:"time_limit,omitempty"`
}

// CreateSessionResponse представляет созданную сессию вместе с её набором
// вопросов, сгруппированным по категориям
type CreateSessionResponse struct {
	ID                  string                              `json:"id"`
	UserID              string                              `json:"user_id"`
	Status              string                              `json:"status"`
	StartedAt           time.Time                           `json:"started_at"`
	QuestionsByCategory map[string][]PublicQuestionResponse `json:"questions_by_category"`
	SessionRules        SessionRules                        `json:"session_rules"`
}

// NewCreateSessionResponse создает DTO созданной сессии. Вопросы группируются
// по категориям с сохранением порядка прохождения внутри категории.
func NewCreateSessionResponse(session *entity.GameSession, questions []entity.Question, rules SessionRules) *CreateSessionResponse {
	byCategory := make(map[string][]PublicQuestionResponse)
	for i := range questions {
		q := &questions[i]
		byCategory[q.Category] = append(byCategory[q.Category], *NewPublicQuestionResponse(q))
	}

	rules.TimeLimit = session.TimeLimitSec

	return &CreateSessionResponse{
		ID:                  session.ID,
		UserID:              session.UserID,
		Status:              session.Status,
		StartedAt:           session.StartedAt,
		QuestionsByCategory: byCategory,
		SessionRules:        rules,
	}
}
