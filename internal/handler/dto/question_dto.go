package dto

import (
	"time"

	"github.com/yourusername/trivia-game/internal/domain/entity"
)

// QuestionResponse представляет вопрос в формате для ответа game master.
// Содержит правильный ответ и предназначен только для CRUD-эндпоинтов банка.
type QuestionResponse struct {
	ID                 string    `json:"id"`
	Category           string    `json:"category"`
	Question           string    `json:"question"`
	Answers            []string  `json:"answers"`
	CorrectAnswerIndex int       `json:"correct_answer_index"`
	Score              int       `json:"score"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// PublicQuestionResponse представляет вопрос в формате для игрока:
// без правильного ответа
type PublicQuestionResponse struct {
	ID       string   `json:"id"`
	Category string   `json:"category"`
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
	Score    int      `json:"score"`
}

// NewQuestionResponse создает DTO вопроса для game master
func NewQuestionResponse(q *entity.Question) *QuestionResponse {
	return &QuestionResponse{
		ID:                 q.ID,
		Category:           q.Category,
		Question:           q.Prompt,
		Answers:            q.Answers,
		CorrectAnswerIndex: q.CorrectAnswerIndex,
		Score:              q.Score,
		CreatedAt:          q.CreatedAt,
		UpdatedAt:          q.UpdatedAt,
	}
}

// NewListQuestionResponse создает список DTO вопросов для game master
func NewListQuestionResponse(questions []entity.Question) []QuestionResponse {
	response := make([]QuestionResponse, len(questions))
	for i := range questions {
		response[i] = *NewQuestionResponse(&questions[i])
	}
	return response
}

// NewPublicQuestionResponse создает DTO вопроса для игрока
func NewPublicQuestionResponse(q *entity.Question) *PublicQuestionResponse {
	return &PublicQuestionResponse{
		ID:       q.ID,
		Category: q.Category,
		Question: q.Prompt,
		Answers:  q.Answers,
		Score:    q.Score,
	}
}
