package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/trivia-game/internal/handler/dto"
	apperrors "github.com/yourusername/trivia-game/internal/pkg/errors"
	"github.com/yourusername/trivia-game/internal/service"
)

// QuestionHandler обрабатывает запросы game master к банку вопросов
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler создает новый обработчик банка вопросов
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
	}
}

// CreateQuestionRequest представляет запрос на создание вопроса.
// Указатели отличают "поле не передано" от нулевого значения:
// correct_answer_index = 0 — валидный индекс.
type CreateQuestionRequest struct {
	Category           string   `json:"category" binding:"required"`
	Question           string   `json:"question" binding:"required"`
	Answers            []string `json:"answers" binding:"required"`
	CorrectAnswerIndex *int     `json:"correct_answer_index" binding:"required"`
	Score              *int     `json:"score" binding:"required"`
}

// UpdateQuestionRequest представляет частичное обновление вопроса
type UpdateQuestionRequest struct {
	Category           *string  `json:"category"`
	Question           *string  `json:"question"`
	Answers            []string `json:"answers"`
	CorrectAnswerIndex *int     `json:"correct_answer_index"`
	Score              *int     `json:"score"`
}

// CreateQuestion обрабатывает запрос на создание вопроса
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.questionService.CreateQuestion(service.CreateQuestionInput{
		Category:           req.Category,
		Prompt:             req.Question,
		Answers:            req.Answers,
		CorrectAnswerIndex: *req.CorrectAnswerIndex,
		Score:              *req.Score,
	})
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuestionResponse(question))
}

// GetQuestion возвращает вопрос по ID
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(string) // Получаем из контекста

	question, err := h.questionService.GetQuestion(questionID)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuestionResponse(question))
}

// ListQuestions возвращает все вопросы банка
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	questions, err := h.questionService.ListQuestions()
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questions":   dto.NewListQuestionResponse(questions),
		"total_count": len(questions),
	})
}

// UpdateQuestion обрабатывает частичное обновление вопроса
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(string) // Получаем из контекста

	var req UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.questionService.UpdateQuestion(questionID, service.UpdateQuestionInput{
		Category:           req.Category,
		Prompt:             req.Question,
		Answers:            req.Answers,
		CorrectAnswerIndex: req.CorrectAnswerIndex,
		Score:              req.Score,
	})
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuestionResponse(question))
}

// DeleteQuestion обрабатывает удаление вопроса
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(string) // Получаем из контекста

	if err := h.questionService.DeleteQuestion(questionID); err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

// handleQuestionError обрабатывает ошибки сервиса банка вопросов
func (h *QuestionHandler) handleQuestionError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in QuestionHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
