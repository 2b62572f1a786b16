package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/trivia-game/internal/domain/repository"
	"github.com/yourusername/trivia-game/internal/handler/dto"
	apperrors "github.com/yourusername/trivia-game/internal/pkg/errors"
	"github.com/yourusername/trivia-game/internal/service"
)

// SessionHandler обрабатывает запросы, связанные с игровыми сессиями
type SessionHandler struct {
	sessionService *service.SessionService
	rules          dto.SessionRules
}

// NewSessionHandler создает новый обработчик сессий.
// rules — шаблон блока правил для ответа на создание сессии.
func NewSessionHandler(sessionService *service.SessionService, rules dto.SessionRules) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		rules:          rules,
	}
}

// CreateSessionRequest представляет запрос на создание игровой сессии
type CreateSessionRequest struct {
	UserID string `json:"user_id" binding:"required"`
	// TimeLimit: необязательный лимит сессии в секундах
	TimeLimit *int `json:"time_limit"`
}

// SubmitAnswerRequest представляет запрос на ответ в рамках сессии.
// user_id подтверждает владение сессией; answer_index передается
// указателем: 0 — валидный индекс.
type SubmitAnswerRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	QuestionID  string `json:"question_id" binding:"required"`
	AnswerIndex *int   `json:"answer_index" binding:"required"`
}

// CreateSession обрабатывает запрос на создание игровой сессии
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, questions, err := h.sessionService.CreateSession(req.UserID, req.TimeLimit)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewCreateSessionResponse(session, questions, h.rules))
}

// SubmitAnswer обрабатывает ответ на вопрос сессии
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string) // Получаем из контекста

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.sessionService.SubmitAnswer(sessionID, req.UserID, req.QuestionID, *req.AnswerIndex)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSession возвращает полное состояние сессии с повопросным прогрессом
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string) // Получаем из контекста

	report, err := h.sessionService.GetProgress(sessionID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListSessions возвращает список сессий со сводной статистикой.
// Фильтры: status, user_id, limit — комбинируются через И.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	filters, err := sessionFiltersFromQuery(c)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	listing, err := h.sessionService.ListSessions(filters)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// ExportSessions экспортирует список сессий в CSV или Excel формате
// GET /sessions/export?format=csv|xlsx
func (h *SessionHandler) ExportSessions(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	filters, err := sessionFiltersFromQuery(c)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	listing, err := h.sessionService.ListSessions(filters)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	filename := fmt.Sprintf("sessions_%s", time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, listing.Sessions, filename)
	default:
		h.exportCSV(c, listing.Sessions, filename)
	}
}

// sessionFiltersFromQuery собирает фильтры списка из query-параметров
func sessionFiltersFromQuery(c *gin.Context) (repository.SessionFilters, error) {
	filters := repository.SessionFilters{
		Status: c.Query("status"), // in_progress, user_won, user_lost, expired
		UserID: c.Query("user_id"),
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return filters, fmt.Errorf("%w: limit must be a positive integer", apperrors.ErrValidation)
		}
		filters.Limit = limit
	}

	return filters, nil
}

// exportCSV экспортирует сессии в CSV с правильным экранированием спецсимволов
func (h *SessionHandler) exportCSV(c *gin.Context, sessions []service.SessionSummary, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	// Используем encoding/csv для правильного экранирования запятых/кавычек
	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// Заголовки
	writer.Write([]string{"Session ID", "User", "Status", "Result", "Score", "Answered", "Total Questions", "Score %", "Started At", "Completed At"})

	// Данные
	for _, s := range sessions {
		completedAt := ""
		if s.Session.CompletedAt != nil {
			completedAt = s.Session.CompletedAt.Format(time.RFC3339)
		}

		writer.Write([]string{
			s.Session.ID,
			sanitizeForExcel(s.Username),
			s.Session.Status,
			s.GameResult,
			strconv.Itoa(s.Session.CurrentScore),
			strconv.Itoa(s.Session.QuestionsAnswered),
			strconv.Itoa(s.Session.TotalQuestions()),
			fmt.Sprintf("%.2f", s.ScorePercentage),
			s.Session.StartedAt.Format(time.RFC3339),
			completedAt,
		})
	}
}

// exportXLSX экспортирует сессии в Excel с использованием StreamWriter
func (h *SessionHandler) exportXLSX(c *gin.Context, sessions []service.SessionSummary, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sessions"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[SessionHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	// Заголовки
	headers := []interface{}{"Session ID", "User", "Status", "Result", "Score", "Answered", "Total Questions", "Score %", "Started At", "Completed At"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[SessionHandler] Ошибка записи заголовков: %v", err)
	}

	// Данные
	for i, s := range sessions {
		rowNum := i + 2 // Начинаем с 2 строки (1 - заголовки)
		cell := fmt.Sprintf("A%d", rowNum)

		completedAt := ""
		if s.Session.CompletedAt != nil {
			completedAt = s.Session.CompletedAt.Format(time.RFC3339)
		}

		row := []interface{}{
			s.Session.ID,
			sanitizeForExcel(s.Username),
			s.Session.Status,
			s.GameResult,
			s.Session.CurrentScore,
			s.Session.QuestionsAnswered,
			s.Session.TotalQuestions(),
			s.ScorePercentage,
			s.Session.StartedAt.Format(time.RFC3339),
			completedAt,
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[SessionHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[SessionHandler] Ошибка при Flush: %v", err)
	}

	// Записываем в response
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[SessionHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// handleSessionError обрабатывает ошибки игрового движка
func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrInvalidState) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrInsufficientData) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in SessionHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
