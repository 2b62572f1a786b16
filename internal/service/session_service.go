package service

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/trivia-game/internal/domain/entity"
	"github.com/yourusername/trivia-game/internal/domain/repository"
	apperrors "github.com/yourusername/trivia-game/internal/pkg/errors"
)

// GameSettings задает правила игры, с которыми работает движок сессий
type GameSettings struct {
	// CategoryQuota: сколько вопросов каждой категории входит в набор сессии
	CategoryQuota map[string]int

	// WinThresholdPercent: минимальный процент от максимального счёта для победы
	WinThresholdPercent float64

	// SessionCacheTTL: время жизни кешированного набора вопросов сессии
	SessionCacheTTL time.Duration
}

// DefaultGameSettings возвращает правила по умолчанию: 4 категории по 4 вопроса,
// порог победы 80%
func DefaultGameSettings() GameSettings {
	return GameSettings{
		CategoryQuota: map[string]int{
			"Sports":     4,
			"Science":    4,
			"Music":      4,
			"Technology": 4,
		},
		WinThresholdPercent: 80.0,
		SessionCacheTTL:     time.Hour,
	}
}

// TotalQuestions возвращает полный размер набора вопросов сессии
func (g GameSettings) TotalQuestions() int {
	total := 0
	for _, count := range g.CategoryQuota {
		total += count
	}
	return total
}

// SessionService реализует игровой движок: создание сессий, приём ответов,
// прогресс и истечение по лимиту времени. Кеш может быть nil — тогда набор
// вопросов всегда читается из базы.
type SessionService struct {
	sessionRepo  repository.SessionRepository
	answerRepo   repository.AnswerRepository
	userRepo     repository.UserRepository
	questionRepo repository.QuestionRepository
	questionSvc  *QuestionService
	cacheRepo    repository.CacheRepository
	settings     GameSettings
}

// NewSessionService создает новый игровой движок
func NewSessionService(
	sessionRepo repository.SessionRepository,
	answerRepo repository.AnswerRepository,
	userRepo repository.UserRepository,
	questionRepo repository.QuestionRepository,
	questionSvc *QuestionService,
	cacheRepo repository.CacheRepository,
	settings GameSettings,
) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		answerRepo:   answerRepo,
		userRepo:     userRepo,
		questionRepo: questionRepo,
		questionSvc:  questionSvc,
		cacheRepo:    cacheRepo,
		settings:     settings,
	}
}

// ProgressSummary содержит агрегаты сессии, пересчитанные из полного
// списка ответов
type ProgressSummary struct {
	QuestionsAnswered  int     `json:"questions_answered"`
	TotalQuestions     int     `json:"total_questions"`
	QuestionsRemaining int     `json:"questions_remaining"`
	CurrentScore       int     `json:"current_score"`
	TotalPossibleScore int     `json:"total_possible_score"`
	ScorePercentage    float64 `json:"score_percentage"`
}

// FinalResults описывает итог завершённой сессии
type FinalResults struct {
	CurrentScore       int     `json:"current_score"`
	TotalPossibleScore int     `json:"total_possible_score"`
	ScorePercentage    float64 `json:"score_percentage"`
	Result             string  `json:"result"`
}

// AnswerResult описывает исход принятого ответа. Правильный вариант
// раскрывается: на этот вопрос уже отвечено.
type AnswerResult struct {
	IsCorrect          bool            `json:"is_correct"`
	CorrectAnswerIndex int             `json:"correct_answer_index"`
	CorrectAnswer      string          `json:"correct_answer"`
	ScoreAwarded       int             `json:"score_awarded"`
	Progress           ProgressSummary `json:"progress"`
	SessionStatus      string          `json:"session_status"`
	GameComplete       bool            `json:"game_complete"`
	// FinalResults заполняется только при завершении сессии
	FinalResults *FinalResults `json:"final_results,omitempty"`
}

// GameRules описывает действующие для сессии правила победы
type GameRules struct {
	WinThresholdPercent float64 `json:"win_threshold_percent"`
	PointsToWin         int     `json:"points_to_win"`
}

// QuestionProgress описывает один вопрос сессии в отчёте о прогрессе.
// Для неотвеченного вопроса правильный вариант скрыт; после ответа
// раскрывается всё, включая выбор пользователя.
type QuestionProgress struct {
	QuestionID         string   `json:"question_id"`
	Category           string   `json:"category"`
	Question           string   `json:"question"`
	Answers            []string `json:"answers"`
	Score              int      `json:"score"`
	Answered           bool     `json:"answered"`
	AnswerIndex        *int     `json:"answer_index,omitempty"`
	UserAnswer         string   `json:"user_answer,omitempty"`
	CorrectAnswerIndex *int     `json:"correct_answer_index,omitempty"`
	CorrectAnswer      string   `json:"correct_answer,omitempty"`
	IsCorrect          *bool    `json:"is_correct,omitempty"`
}

// ProgressReport агрегирует полное состояние сессии для клиента
type ProgressReport struct {
	Session            *entity.GameSession `json:"session"`
	GameResult         string              `json:"game_result"`
	Progress           ProgressSummary     `json:"progress"`
	ProgressPercentage float64             `json:"progress_percentage"`
	Questions          []QuestionProgress  `json:"questions"`
	GameRules          GameRules           `json:"game_rules"`
}

// SessionSummary описывает одну сессию в списке game master
type SessionSummary struct {
	Session         *entity.GameSession `json:"session"`
	Username        string              `json:"username"`
	GameResult      string              `json:"game_result"`
	ScorePercentage float64             `json:"score_percentage"`
}

// SessionStats содержит сводные показатели по списку сессий
type SessionStats struct {
	Total      int     `json:"total"`
	Active     int     `json:"active"`
	Completed  int     `json:"completed"`
	Won        int     `json:"won"`
	Lost       int     `json:"lost"`
	Expired    int     `json:"expired"`
	WinRatePct float64 `json:"win_rate_pct"`
}

// SessionListing объединяет страницу сессий со сводной статистикой
type SessionListing struct {
	Sessions []SessionSummary `json:"sessions"`
	Stats    SessionStats     `json:"stats"`
}

// CreateSession создает новую игровую сессию для пользователя: выбирает
// набор вопросов по квоте категорий, фиксирует его в сессии и кеширует.
// Возвращает сессию и полный набор её вопросов в порядке прохождения.
func (s *SessionService) CreateSession(userID string, timeLimitSec *int) (*entity.GameSession, []entity.Question, error) {
	if !isValidUUID(userID) {
		return nil, nil, fmt.Errorf("%w: user_id must be a valid UUID", apperrors.ErrValidation)
	}

	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, nil, err
	}

	if timeLimitSec != nil && *timeLimitSec <= 0 {
		return nil, nil, fmt.Errorf("%w: time_limit must be a positive number of seconds", apperrors.ErrValidation)
	}

	questions, err := s.questionSvc.SelectForNewSession(s.settings.CategoryQuota)
	if err != nil {
		return nil, nil, err
	}

	questionIDs := make(entity.StringArray, len(questions))
	for i, q := range questions {
		questionIDs[i] = q.ID
	}

	session := &entity.GameSession{
		ID:                uuid.NewString(),
		UserID:            userID,
		Status:            entity.SessionStatusInProgress,
		CurrentScore:      0,
		QuestionsAnswered: 0,
		SelectedQuestions: questionIDs,
		StartedAt:         time.Now().UTC(),
		TimeLimitSec:      timeLimitSec,
	}

	if err := s.sessionRepo.Create(session); err != nil {
		return nil, nil, err
	}

	// Набор вопросов сессии неизменяем, поэтому кешируется один раз.
	// Ошибка кеша не фатальна: чтение вернётся в базу.
	s.cacheSessionQuestions(session.ID, questions)

	return session, questions, nil
}

// SubmitAnswer принимает ответ владельца сессии на вопрос её набора.
// Проверки выполняются в фиксированном порядке: формат идентификаторов,
// существование сессии, владение, статус, существование вопроса,
// принадлежность набору, диапазон индекса, отсутствие повторного ответа.
// Агрегаты сессии пересчитываются из полного списка ответов,
// а не инкрементируются.
func (s *SessionService) SubmitAnswer(sessionID, userID, questionID string, answerIndex int) (*AnswerResult, error) {
	if !isValidUUID(sessionID) {
		return nil, fmt.Errorf("%w: session_id must be a valid UUID", apperrors.ErrValidation)
	}
	if !isValidUUID(userID) {
		return nil, fmt.Errorf("%w: user_id must be a valid UUID", apperrors.ErrValidation)
	}
	if !isValidUUID(questionID) {
		return nil, fmt.Errorf("%w: question_id must be a valid UUID", apperrors.ErrValidation)
	}
	if answerIndex < 0 {
		return nil, fmt.Errorf("%w: answer_index must be a non-negative integer", apperrors.ErrValidation)
	}

	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}

	// Владение проверяется раньше статуса: чужая сессия не раскрывает
	// даже факт своей завершённости
	if session.UserID != userID {
		return nil, fmt.Errorf("%w: session belongs to another user", apperrors.ErrForbidden)
	}

	if session.IsTerminal() {
		return nil, fmt.Errorf("%w: session not active, status is %s", apperrors.ErrInvalidState, session.Status)
	}

	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}

	if !session.ContainsQuestion(questionID) {
		return nil, fmt.Errorf("%w: question not in session", apperrors.ErrValidation)
	}

	if !question.IsValidAnswerIndex(answerIndex) {
		return nil, fmt.Errorf("%w: answer_index must be between 0 and %d",
			apperrors.ErrValidation, question.AnswersCount()-1)
	}

	// Быстрая проверка повторного ответа. Уникальный индекс хранилища страхует
	// от гонки двух одновременных запросов.
	if existing, err := s.answerRepo.GetBySessionAndQuestion(sessionID, questionID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: answer already submitted", apperrors.ErrConflict)
	}

	answer := &entity.UserAnswer{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		QuestionID:  questionID,
		AnswerIndex: answerIndex,
		IsCorrect:   question.IsCorrect(answerIndex),
		AnsweredAt:  time.Now().UTC(),
	}

	if err := s.answerRepo.Create(answer); err != nil {
		return nil, err
	}

	questions, err := s.sessionQuestions(session)
	if err != nil {
		return nil, err
	}
	// Для активной сессии набор полон: in-use guard запрещает удаление
	// её вопросов. Неполный набор — повреждённые данные.
	if len(questions) != session.TotalQuestions() {
		return nil, fmt.Errorf("%w: session question set is incomplete", apperrors.ErrInternal)
	}

	answers, err := s.answerRepo.GetBySession(sessionID)
	if err != nil {
		return nil, err
	}

	progress := summarizeProgress(questions, answers)

	result := &AnswerResult{
		IsCorrect:          answer.IsCorrect,
		CorrectAnswerIndex: question.CorrectAnswerIndex,
		CorrectAnswer:      question.CorrectAnswer(),
		Progress:           progress,
		SessionStatus:      entity.SessionStatusInProgress,
	}
	if answer.IsCorrect {
		result.ScoreAwarded = question.Score
	}

	status := entity.SessionStatusInProgress
	var completedAt *time.Time

	if progress.QuestionsAnswered >= progress.TotalQuestions {
		// Порог сравнивается с точным процентом, округление — только для вывода
		if exactScorePercentage(progress.CurrentScore, progress.TotalPossibleScore) >= s.settings.WinThresholdPercent {
			status = entity.SessionStatusUserWon
		} else {
			status = entity.SessionStatusUserLost
		}
		now := time.Now().UTC()
		completedAt = &now

		finalResult := "LOSS"
		if status == entity.SessionStatusUserWon {
			finalResult = "WIN"
		}

		result.SessionStatus = status
		result.GameComplete = true
		result.FinalResults = &FinalResults{
			CurrentScore:       progress.CurrentScore,
			TotalPossibleScore: progress.TotalPossibleScore,
			ScorePercentage:    progress.ScorePercentage,
			Result:             finalResult,
		}

		log.Printf("[SessionService] Сессия %s завершена: счёт %d/%d (%.2f%%), статус %s",
			sessionID, progress.CurrentScore, progress.TotalPossibleScore, progress.ScorePercentage, status)
	}

	updated, err := s.sessionRepo.UpdateProgress(sessionID, progress.CurrentScore, progress.QuestionsAnswered, status, completedAt)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Сессия истекла между проверкой статуса и записью агрегатов
		return nil, fmt.Errorf("%w: session expired", apperrors.ErrInvalidState)
	}

	return result, nil
}

// GetProgress возвращает полное состояние сессии: агрегаты, правила победы
// и повопросный прогресс с раскрытием только отвеченных вопросов. Никогда
// не изменяет сессию.
func (s *SessionService) GetProgress(sessionID string) (*ProgressReport, error) {
	if !isValidUUID(sessionID) {
		return nil, fmt.Errorf("%w: session_id must be a valid UUID", apperrors.ErrValidation)
	}

	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}

	questions, err := s.sessionQuestions(session)
	if err != nil {
		return nil, err
	}

	answers, err := s.answerRepo.GetBySession(sessionID)
	if err != nil {
		return nil, err
	}

	answerByQuestion := make(map[string]entity.UserAnswer, len(answers))
	for _, a := range answers {
		answerByQuestion[a.QuestionID] = a
	}

	questionByID := make(map[string]entity.Question, len(questions))
	for _, q := range questions {
		questionByID[q.ID] = q
	}

	items := make([]QuestionProgress, 0, len(session.SelectedQuestions))
	for _, id := range session.SelectedQuestions {
		q, found := questionByID[id]
		if !found {
			// Вопрос терминальной сессии удалён из банка: отчёт не падает,
			// вопрос остаётся в списке заглушкой без текста
			item := QuestionProgress{QuestionID: id}
			if a, ok := answerByQuestion[id]; ok {
				item.Answered = true
				answerIndex := a.AnswerIndex
				isCorrect := a.IsCorrect
				item.AnswerIndex = &answerIndex
				item.IsCorrect = &isCorrect
			}
			items = append(items, item)
			continue
		}

		item := QuestionProgress{
			QuestionID: q.ID,
			Category:   q.Category,
			Question:   q.Prompt,
			Answers:    q.Answers,
			Score:      q.Score,
		}
		if a, ok := answerByQuestion[q.ID]; ok {
			item.Answered = true
			answerIndex := a.AnswerIndex
			correctIndex := q.CorrectAnswerIndex
			isCorrect := a.IsCorrect
			item.AnswerIndex = &answerIndex
			if a.AnswerIndex >= 0 && a.AnswerIndex < len(q.Answers) {
				item.UserAnswer = q.Answers[a.AnswerIndex]
			}
			item.CorrectAnswerIndex = &correctIndex
			item.CorrectAnswer = q.CorrectAnswer()
			item.IsCorrect = &isCorrect
		}
		items = append(items, item)
	}

	progress := summarizeProgress(questions, answers)
	if len(questions) < session.TotalQuestions() {
		// Часть набора удалена: счёт и количество берём из зафиксированных
		// агрегатов сессии, сумма очков и процент остаются по уцелевшим вопросам
		progress.TotalQuestions = session.TotalQuestions()
		progress.QuestionsAnswered = session.QuestionsAnswered
		progress.QuestionsRemaining = progress.TotalQuestions - progress.QuestionsAnswered
		progress.CurrentScore = session.CurrentScore
	}

	var progressPct float64
	if progress.TotalQuestions > 0 {
		progressPct = roundPercent(float64(progress.QuestionsAnswered) / float64(progress.TotalQuestions) * 100)
	}

	return &ProgressReport{
		Session:            session,
		GameResult:         session.GameResult(),
		Progress:           progress,
		ProgressPercentage: progressPct,
		Questions:          items,
		GameRules: GameRules{
			WinThresholdPercent: s.settings.WinThresholdPercent,
			PointsToWin:         pointsToWin(s.settings.WinThresholdPercent, progress.TotalPossibleScore),
		},
	}, nil
}

// ListSessions возвращает сессии новейшие первыми с применёнными фильтрами
// и сводной статистикой. Для сессий без пользователя подставляется
// заглушка "Unknown User".
func (s *SessionService) ListSessions(filters repository.SessionFilters) (*SessionListing, error) {
	if filters.Status != "" && !isKnownStatus(filters.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, filters.Status)
	}
	if filters.UserID != "" && !isValidUUID(filters.UserID) {
		return nil, fmt.Errorf("%w: user_id must be a valid UUID", apperrors.ErrValidation)
	}

	sessions, err := s.sessionRepo.List(filters)
	if err != nil {
		return nil, err
	}

	usernames := make(map[string]string)
	summaries := make([]SessionSummary, 0, len(sessions))
	stats := SessionStats{Total: len(sessions)}

	for i := range sessions {
		session := &sessions[i]

		username, ok := usernames[session.UserID]
		if !ok {
			username = s.lookupUsername(session.UserID)
			usernames[session.UserID] = username
		}

		switch session.Status {
		case entity.SessionStatusInProgress:
			stats.Active++
		case entity.SessionStatusUserWon:
			stats.Completed++
			stats.Won++
		case entity.SessionStatusUserLost:
			stats.Completed++
			stats.Lost++
		case entity.SessionStatusExpired:
			stats.Expired++
		}

		summaries = append(summaries, SessionSummary{
			Session:         session,
			Username:        username,
			GameResult:      session.GameResult(),
			ScorePercentage: s.sessionScorePercentage(session),
		})
	}

	if stats.Completed > 0 {
		stats.WinRatePct = roundPercent(float64(stats.Won) / float64(stats.Completed) * 100)
	}

	return &SessionListing{Sessions: summaries, Stats: stats}, nil
}

// ExpireOverdueSessions переводит в статус expired все активные сессии,
// чей лимит времени истек к моменту now. Возвращает число помеченных сессий.
// Переход выполняется условным обновлением, поэтому гонка с финальным
// ответом пользователя разрешается в пользу того, кто успел первым.
func (s *SessionService) ExpireOverdueSessions(now time.Time) (int, error) {
	overdue, err := s.sessionRepo.GetOverdueInProgress(now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range overdue {
		session := &overdue[i]
		marked, err := s.sessionRepo.MarkExpired(session.ID, now)
		if err != nil {
			log.Printf("[SessionService] Не удалось пометить сессию %s истекшей: %v", session.ID, err)
			continue
		}
		if marked {
			expired++
			log.Printf("[SessionService] Сессия %s истекла по лимиту времени", session.ID)
		}
	}

	return expired, nil
}

// sessionQuestions возвращает вопросы сессии в порядке прохождения.
// Сначала проверяется кеш, при промахе — база с восстановлением порядка
// по SelectedQuestions и повторным кешированием. Вопрос терминальной
// сессии мог быть удалён из банка, поэтому результат может быть короче
// набора; неполный результат не кешируется.
func (s *SessionService) sessionQuestions(session *entity.GameSession) ([]entity.Question, error) {
	cacheKey := sessionQuestionsCacheKey(session.ID)

	if s.cacheRepo != nil {
		var cached []entity.Question
		if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil && len(cached) == session.TotalQuestions() {
			return cached, nil
		}
	}

	questions, err := s.questionRepo.GetByIDs(session.SelectedQuestions)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]entity.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	ordered := make([]entity.Question, 0, len(session.SelectedQuestions))
	for _, id := range session.SelectedQuestions {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}

	if len(ordered) == session.TotalQuestions() {
		s.cacheSessionQuestions(session.ID, ordered)
	}
	return ordered, nil
}

// cacheSessionQuestions кеширует набор вопросов сессии (best effort)
func (s *SessionService) cacheSessionQuestions(sessionID string, questions []entity.Question) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.SetJSON(sessionQuestionsCacheKey(sessionID), questions, s.settings.SessionCacheTTL); err != nil {
		log.Printf("[SessionService] Не удалось закешировать вопросы сессии %s: %v", sessionID, err)
	}
}

// lookupUsername возвращает отображаемое имя пользователя или заглушку
func (s *SessionService) lookupUsername(userID string) string {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "Unknown User"
	}
	return user.DisplayName()
}

// sessionScorePercentage вычисляет процент счёта сессии от максимума её набора.
// Для списков, где набор вопросов недоступен (ошибка чтения), возвращает 0.
func (s *SessionService) sessionScorePercentage(session *entity.GameSession) float64 {
	questions, err := s.sessionQuestions(session)
	if err != nil {
		return 0
	}
	return scorePercentage(session.CurrentScore, maxPossibleScore(questions))
}

func sessionQuestionsCacheKey(sessionID string) string {
	return fmt.Sprintf("session:%s:questions", sessionID)
}

// summarizeProgress пересчитывает агрегаты сессии из полного списка её
// ответов. Ответы на вопросы вне набора игнорируются.
func summarizeProgress(questions []entity.Question, answers []entity.UserAnswer) ProgressSummary {
	scoreByQuestion := make(map[string]int, len(questions))
	for _, q := range questions {
		scoreByQuestion[q.ID] = q.Score
	}

	summary := ProgressSummary{
		TotalQuestions:     len(questions),
		TotalPossibleScore: maxPossibleScore(questions),
	}

	for _, a := range answers {
		score, ok := scoreByQuestion[a.QuestionID]
		if !ok {
			continue
		}
		summary.QuestionsAnswered++
		if a.IsCorrect {
			summary.CurrentScore += score
		}
	}

	summary.QuestionsRemaining = summary.TotalQuestions - summary.QuestionsAnswered
	summary.ScorePercentage = scorePercentage(summary.CurrentScore, summary.TotalPossibleScore)

	return summary
}

// maxPossibleScore возвращает сумму очков всех вопросов набора
func maxPossibleScore(questions []entity.Question) int {
	total := 0
	for _, q := range questions {
		total += q.Score
	}
	return total
}

// exactScorePercentage вычисляет точный процент счёта от максимума.
// Порог победы сравнивается именно с точным значением: 79.999% — это
// поражение, хотя для отображения оно округлится до 80.00.
func exactScorePercentage(score, maxScore int) float64 {
	if maxScore <= 0 {
		return 0
	}
	return float64(score) / float64(maxScore) * 100
}

// scorePercentage — тот же процент, округлённый до двух знаков для ответа API
func scorePercentage(score, maxScore int) float64 {
	return roundPercent(exactScorePercentage(score, maxScore))
}

// roundPercent округляет процент до двух десятичных знаков
func roundPercent(p float64) float64 {
	return math.Round(p*100) / 100
}

// pointsToWin возвращает минимальный целый счёт, дающий победу
func pointsToWin(thresholdPercent float64, totalPossibleScore int) int {
	return int(math.Ceil(thresholdPercent / 100 * float64(totalPossibleScore)))
}

// isKnownStatus проверяет значение фильтра статуса
func isKnownStatus(status string) bool {
	switch status {
	case entity.SessionStatusInProgress,
		entity.SessionStatusUserWon,
		entity.SessionStatusUserLost,
		entity.SessionStatusExpired:
		return true
	}
	return false
}
