package entity

import (
	"time"
)

// Статусы игровой сессии. Сессия стартует в in_progress и ровно один раз
// переходит в одно из терминальных состояний.
const (
	SessionStatusInProgress = "in_progress"
	SessionStatusUserWon    = "user_won"
	SessionStatusUserLost   = "user_lost"
	SessionStatusExpired    = "expired"
)

// GameSession представляет одно прохождение игры пользователем по
// фиксированному набору вопросов, выбранному при создании.
type GameSession struct {
	ID                string      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            string      `gorm:"type:uuid;not null;index" json:"user_id"`
	Status            string      `gorm:"size:20;not null;default:'in_progress';index" json:"status"`
	CurrentScore      int         `gorm:"not null;default:0" json:"current_score"`
	QuestionsAnswered int         `gorm:"not null;default:0" json:"questions_answered"`
	SelectedQuestions StringArray `gorm:"type:jsonb;not null" json:"selected_questions"`
	StartedAt         time.Time   `gorm:"not null;index" json:"started_at"`
	TimeLimitSec      *int        `gorm:"column:time_limit" json:"time_limit,omitempty"`
	CompletedAt       *time.Time  `json:"completed_at,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (GameSession) TableName() string {
	return "game_sessions"
}

// IsInProgress проверяет, активна ли сессия
func (s *GameSession) IsInProgress() bool {
	return s.Status == SessionStatusInProgress
}

// IsTerminal проверяет, достигла ли сессия терминального состояния.
// Терминальная сессия больше не изменяется.
func (s *GameSession) IsTerminal() bool {
	return s.Status != SessionStatusInProgress
}

// ContainsQuestion проверяет, входит ли вопрос в набор этой сессии
func (s *GameSession) ContainsQuestion(questionID string) bool {
	return s.SelectedQuestions.Contains(questionID)
}

// TotalQuestions возвращает размер набора вопросов сессии
func (s *GameSession) TotalQuestions() int {
	return len(s.SelectedQuestions)
}

// Deadline возвращает момент истечения сессии или nil, если лимит времени не задан
func (s *GameSession) Deadline() *time.Time {
	if s.TimeLimitSec == nil {
		return nil
	}
	d := s.StartedAt.Add(time.Duration(*s.TimeLimitSec) * time.Second)
	return &d
}

// IsOverdue проверяет, просрочена ли активная сессия на момент now
func (s *GameSession) IsOverdue(now time.Time) bool {
	deadline := s.Deadline()
	return s.IsInProgress() && deadline != nil && now.After(*deadline)
}

// GameResult возвращает человекочитаемый итог сессии для списков game master
func (s *GameSession) GameResult() string {
	switch s.Status {
	case SessionStatusUserWon:
		return "WIN"
	case SessionStatusUserLost:
		return "LOSS"
	case SessionStatusExpired:
		return "EXPIRED"
	default:
		return "IN_PROGRESS"
	}
}
