package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestGameSession_IsTerminal(t *testing.T) {
	// Arrange & Act & Assert
	active := &GameSession{Status: SessionStatusInProgress}
	assert.False(t, active.IsTerminal())
	assert.True(t, active.IsInProgress())

	for _, status := range []string{SessionStatusUserWon, SessionStatusUserLost, SessionStatusExpired} {
		session := &GameSession{Status: status}
		assert.True(t, session.IsTerminal(), "Статус %s должен быть терминальным", status)
		assert.False(t, session.IsInProgress())
	}
}

func TestGameSession_ContainsQuestion(t *testing.T) {
	// Arrange
	session := &GameSession{
		SelectedQuestions: StringArray{"q1", "q2", "q3"},
	}

	// Act & Assert
	assert.True(t, session.ContainsQuestion("q2"))
	assert.False(t, session.ContainsQuestion("q9"), "Вопрос вне набора не должен принадлежать сессии")
	assert.Equal(t, 3, session.TotalQuestions())
}

func TestGameSession_Deadline(t *testing.T) {
	// Arrange
	startedAt := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	withLimit := &GameSession{StartedAt: startedAt, TimeLimitSec: intPtr(300)}
	withoutLimit := &GameSession{StartedAt: startedAt}

	// Act & Assert
	deadline := withLimit.Deadline()
	require.NotNil(t, deadline)
	assert.Equal(t, startedAt.Add(5*time.Minute), *deadline)

	assert.Nil(t, withoutLimit.Deadline(), "Сессия без лимита не имеет дедлайна")
}

func TestGameSession_IsOverdue(t *testing.T) {
	// Arrange
	startedAt := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	session := &GameSession{
		Status:       SessionStatusInProgress,
		StartedAt:    startedAt,
		TimeLimitSec: intPtr(60),
	}

	// Act & Assert
	assert.False(t, session.IsOverdue(startedAt.Add(30*time.Second)), "До дедлайна сессия не просрочена")
	assert.True(t, session.IsOverdue(startedAt.Add(2*time.Minute)), "После дедлайна сессия просрочена")

	// Сессия без лимита никогда не просрочена
	unlimited := &GameSession{Status: SessionStatusInProgress, StartedAt: startedAt}
	assert.False(t, unlimited.IsOverdue(startedAt.Add(24*time.Hour)))

	// Терминальная сессия не просрочена даже после дедлайна
	finished := &GameSession{Status: SessionStatusUserWon, StartedAt: startedAt, TimeLimitSec: intPtr(60)}
	assert.False(t, finished.IsOverdue(startedAt.Add(2*time.Minute)))
}

func TestGameSession_GameResult(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{SessionStatusUserWon, "WIN"},
		{SessionStatusUserLost, "LOSS"},
		{SessionStatusExpired, "EXPIRED"},
		{SessionStatusInProgress, "IN_PROGRESS"},
	}

	for _, tt := range tests {
		session := &GameSession{Status: tt.status}
		assert.Equal(t, tt.want, session.GameResult())
	}
}
