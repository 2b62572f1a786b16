package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestUser_DisplayName(t *testing.T) {
	// Arrange
	named := &User{ID: "u1", Username: strPtr("alice")}
	anonymous := &User{ID: "u2"}
	empty := &User{ID: "u3", Username: strPtr("")}

	// Act & Assert
	assert.Equal(t, "alice", named.DisplayName())
	assert.Equal(t, "Unknown User", anonymous.DisplayName(), "Пользователь без имени получает заглушку")
	assert.Equal(t, "Unknown User", empty.DisplayName(), "Пустое имя равносильно отсутствию")
}
