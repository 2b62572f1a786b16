package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Ограничения на список вариантов ответа
const (
	MinAnswers = 2
	MaxAnswers = 4
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	// Обработка пустого массива байтов
	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if o == nil || len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Contains проверяет наличие элемента в массиве
func (o StringArray) Contains(s string) bool {
	for _, v := range o {
		if v == s {
			return true
		}
	}
	return false
}

// Question представляет вопрос викторины в банке вопросов
type Question struct {
	ID                 string      `gorm:"type:uuid;primaryKey" json:"id"`
	Category           string      `gorm:"size:100;not null;index" json:"category"`
	Prompt             string      `gorm:"size:500;not null;column:question" json:"question"`
	Answers            StringArray `gorm:"type:jsonb;not null" json:"answers"`
	CorrectAnswerIndex int         `gorm:"not null" json:"-"` // Скрыто от клиента
	Score              int         `gorm:"not null;default:10" json:"score"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "trivia_questions"
}

// IsCorrect проверяет, является ли выбранный вариант правильным
func (q *Question) IsCorrect(answerIndex int) bool {
	return answerIndex == q.CorrectAnswerIndex
}

// AnswersCount возвращает количество вариантов ответа
func (q *Question) AnswersCount() int {
	return len(q.Answers)
}

// IsValidAnswerIndex проверяет, попадает ли индекс в диапазон вариантов вопроса
func (q *Question) IsValidAnswerIndex(answerIndex int) bool {
	return answerIndex >= 0 && answerIndex < len(q.Answers)
}

// CorrectAnswer возвращает текст правильного варианта
func (q *Question) CorrectAnswer() string {
	if q.IsValidAnswerIndex(q.CorrectAnswerIndex) {
		return q.Answers[q.CorrectAnswerIndex]
	}
	return ""
}
