package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Quiz is the comprehension quiz derived from one story.
type Quiz struct {
	ID        string         `db:"id"`
	StoryID   string         `db:"story_id"`
	Title     string         `db:"title"`
	CreatedAt time.Time      `db:"created_at"`
	Questions []QuizQuestion `db:"-"`
}

// QuizQuestion is one multiple-choice question. CorrectAnswer is a letter A-D.
type QuizQuestion struct {
	ID             string `db:"id"`
	QuizID         string `db:"quiz_id"`
	QuestionNumber int    `db:"question_number"`
	QuestionText   string `db:"question_text"`
	OptionA        string `db:"option_a"`
	OptionB        string `db:"option_b"`
	OptionC        string `db:"option_c"`
	OptionD        string `db:"option_d"`
	CorrectAnswer  string `db:"correct_answer"`
	Explanation    string `db:"explanation"`
}

// Option returns the text of the option with the given letter.
func (q QuizQuestion) Option(letter string) string {
	switch letter {
	case "A", "a":
		return q.OptionA
	case "B", "b":
		return q.OptionB
	case "C", "c":
		return q.OptionC
	case "D", "d":
		return q.OptionD
	}
	return ""
}

// QuizAttempt is one immutable submission. Answers is keyed by the
// question number rendered as a decimal string.
type QuizAttempt struct {
	ID               string    `db:"id"`
	UserID           string    `db:"user_id"`
	QuizID           string    `db:"quiz_id"`
	Answers          AnswerMap `db:"answers"`
	Score            int       `db:"score"`
	TotalQuestions   int       `db:"total_questions"`
	Percentage       float64   `db:"percentage"`
	TimeSpentSeconds int       `db:"time_spent_seconds"`
	CompletedAt      time.Time `db:"completed_at"`
}

// Translation is a cached source→target rendering. NormalizedText is the
// lower-cased trimmed key; SourceText keeps the first requested form.
type Translation struct {
	ID             string    `db:"id"`
	StoryID        *string   `db:"story_id"`
	SourceText     string    `db:"source_text"`
	NormalizedText string    `db:"normalized_text"`
	SourceLanguage string    `db:"source_language"`
	TargetLanguage string    `db:"target_language"`
	TranslatedText string    `db:"translated_text"`
	IsWord         bool      `db:"is_word"`
	UsageCount     int       `db:"usage_count"`
	CreatedAt      time.Time `db:"created_at"`
}

// Progress is the per-user learning aggregate.
type Progress struct {
	UserID                  string     `db:"user_id"`
	CurrentLevel            Level      `db:"current_level"`
	TotalStoriesRead        int        `db:"total_stories_read"`
	TotalQuizzesCompleted   int        `db:"total_quizzes_completed"`
	AverageQuizScore        float64    `db:"average_quiz_score"`
	TotalWordsLearned       int        `db:"total_words_learned"`
	TotalTranslationsViewed int        `db:"total_translations_viewed"`
	TotalReadingMinutes     int        `db:"total_reading_minutes"`
	CurrentStreakDays       int        `db:"current_streak_days"`
	LastReadingDate         *time.Time `db:"last_reading_date"`
	UpdatedAt               time.Time  `db:"updated_at"`
}

// Event types recognised by the progress aggregator.
const (
	EventWordTap       = "WordTap"
	EventSentencePress = "SentencePress"
	EventStoryComplete = "StoryComplete"
	EventQuizComplete  = "QuizComplete"
)

// UserEvent is an append-only learner interaction record.
type UserEvent struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	EventType string    `db:"event_type"`
	EventData string    `db:"event_data"`
	StoryID   *string   `db:"story_id"`
	QuizID    *string   `db:"quiz_id"`
	CreatedAt time.Time `db:"created_at"`
}

// User is a registered learner.
type User struct {
	ID             string     `db:"id"`
	Email          string     `db:"email"`
	PasswordHash   string     `db:"password_hash"`
	FirstName      string     `db:"first_name"`
	LastName       string     `db:"last_name"`
	NativeLanguage string     `db:"native_language"`
	CreatedAt      time.Time  `db:"created_at"`
	LastLoginAt    *time.Time `db:"last_login_at"`
}

// StringList is stored as a JSON array in a TEXT column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	return scanJSON(src, l)
}

// AnswerMap is stored as a JSON object in a TEXT column.
type AnswerMap map[string]string

func (m AnswerMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]string(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *AnswerMap) Scan(src any) error {
	return scanJSON(src, m)
}

func scanJSON(src any, dst any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("scan json: unsupported type %T", src)
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}
