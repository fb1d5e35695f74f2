package model

import (
	"fmt"
	"time"
)

// DefaultWordCount is used when a GenerationRequest leaves WordCount zero.
const DefaultWordCount = 300

// GenerationRequest is what a learner asks for. Target words keep their
// order and may repeat.
type GenerationRequest struct {
	Level       Level
	Topic       string
	TargetWords []string
	WordCount   int
}

// DesiredWords returns WordCount, or DefaultWordCount when unset.
func (r GenerationRequest) DesiredWords() int {
	if r.WordCount <= 0 {
		return DefaultWordCount
	}
	return r.WordCount
}

// StoryStatus is the lifecycle state of a generated story.
type StoryStatus string

const (
	StatusPending    StoryStatus = "pending"
	StatusGenerating StoryStatus = "generating"
	StatusGenerated  StoryStatus = "generated"
	StatusFailed     StoryStatus = "failed"
)

var storyTransitions = map[StoryStatus][]StoryStatus{
	StatusPending:    {StatusGenerating},
	StatusGenerating: {StatusGenerated, StatusFailed},
}

// CanTransition reports whether from → to is an allowed move.
func CanTransition(from, to StoryStatus) bool {
	for _, next := range storyTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Story is a generated reading text and its derived metrics.
type Story struct {
	ID              string      `db:"id"`
	UserID          string      `db:"user_id"`
	Title           string      `db:"title"`
	Content         string      `db:"content"`
	Topic           string      `db:"topic"`
	Level           Level       `db:"level"`
	Status          StoryStatus `db:"status"`
	TargetWords     StringList  `db:"target_words"`
	TargetWordCount int         `db:"target_word_count"`
	TargetWordsUsed int         `db:"target_words_used"`
	UsagePercentage float64     `db:"usage_percentage"`
	WordCount       int         `db:"word_count"`
	ReadingMinutes  int         `db:"reading_minutes"`
	IsCompleted     bool        `db:"is_completed"`
	CompletedAt     *time.Time  `db:"completed_at"`
	ReadingSeconds  int         `db:"reading_seconds"`
	IsDeleted       bool        `db:"is_deleted"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

// Transition moves the story to the next status, refusing any move not
// in the lifecycle table.
func (s *Story) Transition(to StoryStatus, now time.Time) error {
	if !CanTransition(s.Status, to) {
		return fmt.Errorf("story %s: invalid status transition %s -> %s", s.ID, s.Status, to)
	}
	s.Status = to
	s.UpdatedAt = now
	return nil
}
