package store

import (
	"fmt"
	"strings"
)

// serialPK is replaced per dialect in the DDL below.
const serialPK = "{{serial_pk}}"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		native_language TEXT NOT NULL DEFAULT 'tr',
		created_at TIMESTAMP NOT NULL,
		last_login_at TIMESTAMP NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (email)`,

	`CREATE TABLE IF NOT EXISTS stories (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		topic TEXT NOT NULL DEFAULT '',
		level TEXT NOT NULL,
		status TEXT NOT NULL,
		target_words TEXT NOT NULL DEFAULT '[]',
		target_word_count INTEGER NOT NULL DEFAULT 0,
		target_words_used INTEGER NOT NULL DEFAULT 0,
		usage_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
		word_count INTEGER NOT NULL DEFAULT 0,
		reading_minutes INTEGER NOT NULL DEFAULT 0,
		is_completed BOOLEAN NOT NULL DEFAULT FALSE,
		completed_at TIMESTAMP NULL,
		reading_seconds INTEGER NOT NULL DEFAULT 0,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stories_user ON stories (user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_stories_status ON stories (status)`,

	`CREATE TABLE IF NOT EXISTS quizzes (
		id TEXT PRIMARY KEY,
		story_id TEXT NOT NULL REFERENCES stories (id),
		title TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_quizzes_story ON quizzes (story_id)`,

	`CREATE TABLE IF NOT EXISTS quiz_questions (
		id TEXT PRIMARY KEY,
		quiz_id TEXT NOT NULL REFERENCES quizzes (id),
		question_number INTEGER NOT NULL,
		question_text TEXT NOT NULL,
		option_a TEXT NOT NULL,
		option_b TEXT NOT NULL,
		option_c TEXT NOT NULL,
		option_d TEXT NOT NULL,
		correct_answer TEXT NOT NULL,
		explanation TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_quiz_questions_number ON quiz_questions (quiz_id, question_number)`,

	`CREATE TABLE IF NOT EXISTS quiz_attempts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		quiz_id TEXT NOT NULL REFERENCES quizzes (id),
		answers TEXT NOT NULL DEFAULT '{}',
		score INTEGER NOT NULL,
		total_questions INTEGER NOT NULL,
		percentage DOUBLE PRECISION NOT NULL,
		time_spent_seconds INTEGER NOT NULL DEFAULT 0,
		completed_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quiz_attempts_user ON quiz_attempts (user_id, completed_at)`,

	`CREATE TABLE IF NOT EXISTS translations (
		id TEXT PRIMARY KEY,
		story_id TEXT NULL,
		source_text TEXT NOT NULL,
		normalized_text TEXT NOT NULL,
		source_language TEXT NOT NULL,
		target_language TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		is_word BOOLEAN NOT NULL DEFAULT FALSE,
		usage_count INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_translations_key
		ON translations (normalized_text, source_language, target_language)`,
	`CREATE INDEX IF NOT EXISTS idx_translations_story ON translations (story_id)`,

	`CREATE TABLE IF NOT EXISTS progress (
		user_id TEXT PRIMARY KEY,
		current_level TEXT NOT NULL DEFAULT 'A1',
		total_stories_read INTEGER NOT NULL DEFAULT 0,
		total_quizzes_completed INTEGER NOT NULL DEFAULT 0,
		average_quiz_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_words_learned INTEGER NOT NULL DEFAULT 0,
		total_translations_viewed INTEGER NOT NULL DEFAULT 0,
		total_reading_minutes INTEGER NOT NULL DEFAULT 0,
		current_streak_days INTEGER NOT NULL DEFAULT 0,
		last_reading_date TIMESTAMP NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS user_events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		event_data TEXT NOT NULL DEFAULT '{}',
		story_id TEXT NULL,
		quiz_id TEXT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_events_user ON user_events (user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id ` + serialPK + `,
		created_at TIMESTAMP NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms BIGINT NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
}

func (s *Store) migrate() error {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DriverPostgres {
		pk = "BIGSERIAL PRIMARY KEY"
	}
	for _, stmt := range schema {
		stmt = strings.ReplaceAll(stmt, serialPK, pk)
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %.60q: %w", stmt, err)
		}
	}
	return nil
}
