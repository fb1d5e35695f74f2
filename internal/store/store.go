package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	// Postgres driver for shared deployments.
	_ "github.com/lib/pq"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Driver names accepted by OpenDriver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store holds the database handle and hands out repositories.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	return OpenDriver(DriverSQLite, dsn)
}

// OpenPostgres creates a new Store connected to a Postgres database.
func OpenPostgres(dsn string) (*Store, error) {
	return OpenDriver(DriverPostgres, dsn)
}

// OpenDriver opens a Store for the named driver ("sqlite" or "postgres").
func OpenDriver(driver, dsn string) (*Store, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite has a single writer; one connection also keeps the
		// per-connection pragmas in force for every query.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	} else if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return s, nil
}

// DB returns the underlying *sqlx.DB for raw queries.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string {
	return s.driver
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Stories() StoryRepo           { return &storyRepo{db: s.db} }
func (s *Store) Quizzes() QuizRepo            { return &quizRepo{db: s.db} }
func (s *Store) Translations() TranslationRepo { return &translationRepo{db: s.db} }
func (s *Store) Progress() ProgressRepo       { return &progressRepo{db: s.db} }
func (s *Store) Users() UserRepo              { return &userRepo{db: s.db} }
func (s *Store) EventRepo() EventRepo         { return &eventRepo{db: s.db} }

// applyPragmas configures SQLite for local single-user performance.
func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. ENGREADER_DB environment variable
// 2. $XDG_DATA_HOME/engreader/engreader.db
// 3. ~/.local/share/engreader/engreader.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("ENGREADER_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "engreader", "engreader.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
