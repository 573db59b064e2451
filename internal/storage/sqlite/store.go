package sqlite

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/courselit/internal/logger"
	"github.com/julianstephens/courselit/internal/migration"
	"github.com/julianstephens/courselit/internal/storage"
	"github.com/julianstephens/courselit/migrations"
)

type Store struct {
	storage.BaseStore
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := s.open(); err != nil {
		return err
	}
	if _, err := s.runner().Apply(func(msg string) { logger.Info(msg) }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := s.EnsureSettings(); err != nil {
		return fmt.Errorf("failed to save default settings: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.DB != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'courselit init' first")
	}
	if err := s.open(); err != nil {
		return err
	}
	return s.runner().ValidateVersion()
}

// Migrate applies pending migrations to an existing database.
func (s *Store) Migrate(logFn func(string)) (int, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return 0, fmt.Errorf("storage not initialized, run 'courselit init' first")
	}
	if err := s.open(); err != nil {
		return 0, err
	}
	return s.runner().Apply(logFn)
}

func (s *Store) open() error {
	if s.DB != nil {
		return nil
	}
	db, err := sqlx.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.DB = db
	s.Converter = func(query string) string { return query }
	return nil
}

func (s *Store) runner() *migration.Runner {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		// The embedded tree always contains the directory.
		panic(err)
	}
	return migration.NewRunner(s.DB.DB, sub)
}

func (s *Store) GetConfigPath() string {
	return s.path
}
