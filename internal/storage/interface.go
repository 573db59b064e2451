package storage

import (
	"errors"
	"time"

	"github.com/julianstephens/courselit/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Settings are the persistent selections of the CLI and TUI.
type Settings struct {
	ActiveStudentID    string
	ActiveCurriculumID string
	// ActiveScheduleID defaults to the active curriculum ID when empty.
	ActiveScheduleID string
	PlanNumber       int
}

// CurriculumInfo is a stored curriculum without its phases.
type CurriculumInfo struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	UpdatedAt time.Time `db:"-"`
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (Settings, error)
	SaveSettings(Settings) error

	// Students
	SaveStudent(models.StudentRecord) error
	GetStudent(studentID string) (models.StudentRecord, error)

	// Curricula
	SaveCurriculum(models.Curriculum) error
	GetCurriculum(id string) (models.Curriculum, error)
	ListCurricula() ([]CurriculumInfo, error)

	// Schedules
	SaveSchedule(id, curriculumID string, src models.ScheduleSource) error
	GetSchedule(id string) (models.ScheduleSource, error)

	// Plans
	SavePlan(models.SavedPlan) error
	GetPlan(studentID, curriculumID string, number int) (models.SavedPlan, error)

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by providers backed by versioned SQL migrations.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
}
