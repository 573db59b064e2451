package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/storage"
)

// ErrNoActiveStudent is the auth failure of a StoreSource.
var ErrNoActiveStudent = errors.New("no active student, run 'courselit student import' first")

// StoreSource serves the load chain from local storage. A session is
// authenticated when settings name an active student.
type StoreSource struct {
	store    storage.Provider
	settings storage.Settings
}

func NewStoreSource(store storage.Provider) *StoreSource {
	return &StoreSource{store: store}
}

func (s *StoreSource) CheckAuth(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	settings, err := s.store.GetSettings()
	if err != nil {
		return err
	}
	if settings.ActiveStudentID == "" {
		return ErrNoActiveStudent
	}
	s.settings = settings
	return nil
}

// FetchProfile returns the active student's record. When the record names
// no degree, the active curriculum is used.
func (s *StoreSource) FetchProfile(ctx context.Context) (models.StudentRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.StudentRecord{}, err
	}
	rec, err := s.store.GetStudent(s.settings.ActiveStudentID)
	if err != nil {
		return models.StudentRecord{}, err
	}
	if s.settings.ActiveCurriculumID != "" {
		rec.CurrentDegree = s.settings.ActiveCurriculumID
	}
	if rec.CurrentDegree == "" {
		return models.StudentRecord{}, fmt.Errorf("student %s has no degree and no curriculum is active", rec.StudentID)
	}
	return rec, nil
}

func (s *StoreSource) FetchCurriculum(ctx context.Context, degree string) (models.Curriculum, error) {
	if err := ctx.Err(); err != nil {
		return models.Curriculum{}, err
	}
	return s.store.GetCurriculum(degree)
}

// FetchSchedule returns the active schedule for the active curriculum, or
// the schedule stored under the degree ID. A missing schedule is empty.
func (s *StoreSource) FetchSchedule(ctx context.Context, degree string) (models.ScheduleSource, error) {
	if err := ctx.Err(); err != nil {
		return models.ScheduleSource{}, err
	}
	src, err := s.store.GetSchedule(ScheduleID(s.settings, degree))
	if errors.Is(err, storage.ErrNotFound) {
		return models.NewScheduleSource(), nil
	}
	return src, err
}

// FetchPlan returns the plan saved for the active student under degree.
func (s *StoreSource) FetchPlan(ctx context.Context, degree string, number int) (models.SavedPlan, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.SavedPlan{}, false, err
	}
	if s.settings.PlanNumber > 0 {
		number = s.settings.PlanNumber
	}
	saved, err := s.store.GetPlan(s.settings.ActiveStudentID, degree, number)
	if errors.Is(err, storage.ErrNotFound) {
		return models.SavedPlan{}, false, nil
	}
	if err != nil {
		return models.SavedPlan{}, false, err
	}
	return saved, true, nil
}

// ScheduleID names the schedule row a degree's timetable is read from.
func ScheduleID(settings storage.Settings, degree string) string {
	if settings.ActiveScheduleID != "" && degree == settings.ActiveCurriculumID {
		return settings.ActiveScheduleID
	}
	return degree
}
