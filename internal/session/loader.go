package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/julianstephens/courselit/internal/curriculum"
	"github.com/julianstephens/courselit/internal/logger"
	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/planner"
	"github.com/julianstephens/courselit/internal/timetable"
	"github.com/julianstephens/courselit/internal/validation"
)

var (
	// ErrStale is returned when a load finished after Discard or a newer load.
	ErrStale = errors.New("load result discarded")
	// ErrNotReady is returned by operations that need a completed load.
	ErrNotReady = errors.New("session not ready")
)

// Source provides the external data the load chain depends on. Each call is
// a one-shot request; the loader does not retry.
type Source interface {
	CheckAuth(ctx context.Context) error
	FetchProfile(ctx context.Context) (models.StudentRecord, error)
	FetchCurriculum(ctx context.Context, degree string) (models.Curriculum, error)
	FetchSchedule(ctx context.Context, degree string) (models.ScheduleSource, error)
}

// PlanSource is an optional Source extension returning the plan previously
// saved for a degree. When it reports found and the record it was built from
// is unchanged, the saved plan is used instead of rebuilding one.
type PlanSource interface {
	FetchPlan(ctx context.Context, degree string, number int) (models.SavedPlan, bool, error)
}

// Snapshot is everything a completed load produced.
type Snapshot struct {
	Record     models.StudentRecord
	Degree     string
	Curriculum models.Curriculum
	Lookup     *curriculum.Lookup
	Plan       *planner.Store
	Schedule   models.ScheduleSource
	Overrides  map[string]map[string]models.ProfessorOverride
	Warnings   validation.ValidationResult
	// Rebuilt is set when a saved plan was replaced because the record
	// changed since it was saved.
	Rebuilt bool
}

// Loader runs the auth -> profile -> curriculum -> schedule chain with a
// single state variable. Every run is tagged with a generation; results of
// a run that was superseded or discarded are dropped rather than applied.
type Loader struct {
	src  Source
	opts planner.Options

	mu       sync.Mutex
	state    State
	gen      uint64
	err      error
	snapshot *Snapshot
}

func NewLoader(src Source, opts planner.Options) *Loader {
	return &Loader{src: src, opts: opts}
}

func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Err returns the failure that moved the loader to StateFailed.
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Snapshot returns the result of the last completed load.
func (l *Loader) Snapshot() (*Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateReady || l.snapshot == nil {
		return nil, ErrNotReady
	}
	return l.snapshot, nil
}

// Discard invalidates any load in flight and resets to idle.
func (l *Loader) Discard() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.state = StateIdle
	l.err = nil
	l.snapshot = nil
}

// Load runs the full chain. It returns ErrStale if Discard or another Load
// happened while it was running.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	gen := l.begin()
	snap := &Snapshot{}

	if err := l.src.CheckAuth(ctx); err != nil {
		return nil, l.fail(gen, fmt.Errorf("auth check failed: %w", err))
	}
	if err := l.advance(gen, StateAuthChecked); err != nil {
		return nil, err
	}

	rec, err := l.src.FetchProfile(ctx)
	if err != nil {
		return nil, l.fail(gen, fmt.Errorf("failed to load profile: %w", err))
	}
	snap.Record = rec
	snap.Degree = rec.CurrentDegree
	if err := l.advance(gen, StateProfileLoaded); err != nil {
		return nil, err
	}

	return l.loadProgram(ctx, gen, snap)
}

// SwitchCurriculum reloads the curriculum and schedule stages for another
// degree, keeping the profile of the current snapshot. The new lookup is
// built from scratch so nothing from the previous curriculum survives.
func (l *Loader) SwitchCurriculum(ctx context.Context, degree string) (*Snapshot, error) {
	l.mu.Lock()
	if l.state != StateReady || l.snapshot == nil {
		l.mu.Unlock()
		return nil, ErrNotReady
	}
	prev := l.snapshot
	l.gen++
	gen := l.gen
	l.state = StateProfileLoaded
	l.err = nil
	l.mu.Unlock()

	snap := &Snapshot{Record: prev.Record, Degree: degree}
	return l.loadProgram(ctx, gen, snap)
}

func (l *Loader) loadProgram(ctx context.Context, gen uint64, snap *Snapshot) (*Snapshot, error) {
	c, err := l.src.FetchCurriculum(ctx, snap.Degree)
	if err != nil {
		return nil, l.fail(gen, fmt.Errorf("failed to load curriculum: %w", err))
	}
	lookup, warnings := curriculum.NewLookup(c)
	snap.Curriculum = c
	snap.Lookup = lookup
	snap.Warnings.Add(warnings...)
	snap.Warnings.Merge(curriculum.Validate(c, lookup))

	plan, err := l.studentPlan(ctx, snap)
	if err != nil {
		return nil, l.fail(gen, fmt.Errorf("failed to load plan: %w", err))
	}
	snap.Plan = planner.NewStore(plan, lookup, l.opts)
	if err := l.advance(gen, StateCurriculumLoaded); err != nil {
		return nil, err
	}

	sched, err := l.src.FetchSchedule(ctx, snap.Degree)
	if err != nil {
		return nil, l.fail(gen, fmt.Errorf("failed to load schedule: %w", err))
	}
	snap.Schedule = sched
	overrides, warnings := timetable.BuildOverrides(sched.Professors)
	snap.Overrides = overrides
	snap.Warnings.Add(warnings...)
	for _, id := range sched.Invalid {
		snap.Warnings.Add(validation.Conflict{
			Type:        validation.ConflictInvalidRecord,
			Description: fmt.Sprintf("schedule entries for course %s could not be read", id),
			Items:       []string{id},
		})
	}
	if err := l.advance(gen, StateScheduleLoaded); err != nil {
		return nil, err
	}

	for _, w := range snap.Warnings.Conflicts {
		logger.Warn("Data integrity warning", "type", w.Type, "detail", w.Description)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return nil, ErrStale
	}
	l.state = StateReady
	l.snapshot = snap
	return snap, nil
}

func (l *Loader) studentPlan(ctx context.Context, snap *Snapshot) (models.StudentPlan, error) {
	build := func() models.StudentPlan {
		plan, warnings := planner.Build(snap.Record, snap.Lookup, l.opts)
		snap.Warnings.Add(warnings...)
		return plan
	}

	ps, ok := l.src.(PlanSource)
	if !ok {
		return build(), nil
	}
	saved, found, err := ps.FetchPlan(ctx, snap.Degree, l.opts.PlanNumber)
	if err != nil {
		return models.StudentPlan{}, err
	}
	if !found {
		return build(), nil
	}

	// Rows saved before hashes were kept have none and are trusted.
	if saved.RecordHash != "" && saved.RecordHash != planner.RecordHash(snap.Record) {
		plan, kept := planner.KeepPlanned(build(), saved.Plan, snap.Lookup)
		snap.Rebuilt = true
		logger.Info("Record changed since the plan was saved, rebuilding", "student", snap.Record.StudentID, "degree", snap.Degree, "keptPlanned", kept)
		return plan, nil
	}

	plan, warnings := planner.Trim(l.revalidate(saved.Plan, snap), l.opts.TotalSemesters)
	snap.Warnings.Add(warnings...)
	return plan, nil
}

// revalidate drops saved courses the current curriculum no longer knows and
// refreshes the rest from the lookup.
func (l *Loader) revalidate(plan models.StudentPlan, snap *Snapshot) models.StudentPlan {
	for i := range plan.Semesters {
		kept := plan.Semesters[i].Courses[:0]
		for _, c := range plan.Semesters[i].Courses {
			course, ok := snap.Lookup.Get(c.Course.ID)
			if !ok {
				snap.Warnings.Add(validation.Conflict{
					Type:        validation.ConflictUnknownCourse,
					Description: fmt.Sprintf("saved plan course %s is not in curriculum %q", c.Course.ID, snap.Lookup.Name()),
					Items:       []string{c.Course.ID},
				})
				continue
			}
			c.Course = course
			kept = append(kept, c)
		}
		plan.Semesters[i].Courses = kept
	}
	return plan
}

func (l *Loader) begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.state = StateIdle
	l.err = nil
	l.snapshot = nil
	return l.gen
}

func (l *Loader) advance(gen uint64, to State) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return ErrStale
	}
	if !canAdvance(l.state, to) {
		return fmt.Errorf("invalid transition %s -> %s", l.state, to)
	}
	logger.Debug("Load stage complete", "from", l.state, "to", to)
	l.state = to
	return nil
}

func (l *Loader) fail(gen uint64, err error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return ErrStale
	}
	logger.Error("Load failed", "stage", l.state, "error", err)
	l.state = StateFailed
	l.err = err
	return err
}
