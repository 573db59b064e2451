package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/julianstephens/courselit/internal/constants"
	"github.com/julianstephens/courselit/internal/models"
)

const (
	keyActiveStudent    = "active_student_id"
	keyActiveCurriculum = "active_curriculum_id"
	keyActiveSchedule   = "active_schedule_id"
	keyPlanNumber       = "plan_number"
)

// BaseStore implements the query layer shared by the SQLite and PostgreSQL
// stores. Queries are written with ? placeholders and passed through
// Converter before execution.
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

type blobRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Data      string `db:"data"`
	UpdatedAt string `db:"updated_at"`
}

func (s *BaseStore) Close() error {
	if s.DB == nil {
		return nil
	}
	err := s.DB.Close()
	s.DB = nil
	return err
}

func (s *BaseStore) q(query string) string {
	if s.Converter == nil {
		return query
	}
	return s.Converter(query)
}

func (s *BaseStore) ready() error {
	if s.DB == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func (s *BaseStore) GetSettings() (Settings, error) {
	if err := s.ready(); err != nil {
		return Settings{}, err
	}
	rows, err := s.DB.Queryx("SELECT key, value FROM settings")
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	defer rows.Close()

	settings := Settings{}
	count := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Settings{}, err
		}
		switch key {
		case keyActiveStudent:
			settings.ActiveStudentID = value
		case keyActiveCurriculum:
			settings.ActiveCurriculumID = value
		case keyActiveSchedule:
			settings.ActiveScheduleID = value
		case keyPlanNumber:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", keyPlanNumber, err)
			}
			settings.PlanNumber = n
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return Settings{}, err
	}
	if count == 0 {
		return Settings{}, fmt.Errorf("settings %w", ErrNotFound)
	}
	return settings, nil
}

func (s *BaseStore) SaveSettings(settings Settings) error {
	if err := s.ready(); err != nil {
		return err
	}
	if settings.PlanNumber < 1 {
		settings.PlanNumber = constants.DefaultPlanNumber
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := s.q(`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`)
	values := [][2]string{
		{keyActiveStudent, settings.ActiveStudentID},
		{keyActiveCurriculum, settings.ActiveCurriculumID},
		{keyActiveSchedule, settings.ActiveScheduleID},
		{keyPlanNumber, strconv.Itoa(settings.PlanNumber)},
	}
	for _, kv := range values {
		if _, err := tx.Exec(query, kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", kv[0], err)
		}
	}
	return tx.Commit()
}

// EnsureSettings writes default settings when none exist yet.
func (s *BaseStore) EnsureSettings() error {
	if _, err := s.GetSettings(); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.SaveSettings(Settings{PlanNumber: constants.DefaultPlanNumber})
}

func (s *BaseStore) SaveStudent(rec models.StudentRecord) error {
	if err := s.ready(); err != nil {
		return err
	}
	if rec.StudentID == "" {
		return fmt.Errorf("student record has no studentId")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode student: %w", err)
	}
	_, err = s.DB.Exec(s.q(`INSERT INTO students (id, name, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, data = excluded.data, updated_at = excluded.updated_at`),
		rec.StudentID, rec.Name, string(data), now())
	if err != nil {
		return fmt.Errorf("failed to save student: %w", err)
	}
	return nil
}

func (s *BaseStore) GetStudent(studentID string) (models.StudentRecord, error) {
	var rec models.StudentRecord
	if err := s.getBlob(&rec, "student "+studentID, `SELECT id, name, data, updated_at FROM students WHERE id = ?`, studentID); err != nil {
		return models.StudentRecord{}, err
	}
	return rec, nil
}

func (s *BaseStore) SaveCurriculum(c models.Curriculum) error {
	if err := s.ready(); err != nil {
		return err
	}
	if c.ID == "" {
		return fmt.Errorf("curriculum has no id")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode curriculum: %w", err)
	}
	_, err = s.DB.Exec(s.q(`INSERT INTO curricula (id, name, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, data = excluded.data, updated_at = excluded.updated_at`),
		c.ID, c.Name, string(data), now())
	if err != nil {
		return fmt.Errorf("failed to save curriculum: %w", err)
	}
	return nil
}

func (s *BaseStore) GetCurriculum(id string) (models.Curriculum, error) {
	var c models.Curriculum
	if err := s.getBlob(&c, "curriculum "+id, `SELECT id, name, data, updated_at FROM curricula WHERE id = ?`, id); err != nil {
		return models.Curriculum{}, err
	}
	c.ID = id
	return c, nil
}

func (s *BaseStore) ListCurricula() ([]CurriculumInfo, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var rows []blobRow
	if err := s.DB.Select(&rows, `SELECT id, name, '' AS data, updated_at FROM curricula ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list curricula: %w", err)
	}
	infos := make([]CurriculumInfo, 0, len(rows))
	for _, r := range rows {
		info := CurriculumInfo{ID: r.ID, Name: r.Name}
		if t, err := time.Parse(time.RFC3339, r.UpdatedAt); err == nil {
			info.UpdatedAt = t
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (s *BaseStore) SaveSchedule(id, curriculumID string, src models.ScheduleSource) error {
	if err := s.ready(); err != nil {
		return err
	}
	if id == "" {
		id = curriculumID
	}
	data, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}
	_, err = s.DB.Exec(s.q(`INSERT INTO schedules (id, curriculum_id, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET curriculum_id = excluded.curriculum_id, data = excluded.data, updated_at = excluded.updated_at`),
		id, curriculumID, string(data), now())
	if err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	return nil
}

func (s *BaseStore) GetSchedule(id string) (models.ScheduleSource, error) {
	src := models.NewScheduleSource()
	if err := s.getBlob(&src, "schedule "+id, `SELECT id, curriculum_id AS name, data, updated_at FROM schedules WHERE id = ?`, id); err != nil {
		return models.ScheduleSource{}, err
	}
	return src, nil
}

type planRow struct {
	Data       string `db:"data"`
	RecordHash string `db:"record_hash"`
}

// SavePlan stores a plan under its student, curriculum and number.
func (s *BaseStore) SavePlan(saved models.SavedPlan) error {
	if err := s.ready(); err != nil {
		return err
	}
	if saved.CurriculumID == "" {
		return fmt.Errorf("plan has no curriculum")
	}
	data, err := json.Marshal(saved.Plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	_, err = s.DB.Exec(s.q(`INSERT INTO plans (student_id, curriculum_id, number, record_hash, data, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_id, curriculum_id, number) DO UPDATE SET record_hash = excluded.record_hash, data = excluded.data, updated_at = excluded.updated_at`),
		saved.StudentID, saved.CurriculumID, saved.Plan.Number, saved.RecordHash, string(data), now())
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

func (s *BaseStore) GetPlan(studentID, curriculumID string, number int) (models.SavedPlan, error) {
	if err := s.ready(); err != nil {
		return models.SavedPlan{}, err
	}
	what := fmt.Sprintf("plan %d of %s for student %s", number, curriculumID, studentID)
	var row planRow
	err := s.DB.Get(&row, s.q(`SELECT data, record_hash FROM plans WHERE student_id = ? AND curriculum_id = ? AND number = ?`),
		studentID, curriculumID, number)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SavedPlan{}, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if err != nil {
		return models.SavedPlan{}, fmt.Errorf("failed to load %s: %w", what, err)
	}
	saved := models.SavedPlan{StudentID: studentID, CurriculumID: curriculumID, RecordHash: row.RecordHash}
	if err := json.Unmarshal([]byte(row.Data), &saved.Plan); err != nil {
		return models.SavedPlan{}, fmt.Errorf("failed to decode %s: %w", what, err)
	}
	return saved, nil
}

// getBlob loads a single row and decodes its JSON data column into dest.
func (s *BaseStore) getBlob(dest any, what, query string, args ...any) error {
	if err := s.ready(); err != nil {
		return err
	}
	var row blobRow
	err := s.DB.Get(&row, s.q(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", what, err)
	}
	if err := json.Unmarshal([]byte(row.Data), dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", what, err)
	}
	return nil
}
