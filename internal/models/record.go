package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// StudentRecord is the raw profile shape. Coursed and Plan are indexed by
// semester offset (index 0 is semester 1).
type StudentRecord struct {
	ID                string             `json:"id"`
	StudentID         string             `json:"studentId" validate:"required"`
	Name              string             `json:"name" validate:"required"`
	CurrentSemester   int                `json:"currentSemester" validate:"gte=1"`
	CurrentDegree     string             `json:"currentDegree,omitempty"`
	InterestedDegrees []string           `json:"interestedDegrees,omitempty"`
	FirstTerm         string             `json:"firstTerm,omitempty" validate:"omitempty,term"`
	Coursed           [][]RawCourseEntry `json:"coursed"`
	Plan              [][]RawCourseEntry `json:"plan"`
}

// RawCourseEntry is one [courseCode, classCode, grade] tuple. Malformed
// tuples decode with Invalid set instead of failing the whole record.
type RawCourseEntry struct {
	CourseCode string
	ClassCode  string
	Grade      *float64
	Invalid    bool
	Raw        string
}

func (e *RawCourseEntry) UnmarshalJSON(data []byte) error {
	*e = RawCourseEntry{Raw: string(data)}

	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil || len(parts) == 0 {
		e.Invalid = true
		return nil
	}
	if err := json.Unmarshal(parts[0], &e.CourseCode); err != nil || e.CourseCode == "" {
		e.Invalid = true
		return nil
	}
	if len(parts) > 1 && !isNull(parts[1]) {
		if err := json.Unmarshal(parts[1], &e.ClassCode); err != nil {
			e.Invalid = true
			return nil
		}
	}
	if len(parts) > 2 && !isNull(parts[2]) {
		grade, ok := decodeGrade(parts[2])
		if !ok {
			e.Invalid = true
			return nil
		}
		e.Grade = &grade
	}
	return nil
}

func (e RawCourseEntry) MarshalJSON() ([]byte, error) {
	if e.Invalid && json.Valid([]byte(e.Raw)) {
		return []byte(e.Raw), nil
	}
	if e.Grade != nil {
		return json.Marshal([]any{e.CourseCode, e.ClassCode, *e.Grade})
	}
	return json.Marshal([]any{e.CourseCode, e.ClassCode})
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeGrade accepts a JSON number or a numeric string ("9.5", "9,5").
func decodeGrade(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = string(bytes.ReplaceAll([]byte(s), []byte(","), []byte(".")))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
