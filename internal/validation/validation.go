package validation

import (
	"fmt"
	"sort"
	"strings"
)

// ConflictType represents the kind of data-integrity problem found in input data.
type ConflictType string

const (
	ConflictUnknownCourse          ConflictType = "unknown_course"
	ConflictUnresolvedPrerequisite ConflictType = "unresolved_prerequisite"
	ConflictPrerequisitePhase      ConflictType = "prerequisite_phase"
	ConflictDuplicateCourse        ConflictType = "duplicate_course"
	ConflictPhaseMismatch          ConflictType = "phase_mismatch"
	ConflictInvalidSemester        ConflictType = "invalid_semester"
	ConflictInvalidTime            ConflictType = "invalid_time"
	ConflictUnknownDay             ConflictType = "unknown_day"
	ConflictInvalidDay             ConflictType = "invalid_day"
	ConflictSlotCollision          ConflictType = "slot_collision"
	ConflictPrerequisiteOrder      ConflictType = "prerequisite_order"
	ConflictInvalidRecord          ConflictType = "invalid_record"
)

// Conflict is a single data-integrity warning. The offending entry is skipped
// by whoever reported it; a Conflict is never fatal.
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // Course IDs involved
	Slot        string   // Timetable slot (if applicable)
	Day         int      // Timetable day (if applicable)
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// Add appends conflicts to the result.
func (vr *ValidationResult) Add(conflicts ...Conflict) {
	vr.Conflicts = append(vr.Conflicts, conflicts...)
}

// Merge appends the conflicts of another result.
func (vr *ValidationResult) Merge(other ValidationResult) {
	vr.Conflicts = append(vr.Conflicts, other.Conflicts...)
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Count returns how many conflicts of the given type were found.
func (vr *ValidationResult) Count(t ConflictType) int {
	n := 0
	for _, c := range vr.Conflicts {
		if c.Type == t {
			n++
		}
	}
	return n
}

// FormatReport returns a human-readable report of all conflicts, grouped by type.
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	groups := make(map[ConflictType][]Conflict)
	var types []string
	for _, c := range vr.Conflicts {
		if _, ok := groups[c.Type]; !ok {
			types = append(types, string(c.Type))
		}
		groups[c.Type] = append(groups[c.Type], c)
	}
	sort.Strings(types)

	var b strings.Builder
	fmt.Fprintf(&b, "Conflicts detected (%d):\n", len(vr.Conflicts))
	for _, t := range types {
		fmt.Fprintf(&b, "\n%s:\n", t)
		for _, c := range groups[ConflictType(t)] {
			fmt.Fprintf(&b, "- %s\n", c.Description)
		}
	}
	return b.String()
}
