package timetable

import (
	"github.com/julianstephens/courselit/internal/models"
)

// Grid is the weekly timetable: Cells[slotID][day] is the course occupying
// that cell, or nil.
type Grid struct {
	Slots []string
	Days  int
	Cells map[string][]*models.StudentCourse
}

func NewGrid(slots []string, days int) *Grid {
	g := &Grid{
		Slots: append([]string(nil), slots...),
		Days:  days,
		Cells: make(map[string][]*models.StudentCourse, len(slots)),
	}
	for _, slot := range slots {
		g.Cells[slot] = make([]*models.StudentCourse, days)
	}
	return g
}

// At returns the course in a cell, or nil for an empty or unknown cell.
func (g *Grid) At(slot string, day int) *models.StudentCourse {
	row, ok := g.Cells[slot]
	if !ok || day < 0 || day >= len(row) {
		return nil
	}
	return row[day]
}

// SlotIndex returns the position of slot in the ordered slot list.
func (g *Grid) SlotIndex(slot string) (int, bool) {
	for i, s := range g.Slots {
		if s == slot {
			return i, true
		}
	}
	return 0, false
}

// Occupied counts non-empty cells.
func (g *Grid) Occupied() int {
	n := 0
	for _, row := range g.Cells {
		for _, c := range row {
			if c != nil {
				n++
			}
		}
	}
	return n
}

func (g *Grid) set(slot string, day int, course *models.StudentCourse) *models.StudentCourse {
	prev := g.Cells[slot][day]
	g.Cells[slot][day] = course
	return prev
}
