package layout

import (
	"fmt"

	"github.com/julianstephens/courselit/internal/constants"
	"github.com/julianstephens/courselit/internal/models"
)

type StudentVisualization struct {
	Positions []models.CoursePosition
	// CourseMap holds the real courses only, keyed by course ID.
	CourseMap map[string]models.StudentCourse
}

// GhostID names the placeholder at row slot of a semester column.
func GhostID(semesterNumber, slot int) string {
	return fmt.Sprintf("%s%d-%d", constants.GhostIDPrefix, semesterNumber, slot)
}

// Student lays out a plan with one column per semester. Boxes are centered in
// their column, and every column is padded with ghost boxes up to
// BoxesPerColumn. Courses past the capacity are still emitted.
func (e *Engine) Student(plan models.StudentPlan, phaseWidth float64) StudentVisualization {
	vis := StudentVisualization{
		CourseMap: make(map[string]models.StudentCourse),
	}

	boxWidth := e.BoxWidth(phaseWidth)
	xOffset := (phaseWidth - boxWidth) / 2
	spacing := e.cfg.VerticalSpacing

	for semIdx, sem := range plan.Semesters {
		x := float64(semIdx)*phaseWidth + xOffset

		for courseIdx, sc := range sem.Courses {
			vis.Positions = append(vis.Positions, models.CoursePosition{
				CourseID: sc.Course.ID,
				X:        x,
				Y:        float64(courseIdx)*spacing + spacing,
				Width:    boxWidth,
				Height:   e.cfg.BoxHeight,
			})
			vis.CourseMap[sc.Course.ID] = sc
		}

		for slot := len(sem.Courses); slot < e.cfg.BoxesPerColumn; slot++ {
			vis.Positions = append(vis.Positions, models.CoursePosition{
				CourseID: GhostID(sem.Number, slot),
				X:        x,
				Y:        float64(slot)*spacing + spacing,
				Width:    boxWidth,
				Height:   e.cfg.BoxHeight,
				IsGhost:  true,
			})
		}
	}
	return vis
}

// SlotAt maps a point in the student view to a semester index and row. It is
// the inverse of Student's placement and is how a drop target is resolved.
func (e *Engine) SlotAt(x, y, phaseWidth float64) (semIdx, row int, ok bool) {
	if phaseWidth <= 0 || e.cfg.VerticalSpacing <= 0 || x < 0 || y < e.cfg.VerticalSpacing {
		return 0, 0, false
	}
	return int(x / phaseWidth), int((y - e.cfg.VerticalSpacing) / e.cfg.VerticalSpacing), true
}
