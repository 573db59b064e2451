package layout

import (
	"math"

	"github.com/julianstephens/courselit/internal/constants"
	"github.com/julianstephens/courselit/internal/models"
)

// Config holds the geometry shared by curriculum and student layouts.
type Config struct {
	PhaseWidth      float64
	MinBoxWidth     float64
	WidthFactor     float64
	BoxHeight       float64
	VerticalSpacing float64
	TopMargin       float64
	BoxesPerColumn  int
}

func DefaultConfig() Config {
	return Config{
		PhaseWidth:      constants.DefaultPhaseWidth,
		MinBoxWidth:     constants.DefaultMinBoxWidth,
		WidthFactor:     constants.DefaultWidthFactor,
		BoxHeight:       constants.DefaultBoxHeight,
		VerticalSpacing: constants.DefaultVerticalSpacing,
		TopMargin:       constants.DefaultTopMargin,
		BoxesPerColumn:  constants.DefaultBoxesPerColumn,
	}
}

type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// BoxWidth returns the box width for a column of the given width.
func (e *Engine) BoxWidth(phaseWidth float64) float64 {
	return math.Max(e.cfg.MinBoxWidth, phaseWidth*e.cfg.WidthFactor)
}

// Curriculum lays out every course by catalog position: phases are columns,
// courses within a phase are rows. Positions ignore prerequisite topology.
// An empty curriculum yields an empty visualization.
func (e *Engine) Curriculum(c models.Curriculum) models.CurriculumVisualization {
	vis := models.CurriculumVisualization{
		Positions: make([]models.CoursePosition, 0, c.CourseCount()),
	}

	width := e.BoxWidth(e.cfg.PhaseWidth)
	for phaseIdx, phase := range c.Phases {
		x := float64(phaseIdx) * e.cfg.PhaseWidth
		for courseIdx, course := range phase.Courses {
			vis.Positions = append(vis.Positions, models.CoursePosition{
				CourseID: course.ID,
				X:        x,
				Y:        float64(courseIdx)*e.cfg.VerticalSpacing + e.cfg.TopMargin,
				Width:    width,
				Height:   e.cfg.BoxHeight,
			})
		}
	}
	return vis
}

// Bounds returns the width and height needed to draw every position.
func Bounds(positions []models.CoursePosition) (width, height float64) {
	for _, p := range positions {
		width = math.Max(width, p.X+p.Width)
		height = math.Max(height, p.Y+p.Height)
	}
	return width, height
}
