package models

type CourseType string

const (
	CourseMandatory CourseType = "mandatory"
	CourseOptional  CourseType = "optional"
)

// Course is a catalog entry. It is never modified after the curriculum is loaded.
type Course struct {
	ID            string     `json:"id" yaml:"id" toml:"id" validate:"required"`
	Name          string     `json:"name" yaml:"name" toml:"name" validate:"required"`
	Credits       int        `json:"credits" yaml:"credits" toml:"credits" validate:"gte=0"`
	Phase         int        `json:"phase" yaml:"phase" toml:"phase" validate:"gte=1"`
	Type          CourseType `json:"type" yaml:"type" toml:"type" validate:"omitempty,oneof=mandatory optional"`
	Prerequisites []string   `json:"prerequisites" yaml:"prerequisites" toml:"prerequisites" validate:"dive,required"`
}

type Phase struct {
	Number  int      `json:"number" yaml:"number" toml:"number" validate:"gte=1"`
	Courses []Course `json:"courses" yaml:"courses" toml:"courses" validate:"dive"`
}

type Curriculum struct {
	ID          string  `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Name        string  `json:"name" yaml:"name" toml:"name" validate:"required"`
	TotalPhases int     `json:"totalPhases" yaml:"totalPhases" toml:"totalPhases" validate:"gte=0"`
	Phases      []Phase `json:"phases" yaml:"phases" toml:"phases" validate:"dive"`
}

// CourseCount returns the number of courses across all phases.
func (c Curriculum) CourseCount() int {
	n := 0
	for _, p := range c.Phases {
		n += len(p.Courses)
	}
	return n
}

// CoursePosition is a derived drawing box. Ghost positions carry a synthetic ID.
type CoursePosition struct {
	CourseID string  `json:"courseId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	IsGhost  bool    `json:"isGhost"`
}

type CurriculumVisualization struct {
	Positions []CoursePosition `json:"positions"`
}
