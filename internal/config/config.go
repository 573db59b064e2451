package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/julianstephens/courselit/internal/constants"
	"github.com/julianstephens/courselit/internal/layout"
	"github.com/julianstephens/courselit/internal/planner"
	"github.com/julianstephens/courselit/internal/validation"
)

type LayoutConfig struct {
	PhaseWidth      float64 `toml:"phase_width" validate:"gt=0"`
	MinBoxWidth     float64 `toml:"min_box_width" validate:"gt=0"`
	WidthFactor     float64 `toml:"width_factor" validate:"gt=0,lte=1"`
	BoxHeight       float64 `toml:"box_height" validate:"gt=0"`
	VerticalSpacing float64 `toml:"vertical_spacing" validate:"gt=0"`
	TopMargin       float64 `toml:"top_margin" validate:"gte=0"`
	BoxesPerColumn  int     `toml:"boxes_per_column" validate:"gte=1"`
}

type PlanConfig struct {
	TotalSemesters int     `toml:"total_semesters" validate:"gte=1"`
	PassingGrade   float64 `toml:"passing_grade" validate:"gte=0"`
	MaxGrade       float64 `toml:"max_grade" validate:"gtfield=PassingGrade"`
}

type TimetableConfig struct {
	Slots []string `toml:"slots" validate:"min=1,unique,dive,required"`
}

// Config holds the tunables read from config.toml. Persistent selections
// such as the active student live in the store instead.
type Config struct {
	Layout    LayoutConfig    `toml:"layout"`
	Plan      PlanConfig      `toml:"plan"`
	Timetable TimetableConfig `toml:"timetable"`
}

func Default() Config {
	l := layout.DefaultConfig()
	return Config{
		Layout: LayoutConfig{
			PhaseWidth:      l.PhaseWidth,
			MinBoxWidth:     l.MinBoxWidth,
			WidthFactor:     l.WidthFactor,
			BoxHeight:       l.BoxHeight,
			VerticalSpacing: l.VerticalSpacing,
			TopMargin:       l.TopMargin,
			BoxesPerColumn:  l.BoxesPerColumn,
		},
		Plan: PlanConfig{
			TotalSemesters: constants.DefaultTotalSemesters,
			PassingGrade:   constants.DefaultPassingGrade,
			MaxGrade:       constants.DefaultMaxGrade,
		},
		Timetable: TimetableConfig{
			Slots: append([]string(nil), constants.DefaultSlots...),
		},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value and a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("error reading config file: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Write saves cfg as TOML, creating the parent directory.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func (c Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	// Slots are the grid rows, top to bottom.
	var prev time.Time
	for i, slot := range c.Timetable.Slots {
		t, err := time.Parse(constants.TimeFormat, slot)
		if err != nil || len(slot) != len(constants.TimeFormat) {
			return fmt.Errorf("invalid timetable slot %q, expected HH:MM", slot)
		}
		if i > 0 && !t.After(prev) {
			return fmt.Errorf("timetable slot %q must come after %q", slot, c.Timetable.Slots[i-1])
		}
		prev = t
	}
	return nil
}

func (c Config) LayoutConfig() layout.Config {
	return layout.Config{
		PhaseWidth:      c.Layout.PhaseWidth,
		MinBoxWidth:     c.Layout.MinBoxWidth,
		WidthFactor:     c.Layout.WidthFactor,
		BoxHeight:       c.Layout.BoxHeight,
		VerticalSpacing: c.Layout.VerticalSpacing,
		TopMargin:       c.Layout.TopMargin,
		BoxesPerColumn:  c.Layout.BoxesPerColumn,
	}
}

// PlanOptions returns planner options for the given plan number.
func (c Config) PlanOptions(number int) planner.Options {
	opts := planner.DefaultOptions()
	if number > 0 {
		opts.PlanNumber = number
	}
	opts.TotalSemesters = c.Plan.TotalSemesters
	opts.PassingGrade = c.Plan.PassingGrade
	opts.MaxGrade = c.Plan.MaxGrade
	return opts
}

// DefaultDir is the per-user courselit directory.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, constants.AppName)
}

// PathFor returns the config.toml that belongs to a store. PostgreSQL stores
// use the per-user directory.
func PathFor(storePath string, isConnString bool) string {
	if isConnString || storePath == "" {
		return filepath.Join(DefaultDir(), constants.DefaultConfigFile)
	}
	return filepath.Join(filepath.Dir(storePath), constants.DefaultConfigFile)
}
