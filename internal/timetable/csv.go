package timetable

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/validation"
)

type gridRow struct {
	Slot      string `csv:"slot"`
	Monday    string `csv:"monday"`
	Tuesday   string `csv:"tuesday"`
	Wednesday string `csv:"wednesday"`
	Thursday  string `csv:"thursday"`
	Friday    string `csv:"friday"`
	Saturday  string `csv:"saturday"`
}

func (r *gridRow) setDay(day int, value string) {
	switch day {
	case 0:
		r.Monday = value
	case 1:
		r.Tuesday = value
	case 2:
		r.Wednesday = value
	case 3:
		r.Thursday = value
	case 4:
		r.Friday = value
	case 5:
		r.Saturday = value
	}
}

// WriteCSV writes one row per slot with the course ID in each weekday column.
func WriteCSV(w io.Writer, g *Grid) error {
	rows := make([]*gridRow, 0, len(g.Slots))
	for _, slot := range g.Slots {
		row := &gridRow{Slot: slot}
		for day := 0; day < g.Days; day++ {
			if c := g.At(slot, day); c != nil {
				row.setDay(day, c.Course.ID)
			}
		}
		rows = append(rows, row)
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write timetable csv: %w", err)
	}
	return nil
}

type defaultRow struct {
	CourseID  string `csv:"course_id"`
	Day       string `csv:"day"`
	StartTime string `csv:"start_time"`
}

// ReadDefaultsCSV reads a default schedule from course_id,day,start_time rows.
// Day may be a 0-based index or a day name. Rows with an unreadable day are
// skipped and reported.
func ReadDefaultsCSV(r io.Reader) (map[string][]models.ScheduleEntry, []validation.Conflict, error) {
	var rows []*defaultRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, nil, fmt.Errorf("failed to read schedule csv: %w", err)
	}

	defaults := make(map[string][]models.ScheduleEntry)
	var warnings []validation.Conflict
	for i, row := range rows {
		id := strings.TrimSpace(row.CourseID)
		day, ok := parseDayField(row.Day)
		if id == "" || !ok {
			warnings = append(warnings, validation.Conflict{
				Type:        validation.ConflictUnknownDay,
				Description: fmt.Sprintf("schedule csv row %d (%q, %q) skipped", i+2, row.CourseID, row.Day),
				Items:       []string{id},
			})
			continue
		}
		defaults[id] = append(defaults[id], models.ScheduleEntry{
			Day:       day,
			StartTime: strings.TrimSpace(row.StartTime),
		})
	}
	return defaults, warnings, nil
}

func parseDayField(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	return ParseDay(s)
}
