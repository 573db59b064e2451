package schedules

import (
	"strings"

	"github.com/julianstephens/courselit/internal/cli"
	"github.com/julianstephens/courselit/internal/constants"
	"github.com/julianstephens/courselit/internal/timetable"
)

const cellWidth = 10

func printGrid(ctx *cli.Context, g *timetable.Grid) {
	var b strings.Builder
	b.WriteString(pad("", 6))
	for day := 0; day < g.Days; day++ {
		name := ""
		if day < len(constants.DayNames) {
			name = constants.DayNames[day]
		}
		b.WriteString(pad(name, cellWidth))
	}
	b.WriteString("\n")

	for _, slot := range g.Slots {
		b.WriteString(pad(slot, 6))
		for day := 0; day < g.Days; day++ {
			cell := "."
			if c := g.At(slot, day); c != nil {
				cell = c.Course.ID
			}
			b.WriteString(pad(cell, cellWidth))
		}
		b.WriteString("\n")
	}
	ctx.Print(b.String())
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s[:width-1] + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}
