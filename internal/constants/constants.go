package constants

const (
	AppName            = "courselit"
	DefaultKeyringUser = "db-connection"

	DefaultDBFile     = "courselit.db"
	DefaultConfigFile = "config.toml"
	DefaultLogFile    = "courselit.log"

	EnvConnectionString = "COURSELIT_DB_CONNECTION"
	EnvConfig           = "COURSELIT_CONFIG"

	// TimeFormat is the HH:MM layout used by schedule start times and slots.
	TimeFormat = "15:04"
)

// Layout defaults, in abstract drawing units.
const (
	DefaultPhaseWidth      = 200.0
	DefaultMinBoxWidth     = 140.0
	DefaultWidthFactor     = 0.8
	DefaultBoxHeight       = 60.0
	DefaultVerticalSpacing = 80.0
	DefaultTopMargin       = 40.0
	DefaultBoxesPerColumn  = 6

	GhostIDPrefix = "ghost-"
)

// Plan defaults.
const (
	DefaultTotalSemesters = 12
	DefaultPassingGrade   = 6.0
	DefaultMaxGrade       = 10.0
	DefaultPlanNumber     = 1
)

// DaysPerWeek is the number of timetable columns, Monday (0) through Saturday (5).
const DaysPerWeek = 6

// DefaultSlots is the ordered list of class start times.
var DefaultSlots = []string{
	"07:30", "08:20", "09:10", "10:10", "11:00",
	"13:30", "14:20", "15:10", "16:20", "17:10",
	"18:30", "19:20", "20:20", "21:10",
}

// DayNames holds the display name of each timetable column.
var DayNames = [DaysPerWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
