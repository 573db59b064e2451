package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/courselit/internal/logger"
)

// ErrConflicts marks a command that ran to completion but reported
// data-integrity conflicts. It maps to exit status 2.
var ErrConflicts = stderrors.New("data-integrity conflicts detected")

// Format prefixes err with "Error: ".
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

func Formatf(format string, args ...any) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// ExitCode is 0 for nil, 2 for ErrConflicts and 1 for anything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, ErrConflicts):
		return 2
	default:
		return 1
	}
}

// Fatal logs err, prints it to stderr and exits. A nil err is a no-op.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintln(os.Stderr, Format(err))
	os.Exit(ExitCode(err))
}

func Fatalf(format string, args ...any) {
	Fatal(fmt.Errorf(format, args...))
}
