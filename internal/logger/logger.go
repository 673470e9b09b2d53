// Package logger provides leveled logging for litmapper.
//
// Debug, Info and Section output is printed only in verbose mode, enabled
// with the --verbose flag or the log.verbose setting. Warnings and errors
// are always printed. Long-running commands such as serve and worker turn
// on timestamps so interleaved job output can be ordered.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// TimeFormat is the timestamp layout used when timestamps are enabled.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

var (
	mu         sync.Mutex
	verbose    bool
	timestamps bool
	output     io.Writer = os.Stderr
	now                  = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose mode is enabled.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetTimestamps prefixes every line with the current time.
func SetTimestamps(on bool) {
	mu.Lock()
	defer mu.Unlock()
	timestamps = on
}

// SetOutput sets the log writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a message in verbose mode.
func Debug(format string, args ...any) { write("DEBUG", true, format, args) }

// Info prints a message in verbose mode.
func Info(format string, args ...any) { write("INFO", true, format, args) }

// Warn prints a warning.
func Warn(format string, args ...any) { write("WARN", false, format, args) }

// Error prints an error.
func Error(format string, args ...any) { write("ERROR", false, format, args) }

// Section prints a header that groups the verbose lines after it,
// typically one per job.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n%s=== %s ===\n", stamp(), name)
	}
}

func write(level string, verboseOnly bool, format string, args []any) {
	mu.Lock()
	defer mu.Unlock()
	if verboseOnly && !verbose {
		return
	}
	fmt.Fprintf(output, "%s[%s] %s\n", stamp(), level, fmt.Sprintf(format, args...))
}

// stamp must be called with mu held.
func stamp() string {
	if !timestamps {
		return ""
	}
	return now().Format(TimeFormat) + " "
}
