// Package debug provides debug logging functionality for pathsieve.
package debug

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Logger provides debug logging capabilities.
//
// Classification runs on many goroutines at once, so the enabled flag is
// atomic and writes are serialized.
type Logger struct {
	enabled atomic.Bool
	mu      sync.Mutex
	writer  io.Writer
	start   time.Time
}

// Global debug logger instance
var globalLogger = &Logger{
	writer: os.Stderr,
}

// Enable enables debug logging
func Enable() {
	globalLogger.mu.Lock()
	globalLogger.start = time.Now()
	globalLogger.mu.Unlock()
	globalLogger.enabled.Store(true)
}

// Disable turns debug logging off again
func Disable() {
	globalLogger.enabled.Store(false)
}

// IsEnabled returns whether debug logging is enabled
func IsEnabled() bool {
	return globalLogger.enabled.Load()
}

// SetWriter sets the output writer for debug logs
func SetWriter(w io.Writer) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.writer = w
}

// Log writes a debug message if debugging is enabled
func Log(format string, args ...interface{}) {
	if !globalLogger.enabled.Load() {
		return
	}

	message := fmt.Sprintf(format, args...)

	// Ensure message ends with newline
	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}

	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	elapsed := time.Since(globalLogger.start)
	prefix := fmt.Sprintf("[DEBUG %s] ", formatDuration(elapsed))
	_, _ = fmt.Fprint(globalLogger.writer, prefix+message)
}

// LogSection writes a section header for better organization
func LogSection(title string) {
	if !IsEnabled() {
		return
	}

	Log("=== %s ===", title)
}

// LogTiming logs timing information
func LogTiming(operation string, duration time.Duration) {
	if !IsEnabled() {
		return
	}

	Log("Timing: %s took %s", operation, formatDuration(duration))
}

// LogPatternMatch logs pattern matching details
func LogPatternMatch(pattern, input string, matched bool) {
	if !IsEnabled() {
		return
	}

	status := "no match"
	if matched {
		status = "matched"
	}

	Log("Pattern: %q against %q - %s", pattern, truncate(input, 80), status)
}

// LogDecision logs the outcome of one classification
func LogDecision(filter, group, decision, path string) {
	if !IsEnabled() {
		return
	}

	if group == "" {
		Log("Decision: %s by %s for %q", decision, filter, truncate(path, 80))
		return
	}
	Log("Decision: %s by %s/%s for %q", decision, filter, group, truncate(path, 80))
}

// LogError logs error details
func LogError(err error, context string) {
	if !IsEnabled() {
		return
	}

	Log("Error in %s: %v", context, err)
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
