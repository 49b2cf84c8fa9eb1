// Package debug is the robot's leveled logger. Every call is a no-op below its level.
package debug

import (
	"io"
	"log"
	"os"
)

// Debug levels
const (
	LevelOff     = 0 // No output
	LevelInfo    = 1 // Startup info, configuration, errors
	LevelLive    = 2 // Mode transitions, target changes, vision rejections
	LevelVerbose = 3 // Calculation details
	LevelTrace   = 4 // Per-cycle values, GPIO
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

var (
	level  int
	logger *log.Logger
	output io.Writer = os.Stdout
)

// Init sets the level (0-4). Level 0 silences everything.
func Init(debugLevel int) {
	level = debugLevel
	logger = nil
	if level > LevelOff {
		logger = log.New(output, "[robot] ", log.LstdFlags|log.Lmicroseconds)
	}
}

// SetOutput redirects debug output, e.g. to mirror it on the web status stream.
func SetOutput(w io.Writer) {
	output = w
	if logger != nil {
		logger.SetOutput(w)
	}
}

// IsEnabled returns true if debug level is >= the requested level.
func IsEnabled(minLevel int) bool {
	return level >= minLevel && logger != nil
}

func logAt(minLevel int, format string, args ...any) {
	if IsEnabled(minLevel) {
		logger.Printf(format, args...)
	}
}

func banner(minLevel int, title, line string) {
	if IsEnabled(minLevel) {
		logger.Print(line)
		logger.Printf("  %s", title)
		logger.Print(line)
	}
}

// Info prints a level 1 message.
func Info(format string, args ...any) { logAt(LevelInfo, "[INFO] "+format, args...) }

// Summary prints a banner (level 1).
func Summary(title string) {
	banner(LevelInfo, title, "═══════════════════════════════════════")
}

// Value prints a named value (level 1).
func Value(name string, value any) { logAt(LevelInfo, "[INFO]   %s = %v", name, value) }

// Error prints an error (level 1).
func Error(err error) { logAt(LevelInfo, "[ERROR] %v", err) }

// Live prints a level 2 message.
func Live(format string, args ...any) { logAt(LevelLive, "[LIVE] "+format, args...) }

// Mode prints a drive mode transition (level 2).
func Mode(from, to string) { logAt(LevelLive, "[LIVE] Drive mode: %s -> %s", from, to) }

// Target prints a newly acquired vision target (level 2).
func Target(id int, name string) {
	logAt(LevelLive, "[LIVE] Target acquired: tag %d (%s)", id, name)
}

// Rejected prints a discarded measurement and why (level 2).
func Rejected(what, why string) { logAt(LevelLive, "[LIVE] Rejected %s: %s", what, why) }

// Verbose prints a level 3 message.
func Verbose(format string, args ...any) { logAt(LevelVerbose, "[VERBOSE] "+format, args...) }

// PrintStruct prints a struct with field names (level 3).
func PrintStruct(name string, v any) { logAt(LevelVerbose, "[VERBOSE] %s: %+v", name, v) }

// Section prints a section separator (level 3).
func Section(name string) { banner(LevelVerbose, name, rule) }

// Step prints a numbered startup step (level 3).
func Step(num int, description string) {
	logAt(LevelVerbose, "[VERBOSE] Step %d: %s", num, description)
}

// Trace prints a level 4 message.
func Trace(format string, args ...any) { logAt(LevelTrace, "[TRACE] "+format, args...) }

// Cycle prints a per-cycle message tagged with the cycle number (level 4).
func Cycle(n uint64, format string, args ...any) {
	logAt(LevelTrace, "[CYCLE %d] "+format, append([]any{n}, args...)...)
}

// GPIO prints a GPIO operation (level 4).
func GPIO(operation string, pin int, value any) {
	logAt(LevelTrace, "[GPIO] %s pin=%d value=%v", operation, pin, value)
}
