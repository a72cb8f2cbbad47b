// Package progress defines the leveled progress events every long-running
// component reports through, so the CLI and the TUI can decide what to show.
//
// Components accept a Func and call it synchronously:
//
//	resolver := preview.NewResolver(primary, secondary, cfg, func(e progress.Event) {
//	    if e.Level == progress.LevelVerbose && !verbose {
//	        return
//	    }
//	    fmt.Println(e.Level.Prefix() + e.Message)
//	})
//
// A nil Func is valid and discards events.
package progress

import "fmt"

// Level indicates the severity/type of a progress message.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// Event is a single progress update.
type Event struct {
	Message string
	Level   Level
}

// Func receives progress events.
type Func func(Event)

// Emit calls f with a formatted message if f is not nil.
func (f Func) Emit(level Level, format string, args ...any) {
	if f == nil {
		return
	}
	f(Event{Message: fmt.Sprintf(format, args...), Level: level})
}

// Prefix returns the console prefix for the level.
func (l Level) Prefix() string {
	switch l {
	case LevelError:
		return "✗ "
	case LevelWarning:
		return "! "
	case LevelSuccess:
		return "✓ "
	case LevelInfo:
		return "› "
	default:
		return "  "
	}
}

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "info"
	}
}
