// Package corelog centralizes the "[Component] message" log line
// convention the teacher repo scattered across fmt.Printf calls
// (chunk.Manager, save.Manager) into one reusable logger.
package corelog

import (
	"log"
	"os"
)

// Logger prefixes every line with a component tag, e.g. "[Mesher] ...".
type Logger struct {
	component string
	std       *log.Logger
}

// New returns a Logger tagged with component.
func New(component string) *Logger {
	return &Logger{
		component: component,
		std:       log.New(os.Stderr, "", log.LstdFlags),
	}
}

// Printf logs a formatted message under this logger's component tag.
func (l *Logger) Printf(format string, args ...any) {
	l.std.Printf("[%s] "+format, append([]any{l.component}, args...)...)
}
