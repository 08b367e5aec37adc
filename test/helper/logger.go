// Package helper holds test doubles shared across packages.
package helper

import (
	"fmt"
	"strings"
	"sync"

	"github.com/LerianStudio/lib-commons/commons/log"
)

// Entry is one captured log line.
type Entry struct {
	Level   string
	Message string
}

// Logger records everything written to it. Loggers derived through WithFields
// share the parent's entries.
type Logger struct {
	mu      *sync.Mutex
	entries *[]Entry
	prefix  string
}

var _ log.Logger = (*Logger)(nil)

// NewLogger returns an empty recording logger.
func NewLogger() *Logger {
	return &Logger{mu: &sync.Mutex{}, entries: &[]Entry{}}
}

func (l *Logger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	*l.entries = append(*l.entries, Entry{Level: level, Message: l.prefix + strings.TrimRight(msg, "\n")})
}

// Entries returns a copy of what has been logged so far.
func (l *Logger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(*l.entries))
	copy(out, *l.entries)

	return out
}

// Contains reports whether any entry at level includes substr.
func (l *Logger) Contains(level, substr string) bool {
	for _, e := range l.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}

	return false
}

func (l *Logger) Info(args ...any)                 { l.add("INFO", fmt.Sprint(args...)) }
func (l *Logger) Infof(format string, args ...any) { l.add("INFO", fmt.Sprintf(format, args...)) }
func (l *Logger) Infoln(args ...any)               { l.add("INFO", fmt.Sprintln(args...)) }

func (l *Logger) Error(args ...any)                 { l.add("ERROR", fmt.Sprint(args...)) }
func (l *Logger) Errorf(format string, args ...any) { l.add("ERROR", fmt.Sprintf(format, args...)) }
func (l *Logger) Errorln(args ...any)               { l.add("ERROR", fmt.Sprintln(args...)) }

func (l *Logger) Warn(args ...any)                 { l.add("WARN", fmt.Sprint(args...)) }
func (l *Logger) Warnf(format string, args ...any) { l.add("WARN", fmt.Sprintf(format, args...)) }
func (l *Logger) Warnln(args ...any)               { l.add("WARN", fmt.Sprintln(args...)) }

func (l *Logger) Debug(args ...any)                 { l.add("DEBUG", fmt.Sprint(args...)) }
func (l *Logger) Debugf(format string, args ...any) { l.add("DEBUG", fmt.Sprintf(format, args...)) }
func (l *Logger) Debugln(args ...any)               { l.add("DEBUG", fmt.Sprintln(args...)) }

// Fatal records at FATAL level. It does not exit.
func (l *Logger) Fatal(args ...any)                 { l.add("FATAL", fmt.Sprint(args...)) }
func (l *Logger) Fatalf(format string, args ...any) { l.add("FATAL", fmt.Sprintf(format, args...)) }
func (l *Logger) Fatalln(args ...any)               { l.add("FATAL", fmt.Sprintln(args...)) }

func (l *Logger) WithFields(fields ...any) log.Logger {
	if len(fields) == 0 {
		return l
	}

	return &Logger{mu: l.mu, entries: l.entries, prefix: l.prefix + fmt.Sprint(fields...) + " "}
}

func (l *Logger) WithDefaultMessageTemplate(message string) log.Logger {
	return &Logger{mu: l.mu, entries: l.entries, prefix: l.prefix + message}
}

func (l *Logger) Sync() error { return nil }
