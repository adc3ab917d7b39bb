// Package logger provides the logging interface used across spyglass.
// Background pollers trace their failures here instead of surfacing them
// to the terminal, so the default sink is a file in the data directory.
package logger

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Logger is the interface components log through. All methods take a
// format string and arguments, like fmt.Printf.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// fileLogger writes to a log file. Debug messages are only written when
// SPYGLASS_DEBUG is set.
type fileLogger struct {
	mu   sync.Mutex
	out  *log.Logger
	path string
}

// NewFileLogger creates a logger appending to the file at path. The file is
// created if missing.
func NewFileLogger(path string) (Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}
	return &fileLogger{out: log.New(f, "", log.LstdFlags), path: path}, nil
}

func (l *fileLogger) logf(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Printf(level+" "+format, args...)
}

func (l *fileLogger) Debug(format string, args ...any) {
	if os.Getenv("SPYGLASS_DEBUG") == "" {
		return
	}
	l.logf("DEBUG", format, args...)
}

func (l *fileLogger) Info(format string, args ...any)  { l.logf("INFO", format, args...) }
func (l *fileLogger) Warn(format string, args ...any)  { l.logf("WARN", format, args...) }
func (l *fileLogger) Error(format string, args ...any) { l.logf("ERROR", format, args...) }

// noopLogger discards all messages.
type noopLogger struct{}

// Noop returns a logger that discards everything.
func Noop() Logger { return &noopLogger{} }

func (noopLogger) Debug(format string, args ...any) {}
func (noopLogger) Info(format string, args ...any)  {}
func (noopLogger) Warn(format string, args ...any)  {}
func (noopLogger) Error(format string, args ...any) {}

// Message is one captured log entry.
type Message struct {
	Level   string
	Message string
}

// Buffer captures log messages for test assertions.
type Buffer struct {
	mu       sync.Mutex
	Messages []Message
}

// NewBuffer creates an empty capturing logger.
func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) add(level, format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Messages = append(b.Messages, Message{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (b *Buffer) Debug(format string, args ...any) { b.add("debug", format, args...) }
func (b *Buffer) Info(format string, args ...any)  { b.add("info", format, args...) }
func (b *Buffer) Warn(format string, args ...any)  { b.add("warn", format, args...) }
func (b *Buffer) Error(format string, args ...any) { b.add("error", format, args...) }

// HasLevel reports whether any message was logged at the given level.
func (b *Buffer) HasLevel(level string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range b.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}
