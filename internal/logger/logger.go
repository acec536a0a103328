package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func ParseLevel(lvl string) Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger writes leveled lines to a log file and, optionally, echoes
// Info-and-above to stdout for CLI/Docker use.
type Logger struct {
	sink          *log.Logger
	level         Level
	includeStdout bool
	file          *os.File
}

// New opens (or creates) the log file at path. An empty path logs to
// stdout only.
func New(path string, level Level, includeStdout bool) (*Logger, error) {
	if path == "" {
		return &Logger{sink: log.New(io.Discard, "", 0), level: level, includeStdout: true}, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	return &Logger{
		sink:          log.New(f, "", 0),
		level:         level,
		includeStdout: includeStdout,
		file:          f,
	}, nil
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	return &Logger{sink: log.New(io.Discard, "", 0), level: LevelFatal}
}

func (l *Logger) log(lvl Level, prefix, format string, v ...any) {
	if lvl < l.level {
		return
	}

	line := fmt.Sprintf("%s [%s] %s",
		time.Now().Format("2006-01-02 15:04:05"), prefix, fmt.Sprintf(format, v...))

	l.sink.Println(line)

	if l.includeStdout && lvl >= LevelInfo {
		fmt.Println(line)
	}
}

func (l *Logger) Debug(f string, v ...any) { l.log(LevelDebug, "DEBUG", f, v...) }
func (l *Logger) Info(f string, v ...any)  { l.log(LevelInfo, "INFO", f, v...) }
func (l *Logger) Warn(f string, v ...any)  { l.log(LevelWarn, "WARN", f, v...) }
func (l *Logger) Error(f string, v ...any) { l.log(LevelError, "ERROR", f, v...) }

func (l *Logger) Fatal(f string, v ...any) {
	l.log(LevelFatal, "FATAL", f, v...)
	os.Exit(1)
}

// Write lets the logger act as an io.Writer sink for libraries that expect
// one (echo, database/sql). Trailing newlines are stripped.
func (l *Logger) Write(p []byte) (int, error) {
	if msg := strings.TrimSpace(string(p)); msg != "" {
		l.Info("%s", msg)
	}
	return len(p), nil
}

func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
