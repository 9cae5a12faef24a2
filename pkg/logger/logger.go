package logger

import (
	"io"
	"log"
	"os"
)

type LogLevel int

const (
	LevelInfo LogLevel = iota
	LevelDebug
	LevelTrace
)

// Logger is a leveled wrapper over log.Logger. Info and Error always print,
// Debug needs verbose mode and Trace needs LevelTrace.
type Logger struct {
	*log.Logger
	level     LogLevel
	isVerbose bool
}

type Option func(*Logger)

func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		l.Logger = log.New(w, l.Logger.Prefix(), l.Logger.Flags())
	}
}

func WithPrefix(prefix string) Option {
	return func(l *Logger) {
		l.Logger = log.New(l.Logger.Writer(), prefix, l.Logger.Flags())
	}
}

func WithFlags(flags int) Option {
	return func(l *Logger) {
		l.Logger = log.New(l.Logger.Writer(), l.Logger.Prefix(), flags)
	}
}

func New(options ...Option) *Logger {
	l := &Logger{
		Logger: log.New(os.Stdout, "", log.LstdFlags),
		level:  LevelInfo,
	}

	for _, opt := range options {
		opt(l)
	}

	return l
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(WithOutput(io.Discard))
}

func (l *Logger) SetVerbose(verbose bool) {
	l.isVerbose = verbose
}

func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
	if level >= LevelDebug {
		l.isVerbose = true
	}
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.Logger.Printf("INFO: "+format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.Logger.Printf("ERROR: "+format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.isVerbose {
		l.Logger.Printf("DEBUG: "+format, args...)
	}
}

func (l *Logger) Trace(format string, args ...interface{}) {
	if l.level >= LevelTrace {
		l.Logger.Printf("TRACE: "+format, args...)
	}
}

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.Logger.Fatalf("FATAL: "+format, args...)
}
