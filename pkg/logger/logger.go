package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	levelFlags = []string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}
	levelMap   = map[string]LogLevel{
		"debug": LevelDebug,
		"info":  LevelInfo,
		"warn":  LevelWarn,
		"error": LevelError,
		"fatal": LevelFatal,
	}
)

// Logger interface
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
	Fatal(format string, v ...interface{})

	// With returns a logger that prefixes every line with component.
	With(component string) Logger
}

// sink is shared by a logger and all loggers derived from it with With.
type sink struct {
	mu    sync.Mutex
	out   *log.Logger
	level LogLevel
	exit  func(code int)
}

type logger struct {
	sink   *sink
	prefix string
}

var (
	instance *logger
	once     sync.Once
)

// ParseLevel maps a level name to a LogLevel, falling back to info.
func ParseLevel(name string) LogLevel {
	if l, ok := levelMap[strings.ToLower(strings.TrimSpace(name))]; ok {
		return l
	}
	return LevelInfo
}

// New creates a logger writing to w at the given level.
func New(level string, w io.Writer) Logger {
	return &logger{
		sink: &sink{
			out:   log.New(w, "", 0),
			level: ParseLevel(level),
			exit:  os.Exit,
		},
	}
}

// Discard returns a logger that drops everything below fatal.
func Discard() Logger {
	return New("fatal", io.Discard)
}

// GetLogger returns the process-wide logger writing to stderr
func GetLogger() Logger {
	once.Do(func() {
		instance = New(os.Getenv("LOG_LEVEL"), os.Stderr).(*logger)
	})
	return instance
}

// SetLogLevel sets the log level of the process-wide logger
func SetLogLevel(level string) {
	l := GetLogger().(*logger)
	l.sink.mu.Lock()
	l.sink.level = ParseLevel(level)
	l.sink.mu.Unlock()
}

func (l *logger) With(component string) Logger {
	prefix := "[" + component + "]"
	return &logger{sink: l.sink, prefix: l.prefix + prefix}
}

func (l *logger) log(level LogLevel, format string, v ...interface{}) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if level < l.sink.level {
		return
	}

	msg := fmt.Sprintf(format, v...)
	l.sink.out.Printf("[%s][%s]%s %s", getTimestamp(), levelFlags[level], l.prefix, msg)

	if level == LevelFatal {
		l.sink.exit(1)
	}
}

func (l *logger) Debug(format string, v ...interface{}) {
	l.log(LevelDebug, format, v...)
}

func (l *logger) Info(format string, v ...interface{}) {
	l.log(LevelInfo, format, v...)
}

func (l *logger) Warn(format string, v ...interface{}) {
	l.log(LevelWarn, format, v...)
}

func (l *logger) Error(format string, v ...interface{}) {
	l.log(LevelError, format, v...)
}

func (l *logger) Fatal(format string, v ...interface{}) {
	l.log(LevelFatal, format, v...)
}

func getTimestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}
