package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Level represents log severity.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func ParseLevel(s string) Level {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

// FileOptions configures the optional rotating log file.
type FileOptions struct {
	Path         string
	MaxMegabytes int
	MaxBackups   int
	MaxAgeDays   int
}

type Logger struct {
	min  Level
	base *logrus.Logger
	file *lumberjack.Logger
}

// New logs human-readable lines to stderr, or JSON objects to stdout when jsonOut is set.
func New(level string, jsonOut bool) *Logger {
	out := io.Writer(os.Stderr)
	if jsonOut {
		out = os.Stdout
	}
	return NewWithWriter(level, jsonOut, out)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(level string, jsonOut bool, out io.Writer) *Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(toLogrus(ParseLevel(level)))
	if jsonOut {
		l.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{logrus.FieldKeyTime: "ts"},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp:       true,
			DisableLevelTruncation: true,
		})
	}
	return &Logger{min: ParseLevel(level), base: l}
}

// WithFile tees output into a size-rotated file. Empty path is a no-op.
func (l *Logger) WithFile(opts FileOptions) *Logger {
	if opts.Path == "" {
		return l
	}
	l.file = &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxMegabytes,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
	l.base.SetOutput(io.MultiWriter(l.base.Out, l.file))
	return l
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) Enabled(v Level) bool { return v >= l.min }

// WithField returns an entry carrying key=value on every line it logs.
func (l *Logger) WithField(key string, value any) *logrus.Entry {
	return l.base.WithField(key, value)
}

func (l *Logger) Debugf(format string, a ...any) { l.base.Debugf(format, a...) }
func (l *Logger) Infof(format string, a ...any)  { l.base.Infof(format, a...) }
func (l *Logger) Warnf(format string, a ...any)  { l.base.Warnf(format, a...) }
func (l *Logger) Errorf(format string, a ...any) { l.base.Errorf(format, a...) }

func toLogrus(l Level) logrus.Level {
	switch l {
	case Debug:
		return logrus.DebugLevel
	case Warn:
		return logrus.WarnLevel
	case Error:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
