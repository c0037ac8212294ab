package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/daily-task-list/backend/internal/common/constants"
)

type Fields map[string]interface{}

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
	CRITICAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	default:
		return "CRITICAL"
	}
}

// Logger writes one line per record:
//
//	<date> <time> [LEVEL] [service] [k=v ...] file.go:line message
//
// The level is fixed at construction.
type Logger struct {
	level   LogLevel
	out     *log.Logger
	service string
}

// New builds a logger writing to stdout and, when logDir is set, to a
// rotating app.log inside it.
func New(logDir, serviceName, level string) (*Logger, error) {
	var w io.Writer = os.Stdout

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "app.log"),
			MaxSize:    constants.LoggerMaxSize,
			MaxBackups: constants.LoggerMaxBackups,
			MaxAge:     constants.LoggerMaxAge,
			Compress:   true,
		})
	}

	return NewWithWriter(w, serviceName, level), nil
}

func NewWithWriter(w io.Writer, serviceName, level string) *Logger {
	return &Logger{
		level:   parseLevel(level),
		out:     log.New(w, "", log.LstdFlags),
		service: serviceName,
	}
}

// write must be called directly from an exported method so that the caller
// two frames up is the logging call site.
func (l *Logger) write(level LogLevel, ctx context.Context, fields Fields, msg string) {
	if level < l.level {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", level)
	if l.service != "" {
		fmt.Fprintf(&b, " [%s]", l.service)
	}
	if tags := formatFields(ctx, fields); tags != "" {
		fmt.Fprintf(&b, " [%s]", tags)
	}

	file, line := "unknown", 0
	if _, path, n, ok := runtime.Caller(2); ok {
		file, line = filepath.Base(path), n
	}
	fmt.Fprintf(&b, " %s:%d %s", file, line, msg)

	l.out.Output(0, b.String())
}

// formatFields renders the trace id from ctx first, then fields sorted by key.
func formatFields(ctx context.Context, fields Fields) string {
	var parts []string
	if ctx != nil {
		if traceID, ok := ctx.Value(constants.TraceIDKey).(string); ok && traceID != "" {
			if _, dup := fields["trace_id"]; !dup {
				parts = append(parts, "trace_id="+traceID)
			}
		}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}

	return strings.Join(parts, " ")
}

func (l *Logger) Infof(format string, args ...any) {
	l.write(INFO, nil, nil, fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.write(WARNING, nil, nil, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.write(ERROR, nil, nil, fmt.Sprintf(format, args...))
}

// Fatalf logs at CRITICAL and exits the process.
func (l *Logger) Fatalf(format string, args ...any) {
	l.write(CRITICAL, nil, nil, fmt.Sprintf(format, args...))
	os.Exit(1)
}

// WithFields returns an Entry that tags its records with fields and the
// trace id carried by ctx.
func (l *Logger) WithFields(ctx context.Context, fields Fields) *Entry {
	return &Entry{logger: l, ctx: ctx, fields: fields}
}

type Entry struct {
	logger *Logger
	ctx    context.Context
	fields Fields
}

func (e *Entry) Debug(msg string) { e.logger.write(DEBUG, e.ctx, e.fields, msg) }
func (e *Entry) Info(msg string)  { e.logger.write(INFO, e.ctx, e.fields, msg) }
func (e *Entry) Warn(msg string)  { e.logger.write(WARNING, e.ctx, e.fields, msg) }

func (e *Entry) Warnf(format string, args ...any) {
	e.logger.write(WARNING, e.ctx, e.fields, fmt.Sprintf(format, args...))
}

func (e *Entry) Errorf(format string, args ...any) {
	e.logger.write(ERROR, e.ctx, e.fields, fmt.Sprintf(format, args...))
}

func parseLevel(value string) LogLevel {
	switch strings.TrimSpace(strings.ToUpper(value)) {
	case "DEBUG":
		return DEBUG
	case "WARNING", "WARN":
		return WARNING
	case "ERROR":
		return ERROR
	case "CRITICAL":
		return CRITICAL
	default:
		return INFO
	}
}
