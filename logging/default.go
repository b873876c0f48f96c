package logging

import (
	"context"
	"io"
	"maps"
	"os"

	"github.com/rs/zerolog"
)

// DefaultLogger writes through zerolog.
// Debug/Info/Warn -> out, Error/Fatal -> err writer.
// Fatal exits the process after writing.
type DefaultLogger struct {
	out    zerolog.Logger
	errOut zerolog.Logger
	level  *Level
	fields Fields
	exit   func(int)
}

// NewDefaultLogger creates a logger with a human readable console format on
// stdout/stderr. Colors are used when stdout is a terminal.
func NewDefaultLogger() *DefaultLogger {
	color := isTerminal()
	return NewLogger(
		consoleWriter(os.Stdout, color),
		consoleWriter(os.Stderr, color),
	)
}

// NewDefaultLoggerNoColor creates a console logger without colored output
func NewDefaultLoggerNoColor() *DefaultLogger {
	return NewLogger(consoleWriter(os.Stdout, false), consoleWriter(os.Stderr, false))
}

// NewJSONLogger writes one JSON object per line to w. Useful when output is
// shipped to a log collector.
func NewJSONLogger(w io.Writer) *DefaultLogger {
	return NewLogger(w, w)
}

// NewLogger builds a DefaultLogger over arbitrary writers.
func NewLogger(out, errOut io.Writer) *DefaultLogger {
	level := InfoLevel
	return &DefaultLogger{
		out:    zerolog.New(out).With().Timestamp().Logger(),
		errOut: zerolog.New(errOut).With().Timestamp().Logger(),
		level:  &level,
		fields: make(Fields),
		exit:   os.Exit,
	}
}

func consoleWriter(w io.Writer, color bool) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    !color,
	}
}

// isTerminal checks if stdout is a character device
func isTerminal() bool {
	if fileInfo, _ := os.Stdout.Stat(); fileInfo != nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func toZerologLevel(level Level) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.FatalLevel
	}
}

func (d *DefaultLogger) log(level Level, err error, msg string, fields ...Fields) {
	if level < *d.level {
		return
	}

	target := d.out
	if level >= ErrorLevel {
		target = d.errOut
	}

	// WithLevel never exits on its own, exit is handled below
	event := target.WithLevel(toZerologLevel(level))
	if err != nil {
		event = event.Err(err)
	}
	if len(d.fields) > 0 {
		event = event.Fields(map[string]any(d.fields))
	}
	for _, f := range fields {
		event = event.Fields(map[string]any(f))
	}
	event.Msg(msg)

	if level == FatalLevel {
		d.exit(1)
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	d.log(DebugLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	d.log(InfoLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	d.log(WarnLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.log(ErrorLevel, err, msg, fields...)
}

func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.log(FatalLevel, err, msg, fields...)
}

// WithFields returns a child logger. The child shares the parent's level so
// SetLevel on the root applies everywhere.
func (d *DefaultLogger) WithFields(fields Fields) Logger {
	newFields := make(Fields, len(d.fields)+len(fields))
	maps.Copy(newFields, d.fields)
	maps.Copy(newFields, fields)

	return &DefaultLogger{
		out:    d.out,
		errOut: d.errOut,
		level:  d.level,
		fields: newFields,
		exit:   d.exit,
	}
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := fieldsFromContext(ctx); ok {
		return d.WithFields(fields)
	}
	return d
}

func (d *DefaultLogger) SetLevel(level Level) {
	*d.level = level
}
