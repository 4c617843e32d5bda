package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"
)

// DefaultLogger is the stdlib-backed Logger used when logrus is not selected.
// Debug and Info lines go to out, everything above to errOut.
type DefaultLogger struct {
	out       *log.Logger
	errOut    *log.Logger
	level     Level
	fields    Fields
	useColors bool
}

var levelColors = map[Level]string{
	WarnLevel:  ColorYellow,
	ErrorLevel: ColorRed,
	FatalLevel: ColorBold + ColorRed,
}

// NewDefaultLogger logs timestamped lines to stdout and stderr, colored on a TTY.
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{
		out:       log.New(os.Stdout, "", log.LstdFlags),
		errOut:    log.New(os.Stderr, "", log.LstdFlags),
		level:     InfoLevel,
		fields:    Fields{},
		useColors: stdoutIsTTY(),
	}
}

// NewWriterLogger sends every level to w, without timestamps or colors.
func NewWriterLogger(w io.Writer) *DefaultLogger {
	sink := log.New(w, "", 0)
	return &DefaultLogger{out: sink, errOut: sink, level: InfoLevel, fields: Fields{}}
}

func stdoutIsTTY() bool {
	info, err := os.Stdout.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// line renders "[LEVEL] msg[: err] k=v ..." with keys in sorted order.
func (d *DefaultLogger) line(level Level, err error, msg string, extra []Fields) string {
	merged := maps.Clone(d.fields)
	if merged == nil {
		merged = Fields{}
	}
	for _, f := range extra {
		maps.Copy(merged, f)
	}

	var b strings.Builder
	if d.useColors {
		b.WriteString(levelColors[level])
	}
	b.WriteString("[" + level.String() + "] " + msg)
	if err != nil {
		b.WriteString(": " + err.Error())
	}
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		fmt.Fprintf(&b, " %s=%v", k, merged[k])
	}
	if d.useColors && levelColors[level] != "" {
		b.WriteString(ColorReset)
	}
	return b.String()
}

func (d *DefaultLogger) emit(level Level, err error, msg string, extra []Fields) {
	if level < d.level {
		return
	}
	sink := d.out
	if level >= WarnLevel {
		sink = d.errOut
	}
	sink.Println(d.line(level, err, msg, extra))
	if level == FatalLevel {
		os.Exit(1)
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) { d.emit(DebugLevel, nil, msg, fields) }
func (d *DefaultLogger) Info(msg string, fields ...Fields)  { d.emit(InfoLevel, nil, msg, fields) }
func (d *DefaultLogger) Warn(msg string, fields ...Fields)  { d.emit(WarnLevel, nil, msg, fields) }

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.emit(ErrorLevel, err, msg, fields)
}

func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.emit(FatalLevel, err, msg, fields)
}

// WithFields returns a child logger; d is left untouched.
func (d *DefaultLogger) WithFields(fields Fields) Logger {
	child := *d
	child.fields = maps.Clone(d.fields)
	if child.fields == nil {
		child.fields = Fields{}
	}
	maps.Copy(child.fields, fields)
	return &child
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	fields, ok := fieldsFromContext(ctx)
	if !ok {
		return d
	}
	return d.WithFields(fields)
}

func (d *DefaultLogger) SetLevel(level Level) { d.level = level }

// NoOpLogger discards everything. SetGlobalLogger(nil) installs one.
type NoOpLogger struct{}

func (*NoOpLogger) Debug(string, ...Fields)              {}
func (*NoOpLogger) Info(string, ...Fields)               {}
func (*NoOpLogger) Warn(string, ...Fields)               {}
func (*NoOpLogger) Error(error, string, ...Fields)       {}
func (*NoOpLogger) Fatal(error, string, ...Fields)       {}
func (n *NoOpLogger) WithFields(Fields) Logger           { return n }
func (n *NoOpLogger) WithContext(context.Context) Logger { return n }
func (*NoOpLogger) SetLevel(Level)                       {}
