// Package debug configures zerolog output for the hamlint CLI.
package debug

import (
	"fmt"
	"io"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// NewLogger builds the logger used by the CLI, with the custom time and
// caller hooks applied.
func NewLogger(w io.Writer, colorize bool) zerolog.Logger {
	return zerolog.New(w).With().Logger().
		Hook(TimeHook{WithColor: colorize}).
		Hook(CallerHook{WithColor: colorize})
}

func callerSkipFrameCount(e *zerolog.Event) int {
	// zerolog keeps the skip count in an unexported field; read it so the
	// hook reports the real call site.
	v := reflect.ValueOf(e).Elem()
	field := v.FieldByName("skipFrame")
	if field.IsValid() && field.CanAddr() {
		return int(field.Int())
	}
	return 0
}

type TimeHook struct {
	WithColor bool
	Format    string
}

func (t TimeHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	format := t.Format
	if format == "" {
		format = "2006-01-02T15:04:05.0000Z"
	}
	e.Str("time", time.Now().Format(format))
}

type CallerHook struct {
	WithColor bool
}

func (c CallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	pc, file, line, ok := runtime.Caller(callerSkipFrameCount(e) + 3)
	if !ok {
		return
	}

	pkg, _ := splitFuncName(runtime.FuncForPC(pc).Name())
	e.Str("caller", formatCaller(pkg, file, line, c.WithColor))
}

func splitFuncName(full string) (pkg, function string) {
	lastSlash := strings.LastIndexByte(full, '/')
	if lastSlash < 0 {
		lastSlash = 0
	}
	firstDot := strings.IndexByte(full[lastSlash:], '.') + lastSlash

	pkg = full[:firstDot]
	function = full[firstDot+1:]

	if strings.Contains(pkg, ".(") {
		split := strings.Split(pkg, ".(")
		pkg = split[0]
		function = "(" + split[1] + "." + function
	}
	return pkg, function
}

func formatCaller(pkg, path string, line int, colorize bool) string {
	file := path
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		file = path[idx+1:]
	}

	if colorize {
		file = color.New(color.Bold).Sprint(file)
		num := color.New(color.FgHiRed, color.Bold).Sprintf("%d", line)
		sep := color.New(color.Faint).Sprint(":")
		return fmt.Sprintf("%s%s%s%s%s", pkg, sep, file, sep, num)
	}
	return fmt.Sprintf("%s:%s:%d", pkg, file, line)
}
