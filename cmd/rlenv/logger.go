package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

var logOutput io.Writer = os.Stderr

// newLogger returns a tint logger writing records at or above level to
// output. Records are colored only when output is a terminal, and
// errors are always highlighted in red when they are.
func newLogger(output io.Writer, level slog.Level) *slog.Logger {
	color := terminal(output)
	return slog.New(tint.NewHandler(output, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !color,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if !color || a.Value.Kind() != slog.KindAny {
				return a
			}
			if _, ok := a.Value.Any().(error); ok {
				return tint.Attr(9, a)
			}
			return a
		},
	}))
}

// terminal returns whether w is a terminal
func terminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
