// Package sysutil holds small process-level helpers shared by the entrypoint:
// global log level and output selection.
package sysutil

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps a configured level name to a zerolog level. Blank and
// unknown names, as well as "trace" and "disabled", fall back to info.
func ParseLevel(name string) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl < zerolog.DebugLevel || lvl > zerolog.PanicLevel || name == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// SetLogLevel sets the global zerolog level and returns what was applied.
func SetLogLevel(name string) zerolog.Level {
	lvl := ParseLevel(name)
	zerolog.SetGlobalLevel(lvl)
	return lvl
}

// SetupLogger replaces the global logger. With pretty set, output goes through
// a zerolog.ConsoleWriter; otherwise it is JSON lines. A nil w means stderr.
func SetupLogger(w io.Writer, pretty bool, service string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	l := zerolog.New(w).With().Timestamp().Str("service", service).Logger()
	log.Logger = l
	return l
}

// FirstNonEmpty returns the first value that is not blank, unchanged.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
