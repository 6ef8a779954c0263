// Package logtrace configures the process-wide zerolog logger used by versync.
package logtrace

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Format selects how log events are rendered.
type Format string

const (
	FormatConsole Format = "console" // human readable, colored when stderr is a terminal
	FormatJSON    Format = "json"    // one JSON object per line
)

// Options controls InitLogger. Zero values mean info level, console format, stderr.
type Options struct {
	Level  string
	Format Format
	Out    io.Writer
}

// InitLogger initializes the global logger. An unknown level falls back to info.
func InitLogger(opts Options) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	zerolog.SetGlobalLevel(ParseLevel(opts.Level))

	if opts.Format == FormatJSON {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		return
	}

	cw := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.Kitchen,
		NoColor:    !isTerminal(out),
	}
	log.Logger = zerolog.New(cw).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
