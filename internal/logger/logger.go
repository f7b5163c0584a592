// Package logger configures the global zerolog logger from command line options.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger holds logging options, embedded as a go-flags group.
type Logger struct {
	Level   string `long:"log-level"    env:"LOG_LEVEL"    description:"Log level"  choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"info"`
	Format  string `long:"log-format"   env:"LOG_FORMAT"   description:"Log format" choice:"auto" choice:"json" choice:"console" default:"auto"`
	NoColor bool   `long:"log-no-color" env:"LOG_NO_COLOR" description:"Disable colors in console format"`
}

// Setup installs the configured logger as the global zerolog logger.
func (l Logger) Setup() {
	tty := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	log.Logger = l.New(os.Stderr, tty)
	zerolog.SetGlobalLevel(l.level())
}

// New builds a logger writing to w. With the auto format, console output is
// used when w is a terminal.
func (l Logger) New(w io.Writer, terminal bool) zerolog.Logger {
	format := l.Format
	if format == "" || format == "auto" {
		format = "json"
		if terminal {
			format = "console"
		}
	}

	if format == "console" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    l.NoColor || !terminal,
			TimeFormat: time.DateTime,
		}
	}

	return zerolog.New(w).Level(l.level()).With().Timestamp().Logger()
}

func (l Logger) level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		return zerolog.InfoLevel
	}

	return lvl
}
