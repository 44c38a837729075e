// Package logger sets up the global zerolog logger for the CLI and the web
// front.
package logger

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	blue   = "\033[34m"
	purple = "\033[35m"
	cyan   = "\033[36m"
	gray   = "\033[37m"
)

var levelColors = map[string]string{
	"debug": gray,
	"info":  blue,
	"warn":  yellow,
	"error": red,
	"fatal": red,
	"panic": red,
}

// messages printed dimmed or highlighted
var (
	quietMessages = []string{"request completed", "file downloaded"}
	loudMessages  = []string{"share created", "Server is ready"}
)

// palette paints text when the output is a terminal.
type palette bool

func (p palette) paint(code string, v any) string {
	if !p {
		return fmt.Sprint(v)
	}
	return code + fmt.Sprint(v) + reset
}

// Init configures the global logger to write to stdout.
func Init(env string) {
	InitWriter(env, os.Stdout)
}

// InitWriter configures the global logger to write to out. The CLI logs to
// stderr so that share links printed on stdout stay pipeable.
func InitWriter(env string, out *os.File) {
	color := palette(isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()))

	log.Logger = zerolog.New(consoleWriter(out, color)).
		With().
		Timestamp().
		Str("env", env).
		Logger()
	zerolog.SetGlobalLevel(Level(env))
}

// Level maps an environment name to the minimum level logged.
func Level(env string) zerolog.Level {
	switch env {
	case "development", "local":
		return zerolog.DebugLevel
	case "quiet":
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

func consoleWriter(out io.Writer, p palette) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "02.01.2006 15:04:05",
		NoColor:    !bool(p),
		FormatLevel: func(i interface{}) string {
			level := fmt.Sprint(i)
			if code, ok := levelColors[level]; ok {
				return p.paint(code, "●")
			}
			return strings.ToUpper(level)
		},
		FormatMessage: func(i interface{}) string {
			msg := fmt.Sprintf("%-35s", i)
			switch {
			case containsAny(msg, quietMessages):
				return p.paint(gray, msg)
			case containsAny(msg, loudMessages):
				return p.paint(bold, msg)
			}
			return msg
		},
		FormatFieldName: func(i interface{}) string {
			return p.paint(cyan, i) + "="
		},
		FormatFieldValue: func(i interface{}) string {
			return formatValue(p, fmt.Sprint(i))
		},
	}
}

// formatValue colors HTTP methods and status codes.
func formatValue(p palette, val string) string {
	switch val {
	case "GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS":
		return p.paint(purple, val)
	}

	if len(val) == 3 {
		if code, err := strconv.Atoi(val); err == nil {
			switch {
			case code >= 200 && code < 300:
				return p.paint(green, val)
			case code >= 300 && code < 400:
				return p.paint(yellow, val)
			case code >= 400 && code < 600:
				return p.paint(red, val)
			}
		}
	}
	return val
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
