package logx

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ParseLevel converts string (debug|info|warn|error) to a logrus level. Unknown -> info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Setup configures the standard logger: text output to stderr with full
// timestamps.
func Setup(level string) {
	SetupOutput(os.Stderr, level)
}

// SetupOutput is Setup with an explicit writer.
func SetupOutput(w io.Writer, level string) {
	log.SetOutput(w)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(ParseLevel(level))
}
