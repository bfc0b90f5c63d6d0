package postsite

import (
	"os"

	"github.com/labstack/gommon/log"
)

// Logger is the subset of echo.Logger the builder and server write to. Both
// echo's logger and a gommon *log.Logger satisfy it.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// NewLogger returns a gommon logger writing to stderr at INFO level.
func NewLogger(prefix string) *log.Logger {
	l := log.New(prefix)
	l.SetOutput(os.Stderr)
	l.SetLevel(log.INFO)
	l.SetHeader(`${time_rfc3339} ${level} ${prefix}`)
	return l
}
