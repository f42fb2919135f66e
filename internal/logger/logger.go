// Package logger provides the leveled logger used across the client. Call
// sites use the same method names as rain's internal/logger (Debugln,
// Debugf, Infoln, Infof, Warningln, Errorln, Errorf) so that code adapted
// from the teacher reads unchanged; underneath, a zerolog.Logger does the
// actual formatting and level filtering.
package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the interface every component logs through.
type Logger interface {
	Debugln(args ...interface{})
	Debugf(format string, args ...interface{})
	Infoln(args ...interface{})
	Infof(format string, args ...interface{})
	Warningln(args ...interface{})
	Warningf(format string, args ...interface{})
	Errorln(args ...interface{})
	Errorf(format string, args ...interface{})
}

type zlog struct {
	z zerolog.Logger
}

var std = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()

// SetLevel sets the minimum level logged by every Logger returned from New.
// Accepts zerolog's names: "debug", "info", "warn", "error".
func SetLevel(name string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return
	}
	zerolog.SetGlobalLevel(lvl)
}

// New returns a Logger tagged with component, e.g. New("session") or
// New("peer 1.2.3.4:6881").
func New(component string) Logger {
	return &zlog{z: std.With().Str("component", component).Logger()}
}

func sprint(args []interface{}) string {
	return strings.TrimRight(fmt.Sprintln(args...), "\n")
}

func (l *zlog) Debugln(args ...interface{}) { l.z.Debug().Msg(sprint(args)) }
func (l *zlog) Debugf(format string, args ...interface{}) {
	l.z.Debug().Msg(fmt.Sprintf(format, args...))
}
func (l *zlog) Infoln(args ...interface{}) { l.z.Info().Msg(sprint(args)) }
func (l *zlog) Infof(format string, args ...interface{}) {
	l.z.Info().Msg(fmt.Sprintf(format, args...))
}
func (l *zlog) Warningln(args ...interface{}) { l.z.Warn().Msg(sprint(args)) }
func (l *zlog) Warningf(format string, args ...interface{}) {
	l.z.Warn().Msg(fmt.Sprintf(format, args...))
}
func (l *zlog) Errorln(args ...interface{}) { l.z.Error().Msg(sprint(args)) }
func (l *zlog) Errorf(format string, args ...interface{}) {
	l.z.Error().Msg(fmt.Sprintf(format, args...))
}
