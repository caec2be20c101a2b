package logsvc

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/kepzesmindenkinek/backend/core"
)

// ZerologLogger writes to zerolog only; used where Rollbar reporting is unwanted (admin CLI, tests).
type ZerologLogger struct {
	zl   zerolog.Logger
	exit func(code int)
}

var _ core.Logger = (*ZerologLogger)(nil)

func NewZerologLogger(zl zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{zl: zl, exit: os.Exit}
}

// NewNopLogger discards everything. Its Fatal does not exit.
func NewNopLogger() *ZerologLogger {
	return &ZerologLogger{zl: zerolog.Nop(), exit: func(int) {}}
}

func (l ZerologLogger) Debug(msg string, args ...interface{}) { writeEvent(l.zl.Debug(), msg, args) }
func (l ZerologLogger) Info(msg string, args ...interface{})  { writeEvent(l.zl.Info(), msg, args) }
func (l ZerologLogger) Warn(msg string, args ...interface{})  { writeEvent(l.zl.Warn(), msg, args) }
func (l ZerologLogger) Error(msg string, args ...interface{}) { writeEvent(l.zl.Error(), msg, args) }

// Fatal logs then exits; zerolog's own Fatal would exit even when the level is disabled.
func (l ZerologLogger) Fatal(msg string, args ...interface{}) {
	writeEvent(l.zl.WithLevel(zerolog.FatalLevel), msg, args)
	l.exit(1)
}
