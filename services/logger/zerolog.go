package logsvc

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kepzesmindenkinek/backend/core"
	"github.com/kepzesmindenkinek/backend/core/user"
)

// NewZerolog builds the local logger: human readable console output in debug,
// JSON otherwise, mirrored to a rotated file when `log.file` is set.
func NewZerolog(conf *core.Config) zerolog.Logger {
	var out io.Writer = os.Stderr
	if conf.Debug {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	if conf.Log.File != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   conf.Log.File,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	return newZerolog(out, conf)
}

func newZerolog(out io.Writer, conf *core.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(conf.Log.Level)
	if err != nil || conf.Log.Level == "" {
		level = zerolog.InfoLevel
		if conf.Debug {
			level = zerolog.DebugLevel
		}
	}
	return zerolog.New(out).Level(level).
		With().
		Timestamp().
		Str("app", conf.AppName).
		Str("env", conf.Env).
		Logger()
}

// writeEvent adds args to e: errors, field maps and the user the entry is about.
func writeEvent(e *zerolog.Event, msg string, args []interface{}) {
	for _, arg := range args {
		switch a := arg.(type) {
		case nil:
		case error:
			e = e.Err(a)
		case map[string]interface{}:
			e = e.Fields(a)
		case user.User:
			e = e.Dict("user", zerolog.Dict().Int("id", a.ID).Str("username", a.Username))
		default:
			e = e.Interface("arg", a)
		}
	}
	e.Msg(msg)
}
