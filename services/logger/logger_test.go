package logsvc

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kepzesmindenkinek/backend/core"
	"github.com/kepzesmindenkinek/backend/core/user"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	dec := json.NewDecoder(buf)
	for dec.More() {
		entry := make(map[string]interface{})
		require.NoError(t, dec.Decode(&entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestZerologLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	conf := &core.Config{AppName: "Képzés Mindenkinek", Env: "TEST", Log: core.LogConfig{Level: "info"}}
	logger := NewZerologLogger(newZerolog(buf, conf))

	logger.Debug("hidden")
	logger.Error("sending email failed",
		errors.New("connection reset"),
		core.Fields{"subject": "Hello", "recipients": "anna@example.hu"},
		user.User{ID: 7, Username: "anna"},
	)
	logger.Warn("plain", 42)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)

	e := entries[0]
	assert.Equal(t, "error", e["level"])
	assert.Equal(t, "sending email failed", e["message"])
	assert.Equal(t, "connection reset", e["error"])
	assert.Equal(t, "Hello", e["subject"])
	assert.Equal(t, "anna@example.hu", e["recipients"])
	assert.Equal(t, "Képzés Mindenkinek", e["app"])
	assert.Equal(t, map[string]interface{}{"id": float64(7), "username": "anna"}, e["user"])

	assert.Equal(t, "warn", entries[1]["level"])
	assert.Equal(t, float64(42), entries[1]["arg"])
}

func TestNewZerolog_Level(t *testing.T) {
	tests := []struct {
		name  string
		conf  *core.Config
		debug bool
	}{
		{name: "default", conf: &core.Config{}, debug: false},
		{name: "debug mode", conf: &core.Config{Debug: true}, debug: true},
		{name: "explicit level", conf: &core.Config{Log: core.LogConfig{Level: "debug"}}, debug: true},
		{name: "invalid level", conf: &core.Config{Log: core.LogConfig{Level: "loud"}}, debug: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			NewZerologLogger(newZerolog(buf, tc.conf)).Debug("x")
			assert.Equal(t, tc.debug, buf.Len() > 0)
		})
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	assert.NotPanics(t, func() {
		logger.Info("nothing", core.Fields{"a": 1})
		logger.Fatal("still nothing")
	})
}

func TestRollbarLogger_Prepare(t *testing.T) {
	l := NewRollbarLogger(newZerolog(new(bytes.Buffer), &core.Config{}), &core.Config{TestMode: true})
	err := errors.New("boom")
	args := l.prepare("msg", []interface{}{user.User{ID: 1}, err, user.User{ID: 2}})
	assert.Equal(t, []interface{}{"msg", err}, args)
}
