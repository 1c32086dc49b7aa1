package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/mwalimu/core"
)

func newTestLogger(debug bool) (*RollbarLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	conf := &core.Config{Env: "TEST", Debug: debug}
	logger := NewRollbarLogger(log.New(&buf, "API : ", 0), conf)
	logger.Enable(false)
	return logger, &buf
}

func TestRollbarLogger_print(t *testing.T) {
	logger, buf := newTestLogger(false)

	logger.Error("storing course content", errors.New("connection refused"), core.Actor{ID: "portal", Name: "professor portal"})
	out := buf.String()
	assert.Contains(t, out, "API : storing course content\n")
	assert.Contains(t, out, "API : connection refused\n")
	assert.NotContains(t, out, "professor portal")
}

func TestRollbarLogger_Debug(t *testing.T) {
	quiet, buf := newTestLogger(false)
	quiet.Debug("usage: 10 in / 20 out tokens")
	assert.Empty(t, buf.String())

	verbose, buf := newTestLogger(true)
	verbose.Debug("usage: 10 in / 20 out tokens")
	assert.Contains(t, buf.String(), "usage: 10 in / 20 out tokens")
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger, _ := newTestLogger(false)
	err := errors.New("boom")
	args := logger.prepare("msg", []interface{}{err, core.Actor{ID: "portal"}, map[string]interface{}{"path": "/chat"}})
	assert.Equal(t, []interface{}{"msg", err, map[string]interface{}{"path": "/chat"}}, args)
}
