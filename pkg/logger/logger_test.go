package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", &buf)

	log.Debug("hidden %d", 1)
	log.Info("hidden %d", 2)
	log.Warn("shown %d", 3)
	log.Error("shown %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown 3")
	assert.Contains(t, out, "[ERROR] shown 4")
}

func TestLogger_WithPrefixesComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", &buf).With("tio").With("exec")

	log.Info("hello")

	assert.Contains(t, buf.String(), "[INFO][tio][exec] hello")
}

func TestLogger_FatalExits(t *testing.T) {
	var buf bytes.Buffer
	l := New("info", &buf).(*logger)
	code := -1
	l.sink.exit = func(c int) { code = c }

	l.Fatal("boom")

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "[FATAL] boom")
}
