package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterLoggerFiltersLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger("mesh", &buf, WARN)

	l.Debug("не должно попасть")
	l.Warn("текстура %d отсутствует", 42)

	out := buf.String()
	assert.NotContains(t, out, "не должно попасть")
	assert.Contains(t, out, "[WARN] [mesh] текстура 42 отсутствует")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, INFO, lvl)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Error("ничего") })
}

func TestNewLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	SetLogDir(dir)
	defer SetLogDir("")

	l, err := NewLogger("world")
	require.NoError(t, err)
	l.Info("запуск")
	require.NoError(t, l.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestManagerReturnsSameLogger(t *testing.T) {
	lm := GetLoggerManager()
	a := lm.MustGetLogger("test-component")
	b := lm.MustGetLogger("test-component")
	assert.Same(t, a, b)
	assert.Contains(t, lm.ListComponents(), "test-component")
	assert.NoError(t, lm.SetLogLevel("test-component", ERROR, ERROR))
	assert.Error(t, lm.SetLogLevel("missing", ERROR, ERROR))
}
