package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerComponentField(t *testing.T) {
	var buf bytes.Buffer
	l := newZerologLogger(&buf, "geocoder")
	l.Infof("geocoded %d addresses", 4)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "geocoder", line["component"])
	assert.Equal(t, "geocoded 4 addresses", line["message"])
	assert.Equal(t, "info", line["level"])
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":         zerolog.InfoLevel,
		"DEBUG":    zerolog.DebugLevel,
		"warn":     zerolog.WarnLevel,
		"warning":  zerolog.WarnLevel,
		"critical": zerolog.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestSetupWritesLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	closeFn, err := Setup(Config{Level: "debug", Dir: dir})
	require.NoError(t, err)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	New("setup-test").Infof("hello file")
	require.NoError(t, closeFn())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "LOGS.txt")
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}

func TestLogFileNameUses24HourClock(t *testing.T) {
	am := time.Date(2024, 3, 11, 3, 4, 5, 0, time.Local)
	pm := am.Add(12 * time.Hour)
	assert.Equal(t, "20240311-030405 - LOGS.txt", LogFileName(am))
	assert.Equal(t, "20240311-150405 - LOGS.txt", LogFileName(pm))
}
