package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	corelogger "github.com/kilianp07/telework/core/logger"
)

// Config selects the log level and an optional directory receiving a copy of
// every log line. The copy rotates once it reaches MaxSizeMB.
type Config struct {
	Level      string `json:"level"`
	Dir        string `json:"dir"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
}

var (
	outMu   sync.RWMutex
	output  io.Writer = os.Stdout
	logFile *lumberjack.Logger
)

// LogFileName names the log file of a run started at t.
func LogFileName(t time.Time) string {
	return fmt.Sprintf("%s - LOGS.txt", t.Format("20060102-150405"))
}

// Setup applies the global level and tees output into a timestamped file
// under cfg.Dir when set. The returned function closes the log file.
func Setup(cfg Config) (func() error, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(lvl)

	outMu.Lock()
	defer outMu.Unlock()
	if cfg.Dir == "" {
		output = os.Stdout
		return func() error { return nil }, nil
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 100
	}
	logFile = &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, LogFileName(time.Now())),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
	output = zerolog.MultiLevelWriter(os.Stdout, logFile)
	return func() error {
		outMu.Lock()
		defer outMu.Unlock()
		output = os.Stdout
		if logFile == nil {
			return nil
		}
		err := logFile.Close()
		logFile = nil
		return err
	}, nil
}

// ParseLevel maps configuration level names to zerolog levels. An empty
// level means info.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", corelogger.LevelInfo:
		return zerolog.InfoLevel, nil
	case corelogger.LevelDebug:
		return zerolog.DebugLevel, nil
	case corelogger.LevelWarn, "warning":
		return zerolog.WarnLevel, nil
	case corelogger.LevelError, corelogger.LevelCritical:
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger using the APP_ENV environment variable
// to determine the output format. All logs include the provided component field.
func NewZerologLogger(component string) Logger {
	outMu.RLock()
	w := output
	outMu.RUnlock()
	return newZerologLogger(w, component)
}

func newZerologLogger(w io.Writer, component string) *ZerologLogger {
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	z := zerolog.New(w).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
