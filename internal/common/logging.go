// Package common holds the logger shared by every divvy package.
package common

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/phuslu/log"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
	"github.com/ternarybob/arbor/writers"
)

// LoggingConfig is the [logging] section of divvy.toml.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

const (
	defaultLogFile    = "logs/divvy.log"
	defaultMaxSizeMB  = 10
	defaultMaxBackups = 5
	logTimeFormat     = "2006-01-02T15:04:05Z07:00"
)

// Logger is the arbor logger used across divvy.
type Logger struct {
	arbor.ILogger
}

// NewLoggerFromConfig builds the process logger. Outputs default to the
// console; an output other than console or file is an error.
func NewLoggerFromConfig(cfg LoggingConfig) (*Logger, error) {
	outputs := cfg.Outputs
	if len(outputs) == 0 {
		outputs = []string{"console"}
	}

	l := arbor.NewLogger()
	for _, out := range outputs {
		switch strings.ToLower(strings.TrimSpace(out)) {
		case "console":
			l = l.WithConsoleWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeConsole,
				Writer:     os.Stderr,
				TimeFormat: logTimeFormat,
			})
		case "file":
			l = l.WithFileWriter(fileWriterConfig(cfg))
		default:
			return nil, fmt.Errorf("unknown log output %q (want console or file)", out)
		}
	}

	return &Logger{ILogger: l.WithLevelFromString(levelOrDefault(cfg.Level))}, nil
}

func fileWriterConfig(cfg LoggingConfig) models.WriterConfiguration {
	path := cfg.FilePath
	if path == "" {
		path = defaultLogFile
	}
	sizeMB := cfg.MaxSizeMB
	if sizeMB <= 0 {
		sizeMB = defaultMaxSizeMB
	}
	backups := cfg.MaxBackups
	if backups <= 0 {
		backups = defaultMaxBackups
	}
	return models.WriterConfiguration{
		Type:       models.LogWriterTypeFile,
		FileName:   path,
		MaxSize:    int64(sizeMB) << 20,
		MaxBackups: backups,
		TimeFormat: logTimeFormat,
	}
}

func levelOrDefault(level string) string {
	if strings.TrimSpace(level) == "" {
		return "info"
	}
	return level
}

// NewLoggerWithOutput logs to w only, one "message key=value" line per
// event with keys sorted. Tests use it to assert on log output.
func NewLoggerWithOutput(level string, w io.Writer) *Logger {
	l := arbor.NewLogger().WithWriters([]writers.IWriter{&lineWriter{out: w}})
	return &Logger{ILogger: l.WithLevelFromString(levelOrDefault(level))}
}

// NewSilentLogger discards every event.
func NewSilentLogger() *Logger {
	return NewLoggerWithOutput("fatal", io.Discard)
}

// lineWriter renders arbor's JSON events as text lines.
type lineWriter struct {
	mu    sync.Mutex
	out   io.Writer
	level log.Level
}

func (w *lineWriter) Write(p []byte) (int, error) {
	var evt models.LogEvent
	if err := json.Unmarshal(p, &evt); err != nil {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.out.Write(p)
	}
	if evt.Level < w.level {
		return len(p), nil
	}

	var b strings.Builder
	b.WriteString(evt.Message)
	keys := make([]string, 0, len(evt.Fields))
	for k := range evt.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, evt.Fields[k])
	}
	if evt.Error != "" {
		fmt.Fprintf(&b, " error=%s", evt.Error)
	}
	b.WriteByte('\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := io.WriteString(w.out, b.String()); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *lineWriter) WithLevel(level log.Level) writers.IWriter {
	w.level = level
	return w
}

func (w *lineWriter) GetFilePath() string { return "" }
func (w *lineWriter) Close() error        { return nil }
