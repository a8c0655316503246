package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	charmLog "github.com/charmbracelet/log"
)

// runtimeLogger fans one charm logger out to a console sink, an optional log
// file and any extra sinks such as the in-app log panel. It becomes the
// process default so package-level log calls reach every sink.
type runtimeLogger struct {
	*charmLog.Logger
	out       *fanout
	logPath   string
	closeFile func() error
}

// newRuntimeLogger configures runtime log sinks from CLI/config state.
func newRuntimeLogger(stderr io.Writer, level string, logDir string, toFile bool, now func() time.Time) (*runtimeLogger, error) {
	parsed, err := charmLog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", level, err)
	}
	if now == nil {
		now = time.Now
	}
	if stderr == nil {
		stderr = io.Discard
	}

	out := &fanout{console: stderr, consoleEnabled: true}
	logger := &runtimeLogger{out: out}
	if toFile && logDir != "" {
		path := logFilePath(logDir, now().UTC())
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out.sinks = append(out.sinks, file)
		logger.closeFile = file.Close
		logger.logPath = path
	}
	logger.Logger = charmLog.NewWithOptions(out, charmLog.Options{
		Level:           parsed,
		Prefix:          "kanban",
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})
	charmLog.SetDefault(logger.Logger)
	return logger, nil
}

// logFilePath names one log file per run day.
func logFilePath(dir string, now time.Time) string {
	return filepath.Join(dir, "kanban-"+now.Format("2006-01-02")+".log")
}

func (l *runtimeLogger) LogPath() string {
	if l == nil {
		return ""
	}
	return l.logPath
}

// AddSink starts copying every log line to w.
func (l *runtimeLogger) AddSink(w io.Writer) {
	if l == nil || w == nil {
		return
	}
	l.out.add(w)
}

// SetConsoleEnabled toggles whether the console sink receives runtime events.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.out.setConsole(enabled)
}

// Close closes the optional log file sink.
func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

// fanout is an io.Writer over a switchable console and a growable sink list.
type fanout struct {
	mu             sync.Mutex
	console        io.Writer
	consoleEnabled bool
	sinks          []io.Writer
}

func (f *fanout) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.consoleEnabled {
		_, _ = f.console.Write(p)
	}
	for _, sink := range f.sinks {
		_, _ = sink.Write(p)
	}
	return len(p), nil
}

func (f *fanout) add(w io.Writer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, w)
}

func (f *fanout) setConsole(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consoleEnabled = enabled
}
