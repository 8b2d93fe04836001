package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Logger bundles a secure logger with the resources behind it.
type Logger struct {
	*slog.Logger

	file *os.File
}

// New returns a secure text logger writing to w and, when logFile is set,
// appending the same records to logFile. Close releases the file.
func New(w io.Writer, logFile string, level slog.Level) (*Logger, error) {
	if logFile == "" {
		return &Logger{Logger: NewSecureLogger(w, level)}, nil
	}

	f, err := OpenLogFile(logFile)
	if err != nil {
		return nil, err
	}
	return &Logger{
		Logger: NewSecureLogger(io.MultiWriter(w, f), level),
		file:   f,
	}, nil
}

// Close closes the log file, if any. It is safe to call more than once.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// OpenLogFile opens path for appending, creating it and its parent directory.
func OpenLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // operator-configured log path
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
