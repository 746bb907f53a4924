// Package logger builds the process logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// New returns a text logger at levelStr (info when unparsable) writing to
// stderr, and also to filePath when set. The returned close func releases
// the log file and is safe to call when no file was opened.
func New(levelStr, filePath string) (*logrus.Logger, func() error, error) {
	return newWithOutput(levelStr, filePath, os.Stderr)
}

func newWithOutput(levelStr, filePath string, console io.Writer) (*logrus.Logger, func() error, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	closeFn := func() error { return nil }
	writers := []io.Writer{console}
	if filePath != "" {
		if dir := filepath.Dir(filePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, closeFn, fmt.Errorf("logger: create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, closeFn, fmt.Errorf("logger: open %s: %w", filePath, err)
		}
		writers = append(writers, f)
		closeFn = f.Close
	}
	log.SetOutput(io.MultiWriter(writers...))
	return log, closeFn, nil
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
