package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type RunLogger struct {
	file   *os.File
	logger *logrus.Logger
}

// NewRunLogger logs to stdout and, when logsDir is set, to a timestamped
// file under logsDir/<name>.
func NewRunLogger(logsDir, name, level string) (*RunLogger, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000000",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	rl := &RunLogger{logger: logger}
	if logsDir == "" {
		logger.SetOutput(os.Stdout)
		return rl, nil
	}

	// Sanitize name for file system
	sanitized := strings.ReplaceAll(strings.ToLower(name), " ", "_")

	dir := filepath.Join(logsDir, sanitized)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(dir, fmt.Sprintf("%s_%s.log", sanitized, timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger.SetOutput(io.MultiWriter(os.Stdout, file))
	rl.file = file

	return rl, nil
}

// NewWriterLogger logs to w only.
func NewWriterLogger(w io.Writer) *RunLogger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(logrus.DebugLevel)
	return &RunLogger{logger: logger}
}

func (rl *RunLogger) LogInfo(format string, v ...interface{}) {
	rl.logger.Infof(format, v...)
}

func (rl *RunLogger) LogWarn(format string, v ...interface{}) {
	rl.logger.Warnf(format, v...)
}

func (rl *RunLogger) LogError(format string, v ...interface{}) {
	rl.logger.Errorf(format, v...)
}

func (rl *RunLogger) LogDebug(format string, v ...interface{}) {
	rl.logger.Debugf(format, v...)
}

// LogFatal logs at error level, closes the log file and exits with status 1.
func (rl *RunLogger) LogFatal(format string, v ...interface{}) {
	rl.logger.Errorf(format, v...)
	rl.Close()
	rl.logger.Exit(1)
}

func (rl *RunLogger) WithField(key string, value interface{}) *logrus.Entry {
	return rl.logger.WithField(key, value)
}

func (rl *RunLogger) Close() error {
	if rl.file == nil {
		return nil
	}
	return rl.file.Close()
}
