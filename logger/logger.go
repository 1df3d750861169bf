package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var log = logrus.New()

// InitLogger configures the global logger from the -log flag value. When
// logFile is non-empty, output goes to console and a size-rotated file.
func InitLogger(logLevel *string, logFile string) {
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	writers := []io.Writer{os.Stdout}
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    50, // MB
				MaxBackups: 3,
				MaxAge:     14, // days
				Compress:   true,
			})
		} else {
			log.Warnf("Failed to create log directory for %s: %v", logFile, err)
		}
	}
	log.SetOutput(io.MultiWriter(writers...))

	Info("Application started")
	Debug("This is a debug message")
}

// Debug logs debug-level messages
func Debug(v ...interface{}) {
	log.Debug(v...)
}

// Debugf logs debug-level formatted messages
func Debugf(format string, v ...interface{}) {
	log.Debugf(format, v...)
}

// Info logs info-level messages
func Info(v ...interface{}) {
	log.Info(v...)
}

// Infof logs info-level formatted messages
func Infof(format string, v ...interface{}) {
	log.Infof(format, v...)
}

// Warn logs warning-level messages
func Warn(v ...interface{}) {
	log.Warn(v...)
}

// Warnf logs warning-level formatted messages
func Warnf(format string, v ...interface{}) {
	log.Warnf(format, v...)
}

// Error logs error-level messages
func Error(v ...interface{}) {
	log.Error(v...)
}

// Errorf logs error-level formatted messages
func Errorf(format string, v ...interface{}) {
	log.Errorf(format, v...)
}
