package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the global logger. It stays nil until Init is called, and every
// helper below is a no-op in that case.
var Logger *log.Logger

var out io.Writer = io.Discard

type Config struct {
	Debug bool
	Dir   string
}

// Init writes to <Dir>/logs/clearway.log with rotation. In debug mode the
// log is mirrored to stderr.
func Init(cfg Config) error {
	logDir := filepath.Join(cfg.Dir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "clearway.log"),
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := log.InfoLevel
	var w io.Writer = fileWriter
	if cfg.Debug {
		level = log.DebugLevel
		w = io.MultiWriter(os.Stderr, fileWriter)
	}

	Logger = log.NewWithOptions(w, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "clearway",
	})
	out = w
	return nil
}

// Writer returns the destination of the global logger, for components that
// want a plain io.Writer (HTTP access logs).
func Writer() io.Writer {
	return out
}

func Debug(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
