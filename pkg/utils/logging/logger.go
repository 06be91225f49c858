package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DefaultDir = "logs"

	filePrefix      = "gradesplit"
	timestampLayout = "2006-01-02_15-04-05"
)

// Options configures the logger outputs
type Options struct {
	Env     string    // Included in the log file name when set
	Dir     string    // Directory for log files, DefaultDir if empty
	Verbose bool      // Log Debug to the console as well as the file
	Console io.Writer // os.Stderr if nil
	Now     func() time.Time
}

// InitLogger initializes a zap logger with console and file outputs
// env is used in the log file name
func InitLogger(env string) (*zap.Logger, error) {
	return New(Options{Env: env})
}

// New builds a logger that writes human-readable lines to the console and JSON to a file
func New(opts Options) (*zap.Logger, error) {
	dir := opts.Dir
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	logFile, err := os.OpenFile(FilePath(dir, opts.Env, now()), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	var console io.Writer = os.Stderr
	if opts.Console != nil {
		console = opts.Console
	}

	// Console: coloured, human-readable
	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	consoleEncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	// File: JSON
	fileEncoderConfig := zap.NewProductionEncoderConfig()
	fileEncoderConfig.TimeKey = "timestamp"
	fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleLevel := zapcore.InfoLevel
	if opts.Verbose {
		consoleLevel = zapcore.DebugLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig), zapcore.AddSync(console), consoleLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(logFile), zapcore.DebugLevel),
	)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// FilePath returns the log file path for a run started at t
func FilePath(dir, env string, t time.Time) string {
	name := filePrefix
	if env != "" {
		name += "_" + env
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s.log", name, t.Format(timestampLayout)))
}
