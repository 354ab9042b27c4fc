// Package logging builds the zap loggers used by reliefctl and the scheduler.
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

// Options configures the console and file outputs.
type Options struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	// Dir holds the JSON log files; empty disables file output.
	Dir string `yaml:"dir"`
}

// New builds a logger writing to stdout and, when opts.Dir is set, to a
// timestamped JSON file in that directory.
func New(opts Options) (*zap.Logger, error) {
	return NewWithConsole(opts, os.Stdout)
}

// NewWithConsole is New with an explicit console writer.
func NewWithConsole(opts Options, console io.Writer) (*zap.Logger, error) {
	consoleLevel := zapcore.InfoLevel
	if opts.Level != "" {
		if err := consoleLevel.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
	}

	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	consoleEncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig), zapcore.AddSync(console), consoleLevel),
	}

	if opts.Dir != "" {
		logFile, err := openLogFile(opts)
		if err != nil {
			return nil, err
		}
		fileEncoderConfig := zap.NewProductionEncoderConfig()
		fileEncoderConfig.TimeKey = "timestamp"
		fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		// file output always captures debug
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(logFile), zapcore.DebugLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if opts.Env != "" {
		logger = logger.With(zap.String("env", opts.Env))
	}
	return logger, nil
}

func openLogFile(opts Options) (*os.File, error) {
	if err := os.MkdirAll(opts.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	prefix := opts.Env
	if prefix == "" {
		prefix = "reliefcore"
	}
	name := filepath.Join(opts.Dir, fmt.Sprintf("%s_%s.log", prefix, time.Now().Format("2006-01-02_15-04-05")))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
