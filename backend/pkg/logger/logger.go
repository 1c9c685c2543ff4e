package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a global logger instance
var Logger *zap.Logger

// Options tune the global logger beyond the environment preset
type Options struct {
	// Debug forces debug level in production mode
	Debug bool
	// File, when set, tees log output into a size-rotated file
	File string
}

// Init initializes the global logger
func Init(env string, opts ...Options) error {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}

	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if opt.Debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// stdout carries the dry-run artifact
	config.OutputPaths = []string{"stderr"}

	built, err := config.Build()
	if err != nil {
		return err
	}

	if opt.File != "" {
		fileEncoder := config.EncoderConfig
		fileEncoder.EncodeLevel = zapcore.CapitalLevelEncoder
		rotating := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opt.File,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
		})
		fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoder), rotating, config.Level)
		built = built.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, fileCore)
		}))
	}

	Logger = built
	return nil
}

// Sync flushes any buffered log entries
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// Get returns the global logger instance
func Get() *zap.Logger {
	if Logger == nil {
		// Fallback to a basic logger if not initialized
		logger, err := zap.NewDevelopment(zap.ErrorOutput(zapcore.Lock(os.Stderr)))
		if err != nil {
			return zap.NewNop()
		}
		return logger
	}
	return Logger
}
