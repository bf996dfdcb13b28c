package logger

import (
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Log is global logger. It is a no-op logger until Init runs.
	Log = zap.NewNop()

	// customTimeFormat is custom Time format
	customTimeFormat string

	// onceInit guarantee initialize logger only once
	onceInit sync.Once
)

// customTimeEncoder encode Time to our custom format
func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format(customTimeFormat))
}

// Init initializes log by input parameters
// lvl - global log level: Debug(-1), Info(0), Warn(1), Error(2), DPanic(3), Panic(4), Fatal(5)
// timeFormat - custom time format for logger of empty string to use default
func Init(lvl int, timeFormat string) error {
	onceInit.Do(func() {
		Log = New(lvl, timeFormat, zapcore.Lock(os.Stdout), zapcore.Lock(os.Stderr))
		zap.RedirectStdLog(Log)

		if timeFormat == "" {
			Log.Warn("time format for logger is not provided - use zap default")
		}
	})
	return nil
}

// New builds a logger writing levels below error to infos and the rest to
// errors, JSON encoded
func New(lvl int, timeFormat string, infos, errors zapcore.WriteSyncer) *zap.Logger {
	globalLevel := zapcore.Level(lvl)
	// High-priority output should also go to standard error, and low-priority
	// output should also go to standard out.
	// It is usefull for Kubernetes deployment.
	// Kubernetes interprets os.Stdout log items as INFO and os.Stderr log items
	// as ERROR by default.
	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})
	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= globalLevel && lvl < zapcore.ErrorLevel
	})

	// Configure console output.
	ecfg := zap.NewProductionEncoderConfig()
	if len(timeFormat) > 0 {
		customTimeFormat = timeFormat
		ecfg.EncodeTime = customTimeEncoder
	} else {
		ecfg.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	consoleEncoder := zapcore.NewJSONEncoder(ecfg)

	// Join the outputs, encoders, and level-handling functions into
	// zapcore.
	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, errors, highPriority),
		zapcore.NewCore(consoleEncoder, infos, lowPriority),
	)

	// From a zapcore.Core, it's easy to construct a Logger.
	return zap.New(core)
}
