package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions controls the rotating log file written next to console output.
type FileOptions struct {
	// FileName is relative to the logs directory (default: zyro.log).
	FileName string
	// MaxSizeMB is the size at which the file is rotated (default: 10).
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept (default: 5).
	MaxBackups int
}

var (
	fileMu     sync.RWMutex
	fileLogger *zap.Logger
)

// EnableFileOutput mirrors every record, including debug ones, into a JSON
// log file under dir. The returned func flushes and detaches the sink.
func EnableFileOutput(dir string, opts FileOptions) (func(), error) {
	if opts.FileName == "" {
		opts.FileName = "zyro.log"
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 10
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = 5
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(dir, opts.FileName),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(rotator),
		zapcore.DebugLevel,
	)
	logger := zap.New(core)

	fileMu.Lock()
	fileLogger = logger
	fileMu.Unlock()

	return func() {
		fileMu.Lock()
		if fileLogger == logger {
			fileLogger = nil
		}
		fileMu.Unlock()
		_ = logger.Sync()
		_ = rotator.Close()
	}, nil
}

// Sync flushes the file sink, if any.
func Sync() {
	fileMu.RLock()
	defer fileMu.RUnlock()
	if fileLogger != nil {
		_ = fileLogger.Sync()
	}
}

func writeToFile(level int, component, message string) {
	fileMu.RLock()
	logger := fileLogger
	fileMu.RUnlock()
	if logger == nil {
		return
	}

	var fields []zap.Field
	if component != "" {
		fields = append(fields, zap.String("component", component))
	}

	switch level {
	case levelDebug:
		logger.Debug(message, fields...)
	case levelInfo:
		logger.Info(message, fields...)
	case levelWarn:
		logger.Warn(message, fields...)
	default:
		logger.Error(message, fields...)
	}
}
