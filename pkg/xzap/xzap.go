package xzap

import (
	"context"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConf drives logger construction from the toml config.
type LogConf struct {
	Level      string `toml:"level" mapstructure:"level" json:"level"`
	Path       string `toml:"path" mapstructure:"path" json:"path"`
	MaxSize    int    `toml:"max_size" mapstructure:"max_size" json:"max_size"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups" json:"max_backups"`
	MaxAge     int    `toml:"max_age" mapstructure:"max_age" json:"max_age"`
	Compress   bool   `toml:"compress" mapstructure:"compress" json:"compress"`
	Console    bool   `toml:"console" mapstructure:"console" json:"console"`
}

var global atomic.Pointer[zap.Logger]

func init() {
	global.Store(zap.NewNop())
}

// SetUp builds the process-wide logger. File output rotates through
// lumberjack; console output is optional and meant for local runs.
func SetUp(c LogConf) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if c.Level != "" {
		if err := level.Set(c.Level); err != nil {
			return nil, err
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core
	if c.Path != "" {
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename:   c.Path,
			MaxSize:    c.MaxSize,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAge,
			Compress:   c.Compress,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), w, level))
	}
	if c.Console || c.Path == "" {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stdout), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	global.Store(logger)
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// WithContext returns the shared logger. The context parameter keeps the
// call sites uniform with request-scoped logging and leaves room for
// trace-id enrichment.
func WithContext(_ context.Context) *zap.Logger {
	return global.Load()
}
