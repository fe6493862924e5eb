package logging

import (
	"strings"

	"github.com/rgehrsitz/fireplan/internal/calculation"
	"github.com/rgehrsitz/fireplan/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger from the log settings. Unknown levels fall back to info.
func New(cfg config.LogSettings) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encoding := cfg.Encoding
	if encoding != "json" {
		encoding = "console"
	}

	zc := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Development,
		Encoding:         encoding,
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	if encoding == "console" {
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	return zc.Build()
}

// Adapter exposes a zap logger through the engine's Logger interface
type Adapter struct {
	sugar *zap.SugaredLogger
}

var _ calculation.Logger = (*Adapter)(nil)

// NewAdapter wraps l, tagging every entry with the component name
func NewAdapter(l *zap.Logger, component string) *Adapter {
	if component != "" {
		l = l.With(zap.String("component", component))
	}
	return &Adapter{sugar: l.Sugar()}
}

// NewZapLogger builds the engine logger straight from the settings
func NewZapLogger(cfg config.LogSettings) (*Adapter, error) {
	l, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return NewAdapter(l, "engine"), nil
}

func (a *Adapter) Debugf(format string, args ...any) { a.sugar.Debugf(format, args...) }
func (a *Adapter) Infof(format string, args ...any)  { a.sugar.Infof(format, args...) }
func (a *Adapter) Warnf(format string, args ...any)  { a.sugar.Warnf(format, args...) }
func (a *Adapter) Errorf(format string, args ...any) { a.sugar.Errorf(format, args...) }

// Sync flushes buffered entries
func (a *Adapter) Sync() error {
	return a.sugar.Sync()
}
