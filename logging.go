package transitfusion

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/theoremus-urban-solutions/transit-fusion/config"
	"github.com/theoremus-urban-solutions/transit-fusion/errs"
)

// NewLogger builds the process logger from the logging section of the config.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return nil, errs.Wrap(errs.ErrInvalidConfig, err, "log level %q", cfg.Level)
		}
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc.Build()
}
