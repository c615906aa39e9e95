// Package logging builds the application logger backed by zap.
package logging

import (
	"fmt"
	"strings"

	"github.com/Gobusters/ectologger"
	"go.uber.org/zap"
)

// New returns an application logger that forwards every log message to a
// zap core, plus a flush function for shutdown.
func New(level string, pretty bool) (ectologger.Logger, func(), error) {
	var zapConfig zap.Config
	if pretty {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	zapLevel, err := zap.ParseAtomicLevel(strings.ToLower(level))
	if err == nil {
		zapConfig.Level = zapLevel
	}

	zapLogger, err := zapConfig.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, nil, err
	}

	logger := ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		fields := make([]zap.Field, 0, len(msg.Fields)+1)
		for key, value := range msg.Fields {
			fields = append(fields, zap.Any(key, value))
		}
		if msg.Err != nil {
			fields = append(fields, zap.Error(msg.Err))
		}

		switch strings.ToLower(fmt.Sprint(msg.Level)) {
		case "debug":
			zapLogger.Debug(msg.Message, fields...)
		case "warn", "warning":
			zapLogger.Warn(msg.Message, fields...)
		case "error":
			zapLogger.Error(msg.Message, fields...)
		case "fatal":
			zapLogger.Fatal(msg.Message, fields...)
		default:
			zapLogger.Info(msg.Message, fields...)
		}
	})

	flush := func() {
		_ = zapLogger.Sync()
	}

	return logger, flush, nil
}
