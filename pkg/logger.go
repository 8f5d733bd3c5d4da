package pkg

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger for the given deployment mode (development gets the colored console
// encoder, everything else the production JSON encoder).
func NewLogger(mode Mode) (*zap.Logger, error) {
	var config zap.Config

	if mode.IsDevelopment() {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else { // production, test or unknown
		config = zap.NewProductionConfig()
		config.OutputPaths = []string{"stdout"}
		config.ErrorOutputPaths = []string{"stderr"}
	}
	return config.Build(zap.AddStacktrace(zap.DPanicLevel))
}
