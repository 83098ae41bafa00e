package utils

import (
	"go.uber.org/zap"
)

var Logger *zap.Logger

// InitLogger builds the process logger. Production uses JSON output; every
// entry carries service=prepwise so logs can be filtered in a shared sink.
func InitLogger(production bool) {
	build := zap.NewDevelopment
	if production {
		build = zap.NewProduction
	}
	logger, err := build()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	Logger = logger.With(zap.String("service", "prepwise"))
}

func GetLogger() *zap.Logger {
	if Logger == nil {
		InitLogger(true)
	}
	return Logger
}
