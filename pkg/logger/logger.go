package logger

import (
	"go.uber.org/zap"
)

var log = zap.NewNop()

// Init replaces the package logger. mode "release" selects the
// production encoder, anything else the development one.
func Init(mode string) error {
	var (
		l   *zap.Logger
		err error
	)
	if mode == "release" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}
	log = l
	return nil
}

// L returns the current logger for callers that want to attach fields.
func L() *zap.Logger { return log }

func Sync() { _ = log.Sync() }

func Debug(msg string, fields ...zap.Field) { log.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { log.Error(msg, fields...) }
