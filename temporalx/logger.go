package temporalx

import (
	"go.uber.org/zap"
)

// logAdapter exposes a SugaredLogger through the Temporal SDK's log.Logger
// interface.
type logAdapter struct {
	log *zap.SugaredLogger
}

func newLogAdapter(log *zap.SugaredLogger) *logAdapter {
	return &logAdapter{log: log}
}

func (a *logAdapter) Debug(msg string, keyvals ...interface{}) {
	a.log.Debugw(msg, keyvals...)
}

func (a *logAdapter) Info(msg string, keyvals ...interface{}) {
	a.log.Infow(msg, keyvals...)
}

func (a *logAdapter) Warn(msg string, keyvals ...interface{}) {
	a.log.Warnw(msg, keyvals...)
}

func (a *logAdapter) Error(msg string, keyvals ...interface{}) {
	a.log.Errorw(msg, keyvals...)
}
