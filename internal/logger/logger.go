package logger

import "go.uber.org/zap"

var Log *zap.Logger

func Init() {
	Log = zap.Must(zap.NewProduction())
}

// InitNop installs a no-op logger. Used by tests.
func InitNop() {
	Log = zap.NewNop()
}

func Sugar() *zap.SugaredLogger {
	return Log.Sugar()
}
