package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/matokeo/core"
)

type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.std.Println(append([]interface{}{"INFO:", msg}, args...)...)
	rollbar.Info(append([]interface{}{msg}, args...)...)
}

func (l RollbarLogger) Error(msg string, err error, args ...interface{}) {
	l.std.Println(append([]interface{}{"ERROR:", msg, err}, args...)...)
	rollbar.Error(append([]interface{}{msg, err}, args...)...)
}

func (l RollbarLogger) Close() error {
	rollbar.Close()
	return nil
}
