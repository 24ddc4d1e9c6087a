package logsvc

import (
	"fmt"
	"log"

	"github.com/trezcool/matokeo/core"
)

type stdLogger struct {
	std *log.Logger
}

var _ core.Logger = (*stdLogger)(nil)

// NewStdLogger wraps the standard library logger; the DEV/TEST default.
func NewStdLogger(std *log.Logger) *stdLogger {
	return &stdLogger{std: std}
}

func (l stdLogger) Info(msg string, args ...interface{}) {
	l.std.Println(append([]interface{}{"INFO:", msg}, args...)...)
}

func (l stdLogger) Error(msg string, err error, args ...interface{}) {
	line := append([]interface{}{"ERROR:", msg, fmt.Sprintf("%+v", err)}, args...)
	l.std.Println(line...)
}
