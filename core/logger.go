package core

// Logger is any service that can log app events.
type Logger interface {
	// Info logs informational events. args may hold a map[string]interface{}
	// of extra context.
	Info(msg string, args ...interface{})
	// Error logs and reports application errors.
	Error(msg string, err error, args ...interface{})
}
