package core

import (
	"fmt"
	"log/slog"
)

// PrintfLogger adapts a slog.Logger to printf-style logger interfaces
// such as the one ants pools accept. Messages are logged at warn level.
type PrintfLogger struct {
	Logger *slog.Logger
}

// Printf formats and logs a message.
func (l PrintfLogger) Printf(format string, args ...any) {
	l.Logger.Warn(fmt.Sprintf(format, args...))
}
