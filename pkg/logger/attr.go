package logger

import "log/slog"

// Error returns a standard attribute for error values. Nil errors become an
// empty string so log lines keep a stable shape.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// UserID returns a standard attribute for user identifiers.
func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

// Component returns a standard attribute naming the emitting subsystem.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
