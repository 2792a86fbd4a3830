package logger

import "log/slog"

// Err returns an "error" attribute for the handlers and services, so the
// attribute key stays uniform across the log stream.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
