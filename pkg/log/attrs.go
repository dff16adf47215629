package log

import "log/slog"

func SessionID[T ~string](id T) slog.Attr {
	return slog.String("session_id", string(id))
}

func StepKey[T ~string](key T) slog.Attr {
	return slog.String("step_key", string(key))
}

func Variant[T ~string](v T) slog.Attr {
	return slog.String("variant", string(v))
}

func Status[T ~string](status T) slog.Attr {
	return slog.String("status", string(status))
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

func ErrorString(msg string) slog.Attr {
	return slog.String("error", msg)
}
