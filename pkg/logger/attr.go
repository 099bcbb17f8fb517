package logger

import (
	"log/slog"
	"strconv"
	"time"
)

func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Machine names the scanner table a record refers to.
func Machine(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("machine", name)
}

func State(name string) slog.Attr {
	return slog.String("state", name)
}

func NextState(name string) slog.Attr {
	return slog.String("next", name)
}

// Position is a byte offset in the scanned input.
func Position(pos int) slog.Attr {
	return slog.Int("pos", pos)
}

func Steps(n int) slog.Attr {
	return slog.Int("steps", n)
}

func ScanID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("scan_id", id)
}

func Source(name string) slog.Attr {
	return slog.String("source", name)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
