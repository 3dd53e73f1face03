// Package slogfield provides shared slog attribute constructors.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package slogfield

import "log/slog"

func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

func Kind(kind string) slog.Attr {
	return slog.String("kind", kind)
}

func Tag(tag string) slog.Attr {
	return slog.String("tag", tag)
}

func ID(id uint64) slog.Attr {
	return slog.Uint64("id", id)
}

func State(state string) slog.Attr {
	return slog.String("state", state)
}

func Buffered(n int) slog.Attr {
	return slog.Int("buffered", n)
}
