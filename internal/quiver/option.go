package quiver

import "log/slog"

// Option is a functional option shared by OpenLibrary, OpenNotebook and OpenNote.
// Children opened during a scan inherit the options of their parent.
type Option func(*loader)

type loader struct {
	codec  Codec
	logger *slog.Logger
}

// WithCodec replaces the default JSON codec.
func WithCodec(c Codec) Option {
	return func(l *loader) {
		l.codec = c
	}
}

// WithLogger sets the logger used for debug records on lazy loads.
func WithLogger(logger *slog.Logger) Option {
	return func(l *loader) {
		l.logger = logger
	}
}

func newLoader(opts []Option) *loader {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.codec == nil {
		l.codec = JSONCodec{}
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}
