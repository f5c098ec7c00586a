package lc3

import "go.uber.org/zap"

// Option configures an Encoder or Decoder.
type Option func(*options)

type options struct {
	logger *zap.Logger
	tracer Tracer
	hr     bool
}

func newOptions(opts []Option) options {
	o := options{logger: zap.NewNop(), tracer: NoopTracer{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTracer installs a per-frame trace hook.
func WithTracer(t Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithHighResolution selects the high-resolution 48 and 96 kHz modes, which
// allow frames of up to 625 bytes.
func WithHighResolution(hr bool) Option {
	return func(o *options) { o.hr = hr }
}
