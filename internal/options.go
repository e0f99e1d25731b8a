package internal

// Option configures a runtime. Apply options before mounting anything.
type Option func(*Runtime)

// WithLenient switches the runtime from development behavior (panic on
// scheduling preconditions) to production behavior (log and degrade).
// Invariant violations stay fatal either way.
func WithLenient() Option {
	return func(r *Runtime) {
		r.strict = false
		r.scheduler.strict = false
	}
}

// WithStrict restores development behavior. The zero runtime is strict.
func WithStrict() Option {
	return func(r *Runtime) {
		r.strict = true
		r.scheduler.strict = true
	}
}

// WithMaxFlushDepth overrides the bound on tasks per flush.
func WithMaxFlushDepth(n int) Option {
	return func(r *Runtime) {
		if n > 0 {
			r.scheduler.maxDepth = n
		}
	}
}

func (r *Runtime) Configure(opts ...Option) {
	for _, opt := range opts {
		opt(r)
	}
}
