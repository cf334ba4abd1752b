package ratsnest

// Options controls how a net derives its copper connections.
type Options struct {
	// Constraints inserts copper connections into the triangulation as
	// constrained edges, so no ratsnest line is drawn across a track.
	Constraints bool
	// TJunctions joins nodes lying on a track of the same net to it.
	TJunctions bool
}

// Option configures Options.
type Option func(*Options)

// WithConstraints enables or disables constrained triangulation.
func WithConstraints(on bool) Option {
	return func(o *Options) { o.Constraints = on }
}

// WithTJunctions enables or disables T-junction detection.
func WithTJunctions(on bool) Option {
	return func(o *Options) { o.TJunctions = on }
}

func newOptions(opts []Option) Options {
	o := Options{Constraints: true, TJunctions: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
