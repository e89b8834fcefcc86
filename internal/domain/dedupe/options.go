package dedupe

// Option configures a Deduper.
type Option func(*eventDeduper)

// WithMaxSize bounds the number of tracked ids. Zero or negative disables
// eviction.
func WithMaxSize(maxSize int) Option {
	return func(d *eventDeduper) {
		d.maxSize = maxSize
	}
}

// WithSeen preloads ids that are already stored.
func WithSeen(ids ...string) Option {
	return func(d *eventDeduper) {
		d.seed = append(d.seed, ids...)
	}
}
