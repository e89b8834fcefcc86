package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithExpectedRounds preallocates each player's series for a run of n rounds.
func WithExpectedRounds(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.expectedRounds = n
		}
	}
}
