package sweep

import "github.com/okian/roundelo/pkg/logger"

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithWorkers sets the pool size. Values below 1 fall back to the CPU count.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithLogger sets the runner logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRoster fixes the player universe of every job.
func WithRoster(players []string) Option {
	return func(r *Runner) {
		r.roster = append([]string(nil), players...)
	}
}
