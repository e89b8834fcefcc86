// Package repository holds rating state: one rating per player per processed
// round index.
package repository

import "context"

// Entry is a leaderboard row ordered by current rating.
type Entry struct {
	Rank     int
	PlayerID string
	Rating   float64
}

// Store provides the rating table written by the engine and read by callers.
// Index 0 is the initial rating; index i is the rating after the i-th
// processed round of the run.
type Store interface {
	// Has reports whether the player belongs to the store's universe.
	Has(ctx context.Context, playerID string) bool

	// Rounds returns the number of committed round indices.
	Rounds(ctx context.Context) int

	// At returns a player's rating at a committed index.
	At(ctx context.Context, playerID string, index int) (float64, error)

	// Commit writes index for every player in the universe. Index must be
	// Rounds()+1 and ratings must cover exactly the universe. Cells are
	// never overwritten.
	Commit(ctx context.Context, index int, ratings map[string]float64) error

	// History returns the ratings after rounds 1..Rounds() for a player.
	History(ctx context.Context, playerID string) ([]float64, error)

	// Current returns every player's latest rating.
	Current(ctx context.Context) map[string]float64

	// Players returns the universe sorted by id.
	Players(ctx context.Context) []string

	// Rank returns a player's leaderboard position by current rating.
	// Returns ErrNotFound if the player is unknown.
	Rank(ctx context.Context, playerID string) (Entry, error)

	// TopN returns the best n players by current rating.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the size of the universe.
	Count(ctx context.Context) int
}
