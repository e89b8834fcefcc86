package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/roundelo/pkg/metrics"
)

// MemoryStore is the in-memory Store used for a single rating run.
//
// Ordering for Rank/TopN: rating DESC, then player id ASC.
type MemoryStore struct {
	mu             sync.RWMutex
	series         map[string][]float64 // series[id][i] is the rating at index i
	players        []string
	rounds         int
	expectedRounds int

	// ranked and position cache the leaderboard until the next commit;
	// position[id] indexes ranked.
	ranked   []Entry
	position map[string]int
}

// NewMemoryStore seeds every player in the universe with initial at index 0.
// Duplicate ids are collapsed.
func NewMemoryStore(players []string, initial float64, opts ...Option) *MemoryStore {
	s := &MemoryStore{}
	for _, opt := range opts {
		opt(s)
	}

	s.series = make(map[string][]float64, len(players))
	for _, id := range players {
		if _, ok := s.series[id]; ok {
			continue
		}
		row := make([]float64, 1, s.expectedRounds+1)
		row[0] = initial
		s.series[id] = row
		s.players = append(s.players, id)
	}
	sort.Strings(s.players)

	metrics.UpdateStorePlayers(len(s.players))
	return s
}

// Has reports whether the player is part of the universe.
func (s *MemoryStore) Has(_ context.Context, playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.series[playerID]
	return ok
}

// Rounds returns the number of committed round indices.
func (s *MemoryStore) Rounds(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rounds
}

// At returns the rating of playerID at index.
func (s *MemoryStore) At(_ context.Context, playerID string, index int) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.series[playerID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, playerID)
	}
	if index < 0 || index >= len(row) {
		return 0, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRun, index, s.rounds)
	}
	return row[index], nil
}

// Commit appends index for every player. The whole commit is validated
// before any cell is written.
func (s *MemoryStore) Commit(_ context.Context, index int, ratings map[string]float64) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreCommitLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if index != s.rounds+1 {
		return fmt.Errorf("%w: got %d, next is %d", ErrOutOfOrder, index, s.rounds+1)
	}
	if len(ratings) != len(s.series) {
		return fmt.Errorf("%w: %d ratings for %d players", ErrIncomplete, len(ratings), len(s.series))
	}
	for id := range ratings {
		if _, ok := s.series[id]; !ok {
			return fmt.Errorf("%w: %s", ErrIncomplete, id)
		}
	}

	for id, r := range ratings {
		s.series[id] = append(s.series[id], r)
	}
	s.rounds = index
	s.ranked = nil
	s.position = nil
	return nil
}

// History returns a copy of the player's ratings after rounds 1..Rounds().
func (s *MemoryStore) History(_ context.Context, playerID string) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.series[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, playerID)
	}
	out := make([]float64, len(row)-1)
	copy(out, row[1:])
	return out, nil
}

// Histories returns a copy of every player's ratings after rounds
// 1..Rounds(), keyed by player id.
func (s *MemoryStore) Histories(_ context.Context) map[string][]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]float64, len(s.series))
	for id, row := range s.series {
		h := make([]float64, len(row)-1)
		copy(h, row[1:])
		out[id] = h
	}
	return out
}

// Current returns every player's latest rating.
func (s *MemoryStore) Current(_ context.Context) map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]float64, len(s.series))
	for id, row := range s.series {
		out[id] = row[len(row)-1]
	}
	return out
}

// Players returns the universe sorted by id.
func (s *MemoryStore) Players(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.players))
	copy(out, s.players)
	return out
}

// Count returns the size of the universe.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// Rank returns the leaderboard entry of playerID.
func (s *MemoryStore) Rank(_ context.Context, playerID string) (Entry, error) {
	board, position := s.leaderboard()
	i, ok := position[playerID]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, playerID)
	}
	return board[i], nil
}

// TopN returns the best n entries.
func (s *MemoryStore) TopN(_ context.Context, n int) ([]Entry, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	board, _ := s.leaderboard()
	if n > len(board) {
		n = len(board)
	}
	out := make([]Entry, n)
	copy(out, board[:n])
	return out, nil
}

// leaderboard returns the cached ranking and its position index,
// rebuilding both after a commit.
func (s *MemoryStore) leaderboard() ([]Entry, map[string]int) {
	s.mu.RLock()
	if s.ranked != nil {
		board, position := s.ranked, s.position
		s.mu.RUnlock()
		return board, position
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ranked != nil {
		return s.ranked, s.position
	}

	board := make([]Entry, 0, len(s.series))
	for id, row := range s.series {
		board = append(board, Entry{PlayerID: id, Rating: row[len(row)-1]})
	}
	sort.Slice(board, func(i, j int) bool {
		if board[i].Rating != board[j].Rating {
			return board[i].Rating > board[j].Rating
		}
		return board[i].PlayerID < board[j].PlayerID
	})
	position := make(map[string]int, len(board))
	for i := range board {
		board[i].Rank = i + 1
		position[board[i].PlayerID] = i
	}
	s.ranked, s.position = board, position
	return board, position
}
