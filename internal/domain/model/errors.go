package model

import "errors"

// Sentinel kinds for placement grouping.
var (
	ErrRankGap         = errors.New("non-contiguous ranks")
	ErrDuplicatePlayer = errors.New("player placed twice in round")
	ErrEmptyPlayerID   = errors.New("empty player id")
)
