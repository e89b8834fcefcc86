package types

import "errors"

// ErrNotReady is returned by read queries before any ratings are published.
var ErrNotReady = errors.New("ratings not computed yet")
