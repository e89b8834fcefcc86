package api

import (
	"errors"
	"fmt"
)

// ErrBadRequest marks a request the handler refused to run.
var ErrBadRequest = errors.New("bad request")

func badRequest(op, detail string) error {
	return fmt.Errorf("%s: %w: %s", op, ErrBadRequest, detail)
}
