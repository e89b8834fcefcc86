package ingest

import "errors"

// ErrImport is wrapped by every failure to turn a results file into events.
var ErrImport = errors.New("import results")
