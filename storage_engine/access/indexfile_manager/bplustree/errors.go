package bplus

import "errors"

// Error kinds, one sentinel per spec.md §7. Insert and the scan methods
// return them as-is; Open and bulk load wrap errors with
// fmt.Errorf("...: %w", ...) for context, so callers test with errors.Is.
var (
	ErrBadIndexInfo       = errors.New("bad index info")
	ErrBadOpcodes         = errors.New("bad scan opcodes")
	ErrBadScanRange       = errors.New("bad scan range")
	ErrNoSuchKeyFound     = errors.New("no such key found")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrScanNotInitialized = errors.New("scan not initialized")
	ErrScanCompleted      = errors.New("scan completed")
	ErrBadKey             = errors.New("bad key")
)
