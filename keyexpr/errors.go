package keyexpr

import "errors"

var (
	// ErrTooFewMembers is returned by NewMuSig when fewer than two
	// members are supplied.
	ErrTooFewMembers = errors.New("musig requires at least two member keys")

	// ErrAggregationFailed wraps a failure from the underlying MuSig2
	// key-aggregation routine (malformed or duplicate public keys).
	ErrAggregationFailed = errors.New("musig2 key aggregation failed")

	// ErrNoLeaves is returned when aggregating a key expression with no
	// SingleKey leaves at all (should not happen given NewMuSig's
	// two-member minimum, but guards against hand-built empty trees).
	ErrNoLeaves = errors.New("key expression has no leaf keys to aggregate")
)
