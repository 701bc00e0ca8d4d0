package miniscript

import "errors"

var (
	// ErrUnsupportedFragment is returned by DefaultCompiler when asked to
	// compile a policy.Policy variant it has no compilation rule for
	// (none exist today — every policy.Policy variant has a rule — but
	// the error is kept as the compiler's catch-all so adding a policy
	// variant later fails loudly instead of panicking).
	ErrUnsupportedFragment = errors.New("miniscript: no compilation rule for this policy fragment")

	// ErrSanityCheck is the wrapped root of every sanity-check failure
	// DefaultCompiler.SanityCheck reports.
	ErrSanityCheck = errors.New("miniscript: compiled node failed sanity check")

	// ErrNoSatisfaction names the condition of a Node with no accountable
	// satisfying witness (Impossible, or a Thresh/AndV/OrB whose children
	// make satisfaction impossible to account for). MaxSatisfactionSize
	// reports that condition through its boolean result; no function in
	// this module returns this error.
	ErrNoSatisfaction = errors.New("miniscript: node has no accountable satisfaction")
)
