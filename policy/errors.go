package policy

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Parse and Validate. Callers match with
// errors.Is; wrapping (fmt.Errorf("...: %w", err)) always preserves one
// of these at the root.
var (
	ErrNonBinaryAnd              = errors.New("and() requires exactly two arguments")
	ErrNonBinaryOr               = errors.New("or() requires exactly two arguments")
	ErrIncorrectThresh           = errors.New("thresh: k must satisfy 1 <= k <= n")
	ErrZeroTime                  = errors.New("timelock value must be nonzero")
	ErrTimeTooFar                = errors.New("timelock value must be less than 2^31")
	ErrHeightTimelockCombination = errors.New("policy mixes a height-based and a time-based timelock on one satisfaction path")
	ErrDuplicatePubKeys          = errors.New("policy contains the same key in more than one leaf")
	ErrTopLevelNonSafe           = errors.New("policy is not safe at the top level")
	ErrUnprintable               = errors.New("policy string contains a non-printable byte")
	ErrAtOutsideOr               = errors.New("probability prefix 'w@' is only valid as a direct child of or()")
	ErrUnknownHead               = errors.New("unrecognized policy fragment")
	ErrBadArity                  = errors.New("policy fragment has the wrong number of arguments")
	ErrUnexpectedTrailer         = errors.New("unexpected characters after policy")

	// ErrEntailmentMaxTerminals is reserved for a semantic-entailment check
	// on oversized formulas. Entailment itself is out of scope here (no
	// function returns this error today); it is declared so a caller
	// building entailment on top of this package's policy tree has a
	// stable sentinel to adopt rather than inventing its own.
	ErrEntailmentMaxTerminals = errors.New("policy: entailment check refused on an oversized formula")

	// ErrMultiColon is returned by Parse when a fragment name contains a
	// ':' (the policy grammar has no colon-wrapped fragments).
	ErrMultiColon = errors.New("unexpected ':' in fragment name")
)

// UnprintableByteError carries the offending byte alongside ErrUnprintable.
type UnprintableByteError struct {
	Byte byte
	Pos  int
}

func (e *UnprintableByteError) Error() string {
	return fmt.Sprintf("unprintable byte 0x%02x at position %d", e.Byte, e.Pos)
}

func (e *UnprintableByteError) Unwrap() error { return ErrUnprintable }
