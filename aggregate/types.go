// Package aggregate implements the aggregator (C6) and the aggregate
// selector/verifier (C7): combining single commits into an AggregateCommit
// and choosing or verifying one for block finality.
package aggregate

import (
	"errors"

	"github.com/prysmaticlabs/go-bitfield"
)

// ErrNoSingleCommit is raised when the aggregator is called with no
// input — a programming error, always surfaced.
var ErrNoSingleCommit = errors.New("aggregate: no single commit supplied")

// ErrNoBLSKeyForValidator is raised when a signing validator cannot be
// resolved in the height's parameter set.
var ErrNoBLSKeyForValidator = errors.New("aggregate: no bls key for validator")

// ErrMixedHeights is raised when the aggregator's input spans more than
// one height; the protocol only aggregates commits at a single height.
var ErrMixedHeights = errors.New("aggregate: single commits span more than one height")

// AggregateCommit combines single commits at one height into a BLS
// aggregate signature plus a bitmap of which validators contributed.
type AggregateCommit struct {
	Height               uint32
	AggregationBits      bitfield.Bitlist
	CertificateSignature []byte
}

// IsSentinel reports whether ag carries no usable aggregate: true when the
// bitmap or the signature is empty. The sentinel value has both empty.
func (ag AggregateCommit) IsSentinel() bool {
	return len(ag.CertificateSignature) == 0 || ag.AggregationBits.Len() == 0
}

// Sentinel returns the sentinel AggregateCommit for a given height.
func Sentinel(height uint32) AggregateCommit {
	return AggregateCommit{Height: height}
}
