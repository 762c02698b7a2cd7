// Package bftapi defines the capability interface the commit pool uses to
// read BFT engine state. The pool never decides heights or validator sets;
// it only consumes whatever the engine currently reports.
package bftapi

import (
	"context"
	"errors"
	"math/big"
)

// ErrBFTParameterNotFound is raised by GetNextHeightBFTParameters when no
// further parameter change is known past the given height.
var ErrBFTParameterNotFound = errors.New("bftapi: no bft parameters found")

// Validator is a single entry of the active validator set at some height.
type Validator struct {
	Address  [20]byte
	BFTWeight *big.Int
	BLSKey   [48]byte
}

// BFTHeights reports the two heights the pool needs to bound its window.
type BFTHeights struct {
	MaxHeightCertified    uint32
	MaxHeightPrecommitted uint32
}

// BFTParameters is the validator set and certificate threshold active at a
// given height.
type BFTParameters struct {
	Validators           []Validator
	CertificateThreshold *big.Int
}

// API is the capability interface consumed from the BFT voting engine.
// Implementations are expected to be read-only and safe for concurrent use.
type API interface {
	GetBFTHeights(ctx context.Context) (BFTHeights, error)
	GetBFTParameters(ctx context.Context, height uint32) (BFTParameters, error)
	GetNextHeightBFTParameters(ctx context.Context, height uint32) (uint32, error)
	ExistBFTParameters(ctx context.Context, height uint32) (bool, error)
	GetValidator(ctx context.Context, addr [20]byte, height uint32) (Validator, error)
	GetCurrentValidators(ctx context.Context) ([]Validator, error)
}

// FindValidator looks up a validator by address within a parameter set.
// It is a convenience used by the pool's commit validator and by
// GetValidator implementations; it does not itself hit the oracle.
func (p BFTParameters) FindValidator(addr [20]byte) (Validator, bool) {
	for _, v := range p.Validators {
		if v.Address == addr {
			return v, true
		}
	}
	return Validator{}, false
}
