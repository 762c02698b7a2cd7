package main

import (
	"context"
	"math/big"
	"sync"

	"github.com/dcz-bft/commitpool/bftapi"
)

// demoBFT is a static bftapi.API: a fixed validator set and certificate
// threshold, with maxHeightCertified trailing maxHeightPrecommitted by a
// constant margin as the demo chain advances. No parameter change is
// ever scheduled.
type demoBFT struct {
	mu           sync.Mutex
	validators   []bftapi.Validator
	threshold    *big.Int
	precommitted uint32
	certified    uint32
}

const demoCertificationLag = 2

func newDemoBFT(validators []bftapi.Validator, threshold *big.Int) *demoBFT {
	return &demoBFT{validators: validators, threshold: threshold}
}

// observeHeight is called by the demo block producer every time the
// chain advances, keeping the reported BFT heights in step with it.
func (b *demoBFT) observeHeight(height uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.precommitted = height
	if height > demoCertificationLag {
		b.certified = height - demoCertificationLag
	}
}

func (b *demoBFT) GetBFTHeights(ctx context.Context) (bftapi.BFTHeights, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bftapi.BFTHeights{MaxHeightCertified: b.certified, MaxHeightPrecommitted: b.precommitted}, nil
}

func (b *demoBFT) GetBFTParameters(ctx context.Context, height uint32) (bftapi.BFTParameters, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bftapi.BFTParameters{Validators: b.validators, CertificateThreshold: b.threshold}, nil
}

func (b *demoBFT) GetNextHeightBFTParameters(ctx context.Context, height uint32) (uint32, error) {
	return 0, bftapi.ErrBFTParameterNotFound
}

func (b *demoBFT) ExistBFTParameters(ctx context.Context, height uint32) (bool, error) {
	return height == 0, nil
}

func (b *demoBFT) GetValidator(ctx context.Context, addr [20]byte, height uint32) (bftapi.Validator, error) {
	params, err := b.GetBFTParameters(ctx, height)
	if err != nil {
		return bftapi.Validator{}, err
	}
	v, ok := params.FindValidator(addr)
	if !ok {
		return bftapi.Validator{}, bftapi.ErrBFTParameterNotFound
	}
	return v, nil
}

func (b *demoBFT) GetCurrentValidators(ctx context.Context) ([]bftapi.Validator, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.validators, nil
}
