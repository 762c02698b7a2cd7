// Package testutil provides in-memory fakes for the commit pool's
// collaborator interfaces, shared across the pool, certificate and
// aggregate packages' tests.
package testutil

import (
	"context"
	"math/big"
	"sync"

	"github.com/dcz-bft/commitpool/bftapi"
	"github.com/dcz-bft/commitpool/chain"
	"github.com/dcz-bft/commitpool/crypto"
	"github.com/dcz-bft/commitpool/netpacket"
)

// BFT is an in-memory bftapi.API backed by an explicit parameter change
// schedule: a map of the height at which each BFTParameters set starts
// applying.
type BFT struct {
	mu         sync.Mutex
	Heights    bftapi.BFTHeights
	changeAt   []uint32
	paramsByAt map[uint32]bftapi.BFTParameters
}

// NewBFT returns an empty fake with no parameter changes scheduled.
func NewBFT() *BFT {
	return &BFT{paramsByAt: make(map[uint32]bftapi.BFTParameters)}
}

// SetParametersFrom schedules params to take effect at and after height
// from, until the next scheduled change.
func (f *BFT) SetParametersFrom(from uint32, params bftapi.BFTParameters) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.paramsByAt[from]; !ok {
		f.changeAt = append(f.changeAt, from)
		sortUint32s(f.changeAt)
	}
	f.paramsByAt[from] = params
}

func sortUint32s(s []uint32) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func (f *BFT) GetBFTHeights(ctx context.Context) (bftapi.BFTHeights, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Heights, nil
}

func (f *BFT) GetBFTParameters(ctx context.Context, height uint32) (bftapi.BFTParameters, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var applicable uint32
	found := false
	for _, at := range f.changeAt {
		if at <= height {
			applicable = at
			found = true
		}
	}
	if !found {
		return bftapi.BFTParameters{}, bftapi.ErrBFTParameterNotFound
	}
	return f.paramsByAt[applicable], nil
}

func (f *BFT) GetNextHeightBFTParameters(ctx context.Context, height uint32) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, at := range f.changeAt {
		if at > height {
			return at, nil
		}
	}
	return 0, bftapi.ErrBFTParameterNotFound
}

// ExistBFTParameters reports whether a parameter set was explicitly
// scheduled to start at exactly this height — not merely inherited from
// an earlier change, which GetBFTParameters would otherwise resolve to.
func (f *BFT) ExistBFTParameters(ctx context.Context, height uint32) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.paramsByAt[height]
	return ok, nil
}

func (f *BFT) GetValidator(ctx context.Context, addr [20]byte, height uint32) (bftapi.Validator, error) {
	params, err := f.GetBFTParameters(ctx, height)
	if err != nil {
		return bftapi.Validator{}, err
	}
	v, ok := params.FindValidator(addr)
	if !ok {
		return bftapi.Validator{}, bftapi.ErrBFTParameterNotFound
	}
	return v, nil
}

func (f *BFT) GetCurrentValidators(ctx context.Context) ([]bftapi.Validator, error) {
	f.mu.Lock()
	heights := f.Heights
	f.mu.Unlock()
	params, err := f.GetBFTParameters(ctx, heights.MaxHeightPrecommitted)
	if err != nil {
		return nil, err
	}
	return params.Validators, nil
}

// Chain is an in-memory chain.Reader backed by a height-indexed map of
// headers.
type Chain struct {
	mu              sync.Mutex
	Finalized       uint32
	headersByHeight map[uint32]chain.BlockHeader
}

// NewChain returns an empty fake reader.
func NewChain() *Chain {
	return &Chain{headersByHeight: make(map[uint32]chain.BlockHeader)}
}

// SetHeader stores h under its own height.
func (c *Chain) SetHeader(h chain.BlockHeader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headersByHeight[h.Height] = h
}

func (c *Chain) FinalizedHeight(ctx context.Context) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Finalized, nil
}

func (c *Chain) BlockHeaderByHeight(ctx context.Context, height uint32) (chain.BlockHeader, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.headersByHeight[height]
	if !ok {
		return chain.BlockHeader{}, chain.ErrNotFound
	}
	return h, nil
}

// Sink is an in-memory netpacket.Sink that records every packet it is
// asked to send, optionally failing on demand.
type Sink struct {
	mu      sync.Mutex
	Sent    []netpacket.SingleCommitsNetworkPacket
	FailErr error
}

func (s *Sink) SendCommits(ctx context.Context, packet netpacket.SingleCommitsNetworkPacket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailErr != nil {
		return s.FailErr
	}
	s.Sent = append(s.Sent, packet)
	return nil
}

// ValidatorFixture is a generated validator plus the private key needed
// to sign commits on its behalf — convenient test scaffolding the specced
// types don't otherwise carry together.
type ValidatorFixture struct {
	Address [20]byte
	Private crypto.PrivateKey
	Public  bftapi.Validator
}

// NewValidatorFixture generates a fresh BLS keypair for address addr with
// the given BFT weight.
func NewValidatorFixture(addr [20]byte, weight int64) ValidatorFixture {
	sk, pk := crypto.GenerateKeyPair()
	raw, err := crypto.EncodePublicKey(pk)
	if err != nil {
		panic(err)
	}
	return ValidatorFixture{
		Address: addr,
		Private: sk,
		Public: bftapi.Validator{
			Address:   addr,
			BFTWeight: big.NewInt(weight),
			BLSKey:    raw,
		},
	}
}
