package pool

import (
	"context"
	"errors"

	"github.com/dcz-bft/commitpool/bftapi"
	"github.com/dcz-bft/commitpool/certificate"
	"github.com/dcz-bft/commitpool/chain"
	"github.com/dcz-bft/commitpool/crypto"
)

// ValidateCommit implements the commit validator (C3, §4.3). It returns
// (false, nil) for every in-protocol rejection — block mismatch, already
// known, out of window. The two errors that indicate malformed peer input
// the transport layer should score are ErrCommitValidatorNotActive and
// ErrCommitSignatureInvalid; any other error is a failed chain or oracle
// read, or a validator BLS key that does not decode.
func (p *Pool) ValidateCommit(ctx context.Context, c SingleCommit) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	header, err := p.cfg.Chain.BlockHeaderByHeight(ctx, c.Height)
	if errors.Is(err, chain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if header.ID != c.BlockID {
		return false, nil
	}

	alreadyKnown := p.gossiped.exists(c) || p.nonGossiped.exists(c) || p.local.exists(c)
	if alreadyKnown {
		return false, nil
	}

	removalHeight, err := p.maxRemovalHeight(ctx)
	if err != nil {
		return false, err
	}
	if c.Height <= removalHeight {
		return false, nil
	}

	admissible, err := p.isAdmissible(ctx, c.Height)
	if err != nil {
		return false, err
	}
	if !admissible {
		return false, nil
	}

	params, err := p.cfg.BFTAPI.GetBFTParameters(ctx, c.Height)
	if err != nil {
		return false, err
	}
	validator, ok := params.FindValidator(c.ValidatorAddress)
	if !ok {
		return false, ErrCommitValidatorNotActive
	}

	blsKey, err := crypto.DecodePublicKey(validator.BLSKey)
	if err != nil {
		return false, err
	}

	cert := certificate.FromBlockHeader(header)
	if err := certificate.Verify(blsKey, p.cfg.NetworkIdentifier, cert, c.CertificateSignature); err != nil {
		return false, ErrCommitSignatureInvalid
	}

	return true, nil
}

// isAdmissible implements §4.3(d): a commit is admissible either because
// its height falls inside the attention window bounded by the BFT
// heights, or because the validator set is about to change right after
// this height, which makes the commit structurally important regardless
// of the window.
func (p *Pool) isAdmissible(ctx context.Context, height uint32) (bool, error) {
	heights, err := p.cfg.BFTAPI.GetBFTHeights(ctx)
	if err != nil {
		return false, err
	}
	if inWindow(height, heights) {
		return true, nil
	}
	return p.cfg.BFTAPI.ExistBFTParameters(ctx, height+1)
}

func inWindow(height uint32, heights bftapi.BFTHeights) bool {
	lower := int64(heights.MaxHeightCertified) - int64(COMMIT_RANGE_STORED)
	return int64(height) >= lower && height <= heights.MaxHeightPrecommitted
}

// maxRemovalHeight implements §4.5 step 1: the aggregate commit height of
// the block header at the chain's finalized tip. Commits at or below this
// height are no longer useful to anyone.
func (p *Pool) maxRemovalHeight(ctx context.Context) (uint32, error) {
	finalizedHeight, err := p.cfg.Chain.FinalizedHeight(ctx)
	if err != nil {
		return 0, err
	}
	header, err := p.cfg.Chain.BlockHeaderByHeight(ctx, finalizedHeight)
	if err != nil {
		return 0, err
	}
	return header.AggregateCommit.Height, nil
}
