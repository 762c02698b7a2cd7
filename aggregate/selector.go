package aggregate

import (
	"context"
	"errors"
	"math/big"

	"github.com/dcz-bft/commitpool/bftapi"
	"github.com/dcz-bft/commitpool/pool"
)

// commitSource is the subset of *pool.Pool the selector needs: the
// commits known at a given height. Kept narrow so selector tests can
// supply a fake without pulling in the whole pool.
type commitSource interface {
	GetCommitsByHeight(height uint32) []pool.SingleCommit
}

// Select implements the aggregate selector (C7, §4.7): it walks heights
// from the bound down to maxHeightCertified+1 and returns the aggregate
// of the first height whose signed weight reaches the certificate
// threshold, or the sentinel if none does.
func Select(ctx context.Context, api bftapi.API, source commitSource) (AggregateCommit, error) {
	heights, err := api.GetBFTHeights(ctx)
	if err != nil {
		return AggregateCommit{}, err
	}

	heightBound, err := heightBound(ctx, api, heights)
	if err != nil {
		return AggregateCommit{}, err
	}

	boundParams, err := api.GetBFTParameters(ctx, heightBound)
	if err != nil {
		return AggregateCommit{}, err
	}

	for h := heightBound; h > heights.MaxHeightCertified; h-- {
		commits := source.GetCommitsByHeight(h)
		if reachesThreshold(commits, boundParams) {
			return Single(ctx, api, commits)
		}
	}

	return Sentinel(heights.MaxHeightCertified), nil
}

// heightBound computes min(heightNextBFTParameters-1, maxHeightPrecommitted),
// treating "no next parameter change" as +infinity.
func heightBound(ctx context.Context, api bftapi.API, heights bftapi.BFTHeights) (uint32, error) {
	next, err := api.GetNextHeightBFTParameters(ctx, heights.MaxHeightCertified)
	if errors.Is(err, bftapi.ErrBFTParameterNotFound) {
		return heights.MaxHeightPrecommitted, nil
	}
	if err != nil {
		return 0, err
	}
	if next == 0 {
		return heights.MaxHeightPrecommitted, nil
	}
	ceiling := next - 1
	if ceiling < heights.MaxHeightPrecommitted {
		return ceiling, nil
	}
	return heights.MaxHeightPrecommitted, nil
}

func reachesThreshold(commits []pool.SingleCommit, params bftapi.BFTParameters) bool {
	present := make(map[[20]byte]struct{}, len(commits))
	for _, c := range commits {
		present[c.ValidatorAddress] = struct{}{}
	}
	sum := new(big.Int)
	for _, v := range params.Validators {
		if _, ok := present[v.Address]; ok {
			sum.Add(sum, v.BFTWeight)
		}
	}
	return sum.Cmp(params.CertificateThreshold) >= 0
}
