package aggregate

import (
	"context"
	"errors"
	"math/big"

	"github.com/dcz-bft/commitpool/bftapi"
	"github.com/dcz-bft/commitpool/certificate"
	"github.com/dcz-bft/commitpool/chain"
	"github.com/dcz-bft/commitpool/crypto"
)

// Verify implements verifyAggregateCommit (C7, §4.7). It never returns an
// error for a malformed-but-benign aggregate; it returns (false, nil) for
// every specified rejection condition and only surfaces errors from the
// oracle/chain reads it depends on.
func Verify(
	ctx context.Context,
	api bftapi.API,
	reader chain.Reader,
	networkIdentifier []byte,
	ag AggregateCommit,
) (bool, error) {
	if ag.IsSentinel() {
		return false, nil
	}

	heights, err := api.GetBFTHeights(ctx)
	if err != nil {
		return false, err
	}
	if ag.Height <= heights.MaxHeightCertified {
		return false, nil
	}
	if ag.Height > heights.MaxHeightPrecommitted {
		return false, nil
	}

	next, err := api.GetNextHeightBFTParameters(ctx, heights.MaxHeightCertified)
	if err != nil && !errors.Is(err, bftapi.ErrBFTParameterNotFound) {
		return false, err
	}
	if err == nil && next != 0 && ag.Height > next-1 {
		return false, nil
	}

	header, err := reader.BlockHeaderByHeight(ctx, ag.Height)
	if err != nil {
		return false, err
	}
	cert := certificate.FromBlockHeader(header)

	params, err := api.GetBFTParameters(ctx, ag.Height)
	if err != nil {
		return false, err
	}
	sortedValidators := append([]bftapi.Validator(nil), params.Validators...)
	sortValidatorsByBLSKey(sortedValidators)

	if uint64(len(sortedValidators)) != ag.AggregationBits.Len() {
		return false, nil
	}

	var keys []crypto.PublicKey
	weight := new(big.Int)
	for _, idx := range ag.AggregationBits.BitIndices() {
		if idx >= len(sortedValidators) {
			return false, nil
		}
		v := sortedValidators[idx]
		key, err := crypto.DecodePublicKey(v.BLSKey)
		if err != nil {
			return false, err
		}
		keys = append(keys, key)
		weight.Add(weight, v.BFTWeight)
	}

	if weight.Cmp(params.CertificateThreshold) < 0 {
		return false, nil
	}

	aggregatedKey := crypto.AggregatePublicKeys(keys)
	if err := certificate.VerifyAggregateCertificateSignature(aggregatedKey, networkIdentifier, cert, ag.CertificateSignature); err != nil {
		return false, nil
	}

	return true, nil
}

func sortValidatorsByBLSKey(validators []bftapi.Validator) {
	for i := 1; i < len(validators); i++ {
		for j := i; j > 0 && lessKey(validators[j].BLSKey, validators[j-1].BLSKey); j-- {
			validators[j], validators[j-1] = validators[j-1], validators[j]
		}
	}
}
