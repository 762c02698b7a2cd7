package aggregate

import (
	"context"
	"sort"

	"github.com/prysmaticlabs/go-bitfield"

	"github.com/dcz-bft/commitpool/bftapi"
	"github.com/dcz-bft/commitpool/crypto"
	"github.com/dcz-bft/commitpool/pool"
)

// signerEntry pairs a contributing validator's BLS key with its signature,
// plus its index in the full lex-sorted validator set — the bit position
// the aggregation bitmap records it under.
type signerEntry struct {
	index     int
	keyRaw    [48]byte
	signature [96]byte
}

// Single aggregates a set of single commits at one height into an
// AggregateCommit (C6, §4.6). All of singles must share the same height;
// singles must be non-empty.
func Single(
	ctx context.Context,
	api bftapi.API,
	singles []pool.SingleCommit,
) (AggregateCommit, error) {
	if len(singles) == 0 {
		return AggregateCommit{}, ErrNoSingleCommit
	}
	height := singles[0].Height
	for _, c := range singles {
		if c.Height != height {
			return AggregateCommit{}, ErrMixedHeights
		}
	}

	params, err := api.GetBFTParameters(ctx, height)
	if err != nil {
		return AggregateCommit{}, err
	}

	// Lex-sort the full validator set by BLS key: bit position i in the
	// resulting bitmap always refers to validators[i] in this order.
	sortedValidators := append([]bftapi.Validator(nil), params.Validators...)
	sort.Slice(sortedValidators, func(i, j int) bool {
		return lessKey(sortedValidators[i].BLSKey, sortedValidators[j].BLSKey)
	})

	indexByAddress := make(map[[20]byte]int, len(sortedValidators))
	for i, v := range sortedValidators {
		indexByAddress[v.Address] = i
	}

	entries := make([]signerEntry, 0, len(singles))
	for _, c := range singles {
		idx, ok := indexByAddress[c.ValidatorAddress]
		if !ok {
			return AggregateCommit{}, ErrNoBLSKeyForValidator
		}
		if _, err := crypto.DecodePublicKey(sortedValidators[idx].BLSKey); err != nil {
			return AggregateCommit{}, err
		}
		entries = append(entries, signerEntry{
			index:     idx,
			keyRaw:    sortedValidators[idx].BLSKey,
			signature: c.CertificateSignature,
		})
	}

	// Step 3: sort the (blsKey, signature) pairs lexicographically by BLS
	// key ascending — the aggregation primitive requires this order.
	sort.Slice(entries, func(i, j int) bool {
		return lessKey(entries[i].keyRaw, entries[j].keyRaw)
	})

	sigs := make([][96]byte, len(entries))
	for i, e := range entries {
		sigs[i] = e.signature
	}
	aggregateSig, err := crypto.AggregateSignatures(sigs)
	if err != nil {
		return AggregateCommit{}, err
	}

	bits := bitfield.NewBitlist(uint64(len(sortedValidators)))
	for _, e := range entries {
		bits.SetBitAt(uint64(e.index), true)
	}

	return AggregateCommit{
		Height:               height,
		AggregationBits:      bits,
		CertificateSignature: aggregateSig,
	}, nil
}

func lessKey(a, b [48]byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
