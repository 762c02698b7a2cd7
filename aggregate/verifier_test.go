package aggregate

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dcz-bft/commitpool/bftapi"
	"github.com/dcz-bft/commitpool/internal/testutil"
	"github.com/dcz-bft/commitpool/pool"
)

func buildVerifiableAggregate(t *testing.T, networkID []byte, height uint32, fixtures []testutil.ValidatorFixture, threshold int64, maxPrecommitted uint32) (AggregateCommit, *testutil.BFT, *headerOnlyChain) {
	header := sampleHeader(height)
	var validators []bftapi.Validator
	for _, fx := range fixtures {
		validators = append(validators, fx.Public)
	}
	api := testutil.NewBFT()
	api.Heights = bftapi.BFTHeights{MaxHeightCertified: height - 1, MaxHeightPrecommitted: maxPrecommitted}
	api.SetParametersFrom(0, bftapi.BFTParameters{Validators: validators, CertificateThreshold: big.NewInt(threshold)})

	var singles []pool.SingleCommit
	for _, fx := range fixtures {
		singles = append(singles, signCommit(t, fx, header, networkID))
	}
	ag, err := Single(context.Background(), api, singles)
	require.NoError(t, err)

	return ag, api, newHeaderOnlyChain(header)
}

func TestVerifyAcceptsAWellFormedAggregate(t *testing.T) {
	networkID := []byte("net-1")
	fixtures := []testutil.ValidatorFixture{
		testutil.NewValidatorFixture([20]byte{1}, 10),
		testutil.NewValidatorFixture([20]byte{2}, 10),
	}
	ag, api, reader := buildVerifiableAggregate(t, networkID, 50, fixtures, 15, 100)

	ok, err := Verify(context.Background(), api, reader, networkID, ag)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyRejectsSentinel(t *testing.T) {
	api := testutil.NewBFT()
	ok, err := Verify(context.Background(), api, nil, nil, Sentinel(10))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyRejectsHeightAtOrBelowMaxHeightCertified(t *testing.T) {
	networkID := []byte("net-1")
	fixtures := []testutil.ValidatorFixture{testutil.NewValidatorFixture([20]byte{1}, 10)}
	ag, api, reader := buildVerifiableAggregate(t, networkID, 50, fixtures, 5, 100)

	api.Heights = bftapi.BFTHeights{MaxHeightCertified: 50, MaxHeightPrecommitted: 100}
	ok, err := Verify(context.Background(), api, reader, networkID, ag)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyRejectsHeightAboveMaxHeightPrecommitted(t *testing.T) {
	networkID := []byte("net-1")
	fixtures := []testutil.ValidatorFixture{testutil.NewValidatorFixture([20]byte{1}, 10)}
	ag, api, reader := buildVerifiableAggregate(t, networkID, 50, fixtures, 5, 100)

	api.Heights = bftapi.BFTHeights{MaxHeightCertified: 10, MaxHeightPrecommitted: 49}
	ok, err := Verify(context.Background(), api, reader, networkID, ag)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyRejectsHeightPastNextParameterChange(t *testing.T) {
	networkID := []byte("net-1")
	fixtures := []testutil.ValidatorFixture{testutil.NewValidatorFixture([20]byte{1}, 10)}
	ag, api, reader := buildVerifiableAggregate(t, networkID, 50, fixtures, 5, 100)

	api.SetParametersFrom(50, bftapi.BFTParameters{Validators: []bftapi.Validator{fixtures[0].Public}, CertificateThreshold: big.NewInt(5)})
	ok, err := Verify(context.Background(), api, reader, networkID, ag)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyRejectsWeightBelowThreshold(t *testing.T) {
	networkID := []byte("net-1")
	fixtures := []testutil.ValidatorFixture{
		testutil.NewValidatorFixture([20]byte{1}, 10),
		testutil.NewValidatorFixture([20]byte{2}, 10),
	}
	ag, api, reader := buildVerifiableAggregate(t, networkID, 50, fixtures, 15, 100)

	// Raise the threshold past what the two signers carry together.
	api.SetParametersFrom(0, bftapi.BFTParameters{
		Validators:           []bftapi.Validator{fixtures[0].Public, fixtures[1].Public},
		CertificateThreshold: big.NewInt(1000),
	})
	ok, err := Verify(context.Background(), api, reader, networkID, ag)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	networkID := []byte("net-1")
	fixtures := []testutil.ValidatorFixture{
		testutil.NewValidatorFixture([20]byte{1}, 10),
		testutil.NewValidatorFixture([20]byte{2}, 10),
	}
	ag, api, reader := buildVerifiableAggregate(t, networkID, 50, fixtures, 15, 100)

	tampered := make([]byte, len(ag.CertificateSignature))
	copy(tampered, ag.CertificateSignature)
	tampered[0] ^= 0xFF
	ag.CertificateSignature = tampered

	ok, err := Verify(context.Background(), api, reader, networkID, ag)
	require.NoError(t, err)
	require.False(t, ok)
}
