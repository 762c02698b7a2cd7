package aggregate

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dcz-bft/commitpool/bftapi"
	"github.com/dcz-bft/commitpool/certificate"
	"github.com/dcz-bft/commitpool/chain"
	"github.com/dcz-bft/commitpool/internal/testutil"
	"github.com/dcz-bft/commitpool/pool"
)

func sampleHeader(height uint32) chain.BlockHeader {
	var id, root, vh [32]byte
	id[0] = byte(height)
	return chain.BlockHeader{ID: id, Height: height, Timestamp: height * 10, StateRoot: root, ValidatorsHash: vh}
}

func signCommit(t *testing.T, fx testutil.ValidatorFixture, header chain.BlockHeader, networkID []byte) pool.SingleCommit {
	cert := certificate.FromBlockHeader(header)
	sig, err := certificate.Sign(fx.Private, networkID, cert)
	require.NoError(t, err)
	return pool.SingleCommit{
		BlockID:              header.ID,
		Height:               header.Height,
		ValidatorAddress:     fx.Address,
		CertificateSignature: sig,
	}
}

func TestSingleAggregatesInLexicographicBLSKeyOrder(t *testing.T) {
	networkID := []byte("net-1")
	header := sampleHeader(100)

	fixtures := []testutil.ValidatorFixture{
		testutil.NewValidatorFixture([20]byte{1}, 10),
		testutil.NewValidatorFixture([20]byte{2}, 10),
		testutil.NewValidatorFixture([20]byte{3}, 10),
	}
	var validators []bftapi.Validator
	for _, fx := range fixtures {
		validators = append(validators, fx.Public)
	}
	api := testutil.NewBFT()
	api.SetParametersFrom(0, bftapi.BFTParameters{Validators: validators, CertificateThreshold: big.NewInt(20)})

	var singles []pool.SingleCommit
	for _, fx := range fixtures {
		singles = append(singles, signCommit(t, fx, header, networkID))
	}

	ag, err := Single(context.Background(), api, singles)
	require.NoError(t, err)
	require.Equal(t, header.Height, ag.Height)
	require.Equal(t, uint64(len(fixtures)), ag.AggregationBits.Len())
	require.False(t, ag.IsSentinel())

	ok, err := Verify(context.Background(), api, newHeaderOnlyChain(header), networkID, withPrecommitted(ag, api, 200))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSingleWithValidatorMissingFromParametersFails(t *testing.T) {
	networkID := []byte("net-1")
	header := sampleHeader(50)

	known := testutil.NewValidatorFixture([20]byte{1}, 10)
	unknown := testutil.NewValidatorFixture([20]byte{9}, 10)

	api := testutil.NewBFT()
	api.SetParametersFrom(0, bftapi.BFTParameters{
		Validators:           []bftapi.Validator{known.Public},
		CertificateThreshold: big.NewInt(10),
	})

	singles := []pool.SingleCommit{signCommit(t, unknown, header, networkID)}
	_, err := Single(context.Background(), api, singles)
	require.ErrorIs(t, err, ErrNoBLSKeyForValidator)
}

func TestSingleRejectsMixedHeights(t *testing.T) {
	networkID := []byte("net-1")
	fx := testutil.NewValidatorFixture([20]byte{1}, 10)
	api := testutil.NewBFT()
	api.SetParametersFrom(0, bftapi.BFTParameters{Validators: []bftapi.Validator{fx.Public}, CertificateThreshold: big.NewInt(10)})

	a := signCommit(t, fx, sampleHeader(1), networkID)
	b := signCommit(t, fx, sampleHeader(2), networkID)
	_, err := Single(context.Background(), api, []pool.SingleCommit{a, b})
	require.ErrorIs(t, err, ErrMixedHeights)
}

func TestSingleRejectsEmptyInput(t *testing.T) {
	api := testutil.NewBFT()
	_, err := Single(context.Background(), api, nil)
	require.ErrorIs(t, err, ErrNoSingleCommit)
}

func TestAggregationOrderOfSinglesDoesNotAffectResult(t *testing.T) {
	networkID := []byte("net-1")
	header := sampleHeader(77)

	fixtures := []testutil.ValidatorFixture{
		testutil.NewValidatorFixture([20]byte{1}, 10),
		testutil.NewValidatorFixture([20]byte{2}, 10),
		testutil.NewValidatorFixture([20]byte{3}, 10),
	}
	var validators []bftapi.Validator
	for _, fx := range fixtures {
		validators = append(validators, fx.Public)
	}
	api := testutil.NewBFT()
	api.SetParametersFrom(0, bftapi.BFTParameters{Validators: validators, CertificateThreshold: big.NewInt(10)})

	forward := []pool.SingleCommit{
		signCommit(t, fixtures[0], header, networkID),
		signCommit(t, fixtures[1], header, networkID),
		signCommit(t, fixtures[2], header, networkID),
	}
	reversed := []pool.SingleCommit{forward[2], forward[1], forward[0]}

	agA, err := Single(context.Background(), api, forward)
	require.NoError(t, err)
	agB, err := Single(context.Background(), api, reversed)
	require.NoError(t, err)

	require.Equal(t, agA.CertificateSignature, agB.CertificateSignature)
	require.Equal(t, agA.AggregationBits.Bytes(), agB.AggregationBits.Bytes())
}

// headerOnlyChain is a minimal chain.Reader stub used by the verifier
// tests in this package that need a single fixed header.
type headerOnlyChain struct {
	header chain.BlockHeader
}

func newHeaderOnlyChain(h chain.BlockHeader) *headerOnlyChain {
	return &headerOnlyChain{header: h}
}

func (c *headerOnlyChain) FinalizedHeight(ctx context.Context) (uint32, error) {
	return c.header.Height, nil
}

func (c *headerOnlyChain) BlockHeaderByHeight(ctx context.Context, height uint32) (chain.BlockHeader, error) {
	if height != c.header.Height {
		return chain.BlockHeader{}, chain.ErrNotFound
	}
	return c.header, nil
}

// withPrecommitted sets api's heights so Verify's window checks pass for
// ag and returns ag unchanged. It mutates api in place: the same fake that
// was used to build ag.
func withPrecommitted(ag AggregateCommit, api *testutil.BFT, maxPrecommitted uint32) AggregateCommit {
	api.Heights = bftapi.BFTHeights{MaxHeightCertified: 0, MaxHeightPrecommitted: maxPrecommitted}
	return ag
}
