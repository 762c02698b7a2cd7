package pool

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dcz-bft/commitpool/bftapi"
	"github.com/dcz-bft/commitpool/chain"
	"github.com/dcz-bft/commitpool/internal/testutil"
)

func newJobTestPool(t *testing.T) (*Pool, *testutil.BFT, *testutil.Chain, *testutil.Sink) {
	api := testutil.NewBFT()
	chainReader := testutil.NewChain()
	sink := &testutil.Sink{}
	p := New(Config{
		BFTAPI:            api,
		Chain:             chainReader,
		Network:           sink,
		NetworkIdentifier: networkID,
	})
	return p, api, chainReader, sink
}

func TestRunJobOnceSendsAnEmptyPacketWhenThePoolIsEmpty(t *testing.T) {
	p, api, chainReader, sink := newJobTestPool(t)
	chainReader.SetHeader(chain.BlockHeader{Height: 0})
	api.Heights = bftapi.BFTHeights{MaxHeightCertified: 50, MaxHeightPrecommitted: 100}
	api.SetParametersFrom(0, bftapi.BFTParameters{Validators: nil, CertificateThreshold: big.NewInt(0)})

	require.NoError(t, p.RunJobOnce(context.Background()))
	require.Len(t, sink.Sent, 1)
	require.Empty(t, sink.Sent[0].Commits)
}

func TestRunJobOnceEvictsCommitsAtOrBelowRemovalHeight(t *testing.T) {
	p, api, chainReader, _ := newJobTestPool(t)
	chainReader.Finalized = 200
	chainReader.SetHeader(chain.BlockHeader{Height: 200, AggregateCommit: chain.AggregateCommitRef{Height: 90}})
	api.Heights = bftapi.BFTHeights{MaxHeightCertified: 90, MaxHeightPrecommitted: 300}
	api.SetParametersFrom(0, bftapi.BFTParameters{Validators: nil, CertificateThreshold: big.NewInt(0)})

	stale := commitAt(80, 1)
	fresh := commitAt(95, 2)
	p.AddCommit(stale, true)
	p.AddCommit(fresh, true)

	require.NoError(t, p.RunJobOnce(context.Background()))

	require.False(t, p.local.exists(stale))
	require.True(t, p.local.exists(fresh))
}

func TestRunJobOncePromotesSurvivingNonGossipedCommitsToGossiped(t *testing.T) {
	p, api, chainReader, _ := newJobTestPool(t)
	chainReader.SetHeader(chain.BlockHeader{Height: 0})
	api.Heights = bftapi.BFTHeights{MaxHeightCertified: 50, MaxHeightPrecommitted: 150}
	api.SetParametersFrom(0, bftapi.BFTParameters{Validators: nil, CertificateThreshold: big.NewInt(0)})

	c := commitAt(100, 1)
	p.AddCommit(c, false)
	require.True(t, p.nonGossiped.exists(c))

	require.NoError(t, p.RunJobOnce(context.Background()))

	require.False(t, p.nonGossiped.exists(c))
	require.True(t, p.gossiped.exists(c))
}

func TestRunJobOnceDropsNoLongerAdmissibleNonGossipedCommits(t *testing.T) {
	p, api, chainReader, sink := newJobTestPool(t)
	chainReader.SetHeader(chain.BlockHeader{Height: 0})
	// Certified height advances far enough that the commit's height falls
	// outside the window, and no parameter change is scheduled right
	// after it.
	api.Heights = bftapi.BFTHeights{MaxHeightCertified: 500, MaxHeightPrecommitted: 600}
	api.SetParametersFrom(0, bftapi.BFTParameters{Validators: nil, CertificateThreshold: big.NewInt(0)})

	c := commitAt(100, 1)
	p.AddCommit(c, false)

	require.NoError(t, p.RunJobOnce(context.Background()))

	require.False(t, p.nonGossiped.exists(c))
	require.False(t, p.gossiped.exists(c))

	// A commit dropped by the admissibility filter must never also be
	// broadcast — it can't be simultaneously gossiped and dropped.
	require.Len(t, sink.Sent, 1)
	require.NotContains(t, sink.Sent[0].Commits, EncodeSingleCommit(c))
}

func TestRunJobOnceCapsGossipBatchAtTwiceValidatorCount(t *testing.T) {
	p, api, chainReader, sink := newJobTestPool(t)
	chainReader.SetHeader(chain.BlockHeader{Height: 0})
	api.Heights = bftapi.BFTHeights{MaxHeightCertified: 0, MaxHeightPrecommitted: 1000}

	validators := []bftapi.Validator{
		{Address: [20]byte{1}, BFTWeight: big.NewInt(1)},
		{Address: [20]byte{2}, BFTWeight: big.NewInt(1)},
	}
	api.SetParametersFrom(0, bftapi.BFTParameters{Validators: validators, CertificateThreshold: big.NewInt(0)})

	// 10 local commits, far more than the cap of 2*len(validators)=4.
	for i := uint32(0); i < 10; i++ {
		p.AddCommit(commitAt(100+i, byte(i)), true)
	}

	require.NoError(t, p.RunJobOnce(context.Background()))

	require.Len(t, sink.Sent, 1)
	require.LessOrEqual(t, len(sink.Sent[0].Commits), 4)
}

func TestRunJobOnceRollsBackOnFailureBeforeSwap(t *testing.T) {
	p, api, chainReader, _ := newJobTestPool(t)
	chainReader.Finalized = 0
	// No header stored at height 0: FinalizedHeight resolves to 0 but
	// BlockHeaderByHeight(0) returns chain.ErrNotFound, aborting the job
	// in maxRemovalHeight before any index mutation.
	api.Heights = bftapi.BFTHeights{MaxHeightCertified: 50, MaxHeightPrecommitted: 150}

	c := commitAt(100, 1)
	p.AddCommit(c, true)

	err := p.RunJobOnce(context.Background())
	require.ErrorIs(t, err, ErrJobAborted)
	require.True(t, p.local.exists(c))
}

func TestRunJobOnceDoesNotRollBackOnNetworkSendFailure(t *testing.T) {
	p, api, chainReader, sink := newJobTestPool(t)
	chainReader.SetHeader(chain.BlockHeader{Height: 0})
	api.Heights = bftapi.BFTHeights{MaxHeightCertified: 50, MaxHeightPrecommitted: 150}
	api.SetParametersFrom(0, bftapi.BFTParameters{Validators: nil, CertificateThreshold: big.NewInt(0)})
	sink.FailErr = errors.New("send failed")

	c := commitAt(100, 1)
	p.AddCommit(c, false)

	require.NoError(t, p.RunJobOnce(context.Background()))
	require.True(t, p.gossiped.exists(c))
	require.Empty(t, sink.Sent)
}
