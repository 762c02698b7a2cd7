package pool

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dcz-bft/commitpool/netpacket"
)

// RunGossipJob starts the periodic pruning and gossip job (§4.5) on a
// ticker of the configured block time. It runs until ctx is cancelled,
// mirroring the teacher's one-goroutine-per-subsystem Run() convention
// (network.Sender.Run, network.Receiver.Run).
func (p *Pool) RunGossipJob(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.blockTime())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.RunJobOnce(ctx); err != nil {
				p.log.Warnf("job tick aborted: %v", err)
			}
		}
	}
}

// RunJobOnce executes one tick of the pruning and gossip job. All index
// mutations are staged on scratch copies and only swapped into the live
// Pool once every step through selection has succeeded — a raised error
// leaves p's state exactly as it was before the call (§5 "Cancellation /
// failure"). The network send is the one step that runs after the swap
// and is fire-and-forget: its failure is logged and never rolled back.
func (p *Pool) RunJobOnce(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	local := p.local.clone()
	nonGossiped := p.nonGossiped.clone()
	gossiped := p.gossiped.clone()

	// Step 1: removal height.
	removalHeight, err := p.maxRemovalHeight(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrJobAborted, err)
	}

	// Step 2: evict stale commits from all three indices.
	local.deleteAtOrBelow(removalHeight)
	nonGossiped.deleteAtOrBelow(removalHeight)
	gossiped.deleteAtOrBelow(removalHeight)

	// Step 3: re-evaluate admissibility of surviving nonGossiped commits.
	survivors, err := p.filterAdmissible(ctx, nonGossiped.getAll(ASC))
	if err != nil {
		return err
	}

	// preGossipSnapshot is "nonGossiped as it was before Step 4", used by
	// selection phase 3 below. Step 3 runs before Step 4, so that's the
	// post-filter survivor set, not the raw pre-filter snapshot — a
	// commit the filter just dropped must not still be eligible for
	// broadcast in Step 5, or it'd be both dropped and gossiped.
	preGossipSnapshot := append([]SingleCommit(nil), survivors...)
	sort.Slice(preGossipSnapshot, func(i, j int) bool {
		return preGossipSnapshot[i].Height > preGossipSnapshot[j].Height
	})

	// Step 4: promote every surviving nonGossiped commit into gossiped,
	// regardless of whether it ends up selected for broadcast below. This
	// preserves the teacher protocol's behaviour literally, per the Open
	// Question in §9: an un-broadcast commit still becomes "gossiped".
	for _, c := range survivors {
		gossiped.add(c)
	}
	nonGossiped = NewCommitIndex()

	// Step 5: select the bounded gossip batch.
	validators, err := p.cfg.BFTAPI.GetCurrentValidators(ctx)
	if err != nil {
		return err
	}
	bftHeights, err := p.cfg.BFTAPI.GetBFTHeights(ctx)
	if err != nil {
		return err
	}
	batchCap := 2 * len(validators)
	selected := selectGossipBatch(batchCap, bftHeights.MaxHeightPrecommitted, local, gossiped, preGossipSnapshot)

	// Commit: swap the staged indices into the live pool.
	p.local = local
	p.nonGossiped = nonGossiped
	p.gossiped = gossiped

	// Step 6: broadcast. Failure is logged and dropped, not rolled back.
	if p.cfg.Network != nil {
		packet := encodePacket(selected)
		if err := p.cfg.Network.SendCommits(ctx, packet); err != nil {
			p.log.Warnf("commit broadcast failed: %v", err)
		}
	}

	return nil
}

// filterAdmissible re-evaluates §4.3(d) for each commit, dropping any that
// no longer qualify now that BFT parameters may have evolved underneath
// them.
func (p *Pool) filterAdmissible(ctx context.Context, commits []SingleCommit) ([]SingleCommit, error) {
	out := make([]SingleCommit, 0, len(commits))
	for _, c := range commits {
		admissible, err := p.isAdmissible(ctx, c.Height)
		if err != nil {
			return nil, err
		}
		if admissible {
			out = append(out, c)
		}
	}
	return out, nil
}

// selectGossipBatch implements §4.5 step 5. Phase 1 takes commits older
// than maxHeightPrecommitted-W from the pool's post-promotion view
// (local+gossiped, ascending by height); phase 2 takes all of local
// descending by height; phase 3 takes the post-filter, pre-promotion
// nonGossiped survivor set descending by height. Selection stops once
// cap commits have been chosen; duplicates across phases are suppressed
// by identity.
func selectGossipBatch(batchCap int, maxHeightPrecommitted uint32, local, gossiped *CommitIndex, preGossipSnapshotDSC []SingleCommit) []SingleCommit {
	selected := make([]SingleCommit, 0, batchCap)
	seen := make(map[commitKey]struct{}, batchCap)

	add := func(c SingleCommit) bool {
		if _, ok := seen[c.Key()]; ok {
			return len(selected) < batchCap
		}
		if len(selected) >= batchCap {
			return false
		}
		seen[c.Key()] = struct{}{}
		selected = append(selected, c)
		return len(selected) < batchCap
	}

	threshold := int64(maxHeightPrecommitted) - int64(COMMIT_RANGE_STORED)

	for _, c := range mergeAscending(local, gossiped) {
		if int64(c.Height) >= threshold {
			continue
		}
		if !add(c) {
			return selected
		}
	}
	for _, c := range local.getAll(DSC) {
		if !add(c) {
			return selected
		}
	}
	for _, c := range preGossipSnapshotDSC {
		if !add(c) {
			return selected
		}
	}
	return selected
}

func encodePacket(commits []SingleCommit) netpacket.SingleCommitsNetworkPacket {
	encoded := make([][]byte, len(commits))
	for i, c := range commits {
		encoded[i] = EncodeSingleCommit(c)
	}
	return netpacket.SingleCommitsNetworkPacket{Commits: encoded}
}
