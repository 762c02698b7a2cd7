package pool

import (
	"sort"
	"sync"

	"github.com/dcz-bft/commitpool/logger"
)

// Pool holds the three commit indices (C1) and exposes the pool core
// operations (C4): addCommit, getCommitsByHeight, getAllCommits, and the
// commit validator (C3, validator.go). Every public method acquires mu for
// its full body, which is this Go realisation's stand-in for the spec's
// single-threaded event loop (§5).
type Pool struct {
	mu sync.Mutex

	cfg Config
	log logger.Component

	local       *CommitIndex
	nonGossiped *CommitIndex
	gossiped    *CommitIndex
}

// New constructs an empty Pool from its collaborators.
func New(cfg Config) *Pool {
	return &Pool{
		cfg:         cfg,
		log:         logger.Named("pool"),
		local:       NewCommitIndex(),
		nonGossiped: NewCommitIndex(),
		gossiped:    NewCommitIndex(),
	}
}

// AddCommit inserts c into the pool. If any of the three indices already
// contains c, this is a no-op (invariant 1: a given (height, validator)
// key lives in at most one index). local=true routes to the local index
// (invariant 2); otherwise the commit lands in nonGossiped — gossip
// promotion is exclusively the job's responsibility.
func (p *Pool) AddCommit(c SingleCommit, local bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addCommitLocked(c, local)
}

func (p *Pool) addCommitLocked(c SingleCommit, local bool) {
	if p.local.exists(c) || p.nonGossiped.exists(c) || p.gossiped.exists(c) {
		return
	}
	if local {
		p.local.add(c)
		return
	}
	p.nonGossiped.add(c)
}

// GetCommitsByHeight returns every commit known at height h, concatenating
// local, then nonGossiped, then gossiped, in that fixed order (§4.4).
func (p *Pool) GetCommitsByHeight(h uint32) []SingleCommit {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.getCommitsByHeightLocked(h)
}

func (p *Pool) getCommitsByHeightLocked(h uint32) []SingleCommit {
	out := p.local.getByHeight(h)
	out = append(out, p.nonGossiped.getByHeight(h)...)
	out = append(out, p.gossiped.getByHeight(h)...)
	return out
}

// GetAllCommits returns the union of all three indices in ascending
// height order.
func (p *Pool) GetAllCommits() []SingleCommit {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.getAllCommitsLocked()
}

func (p *Pool) getAllCommitsLocked() []SingleCommit {
	return mergeAscending(p.local, p.nonGossiped, p.gossiped)
}

func mergeAscending(indices ...*CommitIndex) []SingleCommit {
	heights := make(map[uint32]struct{})
	for _, idx := range indices {
		for _, c := range idx.getAll(ASC) {
			heights[c.Height] = struct{}{}
		}
	}
	ordered := sortedHeights(heights)
	out := make([]SingleCommit, 0)
	for _, h := range ordered {
		for _, idx := range indices {
			out = append(out, idx.getByHeight(h)...)
		}
	}
	return out
}

func sortedHeights(set map[uint32]struct{}) []uint32 {
	out := make([]uint32, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
