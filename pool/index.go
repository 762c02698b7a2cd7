package pool

import "sort"

// CommitIndex is the in-memory container keyed by height described in
// §4.1 (C1). Three independent instances make up a Pool's state: local,
// nonGossiped and gossiped.
type CommitIndex struct {
	byHeight map[uint32][]SingleCommit
	known    map[commitKey]struct{}
}

// NewCommitIndex returns an empty index.
func NewCommitIndex() *CommitIndex {
	return &CommitIndex{
		byHeight: make(map[uint32][]SingleCommit),
		known:    make(map[commitKey]struct{}),
	}
}

// clone makes a deep-enough copy for the job's stage-then-commit rollback
// scheme: mutating the clone never affects the original until swapped in.
func (idx *CommitIndex) clone() *CommitIndex {
	out := NewCommitIndex()
	for h, list := range idx.byHeight {
		out.byHeight[h] = append([]SingleCommit(nil), list...)
	}
	for k := range idx.known {
		out.known[k] = struct{}{}
	}
	return out
}

// add inserts c if (height, validatorAddress) is not already present.
// Duplicate adds are a no-op — callers never need to dedupe themselves.
func (idx *CommitIndex) add(c SingleCommit) {
	if _, ok := idx.known[c.Key()]; ok {
		return
	}
	idx.known[c.Key()] = struct{}{}
	idx.byHeight[c.Height] = append(idx.byHeight[c.Height], c)
}

// exists reports whether a commit with c's uniqueness key is present.
func (idx *CommitIndex) exists(c SingleCommit) bool {
	_, ok := idx.known[c.Key()]
	return ok
}

// deleteSingle removes exactly one commit by its uniqueness key.
func (idx *CommitIndex) deleteSingle(c SingleCommit) {
	if _, ok := idx.known[c.Key()]; !ok {
		return
	}
	delete(idx.known, c.Key())
	list := idx.byHeight[c.Height]
	for i, have := range list {
		if have.Key() == c.Key() {
			idx.byHeight[c.Height] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(idx.byHeight[c.Height]) == 0 {
		delete(idx.byHeight, c.Height)
	}
}

// deleteByHeight removes every commit stored at height h.
func (idx *CommitIndex) deleteByHeight(h uint32) {
	for _, c := range idx.byHeight[h] {
		delete(idx.known, c.Key())
	}
	delete(idx.byHeight, h)
}

// deleteAtOrBelow removes every commit with height <= maxHeight, which is
// the eviction rule the pruning job applies (§4.5 step 2).
func (idx *CommitIndex) deleteAtOrBelow(maxHeight uint32) {
	for h := range idx.byHeight {
		if h <= maxHeight {
			idx.deleteByHeight(h)
		}
	}
}

// getByHeight returns the commits at height h, preserving insertion order.
func (idx *CommitIndex) getByHeight(h uint32) []SingleCommit {
	list := idx.byHeight[h]
	if len(list) == 0 {
		return nil
	}
	return append([]SingleCommit(nil), list...)
}

// getAll returns every commit in this index ordered strictly by height,
// with insertion order preserved within a height.
func (idx *CommitIndex) getAll(order Order) []SingleCommit {
	heights := make([]uint32, 0, len(idx.byHeight))
	for h := range idx.byHeight {
		heights = append(heights, h)
	}
	if order == ASC {
		sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })
	} else {
		sort.Slice(heights, func(i, j int) bool { return heights[i] > heights[j] })
	}
	out := make([]SingleCommit, 0, len(idx.known))
	for _, h := range heights {
		out = append(out, idx.byHeight[h]...)
	}
	return out
}

// len reports the total number of commits held by the index.
func (idx *CommitIndex) len() int {
	return len(idx.known)
}
