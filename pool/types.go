// Package pool implements the commit pool: the three commit indices (C1),
// the commit validator (C3), the pool core (C4) and the pruning and gossip
// job (C5).
package pool

// SingleCommit is one validator's BLS attestation over a block certificate.
// It is immutable once constructed; equality compares every field.
type SingleCommit struct {
	BlockID              [32]byte
	Height               uint32
	ValidatorAddress     [20]byte
	CertificateSignature [96]byte
}

// Key returns the (height, validatorAddress) uniqueness key for this
// commit.
func (c SingleCommit) Key() commitKey {
	return commitKey{height: c.Height, validator: c.ValidatorAddress}
}

type commitKey struct {
	height    uint32
	validator [20]byte
}

// Order selects ascending or descending iteration for CommitIndex.getAll.
type Order int

const (
	ASC Order = iota
	DSC
)

// COMMIT_RANGE_STORED bounds how many heights below maxHeightCertified a
// commit may still be admissible (§4.3(d)).
const COMMIT_RANGE_STORED uint32 = 50
