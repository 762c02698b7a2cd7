// Package netpacket defines the single outbound message type the commit
// pool produces: a batch of encoded single commits broadcast to peers.
package netpacket

import "context"

// NETWORK_EVENT_COMMIT_MESSAGES is the event name a Sink implementation is
// expected to tag outbound commit batches with.
const NETWORK_EVENT_COMMIT_MESSAGES = "commitMessages"

// SingleCommitsNetworkPacket carries the canonical encoding of a batch of
// single commits, as produced by the gossip job's selection step.
type SingleCommitsNetworkPacket struct {
	Commits [][]byte
}

// Sink is the write-only network capability the pool depends on. One
// packet is sent per gossip job tick; failures are logged and swallowed,
// never retried by the sink itself (§4.5 step 6).
type Sink interface {
	SendCommits(ctx context.Context, packet SingleCommitsNetworkPacket) error
}
