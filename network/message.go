package network

import (
	"context"

	"github.com/dcz-bft/commitpool/netpacket"
)

// CommitMessages is the wire envelope for a gossip job's outbound batch
// of single commits — the only message this module's transport ever
// carries, which is why Codec frames it directly instead of through a
// type registry.
type CommitMessages struct {
	Event   string
	Commits [][]byte
}

// CommitSink adapts the TCP Sender to the commit pool's netpacket.Sink
// capability, broadcasting a commit batch to a fixed set of peer
// addresses.
type CommitSink struct {
	sender *Sender
	peers  []string
}

// NewCommitSink wires a Sender to a static peer address list.
func NewCommitSink(sender *Sender, peers []string) *CommitSink {
	return &CommitSink{sender: sender, peers: peers}
}

// SendCommits implements netpacket.Sink by broadcasting a CommitMessages
// envelope, tagged with netpacket.NETWORK_EVENT_COMMIT_MESSAGES, to every
// configured peer.
func (s *CommitSink) SendCommits(_ context.Context, packet netpacket.SingleCommitsNetworkPacket) error {
	s.sender.Send(&NetMessage{
		Msg:     &CommitMessages{Event: netpacket.NETWORK_EVENT_COMMIT_MESSAGES, Commits: packet.Commits},
		Address: s.peers,
	})
	return nil
}
