package pool

import (
	"time"

	"github.com/dcz-bft/commitpool/bftapi"
	"github.com/dcz-bft/commitpool/chain"
	"github.com/dcz-bft/commitpool/netpacket"
	"github.com/dcz-bft/commitpool/store"
)

// DefaultBlockTime matches the protocol's nominal block interval; the
// gossip job runs once per tick of this length.
const DefaultBlockTime = 10 * time.Second

// Config assembles the collaborators a Pool needs: the BFT parameter
// oracle, the chain header reader, the outbound gossip sink, and an
// optional persistence seam. DB is threaded through but never read or
// written by the pool itself — commits are always recoverable from peers,
// so persistence across restarts is not part of the specified behaviour.
type Config struct {
	BFTAPI            bftapi.API
	Chain             chain.Reader
	Network           netpacket.Sink
	DB                store.DB
	NetworkIdentifier []byte
	BlockTime         time.Duration
}

func (c Config) blockTime() time.Duration {
	if c.BlockTime <= 0 {
		return DefaultBlockTime
	}
	return c.BlockTime
}
