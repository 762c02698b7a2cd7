package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/dcz-bft/commitpool/bftapi"
	"github.com/dcz-bft/commitpool/config"
	"github.com/dcz-bft/commitpool/logger"
	"github.com/dcz-bft/commitpool/network"
	"github.com/dcz-bft/commitpool/pool"
	"github.com/dcz-bft/commitpool/store"
)

// Node wires a Pool to a synthetic demo chain, a TCP gossip transport and
// a nutsdb-backed store. It has no BFT voting engine behind it — that
// collaborator is out of scope here — so it drives its own chain tip
// forward on a timer and lets the pool's gossip job react to it, the way
// a real node's pool would react to the engine's progress.
type Node struct {
	nodeID int
	pool   *pool.Pool
	chain  *demoChain
	bft    *demoBFT
	sender *network.Sender
	recv   *network.Receiver
	store  *store.Store
	blockT time.Duration
}

// NewNode assembles a demo node from its on-disk configuration files.
func NewNode(keyFile, committeeFile, parametersFile, storePath, listenAddr string, nodeID int) (*Node, error) {
	committee, err := config.LoadCommittee(committeeFile)
	if err != nil {
		return nil, fmt.Errorf("load committee: %w", err)
	}
	params, err := config.LoadParameters(parametersFile)
	if err != nil {
		return nil, fmt.Errorf("load parameters: %w", err)
	}

	validators := make([]bftapi.Validator, 0, len(committee.Peers))
	for _, p := range committee.Peers {
		raw, err := hex.DecodeString(p.BLSKey)
		if err != nil {
			return nil, fmt.Errorf("decode peer bls key %q: %w", p.BLSKey, err)
		}
		if len(raw) != 48 {
			return nil, fmt.Errorf("peer bls key %q decodes to %d bytes, want 48", p.BLSKey, len(raw))
		}
		var key [48]byte
		copy(key[:], raw)

		digest := sha256.Sum256(raw)
		var addr [20]byte
		copy(addr[:], digest[:20])

		validators = append(validators, bftapi.Validator{Address: addr, BFTWeight: big.NewInt(1), BLSKey: key})
	}
	threshold := big.NewInt(int64(2*len(validators)/3 + 1))

	chain := newDemoChain()
	bft := newDemoBFT(validators, threshold)
	nutsDB := store.NewDefaultNutsDB(storePath)
	st := store.NewStore(nutsDB)

	if height, ok := st.LoadTipHeight(); ok {
		logger.Info.Printf("resuming past height %d\n", height)
	}

	cc := network.NewCodec()
	sender := network.NewSender(cc)
	sink := network.NewCommitSink(sender, committee.Addresses())

	p := pool.New(pool.Config{
		BFTAPI:            bft,
		Chain:             chain,
		Network:           sink,
		DB:                nutsDB,
		NetworkIdentifier: []byte(params.NetworkIdentifier),
		BlockTime:         params.BlockTime(),
	})

	recv := network.NewReceiver(listenAddr, cc)

	logger.Info.Printf("node %d booted with %d committee peers\n", nodeID, len(committee.Peers))
	_ = keyFile // demo nodes don't sign; a real node would load its key here.

	return &Node{
		nodeID: nodeID,
		pool:   p,
		chain:  chain,
		bft:    bft,
		sender: sender,
		recv:   recv,
		store:  st,
		blockT: params.BlockTime(),
	}, nil
}

// Run starts every background loop and blocks until ctx is cancelled:
// the TCP sender and receiver, the demo block producer, the pruning and
// gossip job, and a handler draining inbound commit batches into the
// pool.
func (n *Node) Run(ctx context.Context) {
	go n.sender.Run()
	go n.recv.Run()
	go n.produceBlocks(ctx)
	go n.handleInbound(ctx)
	n.pool.RunGossipJob(ctx)
}

// produceBlocks manufactures one demo header per block interval and
// persists the new tip so a restarted node can log where it left off.
func (n *Node) produceBlocks(ctx context.Context) {
	ticker := time.NewTicker(n.blockT)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			header := n.chain.advance([32]byte{})
			n.bft.observeHeight(header.Height)

			if err := n.store.SaveTipHeight(header.Height); err != nil {
				logger.Warn.Printf("node %d: failed to persist tip: %v\n", n.nodeID, err)
			}
		}
	}
}

// handleInbound decodes incoming CommitMessages batches and feeds each
// single commit through pool validation before admitting it.
func (n *Node) handleInbound(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch := <-n.recv.RecvChannel():
			for _, encoded := range batch.Commits {
				c, ok := pool.DecodeSingleCommit(encoded)
				if !ok {
					continue
				}
				valid, err := n.pool.ValidateCommit(ctx, c)
				if err != nil {
					logger.Warn.Printf("node %d: commit rejected: %v\n", n.nodeID, err)
					continue
				}
				if valid {
					n.pool.AddCommit(c, false)
				}
			}
		}
	}
}
