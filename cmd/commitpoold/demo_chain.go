package main

import (
	"context"
	"sync"
	"time"

	"github.com/dcz-bft/commitpool/chain"
)

// demoChain is a synthetic block source for the standalone demo binary.
// There is no BFT engine behind this node, so it manufactures one header
// per tick and reports it as the chain tip — just enough for
// RunGossipJob and ValidateCommit to have something to read.
type demoChain struct {
	mu      sync.Mutex
	headers map[uint32]chain.BlockHeader
	height  uint32
}

func newDemoChain() *demoChain {
	c := &demoChain{headers: make(map[uint32]chain.BlockHeader)}
	c.headers[0] = chain.BlockHeader{Height: 0}
	return c
}

// advance manufactures the next header and stores it as the new tip.
func (c *demoChain) advance(validatorsHash [32]byte) chain.BlockHeader {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.height++
	var id [32]byte
	id[0], id[1], id[2] = byte(c.height), byte(c.height>>8), byte(c.height>>16)
	h := chain.BlockHeader{
		ID:             id,
		Height:         c.height,
		Timestamp:      uint32(time.Now().Unix()),
		ValidatorsHash: validatorsHash,
	}
	c.headers[c.height] = h
	return h
}

func (c *demoChain) FinalizedHeight(ctx context.Context) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height, nil
}

func (c *demoChain) BlockHeaderByHeight(ctx context.Context, height uint32) (chain.BlockHeader, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.headers[height]
	if !ok {
		return chain.BlockHeader{}, chain.ErrNotFound
	}
	return h, nil
}
