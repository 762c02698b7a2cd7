// Package network adapts the commit pool's outbound gossip to the wire:
// a small gob-framed TCP transport carrying the one message this module
// ever sends, a batch of single commits.
package network

import (
	"encoding/gob"
	"io"

	"github.com/dcz-bft/commitpool/logger"
)

// Codec frames CommitMessages batches on a connection. Unlike a general
// multi-message transport, there is no leading type tag to dispatch on —
// the commit pool has exactly one wire message, so the codec only ever
// encodes or decodes that.
type Codec struct {
	encoder *gob.Encoder
	decoder *gob.Decoder
}

// NewCodec builds an unbound codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Bind attaches the codec to a connection. Bind once per connection.
func (cc *Codec) Bind(conn io.ReadWriter) *Codec {
	return &Codec{
		encoder: gob.NewEncoder(conn),
		decoder: gob.NewDecoder(conn),
	}
}

func (cc *Codec) Write(msg *CommitMessages) error {
	if err := cc.encoder.Encode(msg); err != nil {
		logger.Error.Printf("codec encode commit batch error: %v\n", err)
		return err
	}
	return nil
}

func (cc *Codec) Read() (*CommitMessages, error) {
	var msg CommitMessages
	if err := cc.decoder.Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
