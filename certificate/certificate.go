// Package certificate implements the deterministic certificate codec (C2):
// projecting a block header into the five-field Certificate structure that
// validators sign, and the fixed-layout encoding that signing and
// verification operate on.
package certificate

import (
	"encoding/binary"

	"github.com/dcz-bft/commitpool/chain"
)

// MessageTagCertificate is the 8-byte domain separation tag mixed into
// every certificate signature, matching the protocol constant.
var MessageTagCertificate = [8]byte{'L', 'S', 'K', '_', 'C', 'E', '_', 0}

// Certificate is the signing payload derived from a block header.
type Certificate struct {
	BlockID        [32]byte
	Height         uint32
	Timestamp      uint32
	StateRoot      [32]byte
	ValidatorsHash [32]byte
}

// FromBlockHeader projects the five certificate fields out of a header.
func FromBlockHeader(h chain.BlockHeader) Certificate {
	return Certificate{
		BlockID:        h.ID,
		Height:         h.Height,
		Timestamp:      h.Timestamp,
		StateRoot:      h.StateRoot,
		ValidatorsHash: h.ValidatorsHash,
	}
}

// Encode produces the canonical byte layout used as the BLS signing
// payload: the five fields concatenated at fixed width, integers
// big-endian. It is not a TLV encoding: no field carries a type tag or a
// length prefix. The field
// order and width are fixed by the protocol and must not change: any
// alteration invalidates every previously produced signature.
func (c Certificate) Encode() []byte {
	buf := make([]byte, 0, 32+4+4+32+32)
	buf = append(buf, c.BlockID[:]...)
	buf = appendUint32(buf, c.Height)
	buf = appendUint32(buf, c.Timestamp)
	buf = append(buf, c.StateRoot[:]...)
	buf = append(buf, c.ValidatorsHash[:]...)
	return buf
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// SigningPayload prepends the domain tag and a network identifier to the
// encoded certificate, producing the exact bytes that get signed and
// verified.
func (c Certificate) SigningPayload(networkIdentifier []byte) []byte {
	payload := make([]byte, 0, len(MessageTagCertificate)+len(networkIdentifier)+32+4+4+32+32)
	payload = append(payload, MessageTagCertificate[:]...)
	payload = append(payload, networkIdentifier...)
	payload = append(payload, c.Encode()...)
	return payload
}
