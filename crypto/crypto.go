// Package crypto provides the BLS primitives the commit pool's
// certificate codec and aggregator build on: per-validator signing and
// verification, and same-message signature/public-key aggregation.
package crypto

import (
	"fmt"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/pairing"
	"go.dedis.ch/kyber/v3/pairing/bls12381"
	"go.dedis.ch/kyber/v3/sign/bls"
	"go.dedis.ch/kyber/v3/util/random"
)

// suite is the BLS12-381 pairing every key and signature in this package
// is drawn from. Kyber's bls12381 implementation swaps the textbook
// G1/G2 labels so that sign/bls's fixed "key in G2, signature in G1"
// assignment comes out as the minimal-pubkey-size convention the rest of
// this module's wire types assume: a 48-byte public key, a 96-byte
// signature.
func suite() pairing.Suite {
	return bls12381.NewBLS12381Suite()
}

// PrivateKey is a validator's BLS signing key.
type PrivateKey struct {
	Scalar kyber.Scalar
}

// PublicKey is a validator's BLS public key — the 48-byte blsKey the
// protocol tracks per validator.
type PublicKey struct {
	Point kyber.Point
}

// GenerateKeyPair creates a fresh BLS keypair. Used by the demo CLI and by
// tests that exercise real signatures instead of a mock verifier.
func GenerateKeyPair() (PrivateKey, PublicKey) {
	x, X := bls.NewKeyPair(suite(), random.New())
	return PrivateKey{Scalar: x}, PublicKey{Point: X}
}

// EncodePublicKey marshals a public key to its fixed-size wire form.
func EncodePublicKey(pk PublicKey) ([48]byte, error) {
	var out [48]byte
	raw, err := pk.Point.MarshalBinary()
	if err != nil {
		return out, err
	}
	if len(raw) != len(out) {
		return out, fmt.Errorf("crypto: public key marshals to %d bytes, want %d", len(raw), len(out))
	}
	copy(out[:], raw)
	return out, nil
}

// DecodePublicKey unmarshals a validator's blsKey bytes into a usable key.
// bls.NewKeyPair hands back the public key point on G2, not G1 — this
// unmarshals into the same group it was produced in.
func DecodePublicKey(raw [48]byte) (PublicKey, error) {
	p := suite().G2().Point()
	if err := p.UnmarshalBinary(raw[:]); err != nil {
		return PublicKey{}, err
	}
	return PublicKey{Point: p}, nil
}

// Sign produces the 96-byte aggregatable BLS signature over an arbitrary
// message. Certificates pass their domain-tagged, network-scoped encoding
// here (see package certificate).
func Sign(sk PrivateKey, msg []byte) ([96]byte, error) {
	var out [96]byte
	sig, err := bls.Sign(suite(), sk.Scalar, msg)
	if err != nil {
		return out, err
	}
	if len(sig) != len(out) {
		return out, fmt.Errorf("crypto: signature marshals to %d bytes, want %d", len(sig), len(out))
	}
	copy(out[:], sig)
	return out, nil
}

// Verify checks a single validator's signature over msg.
func Verify(pk PublicKey, msg []byte, sig [96]byte) error {
	return bls.Verify(suite(), pk.Point, msg, sig[:])
}

// AggregateSignatures combines per-validator signatures over the same
// message into a single aggregate signature. Callers must already have
// sorted the inputs by BLS key — the aggregation primitive requires it
// (§4.6 step 3 of the commit pool's aggregator).
func AggregateSignatures(sigs [][96]byte) ([]byte, error) {
	raw := make([][]byte, len(sigs))
	for i, s := range sigs {
		raw[i] = s[:]
	}
	return bls.AggregateSignatures(suite(), raw...)
}

// AggregatePublicKeys combines the public keys of the validators that
// contributed a signature, in the same order AggregateSignatures consumed
// their signatures.
func AggregatePublicKeys(keys []PublicKey) kyber.Point {
	points := make([]kyber.Point, len(keys))
	for i, k := range keys {
		points[i] = k.Point
	}
	return bls.AggregatePublicKeys(suite(), points...)
}

// VerifyAggregate checks an aggregate signature against the aggregated
// public key of its claimed signers, over one message.
func VerifyAggregate(aggregatedKey kyber.Point, msg []byte, aggregateSig []byte) error {
	return bls.Verify(suite(), aggregatedKey, msg, aggregateSig)
}
