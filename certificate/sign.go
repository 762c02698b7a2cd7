package certificate

import (
	"go.dedis.ch/kyber/v3"

	"github.com/dcz-bft/commitpool/crypto"
)

// Sign signs a certificate under the fixed domain tag and a network
// identifier, producing the 96-byte signature a SingleCommit carries.
func Sign(sk crypto.PrivateKey, networkIdentifier []byte, cert Certificate) ([96]byte, error) {
	return crypto.Sign(sk, cert.SigningPayload(networkIdentifier))
}

// Verify checks a single validator's certificate signature.
func Verify(pk crypto.PublicKey, networkIdentifier []byte, cert Certificate, sig [96]byte) error {
	return crypto.Verify(pk, cert.SigningPayload(networkIdentifier), sig[:])
}

// VerifyAggregateCertificateSignature checks an aggregate signature against
// the aggregated public key of its claimed signers, over one certificate.
func VerifyAggregateCertificateSignature(aggregatedKey kyber.Point, networkIdentifier []byte, cert Certificate, aggregateSig []byte) error {
	return crypto.VerifyAggregate(aggregatedKey, cert.SigningPayload(networkIdentifier), aggregateSig)
}
