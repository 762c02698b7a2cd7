package certificate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dcz-bft/commitpool/chain"
	"github.com/dcz-bft/commitpool/crypto"
)

func sampleCertificate() Certificate {
	return Certificate{
		BlockID:        [32]byte{1, 2, 3},
		Height:         42,
		Timestamp:      1000,
		StateRoot:      [32]byte{4, 5, 6},
		ValidatorsHash: [32]byte{7, 8, 9},
	}
}

func TestFromBlockHeaderProjectsFiveFields(t *testing.T) {
	header := chain.BlockHeader{
		ID:               [32]byte{1, 2, 3},
		Height:           42,
		Timestamp:        1000,
		StateRoot:        [32]byte{4, 5, 6},
		ValidatorsHash:   [32]byte{7, 8, 9},
		GeneratorAddress: [20]byte{9, 9, 9},
	}
	require.Equal(t, sampleCertificate(), FromBlockHeader(header))
}

func TestEncodeIsDeterministicAndFixedLayout(t *testing.T) {
	cert := sampleCertificate()
	first := cert.Encode()
	second := cert.Encode()
	require.Equal(t, first, second)
	require.Len(t, first, 32+4+4+32+32)

	other := cert
	other.Height++
	require.NotEqual(t, first, other.Encode())
}

func TestSignVerifyRoundTripAndTamperDetection(t *testing.T) {
	sk, pk := crypto.GenerateKeyPair()
	networkID := []byte("test-network")
	cert := sampleCertificate()

	sig, err := Sign(sk, networkID, cert)
	require.NoError(t, err)
	require.NoError(t, Verify(pk, networkID, cert, sig))

	tampered := cert
	tampered.Height++
	require.Error(t, Verify(pk, networkID, tampered, sig))
}
