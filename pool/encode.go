package pool

import "encoding/binary"

// EncodeSingleCommit produces the canonical encoding of a single commit,
// the element type of a SingleCommitsNetworkPacket.
func EncodeSingleCommit(c SingleCommit) []byte {
	buf := make([]byte, 0, 32+4+20+96)
	buf = append(buf, c.BlockID[:]...)
	var height [4]byte
	binary.BigEndian.PutUint32(height[:], c.Height)
	buf = append(buf, height[:]...)
	buf = append(buf, c.ValidatorAddress[:]...)
	buf = append(buf, c.CertificateSignature[:]...)
	return buf
}

// DecodeSingleCommit reverses EncodeSingleCommit.
func DecodeSingleCommit(data []byte) (SingleCommit, bool) {
	if len(data) != 32+4+20+96 {
		return SingleCommit{}, false
	}
	var c SingleCommit
	copy(c.BlockID[:], data[0:32])
	c.Height = binary.BigEndian.Uint32(data[32:36])
	copy(c.ValidatorAddress[:], data[36:56])
	copy(c.CertificateSignature[:], data[56:152])
	return c, true
}
