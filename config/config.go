// Package config loads and generates the file-based configuration a demo
// commit pool node needs: a BLS keypair, a committee address book for the
// gossip sink, and the pool's own parameters. The commit pool's actual
// validator set and BFT parameters are never configured here — those come
// from the injected bftapi.API at runtime.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dcz-bft/commitpool/crypto"
	"github.com/dcz-bft/commitpool/pool"
)

func savetoFile(filename string, data interface{}) error {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer file.Close()
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "\t")
	return encoder.Encode(data)
}

func readFromFile(filename string, out interface{}) error {
	file, err := os.OpenFile(filename, os.O_RDONLY, 0600)
	if err != nil {
		return err
	}
	defer file.Close()
	return json.NewDecoder(file).Decode(out)
}

// KeyFile is the on-disk representation of a node's BLS keypair.
type KeyFile struct {
	Public  string `json:"public"`
	Private string `json:"private"`
}

// GenerateKeyFile creates a fresh BLS keypair and writes it to filename.
func GenerateKeyFile(filename string) error {
	sk, pk := crypto.GenerateKeyPair()
	pkRaw, err := crypto.EncodePublicKey(pk)
	if err != nil {
		return err
	}
	skRaw, err := sk.Scalar.MarshalBinary()
	if err != nil {
		return err
	}
	return savetoFile(filename, KeyFile{
		Public:  fmt.Sprintf("%x", pkRaw),
		Private: fmt.Sprintf("%x", skRaw),
	})
}

// Peer is one entry of the gossip committee's address book.
type Peer struct {
	Address string `json:"address"`
	BLSKey  string `json:"bls_key"`
}

// Committee is the set of peer addresses a node's gossip sink broadcasts
// to. It is unrelated to the BFT validator set: the committee here is
// purely network addressing, while validator membership and weight come
// from the injected bftapi.API.
type Committee struct {
	Peers []Peer `json:"peers"`
}

// GenerateSampleCommittee writes a local n-node committee file, useful
// for driving the demo CLI without a real network.
func GenerateSampleCommittee(filename string, n int, basePort int) error {
	committee := Committee{}
	for i := 0; i < n; i++ {
		_, pk := crypto.GenerateKeyPair()
		raw, err := crypto.EncodePublicKey(pk)
		if err != nil {
			return err
		}
		committee.Peers = append(committee.Peers, Peer{
			Address: fmt.Sprintf("127.0.0.1:%d", basePort+i),
			BLSKey:  fmt.Sprintf("%x", raw),
		})
	}
	return savetoFile(filename, committee)
}

// LoadCommittee reads a committee file written by GenerateSampleCommittee.
func LoadCommittee(filename string) (Committee, error) {
	var c Committee
	err := readFromFile(filename, &c)
	return c, err
}

// Addresses returns the bare peer address list, for network.NewCommitSink.
func (c Committee) Addresses() []string {
	out := make([]string, len(c.Peers))
	for i, p := range c.Peers {
		out[i] = p.Address
	}
	return out
}

// Parameters is the pool's own runtime configuration.
type Parameters struct {
	BlockTimeMillis   int    `json:"block_time_millis"`
	NetworkIdentifier string `json:"network_identifier"`
}

// DefaultParameters matches pool.DefaultBlockTime.
var DefaultParameters = Parameters{
	BlockTimeMillis:   int(pool.DefaultBlockTime / time.Millisecond),
	NetworkIdentifier: "commitpool-demo",
}

// GenerateSampleParameters writes DefaultParameters to filename.
func GenerateSampleParameters(filename string) error {
	return savetoFile(filename, DefaultParameters)
}

// LoadParameters reads a parameters file written by
// GenerateSampleParameters.
func LoadParameters(filename string) (Parameters, error) {
	var p Parameters
	err := readFromFile(filename, &p)
	return p, err
}

func (p Parameters) BlockTime() time.Duration {
	return time.Duration(p.BlockTimeMillis) * time.Millisecond
}
