// Package signature provides helper functions for handling the blockchain
// hashing needs.
package signature

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros. It's used as the previous block
// hash for the genesis block.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// List of the supported hash strategies.
const (
	StrategySHA256    = "sha256"
	StrategyKeccak256 = "keccak256"
)

// Map of different hash strategies with functions.
var strategies = map[string]HashFunc{
	StrategySHA256:    sha256Hash,
	StrategyKeccak256: crypto.Keccak256,
}

// HashFunc defines a function that produces a 32 byte digest for the
// specified data.
type HashFunc func(data ...[]byte) []byte

// Retrieve returns the specified hash strategy function.
func Retrieve(strategy string) (HashFunc, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("hash strategy %q does not exist", strategy)
	}
	return fn, nil
}

// =============================================================================

// Hash returns a unique string for the value using the specified hash
// function. The value is marshaled to JSON first, which gives an ordered and
// unambiguous encoding for structs and slices. Hash panics if the value
// can't be marshaled, there is no hash that could stand in for it.
func Hash(fn HashFunc, value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		panic(fmt.Sprintf("signature: hash: unable to marshal %T: %s", value, err))
	}

	return hexutil.Encode(fn(data))
}

// sha256Hash adapts sha256 to the HashFunc signature.
func sha256Hash(data ...[]byte) []byte {
	h := sha256.New()
	for _, b := range data {
		h.Write(b)
	}
	return h.Sum(nil)
}
