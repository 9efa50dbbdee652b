// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"gopkg.in/yaml.v3"
)

// MaxDifficulty is the number of hex characters in a block hash. A difficulty
// above this value can never be solved.
const MaxDifficulty = 64

// Genesis represents the genesis file.
type Genesis struct {
	Date         time.Time `json:"date" yaml:"date"`
	ChainID      uint16    `json:"chain_id" yaml:"chain_id"`           // The chain id represents an unique id for this running instance.
	Difficulty   uint16    `json:"difficulty" yaml:"difficulty"`       // How many leading zeros the block hash needs to solve the work problem.
	HashStrategy string    `json:"hash_strategy" yaml:"hash_strategy"` // The digest used for block hashes.
}

// Default returns the genesis values used when no genesis file is provided.
func Default() Genesis {
	return Genesis{
		Date:         time.Now().UTC(),
		ChainID:      1,
		Difficulty:   2,
		HashStrategy: signature.StrategySHA256,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. Files with a .yaml or .yml
// extension are decoded as YAML, everything else as JSON. Fields missing
// from the file take the default values.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &genesis)
	default:
		err = json.Unmarshal(content, &genesis)
	}
	if err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis file %q: %w", path, err)
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the genesis values can be used to run a chain.
func (g Genesis) Validate() error {
	if g.Difficulty > MaxDifficulty {
		return fmt.Errorf("difficulty %d is greater than max difficulty %d", g.Difficulty, MaxDifficulty)
	}

	if _, err := signature.Retrieve(g.HashStrategy); err != nil {
		return err
	}

	return nil
}
