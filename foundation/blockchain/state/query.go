package state

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// QueryBlock returns the block at the specified number.
func (s *State) QueryBlock(number uint64) (database.Block, error) {
	return s.db.GetBlock(number)
}

// QueryChainHeight returns the number of blocks in the chain.
func (s *State) QueryChainHeight() int {
	return s.db.Len()
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// ValidateChain re-checks every block in the chain for numbering, parent
// linkage and a solved hash that matches the block content.
func (s *State) ValidateChain() error {
	s.evHandler("state: ValidateChain: started")
	defer s.evHandler("state: ValidateChain: completed")

	if s.db.Len() == 0 {
		return ErrNotInitialized
	}

	if err := s.db.Validate(s.evHandler); err != nil {
		return fmt.Errorf("%w: %w", ErrChainInvalid, err)
	}

	return nil
}
