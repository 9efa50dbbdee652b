package state

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// SubmitTransaction appends a new transaction to the end of the mempool. The
// transaction is only validated when the state was configured to do so.
func (s *State) SubmitTransaction(tx database.Tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusUninitialized:
		return ErrNotInitialized
	case StatusMining:
		return ErrMiningInProgress
	}

	if s.validateTx {
		if err := tx.Validate(); err != nil {
			s.evHandler("state: SubmitTransaction: tx[%s]: REJECTED: %s", tx, err)
			return err
		}
	}

	n := s.mempool.Add(tx)
	s.evHandler("viewer: state: SubmitTransaction: tx[%s]: pending[%d]", tx, n)

	return nil
}
