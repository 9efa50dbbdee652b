package database

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/validate"
)

// =============================================================================

// Tx is the transactional information between two parties.
type Tx struct {
	From  string `json:"from" validate:"required"`            // Identifier of the account sending the value.
	To    string `json:"to" validate:"required,nefield=From"` // Identifier of the account receiving the value.
	Value int64  `json:"value"`                               // Monetary value moved by this transaction.
}

// NewTx constructs a new transaction. No validation is performed, any
// identifiers and any value are accepted.
func NewTx(from string, to string, value int64) Tx {
	return Tx{
		From:  from,
		To:    to,
		Value: value,
	}
}

// Validate checks the transaction has non-empty identifiers and isn't
// sending value back to the same account.
func (tx Tx) Validate() error {
	return validate.Check(tx)
}

// String implements the fmt.Stringer interface for logging and display.
func (tx Tx) String() string {
	return fmt.Sprintf("%s ➡ %s: $%d", tx.From, tx.To, tx.Value)
}
