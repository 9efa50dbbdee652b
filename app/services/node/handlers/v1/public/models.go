package public

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/validate"
)

type tx struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Value   int64  `json:"value"`
	Summary string `json:"summary"`
}

type block struct {
	Number        uint64 `json:"number"`
	PrevBlockHash string `json:"prev_block_hash"`
	TimeStamp     uint64 `json:"timestamp"`
	Nonce         uint64 `json:"nonce"`
	Difficulty    uint16 `json:"difficulty"`
	Hash          string `json:"hash"`
	Transactions  []tx   `json:"txs"`
}

type status struct {
	Status     string `json:"status"`
	Height     int    `json:"height"`
	Pending    int    `json:"pending"`
	LatestHash string `json:"latest_hash"`
	Difficulty uint16 `json:"difficulty"`
}

type validation struct {
	Valid  bool   `json:"valid"`
	Height int    `json:"height"`
	Error  string `json:"error,omitempty"`
}

// newTx is what we require from clients when submitting a transaction.
type newTx struct {
	From  string `json:"from" validate:"required"`
	To    string `json:"to" validate:"required,nefield=From"`
	Value int64  `json:"value"`
}

// Validate checks the data in the model is considered clean.
func (ntx newTx) Validate() error {
	return validate.Check(ntx)
}

// =============================================================================

func toTx(dbTx database.Tx) tx {
	return tx{
		From:    dbTx.From,
		To:      dbTx.To,
		Value:   dbTx.Value,
		Summary: dbTx.String(),
	}
}

func toTxs(dbTxs []database.Tx) []tx {
	trans := make([]tx, len(dbTxs))
	for i, dbTx := range dbTxs {
		trans[i] = toTx(dbTx)
	}
	return trans
}

func toBlock(blk database.Block) block {
	return block{
		Number:        blk.Header.Number,
		PrevBlockHash: blk.Header.PrevBlockHash,
		TimeStamp:     blk.Header.TimeStamp,
		Nonce:         blk.Header.Nonce,
		Difficulty:    blk.Header.Difficulty,
		Hash:          blk.Hash,
		Transactions:  toTxs(blk.Trans),
	}
}
