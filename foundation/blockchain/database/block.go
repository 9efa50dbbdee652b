package database

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// ErrNonceExhausted is returned when every nonce value has been tried
// without solving the hash puzzle.
var ErrNonceExhausted = errors.New("nonce space exhausted")

// =============================================================================

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	Number        uint64 `json:"number"`          // Position of the block in the chain.
	TimeStamp     uint64 `json:"timestamp"`       // Time the block was constructed in unix milliseconds.
	PrevBlockHash string `json:"prev_block_hash"` // Hash of the previous block in the chain.
	Nonce         uint64 `json:"nonce"`           // Value identified to solve the hash solution.
	Difficulty    uint16 `json:"difficulty"`      // Number of 0's needed to solve the hash solution.
}

// Block represents a group of transactions batched together.
type Block struct {
	Header BlockHeader
	Trans  []Tx
	Hash   string
}

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	Number        uint64
	PrevBlockHash string
	Difficulty    uint16
	HashFunc      signature.HashFunc
	Trans         []Tx
	EvHandler     func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the cryptographic POW puzzle.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	// The block owns its own copy of the transactions.
	trans := make([]Tx, len(args.Trans))
	copy(trans, args.Trans)

	// Construct the block to be mined.
	nb := Block{
		Header: BlockHeader{
			Number:        args.Number,
			TimeStamp:     uint64(time.Now().UTC().UnixMilli()),
			PrevBlockHash: args.PrevBlockHash,
			Nonce:         0, // Will be identified by the POW algorithm.
			Difficulty:    args.Difficulty,
		},
		Trans: trans,
	}

	// Peform the proof of work mining operation.
	if err := nb.performPOW(ctx, args.HashFunc, ev); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// performPOW does the work of mining to find a valid hash for a specified
// block. Pointer semantics are being used since a nonce is being discovered.
func (b *Block) performPOW(ctx context.Context, fn signature.HashFunc, ev func(v string, args ...any)) error {
	ev("database: PerformPOW: MINING: started: blk[%d]", b.Header.Number)
	defer ev("database: PerformPOW: MINING: completed: blk[%d]", b.Header.Number)

	// Log the transactions that are a part of this potential block.
	for _, tx := range b.Trans {
		ev("database: PerformPOW: MINING: tx[%s]", tx)
	}

	// Loop until we find a solution for the next block.
	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: PerformPOW: MINING: attempts[%d]", attempts)
		}

		// Did we timeout trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: PerformPOW: MINING: CANCELLED")
			return ctx.Err()
		}

		// Hash the block and check if we have solved the puzzle.
		hash := b.ComputeHash(fn)
		if !isHashSolved(b.Header.Difficulty, hash) {
			if b.Header.Nonce == math.MaxUint64 {
				ev("database: PerformPOW: MINING: EXHAUSTED: attempts[%d]", attempts)
				return ErrNonceExhausted
			}
			b.Header.Nonce++
			continue
		}

		b.Hash = hash

		ev("database: PerformPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: nonce[%d]", b.Header.PrevBlockHash, hash, b.Header.Nonce)
		ev("database: PerformPOW: MINING: attempts[%d]", attempts)

		return nil
	}
}

// ComputeHash recomputes the hash for the block from its number, timestamp,
// transactions, previous block hash and nonce.
func (b Block) ComputeHash(fn signature.HashFunc) string {

	// Account ids are hashed as raw bytes so ids that are not valid UTF-8
	// can't collapse into the same JSON string.
	trans := make([]txDigest, len(b.Trans))
	for i, tx := range b.Trans {
		trans[i] = txDigest{
			From:  []byte(tx.From),
			To:    []byte(tx.To),
			Value: tx.Value,
		}
	}

	content := struct {
		Number        uint64     `json:"number"`
		TimeStamp     uint64     `json:"timestamp"`
		Trans         []txDigest `json:"trans"`
		PrevBlockHash string     `json:"prev_block_hash"`
		Nonce         uint64     `json:"nonce"`
	}{
		Number:        b.Header.Number,
		TimeStamp:     b.Header.TimeStamp,
		Trans:         trans,
		PrevBlockHash: b.Header.PrevBlockHash,
		Nonce:         b.Header.Nonce,
	}

	return signature.Hash(fn, content)
}

// txDigest is the form of a transaction that goes into the block hash.
type txDigest struct {
	From  []byte `json:"from"`
	To    []byte `json:"to"`
	Value int64  `json:"value"`
}

// ValidateGenesis validates the block can be the first block in a chain.
func (b Block) ValidateGenesis(difficulty uint16, fn signature.HashFunc, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateGenesis: validate: blk[%d]: check: block is number zero", b.Header.Number)

	if b.Header.Number != 0 {
		return fmt.Errorf("genesis block must be number 0, got %d", b.Header.Number)
	}

	evHandler("database: ValidateGenesis: validate: blk[%d]: check: previous hash is the zero hash", b.Header.Number)

	if b.Header.PrevBlockHash != signature.ZeroHash {
		return fmt.Errorf("genesis block previous hash must be the zero hash, got %s", b.Header.PrevBlockHash)
	}

	return b.validateWork(difficulty, fn, evHandler)
}

// ValidateBlock takes a block and validates it to be included into the
// blockchain after the specified previous block.
func (b Block) ValidateBlock(previousBlock Block, difficulty uint16, fn signature.HashFunc, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateBlock: validate: blk[%d]: check: block number is the next number", b.Header.Number)

	nextNumber := previousBlock.Header.Number + 1
	if b.Header.Number != nextNumber {
		return fmt.Errorf("this block is not the next number, got %d, exp %d", b.Header.Number, nextNumber)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: parent hash does match parent block", b.Header.Number)

	if b.Header.PrevBlockHash != previousBlock.Hash {
		return fmt.Errorf("parent block hash doesn't match our known parent, got %s, exp %s", b.Header.PrevBlockHash, previousBlock.Hash)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block's timestamp is not before parent block's timestamp", b.Header.Number)

	if b.Header.TimeStamp < previousBlock.Header.TimeStamp {
		parentTime := time.UnixMilli(int64(previousBlock.Header.TimeStamp))
		blockTime := time.UnixMilli(int64(b.Header.TimeStamp))
		return fmt.Errorf("block timestamp is before parent block, parent %s, block %s", parentTime, blockTime)
	}

	return b.validateWork(difficulty, fn, evHandler)
}

// validateWork checks the stored hash matches the block content and solves
// the puzzle for the chain's difficulty.
func (b Block) validateWork(difficulty uint16, fn signature.HashFunc, evHandler func(v string, args ...any)) error {
	evHandler("database: validateWork: validate: blk[%d]: check: block difficulty matches chain difficulty", b.Header.Number)

	if b.Header.Difficulty != difficulty {
		return fmt.Errorf("block difficulty doesn't match chain difficulty, got %d, exp %d", b.Header.Difficulty, difficulty)
	}

	evHandler("database: validateWork: validate: blk[%d]: check: block hash matches block content", b.Header.Number)

	if hash := b.ComputeHash(fn); hash != b.Hash {
		return fmt.Errorf("block hash doesn't match block content, got %s, exp %s", b.Hash, hash)
	}

	evHandler("database: validateWork: validate: blk[%d]: check: block hash has been solved", b.Header.Number)

	if !isHashSolved(b.Header.Difficulty, b.Hash) {
		return fmt.Errorf("%s invalid block hash", b.Hash)
	}

	return nil
}

// clone returns a copy of the block that shares no memory with the original.
func (b Block) clone() Block {
	trans := make([]Tx, len(b.Trans))
	copy(trans, b.Trans)
	b.Trans = trans

	return b
}

// =============================================================================

// isHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's
// following the 0x prefix.
func isHashSolved(difficulty uint16, hash string) bool {
	const match = "0x0000000000000000000000000000000000000000000000000000000000000000"

	if len(hash) != len(match) {
		return false
	}

	end := 2 + int(difficulty)
	if end > len(match) {
		return false
	}

	return hash[:end] == match[:end]
}
