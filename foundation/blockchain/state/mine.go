package state

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// MineResult is the outcome of an asynchronous mining operation.
type MineResult struct {
	Block    database.Block
	Duration time.Duration
	Err      error
}

// =============================================================================

// CreateGenesisBlock mines the first block of the chain. It must be called
// exactly once before any other mutation.
func (s *State) CreateGenesisBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: CreateGenesisBlock: started")
	defer s.evHandler("state: CreateGenesisBlock: completed")

	s.mu.Lock()
	{
		switch s.status {
		case StatusReady:
			s.mu.Unlock()
			return database.Block{}, ErrAlreadyInitialized
		case StatusMining:
			s.mu.Unlock()
			return database.Block{}, ErrMiningInProgress
		}

		s.status = StatusMining
	}
	s.mu.Unlock()

	s.evHandler("state: CreateGenesisBlock: MINING: perform POW")

	block, err := database.POW(ctx, database.POWArgs{
		Number:        0,
		PrevBlockHash: signature.ZeroHash,
		Difficulty:    s.genesis.Difficulty,
		HashFunc:      s.db.HashFunc(),
		EvHandler:     s.evHandler,
	})

	return s.commitBlock(ctx, block, err, StatusUninitialized)
}

// MinePendingTransactions snapshots the mempool, mines a new block with
// those transactions on top of the latest block and appends it to the
// chain. An empty mempool produces a block with no transactions. The mutex
// is not held during the proof of work, the Mining status keeps every
// other mutation out until the block is committed.
func (s *State) MinePendingTransactions(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MinePendingTransactions: started")
	defer s.evHandler("state: MinePendingTransactions: completed")

	var args database.POWArgs

	s.mu.Lock()
	{
		switch s.status {
		case StatusUninitialized:
			s.mu.Unlock()
			return database.Block{}, ErrNotInitialized
		case StatusMining:
			s.mu.Unlock()
			return database.Block{}, ErrMiningInProgress
		}

		s.status = StatusMining

		latest := s.db.LatestBlock()
		args = database.POWArgs{
			Number:        uint64(s.db.Len()),
			PrevBlockHash: latest.Hash,
			Difficulty:    s.genesis.Difficulty,
			HashFunc:      s.db.HashFunc(),
			Trans:         s.mempool.Copy(),
			EvHandler:     s.evHandler,
		}
	}
	s.mu.Unlock()

	s.evHandler("state: MinePendingTransactions: MINING: perform POW: blk[%d]: txs[%d]", args.Number, len(args.Trans))

	block, err := database.POW(ctx, args)

	return s.commitBlock(ctx, block, err, StatusReady)
}

// MineAsync runs MinePendingTransactions on a separate goroutine and returns
// a channel that receives the result once the proof of work completes.
func (s *State) MineAsync(ctx context.Context) <-chan MineResult {
	ch := make(chan MineResult, 1)

	go func() {
		t := time.Now()
		block, err := s.MinePendingTransactions(ctx)
		ch <- MineResult{
			Block:    block,
			Duration: time.Since(t),
			Err:      err,
		}
	}()

	return ch
}

// =============================================================================

// commitBlock takes the result of the proof of work and, on success, writes
// the block to the chain and clears the mempool. On failure the status is
// restored and nothing changes.
func (s *State) commitBlock(ctx context.Context, block database.Block, powErr error, onFailure Status) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if powErr != nil {
		s.status = onFailure
		return database.Block{}, powErr
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		s.status = onFailure
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: commitBlock: write block: blk[%d]", block.Header.Number)

	if err := s.db.Write(block, s.evHandler); err != nil {
		s.status = onFailure
		return database.Block{}, fmt.Errorf("%w: %w", ErrChainInvalid, err)
	}

	s.evHandler("state: commitBlock: clear mempool")

	s.mempool.Truncate()
	s.status = StatusReady

	s.evHandler("viewer: block mined: blk[%d]: hash[%s]: prev[%s]: nonce[%d]: txs[%d]", block.Header.Number, block.Hash, block.Header.PrevBlockHash, block.Header.Nonce, len(block.Trans))

	return block, nil
}
