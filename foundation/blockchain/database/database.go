// Package database handles all the lower level support for maintaining the
// blockchain. Blocks are validated here and kept by a Storage implementation.
package database

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// ErrNotFound is returned when a block number doesn't exist in the chain.
var ErrNotFound = errors.New("block not found")

// =============================================================================

// Database manages the ordered set of blocks that make up the chain.
type Database struct {
	mu sync.RWMutex

	genesis     genesis.Genesis
	hashFn      signature.HashFunc
	storage     Storage
	latestBlock Block
	count       int
}

// New constructs a new database for the chain parameters in the genesis,
// keeping blocks in the storage provided.
func New(gen genesis.Genesis, storage Storage) (*Database, error) {
	if err := gen.Validate(); err != nil {
		return nil, err
	}

	if storage == nil {
		return nil, errors.New("storage is required")
	}

	hashFn, err := signature.Retrieve(gen.HashStrategy)
	if err != nil {
		return nil, err
	}

	db := Database{
		genesis: gen,
		hashFn:  hashFn,
		storage: storage,
	}

	// Pick up any blocks the storage already holds.
	iter := storage.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		db.latestBlock = block
		db.count++
	}

	return &db, nil
}

// Close closes the storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// Reset removes every block from the chain.
func (db *Database) Reset() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.storage.Reset(); err != nil {
		return err
	}

	db.latestBlock = Block{}
	db.count = 0

	return nil
}

// Genesis returns a copy of the chain parameters.
func (db *Database) Genesis() genesis.Genesis {
	return db.genesis
}

// HashFunc returns the hash function blocks are hashed with.
func (db *Database) HashFunc() signature.HashFunc {
	return db.hashFn
}

// Write validates the block against the latest block and appends it to
// the chain. The first block written must be a genesis block.
func (db *Database) Write(block Block, evHandler func(v string, args ...any)) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	switch db.count {
	case 0:
		if err := block.ValidateGenesis(db.genesis.Difficulty, db.hashFn, evHandler); err != nil {
			return err
		}

	default:
		if err := block.ValidateBlock(db.latestBlock, db.genesis.Difficulty, db.hashFn, evHandler); err != nil {
			return err
		}
	}

	block = block.clone()
	if err := db.storage.Write(block); err != nil {
		return fmt.Errorf("storage write: %w", err)
	}

	db.latestBlock = block
	db.count++

	return nil
}

// Len returns the number of blocks in the chain.
func (db *Database) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.count
}

// LatestBlock returns the latest block. The zero block is returned when the
// chain is empty.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latestBlock.clone()
}

// GetBlock returns the contents of the specified block by number.
func (db *Database) GetBlock(num uint64) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	block, err := db.storage.GetBlock(num)
	if err != nil {
		return Block{}, err
	}

	return block.clone(), nil
}

// Blocks returns a copy of every block in the chain in order.
func (db *Database) Blocks() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	blocks := make([]Block, 0, db.count)

	iter := db.storage.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			break
		}
		blocks = append(blocks, block.clone())
	}

	return blocks
}

// Validate walks the entire chain and checks every block is correctly
// numbered, linked to its parent and carries a solved hash that matches
// its content.
func (db *Database) Validate(evHandler func(v string, args ...any)) error {
	blocks := db.Blocks()

	for i, block := range blocks {
		var err error
		switch i {
		case 0:
			err = block.ValidateGenesis(db.genesis.Difficulty, db.hashFn, evHandler)
		default:
			err = block.ValidateBlock(blocks[i-1], db.genesis.Difficulty, db.hashFn, evHandler)
		}

		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}

	return nil
}
