// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/memory"
)

// Set of errors returned when calls are made out of order.
var (
	ErrNotInitialized     = errors.New("blockchain not initialized, genesis block missing")
	ErrAlreadyInitialized = errors.New("blockchain already initialized, genesis block exists")
	ErrMiningInProgress   = errors.New("mining in progress")
	ErrChainInvalid       = errors.New("blockchain invalid")
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for background mining.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// =============================================================================

// Status represents where the blockchain is in its lifecycle.
type Status int

// Set of lifecycle states. A blockchain starts Uninitialized, moves to Ready
// once the genesis block exists and is Mining while a proof of work search
// is running.
const (
	StatusUninitialized Status = iota
	StatusReady
	StatusMining
)

// String implements the fmt.Stringer interface.
func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusReady:
		return "ready"
	case StatusMining:
		return "mining"
	}
	return "unknown"
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Genesis    genesis.Genesis
	Storage    database.Storage
	ValidateTx bool
	EvHandler  EventHandler
}

// State manages the blockchain database.
type State struct {
	mu         sync.Mutex
	status     Status
	validateTx bool
	evHandler  EventHandler

	genesis genesis.Genesis
	mempool *mempool.Mempool
	db      *database.Database

	Worker Worker
}

// New constructs a new blockchain for data management. The chain is empty
// until CreateGenesisBlock is called.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Access the in memory database for the blockchain.
	// Blocks are kept in memory unless another storage is provided.
	storage := cfg.Storage
	if storage == nil {
		storage = memory.New()
	}

	db, err := database.New(cfg.Genesis, storage)
	if err != nil {
		return nil, err
	}

	// A storage that already holds a chain starts out ready.
	status := StatusUninitialized
	if db.Len() > 0 {
		status = StatusReady
	}

	// Create the State to provide support for managing the blockchain.
	state := State{
		status:     status,
		validateTx: cfg.ValidateTx,
		evHandler:  ev,

		genesis: cfg.Genesis,
		mempool: mempool.New(),
		db:      db,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return s.db.Close()
}

// Truncate resets the chain and the mempool back to the uninitialized
// state. It can't be called while mining.
func (s *State) Truncate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusMining {
		return ErrMiningInProgress
	}

	if err := s.db.Reset(); err != nil {
		return err
	}

	s.mempool.Truncate()
	s.status = StatusUninitialized

	return nil
}
