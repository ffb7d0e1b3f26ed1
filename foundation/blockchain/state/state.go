// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/mempool"
)

// EventHandler defines a function that is called when events
// occur in the processing of mining and writing blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for background mining and transaction sharing.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining() (done func())
	SignalShareTx(tx database.Tx)
}

// =============================================================================

// Config represents the configuration required to start the ledger.
// A zero GenesisTime stamps the genesis block with the current time. A
// GenesisTime later than the current time is rejected.
type Config struct {
	Difficulty  uint
	AutoMine    bool
	GenesisTime uint64
	EvHandler   EventHandler
}

// State manages the blockchain database.
type State struct {
	difficulty uint
	autoMine   bool
	evHandler  EventHandler

	// mining serializes local mining so two candidates are never built on
	// the same tip.
	mining sync.Mutex

	// mu keeps changes to the tip and to the mempool together, a transaction
	// is never both in the chain and pooled.
	mu sync.Mutex

	mempool *mempool.Mempool
	db      *database.Database

	Worker Worker
}

// New constructs a new ledger holding only the genesis block, an empty
// mempool and no balances.
func New(cfg Config) (*State, error) {
	if cfg.Difficulty > database.MaxDifficulty {
		return nil, fmt.Errorf("difficulty %d can't be solved, max is %d", cfg.Difficulty, database.MaxDifficulty)
	}

	// A block can't be older than its parent, so no block could ever be
	// mined on a genesis from the future.
	if now := uint64(time.Now().UTC().Unix()); cfg.GenesisTime > now {
		return nil, fmt.Errorf("genesis time %d is in the future, now is %d", cfg.GenesisTime, now)
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	genesis := database.NewGenesisBlock()
	if cfg.GenesisTime != 0 {
		genesis = database.NewGenesisBlockAt(cfg.GenesisTime)
	}

	state := State{
		difficulty: cfg.Difficulty,
		autoMine:   cfg.AutoMine,
		evHandler:  ev,

		mempool: mempool.New(),
		db:      database.New(genesis),

		// The worker package replaces this when the node runs one.
		Worker: noWorker{},
	}

	return &state, nil
}

// Shutdown cleanly brings the ledger down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	s.Worker.Shutdown()

	return nil
}

// =============================================================================

// noWorker is used until a worker registers itself with the state.
type noWorker struct{}

func (noWorker) Shutdown()                         {}
func (noWorker) SignalStartMining()                {}
func (noWorker) SignalCancelMining() (done func()) { return func() {} }
func (noWorker) SignalShareTx(tx database.Tx)      {}
