// Package database handles all the lower level support for maintaining the
// blockchain in memory and the balance information for every account that
// has transacted on it.
package database

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when a block number does not exist.
var ErrNotFound = errors.New("block not found")

// Database manages the chain of blocks and the balances derived from them.
type Database struct {
	mu       sync.RWMutex
	chain    []Block
	balances map[PublicKey]int64
}

// New constructs a database holding only the specified genesis block.
func New(genesis Block) *Database {
	return &Database{
		chain:    []Block{genesis},
		balances: make(map[PublicKey]int64),
	}
}

// Write validates the block against the latest block and if valid, adds it
// to the chain and applies its transactions to the balances. Both happen
// under the same lock so readers never see one without the other.
func (db *Database) Write(block Block, difficulty uint, ev func(v string, args ...any)) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := block.ValidateBlock(db.chain[len(db.chain)-1], difficulty, ev); err != nil {
		return err
	}

	// The caller keeps its copy of the block, this one belongs to the chain.
	trans := make([]Tx, len(block.Trans))
	copy(trans, block.Trans)
	block.Trans = trans

	db.chain = append(db.chain, block)

	for _, tx := range block.Trans {
		ev("database: Write: blk[%d]: apply tx[%s]", block.Header.Number, tx)
		db.applyTransaction(tx)
	}

	return nil
}

// applyTransaction performs the business logic for applying a transaction
// to the balances. The recipient is credited before the sender is debited.
// There is no check for sufficient funds so balances can go negative.
func (db *Database) applyTransaction(tx Tx) {
	db.balances[tx.To] += int64(tx.Value)
	db.balances[tx.From] -= int64(tx.Value)
}

// LatestBlock returns the block at the tip of the chain.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.chain[len(db.chain)-1]
}

// Genesis returns the first block of the chain.
func (db *Database) Genesis() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.chain[0]
}

// Height returns the number of blocks in the chain, including genesis.
func (db *Database) Height() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.chain)
}

// GetBlock returns the block with the specified number.
func (db *Database) GetBlock(num uint64) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if num >= uint64(len(db.chain)) {
		return Block{}, fmt.Errorf("%w: number %d", ErrNotFound, num)
	}

	return db.chain[num], nil
}

// CopyBlocks makes a copy of the chain from genesis to tip.
func (db *Database) CopyBlocks() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	blocks := make([]Block, len(db.chain))
	copy(blocks, db.chain)

	return blocks
}

// QueryBlocksByAccount returns the blocks holding at least one transaction
// where the account is the sender or the recipient.
func (db *Database) QueryBlocksByAccount(pk PublicKey) []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var blocks []Block
	for _, block := range db.chain {
		for _, tx := range block.Trans {
			if tx.From == pk || tx.To == pk {
				blocks = append(blocks, block)
				break
			}
		}
	}

	return blocks
}

// Balance returns the balance for the account. Accounts that never
// transacted have a balance of 0.
func (db *Database) Balance(pk PublicKey) int64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.balances[pk]
}

// CopyBalances makes a copy of the current balances in the database.
func (db *Database) CopyBalances() map[PublicKey]int64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	balances := make(map[PublicKey]int64, len(db.balances))
	for pk, balance := range db.balances {
		balances[pk] = balance
	}

	return balances
}
