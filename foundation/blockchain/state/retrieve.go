package state

import (
	"github.com/ardanlabs/minichain/foundation/blockchain/database"
)

// RetrieveDifficulty returns the number of leading 0's a block hash needs.
func (s *State) RetrieveDifficulty() uint {
	return s.difficulty
}

// RetrieveGenesis returns a copy of the genesis block.
func (s *State) RetrieveGenesis() database.Block {
	return s.db.Genesis()
}

// RetrieveLatestBlock returns a copy the current latest block, the tip of
// the chain. The chain always holds at least the genesis block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveBlocks returns a copy of the chain from genesis to tip.
func (s *State) RetrieveBlocks() []database.Block {
	return s.db.CopyBlocks()
}

// RetrieveMempool returns a copy of the mempool in submission order.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// RetrieveBalances returns a copy of the balances of every account that
// has been part of a mined transaction.
func (s *State) RetrieveBalances() map[database.PublicKey]int64 {
	return s.db.CopyBalances()
}

// BalanceOf returns the balance for the account, 0 when it never
// transacted.
func (s *State) BalanceOf(pk database.PublicKey) int64 {
	return s.db.Balance(pk)
}
