package state

import "github.com/ardanlabs/minichain/foundation/blockchain/database"

// SubmitTransaction appends a transaction to the tail of the mempool. It
// has no validation and no error path. The transaction has no effect on
// balances until it is mined.
func (s *State) SubmitTransaction(tx database.Tx) {
	n := s.mempool.Submit(tx)
	s.evHandler("state: SubmitTransaction: tx[%s]: mempool[%d]", tx, n)
}

// SubmitWalletTransaction accepts a transaction from a wallet for inclusion.
// The transaction is shared with the peers and mining is signaled when
// auto mining is turned on.
func (s *State) SubmitWalletTransaction(tx database.Tx) {
	s.SubmitTransaction(tx)

	s.Worker.SignalShareTx(tx)
	if s.autoMine {
		s.Worker.SignalStartMining()
	}
}

// SubmitNodeTransaction accepts a transaction from a peer for inclusion.
// It is not shared again so transactions don't bounce between nodes.
func (s *State) SubmitNodeTransaction(tx database.Tx) {
	s.SubmitTransaction(tx)

	if s.autoMine {
		s.Worker.SignalStartMining()
	}
}
