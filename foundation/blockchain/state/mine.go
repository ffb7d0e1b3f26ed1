package state

import (
	"context"
	"time"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/mempool"
)

// MineNewBlock drains the mempool into a new block on top of the latest
// block, solves the POW puzzle and writes the block to the chain.
//
// An empty mempool still produces a block. If the context is cancelled or
// a peer block moves the tip first, the drained transactions go back to the
// head of the mempool and the error is returned. Transactions the peer block
// already holds are not put back.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.mining.Lock()
	defer s.mining.Unlock()

	s.evHandler("state: MineNewBlock: MINING: build candidate")

	s.mu.Lock()
	latest := s.db.LatestBlock()
	block := database.NewBlock(latest.Header.Number+1, latest.Hash(), database.PlaceholderSeed)
	block.Trans = s.mempool.Drain()
	s.mu.Unlock()

	s.evHandler("state: MineNewBlock: MINING: perform POW: blk[%d]: txs[%d]", block.Header.Number, len(block.Trans))

	t := time.Now()
	attempts, err := block.PerformPOW(ctx, s.difficulty, s.evHandler)
	if err != nil {
		s.evHandler("state: MineNewBlock: MINING: requeue txs[%d]: %s", len(block.Trans), err)
		s.requeue(block.Trans, latest.Header.Number)
		return database.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: solved: attempts[%d]: duration[%v]", attempts, time.Since(t))
	s.evHandler("state: MineNewBlock: MINING: write block")

	if err := s.db.Write(block, s.difficulty, s.evHandler); err != nil {
		s.evHandler("state: MineNewBlock: MINING: requeue txs[%d]: %s", len(block.Trans), err)
		s.requeue(block.Trans, latest.Header.Number)
		return database.Block{}, err
	}

	return block, nil
}

// ProposeBlock takes a block received from a peer, validates it against the
// latest block and if that passes, writes it to the chain. An invalid block
// is rejected with an error, the chain and balances are left untouched.
func (s *State) ProposeBlock(block database.Block) error {
	s.evHandler("state: ProposeBlock: started: blk[%s]", block.Hash())
	defer s.evHandler("state: ProposeBlock: completed")

	// If a mining operation is running it needs to stop immediately. The G
	// running it will not return until done is called. That allows this
	// function to complete its state changes before a new mining operation
	// takes place.
	done := s.Worker.SignalCancelMining()
	defer func() {
		s.evHandler("state: ProposeBlock: signal mining to terminate")
		done()
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Write(block, s.difficulty, s.evHandler); err != nil {
		s.evHandler("state: ProposeBlock: rejected: %s", err)
		return err
	}

	// The peer mined these, they must not be mined again here.
	n := s.mempool.Remove(block.Trans)
	s.evHandler("state: ProposeBlock: removed txs[%d] from mempool", n)

	return nil
}

// requeue puts drained transactions back at the head of the mempool, less
// the ones already written in blocks after the block numbered since.
func (s *State) requeue(trans []database.Tx, since uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, block := range s.db.CopyBlocks()[since+1:] {
		trans, _ = mempool.Subtract(trans, block.Trans)
	}

	s.mempool.Requeue(trans)
}
