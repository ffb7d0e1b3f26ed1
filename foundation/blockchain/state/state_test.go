package state_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/minichain/foundation/blockchain/account"
	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/state"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func ifErrFailNow(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

func newAccount(t *testing.T, name string) account.Account {
	t.Helper()

	a, err := account.New(name)
	ifErrFailNow(t, err)

	return a
}

func newState(t *testing.T, difficulty uint) *state.State {
	t.Helper()

	s, err := state.New(state.Config{
		Difficulty: difficulty,
		EvHandler:  func(v string, args ...any) { t.Logf(v, args...) },
	})
	ifErrFailNow(t, err)

	return s
}

// =============================================================================

func Test_Genesis(t *testing.T) {
	t.Log("Given the need to start a new ledger.")
	{
		s := newState(t, 2)

		tip := s.RetrieveLatestBlock()
		if tip.Header.Number != 0 || tip.Header.PrevBlockHash != database.ZeroHash || tip.Header.Nonce != 0 {
			t.Fatalf("\t%s\tShould have the genesis block as the tip.", failed)
		}
		t.Logf("\t%s\tShould have the genesis block as the tip.", success)

		if s.RetrieveGenesis().Hash() != tip.Hash() || len(s.RetrieveBlocks()) != 1 {
			t.Fatalf("\t%s\tShould have only the genesis block.", failed)
		}
		t.Logf("\t%s\tShould have only the genesis block.", success)

		if s.QueryMempoolLength() != 0 || len(s.RetrieveBalances()) != 0 {
			t.Fatalf("\t%s\tShould have an empty mempool and no balances.", failed)
		}
		t.Logf("\t%s\tShould have an empty mempool and no balances.", success)
	}
}

func Test_Difficulty(t *testing.T) {
	t.Log("Given the need to configure the difficulty.")
	{
		if _, err := state.New(state.Config{Difficulty: database.MaxDifficulty + 1}); err == nil {
			t.Fatalf("\t%s\tShould reject a difficulty that can't be solved.", failed)
		}
		t.Logf("\t%s\tShould reject a difficulty that can't be solved.", success)

		for _, difficulty := range []uint{0, 1, 2, 3} {
			s := newState(t, difficulty)

			block, err := s.MineNewBlock(context.Background())
			ifErrFailNow(t, err)

			if !strings.HasPrefix(block.Hash().Hex(), strings.Repeat("0", int(difficulty))) {
				t.Fatalf("\t%s\tShould mine a block with %d leading zeros: %s", failed, difficulty, block.Hash())
			}
			t.Logf("\t%s\tShould mine a block with %d leading zeros.", success, difficulty)
		}
	}
}

func Test_MineAndDrain(t *testing.T) {
	t.Log("Given the need to mine the mempool into a block.")
	{
		s := newState(t, 2)

		aj := newAccount(t, "aj")
		justin := newAccount(t, "justin")

		txs := []database.Tx{
			database.NewTx(aj.PublicKey, justin.PublicKey, 100),
			database.NewTx(justin.PublicKey, aj.PublicKey, 30),
			database.NewTx(aj.PublicKey, justin.PublicKey, 5),
		}
		for _, tx := range txs {
			s.SubmitTransaction(tx)
		}

		if s.BalanceOf(aj.PublicKey) != 0 || s.BalanceOf(justin.PublicKey) != 0 {
			t.Fatalf("\t%s\tShould not apply unmined transactions.", failed)
		}
		t.Logf("\t%s\tShould not apply unmined transactions.", success)

		genesis := s.RetrieveLatestBlock()

		block, err := s.MineNewBlock(context.Background())
		ifErrFailNow(t, err)

		if s.QueryMempoolLength() != 0 {
			t.Fatalf("\t%s\tShould leave the mempool empty.", failed)
		}
		t.Logf("\t%s\tShould leave the mempool empty.", success)

		if len(block.Trans) != len(txs) {
			t.Fatalf("\t%s\tShould have %d transactions, got %d.", failed, len(txs), len(block.Trans))
		}
		for i := range txs {
			if block.Trans[i] != txs[i] {
				t.Fatalf("\t%s\tShould keep the submission order.", failed)
			}
		}
		t.Logf("\t%s\tShould have the transactions in submission order.", success)

		if block.Header.Number != 1 || block.Header.PrevBlockHash != genesis.Hash() {
			t.Fatalf("\t%s\tShould link the block to genesis.", failed)
		}
		t.Logf("\t%s\tShould link the block to genesis.", success)

		if s.RetrieveLatestBlock().Hash() != block.Hash() {
			t.Fatalf("\t%s\tShould make the block the tip.", failed)
		}
		t.Logf("\t%s\tShould make the block the tip.", success)

		if got := s.BalanceOf(aj.PublicKey); got != -75 {
			t.Fatalf("\t%s\tShould have a balance of -75 for aj, got %d.", failed, got)
		}
		if got := s.BalanceOf(justin.PublicKey); got != 75 {
			t.Fatalf("\t%s\tShould have a balance of 75 for justin, got %d.", failed, got)
		}
		t.Logf("\t%s\tShould apply the transactions to the balances.", success)
	}
}

func Test_BalanceConservation(t *testing.T) {
	t.Log("Given the need to move value between two accounts only.")
	{
		s := newState(t, 1)

		sender := newAccount(t, "sender")
		recipient := newAccount(t, "recipient")
		other := newAccount(t, "other")

		s.SubmitTransaction(database.NewTx(other.PublicKey, sender.PublicKey, 1000))
		_, err := s.MineNewBlock(context.Background())
		ifErrFailNow(t, err)

		before := s.RetrieveBalances()

		const amount = 250
		s.SubmitTransaction(database.NewTx(sender.PublicKey, recipient.PublicKey, amount))
		_, err = s.MineNewBlock(context.Background())
		ifErrFailNow(t, err)

		after := s.RetrieveBalances()

		if after[recipient.PublicKey]-before[recipient.PublicKey] != amount {
			t.Fatalf("\t%s\tShould credit the recipient.", failed)
		}
		if after[sender.PublicKey]-before[sender.PublicKey] != -amount {
			t.Fatalf("\t%s\tShould debit the sender.", failed)
		}
		if after[other.PublicKey] != before[other.PublicKey] {
			t.Fatalf("\t%s\tShould not change other accounts.", failed)
		}
		t.Logf("\t%s\tShould change only the two accounts involved.", success)
	}
}

func Test_SelfTransfer(t *testing.T) {
	t.Log("Given the need to handle a transfer to yourself.")
	{
		s := newState(t, 1)
		aj := newAccount(t, "aj")

		s.SubmitTransaction(database.NewTx(aj.PublicKey, aj.PublicKey, 100))
		_, err := s.MineNewBlock(context.Background())
		ifErrFailNow(t, err)

		balances := s.RetrieveBalances()
		balance, exists := balances[aj.PublicKey]
		if !exists || balance != 0 {
			t.Fatalf("\t%s\tShould have a zero net balance entry, got %d, exists %v.", failed, balance, exists)
		}
		t.Logf("\t%s\tShould have a zero net balance entry.", success)
	}
}

func Test_ChainLinks(t *testing.T) {
	t.Log("Given the need to mine a chain of blocks.")
	{
		s := newState(t, 2)
		aj := newAccount(t, "aj")
		justin := newAccount(t, "justin")

		for i := 0; i < 5; i++ {
			if i%2 == 0 {
				s.SubmitTransaction(database.NewTx(aj.PublicKey, justin.PublicKey, uint64(i)))
			}
			_, err := s.MineNewBlock(context.Background())
			ifErrFailNow(t, err)
		}

		blocks := s.RetrieveBlocks()
		if len(blocks) != 6 {
			t.Fatalf("\t%s\tShould have 6 blocks, got %d.", failed, len(blocks))
		}
		t.Logf("\t%s\tShould have 6 blocks.", success)

		for i := 1; i < len(blocks); i++ {
			if blocks[i].Header.Number != uint64(i) || blocks[i].Header.PrevBlockHash != blocks[i-1].Hash() {
				t.Fatalf("\t%s\tShould link block %d to its parent.", failed, i)
			}
			if !database.IsHashSolved(2, blocks[i].Hash()) {
				t.Fatalf("\t%s\tShould solve block %d.", failed, i)
			}
		}
		t.Logf("\t%s\tShould link and solve every block.", success)

		if got := s.BalanceOf(justin.PublicKey); got != 0+2+4 {
			t.Fatalf("\t%s\tShould replay every block into the balances, got %d.", failed, got)
		}
		t.Logf("\t%s\tShould replay every block into the balances.", success)

		if got := s.QueryBlocksByNumber(2, state.QueryLatest); len(got) != 4 {
			t.Fatalf("\t%s\tShould query blocks 2 to 5, got %d.", failed, len(got))
		}
		if got := s.QueryBlocksByAccount(aj.PublicKey); len(got) != 3 {
			t.Fatalf("\t%s\tShould query the 3 blocks for aj, got %d.", failed, len(got))
		}
		t.Logf("\t%s\tShould query the chain.", success)
	}
}

func Test_CancelMining(t *testing.T) {
	t.Log("Given the need to cancel mining without losing transactions.")
	{
		s := newState(t, database.MaxDifficulty)
		aj := newAccount(t, "aj")
		justin := newAccount(t, "justin")

		first := database.NewTx(aj.PublicKey, justin.PublicKey, 1)
		s.SubmitTransaction(first)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := s.MineNewBlock(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("\t%s\tShould return the cancel error: %v", failed, err)
		}
		t.Logf("\t%s\tShould return the cancel error.", success)

		pool := s.RetrieveMempool()
		if len(pool) != 1 || pool[0] != first {
			t.Fatalf("\t%s\tShould put the transaction back in the mempool.", failed)
		}
		t.Logf("\t%s\tShould put the transaction back in the mempool.", success)

		if s.RetrieveLatestBlock().Header.Number != 0 {
			t.Fatalf("\t%s\tShould not write a block.", failed)
		}
		t.Logf("\t%s\tShould not write a block.", success)
	}
}

func Test_ProposeBlock(t *testing.T) {
	const difficulty = 2

	t.Log("Given the need to accept blocks from peers.")
	{
		s := newState(t, difficulty)
		aj := newAccount(t, "aj")
		justin := newAccount(t, "justin")

		tip := s.RetrieveLatestBlock()

		block := database.NewBlock(tip.Header.Number+1, tip.Hash(), database.PlaceholderSeed)
		block.Trans = []database.Tx{database.NewTx(aj.PublicKey, justin.PublicKey, 40)}

		unsolved := block
		for database.IsHashSolved(difficulty, unsolved.Hash()) {
			unsolved.Header.Nonce++
		}
		if err := s.ProposeBlock(unsolved); !errors.Is(err, database.ErrUnsolved) {
			t.Fatalf("\t%s\tShould reject an unsolved block: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject an unsolved block.", success)

		_, err := block.PerformPOW(context.Background(), difficulty, func(string, ...any) {})
		ifErrFailNow(t, err)

		if err := s.ProposeBlock(block); err != nil {
			t.Fatalf("\t%s\tShould accept a solved block: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept a solved block.", success)

		if s.BalanceOf(justin.PublicKey) != 40 || s.RetrieveLatestBlock().Hash() != block.Hash() {
			t.Fatalf("\t%s\tShould apply the peer block.", failed)
		}
		t.Logf("\t%s\tShould apply the peer block.", success)

		if err := s.ProposeBlock(block); !errors.Is(err, database.ErrChainMoved) {
			t.Fatalf("\t%s\tShould reject a block that doesn't extend the tip: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a block that doesn't extend the tip.", success)

		if s.BalanceOf(justin.PublicKey) != 40 {
			t.Fatalf("\t%s\tShould not apply a rejected block.", failed)
		}
		t.Logf("\t%s\tShould not apply a rejected block.", success)
	}
}

func Test_ConcurrentSubmit(t *testing.T) {
	const producers = 4
	const perProducer = 50

	t.Log("Given the need to submit transactions while mining.")
	{
		s := newState(t, 1)
		aj := newAccount(t, "aj")
		justin := newAccount(t, "justin")

		var wg sync.WaitGroup
		wg.Add(producers)
		for i := 0; i < producers; i++ {
			go func() {
				defer wg.Done()
				for j := 0; j < perProducer; j++ {
					s.SubmitTransaction(database.NewTx(aj.PublicKey, justin.PublicKey, 1))
				}
			}()
		}

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

	loop:
		for {
			select {
			case <-done:
				break loop
			default:
				_, err := s.MineNewBlock(context.Background())
				ifErrFailNow(t, err)
			}
		}

		_, err := s.MineNewBlock(context.Background())
		ifErrFailNow(t, err)

		var mined int
		for _, block := range s.RetrieveBlocks() {
			mined += len(block.Trans)
		}

		if mined != producers*perProducer || s.QueryMempoolLength() != 0 {
			t.Fatalf("\t%s\tShould mine every transaction exactly once, got %d.", failed, mined)
		}
		t.Logf("\t%s\tShould mine every transaction exactly once.", success)

		if got := s.BalanceOf(justin.PublicKey); got != producers*perProducer {
			t.Fatalf("\t%s\tShould credit every transaction once, got %d.", failed, got)
		}
		t.Logf("\t%s\tShould credit every transaction once.", success)
	}
}

func Test_SharedGenesis(t *testing.T) {
	t.Log("Given the need for two nodes to agree on the first block.")
	{
		cfg := state.Config{Difficulty: 1, GenesisTime: 1700000000}

		s1, err := state.New(cfg)
		ifErrFailNow(t, err)
		s2, err := state.New(cfg)
		ifErrFailNow(t, err)

		if s1.RetrieveGenesis().Hash() != s2.RetrieveGenesis().Hash() {
			t.Fatalf("\t%s\tShould construct the same genesis block.", failed)
		}
		t.Logf("\t%s\tShould construct the same genesis block.", success)

		blk, err := s1.MineNewBlock(context.Background())
		ifErrFailNow(t, err)

		if err := s2.ProposeBlock(blk); err != nil {
			t.Fatalf("\t%s\tShould accept a block mined by the other node: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept a block mined by the other node.", success)

		if s1.RetrieveLatestBlock().Hash() != s2.RetrieveLatestBlock().Hash() {
			t.Fatalf("\t%s\tShould share the same tip.", failed)
		}
		t.Logf("\t%s\tShould share the same tip.", success)
	}
}

func Test_PeerBlockClearsMempool(t *testing.T) {
	t.Log("Given a transaction shared with two nodes and mined by one of them.")
	{
		cfg := state.Config{Difficulty: 1, GenesisTime: 1700000000}

		s1, err := state.New(cfg)
		ifErrFailNow(t, err)
		s2, err := state.New(cfg)
		ifErrFailNow(t, err)

		aj := newAccount(t, "aj")
		justin := newAccount(t, "justin")
		tx := database.NewTx(aj.PublicKey, justin.PublicKey, 100)

		s1.SubmitTransaction(tx)
		s2.SubmitTransaction(tx)
		s2.SubmitTransaction(tx)

		blk, err := s1.MineNewBlock(context.Background())
		ifErrFailNow(t, err)

		if err := s2.ProposeBlock(blk); err != nil {
			t.Fatalf("\t%s\tShould accept the block from the other node: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept the block from the other node.", success)

		if n := s2.QueryMempoolLength(); n != 1 {
			t.Fatalf("\t%s\tShould only keep the second submission pooled, got %d.", failed, n)
		}
		t.Logf("\t%s\tShould only keep the second submission pooled.", success)

		_, err = s2.MineNewBlock(context.Background())
		ifErrFailNow(t, err)
		_, err = s1.MineNewBlock(context.Background())
		ifErrFailNow(t, err)

		if got := s2.BalanceOf(justin.PublicKey); got != 200 {
			t.Fatalf("\t%s\tShould apply each submission once, got %d.", failed, got)
		}
		if got := s1.BalanceOf(justin.PublicKey); got != 100 {
			t.Fatalf("\t%s\tShould apply the shared transaction once on the miner, got %d.", failed, got)
		}
		t.Logf("\t%s\tShould apply each submission once.", success)
	}
}

func Test_PeerBlockDuringMining(t *testing.T) {
	t.Log("Given a peer block that arrives while the same transaction is being mined.")
	{
		cfg := state.Config{Difficulty: 1, GenesisTime: 1700000000}

		s1, err := state.New(cfg)
		ifErrFailNow(t, err)

		aj := newAccount(t, "aj")
		justin := newAccount(t, "justin")
		tx := database.NewTx(aj.PublicKey, justin.PublicKey, 100)

		s1.SubmitTransaction(tx)
		blk, err := s1.MineNewBlock(context.Background())
		ifErrFailNow(t, err)

		// The peer block is proposed once the candidate has been drained.
		var s2 *state.State
		var proposed bool
		var proposeErr error
		cfg.EvHandler = func(v string, args ...any) {
			if proposed || !strings.HasPrefix(v, "state: MineNewBlock: MINING: perform POW") {
				return
			}
			proposed = true
			proposeErr = s2.ProposeBlock(blk)
		}

		s2, err = state.New(cfg)
		ifErrFailNow(t, err)
		s2.SubmitTransaction(tx)

		_, err = s2.MineNewBlock(context.Background())
		if !errors.Is(err, database.ErrChainMoved) {
			t.Fatalf("\t%s\tShould lose the race to the peer block, got %v.", failed, err)
		}
		t.Logf("\t%s\tShould lose the race to the peer block.", success)

		if proposeErr != nil {
			t.Fatalf("\t%s\tShould accept the peer block: %v", failed, proposeErr)
		}
		t.Logf("\t%s\tShould accept the peer block.", success)

		if n := s2.QueryMempoolLength(); n != 0 {
			t.Fatalf("\t%s\tShould not requeue a transaction the peer block holds, got %d.", failed, n)
		}
		t.Logf("\t%s\tShould not requeue a transaction the peer block holds.", success)

		if got := s2.BalanceOf(justin.PublicKey); got != 100 {
			t.Fatalf("\t%s\tShould apply the transaction once, got %d.", failed, got)
		}
		t.Logf("\t%s\tShould apply the transaction once.", success)
	}
}

func Test_FutureGenesis(t *testing.T) {
	t.Log("Given a genesis time later than the current time.")
	{
		future := uint64(time.Now().Add(24 * time.Hour).Unix())

		if _, err := state.New(state.Config{Difficulty: 1, GenesisTime: future}); err == nil {
			t.Fatalf("\t%s\tShould refuse to start the ledger.", failed)
		}
		t.Logf("\t%s\tShould refuse to start the ledger.", success)

		past := uint64(time.Now().Add(-time.Hour).Unix())

		s, err := state.New(state.Config{Difficulty: 1, GenesisTime: past})
		ifErrFailNow(t, err)

		if _, err := s.MineNewBlock(context.Background()); err != nil {
			t.Fatalf("\t%s\tShould mine on a genesis from the past: %v", failed, err)
		}
		t.Logf("\t%s\tShould mine on a genesis from the past.", success)
	}
}
