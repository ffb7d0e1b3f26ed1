package worker_test

import (
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/minichain/foundation/blockchain/account"
	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/state"
	"github.com/ardanlabs/minichain/foundation/blockchain/worker"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

type recorder struct {
	mu     sync.Mutex
	txs    []database.Tx
	blocks []database.Block
}

func (r *recorder) BroadcastTx(tx database.Tx) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.txs = append(r.txs, tx)
	return nil
}

func (r *recorder) BroadcastBlock(block database.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.blocks = append(r.blocks, block)
	return nil
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.txs), len(r.blocks)
}

func waitFor(fn func() bool) bool {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if fn() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// =============================================================================

func Test_AutoMine(t *testing.T) {
	t.Log("Given the need to mine wallet transactions in the background.")
	{
		ev := func(v string, args ...any) { t.Logf(v, args...) }

		st, err := state.New(state.Config{Difficulty: 1, AutoMine: true, EvHandler: ev})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to construct the state.", success)

		rec := recorder{}
		w := worker.Run(st, &rec, ev)
		defer st.Shutdown()

		if st.Worker != w {
			t.Fatalf("\t%s\tShould register the worker with the state.", failed)
		}
		t.Logf("\t%s\tShould register the worker with the state.", success)

		from, err := account.New("kennedy")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create an account: %v", failed, err)
		}
		to, err := account.New("pavel")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create an account: %v", failed, err)
		}

		st.SubmitWalletTransaction(database.NewTx(from.PublicKey, to.PublicKey, 10))

		mined := waitFor(func() bool { return st.BalanceOf(to.PublicKey) == 10 })
		if !mined {
			t.Fatalf("\t%s\tShould mine the transaction into a block.", failed)
		}
		t.Logf("\t%s\tShould mine the transaction into a block.", success)

		if st.BalanceOf(from.PublicKey) != -10 || st.QueryMempoolLength() != 0 {
			t.Fatalf("\t%s\tShould apply the transfer and drain the mempool.", failed)
		}
		t.Logf("\t%s\tShould apply the transfer and drain the mempool.", success)

		shared := waitFor(func() bool {
			txs, blocks := rec.counts()
			return txs == 1 && blocks == 1
		})
		if !shared {
			t.Fatalf("\t%s\tShould broadcast the transaction and the mined block.", failed)
		}
		t.Logf("\t%s\tShould broadcast the transaction and the mined block.", success)
	}
}

func Test_NoBroadcaster(t *testing.T) {
	t.Log("Given the need to run a node without peers.")
	{
		ev := func(v string, args ...any) { t.Logf(v, args...) }

		st, err := state.New(state.Config{Difficulty: 0, AutoMine: true, EvHandler: ev})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
		}
		worker.Run(st, nil, ev)
		defer st.Shutdown()

		from, _ := account.New("kennedy")
		to, _ := account.New("pavel")
		st.SubmitWalletTransaction(database.NewTx(from.PublicKey, to.PublicKey, 3))

		if !waitFor(func() bool { return st.RetrieveLatestBlock().Header.Number == 1 }) {
			t.Fatalf("\t%s\tShould mine the block without a broadcaster.", failed)
		}
		t.Logf("\t%s\tShould mine the block without a broadcaster.", success)
	}
}

func Test_ShutdownIdle(t *testing.T) {
	t.Log("Given the need to shut down an idle worker.")
	{
		st, err := state.New(state.Config{Difficulty: 1})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
		}
		worker.Run(st, nil, func(string, ...any) {})

		done := make(chan struct{})
		go func() {
			st.Shutdown()
			close(done)
		}()

		select {
		case <-done:
			t.Logf("\t%s\tShould shut down without blocking.", success)
		case <-time.After(5 * time.Second):
			t.Fatalf("\t%s\tShould shut down without blocking.", failed)
		}
	}
}
