// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/ardanlabs/minichain/business/sys/validate"
	"github.com/ardanlabs/minichain/business/web/errs"
	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/state"
	"github.com/ardanlabs/minichain/foundation/blockchain/worker"
	"github.com/ardanlabs/minichain/foundation/events"
	"github.com/ardanlabs/minichain/foundation/nameservice"
	"github.com/ardanlabs/minichain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Net   worker.Broadcaster
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// This provides a channel for receiving events from the blockchain.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	// Starting a ticker to send a ping message over the websocket.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	// Block waiting for events from the blockchain or ticker.
	for {
		select {
		case msg, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitWalletTransaction adds new user transactions to the mempool.
func (h Handlers) SubmitWalletTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var stx submitTx
	if err := web.Decode(r, &stx); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tx, err := stx.toDBTx()
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("add user tran", "traceid", v.TraceID, "from", tx.From, "to", tx.To, "value", tx.Value)
	h.State.SubmitWalletTransaction(tx)

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transaction added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// MineBlock mines the next block from the current mempool and waits for it.
// The request context bounds the search, a cancelled request puts the
// transactions back in the mempool.
func (h Handlers) MineBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	blk, err := h.State.MineNewBlock(ctx)
	if err != nil {
		if errors.Is(err, database.ErrChainMoved) {
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return errs.NewTrusted(err, http.StatusServiceUnavailable)
	}

	h.Log.Infow("mined block", "traceid", v.TraceID, "number", blk.Header.Number, "hash", blk.Hash())

	if h.Net != nil {
		if err := h.Net.BroadcastBlock(blk); err != nil {
			h.Log.Infow("mined block", "traceid", v.TraceID, "broadcast", err)
		}
	}

	return web.Respond(ctx, w, h.toBlock(blk), http.StatusOK)
}

// Genesis returns the genesis block.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, h.toBlock(gen), http.StatusOK)
}

// Tip returns the latest block in the chain.
func (h Handlers) Tip(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latest := h.State.RetrieveLatestBlock()
	return web.Respond(ctx, w, h.toBlock(latest), http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	mempool := h.State.RetrieveMempool()

	trans := make([]tx, len(mempool))
	for i, tran := range mempool {
		trans[i] = h.toTx(tran)
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// Balances returns the current balances for all accounts or one account.
// An account that never appeared in a mined block has a balance of zero.
func (h Handlers) Balances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	acct := web.Param(r, "account")

	var bals map[database.PublicKey]int64
	switch acct {
	case "":
		bals = h.State.RetrieveBalances()

	default:
		pk, err := database.ToPublicKey(acct)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		bals = map[database.PublicKey]int64{pk: h.State.BalanceOf(pk)}
	}

	out := make([]balance, 0, len(bals))
	for pk, bal := range bals {
		out = append(out, balance{
			Account: pk,
			Name:    h.NS.Lookup(pk),
			Balance: bal,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Account.Compare(out[j].Account) < 0 })

	resp := balances{
		LatestBlock: h.State.RetrieveLatestBlock().Hash(),
		Uncommitted: h.State.QueryMempoolLength(),
		Balances:    out,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlocksByAccount returns the blocks holding transactions for the account.
// Without an account every block is returned.
func (h Handlers) BlocksByAccount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var dbBlocks []database.Block

	switch acct := web.Param(r, "account"); acct {
	case "":
		dbBlocks = h.State.RetrieveBlocks()

	default:
		pk, err := database.ToPublicKey(acct)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		dbBlocks = h.State.QueryBlocksByAccount(pk)
	}

	if len(dbBlocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	blocks := make([]block, len(dbBlocks))
	for i, blk := range dbBlocks {
		blocks[i] = h.toBlock(blk)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// =============================================================================

func (h Handlers) toTx(tran database.Tx) tx {
	return tx{
		From:     tran.From,
		FromName: h.NS.Lookup(tran.From),
		To:       tran.To,
		ToName:   h.NS.Lookup(tran.To),
		Value:    tran.Value,
	}
}

func (h Handlers) toBlock(blk database.Block) block {
	trans := make([]tx, len(blk.Trans))
	for i, tran := range blk.Trans {
		trans[i] = h.toTx(tran)
	}

	return block{
		Number:        blk.Header.Number,
		Hash:          blk.Hash(),
		PrevBlockHash: blk.Header.PrevBlockHash,
		ContentDigest: blk.Header.ContentDigest,
		TimeStamp:     blk.Header.TimeStamp,
		Nonce:         blk.Header.Nonce,
		Transactions:  trans,
	}
}
