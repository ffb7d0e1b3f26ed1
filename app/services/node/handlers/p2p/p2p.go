// Package p2p handles the lines peers send over the TCP transport.
package p2p

import (
	"errors"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/state"
	"github.com/ardanlabs/minichain/foundation/network"
	"go.uber.org/zap"
)

// Handlers manages the messages received from peers.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Line decodes a single line received from a peer and acts on it. Anything
// that isn't a known message is logged as received.
func (h Handlers) Line(conn *network.Conn, line []byte) {
	m, err := network.Decode(line)
	if err != nil {
		h.Log.Infow("p2p", "from", conn.Addr(), "raw", string(line))
		return
	}

	switch m.Type {
	case network.TypePing:
		data, err := network.NewPong().Encode()
		if err != nil {
			h.Log.Errorw("p2p", "from", conn.Addr(), "ERROR", err)
			return
		}
		if _, err := conn.Write(data); err != nil {
			h.Log.Infow("p2p", "from", conn.Addr(), "pong", err)
		}

	case network.TypePong:
		h.Log.Infow("p2p", "from", conn.Addr(), "status", "pong received")

	case network.TypeTx:
		h.Log.Infow("p2p", "from", conn.Addr(), "tx", m.Tx)
		h.State.SubmitNodeTransaction(*m.Tx)

	case network.TypeBlock:
		if err := h.State.ProposeBlock(*m.Block); err != nil {
			if errors.Is(err, database.ErrChainMoved) {
				h.Log.Infow("p2p", "from", conn.Addr(), "number", m.Block.Header.Number, "status", "chain moved")
				return
			}
			h.Log.Infow("p2p", "from", conn.Addr(), "number", m.Block.Header.Number, "rejected", err)
			return
		}
		h.Log.Infow("p2p", "from", conn.Addr(), "number", m.Block.Header.Number, "status", "accepted")
	}
}
