package worker

import (
	"github.com/ardanlabs/minichain/foundation/blockchain/database"
)

// shareTxOperations handles sharing new wallet transactions.
func (w *Worker) shareTxOperations() {
	w.evHandler("worker: shareTxOperations: G started")
	defer w.evHandler("worker: shareTxOperations: G completed")

	for {
		select {
		case tx := <-w.txSharing:
			if !w.isShutdown() {
				w.runShareTxOperation(tx)
			}
		case <-w.shut:
			w.evHandler("worker: shareTxOperations: received shut signal")
			return
		}
	}
}

// runShareTxOperation announces a new wallet transaction to the peers.
func (w *Worker) runShareTxOperation(tx database.Tx) {
	w.evHandler("worker: runShareTxOperation: started")
	defer w.evHandler("worker: runShareTxOperation: completed")

	if w.broadcaster == nil {
		return
	}

	if err := w.broadcaster.BroadcastTx(tx); err != nil {
		w.evHandler("worker: runShareTxOperation: WARNING: %s", err)
	}
}
