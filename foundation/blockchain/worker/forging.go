package worker

import (
	"context"
	"time"

	"github.com/dposlabs/blockchain/foundation/blockchain/slots"
)

// forgingOperations handles the forging of new blocks. Each pass checks
// whether the current slot belongs to one of the delegates armed on this
// node and forges at most one block per slot.
func (w *Worker) forgingOperations() {
	w.evHandler("worker: forgingOperations: G started")
	defer w.evHandler("worker: forgingOperations: G completed")

	ticker := time.NewTicker(forgeCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.runForgingCheck()
		case <-w.shut:
			w.evHandler("worker: forgingOperations: received shut signal")
			return
		}
	}
}

// runForgingCheck forges a block when this node owns the current slot.
func (w *Worker) runForgingCheck() {
	if w.isShutdown() || w.isSyncing() {
		return
	}

	slot := slots.CurrentSlot()
	if slot == w.lastSlot {
		return
	}

	keypairs := w.state.ForgingKeypairs()
	if len(keypairs) == 0 {
		return
	}

	height := w.state.LatestBlock().Height + 1
	list := w.state.DelegateList(height)
	if len(list) == 0 {
		return
	}

	owner := list[int(slot%int64(len(list)))]
	kp, armed := keypairs[owner]
	if !armed {
		return
	}

	// The slot may have passed while this node was busy. Forging for a slot
	// whose window closed would produce a block every peer rejects.
	if slots.CurrentSlot() != slot {
		return
	}

	w.lastSlot = slot

	ctx, cancel := context.WithTimeout(context.Background(), slots.Interval*time.Second)
	defer cancel()

	block, err := w.state.ForgeNewBlock(ctx, kp, slot)
	if err != nil {
		w.evHandler("worker: runForgingCheck: ERROR: %s", err)
		return
	}

	w.evHandler("worker: runForgingCheck: forged block[%s] height[%d] txs[%d]",
		block.ID, block.Height, block.NumberOfTransactions)
}
