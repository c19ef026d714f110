// Package worker implements the background operations of the node, the most
// important being the forging loop that watches the slot clock.
package worker

import (
	"sync"
	"time"

	"github.com/dposlabs/blockchain/foundation/blockchain/state"
)

// forgeCheckInterval is how often the forging loop checks whether the current
// slot belongs to one of the node's armed delegates. It is well under the
// slot interval so a slot is never missed.
const forgeCheckInterval = time.Second

// Worker manages the DPOS workflows for the blockchain.
type Worker struct {
	state      *state.State
	wg         sync.WaitGroup
	shut       chan struct{}
	evHandler  state.EventHandler
	lastSlot   int64
	syncing    bool
	syncingMu  sync.RWMutex
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, evHandler state.EventHandler) {
	w := Worker{
		state:     st,
		shut:      make(chan struct{}),
		evHandler: evHandler,
	}

	// Register this worker with the state package.
	st.Worker(&w)

	// Load the set of operations we need to run.
	operations := []func(){
		w.forgingOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	close(w.shut)
	w.wg.Wait()
}

// Sync marks the node as catching up with the network. Forging pauses until
// the sync completes so the node never forges on a stale head.
func (w *Worker) Sync() {
	w.syncingMu.Lock()
	w.syncing = true
	w.syncingMu.Unlock()

	defer func() {
		w.syncingMu.Lock()
		w.syncing = false
		w.syncingMu.Unlock()
	}()

	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")
}

// isSyncing reports whether a sync is in flight.
func (w *Worker) isSyncing() bool {
	w.syncingMu.RLock()
	defer w.syncingMu.RUnlock()

	return w.syncing
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
