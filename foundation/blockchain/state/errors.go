package state

import "fmt"

// SlotAssignmentError reports a block whose generator does not own the slot
// the block timestamp falls in.
type SlotAssignmentError struct {
	Height             uint64
	Slot               int64
	GeneratorPublicKey string
}

// Error implements the error interface.
func (e *SlotAssignmentError) Error() string {
	return fmt.Sprintf("delegate %q does not own slot %d at height %d", e.GeneratorPublicKey, e.Slot, e.Height)
}
