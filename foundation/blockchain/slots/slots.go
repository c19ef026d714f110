// Package slots converts wall-clock time into the discrete slot numbers that
// drive forging. Every timing decision in the node goes through these
// functions so all nodes agree on slot boundaries given synchronized clocks.
package slots

import "time"

// Interval is the fixed duration of a single forging slot in seconds. At most
// one block may be produced per slot.
const Interval = 10

// epoch is the fixed network epoch. Timestamps on the chain are seconds
// since this moment.
var epoch = time.Date(2014, time.May, 2, 0, 0, 0, 0, time.UTC)

// Now returns the current chain timestamp, in seconds since the network epoch.
func Now() int64 {
	return Time(time.Now().UTC())
}

// Time converts the specified wall-clock time to a chain timestamp.
func Time(t time.Time) int64 {
	return int64(t.Sub(epoch) / time.Second)
}

// RealTime converts a chain timestamp back to wall-clock time.
func RealTime(timestamp int64) time.Time {
	return epoch.Add(time.Duration(timestamp) * time.Second)
}

// SlotNumber returns the slot a chain timestamp falls in.
func SlotNumber(timestamp int64) int64 {
	return timestamp / Interval
}

// CurrentSlot returns the slot for the current time.
func CurrentSlot() int64 {
	return SlotNumber(Now())
}

// SlotTime returns the chain timestamp at which the specified slot begins.
func SlotTime(slot int64) int64 {
	return slot * Interval
}

// NextSlot returns the slot following the current one.
func NextSlot() int64 {
	return CurrentSlot() + 1
}

// LastSlot returns the slot one full round of delegateCount slots ahead of
// the specified slot. It bounds the window a forger scans for its own slot.
func LastSlot(slot int64, delegateCount int) int64 {
	return slot + int64(delegateCount)
}
