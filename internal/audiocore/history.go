package audiocore

import (
	"math"
	"sync"
)

// historySlot pairs a stored chunk with an explicit occupancy flag, so a
// chunk legitimately timestamped at the epoch is distinguishable from a
// never-written slot.
type historySlot struct {
	chunk    AudioChunk
	occupied bool
}

// HistoryLedger is a fixed-capacity circular log of recently delivered
// chunks, queryable by timestamp range. It always holds at most the most
// recent capacity chunks ever appended; the write cursor overwrites the
// oldest entry.
//
// The ledger is mutated only by the consumer goroutine. Its mutex serializes
// appends against queries but is never taken on the producer thread.
type HistoryLedger struct {
	mu         sync.Mutex
	slots      []historySlot
	writeIndex int
}

// NewHistoryLedger creates a ledger holding up to capacity chunks.
func NewHistoryLedger(capacity int) *HistoryLedger {
	if capacity <= 0 {
		capacity = 1
	}
	return &HistoryLedger{
		slots: make([]historySlot, capacity),
	}
}

// Append stores a copy of the chunk at the write cursor, overwriting the
// oldest entry, and advances the cursor circularly. Consumer-side only.
func (h *HistoryLedger) Append(chunk AudioChunk) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.slots[h.writeIndex] = historySlot{chunk: chunk, occupied: true}
	h.writeIndex = (h.writeIndex + 1) % len(h.slots)
}

// Query returns all stored chunks whose start timestamp falls in the
// half-open interval [startNs, endNs), in slot order.
func (h *HistoryLedger) Query(startNs, endNs int64) []AudioChunk {
	h.mu.Lock()
	defer h.mu.Unlock()

	var result []AudioChunk
	for i := range h.slots {
		slot := &h.slots[i]
		if !slot.occupied {
			continue
		}
		if slot.chunk.StartNs >= startNs && slot.chunk.StartNs < endNs {
			result = append(result, slot.chunk)
		}
	}
	return result
}

// QueryFrom returns all stored chunks starting at or after startNs.
func (h *HistoryLedger) QueryFrom(startNs int64) []AudioChunk {
	return h.Query(startNs, math.MaxInt64)
}

// AvailableRange returns the oldest start and newest end timestamp over all
// stored chunks, or (0, 0) when the ledger is empty.
func (h *HistoryLedger) AvailableRange() (oldestNs, newestNs int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	oldest := int64(math.MaxInt64)
	newest := int64(0)
	found := false

	for i := range h.slots {
		slot := &h.slots[i]
		if !slot.occupied {
			continue
		}
		found = true
		if slot.chunk.StartNs < oldest {
			oldest = slot.chunk.StartNs
		}
		if slot.chunk.EndNs > newest {
			newest = slot.chunk.EndNs
		}
	}

	if !found {
		return 0, 0
	}
	return oldest, newest
}

// Len returns the number of occupied slots.
func (h *HistoryLedger) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	count := 0
	for i := range h.slots {
		if h.slots[i].occupied {
			count++
		}
	}
	return count
}

// Capacity returns the fixed slot count.
func (h *HistoryLedger) Capacity() int {
	return len(h.slots)
}
