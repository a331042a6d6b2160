package fs

import "sync"

// Gate is the reader-writer synchronization construct guarding all shared
// filesystem state: the inode table, the free-block bitmap, and block
// content. Readers (Read, List) run concurrently with each other; writers
// (Create, Write, Delete) get exclusive access.
//
// Construction: a counter protected by mu tracks the active reader cohort.
// The first reader in acquires content on behalf of the whole cohort and
// the last reader out releases it. A writer first takes admission, which
// stops any *new* reader from passing its checkpoint, then takes content,
// which drains once the current cohort has finished.
//
// Fairness contract:
//   - Readers admitted before a writer arrives are allowed to finish.
//   - No new reader is admitted while a writer holds or waits on admission,
//     so a waiting writer is delayed by at most one in-flight reader cohort.
//   - There is NO ordering guarantee among concurrently waiting writers,
//     and no global FIFO between mixed waiting readers and writers: two
//     writers racing for admission are resolved by mutex wake order.
type Gate struct {
	// mu protects activeReaders
	mu            sync.Mutex
	activeReaders int

	// content is held either by the reader cohort (acquired by the first
	// reader, released by the last) or by a single writer.
	content sync.Mutex

	// admission is held by a writer for its whole critical section to block
	// new reader admission.
	admission sync.Mutex
}

// BeginRead admits the caller as a reader. It blocks while a writer holds
// or is draining through the admission checkpoint, then joins the active
// reader cohort.
func (g *Gate) BeginRead() {
	// Checkpoint: pass through admission without keeping it. A writer that
	// owns admission parks the caller here until EndWrite.
	g.admission.Lock()
	g.admission.Unlock()

	g.mu.Lock()
	g.activeReaders++
	if g.activeReaders == 1 {
		// First reader locks content on behalf of the cohort.
		g.content.Lock()
	}
	g.mu.Unlock()
}

// EndRead retires the caller from the reader cohort. The last reader out
// releases content, unblocking a waiting writer.
func (g *Gate) EndRead() {
	g.mu.Lock()
	g.activeReaders--
	if g.activeReaders == 0 {
		g.content.Unlock()
	}
	g.mu.Unlock()
}

// BeginWrite blocks until the caller has exclusive access. New readers are
// shut out immediately; the already-admitted cohort drains first.
func (g *Gate) BeginWrite() {
	g.admission.Lock()
	g.content.Lock()
}

// EndWrite releases exclusive access: content first, then admission, so
// both parked readers and the next writer wake.
func (g *Gate) EndWrite() {
	g.content.Unlock()
	g.admission.Unlock()
}
