package fs

import "fmt"

// Manager is the filesystem facade: a flat namespace of up to MaxFiles
// files stored in MaxBlocks fixed-size blocks inside one backing file.
//
// Shared state (inode table, free-block bitmap, block content) is a
// process-lifetime singleton resource, but the Manager itself is an
// explicit instance: construct it once at startup and pass the handle to
// every connection handler. There is no package-level instance and no
// global lookup.
//
// Thread safety:
// Every operation funnels through one Gate. Create, Write and Delete are
// writers; Read, List and Stats are readers. Metadata and content live
// under the same gate instance, so a reader never observes a partially
// applied mutation of either. The gate is released on every exit path,
// error or not, via deferred release.
//
// Allocation model:
// A file records only its first block, so a write is stored as one
// contiguous run of blocks. Write plans the run before touching any
// state and fails with ErrNoSpace when no contiguous run of the needed
// length exists, even if the raw free count would suffice. Defragmentation
// is not performed.
type Manager struct {
	gate  Gate
	store *BlockStore
	alloc *AllocTbl
	table inodeTable
}

// Stats is a point-in-time snapshot of filesystem occupancy.
type Stats struct {
	Files      int
	FreeBlocks int
}

// New creates a Manager over the backing file at path. The file is
// created if absent and sized to MaxBlocks*BlockSize bytes. The inode
// table and bitmap start empty: any block bytes left by a previous
// process are stale and unreachable until overwritten (metadata
// durability is a non-goal).
func New(path string) (*Manager, error) {
	store, err := OpenBlockStore(path, MaxBlocks)
	if err != nil {
		return nil, err
	}

	return &Manager{
		store: store,
		alloc: NewAllocTbl(MaxBlocks),
	}, nil
}

// Close releases the backing file. No gate discipline: callers must not
// race Close with in-flight operations.
func (m *Manager) Close() error {
	return m.store.Close()
}

// Create adds an empty file named name.
//
// Fails with ErrInvalidName if name is empty or longer than MaxNameLen
// bytes, ErrExists if the name is taken, ErrNoSpace if the table is full.
func (m *Manager) Create(name string) error {
	m.gate.BeginWrite()
	defer m.gate.EndWrite()

	if name == "" {
		return errInvalidName(name, "File name is empty.")
	}
	if len(name) > MaxNameLen {
		return errInvalidName(name, "File name is longer than 11 characters.")
	}
	if m.table.find(name) != nil {
		return errExists(name)
	}

	entry := &FileEntry{Name: name, Size: 0, FirstBlock: NoBlock}
	if !m.table.insert(entry) {
		return errNoSpace("Maximum file limit reached.")
	}
	return nil
}

// Read returns the full content of the named file. An empty file yields
// an empty (non-nil) byte slice. Fails with ErrNotFound if absent.
func (m *Manager) Read(name string) ([]byte, error) {
	m.gate.BeginRead()
	defer m.gate.EndRead()

	entry := m.table.find(name)
	if entry == nil {
		return nil, errNotFound(name)
	}
	if entry.Size == 0 || entry.FirstBlock == NoBlock {
		return []byte{}, nil
	}

	data := make([]byte, 0, entry.Size)
	for _, index := range entry.blocks() {
		block, err := m.store.ReadBlock(index)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", name, err)
		}
		data = append(data, block...)
	}
	return data[:entry.Size], nil
}

// Write replaces the content of the named file with data.
//
// The capacity check runs before any state is mutated: if the write needs
// more blocks than are free (counting the blocks the file already owns),
// or no contiguous run of the needed length exists, Write fails with
// ErrNoSpace and the file's existing content, the bitmap and the table
// are all left untouched.
//
// On success the file's old blocks are zeroed and released, a fresh
// contiguous run is allocated, and the entry is updated only after every
// block has been written. The entry is never left pointing at blocks that
// were not fully written.
func (m *Manager) Write(name string, data []byte) error {
	m.gate.BeginWrite()
	defer m.gate.EndWrite()

	entry := m.table.find(name)
	if entry == nil {
		return errNotFound(name)
	}

	numBlocks := (len(data) + BlockSize - 1) / BlockSize
	owned := entry.blocks()

	// Pre-checks, before any mutation.
	if numBlocks > m.alloc.CountFree()+len(owned) {
		return errNoSpace("File too large.")
	}
	start := NoBlock
	if numBlocks > 0 {
		// The run is planned over the current bitmap plus the blocks this
		// file will give back, so the file's own blocks can be reused.
		start = m.alloc.FindRun(numBlocks, owned...)
		if start == NoBlock {
			return errNoSpace("No contiguous run of free blocks available.")
		}
	}

	// Release the old content. Zero before returning a block to the pool
	// so no residual bytes leak into a later owner.
	for _, index := range owned {
		if err := m.store.ZeroBlock(index); err != nil {
			return fmt.Errorf("write %q: zero old block: %w", name, err)
		}
		m.alloc.Free(index)
	}

	if numBlocks == 0 {
		entry.Size = 0
		entry.FirstBlock = NoBlock
		return nil
	}

	// Claim the planned run one block at a time. The pre-check guarantees
	// this succeeds, but a failure still rolls back every block taken in
	// this call rather than leaving a half-claimed run.
	allocated := make([]int, 0, numBlocks)
	for i := 0; i < numBlocks; i++ {
		index := start + i
		if !m.alloc.AllocateAt(index) {
			for _, taken := range allocated {
				m.alloc.Free(taken)
			}
			entry.Size = 0
			entry.FirstBlock = NoBlock
			return errNoSpace("No free blocks available.")
		}
		allocated = append(allocated, index)
	}

	// Write the content across the run, then commit the entry.
	for i, index := range allocated {
		chunk := data[i*BlockSize : min(len(data), (i+1)*BlockSize)]
		if err := m.store.WriteBlock(index, chunk); err != nil {
			// The old content is already gone; release this call's blocks
			// and leave the entry empty so it never references blocks that
			// were not fully written.
			for _, taken := range allocated {
				m.store.ZeroBlock(taken)
				m.alloc.Free(taken)
			}
			entry.Size = 0
			entry.FirstBlock = NoBlock
			return fmt.Errorf("write %q: block %d: %w", name, index, err)
		}
	}

	entry.FirstBlock = start
	entry.Size = len(data)
	return nil
}

// Delete removes the named file, zeroing and releasing its blocks.
// Repeating Delete on the same name fails with ErrNotFound, not a silent
// success.
func (m *Manager) Delete(name string) error {
	m.gate.BeginWrite()
	defer m.gate.EndWrite()

	entry := m.table.find(name)
	if entry == nil {
		return errNotFound(name)
	}

	for _, index := range entry.blocks() {
		if err := m.store.ZeroBlock(index); err != nil {
			return fmt.Errorf("delete %q: zero block: %w", name, err)
		}
		m.alloc.Free(index)
	}

	m.table.remove(entry)
	return nil
}

// List returns the live file names in table order.
func (m *Manager) List() []string {
	m.gate.BeginRead()
	defer m.gate.EndRead()

	return m.table.names()
}

// Stats reports current occupancy. Used by the server's periodic stats
// logging.
func (m *Manager) Stats() Stats {
	m.gate.BeginRead()
	defer m.gate.EndRead()

	return Stats{
		Files:      m.table.count(),
		FreeBlocks: m.alloc.CountFree(),
	}
}
