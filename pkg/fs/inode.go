package fs

// Filesystem geometry. These mirror the layout the backing file is sized
// for and are fixed at compile time.
const (
	// BlockSize is the size of one block in bytes.
	BlockSize = 128

	// MaxBlocks is the total block capacity of the store.
	MaxBlocks = 10

	// MaxFiles is the inode table capacity.
	MaxFiles = 5

	// MaxNameLen is the maximum file name length in bytes.
	MaxNameLen = 11

	// NoBlock is the sentinel "unallocated" block index.
	NoBlock = -1
)

// FileEntry is one inode: a name mapped to the byte size of its content
// and the index of its first block.
//
// Invariant: Size == 0 exactly when FirstBlock == NoBlock. A file's
// content occupies the contiguous run FirstBlock .. FirstBlock+n-1 where
// n = ceil(Size/BlockSize); Write only ever hands a file a contiguous run,
// so the pair (FirstBlock, Size) fully addresses the content.
//
// Entries are owned by the inode table and only touched inside a Gate
// critical section; they are never handed out to callers.
type FileEntry struct {
	Name       string
	Size       int
	FirstBlock int
}

// blocks returns the indices of the blocks the entry currently owns.
func (e *FileEntry) blocks() []int {
	if e.FirstBlock == NoBlock || e.Size == 0 {
		return nil
	}
	n := (e.Size + BlockSize - 1) / BlockSize
	owned := make([]int, n)
	for i := range owned {
		owned[i] = e.FirstBlock + i
	}
	return owned
}

// inodeTable is the fixed-capacity set of file entries. A nil slot is
// empty and eligible for reuse.
type inodeTable struct {
	entries [MaxFiles]*FileEntry
}

// find returns the live entry with the given name, or nil.
func (t *inodeTable) find(name string) *FileEntry {
	for _, entry := range t.entries {
		if entry != nil && entry.Name == name {
			return entry
		}
	}
	return nil
}

// insert places entry in the first empty slot. Returns false if the table
// is full. Name validation and uniqueness are the caller's concern.
func (t *inodeTable) insert(entry *FileEntry) bool {
	for i, slot := range t.entries {
		if slot == nil {
			t.entries[i] = entry
			return true
		}
	}
	return false
}

// remove clears the slot holding entry.
func (t *inodeTable) remove(entry *FileEntry) {
	for i, slot := range t.entries {
		if slot == entry {
			t.entries[i] = nil
			return
		}
	}
}

// names returns the live file names in table order.
func (t *inodeTable) names() []string {
	names := make([]string, 0, MaxFiles)
	for _, entry := range t.entries {
		if entry != nil {
			names = append(names, entry.Name)
		}
	}
	return names
}

// count returns the number of live entries.
func (t *inodeTable) count() int {
	n := 0
	for _, entry := range t.entries {
		if entry != nil {
			n++
		}
	}
	return n
}
