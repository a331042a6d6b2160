package fs

// AllocTbl is the free-block bitmap: one flag per block index, true = free.
//
// Policy is first-fit-by-index: Allocate returns the lowest free index.
// Two successive Allocate calls need not return adjacent indices once the
// bitmap is fragmented, which is why a multi-block write goes through
// FindRun/AllocateAt instead (see Manager.Write).
//
// Thread safety: none of its own; all calls happen under the Gate.
type AllocTbl struct {
	free []bool
}

// NewAllocTbl returns a bitmap of n blocks, all free.
func NewAllocTbl(n int) *AllocTbl {
	free := make([]bool, n)
	for i := range free {
		free[i] = true
	}
	return &AllocTbl{free: free}
}

// CountFree returns the number of free blocks.
func (t *AllocTbl) CountFree() int {
	count := 0
	for _, isFree := range t.free {
		if isFree {
			count++
		}
	}
	return count
}

// Allocate marks the lowest free block as used and returns its index.
// Returns NoBlock when no block is free.
func (t *AllocTbl) Allocate() int {
	for i, isFree := range t.free {
		if isFree {
			t.free[i] = false
			return i
		}
	}
	return NoBlock
}

// AllocateAt marks block index as used. Returns false if the block is
// already used or out of range.
func (t *AllocTbl) AllocateAt(index int) bool {
	if index < 0 || index >= len(t.free) || !t.free[index] {
		return false
	}
	t.free[index] = false
	return true
}

// Free marks block index as free. The caller is responsible for zeroing
// the block's content, per the BlockStore contract.
func (t *AllocTbl) Free(index int) {
	if index >= 0 && index < len(t.free) {
		t.free[index] = true
	}
}

// FindRun returns the lowest index starting a run of n consecutive free
// blocks, treating the indices listed in also as free. It does not mutate
// the bitmap. Returns NoBlock when no such run exists, even if the raw
// free count would suffice under non-contiguous allocation.
//
// The also parameter lets Write plan a run over the blocks the target
// file currently owns, before any of them is actually released.
func (t *AllocTbl) FindRun(n int, also ...int) int {
	if n <= 0 || n > len(t.free) {
		return NoBlock
	}

	extra := make(map[int]bool, len(also))
	for _, i := range also {
		extra[i] = true
	}

	run := 0
	for i := range t.free {
		if t.free[i] || extra[i] {
			run++
			if run == n {
				return i - n + 1
			}
		} else {
			run = 0
		}
	}
	return NoBlock
}
