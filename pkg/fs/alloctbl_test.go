package fs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocTblFirstFit(t *testing.T) {
	tbl := NewAllocTbl(4)
	require.Equal(t, 4, tbl.CountFree())

	require.Equal(t, 0, tbl.Allocate())
	require.Equal(t, 1, tbl.Allocate())
	require.Equal(t, 2, tbl.CountFree())

	// Freeing a low block makes it the next candidate again.
	tbl.Free(0)
	require.Equal(t, 0, tbl.Allocate())
}

// Successive Allocate calls give no contiguity guarantee: with a hole
// below the tail of the bitmap, two calls straddle the occupied block.
func TestAllocTblNonContiguousSequence(t *testing.T) {
	tbl := NewAllocTbl(4)
	for i := 0; i < 3; i++ {
		tbl.Allocate()
	}
	tbl.Free(0)
	tbl.Free(2)

	first := tbl.Allocate()
	second := tbl.Allocate()
	require.Equal(t, 0, first)
	require.Equal(t, 2, second)
}

func TestAllocTblExhaustion(t *testing.T) {
	tbl := NewAllocTbl(2)
	require.Equal(t, 0, tbl.Allocate())
	require.Equal(t, 1, tbl.Allocate())
	require.Equal(t, NoBlock, tbl.Allocate())
	require.Zero(t, tbl.CountFree())
}

func TestAllocTblAllocateAt(t *testing.T) {
	tbl := NewAllocTbl(3)
	require.True(t, tbl.AllocateAt(1))
	require.False(t, tbl.AllocateAt(1), "double allocation")
	require.False(t, tbl.AllocateAt(3), "out of range")
	require.False(t, tbl.AllocateAt(-1), "negative index")
	require.Equal(t, 2, tbl.CountFree())
}

func TestAllocTblFindRun(t *testing.T) {
	tbl := NewAllocTbl(6)
	// Occupy block 2, leaving runs [0,1] and [3,4,5].
	require.True(t, tbl.AllocateAt(2))

	require.Equal(t, 0, tbl.FindRun(2))
	require.Equal(t, 3, tbl.FindRun(3))
	require.Equal(t, NoBlock, tbl.FindRun(4), "free count suffices but no run does")
	require.Equal(t, NoBlock, tbl.FindRun(7), "longer than the bitmap")
	require.Equal(t, NoBlock, tbl.FindRun(0))

	// FindRun must not mutate the bitmap.
	require.Equal(t, 5, tbl.CountFree())
}

func TestAllocTblFindRunWithOwnedBlocks(t *testing.T) {
	tbl := NewAllocTbl(5)
	// A file owns blocks 1 and 2; block 4 belongs to someone else.
	require.True(t, tbl.AllocateAt(1))
	require.True(t, tbl.AllocateAt(2))
	require.True(t, tbl.AllocateAt(4))

	// Without credit for its own blocks there is no run of 4.
	require.Equal(t, NoBlock, tbl.FindRun(4))

	// Counting the file's blocks as free, the run [0,3] opens up.
	require.Equal(t, 0, tbl.FindRun(4, 1, 2))
}
