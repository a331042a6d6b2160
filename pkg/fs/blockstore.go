package fs

import (
	"fmt"
	"os"
)

// BlockStore provides fixed-size block I/O over a single backing file.
// Block i occupies byte offset i*BlockSize.
//
// Durability is whatever the OS gives an unsynced file: there is no
// explicit flush or fsync. That is a documented non-goal; the inode table
// and bitmap are in-memory only, so the backing file is never read back
// as authoritative state across restarts.
//
// Thread safety: BlockStore performs no locking of its own. All calls are
// made under the manager's Gate, which serializes conflicting access.
type BlockStore struct {
	file   *os.File
	blocks int
}

// OpenBlockStore opens (creating if necessary) the backing file and sizes
// it to hold exactly blocks blocks.
func OpenBlockStore(path string, blocks int) (*BlockStore, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("open backing file: %w", err)
	}

	if err := file.Truncate(int64(blocks) * BlockSize); err != nil {
		file.Close()
		return nil, fmt.Errorf("size backing file: %w", err)
	}

	return &BlockStore{file: file, blocks: blocks}, nil
}

// ReadBlock returns the full BlockSize bytes of block index.
func (s *BlockStore) ReadBlock(index int) ([]byte, error) {
	if err := s.checkIndex(index); err != nil {
		return nil, err
	}

	buf := make([]byte, BlockSize)
	if _, err := s.file.ReadAt(buf, int64(index)*BlockSize); err != nil {
		return nil, fmt.Errorf("read block %d: %w", index, err)
	}
	return buf, nil
}

// WriteBlock writes data into block index. Payloads shorter than BlockSize
// are zero-padded to the full block; longer payloads are an error.
func (s *BlockStore) WriteBlock(index int, data []byte) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if len(data) > BlockSize {
		return fmt.Errorf("write block %d: payload %d bytes exceeds block size %d", index, len(data), BlockSize)
	}

	buf := make([]byte, BlockSize)
	copy(buf, data)

	if _, err := s.file.WriteAt(buf, int64(index)*BlockSize); err != nil {
		return fmt.Errorf("write block %d: %w", index, err)
	}
	return nil
}

// ZeroBlock overwrites block index with zero bytes. Freed blocks must be
// zeroed so no content leaks into a later owner of the block.
func (s *BlockStore) ZeroBlock(index int) error {
	return s.WriteBlock(index, nil)
}

// Close closes the backing file.
func (s *BlockStore) Close() error {
	return s.file.Close()
}

func (s *BlockStore) checkIndex(index int) error {
	if index < 0 || index >= s.blocks {
		return fmt.Errorf("block index %d out of range [0, %d)", index, s.blocks)
	}
	return nil
}
