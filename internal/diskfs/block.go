package diskfs

import "github.com/pkg/errors"

// lastBlock walks the chain from first and returns the offset of its final
// block, matching get_last_block. A visited set guards against a corrupt
// cyclic chain.
func (fs *FS) lastBlock(first Offset) (Offset, error) {
	visited := make(map[Offset]bool)
	o := first
	for {
		if visited[o] {
			return 0, fs.fail(ErrBadTag, errors.Errorf("cycle detected in block chain at offset %d", o))
		}
		visited[o] = true

		b := fs.getDataBlock(o)
		if b.Next == 0 {
			return o, nil
		}
		o = b.Next
	}
}

// countBlocks returns the number of blocks in the chain starting at first,
// matching count_blocks.
func (fs *FS) countBlocks(first Offset) (int, error) {
	if first == 0 {
		return 0, nil
	}
	visited := make(map[Offset]bool)
	n := 0
	o := first
	for o != 0 {
		if visited[o] {
			return 0, fs.fail(ErrBadTag, errors.Errorf("cycle detected in block chain at offset %d", o))
		}
		visited[o] = true
		n++
		o = fs.getDataBlock(o).Next
	}
	return n, nil
}

// readChain concatenates the payload of every block in the chain starting
// at first, in order, matching read_file_contents/read_dir_contents.
func (fs *FS) readChain(first Offset) ([]byte, error) {
	var out []byte
	visited := make(map[Offset]bool)
	o := first
	for o != 0 {
		if visited[o] {
			return nil, fs.fail(ErrBadTag, errors.Errorf("cycle detected in block chain at offset %d", o))
		}
		visited[o] = true

		b := fs.getDataBlock(o)
		if b.Tag != tagUsed {
			return nil, fs.fail(ErrBadTag, errors.Errorf("offset %d is not a live data block", o))
		}
		out = append(out, b.Data[:b.BytesUsed]...)
		o = b.Next
	}
	return out, nil
}

// writeChain appends data to the chain rooted at first (creating the first
// block itself when first == 0). When truncate is true, the whole existing
// chain is released first and the write starts a fresh chain, matching
// WRITE-mode's truncate-at-open semantics; otherwise it follows
// APPEND-mode's fill-then-extend semantics, packing into the last block's
// remaining capacity before allocating a new one.
//
// It returns the (possibly new) first-block offset, since the caller must
// persist it into the file header.
func (fs *FS) writeChain(first Offset, data []byte, truncate bool) (Offset, error) {
	if truncate && first != 0 {
		if err := fs.freeBlockChain(first); err != nil {
			return 0, err
		}
		first = 0
	}

	var tail Offset
	if first != 0 {
		var err error
		tail, err = fs.lastBlock(first)
		if err != nil {
			return 0, err
		}
	}

	for len(data) > 0 {
		if tail != 0 {
			b := fs.getDataBlock(tail)
			room := BlockSize - int(b.BytesUsed)
			if room > 0 {
				n := room
				if n > len(data) {
					n = len(data)
				}
				copy(b.Data[b.BytesUsed:], data[:n])
				b.BytesUsed += uint32(n)
				fs.putDataBlock(tail, b)
				data = data[n:]
				if len(data) == 0 {
					break
				}
			}
		}

		n := len(data)
		if n > BlockSize {
			n = BlockSize
		}
		var nb dataBlock
		copy(nb.Data[:], data[:n])
		nb.BytesUsed = uint32(n)
		nb.Next = 0

		o, err := fs.allocateDataBlock(nb)
		if err != nil {
			return 0, err
		}
		if tail != 0 {
			prev := fs.getDataBlock(tail)
			prev.Next = o
			fs.putDataBlock(tail, prev)
		} else {
			first = o
		}
		tail = o
		data = data[n:]
	}

	return first, nil
}
