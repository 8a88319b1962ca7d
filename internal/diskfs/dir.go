package diskfs

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// entriesPerBlock is how many 8-byte directory slots fit in one data block.
const entriesPerBlock = BlockSize / 8

// DirEntry is the resolved, structured view of one live directory slot,
// returned by List. Formatting (the "<offset> <type> <size> <name>" line)
// is left entirely to the CLI.
type DirEntry struct {
	Offset Offset
	Name   string
	Type   FileType
	Size   uint32
}

// dirSlots returns every 8-byte slot in the directory payload rooted at
// first, in storage order, including tombstoned (zero) slots. Slot 0 is
// always "self", slot 1 is always "parent" once the directory has been
// created by createDirAt.
func (fs *FS) dirSlots(first Offset) ([]Offset, error) {
	raw, err := fs.readRawChain(first)
	if err != nil {
		return nil, err
	}
	n := len(raw) / 8
	slots := make([]Offset, n)
	for i := 0; i < n; i++ {
		slots[i] = Offset(binary.LittleEndian.Uint64(raw[i*8 : i*8+8]))
	}
	return slots, nil
}

// readRawChain concatenates a directory's block payloads in storage
// order. writeChain always packs slots into a block's spare room before
// allocating the next one, so every block but possibly the last is full,
// and the concatenated length is always a multiple of 8.
func (fs *FS) readRawChain(first Offset) ([]byte, error) {
	return fs.readChain(first)
}

// dirSlotLocation walks the chain rooted at first and returns the block
// offset and in-block byte offset holding slot index.
func (fs *FS) dirSlotLocation(first Offset, index int) (Offset, int, error) {
	blockIdx := index / entriesPerBlock
	byteOff := (index % entriesPerBlock) * 8

	o := first
	for i := 0; i < blockIdx; i++ {
		if o == 0 {
			return 0, 0, fs.fail(ErrInvalidOffset, errors.Errorf("directory slot %d does not exist", index))
		}
		o = fs.getDataBlock(o).Next
	}
	if o == 0 {
		return 0, 0, fs.fail(ErrInvalidOffset, errors.Errorf("directory slot %d does not exist", index))
	}
	return o, byteOff, nil
}

// dirSetSlot overwrites an existing slot in place.
func (fs *FS) dirSetSlot(first Offset, index int, value Offset) error {
	blockOff, byteOff, err := fs.dirSlotLocation(first, index)
	if err != nil {
		return err
	}
	b := fs.getDataBlock(blockOff)
	binary.LittleEndian.PutUint64(b.Data[byteOff:byteOff+8], uint64(value))
	fs.putDataBlock(blockOff, b)
	return nil
}

// createDirAt allocates a fresh directory chain with self at slot 0 and
// parent at slot 1. When parent is 0 (formatting the root directory) the
// root self-parents, matching fs_create_dir's root bootstrap fallback.
func (fs *FS) createDirAt(header fileHeader) (Offset, error) {
	self, err := fs.allocateFileHeader(header)
	if err != nil {
		return 0, err
	}

	parent := fs.currentDirectory()
	if parent == 0 {
		parent = self
	}

	first, err := fs.writeChain(0, encodeSlots(self, parent), true)
	if err != nil {
		return 0, err
	}

	h := fs.getFileHeader(self)
	h.FirstBlock = first
	h.Size = uint32(len(encodeSlots(self, parent)))
	fs.putFileHeader(self, h)

	return self, nil
}

func encodeSlots(vals ...Offset) []byte {
	out := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(out[i*8:i*8+8], uint64(v))
	}
	return out
}

// addChild inserts childHeaderOffset into the first tombstoned (zero) slot
// of the directory rooted at dirFirstBlock, or appends a new slot if no
// tombstone exists. When it appends, it also grows the directory file
// header's Size field by one slot.
func (fs *FS) addChild(dirHeaderOffset Offset, childHeaderOffset Offset) error {
	dh := fs.getFileHeader(dirHeaderOffset)

	slots, err := fs.dirSlots(dh.FirstBlock)
	if err != nil {
		return err
	}

	for i := 2; i < len(slots); i++ {
		if slots[i] == 0 {
			if err := fs.dirSetSlot(dh.FirstBlock, i, childHeaderOffset); err != nil {
				return err
			}
			return nil
		}
	}

	first, err := fs.writeChain(dh.FirstBlock, encodeSlots(childHeaderOffset), false)
	if err != nil {
		return err
	}
	dh.FirstBlock = first
	dh.Size += 8
	fs.putFileHeader(dirHeaderOffset, dh)
	return nil
}

// removeChild tombstones the slot in dirHeaderOffset's directory that
// points at childHeaderOffset. It is a no-op error (NOT_FOUND) if the
// child is not actually present.
func (fs *FS) removeChild(dirHeaderOffset Offset, childHeaderOffset Offset) error {
	dh := fs.getFileHeader(dirHeaderOffset)

	slots, err := fs.dirSlots(dh.FirstBlock)
	if err != nil {
		return err
	}
	for i := 2; i < len(slots); i++ {
		if slots[i] == childHeaderOffset {
			return fs.dirSetSlot(dh.FirstBlock, i, 0)
		}
	}
	return fs.fail(ErrNotFound, errors.Errorf("offset %d not found in directory", childHeaderOffset))
}

// findChild looks up the live slot of dirHeaderOffset whose target header's
// id matches hash, matching find_file's "file->id == id" comparison. "."
// and ".." are handled by the caller (path.go) before reaching here --
// findChild only ever sees real stored file/dir entries, addressed by the
// hash of their name rather than a name-string comparison, per fs2.c's
// `id := hash2(path); find_file(..., id, ...)`. name is carried only for
// the NOT_FOUND message; it plays no part in the match itself.
func (fs *FS) findChild(dirHeaderOffset Offset, name string, hash uint64) (Offset, error) {
	dh := fs.getFileHeader(dirHeaderOffset)

	slots, err := fs.dirSlots(dh.FirstBlock)
	if err != nil {
		return 0, err
	}
	for i := 2; i < len(slots); i++ {
		if slots[i] == 0 {
			continue
		}
		ch := fs.getFileHeader(slots[i])
		if ch.ID == hash {
			return slots[i], nil
		}
	}
	return 0, fs.fail(ErrNotFound, errors.Errorf("%q not found", name))
}

// listDir returns every live entry in the directory at dirHeaderOffset,
// in storage order, skipping the self/parent slots and any tombstones.
func (fs *FS) listDir(dirHeaderOffset Offset) ([]DirEntry, error) {
	dh := fs.getFileHeader(dirHeaderOffset)

	slots, err := fs.dirSlots(dh.FirstBlock)
	if err != nil {
		return nil, err
	}

	var out []DirEntry
	for i := 2; i < len(slots); i++ {
		if slots[i] == 0 {
			continue
		}
		ch := fs.getFileHeader(slots[i])
		out = append(out, DirEntry{
			Offset: slots[i],
			Name:   ch.nameString(),
			Type:   ch.Type,
			Size:   ch.Size,
		})
	}
	return out, nil
}

// SelfAndParent returns a directory's own offset (slot 0) and its parent's
// offset (slot 1), letting a caller format the "." and ".." lines spec.md's
// operator UX requires without walking the raw slot array itself. Root's
// parent is root.
func (fs *FS) SelfAndParent(dirHeaderOffset Offset) (self Offset, parent Offset, err error) {
	dh := fs.getFileHeader(dirHeaderOffset)
	slots, err := fs.dirSlots(dh.FirstBlock)
	if err != nil {
		return 0, 0, err
	}
	if len(slots) < 2 {
		return 0, 0, fs.fail(ErrInvalidOffset, errors.New("corrupt directory: missing self/parent slots"))
	}
	return slots[0], slots[1], nil
}

// isEmptyDir reports whether the directory at dirHeaderOffset holds
// nothing beyond its two mandatory self/parent slots, matching
// can_remove_dir: any live entry beyond those two slots rejects removal,
// there is no recursive removal.
func (fs *FS) isEmptyDir(dirHeaderOffset Offset) (bool, error) {
	dh := fs.getFileHeader(dirHeaderOffset)
	slots, err := fs.dirSlots(dh.FirstBlock)
	if err != nil {
		return false, err
	}
	for i := 2; i < len(slots); i++ {
		if slots[i] != 0 {
			return false, nil
		}
	}
	return true, nil
}
