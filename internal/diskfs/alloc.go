package diskfs

import (
	"github.com/pkg/errors"

	"fs2/internal/fslog"
)

// allocate scans the disk buffer from just past the header looking for a
// run of free bytes large enough to hold one record of kind. It never
// maintains a separate free list: liveness is entirely a function of the
// tag byte at each record boundary, so the scan both discovers free space
// and re-synchronizes with live records in the same pass.
//
// Matching original_source's allocate(), an untagged byte (anything other
// than tagUsed/tagFree/tagFileHeader/tagFileHeaderFree) is free space one
// byte at a time; a tagFree/tagFileHeaderFree record is free space
// dataBlockSize/fileHeaderSize bytes at a time; a live record's body is
// skipped over without being considered free.
func (fs *FS) allocate(kind recordKind) (Offset, error) {
	need := kind.size()
	diskSize := int(fs.header().DiskSize)

	i := diskHeaderSize
	freeSpace := 0
	var runStart int

	for i < diskSize {
		tag := Tag(fs.disk[i])

		switch tag {
		case tagFree:
			if freeSpace == 0 {
				runStart = i
			}
			freeSpace += dataBlockSize
			i += dataBlockSize

		case tagFileHeaderFree:
			if freeSpace == 0 {
				runStart = i
			}
			freeSpace += fileHeaderSize
			i += fileHeaderSize

		case tagUsed:
			freeSpace = 0
			i += dataBlockSize

		case tagFileHeader:
			freeSpace = 0
			i += fileHeaderSize

		default:
			if freeSpace == 0 {
				runStart = i
			}
			freeSpace++
			i++
		}

		if freeSpace >= need {
			return Offset(runStart), nil
		}
	}

	fslog.Logger.Warn().Int("need", need).Msg("allocator found no sufficiently large free run")
	return 0, fs.fail(ErrOutOfSpace, errors.Errorf("no run of %d free bytes on disk", need))
}

// allocateFileHeader carves a fileHeader-sized record and writes it tagged
// live, returning its offset.
func (fs *FS) allocateFileHeader(h fileHeader) (Offset, error) {
	o, err := fs.allocate(recordKindFileHeader)
	if err != nil {
		return 0, err
	}
	h.Tag = tagFileHeader
	fs.putFileHeader(o, h)
	return o, nil
}

// allocateDataBlock carves a dataBlock-sized record and writes it tagged
// live, returning its offset.
func (fs *FS) allocateDataBlock(b dataBlock) (Offset, error) {
	o, err := fs.allocate(recordKindDataBlock)
	if err != nil {
		return 0, err
	}
	b.Tag = tagUsed
	fs.putDataBlock(o, b)
	return o, nil
}

// freeFileHeader tombstones the fileHeader record at o: the tag becomes
// tagFileHeaderFree and the rest of the record is zeroed, matching
// free_block's flush of the whole record body. The allocator skips a
// tombstone in one fileHeaderSize-wide stride because of its tag byte;
// zeroing the interior (not just flipping the tag) means no stale byte of
// the old record can later be read as a tag once the region is reused.
func (fs *FS) freeFileHeader(o Offset) error {
	h := fs.getFileHeader(o)
	if h.Tag != tagFileHeader {
		return fs.fail(ErrBadTag, errors.Errorf("offset %d is not a live file header", o))
	}
	fs.putFileHeader(o, fileHeader{Tag: tagFileHeaderFree})
	return nil
}

// freeDataBlock tombstones the dataBlock record at o, matching free_block.
func (fs *FS) freeDataBlock(o Offset) error {
	b := fs.getDataBlock(o)
	if b.Tag != tagUsed {
		return fs.fail(ErrBadTag, errors.Errorf("offset %d is not a live data block", o))
	}
	fs.putDataBlock(o, dataBlock{Tag: tagFree})
	return nil
}

// freeBlockChain walks the block chain starting at first, tombstoning
// every block, matching deallocate_blocks. A visited set guards against a
// corrupt chain looping forever.
func (fs *FS) freeBlockChain(first Offset) error {
	visited := make(map[Offset]bool)
	o := first
	for o != 0 {
		if visited[o] {
			return fs.fail(ErrBadTag, errors.Errorf("cycle detected in block chain at offset %d", o))
		}
		visited[o] = true

		b := fs.getDataBlock(o)
		next := b.Next
		if err := fs.freeDataBlock(o); err != nil {
			return err
		}
		o = next
	}
	return nil
}
