package diskfs

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// diskHeader is the decoded view of the fixed-layout header living at
// offset 0 of the disk buffer.
type diskHeader struct {
	Magic            uint32
	DiskSize         uint64
	RootDirectory    Offset
	CurrentDirectory Offset
}

func decodeHeader(b []byte) diskHeader {
	return diskHeader{
		Magic:            binary.LittleEndian.Uint32(b[0:4]),
		DiskSize:         binary.LittleEndian.Uint64(b[4:12]),
		RootDirectory:    Offset(binary.LittleEndian.Uint64(b[12:20])),
		CurrentDirectory: Offset(binary.LittleEndian.Uint64(b[20:28])),
	}
}

func encodeHeader(b []byte, h diskHeader) {
	binary.LittleEndian.PutUint32(b[0:4], h.Magic)
	binary.LittleEndian.PutUint64(b[4:12], h.DiskSize)
	binary.LittleEndian.PutUint64(b[12:20], uint64(h.RootDirectory))
	binary.LittleEndian.PutUint64(b[20:28], uint64(h.CurrentDirectory))
}

// header returns the decoded disk header. Every call re-reads the bytes
// directly -- the allocator scan is already O(disk_size), so caching here
// would only complicate the single-writer invariant for no real gain.
func (fs *FS) header() diskHeader {
	return decodeHeader(fs.disk[0:diskHeaderSize])
}

func (fs *FS) setHeader(h diskHeader) {
	encodeHeader(fs.disk[0:diskHeaderSize], h)
}

func (fs *FS) rootDirectory() Offset    { return fs.header().RootDirectory }
func (fs *FS) currentDirectory() Offset { return fs.header().CurrentDirectory }

func (fs *FS) setCurrentDirectory(o Offset) {
	h := fs.header()
	h.CurrentDirectory = o
	fs.setHeader(h)
}

func (fs *FS) setRootAndCurrent(o Offset) {
	h := fs.header()
	h.RootDirectory = o
	h.CurrentDirectory = o
	fs.setHeader(h)
}

// canAccess reports whether o is a legal, non-null offset into the disk.
func (fs *FS) canAccess(o Offset) bool {
	if fs.disk == nil {
		return false
	}
	return o != 0 && uint64(o) < fs.header().DiskSize
}

// checkOffset validates o, returning INVALID_OFFSET on failure. No entry
// point calls it: getFileHeader and getDataBlock slice fs.disk at the
// offsets they are given without validating them.
func (fs *FS) checkOffset(o Offset) error {
	if !fs.canAccess(o) {
		return fs.fail(ErrInvalidOffset, errors.Errorf("offset %d is out of range", o))
	}
	return nil
}
