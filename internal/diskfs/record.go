// Package diskfs implements the on-disk layout, free-space allocator,
// block-chain engine, and directory/path resolution logic for fs2: a
// POSIX-style hierarchical file system emulated on top of a single
// contiguous byte buffer.
package diskfs

// Offset is a byte index into the disk buffer. 0 is the reserved null
// reference; valid offsets satisfy 1 <= o < disk size.
type Offset uint64

// Tag is the first byte of every record and identifies its kind and
// liveness. Untagged zero bytes (left over from format time, or from a
// region the allocator hasn't touched yet) are not a Tag value at all --
// the scanner treats any byte outside this set as free space.
type Tag byte

const (
	tagUsed           Tag = 1 // live data block
	tagFree           Tag = 2 // tombstoned data block
	tagFileHeader     Tag = 3 // live file header
	tagFileHeaderFree Tag = 4 // tombstoned file header
)

// FileType distinguishes a regular file from a directory.
type FileType uint8

const (
	TypeNone FileType = iota
	TypeFile
	TypeDir
)

// OpenMode is a bitset of the mode a file header was most recently opened
// with. Directories are written by the engine itself regardless of mode.
type OpenMode uint8

const (
	ModeNone   OpenMode = 0
	ModeRead   OpenMode = 1 << 0
	ModeWrite  OpenMode = 1 << 1
	ModeAppend OpenMode = 1 << 2
)

const (
	// NameSize is the fixed width of a file header's name field.
	NameSize = 32
	// BlockSize is the payload width of a single data block record.
	BlockSize = 32
	// HeaderMagic is the constant that identifies a valid fs2 disk image.
	HeaderMagic uint32 = 0xBEEFAAAA
	// DefaultDiskSize is used by the CLI when formatting a fresh disk.
	DefaultDiskSize = 1 << 20
)

// Wire widths, little-endian, fixed regardless of host architecture so a
// dumped image is portable between 32- and 64-bit builds of the CLI.
const (
	diskHeaderSize = 4 + 8 + 8 + 8 // magic, disk_size, root_directory, current_directory

	// fileHeaderSize: tag(1) + name(32) + id(8) + size(4) + type(1) + mode(1) + first_block(8)
	fileHeaderSize = 1 + NameSize + 8 + 4 + 1 + 1 + 8

	// dataBlockSize: tag(1) + data(BlockSize) + bytes_used(4) + next(8)
	dataBlockSize = 1 + BlockSize + 4 + 8
)

// recordKind distinguishes the two fixed record sizes the allocator is
// willing to carve. The allocator is not a general-purpose malloc; every
// caller asks for one of these two kinds, never a bare byte count.
type recordKind int

const (
	recordKindFileHeader recordKind = iota
	recordKindDataBlock
)

func (k recordKind) size() int {
	switch k {
	case recordKindFileHeader:
		return fileHeaderSize
	case recordKindDataBlock:
		return dataBlockSize
	default:
		panic("diskfs: unknown record kind")
	}
}

// fileHeader is the decoded, in-memory view of a FILE_HEADER/FILE_HEADER_FREE
// record. It is read from and written back to the disk buffer explicitly --
// there is no overlay/unsafe cast onto the byte slice.
type fileHeader struct {
	Tag        Tag
	Name       [NameSize]byte
	ID         uint64
	Size       uint32
	Type       FileType
	Mode       OpenMode
	FirstBlock Offset
}

func (h *fileHeader) nameString() string {
	n := 0
	for n < len(h.Name) && h.Name[n] != 0 {
		n++
	}
	return string(h.Name[:n])
}

func setName(dst *[NameSize]byte, name string) {
	*dst = [NameSize]byte{}
	n := copy(dst[:], name)
	_ = n
}

// dataBlock is the decoded, in-memory view of a USED/FREE record.
type dataBlock struct {
	Tag       Tag
	Data      [BlockSize]byte
	BytesUsed uint32
	Next      Offset
}
