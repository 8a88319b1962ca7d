package diskfs

import "encoding/binary"

// getFileHeader decodes the fileHeader record at o without checking its
// tag -- callers that care about liveness check h.Tag themselves.
func (fs *FS) getFileHeader(o Offset) fileHeader {
	b := fs.disk[o : int(o)+fileHeaderSize]

	var h fileHeader
	h.Tag = Tag(b[0])
	copy(h.Name[:], b[1:1+NameSize])
	off := 1 + NameSize
	h.ID = binary.LittleEndian.Uint64(b[off : off+8])
	off += 8
	h.Size = binary.LittleEndian.Uint32(b[off : off+4])
	off += 4
	h.Type = FileType(b[off])
	off++
	h.Mode = OpenMode(b[off])
	off++
	h.FirstBlock = Offset(binary.LittleEndian.Uint64(b[off : off+8]))
	return h
}

func (fs *FS) putFileHeader(o Offset, h fileHeader) {
	b := fs.disk[o : int(o)+fileHeaderSize]

	b[0] = byte(h.Tag)
	copy(b[1:1+NameSize], h.Name[:])
	off := 1 + NameSize
	binary.LittleEndian.PutUint64(b[off:off+8], h.ID)
	off += 8
	binary.LittleEndian.PutUint32(b[off:off+4], h.Size)
	off += 4
	b[off] = byte(h.Type)
	off++
	b[off] = byte(h.Mode)
	off++
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(h.FirstBlock))
}

func (fs *FS) getDataBlock(o Offset) dataBlock {
	b := fs.disk[o : int(o)+dataBlockSize]

	var d dataBlock
	d.Tag = Tag(b[0])
	copy(d.Data[:], b[1:1+BlockSize])
	off := 1 + BlockSize
	d.BytesUsed = binary.LittleEndian.Uint32(b[off : off+4])
	off += 4
	d.Next = Offset(binary.LittleEndian.Uint64(b[off : off+8]))
	return d
}

func (fs *FS) putDataBlock(o Offset, d dataBlock) {
	b := fs.disk[o : int(o)+dataBlockSize]

	b[0] = byte(d.Tag)
	copy(b[1:1+BlockSize], d.Data[:])
	off := 1 + BlockSize
	binary.LittleEndian.PutUint32(b[off:off+4], d.BytesUsed)
	off += 4
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(d.Next))
}
