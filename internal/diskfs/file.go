package diskfs

import (
	"github.com/pkg/errors"

	"fs2/internal/hashutil"
)

// File is a handle returned by Open, mirroring fs_open's FSFILE*. It
// records nothing beyond where the header lives and which mode it was
// opened with; all actual state lives in the on-disk file header.
type File struct {
	header Offset
	mode   OpenMode
}

// FileInfo is the read-only snapshot of a file header returned by
// Inspect, matching fs_print_file_info's fields.
type FileInfo struct {
	Name         string
	Type         FileType
	Mode         OpenMode
	FirstBlock   Offset
	HeaderOffset Offset
}

// Inspect returns f's current header fields for display, matching
// fs_print_file_info.
func (fs *FS) Inspect(f *File) FileInfo {
	h := fs.getFileHeader(f.header)
	return FileInfo{
		Name:         h.nameString(),
		Type:         h.Type,
		Mode:         h.Mode,
		FirstBlock:   h.FirstBlock,
		HeaderOffset: f.header,
	}
}

// parseMode turns a CLI-style mode string ("r", "w", "a") into an
// OpenMode bitset, matching the r/w/a vocabulary of File_mode in
// original_source's file.h.
func parseMode(mode string) (OpenMode, error) {
	switch mode {
	case "r":
		return ModeRead, nil
	case "w":
		return ModeWrite, nil
	case "a":
		return ModeAppend, nil
	default:
		return ModeNone, errors.Errorf("unknown open mode %q", mode)
	}
}

// Open resolves path to a file header, creating it (as an empty regular
// file) if mode is write/append and it does not already exist, matching
// fs_open.
func (fs *FS) Open(path string, modeStr string) (*File, error) {
	if err := fs.requireInitialized(); err != nil {
		return nil, err
	}
	mode, err := parseMode(modeStr)
	if err != nil {
		return nil, fs.fail(ErrInvalidPath, err)
	}

	dir, name, ferr := fs.resolveParent(path)
	if ferr != nil {
		return nil, ferr
	}

	var nameHash uint64
	if name != "." {
		nameHash = hashutil.Hash(name)
		if existing, err := fs.findChild(dir, name, nameHash); err == nil {
			h := fs.getFileHeader(existing)
			if h.Type != TypeFile {
				return nil, fs.fail(ErrWrongType, errors.Errorf("%q is not a regular file", path))
			}
			if mode == ModeWrite && h.FirstBlock != 0 {
				if err := fs.freeBlockChain(h.FirstBlock); err != nil {
					return nil, err
				}
				h.FirstBlock = 0
				h.Size = 0
			}
			h.Mode = mode
			fs.putFileHeader(existing, h)
			return &File{header: existing, mode: mode}, nil
		} else if KindOf(err) != ErrNotFound {
			return nil, err
		}
		fs.lastError = nil
	}

	if mode == ModeRead {
		return nil, fs.fail(ErrNotFound, errors.Errorf("%q not found", path))
	}

	if name == "." {
		return nil, fs.fail(ErrInvalidPath, errors.New("cannot create a file with no name"))
	}

	var nameBuf [NameSize]byte
	setName(&nameBuf, name)

	hdr, err := fs.allocateFileHeader(fileHeader{
		Name: nameBuf,
		ID:   nameHash,
		Type: TypeFile,
		Mode: mode,
	})
	if err != nil {
		return nil, err
	}
	if err := fs.addChild(dir, hdr); err != nil {
		return nil, err
	}

	return &File{header: hdr, mode: mode}, nil
}

// OpenDir resolves path and verifies it is a directory, matching
// fs_open_dir. It returns the directory's own header offset -- directories
// don't have a distinct handle type, they're addressed by header offset
// throughout this package.
func (fs *FS) OpenDir(path string) (Offset, error) {
	if err := fs.requireInitialized(); err != nil {
		return 0, err
	}
	_, target, err := fs.resolveFile(path)
	if err != nil {
		return 0, err
	}
	h := fs.getFileHeader(target)
	if h.Type != TypeDir {
		return 0, fs.fail(ErrWrongType, errors.Errorf("%q is not a directory", path))
	}
	return target, nil
}

// Write appends data to f, packing into the current last block's spare
// capacity before allocating new blocks. A file opened "w" already had its
// prior chain released by Open itself, so by the time Write runs there is
// nothing left to distinguish from an "a"-mode append.
func (fs *FS) Write(f *File, data []byte) error {
	if err := fs.requireInitialized(); err != nil {
		return err
	}
	h := fs.getFileHeader(f.header)
	if h.Tag != tagFileHeader {
		return fs.fail(ErrBadTag, errors.New("file header is not live"))
	}
	if h.Type != TypeFile {
		return fs.fail(ErrWrongType, errors.New("not a regular file"))
	}

	// Truncation for a "w"-mode handle already happened in Open: by the
	// time Write runs, every mode packs/extends the existing chain the
	// same way.
	first, err := fs.writeChain(h.FirstBlock, data, false)
	if err != nil {
		return err
	}

	h = fs.getFileHeader(f.header)
	h.FirstBlock = first
	h.Size += uint32(len(data))
	fs.putFileHeader(f.header, h)

	return nil
}

// Read returns the full contents of f, matching fs_read/read_file_contents.
func (fs *FS) Read(f *File) ([]byte, error) {
	if err := fs.requireInitialized(); err != nil {
		return nil, err
	}
	h := fs.getFileHeader(f.header)
	if h.Tag != tagFileHeader {
		return nil, fs.fail(ErrBadTag, errors.New("file header is not live"))
	}
	if h.Type != TypeFile {
		return nil, fs.fail(ErrWrongType, errors.New("not a regular file"))
	}
	return fs.readChain(h.FirstBlock)
}

// Close clears the header's mode bits to NONE, matching fs_close. There is
// no separate in-memory handle table to release -- unlike a host-OS file
// descriptor, the header itself persists on the disk and is what close
// actually mutates.
func (fs *FS) Close(f *File) error {
	if err := fs.requireInitialized(); err != nil {
		return err
	}
	h := fs.getFileHeader(f.header)
	if h.Tag != tagFileHeader {
		return fs.fail(ErrBadTag, errors.New("file header is not live"))
	}
	h.Mode = ModeNone
	fs.putFileHeader(f.header, h)
	f.mode = ModeNone
	return nil
}

// RemoveFile deletes the regular file at path, matching fs_remove_file.
func (fs *FS) RemoveFile(path string) error {
	if err := fs.requireInitialized(); err != nil {
		return err
	}
	dir, target, err := fs.resolveFile(path)
	if err != nil {
		return err
	}
	h := fs.getFileHeader(target)
	if h.Type != TypeFile {
		return fs.fail(ErrWrongType, errors.Errorf("%q is not a regular file", path))
	}
	if err := fs.freeBlockChain(h.FirstBlock); err != nil {
		return err
	}
	if err := fs.freeFileHeader(target); err != nil {
		return err
	}
	return fs.removeChild(dir, target)
}
