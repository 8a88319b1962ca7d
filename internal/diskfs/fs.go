package diskfs

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"fs2/internal/fslog"
	"fs2/internal/hashutil"
)

// FS is an open fs2 disk image: a single contiguous byte buffer plus the
// in-memory state needed to service operations against it. Unlike
// original_source's single static FS_state, FS is an explicit, owned
// value -- nothing here is process-wide, so a program can hold several
// disk images open at once.
type FS struct {
	disk      []byte
	lastError *Error
}

// Init formats a brand new disk image of the given size in memory and
// creates its root directory, matching fs_init.
func Init(diskSize uint64) (*FS, error) {
	if diskSize <= diskHeaderSize+fileHeaderSize {
		return nil, newError(ErrOutOfSpace, errors.New("disk size too small to hold header and root directory"))
	}

	fs := &FS{disk: make([]byte, diskSize)}
	fs.setHeader(diskHeader{
		Magic:    HeaderMagic,
		DiskSize: diskSize,
	})

	root, err := fs.createDirAt(fileHeader{
		Type: TypeDir,
	})
	if err != nil {
		return nil, err
	}
	fs.setRootAndCurrent(root)

	fslog.Logger.Debug().Uint64("disk_size", diskSize).Msg("formatted new disk image")
	return fs, nil
}

// Load reads a previously dumped disk image from path and validates its
// header, matching fs_init_from_disk.
func Load(path string) (*FS, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(ErrIOFailure, errors.Wrapf(err, "reading disk image %q", path))
	}

	fs := &FS{disk: data}
	h := fs.header()
	if h.Magic != HeaderMagic {
		return nil, newError(ErrInvalidMagic, errors.Errorf("disk image %q has bad magic %#x", path, h.Magic))
	}
	if h.DiskSize != uint64(len(data)) {
		return nil, newError(ErrIOFailure, errors.Errorf("disk image %q: header disk_size %d does not match file size %d", path, h.DiskSize, len(data)))
	}

	fslog.Logger.Debug().Str("path", path).Uint64("disk_size", h.DiskSize).Msg("loaded disk image")
	return fs, nil
}

// Dump writes the entire in-memory disk buffer to path, matching
// fs_dump_disk.
func (fs *FS) Dump(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fs.fail(ErrIOFailure, errors.Wrapf(err, "creating directory for disk image %q", path))
		}
	}
	if err := os.WriteFile(path, fs.disk, 0o644); err != nil {
		return fs.fail(ErrIOFailure, errors.Wrapf(err, "writing disk image %q", path))
	}
	fslog.Logger.Debug().Str("path", path).Msg("dumped disk image")
	return nil
}

// Free releases fs's in-memory buffer, matching fs_free. After Free, fs
// must not be used again.
func (fs *FS) Free() {
	fs.disk = nil
}

// GetError returns the most recently recorded error kind and message, and
// whether one was pending, then clears the flag -- matching
// fs_get_error's reset-on-read semantics.
func (fs *FS) GetError() (string, bool) {
	if fs.lastError == nil {
		return "", false
	}
	e := fs.lastError
	fs.lastError = nil
	return e.Error(), true
}

func (fs *FS) requireInitialized() error {
	if fs.disk == nil {
		return fs.fail(ErrNotInitialized, errors.New("file system is not initialized"))
	}
	return nil
}

// Pwd walks the parent chain from the current directory to the root,
// collecting component names, matching fs_pwd/print_working_directory.
// The root prints as "/root", so a directory p under it prints as "/root/p".
func (fs *FS) Pwd() (string, error) {
	if err := fs.requireInitialized(); err != nil {
		return "", err
	}

	root := fs.rootDirectory()
	var names []string

	cur := fs.currentDirectory()
	for cur != root {
		slots, err := fs.dirSlots(fs.getFileHeader(cur).FirstBlock)
		if err != nil {
			return "", err
		}
		if len(slots) < 2 {
			return "", fs.fail(ErrInvalidOffset, errors.New("corrupt directory: missing parent slot"))
		}
		parent := slots[1]

		parentSlots, err := fs.dirSlots(fs.getFileHeader(parent).FirstBlock)
		if err != nil {
			return "", err
		}
		name, err := fs.nameOfChild(parent, parentSlots, cur)
		if err != nil {
			return "", err
		}
		names = append([]string{name}, names...)

		if parent == cur {
			break
		}
		cur = parent
	}

	if len(names) == 0 {
		return "/root", nil
	}
	return "/root/" + joinSlash(names), nil
}

func joinSlash(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += "/" + p
	}
	return out
}

func (fs *FS) nameOfChild(dirHeaderOffset Offset, slots []Offset, child Offset) (string, error) {
	for i := 2; i < len(slots); i++ {
		if slots[i] == child {
			return fs.getFileHeader(child).nameString(), nil
		}
	}
	return "", fs.fail(ErrNotFound, errors.New("directory entry not linked from its claimed parent"))
}

// ChangeDir moves the current directory to path, matching fs_change_dir.
func (fs *FS) ChangeDir(path string) error {
	if err := fs.requireInitialized(); err != nil {
		return err
	}
	_, target, err := fs.resolveFile(path)
	if err != nil {
		return err
	}
	h := fs.getFileHeader(target)
	if h.Type != TypeDir {
		return fs.fail(ErrWrongType, errors.Errorf("%q is not a directory", path))
	}
	fs.setCurrentDirectory(target)
	return nil
}

// CreateDir creates a new, empty subdirectory at path, matching
// fs_create_dir.
func (fs *FS) CreateDir(path string) error {
	if err := fs.requireInitialized(); err != nil {
		return err
	}

	dir, name, err := fs.resolveParent(path)
	if err != nil {
		return err
	}
	if name == "." {
		return fs.fail(ErrInvalidPath, errors.New("cannot create a directory with no name"))
	}
	nameHash := hashutil.Hash(name)
	if _, err := fs.findChild(dir, name, nameHash); err == nil {
		return fs.fail(ErrAlreadyExists, errors.Errorf("%q already exists", name))
	} else if KindOf(err) != ErrNotFound {
		return err
	}
	fs.lastError = nil

	var nameBuf [NameSize]byte
	setName(&nameBuf, name)

	savedCur := fs.header().CurrentDirectory
	fs.setCurrentDirectory(dir)
	child, err := fs.createDirAt(fileHeader{
		Name: nameBuf,
		ID:   nameHash,
		Type: TypeDir,
	})
	fs.setCurrentDirectory(savedCur)
	if err != nil {
		return err
	}

	return fs.addChild(dir, child)
}

// RemoveDir removes the empty directory at path, matching fs_remove_dir.
// A directory holding anything beyond its two mandatory slots is
// rejected; there is no recursive removal.
func (fs *FS) RemoveDir(path string) error {
	if err := fs.requireInitialized(); err != nil {
		return err
	}

	dir, target, err := fs.resolveFile(path)
	if err != nil {
		return err
	}
	if target == fs.rootDirectory() {
		return fs.fail(ErrInvalidPath, errors.New("cannot remove the root directory"))
	}
	if target == fs.currentDirectory() {
		return fs.fail(ErrInvalidPath, errors.New("cannot remove the current directory"))
	}

	h := fs.getFileHeader(target)
	if h.Type != TypeDir {
		return fs.fail(ErrWrongType, errors.Errorf("%q is not a directory", path))
	}

	empty, err := fs.isEmptyDir(target)
	if err != nil {
		return err
	}
	if !empty {
		return fs.fail(ErrNotEmpty, errors.Errorf("%q is not empty", path))
	}

	if err := fs.freeBlockChain(h.FirstBlock); err != nil {
		return err
	}
	if err := fs.freeFileHeader(target); err != nil {
		return err
	}
	return fs.removeChild(dir, target)
}

// List returns the live entries of the directory at path (or the current
// directory, if path is empty), matching fs_list.
func (fs *FS) List(path string) ([]DirEntry, error) {
	if err := fs.requireInitialized(); err != nil {
		return nil, err
	}
	if path == "" {
		path = "."
	}
	_, target, err := fs.resolveFile(path)
	if err != nil {
		return nil, err
	}
	h := fs.getFileHeader(target)
	if h.Type != TypeDir {
		return nil, fs.fail(ErrWrongType, errors.Errorf("%q is not a directory", path))
	}
	return fs.listDir(target)
}
