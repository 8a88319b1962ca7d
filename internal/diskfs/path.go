package diskfs

import (
	"strings"

	"github.com/pkg/errors"

	"fs2/internal/hashutil"
)

// resolve walks path component-by-component in a single left-to-right
// scan, without ever pre-splitting into a slice -- matching
// original_source's get_path_dir. A leading '/' re-anchors the walk at
// the root directory; "." is the current component's directory; ".."
// steps to slot 1 (parent) of the directory being visited, and the root
// is its own parent so ".." at the root is a no-op.
//
// Every component except the last is walked immediately and must already
// exist and be a directory. The last component is committed only if it is
// "." or ".." (both of which name a directory that must already exist);
// otherwise it is returned unresolved as name, so callers that are about
// to create that entry don't trip NOT_FOUND on it.
func (fs *FS) resolve(path string) (dir Offset, name string, err error) {
	if path == "" {
		return 0, "", fs.fail(ErrInvalidPath, errors.New("empty path"))
	}

	cur := fs.currentDirectory()
	if strings.HasPrefix(path, "/") {
		cur = fs.rootDirectory()
	}

	step := func(comp string) error {
		switch comp {
		case ".":
			// stay
		case "..":
			slots, serr := fs.dirSlots(fs.getFileHeader(cur).FirstBlock)
			if serr != nil {
				return serr
			}
			if len(slots) < 2 {
				return fs.fail(ErrInvalidPath, errors.New("corrupt directory: missing parent slot"))
			}
			cur = slots[1]
		default:
			child, ferr := fs.findChild(cur, comp, hashutil.Hash(comp))
			if ferr != nil {
				return ferr
			}
			ch := fs.getFileHeader(child)
			if ch.Type != TypeDir {
				return fs.fail(ErrInvalidPath, errors.Errorf("%q is not a directory", comp))
			}
			cur = child
		}
		return nil
	}

	var component strings.Builder
	var pending string
	havePending := false

	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '/' {
			if component.Len() > 0 {
				if havePending {
					if err := step(pending); err != nil {
						return 0, "", err
					}
				}
				pending = component.String()
				havePending = true
				component.Reset()
			}
			continue
		}
		component.WriteByte(c)
	}
	if component.Len() > 0 {
		if havePending {
			if err := step(pending); err != nil {
				return 0, "", err
			}
		}
		pending = component.String()
		havePending = true
	}

	if !havePending {
		// path was "/" or entirely separators: refers to cur itself.
		return cur, ".", nil
	}

	if pending == "." || pending == ".." {
		if err := step(pending); err != nil {
			return 0, "", err
		}
		return cur, ".", nil
	}

	return cur, pending, nil
}

// resolveFile resolves path to its containing directory and the header
// offset of the final component itself (which must already exist).
func (fs *FS) resolveFile(path string) (containingDir Offset, fileHeaderOffset Offset, err error) {
	dir, name, err := fs.resolve(path)
	if err != nil {
		return 0, 0, err
	}
	if name == "." {
		return dir, dir, nil
	}
	o, err := fs.findChild(dir, name, hashutil.Hash(name))
	if err != nil {
		return 0, 0, err
	}
	return dir, o, nil
}

// resolveParent resolves path to its containing directory and the bare
// name of the final component, without requiring that component to exist
// -- used by operations that create a new entry (Open for write, CreateDir).
func (fs *FS) resolveParent(path string) (dir Offset, name string, err error) {
	return fs.resolve(path)
}
