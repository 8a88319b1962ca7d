// Package hashutil computes the stable identifiers fs2 stores in a file
// header's id field.
package hashutil

import "github.com/cespare/xxhash/v2"

// Hash returns a stable 64-bit identifier for name. It intentionally
// excludes the file's type from the digest -- the latest original_source
// revision folds the type term out of the hash, so two entries that share
// a name collide regardless of whether one is a file and the other a
// directory. Directory lookups compare this id alone, never the name
// string.
func Hash(name string) uint64 {
	return xxhash.Sum64String(name)
}

// DJB2 is kept alongside Hash for parity with original_source's own hash
// function (hash.c), which a handful of the older on-disk image revisions
// were formatted with. fs2 never writes DJB2 ids itself; it's here so a
// caller migrating an old image can recompute and compare against it.
func DJB2(name string) uint64 {
	var h uint64 = 5381
	for i := 0; i < len(name); i++ {
		h = ((h << 5) + h) + uint64(name[i])
	}
	return h
}
