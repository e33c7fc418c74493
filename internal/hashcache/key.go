package hashcache

import (
	"fmt"
	"os"
	"path/filepath"
)

// Key identifies one version of a file on disk as read with one set of
// loader options.
type Key struct {
	Path      string
	Size      int64
	ModTimeNS int64
	// Options fingerprints the loader settings that produced the table.
	Options string
	identity
}

// KeyFor stats path and returns its cache key under the given loader options
// fingerprint.
func KeyFor(path, options string) (Key, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Key{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Key{}, err
	}
	if info.IsDir() {
		return Key{}, fmt.Errorf("%s is a directory", path)
	}
	key := Key{
		Path:      abs,
		Size:      info.Size(),
		ModTimeNS: info.ModTime().UnixNano(),
		Options:   options,
	}
	key.identity = identityOf(abs)
	return key, nil
}

// Matches reports whether two keys describe the same file version read the
// same way.
func (k Key) Matches(other Key) bool {
	return k == other
}
