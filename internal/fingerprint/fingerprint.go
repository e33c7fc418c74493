package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"dfhash/internal/canonical"
	"dfhash/internal/failure"
	"dfhash/internal/table"
)

// DigestLength is the length of a hex-encoded fingerprint.
const DigestLength = sha256.Size * 2

// Hash digests everything read from r.
func Hash(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", failure.Wrap(failure.ErrHash, "", "read canonical stream", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Sum digests an in-memory canonical buffer.
func Sum(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Table returns the fingerprint of t's canonical form.
func Table(ctx context.Context, t *table.Table, opts ...canonical.Option) (string, error) {
	sorted, err := canonical.Sort(ctx, t, opts...)
	if err != nil {
		return "", err
	}
	return Sorted(sorted)
}

// Sorted fingerprints a table that is already in canonical order.
func Sorted(t *table.Table) (string, error) {
	h := sha256.New()
	if _, err := canonical.WriteTo(h, t); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Valid reports whether digest looks like a fingerprint produced here.
func Valid(digest string) bool {
	if len(digest) != DigestLength {
		return false
	}
	for i := 0; i < len(digest); i++ {
		c := digest[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
