// Package identity computes whole-file content digests used to recognise the
// same mod package across installs.
package identity

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/shshouse/MikuModManager/internal/apperr"
	"github.com/shshouse/MikuModManager/internal/ports"
)

// Size is the digest length in bytes (128 bits).
const Size = md5.Size

// Digest is a 128-bit content digest.
type Digest [Size]byte

// String returns the lowercase hex form.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether d is the zero digest.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// ParseDigest decodes the hex form produced by Digest.String.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, apperr.Wrapf(err, apperr.ParseError, "invalid digest %q", s)
	}
	if len(b) != Size {
		return d, apperr.Newf(apperr.ParseError, "invalid digest %q: want %d bytes, got %d", s, Size, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// Hasher computes digests through a FileSystem.
type Hasher struct {
	fs ports.FileSystem
}

// NewHasher creates a Hasher reading through fs.
func NewHasher(fs ports.FileSystem) *Hasher {
	return &Hasher{fs: fs}
}

// Checksum reads the whole file at path into memory and returns its digest.
// Memory use is proportional to the file size.
func (h *Hasher) Checksum(path string) (Digest, error) {
	info, err := h.fs.Stat(path)
	if err != nil {
		return Digest{}, apperr.FromOS("stat", path, err)
	}
	if info.IsDir() {
		return Digest{}, apperr.Newf(apperr.NotAFile, "cannot checksum a directory: %s", path).WithPath(path)
	}

	data, err := h.fs.ReadFile(path)
	if err != nil {
		return Digest{}, apperr.FromOS("read", path, err)
	}
	return Sum(data), nil
}

// Sum returns the digest of data.
func Sum(data []byte) Digest {
	return Digest(md5.Sum(data))
}
