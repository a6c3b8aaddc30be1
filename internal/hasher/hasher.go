// Package hasher turns enumerated files into records the grouping engine
// can classify: a streaming sha256 digest for every file, plus a perceptual
// fingerprint for recognized raster images.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/substantialcattle5/mde/internal/phash"
)

// readBufferSize bounds memory use while digesting, regardless of file size.
const readBufferSize = 64 * 1024

// FileRecord captures everything the grouping engine needs to know about one
// scanned file. Records are immutable once produced.
type FileRecord struct {
	Path           string
	Size           int64
	Digest         string
	Fingerprint    uint64
	HasFingerprint bool
	Err            error
}

// HashFile produces the record for a single file. Read failures are captured
// on the record rather than returned, so one unreadable file never aborts a
// batch. Fingerprint failures (corrupt or unsupported image) are silently
// degraded to exact-only participation.
func HashFile(path string, size int64) FileRecord {
	record := FileRecord{Path: path, Size: size}

	digest, err := DigestFile(path)
	if err != nil {
		record.Err = err
		return record
	}
	record.Digest = digest

	if phash.IsImageFile(path) {
		if fp, err := phash.FromFile(path); err == nil {
			record.Fingerprint = fp
			record.HasFingerprint = true
		}
	}

	return record
}

// DigestFile streams the file through sha256 and returns the hex digest.
func DigestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, readBufferSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
