package scanner

import (
	"github.com/minio/highwayhash"
)

var fingerprintKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// Fingerprint returns a stable 64-bit digest of a class name and its source,
// used to correlate scan results of identical inputs across repeated scans.
func Fingerprint(className string, source []byte) uint64 {
	hash, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		return 0
	}
	_, _ = hash.Write([]byte(className))
	_, _ = hash.Write([]byte{0})
	_, _ = hash.Write(source)
	return hash.Sum64()
}
