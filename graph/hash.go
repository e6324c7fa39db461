package graph

import "github.com/minio/highwayhash"

// key is a fixed HighwayHash key; content hashes only need to be stable
// across runs of this program, not cryptographically keyed.
var key = []byte("MU-graph-content-hash-key-v1!!!!")

// Hash returns a 64-bit content hash, used for node/body change detection
// in package diff and for the Scanner's reported file hash.
func Hash(data []byte) (uint64, error) {
	h, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	_, err = h.Write(data)
	return h.Sum64(), err
}
