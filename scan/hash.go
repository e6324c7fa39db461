package scan

import (
	"encoding/hex"

	"github.com/mu-graph/mu/graph"
)

// hashHex renders a scanned file's content hash as hex, reusing the same
// HighwayHash the graph package uses for node/body hashing so a file's
// reported hash and its graph content hash stay comparable.
func hashHex(data []byte) string {
	sum, err := graph.Hash(data)
	if err != nil {
		return ""
	}
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(sum >> (8 * i))
	}
	return hex.EncodeToString(buf)
}
