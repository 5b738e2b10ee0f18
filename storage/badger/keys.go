package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/grantlens/core"
)

// Key prefixes for different data types
const (
	embeddingRecordPrefix = "embrec"
	embeddingModelPrefix  = "embmod"
)

// makeEmbeddingKey generates a key for an embedding record.
func makeEmbeddingKey(key core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", embeddingRecordPrefix, key))
}

// makeEmbeddingModelKey generates a composite key for the model index.
// Format: prefix:model:key
func makeEmbeddingModelKey(model string, key core.ID) []byte {
	prefix := embeddingModelPrefix + ":" + model + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for the record key
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(key))
	return buf
}

// makePartialEmbeddingModelKey generates a partial key for model scans.
// Format: prefix:model:
func makePartialEmbeddingModelKey(model string) []byte {
	return []byte(embeddingModelPrefix + ":" + model + ":")
}
