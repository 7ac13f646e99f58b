package badger

import (
	"encoding/binary"

	"github.com/poiesic/sentsim/core"
)

// Key prefixes for different data types
const (
	sentenceRecordPrefix = "senrec:"
	embeddingPrefix      = "embvec:"
)

// makeSentenceKey generates the key of the sentence at position.
// Format: prefix:position, big-endian so iteration follows registration order.
func makeSentenceKey(position int64) []byte {
	return appendUint64([]byte(sentenceRecordPrefix), uint64(position))
}

// makeEmbeddingKey generates the key of a cached vector.
// Format: prefix:key
func makeEmbeddingKey(key core.ID) []byte {
	return appendUint64([]byte(embeddingPrefix), uint64(key))
}

func appendUint64(prefix []byte, v uint64) []byte {
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], v)
	return buf
}
