package badger

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// Key prefixes for different data types
const (
	graphNodePrefix  = "grnode"
	graphLabelPrefix = "grlabel"
	graphNodeSeq     = "grnodeseq"
	graphEdgePrefix  = "gredge"
	graphEdgeSeq     = "gredgeseq"
	vectorPrefix     = "vecpt"
	vectorSeq        = "vecptseq"
	eventPrefix      = "evtlog"
	eventSeq         = "evtlogseq"
)

// makeSeqKey generates a key ordered by sequence number.
// Format: prefix:seq
func makeSeqKey(prefix string, seq uint64) []byte {
	prefixBytes := []byte(prefix + ":")
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeSeqUpperBound generates a key sorting after every sequence key of a prefix.
func makeSeqUpperBound(prefix string) []byte {
	return makeSeqKey(prefix, ^uint64(0))
}

// seqPrefix returns the iteration prefix for sequence keys.
func seqPrefix(prefix string) []byte {
	return []byte(prefix + ":")
}

// makeGraphNodeKey generates a key for a node by its insertion sequence.
func makeGraphNodeKey(seq uint64) []byte {
	return makeSeqKey(graphNodePrefix, seq)
}

// makeGraphLabelKey generates the label index key pointing at a node sequence.
// Labels are hashed so the key stays fixed-width whatever the label length.
// Format: prefix:blake2b-256(label)
func makeGraphLabelKey(label string) []byte {
	digest := blake2b.Sum256([]byte(label))
	prefixBytes := []byte(graphLabelPrefix + ":")
	buf := make([]byte, len(prefixBytes)+len(digest))
	offset := copy(buf, prefixBytes)
	copy(buf[offset:], digest[:])
	return buf
}
