package worker

import (
	"strconv"

	"github.com/custodia-labs/idxbeast/internal/varint"
)

// encodeTriple varint-encodes a single posting entry (doc_id, frequency,
// average_position), per spec.md §4.4.
func encodeTriple(docID, frequency, averagePosition int64) []byte {
	return varint.EncodeAll(uint64(docID), uint64(frequency), uint64(averagePosition))
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
