package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Hash is a hex-encoded SHA-256 digest
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex digits for log lines
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// ComputePopulationHash fingerprints an ordered population. Both the IDs and
// the exact feature values contribute, so any edit or reordering changes it.
func ComputePopulationHash(ids []PatientID, rows [][]float64) Hash {
	h := sha256.New()
	buf := make([]byte, 0, 64)
	for i, id := range ids {
		h.Write([]byte(id))
		h.Write([]byte{0})
		if i < len(rows) {
			for _, x := range rows[i] {
				buf = strconv.AppendFloat(buf[:0], x, 'g', -1, 64)
				h.Write(buf)
				h.Write([]byte{','})
			}
		}
		h.Write([]byte{'\n'})
	}
	return Hash(hex.EncodeToString(h.Sum(nil)))
}
