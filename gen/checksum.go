// Package gen composes the generator core: checksum-based drift
// detection, the marker-delimited preservation merge, artifact template
// builders, and the orchestrator that ties them to a metadata source and
// an output directory.
package gen

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/tabulagen/tabula/schema"
)

// Checksum computes the content hash of a table's metadata. It digests
// the canonical serialization, so semantically identical metadata always
// hashes identically and any change to the column set, types, nullability
// or filterability changes the hash.
func Checksum(t *schema.Table) (string, error) {
	b, err := t.Canonical()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
