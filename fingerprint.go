package odd

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a BLAKE2b-256 digest of the table's schema: every descriptor's
// class name, attribute names and construction operation, in table order.
//
// Processes exchanging odd payloads can compare fingerprints to confirm they
// registered the same classes the same way. Getters and constructors are code and
// do not contribute.
func (t *Table) Fingerprint() string {
	h, err := blake2b.New256(nil)
	if err != nil {
		// Only a key longer than 64 bytes fails; there is no key.
		panic(err)
	}

	var n [4]byte
	write := func(s string) {
		binary.BigEndian.PutUint32(n[:], uint32(len(s)))
		h.Write(n[:])
		h.Write([]byte(s))
	}

	for _, d := range t.Descriptors() {
		write(d.className)
		write(d.op.String())
		binary.BigEndian.PutUint32(n[:], uint32(len(d.names)))
		h.Write(n[:])
		for _, name := range d.names {
			write(name)
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}
