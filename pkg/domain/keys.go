package domain

import "golang.org/x/crypto/blake2b"

// RecordKey addresses a persisted record. Keys are derived deterministically
// from seed strings so the same names always resolve to the same key, and
// uniqueness of names is enforced by key occupancy alone (no secondary
// indexes).
type RecordKey [32]byte

// Seed prefixes keep the key spaces of the three record kinds disjoint.
const (
	seedService = "service"
	seedTLD     = "tld"
	seedDomain  = "domain"
)

// ServiceKey returns the key of the service registry singleton.
func ServiceKey() RecordKey {
	return deriveKey(seedService)
}

// TLDKey returns the key of the namespace record for name.
func TLDKey(name string) RecordKey {
	return deriveKey(seedTLD, name)
}

// DomainKey returns the key of the domain record for (name, tld).
func DomainKey(name, tld string) RecordKey {
	return deriveKey(seedDomain, name, tld)
}

func deriveKey(seeds ...string) RecordKey {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err) // blake2b.New256 only fails with an oversized key
	}
	for _, s := range seeds {
		// Length-prefix each seed so ("ab","c") and ("a","bc") differ.
		h.Write([]byte{byte(len(s))})
		h.Write([]byte(s))
	}
	var k RecordKey
	copy(k[:], h.Sum(nil))
	return k
}
