// Package hashbucket computes the bucket index a row falls into for one
// hash-partitioning component: encode the row's hash-schema columns with
// the same escaping rules as a range key, hash the result with the
// table's agreed-upon hash function and seed, and reduce modulo the
// bucket count. The hash function itself is an external collaborator
// (spec.md §4.2, §6) — the server and client need only agree on it.
package hashbucket

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/rpcpool/partition-pruner/schema"
)

// HashFn hashes data (the encoded hash-schema columns) salted with seed.
type HashFn func(data []byte, seed uint32) uint64

// XXHash64 is the default HashFn, built on the same xxhash package the
// teacher codebase already depends on for its own bucket assignment. The
// seed is mixed in by hashing it as a 4-byte big-endian prefix ahead of
// data; cespare/xxhash/v2 has no native seeded entry point.
func XXHash64(data []byte, seed uint32) uint64 {
	d := xxhash.New()
	var seedBuf [4]byte
	binary.BigEndian.PutUint32(seedBuf[:], seed)
	d.Write(seedBuf[:])
	d.Write(data)
	return d.Sum64()
}

// BucketFor returns the bucket index the row's hash-schema columns hash
// to, using hashFn. The row must have every column named by hs set.
func BucketFor(row *schema.PartialRow, hs schema.HashSchema, hashFn HashFn) (uint32, error) {
	encoded, err := schema.EncodeRangeKey(row, hs.ColumnIDs)
	if err != nil {
		return 0, err
	}
	h := hashFn(encoded, hs.Seed)
	return uint32(h % uint64(hs.NumBuckets)), nil
}
