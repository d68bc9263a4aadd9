package schema

import (
	"fmt"

	"github.com/rpcpool/partition-pruner/continuity"
)

// SchemaMismatchError reports a partition-schema column id absent from the
// table schema, or a column claimed by more than one partitioning
// component (spec.md §3's disjointness invariant). It is a fatal
// configuration error (spec.md §7).
type SchemaMismatchError struct {
	ColumnID int
	Context  string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: column id %d (%s)", e.ColumnID, e.Context)
}

// UnsupportedPredicateKindError reports a predicate kind the pruner
// cannot push into a range-partition column (spec.md §7). Equality and
// Range are always supported; IsNotNull and InList are treated as
// unconstrained rather than erroring, so this can only arise from a kind
// outside predicate.Kind's closed set reaching the pruner.
type UnsupportedPredicateKindError struct {
	ColumnID int
	Kind     fmt.Stringer
}

func (e *UnsupportedPredicateKindError) Error() string {
	return fmt.Sprintf("unsupported predicate kind %s on range-partition column id %d", e.Kind, e.ColumnID)
}

// Validate checks that every column id named by ps exists in s and that
// the hash-schema and range-schema column sets are pairwise disjoint
// subsets of the primary key (spec.md §3). It stops at, and reports,
// the first problem found.
func Validate(s *Schema, ps PartitionSchema) error {
	pk := make(map[int]bool, len(s.PrimaryKeyColumnIDs()))
	for _, id := range s.PrimaryKeyColumnIDs() {
		pk[id] = true
	}

	claimed := make(map[int]bool)
	chain := continuity.New()

	for hi, hs := range ps.HashSchemas {
		if len(hs.ColumnIDs) == 0 {
			hi := hi
			chain = chain.Step(func() error {
				return fmt.Errorf("schema: hash schema %d has no columns", hi)
			})
			continue
		}
		if hs.NumBuckets < 2 {
			hi := hi
			chain = chain.Step(func() error {
				return fmt.Errorf("schema: hash schema %d bucket count %d must be >= 2", hi, hs.NumBuckets)
			})
			continue
		}
		for _, id := range hs.ColumnIDs {
			id, hi := id, hi
			chain = chain.Step(func() error {
				return checkColumnID(s, pk, claimed, id, fmt.Sprintf("hash schema %d", hi))
			})
		}
	}

	for _, id := range ps.RangeSchema {
		id := id
		chain = chain.Step(func() error {
			return checkColumnID(s, pk, claimed, id, "range schema")
		})
	}

	return chain.Err()
}

func checkColumnID(s *Schema, pk, claimed map[int]bool, id int, context string) error {
	if _, ok := s.IndexOfID(id); !ok {
		return &SchemaMismatchError{ColumnID: id, Context: context + ": absent from table schema"}
	}
	if !pk[id] {
		return &SchemaMismatchError{ColumnID: id, Context: context + ": not a primary key column"}
	}
	if claimed[id] {
		return &SchemaMismatchError{ColumnID: id, Context: context + ": already claimed by another partitioning component"}
	}
	claimed[id] = true
	return nil
}
