package rangekey

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpcpool/partition-pruner/columntype"
	"github.com/rpcpool/partition-pruner/hashbucket"
	"github.com/rpcpool/partition-pruner/predicate"
	"github.com/rpcpool/partition-pruner/schema"
)

func twoColumnSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New([]schema.Column{
		{ID: 1, Name: "a", Kind: columntype.Int32},
		{ID: 2, Name: "b", Kind: columntype.Int32},
	}, 2)
	require.NoError(t, err)
	return s
}

// i32 encodes v as its native (pre-encoding) two's-complement big-endian
// representation — the raw form predicates and PartialRow columns carry.
func i32(v int32) []byte {
	u := uint32(v)
	return []byte{byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u)}
}

func TestPushLowerNoPredicatesReturnsNil(t *testing.T) {
	s := twoColumnSchema(t)
	got, err := PushLower(s, []int{1, 2}, predicate.Map{})
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPushLowerEqualityOnAllColumnsFillsNothingExtra(t *testing.T) {
	s := twoColumnSchema(t)
	preds := predicate.Map{
		1: predicate.NewEquality(i32(5)),
		2: predicate.NewEquality(i32(10)),
	}
	got, err := PushLower(s, []int{1, 2}, preds)
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestPushLowerStopsAtFirstGap(t *testing.T) {
	s := twoColumnSchema(t)
	// Column 2 has no predicate: pushing stops after column 1, then fills
	// column 2 with its type minimum.
	preds := predicate.Map{1: predicate.NewEquality(i32(5))}
	got, err := PushLower(s, []int{1, 2}, preds)
	require.NoError(t, err)
	require.NotNil(t, got)

	withMin := predicate.Map{1: predicate.NewEquality(i32(5)), 2: predicate.NewEquality(columntype.MinBytes(columntype.Int32))}
	wantLike, err := PushLower(s, []int{1, 2}, withMin)
	require.NoError(t, err)
	require.Equal(t, wantLike, got)
}

func TestPushUpperEqualityOnMaxValueDegeneratesToUnbounded(t *testing.T) {
	s := twoColumnSchema(t)
	preds := predicate.Map{1: predicate.NewEquality(columntype.MaxBytes(columntype.Int32))}
	got, err := PushUpper(s, []int{1, 2}, preds)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPushUpperRangeUpperDoesNotComposeBeyondFirstRangeColumn(t *testing.T) {
	s := twoColumnSchema(t)
	preds := predicate.Map{
		1: predicate.NewRange(nil, i32(5)),
		2: predicate.NewEquality(i32(100)), // must be ignored
	}
	got, err := PushUpper(s, []int{1, 2}, preds)
	require.NoError(t, err)

	onlyFirst, err := PushUpper(s, []int{1, 2}, predicate.Map{1: predicate.NewRange(nil, i32(5))})
	require.NoError(t, err)
	require.Equal(t, onlyFirst, got)
}

func TestPushUpperNoPredicatesReturnsNil(t *testing.T) {
	s := twoColumnSchema(t)
	got, err := PushUpper(s, []int{1, 2}, predicate.Map{})
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPushHashRequiresEqualityOnEveryColumn(t *testing.T) {
	s, err := schema.New([]schema.Column{
		{ID: 1, Name: "a", Kind: columntype.Int32},
		{ID: 2, Name: "b", Kind: columntype.Int32},
	}, 2)
	require.NoError(t, err)
	hs := schema.HashSchema{ColumnIDs: []int{1, 2}, NumBuckets: 4, Seed: 0}

	_, constrained, err := PushHash(s, hs, predicate.Map{1: predicate.NewEquality(i32(1))}, hashbucket.XXHash64)
	require.NoError(t, err)
	require.False(t, constrained, "one column missing its equality predicate must leave the hash component unconstrained")

	bucket, constrained, err := PushHash(s, hs, predicate.Map{
		1: predicate.NewEquality(i32(1)),
		2: predicate.NewEquality(i32(2)),
	}, hashbucket.XXHash64)
	require.NoError(t, err)
	require.True(t, constrained)
	require.Less(t, bucket, uint32(4))
}

func TestPushHashTreatsRangePredicateAsUnconstrained(t *testing.T) {
	s, err := schema.New([]schema.Column{{ID: 1, Name: "a", Kind: columntype.Int32}}, 1)
	require.NoError(t, err)
	hs := schema.HashSchema{ColumnIDs: []int{1}, NumBuckets: 4, Seed: 0}

	_, constrained, err := PushHash(s, hs, predicate.Map{1: predicate.NewRange(i32(1), i32(2))}, hashbucket.XXHash64)
	require.NoError(t, err)
	require.False(t, constrained)
}
