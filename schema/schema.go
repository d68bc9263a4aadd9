// Package schema models the pruner's external collaborators: the table
// schema, the two-part partition schema (hash schemas + range schema),
// and partial rows used to assemble encoded keys. Full schema
// representation, column metadata storage, and partial-row persistence
// are out of scope for the pruner (spec.md §1); this package supplies
// just enough of a concrete shape for the pruner to consume per spec.md
// §6.
package schema

import (
	"fmt"

	"github.com/rpcpool/partition-pruner/columntype"
	"github.com/rpcpool/partition-pruner/keycodec"
)

// Column describes one table column.
type Column struct {
	ID       int
	Name     string
	Kind     columntype.Kind
	Nullable bool
}

// Schema is an ordered list of columns, the first NumPrimaryKey of which
// form the primary key.
type Schema struct {
	columns       []Column
	kinds         []columntype.Kind
	byID          map[int]int
	numPrimaryKey int
}

// New builds a Schema from an ordered column list. numPrimaryKey must be
// between 1 and len(columns).
func New(columns []Column, numPrimaryKey int) (*Schema, error) {
	if numPrimaryKey <= 0 || numPrimaryKey > len(columns) {
		return nil, fmt.Errorf("schema: primary key size %d invalid for %d columns", numPrimaryKey, len(columns))
	}
	byID := make(map[int]int, len(columns))
	kinds := make([]columntype.Kind, len(columns))
	for i, c := range columns {
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("schema: duplicate column id %d", c.ID)
		}
		byID[c.ID] = i
		kinds[i] = c.Kind
	}
	return &Schema{
		columns:       append([]Column(nil), columns...),
		kinds:         kinds,
		byID:          byID,
		numPrimaryKey: numPrimaryKey,
	}, nil
}

// ColumnByID returns the column with the given stable id.
func (s *Schema) ColumnByID(id int) (Column, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Column{}, false
	}
	return s.columns[i], true
}

// ColumnByIndex returns the column at position i.
func (s *Schema) ColumnByIndex(i int) Column {
	return s.columns[i]
}

// IndexOfID returns the column index for a given stable id.
func (s *Schema) IndexOfID(id int) (int, bool) {
	i, ok := s.byID[id]
	return i, ok
}

// NumColumns returns the total column count.
func (s *Schema) NumColumns() int {
	return len(s.columns)
}

// PrimaryKeyColumnIDs returns the ids of the first NumPrimaryKey columns,
// in schema order.
func (s *Schema) PrimaryKeyColumnIDs() []int {
	ids := make([]int, s.numPrimaryKey)
	for i := 0; i < s.numPrimaryKey; i++ {
		ids[i] = s.columns[i].ID
	}
	return ids
}

// NewPartialRow creates an empty row sized to this schema.
func (s *Schema) NewPartialRow() *PartialRow {
	return &PartialRow{
		schema: s,
		values: make([][]byte, len(s.columns)),
		isSet:  make([]bool, len(s.columns)),
	}
}

// HashSchema is one hash-bucket partitioning component: a non-empty
// subset of primary-key column ids, a bucket count, and a seed.
type HashSchema struct {
	ColumnIDs  []int
	NumBuckets uint32
	Seed       uint32
}

// PartitionSchema is the table's two-part partitioning scheme.
type PartitionSchema struct {
	HashSchemas []HashSchema
	RangeSchema []int // primary-key column ids, in order; may be empty
}

// IsSimpleRangePartitioning reports whether this is exactly one range
// schema identical to the primary key and no hash schemas (spec.md §4.5).
func (ps PartitionSchema) IsSimpleRangePartitioning(s *Schema) bool {
	if len(ps.HashSchemas) != 0 {
		return false
	}
	pk := s.PrimaryKeyColumnIDs()
	if len(ps.RangeSchema) != len(pk) {
		return false
	}
	for i, id := range pk {
		if ps.RangeSchema[i] != id {
			return false
		}
	}
	return true
}

// PartialRow holds raw, native-encoding column values for an arbitrary
// subset of a schema's columns.
type PartialRow struct {
	schema *Schema
	values [][]byte
	isSet  []bool
}

// SetMin sets the column at index to its type's native minimum.
func (r *PartialRow) SetMin(index int) {
	r.values[index] = columntype.MinBytes(r.schema.kinds[index])
	r.isSet[index] = true
}

// SetRaw sets the column at index to a copy of raw (native-encoding
// bytes, e.g. a predicate's already-simplified bound value).
func (r *PartialRow) SetRaw(index int, raw []byte) {
	cp := append([]byte(nil), raw...)
	r.values[index] = cp
	r.isSet[index] = true
}

// IsSet reports whether the column at index has been assigned a value.
func (r *PartialRow) IsSet(index int) bool {
	return r.isSet[index]
}

// Raw returns the native-encoding bytes at index, or nil if unset.
func (r *PartialRow) Raw(index int) []byte {
	return r.values[index]
}

// IncrementColumn bumps the column at index to its lexicographic
// successor in place. It returns false iff the column overflowed back to
// its minimum (spec.md §4.1).
func (r *PartialRow) IncrementColumn(index int) bool {
	return r.IncrementPrefix([]int{index})
}

// IncrementPrefix bumps the key formed by the columns at indexes (in the
// given order) by one lexicographic unit, starting at the last index and
// carrying leftward on overflow (spec.md §4.1's increment_key). It
// returns false iff the carry propagated past indexes[0].
func (r *PartialRow) IncrementPrefix(indexes []int) bool {
	return keycodec.IncrementKey(r.schema.kinds, r.values, indexes)
}

// EncodeRangeKey encodes the columns named by columnIDs, in order, as a
// range key (spec.md §4.1's encode_range_key / §4.2's hash-column
// encoding — both use the same rule: every column but the last is
// escaped, the last is not).
func EncodeRangeKey(row *PartialRow, columnIDs []int) ([]byte, error) {
	kinds := make([]columntype.Kind, len(columnIDs))
	values := make([][]byte, len(columnIDs))
	for i, id := range columnIDs {
		idx, ok := row.schema.IndexOfID(id)
		if !ok {
			return nil, fmt.Errorf("schema: column id %d not present in schema", id)
		}
		kinds[i] = row.schema.kinds[idx]
		values[i] = row.values[idx]
	}
	return keycodec.EncodeRangeKeyColumns(kinds, values)
}
