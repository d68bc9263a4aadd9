// Package rangekey implements the Range Key Pusher and Hash Key Pusher
// (spec.md §4.3, §4.4): translating a column predicate map into the
// range-key lower/upper bound byte strings, and deciding whether a hash
// component is pinned to exactly one bucket.
package rangekey

import (
	"fmt"

	"k8s.io/klog/v2"

	"github.com/rpcpool/partition-pruner/hashbucket"
	"github.com/rpcpool/partition-pruner/predicate"
	"github.com/rpcpool/partition-pruner/schema"
)

// PushLower computes the range-key lower bound per spec.md §4.3. It
// returns (nil, nil) for "from the beginning".
func PushLower(s *schema.Schema, rangeSchema []int, preds predicate.Map) ([]byte, error) {
	if len(rangeSchema) == 0 {
		return nil, nil
	}
	row := s.NewPartialRow()
	pushed := 0

	for _, colID := range rangeSchema {
		idx, ok := s.IndexOfID(colID)
		if !ok {
			return nil, fmt.Errorf("rangekey: column id %d not present in schema", colID)
		}
		pred, has := preds[colID]
		if !has {
			break
		}
		if pred.Kind() == predicate.Equality {
			row.SetRaw(idx, pred.LowerBytes())
			pushed++
			continue
		}
		if pred.Kind() == predicate.Range && pred.LowerBytes() != nil {
			row.SetRaw(idx, pred.LowerBytes())
			pushed++
			continue
		}
		// No predicate, a range predicate with no lower (min-fill
		// strategy, spec.md §9 Open Question), or an unsupported kind:
		// stop without pushing this column.
		break
	}

	if pushed == 0 {
		return nil, nil
	}

	fillRemaining(s, row, rangeSchema)
	return schema.EncodeRangeKey(row, rangeSchema)
}

// PushUpper computes the range-key exclusive upper bound per spec.md
// §4.3. It returns (nil, nil) for "no upper bound" (+∞), which also
// covers the equality-on-maximum-value overflow case.
func PushUpper(s *schema.Schema, rangeSchema []int, preds predicate.Map) ([]byte, error) {
	if len(rangeSchema) == 0 {
		return nil, nil
	}
	row := s.NewPartialRow()
	var pushedIdx []int
	finalWasEquality := false

	for _, colID := range rangeSchema {
		idx, ok := s.IndexOfID(colID)
		if !ok {
			return nil, fmt.Errorf("rangekey: column id %d not present in schema", colID)
		}
		pred, has := preds[colID]
		if !has {
			break
		}
		switch pred.Kind() {
		case predicate.Equality:
			row.SetRaw(idx, pred.LowerBytes())
			pushedIdx = append(pushedIdx, idx)
			finalWasEquality = true
			continue
		case predicate.Range:
			if pred.UpperBytes() != nil {
				row.SetRaw(idx, pred.UpperBytes())
				pushedIdx = append(pushedIdx, idx)
				finalWasEquality = false
			}
			// Range upper bounds do not compose beyond the first range
			// column (spec.md §4.3 step 4): always stop here, whether or
			// not an upper was present.
		}
		break
	}

	if len(pushedIdx) == 0 {
		return nil, nil
	}

	if finalWasEquality {
		if !row.IncrementPrefix(pushedIdx) {
			klog.V(2).Infof("rangekey: equality prefix over columns %v overflowed at type maximum, upper bound degenerates to +inf", rangeSchema)
			return nil, nil
		}
	}

	fillRemaining(s, row, rangeSchema)
	return schema.EncodeRangeKey(row, rangeSchema)
}

func fillRemaining(s *schema.Schema, row *schema.PartialRow, rangeSchema []int) {
	for _, colID := range rangeSchema {
		idx, _ := s.IndexOfID(colID)
		if !row.IsSet(idx) {
			row.SetMin(idx)
		}
	}
}

// PushHash determines whether every column of hs is constrained by an
// Equality predicate (spec.md §4.4). If so it returns the single bucket
// those equalities resolve to and constrained=true; otherwise
// constrained is false and bucket is meaningless.
func PushHash(s *schema.Schema, hs schema.HashSchema, preds predicate.Map, hashFn hashbucket.HashFn) (bucket uint32, constrained bool, err error) {
	row := s.NewPartialRow()
	for _, colID := range hs.ColumnIDs {
		idx, ok := s.IndexOfID(colID)
		if !ok {
			return 0, false, fmt.Errorf("rangekey: column id %d not present in schema", colID)
		}
		pred, has := preds[colID]
		if !has || pred.Kind() != predicate.Equality {
			return 0, false, nil
		}
		row.SetRaw(idx, pred.LowerBytes())
	}
	b, err := hashbucket.BucketFor(row, hs, hashFn)
	if err != nil {
		return 0, false, err
	}
	return b, true, nil
}
