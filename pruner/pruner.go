// Package pruner implements the Range Synthesizer and Iterator
// (spec.md §4.5, §4.6): given a scan's schema, partition schema,
// predicates, and explicit bounds, it builds the ordered, disjoint
// queue of partition-key ranges a scanner walks to decide which
// tablets to contact, and exposes the iteration and should-prune
// operations the scanner drives it with.
package pruner

import (
	"bytes"
	"encoding/hex"
	"time"

	"github.com/rpcpool/partition-pruner/hashbucket"
	"github.com/rpcpool/partition-pruner/keycodec"
	"github.com/rpcpool/partition-pruner/metrics"
	"github.com/rpcpool/partition-pruner/predicate"
	"github.com/rpcpool/partition-pruner/rangekey"
	"github.com/rpcpool/partition-pruner/rangequeue"
	"github.com/rpcpool/partition-pruner/schema"
)

// ScanConfig is everything the Range Synthesizer needs (spec.md
// §4.5's inputs list).
type ScanConfig struct {
	Schema          *schema.Schema
	PartitionSchema schema.PartitionSchema
	Predicates      predicate.Map

	// LowerBoundPK and UpperBoundPK are explicit, already-encoded
	// primary-key bounds supplied by the scan (e.g. from a
	// continuation token). Empty means unbounded.
	LowerBoundPK []byte
	UpperBoundPK []byte

	// LowerBoundPartitionKey and UpperBoundPartitionKey are explicit
	// partition-key bounds. Empty means unbounded.
	LowerBoundPartitionKey []byte
	UpperBoundPartitionKey []byte

	// HashFn is the agreed-upon hash function (spec.md §4.2). If nil,
	// hashbucket.XXHash64 is used.
	HashFn hashbucket.HashFn
}

// Pruner holds the synthesized partition-key range queue and answers
// the scanner's iteration and pruning queries (spec.md §4.6).
type Pruner struct {
	queue *rangequeue.Queue
}

// Create runs the Range Synthesizer over cfg (spec.md §4.5).
func Create(cfg ScanConfig) (*Pruner, error) {
	start := time.Now()
	defer func() {
		metrics.PrunerCreateDuration.Observe(time.Since(start).Seconds())
	}()

	if err := schema.Validate(cfg.Schema, cfg.PartitionSchema); err != nil {
		return nil, err
	}
	for _, id := range cfg.PartitionSchema.RangeSchema {
		p, ok := cfg.Predicates[id]
		if !ok {
			continue
		}
		switch p.Kind() {
		case predicate.None, predicate.Equality, predicate.Range, predicate.IsNotNull, predicate.InList:
		default:
			return nil, &schema.UnsupportedPredicateKindError{ColumnID: id, Kind: p.Kind()}
		}
	}
	for _, p := range cfg.Predicates {
		metrics.PredicateKindsSeen.WithLabelValues(p.Kind().String()).Inc()
	}

	if cfg.Predicates.HasNone() || (len(cfg.UpperBoundPK) > 0 && rangequeue.LowerGEUpper(cfg.LowerBoundPK, cfg.UpperBoundPK)) {
		return emptyPruner(), nil
	}

	rangeLower, err := rangekey.PushLower(cfg.Schema, cfg.PartitionSchema.RangeSchema, cfg.Predicates)
	if err != nil {
		return nil, err
	}
	rangeUpper, err := rangekey.PushUpper(cfg.Schema, cfg.PartitionSchema.RangeSchema, cfg.Predicates)
	if err != nil {
		return nil, err
	}

	if cfg.PartitionSchema.IsSimpleRangePartitioning(cfg.Schema) {
		if rangequeue.CompareLower(cfg.LowerBoundPK, rangeLower) > 0 {
			rangeLower = cfg.LowerBoundPK
		}
		if rangequeue.CompareUpper(cfg.UpperBoundPK, rangeUpper) < 0 {
			rangeUpper = cfg.UpperBoundPK
		}
	}

	hashFn := cfg.HashFn
	if hashFn == nil {
		hashFn = hashbucket.XXHash64
	}

	hashSchemas := cfg.PartitionSchema.HashSchemas
	buckets := make([]*uint32, len(hashSchemas))
	for i, hs := range hashSchemas {
		b, constrained, err := rangekey.PushHash(cfg.Schema, hs, cfg.Predicates, hashFn)
		if err != nil {
			return nil, err
		}
		if constrained {
			bb := b
			buckets[i] = &bb
		}
	}

	constrainedIndex := computeConstrainedIndex(buckets, rangeLower, rangeUpper)

	pairs := []pair{{}}
	for i := 0; i < constrainedIndex; i++ {
		isLast := i+1 == constrainedIndex && len(rangeUpper) == 0
		hs := hashSchemas[i]
		if b := buckets[i]; b != nil {
			hi := *b
			if isLast {
				hi++
			}
			loBytes := encodeBucket(*b)
			hiBytes := encodeBucket(hi)
			for j := range pairs {
				pairs[j].lo = append(pairs[j].lo, loBytes...)
				pairs[j].hi = append(pairs[j].hi, hiBytes...)
			}
			continue
		}
		next := make([]pair, 0, len(pairs)*int(hs.NumBuckets))
		for _, p := range pairs {
			for b := uint32(0); b < hs.NumBuckets; b++ {
				hi := b
				if isLast {
					hi++
				}
				lo := append(cloneBytes(p.lo), encodeBucket(b)...)
				hiVec := append(cloneBytes(p.lo), encodeBucket(hi)...)
				next = append(next, pair{lo: lo, hi: hiVec})
			}
		}
		pairs = next
	}

	for i := range pairs {
		pairs[i].lo = append(pairs[i].lo, rangeLower...)
		pairs[i].hi = append(pairs[i].hi, rangeUpper...)
	}

	ranges := make([]rangequeue.Range, 0, len(pairs))
	for _, p := range pairs {
		lo, hi := p.lo, p.hi
		if len(cfg.LowerBoundPartitionKey) > 0 && rangequeue.CompareLower(lo, cfg.LowerBoundPartitionKey) < 0 {
			lo = cfg.LowerBoundPartitionKey
		}
		if len(cfg.UpperBoundPartitionKey) > 0 && rangequeue.CompareUpper(hi, cfg.UpperBoundPartitionKey) > 0 {
			hi = cfg.UpperBoundPartitionKey
		}
		if len(hi) > 0 && bytes.Compare(lo, hi) >= 0 {
			continue
		}
		ranges = append(ranges, rangequeue.Range{Lower: lo, Upper: hi})
	}

	metrics.RangesProduced.Observe(float64(len(ranges)))
	metrics.RangesRemaining.Set(float64(len(ranges)))

	return &Pruner{queue: rangequeue.New(ranges)}, nil
}

func emptyPruner() *Pruner {
	metrics.RangesProduced.Observe(0)
	metrics.RangesRemaining.Set(0)
	return &Pruner{queue: rangequeue.New(nil)}
}

// computeConstrainedIndex locates the rightmost hash component that
// contributes to the partition key (spec.md §4.5).
func computeConstrainedIndex(buckets []*uint32, rangeLower, rangeUpper []byte) int {
	h := len(buckets)
	if len(rangeLower) > 0 || len(rangeUpper) > 0 {
		return h
	}
	for i := h; i >= 1; i-- {
		if buckets[i-1] != nil {
			return i
		}
	}
	return 0
}

func encodeBucket(b uint32) []byte {
	var buf bytes.Buffer
	keycodec.EncodeHashBucket(&buf, b)
	return buf.Bytes()
}

func cloneBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}

type pair struct {
	lo []byte
	hi []byte
}

// HasMorePartitionKeyRanges reports whether any range remains.
func (p *Pruner) HasMorePartitionKeyRanges() bool {
	return p.queue.HasMore()
}

// NextPartitionKey returns the lower bound of the head range. Its
// result is undefined if the queue is empty.
func (p *Pruner) NextPartitionKey() []byte {
	r, _ := p.queue.Peek()
	return r.Lower
}

// NextPartitionKeyRange returns the head range as (lower, upper).
func (p *Pruner) NextPartitionKeyRange() ([]byte, []byte) {
	r, _ := p.queue.Peek()
	return r.Lower, r.Upper
}

// RemovePartitionKeyRange advances past a tablet the scanner just
// consumed, whose exclusive upper bound was upperExclusive (spec.md
// §4.6's advance_past).
func (p *Pruner) RemovePartitionKeyRange(upperExclusive []byte) {
	p.queue.AdvancePast(upperExclusive)
	metrics.RangesRemaining.Set(float64(p.queue.Len()))
}

// ShouldPrune reports whether the candidate partition cannot overlap
// any range remaining in the queue (spec.md §4.6).
func (p *Pruner) ShouldPrune(partitionKeyStart, partitionKeyEnd []byte) bool {
	return p.queue.ShouldPrune(partitionKeyStart, partitionKeyEnd)
}

// NumRangesRemaining reports the queue depth, for logging and tests.
func (p *Pruner) NumRangesRemaining() int {
	return p.queue.Len()
}

// Describe renders the remaining ranges as a human-readable summary,
// for debug logging.
func (p *Pruner) Describe() string {
	var buf bytes.Buffer
	buf.WriteString("pruner[")
	for i, r := range p.queue.Snapshot() {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("[")
		buf.WriteString(hexOrInf(r.Lower, "-inf"))
		buf.WriteString(", ")
		buf.WriteString(hexOrInf(r.Upper, "+inf"))
		buf.WriteString(")")
	}
	buf.WriteString("]")
	return buf.String()
}

func hexOrInf(b []byte, inf string) string {
	if len(b) == 0 {
		return inf
	}
	return hex.EncodeToString(b)
}
