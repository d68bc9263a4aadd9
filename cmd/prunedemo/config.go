package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rpcpool/partition-pruner/columntype"
	"github.com/rpcpool/partition-pruner/predicate"
	"github.com/rpcpool/partition-pruner/pruner"
	"github.com/rpcpool/partition-pruner/schema"
	"github.com/rpcpool/partition-pruner/schemadesc"
)

// planConfig is the on-disk JSON shape prunedemo reads. Byte values
// (predicate bounds, explicit key bounds) are hex-encoded strings;
// the empty string means "absent" throughout, matching the pruner's
// own empty-slice-means-unbounded convention.
type planConfig struct {
	Columns       []columnConfig     `json:"columns"`
	NumPrimaryKey int                `json:"num_primary_key"`
	HashSchemas   []hashSchemaConfig `json:"hash_schemas"`
	RangeSchema   []int              `json:"range_schema"`
	Predicates    map[string]predConfig `json:"predicates"`

	LowerBoundPK           string `json:"lower_bound_pk"`
	UpperBoundPK           string `json:"upper_bound_pk"`
	LowerBoundPartitionKey string `json:"lower_bound_partition_key"`
	UpperBoundPartitionKey string `json:"upper_bound_partition_key"`
}

type columnConfig struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Nullable bool   `json:"nullable"`
}

type hashSchemaConfig struct {
	ColumnIDs  []int  `json:"column_ids"`
	NumBuckets uint32 `json:"num_buckets"`
	Seed       uint32 `json:"seed"`
}

type predConfig struct {
	Kind  string `json:"kind"` // "equality", "range", "is_not_null", "in_list", "none"
	Lower string `json:"lower"`
	Upper string `json:"upper"`
}

func loadPlanConfig(path string) (*planConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("prunedemo: open config: %w", err)
	}
	defer f.Close()

	var cfg planConfig
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("prunedemo: decode config: %w", err)
	}
	return &cfg, nil
}

func kindFromString(s string) (columntype.Kind, error) {
	switch s {
	case "int8":
		return columntype.Int8, nil
	case "int16":
		return columntype.Int16, nil
	case "int32":
		return columntype.Int32, nil
	case "int64":
		return columntype.Int64, nil
	case "uint8":
		return columntype.Uint8, nil
	case "uint16":
		return columntype.Uint16, nil
	case "uint32":
		return columntype.Uint32, nil
	case "uint64":
		return columntype.Uint64, nil
	case "bool":
		return columntype.Bool, nil
	case "float32":
		return columntype.Float32, nil
	case "float64":
		return columntype.Float64, nil
	case "bytes":
		return columntype.Bytes, nil
	default:
		return 0, fmt.Errorf("prunedemo: unknown column kind %q", s)
	}
}

func decodeHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}

// buildScanConfig turns a planConfig into the pruner's ScanConfig,
// resolving column kinds and predicate bounds.
func buildScanConfig(cfg *planConfig) (pruner.ScanConfig, error) {
	columns := make([]schema.Column, len(cfg.Columns))
	for i, c := range cfg.Columns {
		k, err := kindFromString(c.Kind)
		if err != nil {
			return pruner.ScanConfig{}, err
		}
		columns[i] = schema.Column{ID: c.ID, Name: c.Name, Kind: k, Nullable: c.Nullable}
	}
	s, err := schema.New(columns, cfg.NumPrimaryKey)
	if err != nil {
		return pruner.ScanConfig{}, err
	}

	hashSchemas := make([]schema.HashSchema, len(cfg.HashSchemas))
	for i, hs := range cfg.HashSchemas {
		hashSchemas[i] = schema.HashSchema{ColumnIDs: hs.ColumnIDs, NumBuckets: hs.NumBuckets, Seed: hs.Seed}
	}

	preds := make(predicate.Map, len(cfg.Predicates))
	for colIDStr, p := range cfg.Predicates {
		var colID int
		if _, err := fmt.Sscanf(colIDStr, "%d", &colID); err != nil {
			return pruner.ScanConfig{}, fmt.Errorf("prunedemo: predicate column id %q: %w", colIDStr, err)
		}
		lower, err := decodeHex(p.Lower)
		if err != nil {
			return pruner.ScanConfig{}, fmt.Errorf("prunedemo: predicate %d lower bound: %w", colID, err)
		}
		upper, err := decodeHex(p.Upper)
		if err != nil {
			return pruner.ScanConfig{}, fmt.Errorf("prunedemo: predicate %d upper bound: %w", colID, err)
		}
		switch p.Kind {
		case "equality":
			preds[colID] = predicate.NewEquality(lower)
		case "range":
			preds[colID] = predicate.NewRange(lower, upper)
		case "is_not_null":
			preds[colID] = predicate.NewIsNotNull()
		case "in_list":
			preds[colID] = predicate.NewInList(nil)
		case "none":
			preds[colID] = predicate.NewNone()
		default:
			return pruner.ScanConfig{}, fmt.Errorf("prunedemo: predicate %d: unknown kind %q", colID, p.Kind)
		}
	}

	lowerPK, err := decodeHex(cfg.LowerBoundPK)
	if err != nil {
		return pruner.ScanConfig{}, err
	}
	upperPK, err := decodeHex(cfg.UpperBoundPK)
	if err != nil {
		return pruner.ScanConfig{}, err
	}
	lowerPartKey, err := decodeHex(cfg.LowerBoundPartitionKey)
	if err != nil {
		return pruner.ScanConfig{}, err
	}
	upperPartKey, err := decodeHex(cfg.UpperBoundPartitionKey)
	if err != nil {
		return pruner.ScanConfig{}, err
	}

	return pruner.ScanConfig{
		Schema:                 s,
		PartitionSchema:        schema.PartitionSchema{HashSchemas: hashSchemas, RangeSchema: cfg.RangeSchema},
		Predicates:             preds,
		LowerBoundPK:           lowerPK,
		UpperBoundPK:           upperPK,
		LowerBoundPartitionKey: lowerPartKey,
		UpperBoundPartitionKey: upperPartKey,
	}, nil
}

// fingerprint builds a compact schemadesc.Fingerprint summarizing cfg's
// columns and partitioning shape, for correlating a run's log lines with
// the exact scan configuration that produced them.
func fingerprint(cfg *planConfig) (*schemadesc.Fingerprint, error) {
	f := &schemadesc.Fingerprint{}
	for _, c := range cfg.Columns {
		if err := f.Add([]byte(c.Name), []byte(c.Kind)); err != nil {
			return nil, fmt.Errorf("prunedemo: fingerprint column %s: %w", c.Name, err)
		}
	}
	for i, hs := range cfg.HashSchemas {
		if err := f.AddUint32([]byte(fmt.Sprintf("hash_schema_%d_buckets", i)), hs.NumBuckets); err != nil {
			return nil, fmt.Errorf("prunedemo: fingerprint hash schema %d: %w", i, err)
		}
	}
	if len(cfg.RangeSchema) > 0 {
		ids := fmt.Sprint(cfg.RangeSchema)
		if err := f.Add([]byte("range_schema"), []byte(ids)); err != nil {
			return nil, fmt.Errorf("prunedemo: fingerprint range schema: %w", err)
		}
	}
	return f, nil
}
