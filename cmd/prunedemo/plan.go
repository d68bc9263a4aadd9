package main

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"

	"github.com/rpcpool/partition-pruner/pruner"
)

func newCmd_Plan() *cli.Command {
	return &cli.Command{
		Name:        "plan",
		Description: "Synthesize and print the partition-key range queue for a scan configuration",
		ArgsUsage:   "--config=<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Usage:    "Path to a JSON scan configuration",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "dump-config",
				Usage: "Dump the parsed configuration before planning",
			},
		},
		Action: func(c *cli.Context) error {
			id := runID()
			startedAt := time.Now()
			defer func() {
				klog.Infof("[%s] finished in %s", id, time.Since(startedAt))
			}()

			cfg, err := loadPlanConfig(c.String("config"))
			if err != nil {
				return err
			}
			if c.Bool("dump-config") || c.Bool("verbose") {
				spew.Dump(cfg)
			}

			fp, err := fingerprint(cfg)
			if err != nil {
				return err
			}
			klog.Infof("[%s] schema fingerprint %s", id, hex.EncodeToString(fp.Bytes()))

			scanCfg, err := buildScanConfig(cfg)
			if err != nil {
				return err
			}

			p, err := pruner.Create(scanCfg)
			if err != nil {
				return err
			}
			klog.Infof("[%s] synthesized %d ranges", id, p.NumRangesRemaining())

			n := 0
			for p.HasMorePartitionKeyRanges() {
				lo, hi := p.NextPartitionKeyRange()
				fmt.Printf("range %d: [%s, %s)\n", n, hexOrInf(lo, "-inf"), hexOrInf(hi, "+inf"))
				p.RemovePartitionKeyRange(hi)
				n++
			}
			return nil
		},
	}
}

func hexOrInf(b []byte, inf string) string {
	if len(b) == 0 {
		return inf
	}
	return hex.EncodeToString(b)
}
