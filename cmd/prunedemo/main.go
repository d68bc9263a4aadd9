// Command prunedemo loads a scan configuration from a JSON file, runs
// the range synthesizer, and prints the resulting partition-key range
// queue. It exists to exercise the pruner end to end from the command
// line, the way the teacher CLI exercises its CAR/index tooling.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"sort"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"

	"github.com/rpcpool/partition-pruner/metrics"
)

var gitCommitSHA = ""

func main() {
	recordVersion()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, syscall.SIGTERM, syscall.SIGINT)

		select {
		case <-interrupt:
			fmt.Println()
			klog.Info("received interrupt signal")
			cancel()
		case <-ctx.Done():
		}

		signal.Stop(interrupt)
	}()

	app := &cli.App{
		Name:        "prunedemo",
		Version:     gitCommitSHA,
		Description: "Synthesize a partition-key range queue from a scan configuration and print it.",
		Flags: []cli.Flag{
			FlagVerbose,
		},
		Commands: []*cli.Command{
			newCmd_Plan(),
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.RunContext(ctx, os.Args); err != nil {
		klog.Fatal(err)
	}
}

// FlagVerbose is a global flag, matching the teacher's global-flag
// convention. The plan command treats it like --dump-config and dumps
// the parsed configuration; it does not change klog verbosity.
var FlagVerbose = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "enable verbose logging",
}

// runID tags one prunedemo invocation in log lines, the way the
// teacher tags long-running index jobs.
func runID() string {
	return uuid.New().String()
}

// recordVersion sets the always-1 Version gauge once at process start,
// the way the teacher's cmd-version.go reports build provenance.
func recordVersion() {
	labels := map[string]string{
		"started_at": time.Now().Format(time.RFC3339),
		"tag":        gitCommitSHA,
		"commit":     gitCommitSHA,
		"compiler":   "",
		"goarch":     runtime.GOARCH,
		"goos":       runtime.GOOS,
		"goamd64":    "",
		"vcs":        "",
		"vcs_revision": "",
		"vcs_time":     "",
		"vcs_modified": "",
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "-compiler":
				labels["compiler"] = setting.Value
			case "GOAMD64":
				labels["goamd64"] = setting.Value
			case "vcs":
				labels["vcs"] = setting.Value
			case "vcs.revision":
				labels["vcs_revision"] = setting.Value
			case "vcs.time":
				labels["vcs_time"] = setting.Value
			case "vcs.modified":
				labels["vcs_modified"] = setting.Value
			}
		}
	}
	metrics.Version.With(labels).Set(1)
}
