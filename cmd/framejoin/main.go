// Command framejoin merges the stack map frames flowing into the same
// instructions and prints the merged frames.
//
//	framejoin -hierarchy classes.yaml -frames frames.yaml [-config stackmap.toml]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/speakeasy-api/stackmap/frame"
	"github.com/speakeasy-api/stackmap/frametype"
	"github.com/speakeasy-api/stackmap/pkg/config"
	"github.com/speakeasy-api/stackmap/pkg/hierarchy"
	"github.com/speakeasy-api/stackmap/pkg/types"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) (code int) {
	fs := flag.NewFlagSet("framejoin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	hierarchyPath := fs.String("hierarchy", "", "YAML class hierarchy")
	framesPath := fs.String("frames", "", "YAML frames to merge")
	configPath := fs.String("config", "", "stackmap.toml (default: nearest one above the working directory)")
	strict := fs.Bool("strict", false, "treat joins of uninitializedThis with other types as fatal")
	verbose := fs.Bool("v", false, "log each join and merge")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *framesPath == "" {
		fmt.Fprintln(stderr, "framejoin: -frames is required")
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "framejoin: %v\n", err)
		return 1
	}
	opts := cfg.Options()
	if *strict {
		opts.Strict = true
	}
	if *verbose {
		opts.LogLevel = "debug"
	}
	opts.Logger = frametype.NewLogger(frametype.ParseLogLevel(opts.LogLevel), stderr)

	factory := types.NewFactory()
	table, err := loadHierarchy(*hierarchyPath, factory)
	if err != nil {
		fmt.Fprintf(stderr, "framejoin: %v\n", err)
		return 1
	}
	blocks, err := loadFrames(*framesPath, frame.NewParser(factory, table))
	if err != nil {
		fmt.Fprintf(stderr, "framejoin: %v\n", err)
		return 1
	}

	// Invariant violations mean the input frames could never come from
	// verifiable code; report them instead of crashing.
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*frametype.InvariantError)
			if !ok {
				panic(r)
			}
			fmt.Fprint(stderr, formatMergeError(ie))
			code = 1
		}
	}()

	merger := frame.NewMerger(frametype.NewJoiner(table, opts))
	requests := make([]frame.Request, len(blocks))
	for i, b := range blocks {
		requests[i] = frame.Request{Name: b.Name, Frames: b.Frames}
	}
	merged, err := merger.MergeMany(context.Background(), requests)
	if err != nil {
		fmt.Fprint(stderr, formatMergeError(err))
		return 1
	}

	w := newTableWriter(stdout, isTerminal(stdout))
	for i, b := range blocks {
		w.writeBlock(b.Name, merged[i])
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.FindAndLoad(wd)
}

func loadHierarchy(path string, factory *types.Factory) (*hierarchy.ClassTable, error) {
	if path == "" {
		return hierarchy.NewClassTable(factory), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	table, err := hierarchy.Load(f, factory)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}
