package main

import (
	"context"
	"flag"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/posidx"
	"github.com/arloliu/posidx/format"
	"github.com/arloliu/posidx/index"
)

func runBuild(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	dir := fs.String("dir", ".", "Output directory")
	coding := fs.String("coding", "fib", "Overflow coding: fib or delta")
	compression := fs.String("compression", "none", "Index compression: none, zstd, s2 or lz4")
	lengths := fs.Bool("lengths", false, "Inputs hold record lengths instead of positions")
	base := fs.Int64("base", 0, "Offset of the first record with -lengths")
	fixed := fs.Int("fixed-bits", -1, "Force the slot width instead of optimizing it")
	jobs := fs.Int("j", runtime.GOMAXPROCS(0), "Maximum concurrent builds")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("build: no input files\n%w", errUsage)
	}

	codingType, ok := format.ParseCodingType(*coding)
	if !ok {
		return fmt.Errorf("build: unknown coding %q", *coding)
	}
	compressionType, ok := format.ParseCompressionType(*compression)
	if !ok {
		return fmt.Errorf("build: unknown compression %q", *compression)
	}

	opts := []index.BuildOption{
		index.WithCoding(codingType),
		index.WithCompression(compressionType),
		index.WithLogger(e.logger),
	}
	if *fixed >= 0 {
		if *fixed > 255 {
			return fmt.Errorf("build: invalid -fixed-bits %d", *fixed)
		}
		opts = append(opts, index.WithFixedBitSize(uint8(*fixed)))
	}

	if err := checkIndexNames(fs.Args()); err != nil {
		return err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*jobs, 1))

	for _, input := range fs.Args() {
		g.Go(func() error {
			values, err := readIntsFile(input)
			if err != nil {
				return err
			}

			src := index.SliceSource(values)
			if *lengths {
				src = index.LengthSource(values, *base)
			}

			built, err := posidx.BuildContext(gctx, src, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}

			name := indexName(input)
			if err := posidx.Save(*dir, name, built); err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}

			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(e.stdout, "%s\trecords=%d\tfixed_bits=%d\toverflow=%d\tbytes=%d\n",
				name, built.Stats.RecordCount, built.Stats.FixedBitSize,
				built.Plan.OverflowNodes, built.Stats.StoredSize)

			return nil
		})
	}

	return g.Wait()
}

// checkIndexNames rejects inputs that would build the same index pair.
func checkIndexNames(inputs []string) error {
	seen := make(map[string]string, len(inputs))
	for _, input := range inputs {
		name := indexName(input)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("build: %s and %s both build index %q", prev, input, name)
		}
		seen[name] = input
	}

	return nil
}
