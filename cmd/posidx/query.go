package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/arloliu/posidx"
	"github.com/arloliu/posidx/index"
)

var errVerify = errors.New("verification failed")

func parseQueryFlags(name string, args []string, minArgs int) (*flag.FlagSet, string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	dir := fs.String("dir", ".", "Index directory")
	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}
	if fs.NArg() < minArgs {
		return nil, "", fmt.Errorf("%s: missing arguments\n%w", name, errUsage)
	}

	return fs, *dir, nil
}

func load(e *env, dir, name string) (*index.Reader, error) {
	return posidx.Load(dir, name, index.WithReaderLogger(e.logger))
}

func runLookup(_ context.Context, e *env, args []string) error {
	fs, dir, err := parseQueryFlags("lookup", args, 2)
	if err != nil {
		return err
	}

	r, err := load(e, dir, fs.Arg(0))
	if err != nil {
		return err
	}

	for _, arg := range fs.Args()[1:] {
		ordinal, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("lookup: invalid ordinal %q", arg)
		}

		pos, err := r.Lookup(ordinal)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "%d\t%d\n", ordinal, pos)
	}

	return nil
}

func runDump(ctx context.Context, e *env, args []string) error {
	fs, dir, err := parseQueryFlags("dump", args, 1)
	if err != nil {
		return err
	}

	r, err := load(e, dir, fs.Arg(0))
	if err != nil {
		return err
	}

	for ordinal, pos := range r.All() {
		if ordinal&0xFFFF == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		fmt.Fprintf(e.stdout, "%d\t%d\n", ordinal, pos)
	}

	return nil
}

func runStats(_ context.Context, e *env, args []string) error {
	fs, dir, err := parseQueryFlags("stats", args, 1)
	if err != nil {
		return err
	}

	r, err := load(e, dir, fs.Arg(0))
	if err != nil {
		return err
	}

	s := r.Stats()
	fmt.Fprintf(e.stdout, "records:       %d\n", s.RecordCount)
	fmt.Fprintf(e.stdout, "bottom:        %d\n", s.BottomPosition)
	fmt.Fprintf(e.stdout, "top:           %d\n", s.TopPosition)
	fmt.Fprintf(e.stdout, "fixed_bits:    %d\n", s.FixedBitSize)
	fmt.Fprintf(e.stdout, "bits_written:  %d\n", s.BitsWritten)
	fmt.Fprintf(e.stdout, "overflow:      %d\n", r.OverflowCount())
	fmt.Fprintf(e.stdout, "coding:        %s\n", s.Coding)
	fmt.Fprintf(e.stdout, "compression:   %s\n", s.Compression)
	fmt.Fprintf(e.stdout, "stored_bytes:  %d\n", s.StoredSize)

	return nil
}

// runVerify opens each index and checks that Lookup agrees with the
// sequential decode for every ordinal.
func runVerify(ctx context.Context, e *env, args []string) error {
	fs, dir, err := parseQueryFlags("verify", args, 1)
	if err != nil {
		return err
	}

	failed := false
	for _, name := range fs.Args() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := verify(e, dir, name); err != nil {
			failed = true
			fmt.Fprintf(e.stdout, "%s\tFAIL\t%v\n", name, err)

			continue
		}
		fmt.Fprintf(e.stdout, "%s\tOK\n", name)
	}
	if failed {
		return errVerify
	}

	return nil
}

func verify(e *env, dir, name string) error {
	r, err := load(e, dir, name)
	if err != nil {
		return err
	}

	positions, err := r.DecodeAll()
	if err != nil {
		return err
	}
	for ordinal, want := range positions {
		got, err := r.Lookup(int64(ordinal))
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("ordinal %d: lookup %d, decode %d", ordinal, got, want)
		}
	}

	return nil
}
