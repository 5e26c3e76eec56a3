// Command posidx builds and inspects positional index files.
//
// Usage:
//
//	posidx build  [-dir d] [-coding c] [-compression c] [-lengths] [-base b] [-j n] input...
//	posidx lookup [-dir d] name ordinal...
//	posidx dump   [-dir d] name
//	posidx stats  [-dir d] name
//	posidx verify [-dir d] name...
//
// Inputs are text files holding one integer per line: record positions, or
// record lengths with -lengths. Each input builds the index pair
// <dir>/<name>.pidx and <dir>/<name>.pstats, where name is the input's base
// name without extension.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
)

var errUsage = errors.New("usage: posidx [-log-level level] [-log-json] build|lookup|dump|stats|verify [flags] args...")

type command func(ctx context.Context, env *env, args []string) error

var commands = map[string]command{
	"build":  runBuild,
	"lookup": runLookup,
	"dump":   runDump,
	"stats":  runStats,
	"verify": runVerify,
}

// env carries the outputs shared by all subcommands.
type env struct {
	stdout io.Writer
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "posidx: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("posidx", flag.ContinueOnError)
	fs.SetOutput(stderr)
	logLevel := fs.String("log-level", "warn", "Log level: debug, info, warn or error")
	logJSON := fs.Bool("log-json", false, "Emit JSON log records")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger, err := newLogger(stderr, *logLevel, *logJSON)
	if err != nil {
		return err
	}

	if fs.NArg() == 0 {
		return errUsage
	}
	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		return fmt.Errorf("unknown command %q\n%w", fs.Arg(0), errUsage)
	}

	return cmd(ctx, &env{stdout: stdout, logger: logger}, fs.Args()[1:])
}

func newLogger(w io.Writer, level string, json bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid -log-level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}

	return slog.New(slog.NewTextHandler(w, opts)), nil
}
