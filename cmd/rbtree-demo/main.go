// rbtree-demo builds a red-black tree from the command line keys, prints
// the tree and its traversals and exports the tree metrics.
//
//	rbtree-demo --keys=10,20,30
//	rbtree-demo --random=64 --desc --trace --metrics=stdout
//	XLOG_LVL=INFO rbtree-demo --random=4096 --metrics=prometheus --serve
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
)

const (
	metricsNone       = "none"
	metricsStdout     = "stdout"
	metricsPrometheus = "prometheus"
)

type options struct {
	keys        []int64
	distinct    int
	random      int
	desc        bool
	trace       bool
	logEncoder  string
	metrics     string
	metricsAddr string
	serve       bool
}

func parseKeys(raw []string) ([]int64, error) {
	fields := lo.Filter(
		lo.Map(raw, func(s string, _ int) string { return strings.TrimSpace(s) }),
		func(s string, _ int) bool { return len(s) > 0 },
	)
	var err error
	keys := make([]int64, 0, len(fields))
	for _, f := range fields {
		key, parseErr := strconv.ParseInt(f, 10, 64)
		if parseErr != nil {
			err = multierr.Append(err, fmt.Errorf("invalid key %q: %w", f, parseErr))
			continue
		}
		keys = append(keys, key)
	}
	return keys, err
}

func parseOptions(args []string, stderr io.Writer) (*options, error) {
	fs := pflag.NewFlagSet("rbtree-demo", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	rawKeys := fs.StringSlice("keys", nil, "comma separated int64 keys, inserted in the given order")
	opts := &options{}
	fs.IntVar(&opts.random, "random", 0, "insert n more distinct keys in random order")
	fs.BoolVar(&opts.desc, "desc", false, "order the keys descending")
	fs.BoolVar(&opts.trace, "trace", false, "log every insert rebalance case")
	fs.StringVar(&opts.logEncoder, "log-encoder", "json", "log encoder, json or text")
	fs.StringVar(&opts.metrics, "metrics", metricsNone, "metrics exporter, none, stdout or prometheus")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", ":9464", "prometheus scrape address")
	fs.BoolVar(&opts.serve, "serve", false, "keep running until interrupted")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var err error
	if opts.keys, err = parseKeys(*rawKeys); err != nil {
		return nil, err
	}
	opts.distinct = len(lo.Uniq(opts.keys))
	if opts.random < 0 {
		return nil, fmt.Errorf("negative random keys %d", opts.random)
	}
	if !lo.Contains([]string{metricsNone, metricsStdout, metricsPrometheus}, opts.metrics) {
		return nil, fmt.Errorf("unknown metrics exporter %q", opts.metrics)
	}
	if !lo.Contains([]string{"json", "text"}, opts.logEncoder) {
		return nil, fmt.Errorf("unknown log encoder %q", opts.logEncoder)
	}
	if len(opts.keys) == 0 && opts.random == 0 {
		return nil, errors.New("no keys, set --keys or --random")
	}
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	} else if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}

	app := newApp(opts, stdout)
	if err = app.Err(); err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}
	if opts.serve {
		app.Run()
		return 0
	}

	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancel()
	if err = app.Start(startCtx); err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	if err = app.Stop(stopCtx); err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
