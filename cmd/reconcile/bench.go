package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/dom/htmldom"
	"github.com/vango-dev/reconcile/pkg/render"
	. "github.com/vango-dev/reconcile/pkg/vdom"
)

type benchResult struct {
	Passes     int
	Operations int
	Created    int
	Moved      int
	Removed    int
	Durations  []time.Duration
}

func (r *benchResult) add(rc *render.RenderContext) {
	perf := rc.Perf()
	r.Passes++
	r.Operations += perf.Operations
	r.Created += perf.Created
	r.Moved += perf.Moved
	r.Removed += perf.Removed
	r.Durations = append(r.Durations, perf.Duration)
}

// percentile returns the q-th duration; Durations must be sorted.
func (r *benchResult) percentile(q float64) time.Duration {
	if len(r.Durations) == 0 {
		return 0
	}
	i := int(q * float64(len(r.Durations)-1))
	return r.Durations[i]
}

func benchCmd() *cobra.Command {
	var (
		size       int
		iterations int
		seed       uint64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark keyed list updates",
		Long: `Render a keyed list and apply random edits to it: shuffles,
reversals, insertions, removals and swaps. Prints the pass duration
percentiles and the operation counts.

Examples:
  reconcile bench
  reconcile bench --size=1000 --iterations=500 --seed=7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if size <= 0 || iterations <= 0 {
				return errors.New("X001").
					WithDetailf("--size and --iterations must be positive, got %d and %d", size, iterations)
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			res, err := runBench(ctx, size, iterations, seed)
			if err != nil {
				return err
			}
			printBench(cmd.OutOrStdout(), size, res)
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", 200, "Initial list length")
	cmd.Flags().IntVar(&iterations, "iterations", 100, "Number of edits")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Random seed")

	return cmd
}

func keyedList(keys []int) *Node {
	items := make([]any, len(keys))
	for i, k := range keys {
		items[i] = Li(Key(k), Textf("row %d", k))
	}
	return Ul(items...)
}

// edit applies one random edit to keys and returns the result.
func edit(rng *rand.Rand, keys []int, next *int) []int {
	switch rng.IntN(5) {
	case 0:
		rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	case 1:
		slices.Reverse(keys)
	case 2:
		i := rng.IntN(len(keys) + 1)
		keys = slices.Insert(keys, i, *next)
		*next++
	case 3:
		if len(keys) > 1 {
			i := rng.IntN(len(keys))
			keys = slices.Delete(keys, i, i+1)
		}
	default:
		i, j := rng.IntN(len(keys)), rng.IntN(len(keys))
		keys[i], keys[j] = keys[j], keys[i]
	}
	return keys
}

func runBench(ctx context.Context, size, iterations int, seed uint64) (*benchResult, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	doc := htmldom.NewDocument()
	c, err := render.New(doc.Body(), render.WithLogger(newLogger(cfg, io.Discard, false)))
	if err != nil {
		return nil, err
	}
	defer c.Close(context.Background())

	keys := make([]int, size)
	for i := range keys {
		keys[i] = i
	}
	next := size
	rng := rand.New(rand.NewPCG(seed, seed))

	res := &benchResult{}
	if _, err := c.Render(ctx, keyedList(keys)).Await(ctx); err != nil {
		return nil, err
	}
	for i := 0; i < iterations; i++ {
		keys = edit(rng, keys, &next)
		rc, err := c.Render(ctx, keyedList(keys)).Await(ctx)
		if err != nil {
			return nil, err
		}
		res.add(rc)
	}
	slices.Sort(res.Durations)
	return res, nil
}

func printBench(w io.Writer, size int, res *benchResult) {
	var total time.Duration
	for _, d := range res.Durations {
		total += d
	}
	printBanner(w)
	fmt.Fprintln(w, "  bench")
	fmt.Fprintln(w)
	info(w, "list size:   %d", size)
	info(w, "passes:      %d", res.Passes)
	info(w, "mean:        %s", total/time.Duration(max(res.Passes, 1)))
	info(w, "p50:         %s", res.percentile(0.50))
	info(w, "p99:         %s", res.percentile(0.99))
	info(w, "operations:  %d", res.Operations)
	info(w, "created:     %d", res.Created)
	info(w, "moved:       %d", res.Moved)
	info(w, "removed:     %d", res.Removed)
	fmt.Fprintln(w)
}
