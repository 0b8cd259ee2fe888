// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate coordinates synthetic corpus generation: a gather phase
// builds a (topic, locality) combination inventory, then batches of sample
// builds run concurrently under a shared rate gate, checkpointing after
// every batch so a crashed run resumes where it left off.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/lead-engine/internal/sample"
	"github.com/pdiddy/lead-engine/pkg/types"
)

// Summary holds the outcome of a generation run.
type Summary struct {
	// Resumed is the number of samples loaded from earlier checkpoints.
	Resumed int

	// Built is the number of samples built in this run.
	Built int

	// Skipped is the number of combinations that failed to build.
	Skipped int
}

// Total returns the number of samples in the final corpus.
func (s Summary) Total() int {
	return s.Resumed + s.Built
}

// HasFailures reports whether any combinations were skipped.
func (s Summary) HasFailures() bool {
	return s.Skipped > 0
}

// Generator runs the corpus generation state machine.
type Generator struct {
	Source    Source
	Countries map[string]string
	Config    types.GenerationConfig
	Store     *Store
}

// Run executes one generation pass: load or gather the combination
// inventory, resume from any progress checkpoint, build the remaining
// combinations in checkpointed batches, and write the final corpus file.
// Combination build failures are skipped and counted, never fatal; only
// infrastructure errors (checkpoint IO, cancelled context) abort the run.
func (g *Generator) Run(ctx context.Context, w io.Writer) (Summary, error) {
	data, ok := g.Store.LoadGathered(w)
	cache := sample.NewCityCache(data.CityCache)

	if ok {
		fmt.Fprintf(w, "loaded gathered data: %d combinations, %d cached cities\n",
			data.CombinationCount(), cache.Len())
	} else {
		gatherer := &Gatherer{
			Source:    g.Source,
			Cache:     cache,
			Countries: g.Countries,
			Config:    g.Config,
		}
		var err error
		data, err = gatherer.Gather(ctx, w)
		if err != nil {
			return Summary{}, err
		}
		if err := g.Store.SaveGathered(data); err != nil {
			return Summary{}, err
		}
	}

	combos := data.Combinations()

	progress, resumed := g.Store.LoadProgress(w)
	if !resumed {
		progress = Progress{RunID: uuid.NewString()}
	}

	var results []types.Sample
	if resumed {
		var err error
		results, err = g.Store.LoadCompleted(progress)
		if err != nil {
			return Summary{}, err
		}
		fmt.Fprintf(w, "resuming run %s: %d samples from %d batches\n",
			progress.RunID, len(results), len(progress.CompletedBatches))
	}

	summary := Summary{Resumed: len(results)}

	// Completed batches cover a prefix of the combination list, which
	// Combinations keeps in a stable order across runs. The prefix length
	// is the consumed count, not the sample count: a batch that skipped a
	// combination still consumed it.
	consumed := progress.TotalCombinations
	if consumed > len(combos) {
		consumed = len(combos)
	}
	remaining := combos[consumed:]

	builder := &sample.Builder{
		Source:    g.Source,
		Cache:     cache,
		Countries: g.Countries,
		StartYear: g.Config.StartYear,
		PerQuery:  g.Config.MaxResultsPerQuery,
	}

	batchNum := maxBatchNum(progress.CompletedBatches)
	for start := 0; start < len(remaining); start += g.Config.BatchSize {
		end := start + g.Config.BatchSize
		if end > len(remaining) {
			end = len(remaining)
		}
		batchNum++

		batchResults, skipped, err := g.runBatch(ctx, builder, remaining[start:end], w)
		if err != nil {
			return summary, err
		}
		summary.Built += len(batchResults)
		summary.Skipped += skipped

		checkpoint := BatchCheckpoint{
			BatchNum:  batchNum,
			Results:   batchResults,
			Timestamp: time.Now().UTC(),
		}
		if err := g.Store.SaveBatch(checkpoint); err != nil {
			return summary, err
		}

		results = append(results, batchResults...)
		progress.CompletedBatches = append(progress.CompletedBatches, batchNum)
		progress.TotalResults = len(results)
		progress.TotalCombinations += end - start
		progress.Timestamp = time.Now().UTC()
		if err := g.Store.SaveProgress(progress); err != nil {
			return summary, err
		}

		fmt.Fprintf(w, "batch %d: %d samples, %d skipped (%d/%d total)\n",
			batchNum, len(batchResults), skipped, len(results), len(combos))
	}

	if err := g.writeOutput(results); err != nil {
		return summary, err
	}
	if err := g.Store.Clean(); err != nil {
		return summary, err
	}

	fmt.Fprintf(w, "wrote %d samples to %s\n", len(results), g.Config.OutputFile)
	return summary, nil
}

// runBatch builds one batch of combinations with ParallelBatchSize workers.
// Failed combinations are logged and dropped; results keep combination
// order. Context cancellation aborts the batch.
func (g *Generator) runBatch(ctx context.Context, builder *sample.Builder, combos []sample.Combination, w io.Writer) ([]types.Sample, int, error) {
	built := make([]*types.Sample, len(combos))

	var mu sync.Mutex
	skipped := 0

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.Config.ParallelBatchSize)

	for i, combo := range combos {
		eg.Go(func() error {
			s, err := builder.Build(ctx, combo)
			if err != nil {
				if !errors.Is(err, sample.ErrInsufficientData) && ctx.Err() != nil {
					return ctx.Err()
				}
				mu.Lock()
				skipped++
				fmt.Fprintf(w, "skipping %s: %v\n", combo, err)
				mu.Unlock()
				return nil
			}
			built[i] = &s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, 0, err
	}

	results := make([]types.Sample, 0, len(combos))
	for _, s := range built {
		if s != nil {
			results = append(results, *s)
		}
	}
	return results, skipped, nil
}

func (g *Generator) writeOutput(results []types.Sample) error {
	if results == nil {
		results = []types.Sample{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding corpus: %w", err)
	}
	if err := os.WriteFile(g.Config.OutputFile, data, 0o644); err != nil {
		return fmt.Errorf("writing corpus: %w", err)
	}
	return nil
}

func maxBatchNum(nums []int) int {
	max := 0
	for _, n := range nums {
		if n > max {
			max = n
		}
	}
	return max
}
