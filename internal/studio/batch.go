package studio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"assetstudio/internal/storage"
)

// Batch dispatches every spec to its façade operation and returns exactly one
// Result per spec, in input order. A failing spec yields a failure record and
// never stops its siblings.
func (s *Studio) Batch(ctx context.Context, specs []AssetSpec) []Result {
	batchID := uuid.NewString()
	logger := s.logger.With().Str("batch_id", batchID).Int("specs", len(specs)).Logger()
	logger.Info().Int("concurrency", s.batchConcurrency).Msg("studio: batch started")

	results := make([]Result, len(specs))
	sem := make(chan struct{}, s.batchConcurrency)
	var wg sync.WaitGroup
	for i, spec := range specs {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				<-sem
				wg.Done()
			}()
			results[i] = s.runSpec(ctx, spec)
		}()
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	logger.Info().Int("failed", failed).Msg("studio: batch finished")
	return results
}

// Run executes a single spec. Its count is used as given, so a zero
// NumVariations fails validation instead of becoming one image.
func (s *Studio) Run(ctx context.Context, spec AssetSpec) (*Result, error) {
	if spec == nil {
		return nil, errors.New("empty asset spec")
	}
	res, err := spec.run(ctx, s)
	if err != nil {
		return nil, err
	}
	res.AssetName = spec.AssetName()
	return res, nil
}

func (s *Studio) runSpec(ctx context.Context, spec AssetSpec) (out Result) {
	name := defaultAssetName
	if spec != nil {
		name = spec.AssetName()
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("asset_name", name).Interface("panic", r).Msg("studio: batch entry panicked")
			out = failure(name, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := ctx.Err(); err != nil {
		return failure(name, err)
	}
	res, err := s.Run(ctx, spec)
	if err != nil {
		kind := ""
		if spec != nil {
			kind = string(spec.Kind())
		}
		s.logger.Warn().Err(err).Str("asset_name", name).Str("kind", kind).Msg("studio: batch entry failed")
		return failure(name, err)
	}
	return *res
}

// Summary reports how many images each top-level category holds.
type Summary struct {
	TotalAssets int            `json:"total_assets"`
	ByCategory  map[string]int `json:"by_category"`
	AssetDir    string         `json:"asset_dir"`
}

// Summary scans the output directory. Categories without images are omitted.
func (s *Studio) Summary() (Summary, error) {
	return Summarize(s.OutputDir())
}

// Summarize is Summary for an arbitrary root; it needs no generator.
func Summarize(dir string) (Summary, error) {
	store, err := storage.OpenFileStore(dir)
	if err != nil {
		return Summary{}, err
	}
	counts, total, err := store.CountImages()
	if err != nil {
		return Summary{}, err
	}
	return Summary{TotalAssets: total, ByCategory: counts, AssetDir: dir}, nil
}
