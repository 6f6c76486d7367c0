package generator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"assetstudio/internal/domain"
	"assetstudio/internal/infra"
	"assetstudio/internal/storage"
)

// ImageClient is the transport the generator delegates to.
type ImageClient interface {
	Submit(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error)
	FetchBytes(ctx context.Context, rawURL string) ([]byte, error)
}

// Recorder receives generation metrics.
type Recorder interface {
	ObserveGeneration(kind domain.AssetKind, outcome string, elapsed time.Duration)
	AddSaved(kind domain.AssetKind, n int)
	AddSkipped(kind domain.AssetKind, n int)
}

// Options configures a Generator. Every field is optional.
type Options struct {
	Logger              *infra.Logger
	Recorder            Recorder
	Ledger              domain.AssetRepository
	Clock               func() time.Time
	DownloadConcurrency int
}

// Params are the generation knobs shared by every asset kind. Empty strings
// take the service defaults; NumImages is passed through as-is.
type Params struct {
	NumImages       int
	AspectRatio     string
	Resolution      string
	OutputFormat    string
	EnableWebSearch bool
}

type ProductRequest struct {
	Name   string
	Prompt string
	Params Params
	Save   bool
}

type SocialRequest struct {
	Platform string
	Topic    string
	Prompt   string
	Params   Params
	Save     bool
}

type BrandRequest struct {
	Brand     string
	AssetType string
	Prompt    string
	Params    Params
	Save      bool
}

type CustomRequest struct {
	Category string
	Name     string
	Prompt   string
	Params   Params
	Save     bool
}

// Generator maps asset requests onto directories, submits them and saves the
// returned images.
type Generator struct {
	client      ImageClient
	store       *storage.FileStore
	logger      *infra.Logger
	recorder    Recorder
	ledger      domain.AssetRepository
	now         func() time.Time
	concurrency int
}

// New wires a Generator around client and store.
func New(client ImageClient, store *storage.FileStore, opts Options) (*Generator, error) {
	if client == nil {
		return nil, errors.New("generator: image client is required")
	}
	if store == nil {
		return nil, errors.New("generator: file store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	concurrency := opts.DownloadConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Generator{
		client:      client,
		store:       store,
		logger:      logger,
		recorder:    opts.Recorder,
		ledger:      opts.Ledger,
		now:         now,
		concurrency: concurrency,
	}, nil
}

// OutputDir returns the root all assets are written under.
func (g *Generator) OutputDir() string {
	return g.store.BasePath()
}

func (g *Generator) ProductPhoto(ctx context.Context, req ProductRequest) (*domain.AssetResult, error) {
	return g.generate(ctx, productTarget(req.Name), req.Prompt, req.Params, req.Save)
}

func (g *Generator) SocialGraphic(ctx context.Context, req SocialRequest) (*domain.AssetResult, error) {
	return g.generate(ctx, socialTarget(req.Platform, req.Topic), req.Prompt, req.Params, req.Save)
}

func (g *Generator) BrandAsset(ctx context.Context, req BrandRequest) (*domain.AssetResult, error) {
	return g.generate(ctx, brandTarget(req.Brand, req.AssetType), req.Prompt, req.Params, req.Save)
}

func (g *Generator) Custom(ctx context.Context, req CustomRequest) (*domain.AssetResult, error) {
	return g.generate(ctx, customTarget(req.Category, req.Name), req.Prompt, req.Params, req.Save)
}

func (p Params) request(prompt string) domain.GenerationRequest {
	req := domain.GenerationRequest{
		Prompt:          prompt,
		NumImages:       p.NumImages,
		AspectRatio:     p.AspectRatio,
		Resolution:      p.Resolution,
		OutputFormat:    p.OutputFormat,
		EnableWebSearch: p.EnableWebSearch,
	}
	if req.AspectRatio == "" {
		req.AspectRatio = domain.DefaultAspectRatio
	}
	if req.Resolution == "" {
		req.Resolution = domain.DefaultResolution
	}
	if req.OutputFormat == "" {
		req.OutputFormat = domain.DefaultOutputFormat
	}
	return req
}

type download struct {
	index int
	url   string
}

func (g *Generator) generate(ctx context.Context, t target, prompt string, params Params, save bool) (*domain.AssetResult, error) {
	callID := uuid.NewString()
	logger := g.logger.With().
		Str("call_id", callID).
		Str("kind", string(t.kind)).
		Str("dir", t.dir).
		Logger()

	dir, err := g.store.EnsureDir(ctx, t.dir)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", t.kind, err)
	}

	req := params.request(prompt)
	started := g.now()
	res, err := g.client.Submit(ctx, req)
	if err != nil {
		g.observe(t.kind, "error", started)
		logger.Error().Err(err).Msg("generator: generation failed")
		return nil, fmt.Errorf("generate %s: %w", t.kind, err)
	}
	g.observe(t.kind, "ok", started)
	logger.Info().Str("request_id", res.RequestID).Int("images", len(res.Images)).Msg("generator: generation completed")

	out := &domain.AssetResult{GenerationResult: *res, CallID: callID, Dir: dir}
	if !save || res.Images == nil {
		return out, nil
	}

	var jobs []download
	for i, img := range res.Images {
		if !usableURL(img.URL) {
			out.Skipped++
			logger.Warn().Int("index", i+1).Msg("generator: image without usable url skipped")
			continue
		}
		jobs = append(jobs, download{index: i + 1, url: strings.TrimSpace(img.URL)})
	}
	if out.Skipped > 0 && g.recorder != nil {
		g.recorder.AddSkipped(t.kind, out.Skipped)
	}

	stamp := g.now().Format(timestampLayout)
	ext := extension(req.OutputFormat)
	saved := make([]domain.SavedAsset, len(jobs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for pos, job := range jobs {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			data, err := g.client.FetchBytes(egCtx, job.url)
			if err != nil {
				return fmt.Errorf("download image %d: %w", job.index, err)
			}
			key := path.Join(t.dir, fmt.Sprintf("%s_%d_%s.%s", t.identifier, job.index, stamp, ext))
			written, err := g.store.Write(egCtx, key, data)
			if err != nil {
				return fmt.Errorf("save image %d: %w", job.index, err)
			}
			saved[pos] = domain.SavedAsset{
				ID:         uuid.NewString(),
				CallID:     callID,
				Kind:       t.kind,
				Category:   t.category,
				Identifier: t.identifier,
				Path:       written,
				SourceURL:  sourceRef(job.url),
				Index:      job.index,
				Format:     ext,
				Bytes:      int64(len(data)),
				Prompt:     prompt,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		logger.Error().Err(err).Msg("generator: saving images failed")
		return nil, fmt.Errorf("generate %s: %w", t.kind, err)
	}

	out.SavedPaths = make([]string, 0, len(saved))
	createdAt := g.now().UTC()
	for i := range saved {
		saved[i].CreatedAt = createdAt
		out.SavedPaths = append(out.SavedPaths, saved[i].Path)
	}
	if g.recorder != nil {
		g.recorder.AddSaved(t.kind, len(saved))
	}
	g.record(ctx, logger, saved)
	logger.Info().Int("saved", len(saved)).Int("skipped", out.Skipped).Msg("generator: images saved")
	return out, nil
}

// record writes saved files to the ledger. Ledger failures never fail the call.
func (g *Generator) record(ctx context.Context, logger infra.Logger, saved []domain.SavedAsset) {
	if g.ledger == nil || len(saved) == 0 {
		return
	}
	if err := g.ledger.RecordAssets(ctx, saved); err != nil {
		logger.Warn().Err(err).Msg("generator: ledger write failed")
	}
}

func (g *Generator) observe(kind domain.AssetKind, outcome string, started time.Time) {
	if g.recorder == nil {
		return
	}
	g.recorder.ObserveGeneration(kind, outcome, g.now().Sub(started))
}

// usableURL reports whether raw can be downloaded: an absolute http(s) URL
// with a host, or an inline data URI.
func usableURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	if strings.HasPrefix(raw, "data:") {
		return strings.Contains(raw, ",")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// sourceRef keeps inline payloads out of the ledger.
func sourceRef(raw string) string {
	if meta, _, ok := strings.Cut(raw, ","); ok && strings.HasPrefix(raw, "data:") {
		return meta
	}
	return raw
}
