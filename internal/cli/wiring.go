package cli

import (
	"context"
	"fmt"

	"assetstudio/internal/adapter/repo"
	"assetstudio/internal/domain"
	"assetstudio/internal/generator"
	"assetstudio/internal/infra"
	"assetstudio/internal/metrics"
	"assetstudio/internal/providers/fal"
	"assetstudio/internal/storage"
	"assetstudio/internal/studio"
)

// services is the object graph behind the generating commands.
type services struct {
	client *fal.Client
	gen    *generator.Generator
	studio *studio.Studio
	ledger domain.AssetRepository
	close  func()
}

func (a *app) newClient() (*fal.Client, error) {
	return fal.NewClient(fal.Options{
		APIKey:          a.cfg.FalAPIKey,
		BaseURL:         a.cfg.FalBaseURL,
		Model:           a.cfg.FalModel,
		Logger:          &a.logger,
		RequestTimeout:  a.cfg.RequestTimeout,
		DownloadTimeout: a.cfg.DownloadTimeout,
		StatusTimeout:   a.cfg.StatusTimeout,
	})
}

// newServices builds client, generator and studio. The ledger is attached
// when DATABASE_URL is set; a ledger that cannot be reached is logged and
// skipped so generation still works. rec may be nil.
func (a *app) newServices(ctx context.Context, rec *metrics.Collector) (*services, error) {
	client, err := a.newClient()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewFileStore(a.cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("prepare output directory: %w", err)
	}

	svc := &services{client: client, close: func() {}}
	if a.cfg.DatabaseURL != "" {
		ledger, closeFn, err := a.openLedger(ctx)
		if err != nil {
			a.logger.Warn().Err(err).Msg("asset ledger unavailable, continuing without it")
		} else {
			svc.ledger = ledger
			svc.close = closeFn
		}
	}

	opts := generator.Options{
		Logger:              &a.logger,
		Ledger:              svc.ledger,
		DownloadConcurrency: a.cfg.DownloadConcurrency,
	}
	if rec != nil {
		opts.Recorder = rec
	}
	svc.gen, err = generator.New(client, store, opts)
	if err != nil {
		svc.close()
		return nil, err
	}
	svc.studio, err = studio.New(svc.gen, studio.Options{Logger: &a.logger, BatchConcurrency: a.cfg.BatchConcurrency})
	if err != nil {
		svc.close()
		return nil, err
	}
	return svc, nil
}

// openLedger connects to Postgres and makes sure the ledger table exists.
func (a *app) openLedger(ctx context.Context) (domain.AssetRepository, func(), error) {
	pool, err := infra.NewDBPool(ctx, a.cfg)
	if err != nil {
		return nil, nil, err
	}
	ledger := repo.NewAssetRepository(infra.NewSQLRunner(pool, a.logger))
	if err := ledger.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("prepare ledger schema: %w", err)
	}
	return ledger, pool.Close, nil
}
