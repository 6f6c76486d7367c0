package repo

import (
	"context"
	"fmt"

	"assetstudio/internal/domain"
	"assetstudio/internal/infra"
	"assetstudio/internal/sqlinline"
)

const (
	defaultListLimit = 20
	maxListLimit     = 500
)

// AssetRepositoryPG implements domain.AssetRepository on the
// generated_assets table.
type AssetRepositoryPG struct {
	db infra.SQLExecutor
}

// NewAssetRepository constructs a repository over db, usually an
// *infra.SQLRunner wrapping a pgx pool.
func NewAssetRepository(db infra.SQLExecutor) *AssetRepositoryPG {
	return &AssetRepositoryPG{db: db}
}

// EnsureSchema creates the ledger table when it is missing.
func (r *AssetRepositoryPG) EnsureSchema(ctx context.Context) error {
	for _, q := range []string{sqlinline.QCreateGeneratedAssets, sqlinline.QCreateGeneratedAssetsIndex} {
		if _, err := r.db.Exec(ctx, q); err != nil {
			return fmt.Errorf("ensure ledger schema: %w", err)
		}
	}
	return nil
}

// RecordAssets inserts one row per saved file.
func (r *AssetRepositoryPG) RecordAssets(ctx context.Context, assets []domain.SavedAsset) error {
	for _, a := range assets {
		if _, err := r.db.Exec(ctx, sqlinline.QInsertGeneratedAsset,
			a.ID, a.CallID, string(a.Kind), a.Category, a.Identifier, a.Path,
			a.SourceURL, a.Index, a.Format, a.Bytes, a.Prompt, a.CreatedAt,
		); err != nil {
			return fmt.Errorf("record asset %s: %w", a.Path, err)
		}
	}
	return nil
}

// ListRecent returns the newest rows first. limit is clamped to a sane range.
func (r *AssetRepositoryPG) ListRecent(ctx context.Context, limit int) ([]domain.SavedAsset, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	rows, err := r.db.Query(ctx, sqlinline.QListRecentGeneratedAssets, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []domain.SavedAsset
	for rows.Next() {
		var (
			a    domain.SavedAsset
			kind string
		)
		if err := rows.Scan(&a.ID, &a.CallID, &kind, &a.Category, &a.Identifier, &a.Path,
			&a.SourceURL, &a.Index, &a.Format, &a.Bytes, &a.Prompt, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Kind = domain.ParseAssetKind(kind)
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assets, nil
}

var _ domain.AssetRepository = (*AssetRepositoryPG)(nil)
