package domain

import "context"

// AssetRepository records saved files in the generation ledger.
type AssetRepository interface {
	RecordAssets(ctx context.Context, assets []SavedAsset) error
	ListRecent(ctx context.Context, limit int) ([]SavedAsset, error)
}
