package domain

import (
	"strings"
	"time"
)

// AssetKind enumerates the semantic asset categories.
type AssetKind string

const (
	AssetKindProduct AssetKind = "product"
	AssetKindSocial  AssetKind = "social"
	AssetKindBrand   AssetKind = "brand"
	AssetKindCustom  AssetKind = "custom"
)

// ParseAssetKind maps a free-form discriminator onto a kind. Unknown or empty
// values resolve to AssetKindCustom.
func ParseAssetKind(raw string) AssetKind {
	switch AssetKind(strings.ToLower(strings.TrimSpace(raw))) {
	case AssetKindProduct:
		return AssetKindProduct
	case AssetKindSocial:
		return AssetKindSocial
	case AssetKindBrand:
		return AssetKindBrand
	default:
		return AssetKindCustom
	}
}

// AssetResult is a GenerationResult annotated with the files written to disk.
// SavedPaths stays nil when nothing was saved.
type AssetResult struct {
	GenerationResult
	CallID     string   `json:"call_id"`
	Dir        string   `json:"dir"`
	SavedPaths []string `json:"saved_paths,omitempty"`
	Skipped    int      `json:"skipped,omitempty"`
}

// Saved reports whether the save step ran and produced a saved_paths list.
func (r *AssetResult) Saved() bool {
	return r != nil && r.SavedPaths != nil
}

// SavedAsset describes one persisted image file.
type SavedAsset struct {
	ID         string
	CallID     string
	Kind       AssetKind
	Category   string
	Identifier string
	Path       string
	SourceURL  string
	Index      int
	Format     string
	Bytes      int64
	Prompt     string
	CreatedAt  time.Time
}
