package generator

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"assetstudio/internal/domain"
)

const (
	productRoot = "product-photography"
	socialRoot  = "social-graphics"
	brandRoot   = "brand-assets"
	customRoot  = "custom"

	timestampLayout = "20060102_150405"
)

// Slug lower-cases name and replaces spaces with hyphens. Path separators are
// folded too so a name always maps to a single directory segment.
func Slug(name string) string {
	return normalize(name, "-")
}

// identifier is the filename form of a human-readable name.
func identifier(name string) string {
	return normalize(name, "_")
}

func normalize(name, sep string) string {
	return strings.ReplaceAll(segment(name), " ", sep)
}

// segment lower-cases s and keeps its spaces.
func segment(s string) string {
	// Casers are stateful, so each call gets its own.
	return safe(cases.Lower(language.Und).String(s))
}

// safe trims s and folds path separators.
func safe(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "/", "-")
	return strings.ReplaceAll(s, "\\", "-")
}

// target is where one call writes its files.
type target struct {
	kind       domain.AssetKind
	category   string
	dir        string
	identifier string
}

func productTarget(name string) target {
	return target{
		kind:       domain.AssetKindProduct,
		category:   productRoot,
		dir:        path.Join(productRoot, Slug(name)),
		identifier: identifier(name),
	}
}

func socialTarget(platform, topic string) target {
	return target{
		kind:       domain.AssetKindSocial,
		category:   socialRoot,
		dir:        path.Join(socialRoot, segment(platform)),
		identifier: safe(platform) + "_" + identifier(topic),
	}
}

func brandTarget(brand, assetType string) target {
	return target{
		kind:       domain.AssetKindBrand,
		category:   brandRoot,
		dir:        path.Join(brandRoot, Slug(brand), segment(assetType)),
		identifier: safe(assetType),
	}
}

func customTarget(category, name string) target {
	category = segment(category)
	if category == "" {
		category = customRoot
	}
	return target{
		kind:       domain.AssetKindCustom,
		category:   category,
		dir:        path.Join(category, Slug(name)),
		identifier: identifier(name),
	}
}

// extension picks the file extension for format, falling back to png.
func extension(format string) string {
	if domain.IsOutputFormat(format) {
		return format
	}
	return domain.DefaultOutputFormat
}
