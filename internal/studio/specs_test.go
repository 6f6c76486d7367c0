package studio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetstudio/internal/domain"
)

func TestDecodeSpecDefaults(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]any
		want   AssetSpec
	}{
		{
			name:   "product",
			record: map[string]any{"type": "Product"},
			want: ProductSpec{Input: ProductPhotoInput{
				ProductName:   "product",
				Style:         "professional photography",
				Lighting:      "studio lighting",
				Background:    "white background",
				NumVariations: 1,
				Resolution:    "2K",
				AspectRatio:   "1:1",
			}},
		},
		{
			name:   "social topic falls back to name",
			record: map[string]any{"type": "SOCIAL", "name": "Launch Day"},
			want: SocialSpec{Name: "Launch Day", Input: SocialPostInput{
				Platform:      "instagram",
				Topic:         "Launch Day",
				Style:         "modern design",
				Mood:          "professional",
				NumVariations: 1,
				Resolution:    "2K",
				AspectRatio:   "1:1",
			}},
		},
		{
			name:   "brand",
			record: map[string]any{"type": "brand", "num_variations": 3, "resolution": "4K"},
			want: BrandSpec{Input: BrandElementInput{
				BrandName:     "brand",
				ElementType:   "logo",
				Style:         "modern",
				Colors:        "professional colors",
				NumVariations: 3,
				Resolution:    "4K",
				AspectRatio:   "1:1",
			}},
		},
		{
			name:   "unknown type becomes custom with description as prompt",
			record: map[string]any{"type": "poster", "description": "a poster", "web_search": true, "format": "jpeg"},
			want: CustomSpec{Input: CustomAssetInput{
				Category:        "custom",
				Name:            "asset",
				Prompt:          "a poster",
				NumVariations:   1,
				Resolution:      "2K",
				AspectRatio:     "1:1",
				OutputFormat:    "jpeg",
				EnableWebSearch: true,
			}},
		},
		{
			name:   "missing type",
			record: map[string]any{"prompt": "p", "description": "ignored"},
			want: CustomSpec{Input: CustomAssetInput{
				Category:      "custom",
				Name:          "asset",
				Prompt:        "p",
				NumVariations: 1,
				Resolution:    "2K",
				AspectRatio:   "1:1",
				OutputFormat:  "png",
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSpec(tt.record)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeSpecAssetName(t *testing.T) {
	spec, err := DecodeSpec(map[string]any{"type": "brand"})
	require.NoError(t, err)
	assert.Equal(t, "unknown", spec.AssetName())
	assert.Equal(t, domain.AssetKindBrand, spec.Kind())
}

func TestDecodeSpecRejectsBadTypes(t *testing.T) {
	bad := []map[string]any{
		{"type": "product", "num_variations": 1.5},
		{"type": "product", "num_variations": "many"},
		{"type": "social", "platform": []any{"a"}},
		{"type": "custom", "web_search": "sometimes"},
	}
	for _, rec := range bad {
		_, err := DecodeSpec(rec)
		assert.ErrorIs(t, err, domain.ErrValidation, "%v", rec)
	}
}

func TestDecodeSpecsKeepsBadRecordsInPlace(t *testing.T) {
	specs, err := DecodeSpecs([]byte(`
- type: product
  name: Watch
- type: brand
  name: TechCorp
  num_variations: many
- 42
- type: custom
  prompt: p
  web_search: sometimes
`))
	require.NoError(t, err)
	require.Len(t, specs, 4)
	assert.IsType(t, ProductSpec{}, specs[0])

	bad, ok := specs[1].(InvalidSpec)
	require.True(t, ok)
	assert.Equal(t, "TechCorp", bad.AssetName())
	assert.Equal(t, domain.AssetKindBrand, bad.Kind())
	assert.ErrorIs(t, bad.Err, domain.ErrValidation)
	assert.Contains(t, bad.Err.Error(), "asset 2")

	scalar, ok := specs[2].(InvalidSpec)
	require.True(t, ok)
	assert.Equal(t, "unknown", scalar.AssetName())

	unnamed, ok := specs[3].(InvalidSpec)
	require.True(t, ok)
	assert.Equal(t, "unknown", unnamed.AssetName())
	assert.Contains(t, unnamed.Err.Error(), "web_search")
}

func TestDecodeSpecsJSONAndWrapped(t *testing.T) {
	specs, err := DecodeSpecs([]byte(`[{"type":"product","name":"Watch","num_variations":2}]`))
	require.NoError(t, err)
	require.Len(t, specs, 1)
	product, ok := specs[0].(ProductSpec)
	require.True(t, ok)
	assert.Equal(t, 2, product.Input.NumVariations)
	assert.Equal(t, "Watch", product.Input.ProductName)

	specs, err = DecodeSpecs([]byte("assets:\n  - type: social\n    topic: sale\n"))
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "sale", specs[0].(SocialSpec).Input.Topic)

	_, err = DecodeSpecs([]byte("just a string"))
	require.Error(t, err)
}

func TestLoadSpecsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- type: custom\n  name: cube\n  prompt: a cube\n"), 0o644))

	specs, err := LoadSpecsFile(path)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "cube", specs[0].AssetName())

	_, err = LoadSpecsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
