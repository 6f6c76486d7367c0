package studio

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetstudio/internal/domain"
	"assetstudio/internal/generator"
	"assetstudio/internal/storage"
)

type stubClient struct {
	mu      sync.Mutex
	prompts []string
}

func (c *stubClient) Submit(_ context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.prompts = append(c.prompts, req.Prompt)
	c.mu.Unlock()
	if strings.Contains(req.Prompt, "FAIL") {
		return nil, &domain.TransportError{Op: "submit", StatusCode: 503, Body: "service unavailable"}
	}
	images := make([]domain.Image, req.NumImages)
	for i := range images {
		images[i] = domain.Image{URL: "https://cdn.test/img.png"}
	}
	return &domain.GenerationResult{RequestID: "req", Images: images}, nil
}

func (c *stubClient) FetchBytes(context.Context, string) ([]byte, error) {
	return []byte("png"), nil
}

func newTestStudio(t *testing.T, concurrency int) (*Studio, *stubClient, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "assets")
	store, err := storage.NewFileStore(root)
	require.NoError(t, err)
	client := &stubClient{}
	gen, err := generator.New(client, store, generator.Options{})
	require.NoError(t, err)
	s, err := New(gen, Options{BatchConcurrency: concurrency})
	require.NoError(t, err)
	return s, client, root
}

func TestProductPhotoBuildsPrompt(t *testing.T) {
	s, client, _ := newTestStudio(t, 1)

	res, err := s.ProductPhoto(context.Background(), ProductPhotoInput{
		ProductName: "Luxury Watch",
		Description: "gold watch on marble",
	})
	require.NoError(t, err)
	want := "gold watch on marble, professional photography, studio lighting, white background, sharp focus, 4K, professional quality"
	assert.Equal(t, want, res.PromptUsed)
	assert.Equal(t, []string{want}, client.prompts)
	assert.True(t, res.Success)
	assert.Len(t, res.Images, 1)
	assert.Equal(t, "2K", res.Resolution)
	assert.Equal(t, "1:1", res.AspectRatio)
}

func TestSocialAndBrandTemplates(t *testing.T) {
	s, _, _ := newTestStudio(t, 1)

	social, err := s.SocialPost(context.Background(), SocialPostInput{
		Platform:    "linkedin",
		Topic:       "Launch",
		Description: "team photo",
		Mood:        "energetic",
	})
	require.NoError(t, err)
	assert.Equal(t, "team photo, modern design, energetic, eye-catching, professional quality, 4K, trending on linkedin", social.PromptUsed)
	assert.Equal(t, "linkedin", social.Platform)

	brand, err := s.BrandElement(context.Background(), BrandElementInput{
		BrandName:   "TechCorp",
		ElementType: "icon",
		Description: "a rocket",
	})
	require.NoError(t, err)
	assert.Equal(t, "a rocket, modern, professional colors, professional quality, 4K, scalable design", brand.PromptUsed)
	assert.Equal(t, "icon", brand.ElementType)
}

func TestCustomAssetUsesPromptVerbatim(t *testing.T) {
	s, client, root := newTestStudio(t, 1)

	res, err := s.CustomAsset(context.Background(), CustomAssetInput{
		Category:        "thumbnails",
		Name:            "Episode 1",
		Prompt:          "exact prompt",
		OutputFormat:    "webp",
		EnableWebSearch: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"exact prompt"}, client.prompts)
	require.NotNil(t, res.WebSearchEnabled)
	assert.True(t, *res.WebSearchEnabled)
	assert.Equal(t, "thumbnails", res.Category)
	require.Len(t, res.Images, 1)
	assert.True(t, strings.HasPrefix(res.Images[0], filepath.Join(root, "thumbnails", "episode-1", "episode_1_1_")))
	assert.True(t, strings.HasSuffix(res.Images[0], ".webp"))
}

func TestValidationErrorPropagates(t *testing.T) {
	s, client, _ := newTestStudio(t, 1)

	_, err := s.ProductPhoto(context.Background(), ProductPhotoInput{ProductName: "x", Description: "y", AspectRatio: "7:5"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, client.prompts)
}

func TestBatchIsolatesFailures(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		s, _, _ := newTestStudio(t, concurrency)
		specs, err := DecodeSpecs([]byte(`
- type: product
  name: Watch
  description: Luxury leather watch
- type: social
  name: Launch
  platform: instagram
- type: brand
  name: TechCorp
  description: FAIL this one
- type: custom
  name: Hero
  prompt: a hero banner
`))
		require.NoError(t, err)

		results := s.Batch(context.Background(), specs)
		require.Len(t, results, 4)
		assert.Equal(t, []string{"Watch", "Launch", "TechCorp", "Hero"}, []string{
			results[0].AssetName, results[1].AssetName, results[2].AssetName, results[3].AssetName,
		})
		for _, i := range []int{0, 1, 3} {
			assert.True(t, results[i].Success, "result %d", i)
			assert.NotEmpty(t, results[i].Images, "result %d", i)
		}
		assert.False(t, results[2].Success)
		assert.Contains(t, results[2].Error, "status 503")
	}
}

func TestBatchEndToEndExample(t *testing.T) {
	s, _, root := newTestStudio(t, 1)

	spec, err := DecodeSpec(map[string]any{
		"type":           "product",
		"name":           "Watch",
		"description":    "Luxury leather watch",
		"num_variations": 1,
	})
	require.NoError(t, err)

	results := s.Batch(context.Background(), []AssetSpec{spec})
	require.Len(t, results, 1)
	got := results[0]
	assert.True(t, got.Success)
	assert.Equal(t, "Watch", got.AssetName)
	require.Len(t, got.Images, 1)

	rel, err := filepath.Rel(root, got.Images[0])
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^product-photography/watch/watch_1_\d{8}_\d{6}\.png$`), filepath.ToSlash(rel))

	encoded, err := json.Marshal(got)
	require.NoError(t, err)
	var asMap map[string]any
	require.NoError(t, json.Unmarshal(encoded, &asMap))
	assert.Equal(t, true, asMap["success"])
	assert.Equal(t, "Watch", asMap["asset_name"])
	assert.Contains(t, asMap, "prompt_used")
}

func TestBatchNilSpec(t *testing.T) {
	s, _, _ := newTestStudio(t, 1)
	results := s.Batch(context.Background(), []AssetSpec{nil})
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, "unknown", results[0].AssetName)
}

func TestBatchKeepsMalformedRecordInPlace(t *testing.T) {
	s, client, _ := newTestStudio(t, 2)
	specs, err := DecodeSpecs([]byte(`[
		{"type":"product","name":"Watch","description":"gold watch"},
		{"type":"social","name":"Launch","platform":"instagram","num_variations":"two"},
		{"type":"custom","name":"Hero","prompt":"a hero banner"}
	]`))
	require.NoError(t, err)
	require.Len(t, specs, 3)

	results := s.Batch(context.Background(), specs)
	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.True(t, results[2].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, "Launch", results[1].AssetName)
	assert.Contains(t, results[1].Error, "num_variations")
	assert.Len(t, client.prompts, 2)
}

func TestBatchZeroVariationsFails(t *testing.T) {
	s, client, _ := newTestStudio(t, 1)
	specs, err := DecodeSpecs([]byte(`[{"type":"product","name":"Watch","num_variations":0}]`))
	require.NoError(t, err)

	results := s.Batch(context.Background(), specs)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, "Watch", results[0].AssetName)
	assert.Contains(t, results[0].Error, "num_images")
	assert.Empty(t, client.prompts)

	_, err = s.Run(context.Background(), specs[0])
	assert.True(t, errors.Is(err, domain.ErrValidation), "%v", err)

	// The typed operations still read zero as one image.
	res, err := s.ProductPhoto(context.Background(), ProductPhotoInput{ProductName: "Watch"})
	require.NoError(t, err)
	assert.Len(t, res.Images, 1)
}

type panickingGenerator struct {
	AssetGenerator
}

func (panickingGenerator) Custom(context.Context, generator.CustomRequest) (*domain.AssetResult, error) {
	panic("boom")
}

func (panickingGenerator) OutputDir() string { return "" }

func TestBatchRecoversFromPanic(t *testing.T) {
	s, err := New(panickingGenerator{}, Options{BatchConcurrency: 2})
	require.NoError(t, err)

	results := s.Batch(context.Background(), []AssetSpec{
		CustomSpec{Name: "Hero", Input: CustomAssetInput{Category: "c", Name: "hero", Prompt: "p", NumVariations: 1}},
		InvalidSpec{Name: "Other", Err: errors.New("bad record")},
	})
	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Equal(t, "Hero", results[0].AssetName)
	assert.Contains(t, results[0].Error, "panic: boom")
	assert.Equal(t, "bad record", results[1].Error)
}

func TestSummaryCountsCategories(t *testing.T) {
	s, _, root := newTestStudio(t, 1)
	writeFile(t, filepath.Join(root, "social-graphics", "instagram", "a.png"))
	writeFile(t, filepath.Join(root, "brand-assets", "x", "logo", "b.webp"))
	writeFile(t, filepath.Join(root, "drafts", "notes.txt"))

	summary, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalAssets)
	assert.Equal(t, map[string]int{"social-graphics": 1, "brand-assets": 1}, summary.ByCategory)
	assert.Equal(t, root, summary.AssetDir)
}

func TestSummarizeMissingDirectory(t *testing.T) {
	summary, err := Summarize(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Zero(t, summary.TotalAssets)
	assert.Empty(t, summary.ByCategory)
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}
