package studio

import (
	"context"
	"errors"
	"fmt"

	"assetstudio/internal/domain"
	"assetstudio/internal/generator"
	"assetstudio/internal/infra"
)

// AssetGenerator is the generator surface the studio delegates to.
type AssetGenerator interface {
	ProductPhoto(ctx context.Context, req generator.ProductRequest) (*domain.AssetResult, error)
	SocialGraphic(ctx context.Context, req generator.SocialRequest) (*domain.AssetResult, error)
	BrandAsset(ctx context.Context, req generator.BrandRequest) (*domain.AssetResult, error)
	Custom(ctx context.Context, req generator.CustomRequest) (*domain.AssetResult, error)
	OutputDir() string
}

type Options struct {
	Logger           *infra.Logger
	BatchConcurrency int
}

// Studio builds prompts from structured fields and hands them to the
// generator. Instances are independent; callers own their lifetime.
type Studio struct {
	gen              AssetGenerator
	logger           *infra.Logger
	batchConcurrency int
}

func New(gen AssetGenerator, opts Options) (*Studio, error) {
	if gen == nil {
		return nil, errors.New("studio: generator is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	concurrency := opts.BatchConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Studio{gen: gen, logger: logger, batchConcurrency: concurrency}, nil
}

// OutputDir returns the directory assets are written under.
func (s *Studio) OutputDir() string {
	return s.gen.OutputDir()
}

// Result is the normalized outcome of one façade call. Success is true when
// the save step produced a saved_paths list, even an empty one.
type Result struct {
	Success          bool     `json:"success"`
	Images           []string `json:"images"`
	PromptUsed       string   `json:"prompt_used,omitempty"`
	Resolution       string   `json:"resolution,omitempty"`
	AspectRatio      string   `json:"aspect_ratio,omitempty"`
	Platform         string   `json:"platform,omitempty"`
	ElementType      string   `json:"element_type,omitempty"`
	Category         string   `json:"category,omitempty"`
	WebSearchEnabled *bool    `json:"web_search_enabled,omitempty"`
	AssetName        string   `json:"asset_name,omitempty"`
	RequestID        string   `json:"request_id,omitempty"`
	Skipped          int      `json:"skipped,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// ProductPhoto and the other typed operations treat a zero NumVariations as
// one image. Counts carried by an AssetSpec are used as given.
func (s *Studio) ProductPhoto(ctx context.Context, in ProductPhotoInput) (*Result, error) {
	return s.productPhoto(ctx, in.withDefaults(true))
}

func (s *Studio) productPhoto(ctx context.Context, in ProductPhotoInput) (*Result, error) {
	prompt := in.Prompt()
	res, err := s.gen.ProductPhoto(ctx, generator.ProductRequest{
		Name:   in.ProductName,
		Prompt: prompt,
		Params: generator.Params{NumImages: in.NumVariations, AspectRatio: in.AspectRatio, Resolution: in.Resolution},
		Save:   true,
	})
	if err != nil {
		return nil, err
	}
	return newResult(res, prompt, in.Resolution, in.AspectRatio), nil
}

func (s *Studio) SocialPost(ctx context.Context, in SocialPostInput) (*Result, error) {
	return s.socialPost(ctx, in.withDefaults(true))
}

func (s *Studio) socialPost(ctx context.Context, in SocialPostInput) (*Result, error) {
	prompt := in.Prompt()
	res, err := s.gen.SocialGraphic(ctx, generator.SocialRequest{
		Platform: in.Platform,
		Topic:    in.Topic,
		Prompt:   prompt,
		Params:   generator.Params{NumImages: in.NumVariations, AspectRatio: in.AspectRatio, Resolution: in.Resolution},
		Save:     true,
	})
	if err != nil {
		return nil, err
	}
	out := newResult(res, prompt, in.Resolution, in.AspectRatio)
	out.Platform = in.Platform
	return out, nil
}

func (s *Studio) BrandElement(ctx context.Context, in BrandElementInput) (*Result, error) {
	return s.brandElement(ctx, in.withDefaults(true))
}

func (s *Studio) brandElement(ctx context.Context, in BrandElementInput) (*Result, error) {
	prompt := in.Prompt()
	res, err := s.gen.BrandAsset(ctx, generator.BrandRequest{
		Brand:     in.BrandName,
		AssetType: in.ElementType,
		Prompt:    prompt,
		Params:    generator.Params{NumImages: in.NumVariations, AspectRatio: in.AspectRatio, Resolution: in.Resolution},
		Save:      true,
	})
	if err != nil {
		return nil, err
	}
	out := newResult(res, prompt, in.Resolution, in.AspectRatio)
	out.ElementType = in.ElementType
	return out, nil
}

// CustomAsset submits the caller's prompt verbatim.
func (s *Studio) CustomAsset(ctx context.Context, in CustomAssetInput) (*Result, error) {
	return s.customAsset(ctx, in.withDefaults(true))
}

func (s *Studio) customAsset(ctx context.Context, in CustomAssetInput) (*Result, error) {
	res, err := s.gen.Custom(ctx, generator.CustomRequest{
		Category: in.Category,
		Name:     in.Name,
		Prompt:   in.Prompt,
		Params: generator.Params{
			NumImages:       in.NumVariations,
			AspectRatio:     in.AspectRatio,
			Resolution:      in.Resolution,
			OutputFormat:    in.OutputFormat,
			EnableWebSearch: in.EnableWebSearch,
		},
		Save: true,
	})
	if err != nil {
		return nil, err
	}
	out := newResult(res, in.Prompt, in.Resolution, in.AspectRatio)
	out.Category = in.Category
	webSearch := in.EnableWebSearch
	out.WebSearchEnabled = &webSearch
	return out, nil
}

func newResult(res *domain.AssetResult, prompt, resolution, aspectRatio string) *Result {
	images := []string{}
	if res.Saved() {
		images = res.SavedPaths
	}
	return &Result{
		Success:     res.Saved(),
		Images:      images,
		PromptUsed:  prompt,
		Resolution:  resolution,
		AspectRatio: aspectRatio,
		RequestID:   res.RequestID,
		Skipped:     res.Skipped,
	}
}

func failure(assetName string, err error) Result {
	return Result{
		Success:   false,
		Images:    []string{},
		AssetName: assetName,
		Error:     fmt.Sprint(err),
	}
}
