package studio

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"assetstudio/internal/domain"
)

const defaultAssetName = "unknown"

// AssetSpec is one entry of a batch: exactly one of ProductSpec, SocialSpec,
// BrandSpec or CustomSpec.
type AssetSpec interface {
	Kind() domain.AssetKind
	// AssetName is the label echoed in the batch result.
	AssetName() string
	run(ctx context.Context, s *Studio) (*Result, error)
}

type ProductSpec struct {
	Name  string
	Input ProductPhotoInput
}

type SocialSpec struct {
	Name  string
	Input SocialPostInput
}

type BrandSpec struct {
	Name  string
	Input BrandElementInput
}

type CustomSpec struct {
	Name  string
	Input CustomAssetInput
}

// InvalidSpec stands in for a record that could not be decoded. Running it
// yields its decode error, so the batch still reports that entry.
type InvalidSpec struct {
	Name string
	Type domain.AssetKind
	Err  error
}

func (ProductSpec) Kind() domain.AssetKind { return domain.AssetKindProduct }
func (SocialSpec) Kind() domain.AssetKind  { return domain.AssetKindSocial }
func (BrandSpec) Kind() domain.AssetKind   { return domain.AssetKindBrand }
func (CustomSpec) Kind() domain.AssetKind  { return domain.AssetKindCustom }

func (p ProductSpec) AssetName() string { return assetName(p.Name) }
func (p SocialSpec) AssetName() string  { return assetName(p.Name) }
func (p BrandSpec) AssetName() string   { return assetName(p.Name) }
func (p CustomSpec) AssetName() string  { return assetName(p.Name) }

func (p InvalidSpec) Kind() domain.AssetKind { return p.Type }
func (p InvalidSpec) AssetName() string      { return assetName(p.Name) }

func (p ProductSpec) run(ctx context.Context, s *Studio) (*Result, error) {
	return s.productPhoto(ctx, p.Input.withDefaults(false))
}

func (p SocialSpec) run(ctx context.Context, s *Studio) (*Result, error) {
	return s.socialPost(ctx, p.Input.withDefaults(false))
}

func (p BrandSpec) run(ctx context.Context, s *Studio) (*Result, error) {
	return s.brandElement(ctx, p.Input.withDefaults(false))
}

func (p CustomSpec) run(ctx context.Context, s *Studio) (*Result, error) {
	return s.customAsset(ctx, p.Input.withDefaults(false))
}

func (p InvalidSpec) run(context.Context, *Studio) (*Result, error) {
	return nil, p.Err
}

func assetName(name string) string {
	if name == "" {
		return defaultAssetName
	}
	return name
}

// LoadSpecsFile reads a YAML or JSON list of asset records.
func LoadSpecsFile(path string) ([]AssetSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return DecodeSpecs(data)
}

// DecodeSpecs parses a YAML (or JSON) list of loosely-typed asset records.
// A document with an "assets" key holding the list is accepted too. Only a
// document that is not such a list fails; a record that does not decode
// becomes an InvalidSpec at its position.
func DecodeSpecs(data []byte) ([]AssetSpec, error) {
	var records []any
	if err := yaml.Unmarshal(data, &records); err != nil {
		var wrapped struct {
			Assets []any `yaml:"assets"`
		}
		if wrapErr := yaml.Unmarshal(data, &wrapped); wrapErr != nil || wrapped.Assets == nil {
			return nil, fmt.Errorf("parse batch specs: %w", err)
		}
		records = wrapped.Assets
	}
	specs := make([]AssetSpec, 0, len(records))
	for i, item := range records {
		rec, ok := item.(map[string]any)
		if !ok {
			specs = append(specs, InvalidSpec{
				Type: domain.AssetKindCustom,
				Err:  fmt.Errorf("asset %d: %w", i+1, fieldError("record", fmt.Sprintf("expected a mapping, got %T", item))),
			})
			continue
		}
		spec, err := DecodeSpec(rec)
		if err != nil {
			spec = invalidSpec(rec, fmt.Errorf("asset %d: %w", i+1, err))
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// DecodeSpec maps one record onto its variant, applying the per-kind defaults
// for absent fields. The "type" discriminator is case-insensitive; missing or
// unknown values select the custom variant.
func DecodeSpec(rec map[string]any) (AssetSpec, error) {
	r := record(rec)
	kind, err := r.str("type", "")
	if err != nil {
		return nil, err
	}
	name, err := r.str("name", "")
	if err != nil {
		return nil, err
	}
	description, err := r.str("description", "")
	if err != nil {
		return nil, err
	}
	n, err := r.integer("num_variations", 1)
	if err != nil {
		return nil, err
	}
	resolution, err := r.str("resolution", domain.DefaultResolution)
	if err != nil {
		return nil, err
	}
	aspectRatio, err := r.str("aspect_ratio", domain.DefaultAspectRatio)
	if err != nil {
		return nil, err
	}

	// Each variant reads its own fields; the first decode error wins.
	var firstErr error
	get := func(key, fallback string) string {
		v, err := r.str(key, fallback)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return v
	}

	var spec AssetSpec
	switch domain.ParseAssetKind(kind) {
	case domain.AssetKindProduct:
		spec = ProductSpec{Name: name, Input: ProductPhotoInput{
			ProductName:   or(name, "product"),
			Description:   description,
			Style:         get("style", defaultProductStyle),
			Lighting:      get("lighting", defaultProductLighting),
			Background:    get("background", defaultProductBackground),
			NumVariations: n,
			Resolution:    resolution,
			AspectRatio:   aspectRatio,
		}}
	case domain.AssetKindSocial:
		spec = SocialSpec{Name: name, Input: SocialPostInput{
			Platform:      get("platform", "instagram"),
			Topic:         get("topic", or(name, "post")),
			Description:   description,
			Style:         get("style", defaultSocialStyle),
			Mood:          get("mood", defaultSocialMood),
			NumVariations: n,
			Resolution:    resolution,
			AspectRatio:   aspectRatio,
		}}
	case domain.AssetKindBrand:
		spec = BrandSpec{Name: name, Input: BrandElementInput{
			BrandName:     get("brand_name", "brand"),
			ElementType:   get("element_type", "logo"),
			Description:   description,
			Style:         get("style", defaultBrandStyle),
			Colors:        get("colors", defaultBrandColors),
			NumVariations: n,
			Resolution:    resolution,
			AspectRatio:   aspectRatio,
		}}
	default:
		webSearch, err := r.boolean("web_search", false)
		if err != nil {
			return nil, err
		}
		spec = CustomSpec{Name: name, Input: CustomAssetInput{
			Category:        get("category", "custom"),
			Name:            or(name, "asset"),
			Prompt:          get("prompt", description),
			NumVariations:   n,
			Resolution:      resolution,
			AspectRatio:     aspectRatio,
			OutputFormat:    get("format", domain.DefaultOutputFormat),
			EnableWebSearch: webSearch,
		}}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return spec, nil
}

func invalidSpec(rec map[string]any, err error) InvalidSpec {
	name, _ := rec["name"].(string)
	kind, _ := rec["type"].(string)
	return InvalidSpec{Name: name, Type: domain.ParseAssetKind(kind), Err: err}
}

type record map[string]any

func (r record) str(key, fallback string) (string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return fallback, nil
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case int, int64, float64, bool:
		return fmt.Sprint(t), nil
	default:
		return "", fieldError(key, fmt.Sprintf("expected a string, got %T", v))
	}
}

func (r record) integer(key string, fallback int) (int, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return fallback, nil
	}
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, fieldError(key, fmt.Sprintf("expected an integer, got %v", t))
		}
		return int(t), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fieldError(key, fmt.Sprintf("expected an integer, got %q", t))
		}
		return n, nil
	default:
		return 0, fieldError(key, fmt.Sprintf("expected an integer, got %T", v))
	}
}

func (r record) boolean(key string, fallback bool) (bool, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return fallback, nil
	}
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return false, fieldError(key, fmt.Sprintf("expected a boolean, got %q", t))
		}
		return b, nil
	default:
		return false, fieldError(key, fmt.Sprintf("expected a boolean, got %T", v))
	}
}

func fieldError(key, reason string) error {
	return &domain.ValidationError{Field: key, Reason: reason}
}
