package studio

import (
	"fmt"

	"assetstudio/internal/domain"
)

const (
	defaultProductStyle      = "professional photography"
	defaultProductLighting   = "studio lighting"
	defaultProductBackground = "white background"

	defaultSocialStyle = "modern design"
	defaultSocialMood  = "professional"

	defaultBrandStyle  = "modern"
	defaultBrandColors = "professional colors"
)

// Platforms and BrandElementTypes are the choices offered by the command line.
var (
	Platforms         = []string{"instagram", "linkedin", "twitter", "tiktok", "pinterest"}
	BrandElementTypes = []string{"logo", "icon", "pattern", "illustration", "texture"}
)

// ProductPhotoInput describes a product shot. Zero values take the defaults.
type ProductPhotoInput struct {
	ProductName   string
	Description   string
	Style         string
	Lighting      string
	Background    string
	NumVariations int
	Resolution    string
	AspectRatio   string
}

func (in ProductPhotoInput) withDefaults(defaultCount bool) ProductPhotoInput {
	in.Style = or(in.Style, defaultProductStyle)
	in.Lighting = or(in.Lighting, defaultProductLighting)
	in.Background = or(in.Background, defaultProductBackground)
	in.NumVariations, in.Resolution, in.AspectRatio = params(in.NumVariations, in.Resolution, in.AspectRatio, defaultCount)
	return in
}

// Prompt renders the product template.
func (in ProductPhotoInput) Prompt() string {
	return fmt.Sprintf("%s, %s, %s, %s, sharp focus, 4K, professional quality",
		in.Description, in.Style, in.Lighting, in.Background)
}

type SocialPostInput struct {
	Platform      string
	Topic         string
	Description   string
	Style         string
	Mood          string
	NumVariations int
	Resolution    string
	AspectRatio   string
}

func (in SocialPostInput) withDefaults(defaultCount bool) SocialPostInput {
	in.Style = or(in.Style, defaultSocialStyle)
	in.Mood = or(in.Mood, defaultSocialMood)
	in.NumVariations, in.Resolution, in.AspectRatio = params(in.NumVariations, in.Resolution, in.AspectRatio, defaultCount)
	return in
}

func (in SocialPostInput) Prompt() string {
	return fmt.Sprintf("%s, %s, %s, eye-catching, professional quality, 4K, trending on %s",
		in.Description, in.Style, in.Mood, in.Platform)
}

type BrandElementInput struct {
	BrandName     string
	ElementType   string
	Description   string
	Style         string
	Colors        string
	NumVariations int
	Resolution    string
	AspectRatio   string
}

func (in BrandElementInput) withDefaults(defaultCount bool) BrandElementInput {
	in.Style = or(in.Style, defaultBrandStyle)
	in.Colors = or(in.Colors, defaultBrandColors)
	in.NumVariations, in.Resolution, in.AspectRatio = params(in.NumVariations, in.Resolution, in.AspectRatio, defaultCount)
	return in
}

func (in BrandElementInput) Prompt() string {
	return fmt.Sprintf("%s, %s, %s, professional quality, 4K, scalable design",
		in.Description, in.Style, in.Colors)
}

// CustomAssetInput carries a caller-written prompt that is used verbatim.
type CustomAssetInput struct {
	Category        string
	Name            string
	Prompt          string
	NumVariations   int
	Resolution      string
	AspectRatio     string
	OutputFormat    string
	EnableWebSearch bool
}

func (in CustomAssetInput) withDefaults(defaultCount bool) CustomAssetInput {
	in.OutputFormat = or(in.OutputFormat, domain.DefaultOutputFormat)
	in.NumVariations, in.Resolution, in.AspectRatio = params(in.NumVariations, in.Resolution, in.AspectRatio, defaultCount)
	return in
}

// params fills the shared generation knobs. When defaultCount is set a zero
// count means one image; otherwise the count is kept as given. Out-of-range
// counts are left for validation to reject.
func params(n int, resolution, aspectRatio string, defaultCount bool) (int, string, string) {
	if n == 0 && defaultCount {
		n = 1
	}
	return n, or(resolution, domain.DefaultResolution), or(aspectRatio, domain.DefaultAspectRatio)
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
