package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"assetstudio/internal/domain"
	"assetstudio/internal/generator"
	"assetstudio/internal/studio"
)

const testPrompt = "A red cube on a white background, minimalist, professional quality, 4K"

var errNoImages = errors.New("no images were generated")

// genFlags are the generation knobs every generating subcommand accepts.
type genFlags struct {
	aspectRatio string
	resolution  string
	numImages   int
}

func (f *genFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.aspectRatio, "aspect-ratio", domain.DefaultAspectRatio, "Image aspect ratio")
	cmd.Flags().StringVar(&f.resolution, "resolution", domain.DefaultResolution, "Image resolution (1K, 2K, 4K)")
	cmd.Flags().IntVar(&f.numImages, "num-images", 1, "Number of images to generate (1-4)")
}

func (f *genFlags) params() generator.Params {
	return generator.Params{NumImages: f.numImages, AspectRatio: f.aspectRatio, Resolution: f.resolution}
}

func (a *app) announce(prompt string, f *genFlags) {
	a.info("Prompt: %s", prompt)
	a.info("Resolution: %s", f.resolution)
	a.info("Aspect ratio: %s", f.aspectRatio)
}

// reportSaved prints every saved path behind icon, or fails when the call
// produced no saved_paths.
func (a *app) reportSaved(res *domain.AssetResult, icon string) error {
	if !res.Saved() {
		return errNoImages
	}
	a.success("Generated %d image(s)", len(res.SavedPaths))
	for _, p := range res.SavedPaths {
		fmt.Fprintf(a.out, "  %s %s\n", icon, p)
	}
	if res.Skipped > 0 {
		a.info("Skipped %d image(s) without a usable URL", res.Skipped)
	}
	return nil
}

func oneOf(field, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return &domain.ValidationError{Field: field, Value: value, Allowed: allowed}
}

func (a *app) productCommand() *cobra.Command {
	var (
		name, prompt string
		flags        genFlags
	)
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Generate product photography",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.newServices(cmd.Context(), nil)
			if err != nil {
				return fmt.Errorf("failed to generate product photo: %w", err)
			}
			defer svc.close()

			a.info("Generating product photo for: %s", name)
			a.announce(prompt, &flags)
			a.info("Generating %d image(s)...", flags.numImages)
			res, err := svc.gen.ProductPhoto(cmd.Context(), generator.ProductRequest{
				Name: name, Prompt: prompt, Params: flags.params(), Save: true,
			})
			if err != nil {
				return fmt.Errorf("failed to generate product photo: %w", err)
			}
			return a.reportSaved(res, "📸")
		},
	}
	cmd.Flags().StringVar(&name, "product-name", "", "Name of the product")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Detailed prompt for the image")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("product-name")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func (a *app) socialCommand() *cobra.Command {
	var (
		platform, topic, prompt string
		flags                   genFlags
	)
	cmd := &cobra.Command{
		Use:   "social",
		Short: "Generate social media graphics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := oneOf("platform", platform, studio.Platforms); err != nil {
				return err
			}
			svc, err := a.newServices(cmd.Context(), nil)
			if err != nil {
				return fmt.Errorf("failed to generate social graphic: %w", err)
			}
			defer svc.close()

			a.info("Generating %s graphic for: %s", platform, topic)
			a.announce(prompt, &flags)
			a.info("Generating %d image(s)...", flags.numImages)
			res, err := svc.gen.SocialGraphic(cmd.Context(), generator.SocialRequest{
				Platform: platform, Topic: topic, Prompt: prompt, Params: flags.params(), Save: true,
			})
			if err != nil {
				return fmt.Errorf("failed to generate social graphic: %w", err)
			}
			return a.reportSaved(res, "📱")
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "", "Social platform")
	cmd.Flags().StringVar(&topic, "topic", "", "Topic of the graphic")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Detailed prompt for the image")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("platform")
	_ = cmd.MarkFlagRequired("topic")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func (a *app) brandCommand() *cobra.Command {
	var (
		assetType, brand, prompt string
		flags                    genFlags
	)
	cmd := &cobra.Command{
		Use:   "brand",
		Short: "Generate brand assets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := oneOf("asset type", assetType, studio.BrandElementTypes); err != nil {
				return err
			}
			svc, err := a.newServices(cmd.Context(), nil)
			if err != nil {
				return fmt.Errorf("failed to generate brand asset: %w", err)
			}
			defer svc.close()

			a.info("Generating %s for: %s", assetType, brand)
			a.announce(prompt, &flags)
			a.info("Generating %d image(s)...", flags.numImages)
			res, err := svc.gen.BrandAsset(cmd.Context(), generator.BrandRequest{
				Brand: brand, AssetType: assetType, Prompt: prompt, Params: flags.params(), Save: true,
			})
			if err != nil {
				return fmt.Errorf("failed to generate brand asset: %w", err)
			}
			return a.reportSaved(res, "🎨")
		},
	}
	cmd.Flags().StringVar(&assetType, "asset-type", "", "Type of brand asset")
	cmd.Flags().StringVar(&brand, "brand-name", "", "Name of the brand")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Detailed prompt for the image")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("asset-type")
	_ = cmd.MarkFlagRequired("brand-name")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func (a *app) customCommand() *cobra.Command {
	var (
		category, name, prompt, format string
		webSearch                      bool
		flags                          genFlags
	)
	cmd := &cobra.Command{
		Use:   "custom",
		Short: "Generate a custom asset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.newServices(cmd.Context(), nil)
			if err != nil {
				return fmt.Errorf("failed to generate custom asset: %w", err)
			}
			defer svc.close()

			a.info("Generating %s/%s", category, name)
			a.announce(prompt, &flags)
			a.info("Format: %s", format)
			if webSearch {
				a.info("Web search: ENABLED")
			}
			a.info("Generating %d image(s)...", flags.numImages)
			params := flags.params()
			params.OutputFormat = format
			params.EnableWebSearch = webSearch
			res, err := svc.gen.Custom(cmd.Context(), generator.CustomRequest{
				Category: category, Name: name, Prompt: prompt, Params: params, Save: true,
			})
			if err != nil {
				return fmt.Errorf("failed to generate custom asset: %w", err)
			}
			return a.reportSaved(res, "✨")
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Asset category")
	cmd.Flags().StringVar(&name, "name", "", "Asset name")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Detailed prompt for the image")
	cmd.Flags().StringVar(&format, "format", domain.DefaultOutputFormat, "Output format (png, jpeg, webp)")
	cmd.Flags().BoolVar(&webSearch, "web-search", false, "Enable Google Search grounding for real-time data")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

// testCommand submits one fixed prompt without saving, to check the key and
// the connection.
func (a *app) testCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test the nano-banana-pro API connection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.info("Testing nano-banana-pro API connection...")
			client, err := a.newClient()
			if err != nil {
				return fmt.Errorf("api test failed: %w", err)
			}

			a.info("Generating test image...")
			res, err := client.Submit(cmd.Context(), domain.GenerationRequest{
				Prompt:     testPrompt,
				NumImages:  1,
				Resolution: "2K",
			}.WithDefaults())
			if err != nil {
				return fmt.Errorf("api test failed: %w", err)
			}
			if len(res.Images) == 0 {
				return errors.New("api returned no images")
			}
			a.success("API connection successful!")
			url := res.Images[0].URL
			if url == "" {
				url = "N/A"
			}
			a.info("Generated image URL: %s", url)
			return nil
		},
	}
}
