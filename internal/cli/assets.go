package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"assetstudio/internal/storage"
	"assetstudio/internal/studio"
	"assetstudio/pkg/zip"
)

func (a *app) batchCommand() *cobra.Command {
	var (
		file        string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate every asset listed in a YAML or JSON file",
		Long: `Reads a list of asset specs (each with a "type" of product, social, brand or
custom) and generates them, printing one JSON result per spec in input order.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			specs, err := studio.LoadSpecsFile(file)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("concurrency") {
				a.cfg.BatchConcurrency = concurrency
			}
			svc, err := a.newServices(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer svc.close()

			a.info("Generating %d asset(s)...", len(specs))
			results := svc.studio.Batch(cmd.Context(), specs)

			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if !r.Success {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d asset(s) failed", failed, len(results))
			}
			a.success("Generated %d asset(s)", len(results))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the asset spec file (.yaml, .yml or .json)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "Number of assets generated at once")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) summaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Count the saved images per category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := studio.Summarize(a.cfg.OutputDir)
			if err != nil {
				return err
			}
			a.info("Asset directory: %s", summary.AssetDir)
			categories := make([]string, 0, len(summary.ByCategory))
			for c := range summary.ByCategory {
				categories = append(categories, c)
			}
			slices.Sort(categories)
			title := cases.Title(language.English)
			for _, c := range categories {
				fmt.Fprintf(a.out, "  %s: %d\n", title.String(strings.ReplaceAll(c, "-", " ")), summary.ByCategory[c])
			}
			a.success("Total assets: %d", summary.TotalAssets)
			return nil
		},
	}
}

func (a *app) exportCommand() *cobra.Command {
	var out, category string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the saved images to a zip archive",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			store, err := storage.OpenFileStore(a.cfg.OutputDir)
			if err != nil {
				return err
			}
			images, err := store.ListImages(strings.TrimSpace(category))
			if err != nil {
				return err
			}
			if len(images) == 0 {
				return errors.New("no images to export")
			}
			files := make([]zip.File, 0, len(images))
			for _, img := range images {
				files = append(files, zip.File{Name: img.RelPath, Path: img.Path})
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create archive: %w", err)
			}
			defer func() {
				if cerr := f.Close(); err == nil && cerr != nil {
					err = cerr
				}
			}()
			if err := zip.WriteArchive(f, files); err != nil {
				return fmt.Errorf("write archive: %w", err)
			}
			a.success("Exported %d image(s) to %s", len(files), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "assets.zip", "Archive path")
	cmd.Flags().StringVar(&category, "category", "", "Only export this category")
	return cmd
}
