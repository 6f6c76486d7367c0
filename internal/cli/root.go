package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"assetstudio/internal/infra"
)

const (
	successPrefix = "✅ "
	errorPrefix   = "❌ "
	infoPrefix    = "ℹ️  "
)

// app holds what every subcommand shares once the root pre-run has loaded
// the configuration.
type app struct {
	out    io.Writer
	errOut io.Writer

	outputDir string
	cfg       *infra.Config
	logger    infra.Logger
}

// NewRootCommand assembles the command tree. Output goes to stdout and
// stderr so tests can capture both.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{out: stdout, errOut: stderr}

	root := &cobra.Command{
		Use:   "assetstudio",
		Short: "Generate creative assets with nano-banana-pro",
		Long: `Generate product photos, social graphics, brand assets and custom images
through the nano-banana-pro model, saving the results under an asset directory.`,
		Example: `  assetstudio product --product-name "Luxury Watch" --prompt "A luxury watch on white background"
  assetstudio social --platform instagram --topic "Product Launch" --prompt "Instagram post graphic"
  assetstudio brand --asset-type logo --brand-name "TechCorp" --prompt "Modern tech logo"
  assetstudio custom --category thumbnails --name video-1 --prompt "YouTube thumbnail" --web-search
  assetstudio test`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&a.outputDir, "output-dir", "./assets", "Output directory for generated assets")

	root.AddCommand(
		a.productCommand(),
		a.socialCommand(),
		a.brandCommand(),
		a.customCommand(),
		a.testCommand(),
		a.batchCommand(),
		a.summaryCommand(),
		a.exportCommand(),
		a.statusCommand(),
		a.historyCommand(),
		a.serveCommand(),
	)
	return root
}

// Execute runs the command tree with args and returns the process exit code.
// Failures are printed to stderr behind a fixed prefix.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "%s%v\n", errorPrefix, err)
		return 1
	}
	return 0
}

// load reads the environment configuration. An explicit --output-dir wins
// over ASSET_OUTPUT_DIR.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = a.outputDir
	}
	a.cfg = cfg
	a.logger = infra.NewLoggerTo(a.errOut, cfg.AppEnv)
	return nil
}

func (a *app) success(format string, args ...any) {
	fmt.Fprintf(a.out, successPrefix+format+"\n", args...)
}

func (a *app) info(format string, args ...any) {
	fmt.Fprintf(a.out, infoPrefix+format+"\n", args...)
}
