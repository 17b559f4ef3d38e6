package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uxlens/journeyflow/pkg/flow"
	"github.com/uxlens/journeyflow/pkg/pipeline"
)

// flowFlags holds the layout tuning flags shared by layout and render.
// Zero values defer to the config file, then to the engine defaults.
type flowFlags struct {
	bucketWidth         int
	minBucketAffinity   int
	loopWeightBase      float64
	loopBalanceWeight   float64
	strongPairThreshold int
	strongPairBoost     float64
}

// register adds the tuning flags to cmd.
func (f *flowFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.bucketWidth, "bucket-width", 0, "step positions per position bucket")
	cmd.Flags().IntVar(&f.minBucketAffinity, "min-affinity", 0, "minimum connection strength for bucket reassignment")
	cmd.Flags().Float64Var(&f.loopWeightBase, "loop-weight", 0, "base amplification for bidirectional pairs")
	cmd.Flags().Float64Var(&f.loopBalanceWeight, "loop-balance", 0, "balance factor scale for bidirectional pairs")
	cmd.Flags().IntVar(&f.strongPairThreshold, "strong-threshold", 0, "one-way count at which the strong-pair boost applies")
	cmd.Flags().Float64Var(&f.strongPairBoost, "strong-boost", 0, "multiplier for strong one-way pairs")
}

// apply overlays non-zero flag values on base tuning.
func (f *flowFlags) apply(base flow.Options) flow.Options {
	if f.bucketWidth > 0 {
		base.BucketWidth = f.bucketWidth
	}
	if f.minBucketAffinity > 0 {
		base.MinBucketAffinity = f.minBucketAffinity
	}
	if f.loopWeightBase > 0 {
		base.LoopWeightBase = f.loopWeightBase
	}
	if f.loopBalanceWeight > 0 {
		base.LoopBalanceWeight = f.loopBalanceWeight
	}
	if f.strongPairThreshold > 0 {
		base.StrongPairThreshold = f.strongPairThreshold
	}
	if f.strongPairBoost > 0 {
		base.StrongPairBoost = f.strongPairBoost
	}
	return base
}

// layoutCommand creates the layout command for computing screen orderings.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		project string
		refresh bool
		noCache bool
		tuning  flowFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [journeys.json]",
		Short: "Compute the screen ordering from a journey set",
		Long: `Compute the screen ordering from a journey set.

The layout command takes a journeys.json export (or fetches journeys for
--project from the configured analytics backend) and computes the screen
ordering for the trajectory chart. The output is a flow.json artifact with
the screen order, the step-axis size, and one plottable series per journey.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runLayout(cmd.Context(), input, project, output, refresh, noCache, tuning)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.flow.json)")
	cmd.Flags().StringVarP(&project, "project", "p", "", "fetch journeys for this project from the analytics backend")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass caches and refetch journeys")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	tuning.register(cmd)

	return cmd
}

// runLayout fetches journeys, computes the layout, and writes the artifact.
func (c *CLI) runLayout(ctx context.Context, input, project, output string, refresh, noCache bool, tuning flowFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if input == "" && project == "" {
		return fmt.Errorf("a journeys file or --project is required")
	}

	runner, err := c.newRunner(cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{
		Project:      project,
		JourneysFile: input,
		Refresh:      refresh,
		Flow:         tuning.apply(cfg.Flow.FlowOptions()),
		Formats:      []string{pipeline.FormatJSON},
		Logger:       c.Logger,
	}
	if project != "" {
		opts.Fetcher, err = newFetcher(cfg, runner.Cache)
		if err != nil {
			return err
		}
		if opts.Fetcher == nil {
			return fmt.Errorf("--project requires backend.url in the config file")
		}
	}

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = layoutOutputPath(input, project)
	}
	if err := os.WriteFile(outputPath, result.Artifacts[pipeline.FormatJSON], 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.JourneyCount, result.Stats.ScreenCount, result.CacheInfo.ComputeHit)
	printOrderPreview(result.Flow.ScreenOrder)
	printNewline()
	source := input
	if source == "" {
		source = "--project " + project
	}
	printNextStep("Render", appName+" render "+source)

	return nil
}

// layoutOutputPath derives the artifact path from the input source.
func layoutOutputPath(input, project string) string {
	if input != "" {
		return strings.TrimSuffix(input, filepath.Ext(input)) + ".flow.json"
	}
	return project + ".flow.json"
}

// printOrderPreview shows the head of the computed screen order.
func printOrderPreview(order []string) {
	const maxPreview = 6
	if len(order) == 0 {
		return
	}
	preview := order
	suffix := ""
	if len(preview) > maxPreview {
		preview = preview[:maxPreview]
		suffix = fmt.Sprintf(" … (+%d)", len(order)-maxPreview)
	}
	printDetail("Order: %s%s", strings.Join(preview, " → "), suffix)
}
