package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uxlens/journeyflow/pkg/pipeline"
)

// renderCommand creates the render command for visualizing transition graphs.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		project    string
		formatsStr string
		detailed   bool
		refresh    bool
		noCache    bool
		tuning     flowFlags
	)

	cmd := &cobra.Command{
		Use:   "render [journeys.json]",
		Short: "Render the transition graph as DOT, SVG, or PNG",
		Long: `Render the transition graph as DOT, SVG, or PNG.

The render command computes the layout for a journey set and draws the
transition graph with screens in their computed order. Bidirectional loops
are collapsed into a single highlighted edge and edge width scales with
transition count. Use --detailed for visit counts and mean step positions
in node labels.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			formats := parseFormats(formatsStr, pipeline.FormatSVG)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), input, project, output, formats, detailed, refresh, noCache, tuning)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png, json (comma-separated)")
	cmd.Flags().StringVarP(&project, "project", "p", "", "fetch journeys for this project from the analytics backend")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show visit counts and mean step positions in node labels")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass caches and refetch journeys")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	tuning.register(cmd)

	return cmd
}

// runRender computes the layout and writes one file per requested format.
func (c *CLI) runRender(ctx context.Context, input, project, output string, formats []string, detailed, refresh, noCache bool, tuning flowFlags) error {
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
		Formats:      formats,
		Detailed:     detailed,
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

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(formats, ", ")))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := renderBasePath(output, input, project)
	printSuccess("Render complete")
	for _, format := range formats {
		path := base + "." + format
		if output != "" && len(formats) == 1 {
			path = output
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Stats.JourneyCount, result.Stats.ScreenCount, result.CacheInfo.RenderHit)

	return nil
}

// renderBasePath derives the extensionless output base from the flags.
func renderBasePath(output, input, project string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	if input != "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	return project
}
