package cli

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/uxlens/journeyflow/pkg/flow"
	"github.com/uxlens/journeyflow/pkg/journey"
)

// inspectCommand creates the inspect command for examining journey sets.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		interactive bool
		tuning      flowFlags
	)

	cmd := &cobra.Command{
		Use:   "inspect <journeys.json>",
		Short: "Show per-screen statistics for a journey set",
		Long: `Show per-screen statistics for a journey set.

For each screen the table lists its position in the computed order, total
visits, mean step position, and assigned position bucket. With --interactive
a journey picker opens and prints the selected journey's screen path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(args[0], interactive, tuning)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick a journey interactively and show its path")
	tuning.register(cmd)

	return cmd
}

// runInspect loads the journeys and prints the screen statistics table.
func (c *CLI) runInspect(input string, interactive bool, tuning flowFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	journeys, err := journey.ReadJourneysFile(input)
	if err != nil {
		return fmt.Errorf("load journeys %s: %w", input, err)
	}

	if interactive {
		return c.runJourneyPicker(journeys)
	}

	opts := tuning.apply(cfg.Flow.FlowOptions())
	g := flow.Collect(journeys)
	result := flow.Compute(journeys, opts)
	buckets := flow.BucketIndexOf(flow.AssignBuckets(g, opts))

	fmt.Println(StyleTitle.Render(input))
	printDetail("%d journeys, %d screens, %d steps max",
		len(journeys), g.ScreenCount(), result.MaxSteps)
	printNewline()
	fmt.Println(screenStatsTable(g, result.ScreenOrder, buckets))

	return nil
}

// screenStatsTable renders the per-screen statistics as a lipgloss table.
func screenStatsTable(g *flow.TransitionGraph, order []string, buckets map[string]int) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(order))
	for i, key := range order {
		mean := "—"
		if m, ok := g.MeanPosition(key); ok {
			mean = strconv.FormatFloat(m, 'f', 1, 64)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			key,
			strconv.Itoa(g.VisitCount(key)),
			mean,
			strconv.Itoa(buckets[key]),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Screen", "Visits", "Mean step", "Bucket").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 1 {
				return StyleValue
			}
			return StyleDim
		}).
		Render()
}

// runJourneyPicker opens the interactive journey list and prints the
// selected journey's screen path.
func (c *CLI) runJourneyPicker(journeys []journey.Journey) error {
	if len(journeys) == 0 {
		printInfo("No journeys in this set")
		return nil
	}

	model := NewJourneyListModel(journeys)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("run picker: %w", err)
	}

	m, ok := final.(JourneyListModel)
	if !ok || m.Selected == nil {
		return nil
	}

	printSuccess("%s", m.Selected.Name)
	for i, key := range m.Selected.Keys() {
		printDetail("%2d  %s", i, key)
	}
	return nil
}
