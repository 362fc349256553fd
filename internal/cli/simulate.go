package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stickycols/pkg/scene"
	"github.com/matzehuels/stickycols/pkg/trace"
)

// sceneFlags are the scene overrides shared by commands that load scenes.
type sceneFlags struct {
	fromTop  float64
	selector string
}

func (f *sceneFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.fromTop, "from-top", 0, "override the scene's from_top offset")
	cmd.Flags().StringVar(&f.selector, "selector", "", "override the scene's column selector")
}

// apply overrides the options of s with the flags that were set.
func (f *sceneFlags) apply(cmd *cobra.Command, s *scene.Scene) error {
	if cmd.Flags().Changed("from-top") {
		s.Options.FromTop = f.fromTop
	}
	if cmd.Flags().Changed("selector") {
		s.Options.ColSelector = f.selector
	}
	return s.Validate()
}

// simulateCommand creates the simulate command for playing a scene.
func (c *CLI) simulateCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		flags   sceneFlags
	)

	cmd := &cobra.Command{
		Use:   "simulate <scene.toml>",
		Short: "Play a scene and write its trace",
		Long: `Play a scene's scroll script and write the recorded trace as JSON.

The trace holds one frame per positioning pass with every column's mode,
offset and rectangle. Traces are cached by scene content, so playing an
unchanged scene again is instant.`,
		Example: `  # Play a scene, writing blog.trace.json
  stickycols simulate blog.toml

  # Try a different offset without editing the file
  stickycols simulate blog.toml --from-top 64 -o offset.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.loadScene(args[0])
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, s); err != nil {
				return err
			}
			if output == "" {
				output = tracePath(args[0])
			}

			t, cached, err := c.play(cmd.Context(), s, noCache, refresh)
			if err != nil {
				return err
			}
			if err := writeTrace(t, output); err != nil {
				return err
			}

			printSuccess("Simulated %s", StyleHighlight.Render(s.Name))
			printRunStats(len(t.Frames), len(t.Transitions()), cached)
			printNewline()
			fmt.Println(summaryTable(t))
			printFile(output)
			printNewline()
			printNextStep("Render the mode graph", fmt.Sprintf("%s graph %s", appName, output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <scene>.trace.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the trace cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached traces but store the new one")
	flags.register(cmd)

	return cmd
}

// play runs s through a runner while a spinner is shown.
func (c *CLI) play(ctx context.Context, s *scene.Scene, noCache, refresh bool) (*trace.Trace, bool, error) {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, false, err
	}
	defer runner.Cache.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Playing %s...", s.Name))
	spinner.Start()
	t, cached, err := runner.RunWithCacheInfo(ctx, s, refresh)
	spinner.Stop()
	if err != nil {
		return nil, false, err
	}
	prog.done(fmt.Sprintf("Played %d frames", len(t.Frames)))
	return t, cached, nil
}

func writeTrace(t *trace.Trace, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := t.WriteJSON(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// tracePath derives the default trace file for a scene file.
func tracePath(scenePath string) string {
	return strings.TrimSuffix(scenePath, filepath.Ext(scenePath)) + ".trace.json"
}

// summaryTable lists how many frames each column spent in each mode.
func summaryTable(t *trace.Trace) string {
	rows := make([][]string, 0, len(t.Columns))
	for _, s := range t.Summary() {
		rows = append(rows, []string{
			s.Name,
			fmt.Sprint(s.Static),
			fmt.Sprint(s.Absolute),
			fmt.Sprint(s.Fixed),
		})
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Column", "Static", "Absolute", "Fixed").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleValue
			}
			return StyleNumber
		}).
		Render()
}
