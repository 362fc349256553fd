package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stickycols/pkg/render"
	"github.com/matzehuels/stickycols/pkg/trace"
)

// graphCommand creates the graph command for rendering mode transitions.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format  string
		output  string
		noCache bool
		flags   sceneFlags
	)

	cmd := &cobra.Command{
		Use:   "graph <scene.toml|trace.json>",
		Short: "Render a trace's mode transitions",
		Long: `Render how each column moved between static, absolute and fixed as a graph.

The input is either a trace written by simulate or a scene, which is played
first. DOT output needs no Graphviz installation; svg and png are rendered
with the embedded Graphviz library.`,
		Example: `  stickycols graph blog.trace.json
  stickycols graph blog.toml -f png -o modes.png
  stickycols graph blog.trace.json -f dot -o - | dot -Tpdf > modes.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			format = strings.ToLower(format)

			var t *trace.Trace
			if strings.EqualFold(filepath.Ext(args[0]), ".json") {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open trace: %w", err)
				}
				t, err = trace.ReadJSON(f)
				f.Close()
				if err != nil {
					return err
				}
			} else {
				s, err := c.loadScene(args[0])
				if err != nil {
					return err
				}
				if err := flags.apply(cmd, s); err != nil {
					return err
				}
				if t, _, err = c.play(ctx, s, noCache, false); err != nil {
					return err
				}
			}

			prog := newProgress(loggerFromContext(ctx))
			data, err := render.Graph(ctx, t, format)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Rendered %s graph", format))

			if output == "-" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if output == "" {
				output = graphPath(args[0], format)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Rendered %d transitions", len(t.Transitions()))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: dot, svg, png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>.modes.<format>)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the trace cache when playing a scene")
	flags.register(cmd)

	return cmd
}

// graphPath derives the default graph file for an input file.
func graphPath(input, format string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	base = strings.TrimSuffix(base, ".trace")
	return base + ".modes." + format
}
