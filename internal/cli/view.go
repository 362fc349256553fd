package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stickycols/pkg/page"
	"github.com/matzehuels/stickycols/pkg/render"
	"github.com/matzehuels/stickycols/pkg/scene"
	"github.com/matzehuels/stickycols/pkg/scols"
	"github.com/matzehuels/stickycols/pkg/trace"
)

// frameInterval is how often the view flushes the page's rendering frames.
const frameInterval = time.Second / 30

// viewCommand creates the view command for scrolling a scene interactively.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		step  float64
		play  bool
		flags sceneFlags
	)

	cmd := &cobra.Command{
		Use:   "view <scene.toml>",
		Short: "Scroll a scene interactively",
		Long: `Open a scene in the terminal and scroll it by hand or play its script.

Keys:
  j/k, down/up    scroll by one step
  f/b, pgdn/pgup  scroll by one viewport
  g/G, home/end   jump to the top or bottom
  p               play or pause the script
  d               detach or reattach the columns
  r               refresh the layout
  q               quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.loadScene(args[0])
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, s); err != nil {
				return err
			}
			m := newViewModel(s, step)
			m.playing = play && len(s.Script) > 0
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().Float64Var(&step, "step", 40, "pixels per scroll key press")
	cmd.Flags().BoolVar(&play, "play", false, "start playing the script immediately")
	flags.register(cmd)

	return cmd
}

// =============================================================================
// Live scene
// =============================================================================

// liveScene is a page with sticky columns that the view scrolls in place.
type liveScene struct {
	scene  *scene.Scene
	page   *page.Page
	sticky *scols.Sticky
	cols   []*page.Element
	frame  trace.Frame
	passes int

	// Script position: the current step and how many of its repeats ran.
	pc, rep int
}

func newLiveScene(s *scene.Scene) *liveScene {
	p := s.Build()
	opts := s.StickyOptions()
	ls := &liveScene{
		scene:  s,
		page:   p,
		sticky: scols.New(p, p.Container(), opts),
		cols:   p.Container().Select(opts.ColSelector),
	}
	ls.sticky.On(scols.EventPosition, func() { ls.passes++ })
	ls.sticky.Refresh()
	ls.snapshot()
	return ls
}

func (ls *liveScene) snapshot() {
	ls.frame = trace.Snapshot(ls.page, ls.sticky, ls.cols, ls.pc)
}

// advance runs one scroll, or one non-scroll step, of the script. It reports
// false once the script is done.
func (ls *liveScene) advance() bool {
	if ls.pc >= len(ls.scene.Script) {
		return false
	}
	st := ls.scene.Script[ls.pc]
	switch st.Action {
	case scene.ActionScroll:
		if st.To != nil {
			ls.page.ScrollTo(*st.To)
		} else {
			ls.page.ScrollBy(st.By)
		}
		ls.rep++
		if ls.rep < st.Times() {
			return true
		}
	case scene.ActionAttach:
		ls.sticky.Attach()
	case scene.ActionDetach:
		ls.sticky.Detach()
	case scene.ActionRefresh:
		ls.sticky.Refresh()
	}
	ls.pc++
	ls.rep = 0
	return true
}

func (ls *liveScene) toggleAttach() {
	if ls.sticky.Attached() {
		ls.sticky.Detach()
		return
	}
	ls.sticky.Attach()
}

// =============================================================================
// viewModel
// =============================================================================

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// viewModel is the bubbletea model for the view command.
type viewModel struct {
	live    *liveScene
	step    float64
	playing bool
	width   int
	height  int

	// renderer is nil in the terminal, where lipgloss detects colors.
	renderer *lipgloss.Renderer
}

func newViewModel(s *scene.Scene, step float64) viewModel {
	if step <= 0 {
		step = 40
	}
	return viewModel{
		live:   newLiveScene(s),
		step:   step,
		width:  render.DefaultFrameWidth,
		height: render.DefaultFrameHeight + 4,
	}
}

func (m viewModel) Init() tea.Cmd {
	return tick()
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	p := m.live.page
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "down", "j":
			p.ScrollBy(m.step)
		case "up", "k":
			p.ScrollBy(-m.step)
		case "pgdown", "f":
			p.ScrollBy(p.Viewport().Height)
		case "pgup", "b":
			p.ScrollBy(-p.Viewport().Height)
		case "home", "g":
			p.ScrollTo(0)
		case "end", "G":
			p.ScrollTo(p.MaxScroll())
		case "p":
			m.playing = !m.playing && m.live.pc < len(m.live.scene.Script)
		case "d":
			m.live.toggleAttach()
		case "r":
			m.live.sticky.Refresh()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		if m.playing && !m.live.advance() {
			m.playing = false
		}
		p.Flush()
		m.live.snapshot()
		return m, tick()
	}

	return m, nil
}

func (m viewModel) View() string {
	var b strings.Builder

	ls := m.live
	state := "attached"
	if !ls.sticky.Attached() {
		state = "detached"
	}
	if m.playing {
		state += fmt.Sprintf(" · playing step %d/%d", ls.pc+1, len(ls.scene.Script))
	}
	b.WriteString(StyleTitle.Render(ls.scene.Name))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s · %d passes", state, ls.passes)))
	b.WriteString("\n")

	b.WriteString(render.Frame(ls.frame, ls.scene.Viewport, render.FrameOptions{
		Width:    max(m.width, 10),
		Height:   max(m.height-4, 4),
		Renderer: m.renderer,
	}))
	b.WriteString("\n")
	b.WriteString(render.Legend(m.renderer))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("j/k scroll · p play · d detach · r refresh · q quit"))

	return b.String()
}
