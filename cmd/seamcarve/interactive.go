package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/seamcarve/seamcarve"
	"github.com/seamcarve/seamcarve/utils"
)

// Size of the image preview, in terminal cells.
const (
	previewWidth = 64
	previewLines = 24
)

func (a *app) interactiveCmd() *cobra.Command {
	var save, strategy string
	var step int

	cmd := &cobra.Command{
		Use:   "interactive <input>",
		Short: "Resize an image interactively in the terminal",
		Long: `Resize an image interactively in the terminal.

Use the arrow keys to change the target width and height. Every change starts
a new resize from the original image, cancelling the one in progress.
Press s to save the current result and q or esc to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("step") {
				step = a.cfg.Interactive.Step
			}
			if !cmd.Flags().Changed("strategy") {
				strategy = a.cfg.Carve.Strategy
			}
			return a.runInteractive(cmd.Context(), args[0], strategy, step, save)
		},
	}

	cmd.Flags().StringVar(&save, "save", "interactive_result.jpg", "file written when s is pressed")
	cmd.Flags().IntVar(&step, "step", 10, "pixels added or removed per key press")
	cmd.Flags().StringVar(&strategy, "strategy", "dp", "seam finder")

	return cmd
}

func (a *app) runInteractive(ctx context.Context, path, strategy string, step int, save string) error {
	s, err := seamcarve.ParseStrategy(strategy)
	if err != nil {
		return err
	}

	original, err := seamcarve.Open(path)
	if err != nil {
		return fmt.Errorf("unable to read image from %s: %w", path, err)
	}
	sess, err := seamcarve.NewSession(original, seamcarve.Options{
		Strategy:  s,
		Workers:   a.cfg.Carve.Workers,
		BlurSigma: a.cfg.Carve.Blur,
	}, time.Duration(a.cfg.Interactive.DebounceMS)*time.Millisecond)
	if err != nil {
		return err
	}
	defer sess.Close()

	m := newInteractiveModel(sess, step, save)
	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(os.Stderr)).Run()
	return err
}

// resultMsg carries a settled session result into the bubbletea loop.
type resultMsg seamcarve.Result

// interactiveModel is the bubbletea model of the interactive resize tool.
type interactiveModel struct {
	sess     *seamcarve.Session
	step     int
	savePath string

	original  seamcarve.Target
	requested seamcarve.Target
	current   seamcarve.Target
	preview   string
	status    string
	err       error
	pending   bool
}

func newInteractiveModel(sess *seamcarve.Session, step int, savePath string) interactiveModel {
	orig := sess.Original()
	size := seamcarve.Target{Width: orig.Width, Height: orig.Height}
	return interactiveModel{
		sess:      sess,
		step:      max(step, 1),
		savePath:  savePath,
		original:  size,
		requested: size,
		current:   size,
		preview:   renderPreview(orig, previewWidth),
	}
}

// waitForResult blocks on the session updates channel.
func waitForResult(updates <-chan seamcarve.Result) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-updates
		if !ok {
			return nil
		}
		return resultMsg(res)
	}
}

func (m interactiveModel) Init() tea.Cmd {
	return waitForResult(m.sess.Updates())
}

func (m interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "left", "h":
			m.resize(-m.step, 0)
		case "right", "l":
			m.resize(m.step, 0)
		case "down", "j":
			m.resize(0, -m.step)
		case "up", "k":
			m.resize(0, m.step)
		case "r":
			m.resize(m.original.Width-m.requested.Width, m.original.Height-m.requested.Height)
		case "s":
			m.status, m.err = m.save()
		}
	case resultMsg:
		m.pending = m.sess.Pending()
		if msg.Err != nil {
			m.err = msg.Err
		} else {
			m.err = nil
			m.current = msg.Target
			m.preview = renderPreview(msg.Raster, previewWidth)
		}
		return m, waitForResult(m.sess.Updates())
	}
	return m, nil
}

// resize moves the requested size by (dw, dh), keeping it within 1..original.
func (m *interactiveModel) resize(dw, dh int) {
	t := seamcarve.Target{
		Width:  utils.Clamp(m.requested.Width+dw, 1, m.original.Width),
		Height: utils.Clamp(m.requested.Height+dh, 1, m.original.Height),
	}
	if t == m.requested {
		return
	}
	m.requested = t
	m.pending = true
	m.status = ""
	m.sess.Request(t.Width, t.Height)
}

func (m interactiveModel) save() (string, error) {
	format, err := seamcarve.FormatFromPath(m.savePath)
	if err != nil {
		return "", err
	}
	f, err := os.Create(m.savePath)
	if err != nil {
		return "", err
	}
	if err := m.sess.Save(f, format); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("saved %s as %s", m.current, m.savePath), nil
}

func (m interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Interactive Seam Carving"))
	b.WriteString("\n\n")
	b.WriteString(m.preview)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %s   %s %s   %s %s",
		styleDim.Render("original"), styleValue.Render(m.original.String()),
		styleDim.Render("target"), styleHighlight.Render(m.requested.String()),
		styleDim.Render("shown"), styleValue.Render(m.current.String()))
	if m.pending {
		b.WriteString("  " + styleWarning.Render("carving..."))
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error() + "\n")
	case m.status != "":
		b.WriteString(styleIconSuccess.Render(iconSuccess) + " " + m.status + "\n")
	}

	b.WriteString(styleDim.Render("←/→ width  ↑/↓ height  r reset  s save  q quit"))
	b.WriteString("\n")
	return b.String()
}

// renderPreview draws the raster with half block characters, two image rows per terminal line.
func renderPreview(r *seamcarve.Raster, width int) string {
	img := imaging.Fit(r.ToNRGBA(), width, 2*previewLines, imaging.Box)
	// Terminal cells are about twice as tall as wide; keep an even row count.
	bounds := img.Bounds()
	h := bounds.Dy()
	if h > 1 && h%2 == 1 {
		h--
	}

	var b strings.Builder
	for y := 0; y < h; y += 2 {
		for x := 0; x < bounds.Dx(); x++ {
			top := img.NRGBAAt(x, y)
			style := lipgloss.NewStyle().Foreground(hexColor(top.R, top.G, top.B))
			if y+1 < h {
				bottom := img.NRGBAAt(x, y+1)
				style = style.Background(hexColor(bottom.R, bottom.G, bottom.B))
			}
			b.WriteString(style.Render("▀"))
		}
		if y+2 < h {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func hexColor(r, g, b uint8) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
}
