package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/seamcarve/seamcarve"
)

type menuAction int

const (
	actionCarve menuAction = iota
	actionInteractive
	actionExit
)

type menuItem struct {
	label    string
	hint     string
	action   menuAction
	strategy seamcarve.Strategy
}

var menuItems = []menuItem{
	{"Dynamic Programming", "optimal, recommended", actionCarve, seamcarve.DynamicProgramming},
	{"Greedy Algorithm", "fast, low quality", actionCarve, seamcarve.Greedy},
	{"Shortest Path", "optimal, graph search", actionCarve, seamcarve.ShortestPath},
	{"Minimum Cut", "slower than dynamic programming", actionCarve, seamcarve.MinCut},
	{"Interactive Resizing Tool", "dynamic programming", actionInteractive, seamcarve.DynamicProgramming},
	{"Exit", "", actionExit, ""},
}

var (
	menuSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	menuNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
)

// menuModel is the bubbletea model of the launcher menu.
type menuModel struct {
	cursor int
	chosen int // -1 until an item is picked
}

func newMenuModel() menuModel {
	return menuModel{chosen: -1}
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k := key.String(); k {
	case "q", "esc", "ctrl+c":
		m.chosen = len(menuItems) - 1
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(menuItems)-1 {
			m.cursor++
		}
	case "enter":
		m.chosen = m.cursor
		return m, tea.Quit
	default:
		if n, err := strconv.Atoi(k); err == nil && n >= 1 && n <= len(menuItems) {
			m.cursor, m.chosen = n-1, n-1
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m menuModel) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("SEAM CARVING TOOL"))
	b.WriteString("\n\n")
	for i, item := range menuItems {
		line := fmt.Sprintf("%d. %s", i+1, item.label)
		if i == m.cursor {
			b.WriteString(menuSelectedStyle.Render("› " + line))
		} else {
			b.WriteString(menuNormalStyle.Render("  " + line))
		}
		if item.hint != "" {
			b.WriteString(" " + styleDim.Render("("+item.hint+")"))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + styleDim.Render("↑/↓ select  enter run  q quit") + "\n")
	return b.String()
}

func (a *app) menuCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Launch the interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMenu(cmd.Context(), dir, newPrompter(os.Stdin, os.Stderr))
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "images", "folder holding the input and output images")

	return cmd
}

func (a *app) runMenu(ctx context.Context, dir string, p *prompter) error {
	for {
		res, err := tea.NewProgram(newMenuModel(), tea.WithContext(ctx), tea.WithOutput(os.Stderr)).Run()
		if err != nil {
			return err
		}
		chosen := res.(menuModel).chosen
		if chosen < 0 {
			chosen = len(menuItems) - 1
		}

		item := menuItems[chosen]
		switch item.action {
		case actionExit:
			printSuccess("Thank you for using the seam carving tool!")
			return nil
		case actionCarve:
			err = a.menuCarve(ctx, dir, item, p)
		case actionInteractive:
			err = a.menuInteractive(ctx, dir, p)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			printError("The program failed: %v", err)
			printInfo("This could be a bad input image, or an invalid number of seams.")
		}
		if _, err := p.ask("Press Enter to return to the menu.", "", nil); err != nil {
			return nil
		}
	}
}

func (a *app) menuCarve(ctx context.Context, dir string, item menuItem, p *prompter) error {
	printInfo("Selected: %s", styleHighlight.Render(item.label))
	if err := listImages(dir); err != nil {
		return err
	}

	input, err := p.ask("Enter input image name (e.g., photo or photo.jpg):", "", required)
	if err != nil {
		return err
	}
	output, err := p.ask("Enter output image name (e.g., result):", "", required)
	if err != nil {
		return err
	}
	if filepath.Ext(output) == "" {
		output += ".jpg"
		printInfo("No extension provided. Saving as %s", output)
	}
	seams, err := p.ask("Enter number of seams to remove (default 50):", "50", positiveInt)
	if err != nil {
		return err
	}
	direction, err := p.ask("Enter direction - (v)ertical or (h)orizontal (default v):", "v", validDirection)
	if err != nil {
		return err
	}
	viz, err := p.ask("Write a step-by-step visualization GIF? (y/n, default n):", "n", yesNo)
	if err != nil {
		return err
	}

	n, _ := strconv.Atoi(seams)
	o := carveOpts{
		seams:     n,
		direction: direction,
		strategy:  string(item.strategy),
		workers:   a.cfg.Carve.Workers,
		blur:      a.cfg.Carve.Blur,
		quality:   a.cfg.Output.Quality,
		every:     1,
		layout:    "vertical",
		compare:   filepath.Join(dir, "comparison.jpg"),
	}
	if viz == "y" {
		o.visualize = filepath.Join(dir, strings.TrimSuffix(output, filepath.Ext(output))+"_seams.gif")
	}

	src, err := resolveImage(dir, input)
	if err != nil {
		return err
	}
	dst := filepath.Join(dir, output)

	printInfo("Input: %s  Output: %s  Seams: %d  Direction: %s", src, dst, n, o.direction)
	stats, err := a.carveFile(ctx, src, dst, &o)
	if err != nil {
		return err
	}
	printSuccess("Output saved as %s", styleHighlight.Render(dst))
	printSuccess("Comparison saved as %s", styleHighlight.Render(o.compare))
	if o.visualize != "" {
		printSuccess("Visualization saved as %s", styleHighlight.Render(o.visualize))
	}
	printStats(stats)
	return nil
}

func (a *app) menuInteractive(ctx context.Context, dir string, p *prompter) error {
	if err := listImages(dir); err != nil {
		return err
	}
	input, err := p.ask("Enter input image name to open (e.g., photo):", "", required)
	if err != nil {
		return err
	}
	src, err := resolveImage(dir, input)
	if err != nil {
		return err
	}
	return a.runInteractive(ctx, src, string(seamcarve.DynamicProgramming), a.cfg.Interactive.Step,
		filepath.Join(dir, "interactive_result.jpg"))
}

// listImages prints the images found in dir, creating the folder when missing.
func listImages(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printWarning("Creating %q folder - please add your images there!", dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	printInfo("Available images in %q folder:", dir)
	found := 0
	for _, e := range entries {
		if !e.IsDir() && isValidExtension(filepath.Ext(e.Name()), validExtensions) {
			fmt.Fprintln(os.Stderr, "  "+styleValue.Render(e.Name()))
			found++
		}
	}
	if found == 0 {
		fmt.Fprintln(os.Stderr, "  "+styleDim.Render("(No images found)"))
	}
	return nil
}

// resolveImage finds name inside dir, trying the usual extensions when name has none.
func resolveImage(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if filepath.Ext(name) == "" {
		for _, ext := range validExtensions {
			if _, err := os.Stat(path + ext); err == nil {
				return path + ext, nil
			}
		}
	}
	return "", fmt.Errorf("image %q not found in %s", name, dir)
}

// prompter asks questions on a line based reader.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints the question and reads answers until validate accepts one.
// An empty answer selects def. validate may normalize the answer.
func (p *prompter) ask(question, def string, validate func(string) (string, error)) (string, error) {
	for {
		fmt.Fprint(p.out, question+" ")
		line, err := p.in.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		answer := strings.TrimSpace(line)
		if answer == "" {
			answer = def
		}
		if validate == nil {
			return answer, nil
		}
		v, verr := validate(answer)
		if verr == nil {
			return v, nil
		}
		fmt.Fprintln(p.out, styleIconError.Render("ERROR: ")+verr.Error())
		if err == io.EOF {
			return "", err
		}
	}
}

func required(s string) (string, error) {
	if s == "" {
		return "", errors.New("input cannot be empty")
	}
	return s, nil
}

func positiveInt(s string) (string, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return "", errors.New("input must be a positive number (e.g., 50)")
	}
	return s, nil
}

func validDirection(s string) (string, error) {
	axis, err := seamcarve.ParseAxis(s)
	if err != nil {
		return "", errors.New("invalid input, please enter 'v' or 'h'")
	}
	return string(axis), nil
}

func yesNo(s string) (string, error) {
	switch strings.ToLower(s) {
	case "y", "yes":
		return "y", nil
	case "n", "no":
		return "n", nil
	}
	return "", errors.New("please answer y or n")
}
