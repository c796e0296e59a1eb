package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/caio-sobreiro/dicomko/interfaces"
	"github.com/caio-sobreiro/dicomko/prompt"
	"github.com/caio-sobreiro/dicomko/selection"
	"github.com/caio-sobreiro/dicomko/series"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

// consolePresenter prints presentation effects instead of drawing them
type consolePresenter struct {
	out     io.Writer
	focused bool
}

func (p *consolePresenter) IsFocused() bool { return p.focused }

func (p *consolePresenter) SetScrollBounds(min, max, value int) {
	fmt.Fprintf(p.out, "%s %d of %d (from %d)\n", dimStyle.Render("scroll"), value, max, min)
}

func (p *consolePresenter) ShowImage(img *series.Image) {
	if img == nil {
		fmt.Fprintln(p.out, dimStyle.Render("showing nothing"))
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", dimStyle.Render("showing"), img)
}

func (p *consolePresenter) RefreshFilterIndicator(enabled bool) {
	if enabled {
		fmt.Fprintln(p.out, warnStyle.Render("filter on"))
		return
	}
	fmt.Fprintln(p.out, dimStyle.Render("filter off"))
}

// viewFlags select the series and image a command works on
type viewFlags struct {
	seriesUID string
	image     string
	focused   bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.seriesUID, "series", "", "Series Instance UID (optional when the directory holds one series)")
	flags.StringVar(&f.image, "image", "", "SOP Instance UID or index of the current image")
	flags.BoolVar(&f.focused, "focused", false, "Treat the view as focused: only report scroll bounds")
}

func (g *globals) openView(ctx context.Context, dir string, f viewFlags, out io.Writer) (*selection.View, error) {
	all, err := series.LoadDir(ctx, dir)
	if err != nil {
		return nil, err
	}
	s, err := pickSeries(all, f.seriesUID)
	if err != nil {
		return nil, err
	}
	order, err := series.ParseOrder(g.cfg.View.Order)
	if err != nil {
		return nil, err
	}

	v := selection.NewView(s, &consolePresenter{out: out, focused: f.focused},
		selection.WithOrder(order),
		selection.WithStackOffset(g.cfg.View.StackOffset),
		selection.WithTileOffset(g.cfg.View.TileOffset),
	)
	if f.image == "" {
		return v, nil
	}

	index, err := strconv.Atoi(f.image)
	if err != nil {
		img, ok := s.Lookup(f.image)
		if !ok {
			return nil, fmt.Errorf("image %s not found in series %s", f.image, s.UID)
		}
		index = s.IndexOf(img, nil, order)
	}
	if !v.Navigate(index) {
		return nil, fmt.Errorf("image index %d out of range (series has %d images)", index, s.Size(nil))
	}
	return v, nil
}

func pickSeries(all []*series.Series, uid string) (*series.Series, error) {
	if uid == "" {
		switch len(all) {
		case 0:
			return nil, fmt.Errorf("no image series found")
		case 1:
			return all[0], nil
		default:
			return nil, fmt.Errorf("%d series found, choose one with --series", len(all))
		}
	}
	for _, s := range all {
		if s.UID == uid {
			return s, nil
		}
	}
	return nil, fmt.Errorf("series %s not found", uid)
}

// promptFlags answer decision dialogs
type promptFlags struct {
	interactive  bool
	choices      []int
	descriptions []string
}

func (g *globals) prompter(f promptFlags) interfaces.Prompter {
	if f.interactive {
		return prompt.NewTerminal(prompt.WithOutput(os.Stderr), prompt.WithLogger(g.logger))
	}
	p := prompt.NewScripted(f.choices, f.descriptions)
	p.AcceptDefaults = true
	p.Logger = g.logger
	return p
}

func printVisible(out io.Writer, v *selection.View) {
	st := v.State()
	for i, img := range v.Visible() {
		line := fmt.Sprintf("%4d  %s", i, img)
		if i == st.Index {
			fmt.Fprintln(out, activeStyle.Render(line+"  <"))
			continue
		}
		fmt.Fprintln(out, line)
	}
}
