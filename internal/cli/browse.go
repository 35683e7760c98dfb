package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rigwall/pkg/catalog"
	"github.com/matzehuels/rigwall/pkg/filter"
	"github.com/matzehuels/rigwall/pkg/gallery"
	"github.com/matzehuels/rigwall/pkg/masonry"
	"github.com/matzehuels/rigwall/pkg/render"
)

// pxPerCell converts terminal columns to layout pixels so the gallery picks
// a breakpoint that matches the terminal width.
const pxPerCell = 8

// pxPerLine converts image heights to terminal rows.
const pxPerLine = 40

// Browse styles
var (
	cardStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	cardSelectedStyle = cardStyle.BorderForeground(colorCyan)
	imageStyle        = lipgloss.NewStyle().Foreground(colorDim)
	modalStyle        = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(colorCyan).Padding(1, 2)
	thumbStyle        = lipgloss.NewStyle().Foreground(colorDim)
	thumbActiveStyle  = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
)

// browseCommand creates the interactive terminal gallery.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		seed  uint64
		input string
	)
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the gallery in the terminal",
		Long: `Browse the gallery in the terminal.

The terminal width picks the breakpoint and column count; resizing the
window re-lays the cards once it settles.

Keys:
  ←/→/↑/↓ h/j/k/l  move between cards     enter   open lightbox
  c  next category                        s       next sort order
  y  draft year   o  draft location       p       draft sales rep
  a  apply draft filters                  r       clear filters
  f  filter by the card's company         x       clear company filter
  space  load more                        q       quit

In the lightbox: ←/→ switch photos, 1-9 pick a thumbnail, esc closes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vs, err := loadCatalog(input)
			if err != nil {
				return err
			}
			g := c.Config.Gallery
			app := gallery.New(gallery.Options{
				Catalog:        vs,
				Roster:         c.Config.Roster,
				Seed:           flagOr(cmd, "seed", seed, c.Config.Seed),
				PageSize:       g.PageSize,
				Gaps:           g.Gaps(),
				CaptionHeight:  g.CaptionHeight,
				MeasureTimeout: g.MeasureTimeout,
				Logger:         c.Logger,
			})
			return runBrowse(cmd.Context(), app)
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (default: config seed, 0 = random)")
	cmd.Flags().StringVar(&input, "catalog", "", "browse this catalog instead of generating one")
	return cmd
}

func runBrowse(ctx context.Context, app *gallery.App) error {
	m := newBrowseModel(ctx, app)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.resize = masonry.NewDebouncer(masonry.DefaultDebounce, func() { p.Send(resizeMsg{}) })
	defer m.resize.Stop()

	final, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	if bm, ok := final.(*browseModel); ok && bm.err != nil {
		return bm.err
	}
	return nil
}

// =============================================================================
// browseModel - Interactive masonry gallery
// =============================================================================

// resizeMsg fires once the window size has stopped changing.
type resizeMsg struct{}

type browseModel struct {
	ctx    context.Context
	app    *gallery.App
	view   gallery.View
	resize *masonry.Debouncer

	width, height int
	ready         bool
	cursor        int
	offset        int
	status        string
	err           error
}

func newBrowseModel(ctx context.Context, app *gallery.App) *browseModel {
	return &browseModel{ctx: ctx, app: app}
}

func (m *browseModel) Init() tea.Cmd { return nil }

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if !m.ready {
			w := m.viewportPx()
			if err := m.app.Init(m.ctx, w, w, nil); err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.ready = true
			m.sync()
		} else if m.resize != nil {
			m.resize.Trigger()
		}
	case resizeMsg:
		w := m.viewportPx()
		m.do(m.app.Resize(m.ctx, w, w))
	case tea.KeyMsg:
		if !m.ready {
			if msg.String() == "ctrl+c" || msg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		}
		return m, m.handleKey(msg.String())
	}
	return m, nil
}

func (m *browseModel) handleKey(key string) tea.Cmd {
	if m.view.Lightbox != nil {
		switch key {
		case "ctrl+c":
			return tea.Quit
		case "q":
			m.app.Close()
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			m.app.SelectImage(int(key[0] - '1'))
		default:
			m.app.HandleKey(key)
		}
		m.sync()
		return nil
	}

	m.status = ""
	switch key {
	case "q", "ctrl+c":
		return tea.Quit
	case "right", "l", "tab":
		m.move(1)
	case "left", "h", "shift+tab":
		m.move(-1)
	case "down", "j":
		m.move(max(1, m.view.Columns))
	case "up", "k":
		m.move(-max(1, m.view.Columns))
	case "enter":
		if it, ok := m.current(); ok {
			m.do(m.app.OpenID(it.ID))
		}
	case "c":
		m.do(m.app.SetCategory(m.ctx, nextCategory(m.view.Filters.CategoryOrAll())))
	case "s":
		m.do(m.app.SetSort(m.ctx, nextSort(m.view.Sort)))
	case "y":
		m.app.SetDraftYear(nextInt(m.view.Choices.Years, m.view.Draft.Year))
		m.sync()
	case "o":
		m.app.SetDraftLocation(nextString(m.view.Choices.Locations, m.view.Draft.Location))
		m.sync()
	case "p":
		m.app.SetDraftSalesRep(nextString(m.view.Choices.SalesReps, m.view.Draft.SalesRep))
		m.sync()
	case "a":
		m.do(m.app.ApplyFilters(m.ctx))
	case "r":
		m.do(m.app.ClearFilters(m.ctx))
	case "f":
		if it, ok := m.current(); ok {
			m.do(m.app.FilterByCompany(m.ctx, it.Company))
		}
	case "x":
		m.do(m.app.ClearCompany(m.ctx))
	case " ", "space", "m":
		if !m.view.LoadMore.Visible {
			m.status = "All vehicles shown"
			break
		}
		m.do(m.app.LoadMore(m.ctx))
	}
	return nil
}

// do records err as status text and refreshes the view. Errors never end
// the session.
func (m *browseModel) do(err error) {
	if err != nil {
		m.status = err.Error()
	}
	m.sync()
}

func (m *browseModel) sync() {
	m.view = m.app.View()
	if m.cursor >= len(m.view.Items) {
		m.cursor = max(0, len(m.view.Items)-1)
	}
}

func (m *browseModel) move(delta int) {
	if len(m.view.Items) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.view.Items)-1)
}

func (m *browseModel) current() (gallery.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.Items) {
		return gallery.Item{}, false
	}
	return m.view.Items[m.cursor], true
}

func (m *browseModel) viewportPx() float64 {
	return float64(max(m.width, 1) * pxPerCell)
}

// =============================================================================
// Rendering
// =============================================================================

func (m *browseModel) View() string {
	if !m.ready {
		return StyleDim.Render("Loading gallery...")
	}
	if m.view.Lightbox != nil {
		return m.renderLightbox(*m.view.Lightbox)
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	body, cursorTop, cursorBottom := m.renderColumns()
	lines := strings.Split(body, "\n")
	m.scrollTo(cursorTop, cursorBottom, bodyHeight)
	end := min(m.offset+bodyHeight, len(lines))
	visible := lines[min(m.offset, end):end]

	return lipgloss.JoinVertical(lipgloss.Left, header, strings.Join(visible, "\n"), footer)
}

func (m *browseModel) scrollTo(top, bottom, height int) {
	if top < m.offset {
		m.offset = top
	}
	if bottom > m.offset+height {
		m.offset = bottom - height
	}
	m.offset = max(m.offset, 0)
}

func (m *browseModel) renderHeader() string {
	v := m.view
	parts := []string{
		StyleTitle.Render(render.DefaultTitle),
		StyleDim.Render(fmt.Sprintf("%s · %d cols", v.Breakpoint, v.Columns)),
		"category " + StyleHighlight.Render(v.Filters.CategoryOrAll()),
		"sort " + StyleHighlight.Render(v.SortLabel),
	}
	if v.Company.Active {
		parts = append(parts, StyleLink.Render(v.Company.Label))
	}
	line := strings.Join(parts, "  ")

	draft := fmt.Sprintf("draft: year %s · location %s · rep %s",
		orAny(v.Draft.Year), orAnyString(v.Draft.Location), orAnyString(v.Draft.SalesRep))
	return line + "\n" + StyleDim.Render(draft) + "\n"
}

func (m *browseModel) renderFooter() string {
	v := m.view
	count := fmt.Sprintf("%d of %d", v.Displayed, v.Total)
	if v.LoadMore.Visible {
		count += "  " + stylePill.Render("[space] "+v.LoadMore.Label)
	}
	line := StyleDim.Render(count)
	if m.status != "" {
		line += "  " + StyleWarning.Render(m.status)
	}
	return "\n" + line
}

// renderColumns draws each masonry column top to bottom and joins them. It
// also returns the row span of the card under the cursor.
func (m *browseModel) renderColumns() (string, int, int) {
	v := m.view
	if len(v.Items) == 0 {
		return StyleDim.Render("No vehicles match these filters."), 0, 0
	}
	cols := max(v.Columns, 1)
	colWidth := max(m.width/cols-1, 12)

	byColumn := make([][]int, cols)
	for i, it := range v.Items {
		c := min(max(it.Placement.Column, 0), cols-1)
		byColumn[c] = append(byColumn[c], i)
	}

	rendered := make([]string, cols)
	cursorTop, cursorBottom := 0, 0
	for c, idxs := range byColumn {
		slices.SortStableFunc(idxs, func(a, b int) int {
			switch {
			case v.Items[a].Placement.Y < v.Items[b].Placement.Y:
				return -1
			case v.Items[a].Placement.Y > v.Items[b].Placement.Y:
				return 1
			}
			return 0
		})
		cards := make([]string, 0, len(idxs))
		row := 0
		for _, i := range idxs {
			card := renderCard(v.Items[i], colWidth, i == m.cursor)
			h := lipgloss.Height(card)
			if i == m.cursor {
				cursorTop, cursorBottom = row, row+h
			}
			row += h
			cards = append(cards, card)
		}
		rendered[c] = lipgloss.NewStyle().Width(colWidth + 1).Render(lipgloss.JoinVertical(lipgloss.Left, cards...))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...), cursorTop, cursorBottom
}

func renderCard(it gallery.Item, width int, selected bool) string {
	inner := max(width-2, 8)
	rows := max(it.ImageHeight/pxPerLine, 2)
	fill := "░"
	if it.Hidden {
		fill = " "
	}
	img := make([]string, rows)
	for i := range img {
		img[i] = strings.Repeat(fill, inner)
	}

	lines := []string{
		imageStyle.Render(strings.Join(img, "\n")),
		stylePill.Render(truncate(it.YearPill+" · "+it.CategoryPill, inner)),
		StyleLink.Render(truncate(it.Company, inner)),
		StyleValue.Render(truncate(it.Title, inner)),
	}
	style := cardStyle
	if selected {
		style = cardSelectedStyle
	}
	return style.Width(inner).Render(strings.Join(lines, "\n"))
}

func (m *browseModel) renderLightbox(lb gallery.Modal) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(lb.Owner))
	b.WriteString("\n")
	b.WriteString(StyleValue.Render(lb.Description))
	b.WriteString("\n\n")
	printRow := func(k, v string) {
		b.WriteString(StyleDim.Render(fmt.Sprintf("%-10s", k)) + " " + StyleValue.Render(v) + "\n")
	}
	printRow("Sold", lb.Sold)
	printRow("Sales Rep", lb.SalesRep)
	printRow("Photo", fmt.Sprintf("%d / %d  %s", lb.Index+1, lb.Count, lb.Image))
	b.WriteString("\n")

	thumbs := make([]string, len(lb.Thumbnails))
	for i, t := range lb.Thumbnails {
		label := fmt.Sprintf("[%d]", i+1)
		if t.Active {
			thumbs[i] = thumbActiveStyle.Render(label)
		} else {
			thumbs[i] = thumbStyle.Render(label)
		}
	}
	b.WriteString(strings.Join(thumbs, " "))
	b.WriteString("\n\n")

	nav := []string{}
	if lb.HasPrev {
		nav = append(nav, "← prev")
	}
	if lb.HasNext {
		nav = append(nav, "→ next")
	}
	nav = append(nav, "esc close")
	b.WriteString(StyleDim.Render(strings.Join(nav, "  ")))

	box := modalStyle.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// Cycling helpers
// =============================================================================

// nextCategory steps through "all" and the categories, wrapping around.
// An empty category counts as "all".
func nextCategory(current string) string {
	all := []string{filter.CategoryAll}
	for _, c := range catalog.Categories {
		all = append(all, string(c))
	}
	if current == "" {
		current = filter.CategoryAll
	}
	i := slices.Index(all, current)
	return all[(i+1)%len(all)]
}

func nextSort(current filter.SortMode) filter.SortMode {
	i := slices.Index(filter.SortModes, current)
	return filter.SortModes[(i+1)%len(filter.SortModes)]
}

// nextString steps through "" followed by options, wrapping around.
func nextString(options []string, current string) string {
	if current == "" {
		if len(options) == 0 {
			return ""
		}
		return options[0]
	}
	i := slices.Index(options, current)
	if i < 0 || i == len(options)-1 {
		return ""
	}
	return options[i+1]
}

func nextInt(options []int, current int) int {
	if current == 0 {
		if len(options) == 0 {
			return 0
		}
		return options[0]
	}
	i := slices.Index(options, current)
	if i < 0 || i == len(options)-1 {
		return 0
	}
	return options[i+1]
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

func orAny(n int) string {
	if n == 0 {
		return "any"
	}
	return fmt.Sprint(n)
}

func orAnyString(s string) string {
	if s == "" {
		return "any"
	}
	return s
}
