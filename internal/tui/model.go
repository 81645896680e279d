package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"price-compare-storefront/internal/catalog"
	"price-compare-storefront/internal/domain"
)

// FetchFunc performs the single startup fetch.
type FetchFunc func() catalog.Snapshot

type catalogLoadedMsg struct {
	snap catalog.Snapshot
}

type inputMode int

const (
	modeBrowse inputMode = iota
	modeSearch
	modePrice
)

var errPriceRange = errors.New("price range must look like 10-250")

// Model is the interactive storefront.
type Model struct {
	ctrl   *catalog.Controller
	fetch  FetchFunc
	styles Styles

	grid    table.Model
	search  textinput.Model
	price   textinput.Model
	spinner spinner.Model

	mode   inputMode
	notice string
	width  int
	height int
}

// New builds a model in the loading state. Init runs fetch once.
func New(fetch FetchFunc, styles Styles) Model {
	grid := table.New(
		table.WithColumns(gridColumns(100)),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	search := textinput.New()
	search.Placeholder = "Search products..."
	search.CharLimit = 200
	search.Width = 40

	price := textinput.New()
	price.Placeholder = fmt.Sprintf("%d-%d", domain.DefaultMinPrice, domain.DefaultMaxPrice)
	price.CharLimit = 24
	price.Width = 20

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Title

	return Model{
		ctrl:    catalog.NewController(),
		fetch:   fetch,
		styles:  styles,
		grid:    grid,
		search:  search,
		price:   price,
		spinner: sp,
	}
}

// Controller exposes the underlying controller, mainly for tests.
func (m Model) Controller() *catalog.Controller {
	return m.ctrl
}

func (m Model) Init() tea.Cmd {
	fetch := m.fetch
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return catalogLoadedMsg{snap: fetch()}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case catalogLoadedMsg:
		m.ctrl.Attach(msg.snap)
		m.syncRows()
		return m, nil

	case spinner.TickMsg:
		if m.ctrl.Status() != catalog.StatusLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.grid.SetColumns(gridColumns(msg.Width))
		m.grid.SetWidth(msg.Width)
		m.grid.SetHeight(max(msg.Height-10, 5))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modePrice:
			return m.updatePrice(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.mode = modeBrowse
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.ctrl.SetSearch(m.search.Value())
	m.syncRows()
	return m, cmd
}

func (m Model) updatePrice(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.price.Blur()
		return m, nil
	case tea.KeyEnter:
		m.mode = modeBrowse
		m.price.Blur()
		minPrice, maxPrice, err := ParsePriceRange(m.price.Value())
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.ctrl.SetPriceRange(minPrice, maxPrice)
		f := m.ctrl.State().Filters
		m.price.SetValue(fmt.Sprintf("%g-%g", f.MinPrice, f.MaxPrice))
		m.syncRows()
		return m, nil
	}
	var cmd tea.Cmd
	m.price, cmd = m.price.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.mode = modeSearch
		cmd := m.search.Focus()
		return m, cmd
	case "p":
		m.mode = modePrice
		cmd := m.price.Focus()
		return m, cmd
	case "s":
		m.ctrl.SetSort(nextSortKey(m.ctrl.State().Sort))
	case "c":
		f := m.ctrl.State().Filters
		f.Category = nextOption(f.Category, m.ctrl.Categories())
		m.ctrl.SetFilters(f)
	case "t":
		f := m.ctrl.State().Filters
		f.Store = nextOption(f.Store, m.ctrl.Stores())
		m.ctrl.SetFilters(f)
	case "r":
		f := m.ctrl.State().Filters
		f.MinRating = nextRating(f.MinRating)
		m.ctrl.SetFilters(f)
	case " ":
		m.toggleSelected()
	case "v":
		m.ctrl.ToggleComparisonView()
	case "x":
		m.ctrl.ClearComparison()
	case "R":
		m.ctrl.ResetFilters()
		m.search.SetValue("")
		m.price.SetValue("")
	default:
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		return m, cmd
	}
	m.syncRows()
	return m, nil
}

func (m *Model) toggleSelected() {
	visible := m.ctrl.Visible()
	i := m.grid.Cursor()
	if i < 0 || i >= len(visible) {
		return
	}
	if err := m.ctrl.ToggleComparison(visible[i].ID); errors.Is(err, domain.ErrCapacityExceeded) {
		m.notice = domain.CapacityMessage
	}
}

func (m *Model) syncRows() {
	visible := m.ctrl.Visible()
	compared := m.ctrl.State().Comparison
	rows := make([]table.Row, len(visible))
	for i, p := range visible {
		rows[i] = table.Row(gridRow(p, compared))
	}
	m.grid.SetRows(rows)
	if c := m.grid.Cursor(); c >= len(rows) {
		m.grid.SetCursor(max(len(rows)-1, 0))
	}
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Price Compare"))
	sb.WriteString("\n\n")

	switch m.ctrl.Status() {
	case catalog.StatusLoading:
		sb.WriteString(m.spinner.View() + " Loading products...\n")
		return sb.String()
	case catalog.StatusFailed:
		sb.WriteString(m.styles.Banner.Render(m.ctrl.Snapshot().Banner()))
		sb.WriteString("\n\n")
	}

	sb.WriteString(m.renderInputs())
	sb.WriteString("\n")
	s := m.ctrl.State()
	sb.WriteString(RenderFilterBar(s, m.styles))
	sb.WriteString("\n\n")

	switch {
	case s.ComparisonVisible():
		sb.WriteString(RenderComparison(s.Comparison.Products(), m.styles))
	case len(m.ctrl.Visible()) == 0:
		sb.WriteString(m.styles.Muted.Render(domain.EmptyResultsMessage))
	default:
		sb.WriteString(m.styles.Title.Render(fmt.Sprintf("Products (%d)", len(m.ctrl.Visible()))))
		sb.WriteString("\n")
		sb.WriteString(m.grid.View())
	}
	sb.WriteString("\n")

	if bar := RenderComparisonBar(s.Comparison, m.styles); bar != "" {
		sb.WriteString(bar + "\n")
	}
	if m.notice != "" {
		sb.WriteString(m.styles.Notice.Render(m.notice) + "\n")
	}
	sb.WriteString(m.styles.Muted.Render("[/] search  [s] sort  [c] category  [t] store  [r] rating  [p] price  [space] compare  [v] comparison  [x] clear  [R] reset  [q] quit"))
	return sb.String()
}

func (m Model) renderInputs() string {
	searchStyle, priceStyle := m.styles.Input, m.styles.Input
	switch m.mode {
	case modeSearch:
		searchStyle = m.styles.Focused
	case modePrice:
		priceStyle = m.styles.Focused
	}
	return searchStyle.Render(m.search.View()) + "  " + priceStyle.Render(m.price.View())
}

// ParsePriceRange reads "min-max". Either side may be empty and falls back
// to the default bound. A leading "$" is accepted on both sides.
func ParsePriceRange(s string) (minPrice, maxPrice float64, err error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return 0, 0, errPriceRange
	}
	minPrice, err = parseBound(lo, domain.DefaultMinPrice)
	if err != nil {
		return 0, 0, err
	}
	maxPrice, err = parseBound(hi, domain.DefaultMaxPrice)
	if err != nil {
		return 0, 0, err
	}
	return minPrice, maxPrice, nil
}

func parseBound(s string, fallback float64) (float64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errPriceRange
	}
	return v, nil
}

func nextSortKey(k domain.SortKey) domain.SortKey {
	for i, key := range domain.SortKeys {
		if key == k {
			return domain.SortKeys[(i+1)%len(domain.SortKeys)]
		}
	}
	return domain.SortNewest
}

// nextOption cycles none -> options[0] -> ... -> options[n-1] -> none.
func nextOption(current *string, options []string) *string {
	if len(options) == 0 {
		return nil
	}
	next := 0
	if current != nil {
		next = len(options)
		for i, o := range options {
			if o == *current {
				next = i + 1
				break
			}
		}
	}
	if next >= len(options) {
		return nil
	}
	v := options[next]
	return &v
}

func nextRating(current float64) float64 {
	for i, r := range domain.RatingThresholds {
		if r == current {
			return domain.RatingThresholds[(i+1)%len(domain.RatingThresholds)]
		}
	}
	return 0
}

func gridColumns(width int) []table.Column {
	desc := max(width-112, 20)
	return []table.Column{
		{Title: "", Width: 2},
		{Title: "Name", Width: 28},
		{Title: "Category", Width: 14},
		{Title: "Store", Width: 12},
		{Title: "Price", Width: 10},
		{Title: "Deal", Width: 16},
		{Title: "Rating", Width: 7},
		{Title: "Stock", Width: 12},
		{Title: "Description", Width: desc},
	}
}
