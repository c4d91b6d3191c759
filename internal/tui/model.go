package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/couchcryptid/location-picker/internal/cascade"
	"github.com/couchcryptid/location-picker/internal/domain"
	"github.com/couchcryptid/location-picker/internal/observability"
)

type fetchedMsg struct {
	res cascade.Result
}

type publishedMsg struct {
	event domain.SelectionEvent
}

// row is one option in a column.
type row struct {
	key   string
	id    int
	label string
}

// Model is the terminal cascading picker.
type Model struct {
	ctx     context.Context
	dir     domain.Directory
	sink    domain.SelectionSink
	logger  *slog.Logger
	metrics *observability.Metrics

	state   cascade.State
	initReq cascade.Request

	focus     cascade.List
	cursors   [3]int
	filters   [3]string
	filtering bool

	spinner spinner.Model
	status  string
	width   int
	height  int
}

// New creates a picker over dir. sink may be nil.
func New(ctx context.Context, dir domain.Directory, sink domain.SelectionSink, logger *slog.Logger, metrics *observability.Metrics) Model {
	m := Model{
		ctx:     ctx,
		dir:     dir,
		sink:    sink,
		logger:  logger,
		metrics: metrics,
		height:  24,
	}
	m.initReq = m.state.Initialize()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(m.initReq), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case fetchedMsg:
		applied := m.state.Complete(msg.res)
		cascade.Report(m.logger, m.metrics, msg.res, applied)
		if applied {
			m.cursors[msg.res.Request.List] = 0
		}
		return m, nil

	case publishedMsg:
		m.status = "Saved selection " + msg.event.ID
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursors[m.focus] > 0 {
			m.cursors[m.focus]--
		}
	case "down", "j":
		if m.cursors[m.focus] < len(m.rows(m.focus))-1 {
			m.cursors[m.focus]++
		}
	case "left", "h", "shift+tab":
		if m.focus > cascade.Countries {
			m.focus--
		}
	case "right", "l", "tab":
		if m.focus < cascade.Cities && m.state.Snapshot().Enabled(m.focus+1) {
			m.focus++
		}
	case "/":
		if m.state.Snapshot().Enabled(m.focus) {
			m.filtering = true
		}
	case "enter", " ":
		return m.choose()
	}
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.filtering = false
		m.filters[m.focus] = ""
		m.cursors[m.focus] = 0
	case tea.KeyEnter:
		m.filtering = false
	case tea.KeyBackspace:
		if f := m.filters[m.focus]; f != "" {
			r := []rune(f)
			m.filters[m.focus] = string(r[:len(r)-1])
			m.cursors[m.focus] = 0
		}
	case tea.KeyRunes, tea.KeySpace:
		m.filters[m.focus] += string(msg.Runes)
		m.cursors[m.focus] = 0
	}
	return m, nil
}

// choose selects the highlighted row of the focused column.
func (m Model) choose() (tea.Model, tea.Cmd) {
	snap := m.state.Snapshot()
	if !snap.Enabled(m.focus) {
		return m, nil
	}
	rows := m.rows(m.focus)
	if len(rows) == 0 {
		return m, nil
	}
	picked := rows[min(m.cursors[m.focus], len(rows)-1)]

	switch m.focus {
	case cascade.Countries:
		req := m.state.SelectCountry(picked.key)
		m.resetColumn(cascade.States)
		m.resetColumn(cascade.Cities)
		m.focus = cascade.States
		m.status = ""
		return m, m.fetchCmd(req)

	case cascade.States:
		req, err := m.state.SelectState(picked.key)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.resetColumn(cascade.Cities)
		m.focus = cascade.Cities
		m.status = ""
		return m, m.fetchCmd(req)

	default:
		if _, err := m.state.SelectCity(picked.id); err != nil {
			m.status = err.Error()
			return m, nil
		}
		event, ok := m.state.SelectionEvent(domain.SourceTUI)
		if !ok {
			return m, nil
		}
		m.status = fmt.Sprintf("Selected %s, %s, %s", event.CityName, event.StateName, event.CountryName)
		return m, m.publishCmd(event)
	}
}

func (m *Model) resetColumn(l cascade.List) {
	m.cursors[l] = 0
	m.filters[l] = ""
}

// Selection returns the current choice.
func (m Model) Selection() domain.Selection {
	return m.state.Selection()
}

func (m Model) fetchCmd(req cascade.Request) tea.Cmd {
	ctx, dir := m.ctx, m.dir
	return func() tea.Msg {
		return fetchedMsg{res: cascade.Fetch(ctx, dir, req)}
	}
}

func (m Model) publishCmd(event domain.SelectionEvent) tea.Cmd {
	if m.sink == nil {
		return nil
	}
	ctx, sink, logger, metrics := m.ctx, m.sink, m.logger, m.metrics
	return func() tea.Msg {
		cascade.Publish(ctx, sink, event, logger, metrics)
		return publishedMsg{event: event}
	}
}

// rows returns the options of l that match its filter.
func (m Model) rows(l cascade.List) []row {
	snap := m.state.Snapshot()
	var all []row
	switch l {
	case cascade.Countries:
		for _, c := range snap.Countries {
			all = append(all, row{key: c.Code, label: c.Name})
		}
	case cascade.States:
		for _, s := range snap.States {
			all = append(all, row{key: s.Code, label: s.Name})
		}
	case cascade.Cities:
		for _, c := range snap.Cities {
			all = append(all, row{key: strconv.Itoa(c.ID), id: c.ID, label: c.Name})
		}
	}

	f := strings.ToLower(m.filters[l])
	if f == "" {
		return all
	}
	out := all[:0:0]
	for _, r := range all {
		if strings.Contains(strings.ToLower(r.label), f) || strings.EqualFold(r.key, f) {
			out = append(out, r)
		}
	}
	return out
}
