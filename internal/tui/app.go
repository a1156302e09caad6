package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arlo/localdash/internal/config"
	"github.com/arlo/localdash/internal/dashboard"
	"github.com/arlo/localdash/internal/database/repository"
	"github.com/arlo/localdash/internal/location"
	"github.com/arlo/localdash/internal/widget"
)

// SnapshotStore persists the last fetched payload across sessions.
type SnapshotStore interface {
	Load(ctx context.Context) (*repository.Snapshot, error)
	Save(ctx context.Context, s repository.Snapshot) error
}

// Deps collects the app's collaborators. Consent and Snapshots may be nil
// when the selected provider doesn't need them.
type Deps struct {
	Resolver     *location.Resolver
	Orchestrator *dashboard.Orchestrator
	Registry     *widget.Registry
	Feed         dashboard.Fetcher
	Consent      location.ConsentStore
	Snapshots    SnapshotStore
}

// App ties the resolver, orchestrator, and registry into the event loop.
type App struct {
	ctx       context.Context
	cfg       config.Config
	resolver  *location.Resolver
	orch      *dashboard.Orchestrator
	registry  *widget.Registry
	feed      dashboard.Fetcher
	consent   location.ConsentStore
	snapshots SnapshotStore

	cycle    location.Cycle
	spin     spinner.Model
	keys     keyMap
	width    int
	height   int
	status   string
	prompt   bool
	quitting bool
}

func New(ctx context.Context, cfg config.Config, deps Deps) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &App{
		ctx:       ctx,
		cfg:       cfg,
		resolver:  deps.Resolver,
		orch:      deps.Orchestrator,
		registry:  deps.Registry,
		feed:      deps.Feed,
		consent:   deps.Consent,
		snapshots: deps.Snapshots,
		spin:      sp,
		keys:      newKeyMap(),
		width:     100,
		height:    32,
	}
}

type keyMap struct {
	Refresh key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Refresh, k.Quit}}
}

// messages

type seedMsg struct {
	snapshot *repository.Snapshot
	err      error
}

type permissionMsg struct {
	cycle    location.Cycle
	decision location.Decision
	err      error
}

type locationMsg struct {
	cycle location.Cycle
	value location.Value
	err   error
}

type widgetsMsg struct {
	gen     uint64
	widgets []widget.Descriptor
	err     error
}

type snapshotSavedMsg struct {
	err error
}

func (a *App) Init() tea.Cmd {
	a.cycle = a.resolver.Begin(a.ctx)
	cmds := []tea.Cmd{a.spin.Tick, a.loadSnapshot()}
	if st := a.resolver.State(); st.Status == location.StatusDenied {
		// no location capability on this platform
		a.orch.Observe(st)
	} else {
		cmds = append(cmds, a.queryPermission(a.cycle))
	}
	return tea.Batch(cmds...)
}

// commands

func (a *App) loadSnapshot() tea.Cmd {
	if a.snapshots == nil {
		return nil
	}
	return func() tea.Msg {
		s, err := a.snapshots.Load(a.ctx)
		return seedMsg{snapshot: s, err: err}
	}
}

func (a *App) saveSnapshot(ws []widget.Descriptor, v location.Value) tea.Cmd {
	if a.snapshots == nil {
		return nil
	}
	return func() tea.Msg {
		err := a.snapshots.Save(a.ctx, repository.Snapshot{Widgets: ws, Location: v})
		return snapshotSavedMsg{err: err}
	}
}

func (a *App) queryPermission(c location.Cycle) tea.Cmd {
	return func() tea.Msg {
		d, err := c.QueryPermission(a.ctx)
		return permissionMsg{cycle: c, decision: d, err: err}
	}
}

func (a *App) readLocation(c location.Cycle) tea.Cmd {
	return func() tea.Msg {
		v, err := c.ReadLocation(a.ctx)
		return locationMsg{cycle: c, value: v, err: err}
	}
}

func (a *App) fetchWidgets(gen uint64, v location.Value) tea.Cmd {
	return func() tea.Msg {
		ws, err := a.feed.FetchWidgets(a.ctx, v.Latitude, v.Longitude)
		return widgetsMsg{gen: gen, widgets: ws, err: err}
	}
}

func (a *App) decideConsent(granted bool) tea.Cmd {
	a.prompt = false
	ctx := a.ctx
	c := a.cycle
	consent := a.consent
	return func() tea.Msg {
		d := location.DecisionDenied
		if granted {
			d = location.DecisionGranted
		}
		if consent != nil {
			// the decision still applies this session if persistence fails
			_ = consent.Set(ctx, d)
		}
		return permissionMsg{cycle: c, decision: d}
	}
}

func (a *App) refresh() tea.Cmd {
	a.prompt = false
	a.status = ""
	a.orch.Reset()
	a.cycle = a.resolver.Begin(a.ctx)
	if st := a.resolver.State(); st.Status == location.StatusDenied {
		a.orch.Observe(st)
		return nil
	}
	return tea.Batch(a.spin.Tick, a.loadSnapshot(), a.queryPermission(a.cycle))
}

// Update drives one resolution-and-fetch cycle through its messages. Every
// async result carries the cycle or generation it was issued for; stale
// ones fall out in the guarded handlers below.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case seedMsg:
		if m.err == nil && m.snapshot != nil {
			a.orch.Seed(m.snapshot.Widgets)
		}
		return a, nil

	case permissionMsg:
		if errors.Is(m.err, location.ErrUndecided) {
			if m.cycle.Current() {
				a.prompt = true
			}
			return a, nil
		}
		if m.cycle.HandlePermission(m.decision, m.err) {
			return a, a.readLocation(m.cycle)
		}
		if m.cycle.Current() {
			a.orch.Observe(a.resolver.State())
		}
		return a, nil

	case locationMsg:
		if !m.cycle.Current() {
			return a, nil
		}
		if err := m.cycle.HandleReading(a.ctx, m.value, m.err); err != nil {
			a.status = "cache write failed: " + err.Error()
		}
		st := a.resolver.State()
		if gen, ok := a.orch.Observe(st); ok {
			return a, a.fetchWidgets(gen, *st.Location)
		}
		return a, nil

	case widgetsMsg:
		if !a.orch.Apply(m.gen, m.widgets, m.err) {
			return a, nil // superseded fetch; result discarded
		}
		if m.err != nil {
			return a, nil
		}
		if v := a.orch.Location(); v != nil {
			return a, a.saveSnapshot(m.widgets, *v)
		}
		return a, nil

	case snapshotSavedMsg:
		if m.err != nil {
			a.status = "snapshot write failed: " + m.err.Error()
		}
		return a, nil

	case spinner.TickMsg:
		if !a.orch.Loading() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(m)
		return a, cmd

	case tea.WindowSizeMsg:
		a.width = m.Width
		a.height = m.Height
		return a, nil

	case tea.KeyMsg:
		if a.prompt {
			return a.handlePromptKey(m)
		}
		switch {
		case key.Matches(m, a.keys.Quit):
			a.quitting = true
			return a, tea.Quit
		case key.Matches(m, a.keys.Refresh):
			return a, a.refresh()
		}
		return a, nil
	}
	return a, nil
}

func (a *App) handlePromptKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "y", "Y":
		return a, a.decideConsent(true)
	case "n", "N", "esc":
		return a, a.decideConsent(false)
	case "q", "ctrl+c":
		a.quitting = true
		return a, tea.Quit
	}
	return a, nil
}
