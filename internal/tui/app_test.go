package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arlo/localdash/internal/config"
	"github.com/arlo/localdash/internal/dashboard"
	"github.com/arlo/localdash/internal/database/repository"
	"github.com/arlo/localdash/internal/location"
	"github.com/arlo/localdash/internal/widget"
)

type fakeSource struct {
	decision location.Decision
	permErr  error
	value    location.Value
	readErr  error
}

func (f *fakeSource) QueryPermission(ctx context.Context) (location.Decision, error) {
	return f.decision, f.permErr
}

func (f *fakeSource) ReadLocation(ctx context.Context) (location.Value, error) {
	return f.value, f.readErr
}

type fakeConsent struct {
	decision location.Decision
	set      []location.Decision
}

func (f *fakeConsent) Get(ctx context.Context) (location.Decision, error) {
	if len(f.set) == 0 {
		return location.DecisionDenied, location.ErrUndecided
	}
	return f.decision, nil
}

func (f *fakeConsent) Set(ctx context.Context, d location.Decision) error {
	f.decision = d
	f.set = append(f.set, d)
	return nil
}

type fakeFetcher struct {
	widgets []widget.Descriptor
	err     error
	calls   int
}

func (f *fakeFetcher) FetchWidgets(ctx context.Context, lat, lon float64) ([]widget.Descriptor, error) {
	f.calls++
	return f.widgets, f.err
}

type fakeSnapshots struct {
	stored *repository.Snapshot
	saves  int
}

func (f *fakeSnapshots) Load(ctx context.Context) (*repository.Snapshot, error) {
	return f.stored, nil
}

func (f *fakeSnapshots) Save(ctx context.Context, s repository.Snapshot) error {
	f.stored = &s
	f.saves++
	return nil
}

func newTestApp(src location.Source, fetch dashboard.Fetcher, consent location.ConsentStore, snaps SnapshotStore) *App {
	return New(context.Background(), config.Config{}, Deps{
		Resolver:     location.NewResolver(src, nil),
		Orchestrator: dashboard.NewOrchestrator(),
		Registry:     widget.Defaults(),
		Feed:         fetch,
		Consent:      consent,
		Snapshots:    snaps,
	})
}

// drive executes a command tree and feeds every resulting message back into
// Update, the way the runtime would. Spinner ticks are skipped so the tick
// loop terminates.
func drive(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	switch m := msg.(type) {
	case tea.BatchMsg:
		for _, c := range m {
			drive(t, a, c)
		}
		return
	case spinner.TickMsg:
		return
	case tea.QuitMsg:
		return
	}
	_, next := a.Update(msg)
	drive(t, a, next)
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestGrantedFlowFetchesAndSavesSnapshot(t *testing.T) {
	src := &fakeSource{decision: location.DecisionGranted, value: location.Value{Latitude: 12.9, Longitude: 77.6}}
	fetch := &fakeFetcher{widgets: []widget.Descriptor{{Type: "note", Data: []byte(`{"body":"hi"}`)}}}
	snaps := &fakeSnapshots{}
	a := newTestApp(src, fetch, nil, snaps)

	drive(t, a, a.Init())

	if !a.orch.Fetched() {
		t.Fatal("granted flow should complete a fetch")
	}
	if fetch.calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", fetch.calls)
	}
	if ws := a.orch.Widgets(); len(ws) != 1 || ws[0].Type != "note" {
		t.Fatalf("widgets = %v, want the fetched note", ws)
	}
	if snaps.saves != 1 {
		t.Fatalf("snapshot saves = %d, want 1", snaps.saves)
	}
	if v := snaps.stored.Location; v.Latitude != 12.9 || v.Longitude != 77.6 {
		t.Fatalf("snapshot location = %v, want the resolved coordinates", v)
	}
	if out := a.View(); !strings.Contains(out, "[note]") {
		t.Fatalf("view = %q, want a note pane", out)
	}
}

func TestDeniedFlowSkipsFetch(t *testing.T) {
	src := &fakeSource{decision: location.DecisionDenied}
	fetch := &fakeFetcher{}
	a := newTestApp(src, fetch, nil, nil)

	drive(t, a, a.Init())

	if fetch.calls != 0 {
		t.Fatalf("fetch calls = %d after denial, want 0", fetch.calls)
	}
	if !a.orch.Denied() {
		t.Fatal("denial should be recorded")
	}
	if a.orch.Loading() {
		t.Fatal("denied cycle should not be loading")
	}
	if out := a.View(); !strings.Contains(out, "Location unavailable") {
		t.Fatalf("view = %q, want the denial message", out)
	}
}

func TestNilSourceDeniesWithoutPrompt(t *testing.T) {
	fetch := &fakeFetcher{}
	a := newTestApp(nil, fetch, nil, nil)

	drive(t, a, a.Init())

	if a.prompt {
		t.Fatal("no consent prompt without a location source")
	}
	if !a.orch.Denied() {
		t.Fatal("missing capability should read as denied")
	}
	if fetch.calls != 0 {
		t.Fatalf("fetch calls = %d, want 0", fetch.calls)
	}
}

func TestUndecidedConsentPromptsThenProceeds(t *testing.T) {
	consent := &fakeConsent{}
	src := &fakeSource{permErr: location.ErrUndecided, value: location.Value{Latitude: 1, Longitude: 2}}
	fetch := &fakeFetcher{widgets: []widget.Descriptor{{Type: "metric", Data: []byte(`{"value":1}`)}}}
	a := newTestApp(src, fetch, consent, nil)

	drive(t, a, a.Init())

	if !a.prompt {
		t.Fatal("undecided consent should raise the prompt")
	}
	if fetch.calls != 0 {
		t.Fatalf("fetch calls = %d while undecided, want 0", fetch.calls)
	}
	if out := a.View(); !strings.Contains(out, "Share your location?") {
		t.Fatalf("view = %q, want the consent modal", out)
	}

	_, cmd := a.Update(keyMsg("y"))
	drive(t, a, cmd)

	if a.prompt {
		t.Fatal("prompt should close after a decision")
	}
	if len(consent.set) != 1 || consent.set[0] != location.DecisionGranted {
		t.Fatalf("persisted decisions = %v, want one grant", consent.set)
	}
	if !a.orch.Fetched() {
		t.Fatal("granting consent should complete the fetch")
	}
}

func TestDecliningConsentDenies(t *testing.T) {
	consent := &fakeConsent{}
	src := &fakeSource{permErr: location.ErrUndecided}
	fetch := &fakeFetcher{}
	a := newTestApp(src, fetch, consent, nil)

	drive(t, a, a.Init())
	_, cmd := a.Update(keyMsg("n"))
	drive(t, a, cmd)

	if !a.orch.Denied() {
		t.Fatal("declining consent should deny the cycle")
	}
	if fetch.calls != 0 {
		t.Fatalf("fetch calls = %d, want 0", fetch.calls)
	}
	if len(consent.set) != 1 || consent.set[0] != location.DecisionDenied {
		t.Fatalf("persisted decisions = %v, want one denial", consent.set)
	}
}

func TestSeedShowsUntilFreshFetchLands(t *testing.T) {
	seed := &repository.Snapshot{Widgets: []widget.Descriptor{{Type: "chart", Data: []byte(`{"title":"old"}`)}}}
	src := &fakeSource{permErr: location.ErrUndecided}
	a := newTestApp(src, &fakeFetcher{}, &fakeConsent{}, &fakeSnapshots{stored: seed})

	drive(t, a, a.Init())

	if !a.orch.Stale() {
		t.Fatal("seeded widgets should read as stale while pending")
	}
	if out := a.View(); !strings.Contains(out, "cached") {
		t.Fatalf("view = %q, want a cached badge", out)
	}
}

func TestStaleResultsAfterRefreshAreDropped(t *testing.T) {
	src := &fakeSource{decision: location.DecisionGranted, value: location.Value{Latitude: 1, Longitude: 2}}
	fetch := &fakeFetcher{widgets: []widget.Descriptor{{Type: "note"}}}
	a := newTestApp(src, fetch, nil, nil)

	a.Init()
	oldCycle := a.cycle

	// refresh before the first cycle's results arrive
	_, cmd := a.Update(keyMsg("r"))
	drive(t, a, cmd)
	if !a.orch.Fetched() {
		t.Fatal("the refreshed cycle should complete")
	}
	fresh := fetch.calls

	// the first cycle's permission result finally lands and must be inert
	_, cmd = a.Update(permissionMsg{cycle: oldCycle, decision: location.DecisionGranted})
	drive(t, a, cmd)
	if fetch.calls != fresh {
		t.Fatalf("fetch calls = %d, want still %d after a stale permission", fetch.calls, fresh)
	}
}

func TestFetchFailureShowsErrorState(t *testing.T) {
	src := &fakeSource{decision: location.DecisionGranted, value: location.Value{Latitude: 1, Longitude: 2}}
	fetch := &fakeFetcher{err: errors.New("feed unreachable")}
	a := newTestApp(src, fetch, nil, nil)

	drive(t, a, a.Init())

	if a.orch.Err() == nil {
		t.Fatal("fetch failure should be recorded")
	}
	if a.orch.Loading() {
		t.Fatal("failed fetch should not leave the view loading")
	}
	if out := a.View(); !strings.Contains(out, "Widget fetch failed") {
		t.Fatalf("view = %q, want the failure message", out)
	}
}

func TestUnknownWidgetTagRendersPlaceholder(t *testing.T) {
	src := &fakeSource{decision: location.DecisionGranted, value: location.Value{Latitude: 1, Longitude: 2}}
	fetch := &fakeFetcher{widgets: []widget.Descriptor{{Type: "hologram"}}}
	a := newTestApp(src, fetch, nil, nil)

	drive(t, a, a.Init())

	out := a.View()
	if !strings.Contains(out, `unknown widget type "hologram"`) {
		t.Fatalf("view = %q, want the placeholder text", out)
	}
}
