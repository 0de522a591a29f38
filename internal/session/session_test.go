package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pricedash/adapters/memory"
	"pricedash/domain/housing"
	"pricedash/internal/dom"
	"pricedash/internal/form"
	"pricedash/internal/prefs"
	"pricedash/internal/testkit"
	"pricedash/internal/theme"
)

const shell = `<html><body>
<button id="theme-toggle"><span id="theme-toggle-dark-icon"></span><span id="theme-toggle-light-icon"></span></button>
<header><h2 id="view-title"></h2><p id="view-subtitle"></p></header>
<main id="view-container"></main>
<div id="toast-region"></div>
</body></html>`

type recorder struct {
	mu      sync.Mutex
	batches map[string][][]dom.Patch
}

func (r *recorder) Publish(sessionID string, patches []dom.Patch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.batches == nil {
		r.batches = make(map[string][][]dom.Patch)
	}
	r.batches[sessionID] = append(r.batches[sessionID], patches)
}

func (r *recorder) kinds(sessionID string) []dom.PatchKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []dom.PatchKind
	for _, b := range r.batches[sessionID] {
		for _, p := range b {
			out = append(out, p.Kind)
		}
	}
	return out
}

func newManager(t *testing.T, api *testkit.MockAPI, pub Publisher) *Manager {
	t.Helper()
	m := NewManager(Config{
		Shell:       shell,
		API:         api,
		Prefs:       prefs.NewStore(memory.NewPreferenceRepository(), nil),
		DefaultView: "overview",
		IdleExpiry:  time.Hour,
	}, pub)
	t.Cleanup(m.Close)
	return m
}

func TestCreateAndGet(t *testing.T) {
	m := newManager(t, &testkit.MockAPI{}, nil)

	s, err := m.Create(context.Background())
	require.NoError(t, err)

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = m.Get("not-a-uuid")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
}

func TestGetOrCreateRevivesWellFormedID(t *testing.T) {
	m := newManager(t, &testkit.MockAPI{}, nil)
	ctx := context.Background()

	const id = "6f1d3c1e-4f8a-4b52-9a4e-2f9b1c7d0e11"
	s, created, err := m.GetOrCreate(ctx, id)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, id, s.ID)

	again, created, err := m.GetOrCreate(ctx, id)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, s, again)

	fresh, created, err := m.GetOrCreate(ctx, "garbage")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, "garbage", fresh.ID)
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	m := newManager(t, &testkit.MockAPI{}, nil)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return start }

	idle, err := m.Create(context.Background())
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(50 * time.Minute) }
	active, err := m.Create(context.Background())
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(90 * time.Minute) }
	assert.Equal(t, 1, m.Sweep())

	_, ok := m.Get(idle.ID)
	assert.False(t, ok)
	_, ok = m.Get(active.ID)
	assert.True(t, ok)
}

func TestNavigationPublishesPatches(t *testing.T) {
	api := &testkit.MockAPI{}
	api.On("ModelInfo", mock.Anything).Return(testkit.ModelInfo(), nil)
	api.On("ModelComparison", mock.Anything).Return(testkit.Comparison(), nil)
	pub := &recorder{}
	m := newManager(t, api, pub)

	s, err := m.Create(context.Background())
	require.NoError(t, err)

	require.True(t, s.Router.Navigate("model", true))
	s.Router.Wait()

	kinds := pub.kinds(s.ID)
	assert.Contains(t, kinds, dom.PatchReplace)
	assert.Contains(t, kinds, dom.PatchPush)
}

func TestPageDropsPendingPatches(t *testing.T) {
	m := NewManager(Config{
		Shell:         shell,
		API:           &testkit.MockAPI{},
		Prefs:         prefs.NewStore(memory.NewPreferenceRepository(), nil),
		PatchDebounce: time.Hour,
	}, &recorder{})
	defer m.Close()

	s, err := m.Create(context.Background())
	require.NoError(t, err)
	s.Doc.ByID("view-title").SetText("Changed")

	page := s.Page()
	assert.Contains(t, page, "Changed")
	assert.Empty(t, s.Doc.Flush())
}

func TestToggleThemePersistsAcrossRevival(t *testing.T) {
	m := newManager(t, &testkit.MockAPI{}, nil)
	ctx := context.Background()

	s, err := m.Create(ctx)
	require.NoError(t, err)
	next, err := s.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, theme.Dark, next)
	assert.True(t, s.Doc.Root().HasClass("dark"))

	id := s.ID
	m.Close()

	revived, created, err := m.GetOrCreate(ctx, id)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, revived.Doc.Root().HasClass("dark"))
}

func TestPredictInNavigatesWithNeighborhood(t *testing.T) {
	api := &testkit.MockAPI{}
	api.On("Defaults", mock.Anything).Return(housing.Features{}, nil)
	m := newManager(t, api, nil)

	s, err := m.Create(context.Background())
	require.NoError(t, err)

	s.PredictIn("NoRidge")
	s.Router.Wait()
	assert.Equal(t, "predict", s.Router.Current())
	assert.Equal(t, "NoRidge", s.Doc.ByID(form.FormID).FieldValues()["Neighborhood"])

	s.PredictIn("OldTown")
	assert.Equal(t, "OldTown", s.Doc.ByID(form.FormID).FieldValues()["Neighborhood"])
}
