package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vistree/internal/hierarchy"
	"vistree/internal/imodel"
	"vistree/internal/tree"
	"vistree/internal/viewport"
	"vistree/internal/visibility"
)

func newTestApp(t *testing.T, vpOpts ...viewport.Option) (*App, *viewport.Memory) {
	t.Helper()
	cache := hierarchy.New(imodel.NewFixtureProvider(imodel.SampleFixture()))
	opts := append([]viewport.Option{
		viewport.WithViewedModels("m-arch", "m-struct", "m-mep"),
		viewport.WithEnabledCategories("c-walls", "c-doors", "c-beams", "c-ducts"),
	}, vpOpts...)
	vp := viewport.NewMemory(opts...)
	app := NewApp(Config{
		Builder:      tree.NewBuilder(cache),
		Cache:        cache,
		Models:       visibility.NewHandler(vp, cache, visibility.WithMaxConcurrency(2)),
		Categories:   visibility.NewCategoriesHandler(vp, cache, visibility.WithMaxConcurrency(2)),
		OutputFormat: "plain",
	})
	t.Cleanup(app.Close)
	run(t, app, app.Init())
	return app, vp
}

// run executes cmd and feeds every resulting message back into the app
// until no commands remain.
func run(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 1000, "command loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, next := app.Update(msg)
			queue = append(queue, next)
		}
	}
}

func press(t *testing.T, app *App, keys ...string) {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd := app.Update(msg)
		run(t, app, cmd)
	}
}

func rowLabels(app *App) []string {
	out := make([]string, len(app.rows))
	for i, n := range app.rows {
		out[i] = n.Label()
	}
	return out
}

func statusOf(t *testing.T, app *App, label string) visibility.Status {
	t.Helper()
	for _, n := range app.rows {
		if n.Label() == label {
			s, ok := app.state().statuses[n.Key()]
			require.True(t, ok, "no status for %s", label)
			return s
		}
	}
	t.Fatalf("row %q not visible", label)
	return visibility.Status{}
}

func TestInitLoadsModelsTreeWithStatuses(t *testing.T) {
	app, _ := newTestApp(t)

	assert.Equal(t, []string{"Site"}, rowLabels(app))
	assert.Equal(t, visibility.StateVisible, statusOf(t, app, "Site").State)
	assert.Contains(t, app.View(), "[x]")
}

func TestToggleHidesSubjectModels(t *testing.T) {
	app, vp := newTestApp(t)

	press(t, app, "l")
	assert.Equal(t, []string{"Site", "Architecture", "Structure", "MEP Physical"}, rowLabels(app))

	press(t, app, "j", "space")
	assert.False(t, vp.ViewsModel("m-arch"))
	assert.Equal(t, visibility.StateHidden, statusOf(t, app, "Architecture").State)
	assert.Equal(t, visibility.StatePartial, statusOf(t, app, "Site").State)
	assert.Contains(t, app.View(), "[~]")

	press(t, app, "space")
	assert.True(t, vp.ViewsModel("m-arch"))
	assert.Equal(t, visibility.StateVisible, statusOf(t, app, "Site").State)
}

func TestCollapseMovesToParent(t *testing.T) {
	app, _ := newTestApp(t)

	press(t, app, "l", "j", "j", "h")
	assert.Equal(t, []string{"Site"}, rowLabels(app))
	assert.Zero(t, app.state().cursor)
}

func TestCategoriesTreeBulkHide(t *testing.T) {
	app, vp := newTestApp(t)

	press(t, app, "tab")
	assert.Equal(t, tree.CategoriesTree, app.active)
	assert.Equal(t, []string{"Architectural Definitions", "Beams", "Ducts"}, rowLabels(app))

	press(t, app, "A")
	assert.False(t, vp.ViewsCategory("c-beams"))
	assert.Equal(t, visibility.StateHidden, statusOf(t, app, "Beams").State)
	assert.Equal(t, visibility.StateHidden, statusOf(t, app, "Architectural Definitions").State)

	press(t, app, "a")
	assert.True(t, vp.ViewsCategory("c-walls"))
	assert.Equal(t, visibility.StateVisible, statusOf(t, app, "Ducts").State)
}

func TestFilterNarrowsRowsAndParentStatus(t *testing.T) {
	app, _ := newTestApp(t)

	press(t, app, "l", "j", "space")
	assert.Equal(t, visibility.StatePartial, statusOf(t, app, "Site").State)

	press(t, app, "/", "Ducts", "enter")
	require.NotNil(t, app.state().filtered)
	assert.Equal(t, []string{"Site", "MEP Physical", "Ducts"}, rowLabels(app))
	assert.Equal(t, visibility.StateVisible, statusOf(t, app, "Site").State)

	press(t, app, "esc")
	assert.Nil(t, app.state().filtered)
	assert.Equal(t, visibility.StatePartial, statusOf(t, app, "Site").State)
}

func TestStaleStatusResultsAreDropped(t *testing.T) {
	app, _ := newTestApp(t)
	key := app.rows[0].Key()

	app.Update(statusMsg{generation: app.generation - 1, mode: tree.ModelsTree, key: key, status: visibility.Hidden(visibility.ReasonAllModelsHidden)})
	assert.Equal(t, visibility.StateVisible, app.state().statuses[key].State)
}

func TestRefreshCancelsPreviousGeneration(t *testing.T) {
	app, _ := newTestApp(t)
	previous := app.statusCtx
	require.NotNil(t, previous)

	cmd := app.refreshStatuses()
	assert.ErrorIs(t, previous.Err(), context.Canceled)
	assert.NoError(t, app.statusCtx.Err())

	run(t, app, cmd)
	assert.Equal(t, visibility.StateVisible, statusOf(t, app, "Site").State)

	app.Close()
	assert.ErrorIs(t, app.statusCtx.Err(), context.Canceled)
}

func TestDisabledRowCannotToggle(t *testing.T) {
	app, vp := newTestApp(t, viewport.WithSpatial(false))

	status := statusOf(t, app, "Site")
	require.True(t, status.Disabled)

	press(t, app, "space")
	assert.False(t, app.busy)
	assert.Equal(t, visibility.ReasonNonSpatialView.Tooltip(), app.toast)
	assert.True(t, vp.ViewsModel("m-arch"))
}

func TestCopySelectedID(t *testing.T) {
	app, _ := newTestApp(t)

	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { writeClipboard = orig })

	press(t, app, "y")
	assert.Equal(t, "s-root", copied)
	assert.Contains(t, app.toast, "s-root")

	writeClipboard = func(string) error { return errors.New("no clipboard") }
	press(t, app, "y")
	assert.Contains(t, app.View(), "no clipboard")
}

func TestSourceChangeReloads(t *testing.T) {
	app, _ := newTestApp(t)
	press(t, app, "l")
	require.Len(t, app.rows, 4)

	_, cmd := app.Update(sourceChangedMsg{})
	run(t, app, cmd)
	assert.Equal(t, []string{"Site"}, rowLabels(app))
	assert.Equal(t, visibility.StateVisible, statusOf(t, app, "Site").State)
}

func TestHelpOverlay(t *testing.T) {
	app, _ := newTestApp(t)

	press(t, app, "?")
	view := app.View()
	assert.Contains(t, view, "Toggle visibility")
	assert.True(t, strings.Contains(view, "Switch tree"))

	press(t, app, "j")
	assert.False(t, app.showHelp)
}
