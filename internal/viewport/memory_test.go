package viewport

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "vistree/internal/errors"
)

func TestIDSetCopyOnWrite(t *testing.T) {
	base := NewIDSet("a", "b")
	added := base.With("c")
	removed := base.Without("a")

	assert.Equal(t, []string{"a", "b"}, base.IDs())
	assert.Equal(t, []string{"a", "b", "c"}, added.IDs())
	assert.Equal(t, []string{"b"}, removed.IDs())

	var nilSet IDSet
	assert.False(t, nilSet.Has("a"))
	assert.Equal(t, 0, nilSet.Len())
}

func TestMemoryDefaults(t *testing.T) {
	vp := NewMemory()
	assert.True(t, vp.IsSpatialView())
	assert.False(t, vp.ViewsModel("m1"))
	assert.False(t, vp.ViewsCategory("c1"))
	assert.True(t, vp.ViewsSubCategory("sc1"), "sub-categories are visible unless hidden")
	assert.Equal(t, OverrideNone, vp.CategoryOverride("m1", "c1"))
	assert.Zero(t, vp.AlwaysDrawn().Len())
	assert.False(t, vp.IsAlwaysDrawnExclusive())

	assert.False(t, NewMemory(WithSpatial(false)).IsSpatialView())
}

func TestMemoryModelAndCategorySelectors(t *testing.T) {
	vp := NewMemory(WithViewedModels("m1"), WithEnabledCategories("c1"))

	vp.AddViewedModels([]string{"m2"})
	assert.Equal(t, []string{"m1", "m2"}, vp.ViewedModels())

	vp.ChangeModelDisplay([]string{"m1"}, false)
	assert.False(t, vp.ViewsModel("m1"))

	vp.ChangeCategoryDisplay([]string{"c2"}, true, false)
	assert.True(t, vp.ViewsCategory("c2"))

	vp.ChangeSubCategoryDisplay("sc1", false)
	assert.False(t, vp.ViewsSubCategory("sc1"))
	vp.ChangeSubCategoryDisplay("sc1", true)
	assert.True(t, vp.ViewsSubCategory("sc1"))
}

func TestMemoryOverrides(t *testing.T) {
	vp := NewMemory()

	vp.SetCategoryOverride("m1", "c1", OverrideHide)
	vp.SetCategoryOverride("m2", "c1", OverrideShow)
	vp.SetCategoryOverride("m2", "c2", OverrideShow)
	assert.Equal(t, map[string]Override{"m1": OverrideHide, "m2": OverrideShow}, vp.CategoryOverrides("c1"))

	vp.SetCategoryOverride("m1", "c1", OverrideNone)
	assert.Equal(t, OverrideNone, vp.CategoryOverride("m1", "c1"))

	vp.ChangeCategoryDisplay([]string{"c1"}, false, true)
	assert.Empty(t, vp.CategoryOverrides("c1"), "propagation clears per-model overrides")
	assert.Equal(t, OverrideShow, vp.CategoryOverride("m2", "c2"))

	vp.ClearCategoryOverrides([]string{"m2"})
	assert.Equal(t, OverrideNone, vp.CategoryOverride("m2", "c2"))
}

func TestMemoryElementSetsAreSnapshots(t *testing.T) {
	vp := NewMemory()
	ids := NewIDSet("e1")
	vp.SetAlwaysDrawn(ids, true)
	ids["e2"] = struct{}{}

	got := vp.AlwaysDrawn()
	assert.Equal(t, []string{"e1"}, got.IDs())
	assert.True(t, vp.IsAlwaysDrawnExclusive())

	got["e3"] = struct{}{}
	assert.False(t, vp.AlwaysDrawn().Has("e3"))

	vp.SetNeverDrawn(NewIDSet("e9"))
	assert.True(t, vp.NeverDrawn().Has("e9"))
	vp.ClearNeverDrawn()
	vp.ClearAlwaysDrawn()
	assert.Zero(t, vp.NeverDrawn().Len())
	assert.Zero(t, vp.AlwaysDrawn().Len())
}

func TestMemoryOnChange(t *testing.T) {
	vp := NewMemory()
	var mu sync.Mutex
	calls := 0
	remove := vp.OnChange(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	vp.AddViewedModels([]string{"m1"})
	vp.SetNeverDrawn(NewIDSet("e1"))
	remove()
	vp.ClearNeverDrawn()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls)
}

func TestMemorySettleHonorsContext(t *testing.T) {
	vp := NewMemory()
	require.NoError(t, vp.Settle(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, vp.Settle(ctx), context.Canceled)
}

func TestMemoryStateRoundTrip(t *testing.T) {
	vp := NewMemory(WithViewedModels("m1", "m2"), WithEnabledCategories("c1"))
	vp.SetCategoryOverride("m1", "c2", OverrideShow)
	vp.ChangeSubCategoryDisplay("sc1", false)
	vp.SetAlwaysDrawn(NewIDSet("e1"), true)
	vp.SetNeverDrawn(NewIDSet("e2"))

	path := filepath.Join(t.TempDir(), "state", "viewport.yaml")
	require.NoError(t, vp.SaveState(path))

	restored := NewMemory()
	require.NoError(t, restored.LoadState(path))
	assert.Equal(t, vp.Snapshot(), restored.Snapshot())
	assert.Equal(t, OverrideShow, restored.CategoryOverride("m1", "c2"))
	assert.True(t, restored.IsAlwaysDrawnExclusive())
}

func TestLoadStateErrors(t *testing.T) {
	dir := t.TempDir()
	vp := NewMemory()

	err := vp.LoadState(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.CodeViewportFailed))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("viewedModels: {"), 0o600))
	err = vp.LoadState(bad)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.CodeParseFailed))
}
