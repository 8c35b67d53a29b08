package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"vistree/internal/config"
	"vistree/internal/debug"
	appErrors "vistree/internal/errors"
	"vistree/internal/hierarchy"
	"vistree/internal/imodel"
	"vistree/internal/tree"
	"vistree/internal/ui"
	"vistree/internal/viewport"
	"vistree/internal/visibility"
	"vistree/internal/watcher"
)

type runtimeOptions struct {
	dbPath       string
	fixturePath  string
	statePath    string
	outputFormat string
	watch        bool
	exclusive    bool

	sample     bool
	print      bool
	jsonOutput bool
	depth      int
	show       []string
	hide       []string
}

func computeRuntimeOptions() runtimeOptions {
	return runtimeOptions{
		dbPath:       strings.TrimSpace(config.GetString(config.KeyDatabasePath)),
		fixturePath:  strings.TrimSpace(config.GetString(config.KeyFixturePath)),
		statePath:    strings.TrimSpace(config.GetString(config.KeyViewportStatePath)),
		outputFormat: strings.TrimSpace(config.GetString(config.KeyOutputFormat)),
		watch:        config.GetBool(config.KeyWatchEnabled),
		exclusive:    config.GetBool(config.KeyExclusiveAlwaysDrawn),
	}
}

// openProvider picks the iModel source: a database wins over a fixture,
// which wins over the built-in sample. The returned path is what to watch.
func openProvider(opts runtimeOptions) (imodel.QueryProvider, string, error) {
	switch {
	case opts.dbPath != "":
		if _, err := os.Stat(opts.dbPath); err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.CodeConfigurationError, "open database")
		}
		p, err := imodel.NewSQLiteProvider(opts.dbPath)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.CodeConfigurationError, "open database")
		}
		return p, opts.dbPath, nil
	case opts.fixturePath != "":
		f, err := imodel.LoadFixture(opts.fixturePath)
		if err != nil {
			return nil, "", err
		}
		return imodel.NewFixtureProvider(f), opts.fixturePath, nil
	case opts.sample:
		return imodel.NewFixtureProvider(imodel.SampleFixture()), "", nil
	}
	return nil, "", appErrors.Newf(appErrors.CodeConfigurationError, "no iModel source: pass -db-path, -fixture or -sample")
}

// session is everything one run shares between the trees.
type session struct {
	cache      *hierarchy.Cache
	vp         *viewport.Memory
	builder    *tree.Builder
	models     *visibility.Handler
	categories *visibility.CategoriesHandler
}

// newSession creates the viewport. Without saved state every model and
// category starts displayed.
func newSession(ctx context.Context, provider imodel.QueryProvider, opts runtimeOptions) (*session, error) {
	cache := hierarchy.New(provider)
	modelIDs, err := cache.ModelIDs(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := cache.AllCategories(ctx)
	if err != nil {
		return nil, err
	}
	categoryIDs := make([]string, len(categories))
	for i, c := range categories {
		categoryIDs[i] = c.ID
	}

	vp := viewport.NewMemory(
		viewport.WithViewedModels(modelIDs...),
		viewport.WithEnabledCategories(categoryIDs...),
		viewport.WithExclusiveAlwaysDrawn(opts.exclusive),
	)
	if opts.statePath != "" {
		if _, statErr := os.Stat(opts.statePath); statErr == nil {
			if err := vp.LoadState(opts.statePath); err != nil {
				return nil, err
			}
			debug.Logf("restored viewport state from %s", opts.statePath)
		}
	}

	return &session{
		cache:      cache,
		vp:         vp,
		builder:    tree.NewBuilder(cache),
		models:     visibility.NewHandler(vp, cache),
		categories: visibility.NewCategoriesHandler(vp, cache),
	}, nil
}

// parseTarget turns "kind:id" into a node. Models tree categories are
// written "category:model/category"; a bare category id addresses the
// categories tree.
func parseTarget(s string) (visibility.Node, tree.Mode, error) {
	kind, id, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || id == "" {
		return visibility.Node{}, 0, appErrors.Newf(appErrors.CodeParseFailed, "target %q: want kind:id", s)
	}
	switch strings.ToLower(kind) {
	case "subject":
		return visibility.Node{Kind: visibility.KindSubject, IDs: []string{id}}, tree.ModelsTree, nil
	case "model":
		return visibility.Node{Kind: visibility.KindModel, IDs: []string{id}}, tree.ModelsTree, nil
	case "element":
		return visibility.Node{Kind: visibility.KindElement, IDs: []string{id}}, tree.ModelsTree, nil
	case "category":
		if modelID, categoryID, nested := strings.Cut(id, "/"); nested {
			return visibility.Node{Kind: visibility.KindCategory, IDs: []string{categoryID}, ModelID: modelID}, tree.ModelsTree, nil
		}
		return visibility.Node{Kind: visibility.KindCategory, IDs: []string{id}}, tree.CategoriesTree, nil
	case "subcategory", "sub-category":
		return visibility.Node{Kind: visibility.KindSubCategory, IDs: []string{id}}, tree.CategoriesTree, nil
	case "container", "definition-container":
		return visibility.Node{Kind: visibility.KindDefinitionContainer, IDs: []string{id}}, tree.CategoriesTree, nil
	}
	return visibility.Node{}, 0, appErrors.Newf(appErrors.CodeUnsupportedNode, "target %q: unknown kind %q", s, kind)
}

func (s *session) applyTargets(ctx context.Context, targets []string, on bool) error {
	for _, target := range targets {
		n, mode, err := parseTarget(target)
		if err != nil {
			return err
		}
		if n.Kind == visibility.KindSubCategory {
			sub, err := s.subCategoryParent(ctx, n.ID())
			if err != nil {
				return err
			}
			n.CategoryID = sub
		}
		if mode == tree.CategoriesTree {
			err = s.categories.ChangeVisibility(ctx, n, on)
		} else {
			err = s.models.ChangeVisibility(ctx, n, on)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", target, err)
		}
	}
	return nil
}

func (s *session) subCategoryParent(ctx context.Context, subCategoryID string) (string, error) {
	categories, err := s.cache.AllCategories(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range categories {
		subs, err := s.cache.SubCategories(ctx, c.ID)
		if err != nil {
			return "", err
		}
		for _, sub := range subs {
			if sub.ID == subCategoryID {
				return c.ID, nil
			}
		}
	}
	return "", appErrors.Newf(appErrors.CodeNotFound, "sub-category %s", subCategoryID)
}

var isTerminal = func(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

type programRunner interface {
	Run() (tea.Model, error)
}

var newProgram = func(app *ui.App) programRunner {
	return tea.NewProgram(app, tea.WithAltScreen())
}

func run(ctx context.Context, opts runtimeOptions, stdout, stderr io.Writer) error {
	provider, sourcePath, err := openProvider(opts)
	if err != nil {
		return err
	}
	s, err := newSession(ctx, provider, opts)
	if err != nil {
		return err
	}
	if err := s.applyTargets(ctx, opts.show, true); err != nil {
		return err
	}
	if err := s.applyTargets(ctx, opts.hide, false); err != nil {
		return err
	}

	interactive := !opts.print && !opts.jsonOutput
	if f, ok := stdout.(*os.File); interactive && (!ok || !isTerminal(f)) {
		interactive = false
	}

	if !interactive {
		if err := printTrees(ctx, stdout, s, opts); err != nil {
			return err
		}
		return s.saveState(opts.statePath)
	}

	start, err := summarizeModels(ctx, s)
	if err != nil {
		return err
	}
	if err := runInteractive(s, opts, sourcePath, stderr); err != nil {
		return err
	}
	if err := s.saveState(opts.statePath); err != nil {
		return err
	}
	end, err := summarizeModels(context.Background(), s)
	if err != nil {
		return err
	}
	printExitSummary(stdout, ExitSummary{Version: Version, Start: start, End: end})
	return nil
}

func runInteractive(s *session, opts runtimeOptions, sourcePath string, stderr io.Writer) error {
	var changes <-chan struct{}
	if opts.watch && sourcePath != "" {
		w, err := watcher.New(sourcePath,
			watcher.WithDebounceDuration(config.GetDuration(config.KeyWatchDebounce)),
			watcher.WithOnError(func(err error) {
				debug.Errorf(err, "watch %s", sourcePath)
			}),
		)
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			_, _ = fmt.Fprintf(stderr, "Warning: not watching %s: %v\n", sourcePath, err)
		} else {
			defer w.Stop()
			changes = w.Changed()
		}
	}

	app := ui.NewApp(ui.Config{
		Builder:      s.builder,
		Cache:        s.cache,
		Models:       s.models,
		Categories:   s.categories,
		Changes:      changes,
		OutputFormat: opts.outputFormat,
		Title:        "vistree " + Version,
	})
	defer app.Close()

	if _, err := newProgram(app).Run(); err != nil {
		return fmt.Errorf("run UI: %w", err)
	}
	return nil
}

func (s *session) saveState(path string) error {
	if path == "" {
		return nil
	}
	return s.vp.SaveState(path)
}
