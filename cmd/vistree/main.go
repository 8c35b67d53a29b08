package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"vistree/internal/config"
	"vistree/internal/debug"
)

// targetList collects repeated -show/-hide flags.
type targetList []string

func (t *targetList) String() string { return strings.Join(*t, ",") }

func (t *targetList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Errorf("empty target")
	}
	*t = append(*t, v)
	return nil
}

func main() {
	if err := config.Initialize(); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	versionFlag := flag.Bool("version", false, "Print version information and exit")
	dbPathFlag := flag.String("db-path", config.GetString(config.KeyDatabasePath), "Path to an iModel SQLite database")
	fixtureFlag := flag.String("fixture", config.GetString(config.KeyFixturePath), "Path to a YAML iModel fixture")
	sampleFlag := flag.Bool("sample", false, "Use the built-in sample site")
	statePathFlag := flag.String("state", config.GetString(config.KeyViewportStatePath), "Viewport state file to load and save")
	outputFormatFlag := flag.String("output-format", config.GetString(config.KeyOutputFormat), "Help markdown style (rich, light, plain)")
	printFlag := flag.Bool("print", false, "Print the trees with visibility and exit")
	jsonFlag := flag.Bool("json", false, "Print the trees as JSON and exit")
	depthFlag := flag.Int("depth", 0, "Maximum tree depth for -print/-json (0 prints everything)")
	noWatchFlag := flag.Bool("no-watch", !config.GetBool(config.KeyWatchEnabled), "Do not reload when the source changes")
	debugFlag := flag.Bool("debug", config.GetBool(config.KeyDebug), "Write a debug log")
	var shows, hides targetList
	flag.Var(&shows, "show", "Show a node before starting, e.g. model:m1 or category:m1/c1 (repeatable)")
	flag.Var(&hides, "hide", "Hide a node before starting (repeatable)")
	flag.Parse()

	if *versionFlag {
		printVersion(os.Stdout)
		os.Exit(0)
	}

	visited := map[string]struct{}{}
	flag.CommandLine.Visit(func(f *flag.Flag) {
		visited[f.Name] = struct{}{}
	})

	overrides := map[string]any{}
	if flagWasExplicitlySet("db-path", visited) {
		overrides[config.KeyDatabasePath] = strings.TrimSpace(*dbPathFlag)
	}
	if flagWasExplicitlySet("fixture", visited) {
		overrides[config.KeyFixturePath] = strings.TrimSpace(*fixtureFlag)
	}
	if flagWasExplicitlySet("state", visited) {
		overrides[config.KeyViewportStatePath] = strings.TrimSpace(*statePathFlag)
	}
	if flagWasExplicitlySet("output-format", visited) {
		overrides[config.KeyOutputFormat] = strings.TrimSpace(*outputFormatFlag)
	}
	if flagWasExplicitlySet("no-watch", visited) {
		overrides[config.KeyWatchEnabled] = !*noWatchFlag
	}
	if flagWasExplicitlySet("debug", visited) {
		overrides[config.KeyDebug] = *debugFlag
	}
	if err := config.ApplyOverrides(overrides); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := debug.Init(config.GetBool(config.KeyDebug)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: debug log disabled: %v\n", err)
	}
	defer debug.Close()

	opts := computeRuntimeOptions()
	opts.sample = *sampleFlag
	opts.print = *printFlag
	opts.jsonOutput = *jsonFlag
	opts.depth = *depthFlag
	opts.show = shows
	opts.hide = hides

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, opts, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		debug.Errorf(err, "vistree exited with error")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		debug.Close()
		os.Exit(1)
	}
}

func flagWasExplicitlySet(name string, visited map[string]struct{}) bool {
	if _, ok := visited[name]; ok {
		return true
	}
	f := flag.CommandLine.Lookup(name)
	if f == nil {
		return false
	}
	return f.Value.String() != f.DefValue
}
