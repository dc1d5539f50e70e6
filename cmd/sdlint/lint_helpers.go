package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sdlint/internal/config"
	"sdlint/internal/diag"
	"sdlint/internal/driver"
	"sdlint/internal/rules"
	"sdlint/internal/source"
)

// cfgError wraps a manifest problem with its diagnostic code so the exit
// message reads like the other diagnostics ("CFG5001: sdlint.toml: ...").
func cfgError(code diag.Code, path string, err error) error {
	if path == "" {
		path = config.FileName
	}
	return fmt.Errorf("%s: %s: %v", code.ID(), path, err)
}

// loadManifest resolves the effective manifest: the --config flag when set,
// otherwise the nearest sdlint.toml up the tree, otherwise built-in defaults.
func loadManifest(cmd *cobra.Command) (*config.File, error) {
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	if configPath != "" {
		cfg, loadErr := config.Load(configPath)
		if loadErr != nil {
			return nil, cfgError(diag.CfgParseError, configPath, loadErr)
		}
		return cfg, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	path, found, err := config.Find(wd)
	if err != nil {
		return nil, err
	}
	if !found {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, cfgError(diag.CfgParseError, path, err)
	}
	return cfg, nil
}

// validateManifestRules checks every rule the manifest names against the
// registry and decodes the [options.<rule>] tables.
func validateManifestRules(cfg *config.File, registry *rules.Registry) (map[string]map[string]any, error) {
	for _, name := range cfg.RuleNames() {
		if _, ok := registry.Get(name); !ok {
			return nil, cfgError(diag.CfgUnknownRule, cfg.Path, fmt.Errorf("unknown rule %q", name))
		}
	}
	options, err := cfg.OptionTables()
	if err != nil {
		return nil, cfgError(diag.CfgInvalidRuleOptions, cfg.Path, err)
	}
	// Dry-run the configuration so option value errors surface here, with
	// the manifest path attached, instead of deep inside the lint run.
	engine := rules.NewEngine(registry)
	if err := engine.Enable(cfg.Config.Rules); err != nil {
		return nil, cfgError(diag.CfgUnknownRule, cfg.Path, err)
	}
	if err := engine.Configure(options); err != nil {
		return nil, cfgError(diag.CfgInvalidRuleOptions, cfg.Path, err)
	}
	return options, nil
}

// collectTargets expands CLI arguments (or, when absent, the manifest's
// schema patterns) into the sorted list of files to lint.
func collectTargets(args []string, cfg *config.File) ([]string, error) {
	files, err := driver.ExpandTargets(args, cfg.Config.Schema, cfg.Root)
	if err != nil {
		if len(args) == 0 {
			return nil, cfgError(diag.CfgBadSchemaPattern, cfg.Path, err)
		}
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no schema files to lint (pass paths or add `schema` patterns to %s)", config.FileName)
	}
	return files, nil
}

// newLintFileSet builds the FileSet for a run, rooted at the manifest
// directory so relative paths render against the project root.
func newLintFileSet(cfg *config.File) *source.FileSet {
	fileSet := source.NewFileSet()
	if cfg.Root != "" {
		fileSet.SetBaseDir(cfg.Root)
	}
	return fileSet
}

// displayPath renders the file path of a result the same way the formatters
// would. Every result carries a FileID; unreadable paths get a virtual file.
func displayPath(fs *source.FileSet, r driver.FileResult, fullPath bool) string {
	file := fs.Get(r.FileID)
	mode := "auto"
	if fullPath {
		mode = "absolute"
	}
	return file.FormatPath(mode, fs.BaseDir())
}

// runTally aggregates the outcome of a lint run for the summary line.
type runTally struct {
	files    int
	errors   int
	warnings int
	cached   int
}

func tallyResults(results []driver.FileResult) runTally {
	tally := runTally{files: len(results)}
	for _, r := range results {
		if r.Cached {
			tally.cached++
		}
		if r.Bag == nil {
			continue
		}
		for _, d := range r.Bag.Items() {
			switch {
			case d.Severity >= diag.SevError:
				tally.errors++
			case d.Severity == diag.SevWarning:
				tally.warnings++
			}
		}
	}
	return tally
}

func (t runTally) String() string {
	line := fmt.Sprintf("checked %d file(s): %d error(s), %d warning(s)", t.files, t.errors, t.warnings)
	if t.cached > 0 {
		line += fmt.Sprintf(", %d from cache", t.cached)
	}
	return line
}

// printTimings writes per-file wall time to stderr, keeping stdout clean for
// diagnostics.
func printTimings(results []driver.FileResult) {
	fmt.Fprintln(os.Stderr, "timings:")
	for _, r := range results {
		suffix := ""
		if r.Cached {
			suffix = " (cached)"
		}
		fmt.Fprintf(os.Stderr, "  %12s  %s%s\n", r.Elapsed.Round(10*time.Microsecond), r.Path, suffix)
	}
}
