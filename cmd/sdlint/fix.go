package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"sdlint/internal/diag"
	"sdlint/internal/driver"
	"sdlint/internal/fix"
	"sdlint/internal/rules"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] [path ...]",
	Short: "Apply available fixes to schema files",
	Long:  "Run the lint rules, surface available fixes (such as deleting members past their deletion date), and apply them according to the chosen strategy.",
	Args:  cobra.ArbitraryArgs,
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply all safe fixes")
	fixCmd.Flags().Bool("once", false, "apply the first available fix (default)")
	fixCmd.Flags().String("id", "", "apply fix with a specific identifier")
	fixCmd.Flags().Bool("dry-run", false, "report what would change without touching files")
}

// applyOptionsFromFlags reads the strategy flags and rejects conflicting
// combinations before any linting happens.
func applyOptionsFromFlags(cmd *cobra.Command) (fix.ApplyOptions, error) {
	var opts fix.ApplyOptions
	flags := cmd.Flags()

	all, err := flags.GetBool("all")
	if err != nil {
		return opts, err
	}
	once, err := flags.GetBool("once")
	if err != nil {
		return opts, err
	}
	if opts.TargetID, err = flags.GetString("id"); err != nil {
		return opts, err
	}
	if opts.DryRun, err = flags.GetBool("dry-run"); err != nil {
		return opts, err
	}

	switch {
	case opts.TargetID != "" && (all || once):
		return opts, errors.New("--id cannot be combined with --all or --once")
	case all && once:
		return opts, errors.New("--all and --once are mutually exclusive")
	case opts.TargetID != "":
		opts.Mode = fix.ApplyModeID
	case all:
		opts.Mode = fix.ApplyModeAll
	default:
		opts.Mode = fix.ApplyModeOnce
	}
	return opts, nil
}

func runFix(cmd *cobra.Command, args []string) error {
	applyOpts, err := applyOptionsFromFlags(cmd)
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	cfg, err := loadManifest(cmd)
	if err != nil {
		return err
	}
	registry := rules.Default()
	ruleOptions, err := validateManifestRules(cfg, registry)
	if err != nil {
		return err
	}
	files, err := collectTargets(args, cfg)
	if err != nil {
		return err
	}

	// No result cache here: fix identifiers are positional, so they must
	// come from the same parse that this run applies edits to.
	fileSet := newLintFileSet(cfg)
	results, err := driver.LintFiles(cmd.Context(), fileSet, files, driver.Options{
		MaxDiagnostics: maxDiagnostics,
		Registry:       registry,
		Rules:          cfg.Config.Rules,
		RuleOptions:    ruleOptions,
	})
	if err != nil {
		return fmt.Errorf("fix: lint failed: %w", err)
	}

	res, applyErr := fix.Apply(fileSet, flattenSorted(results), applyOpts)
	return reportApplyResult(os.Stdout, res, applyErr, applyOpts.DryRun)
}

// flattenSorted merges per-file bags into one slice, each bag sorted first so
// positional fix identifiers stay stable across runs.
func flattenSorted(results []driver.FileResult) []diag.Diagnostic {
	var all []diag.Diagnostic
	for _, r := range results {
		if r.Bag == nil {
			continue
		}
		r.Bag.Sort()
		all = append(all, r.Bag.Items()...)
	}
	return all
}

// applyPrinter latches the first write error; later sections stay silent and
// the error surfaces once at the end of the report.
type applyPrinter struct {
	w   io.Writer
	err error
}

func (p *applyPrinter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func reportApplyResult(w io.Writer, res *fix.ApplyResult, applyErr error, dryRun bool) error {
	if res == nil {
		return applyErr
	}
	p := &applyPrinter{w: w}

	if len(res.Applied) > 0 {
		p.printf("Applied %d fix(es):\n", len(res.Applied))
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			p.printf("  %s [%s] - %s (%d edits, %s)\n",
				item.Title, item.ID, location, item.EditCount, item.Applicability.String())
		}
	}

	if len(res.FileChanges) > 0 {
		if dryRun {
			p.printf("Would update files:\n")
		} else {
			p.printf("Updated files:\n")
		}
		for _, change := range res.FileChanges {
			p.printf("  %s (%d edits)\n", change.Path, change.EditCount)
		}
	}

	for i, skip := range res.Skipped {
		if i == 0 {
			p.printf("Skipped fixes:\n")
		}
		id := skip.ID
		if id == "" {
			id = "(unnamed)"
		}
		if skip.Title != "" {
			p.printf("  %s [%s]: %s\n", skip.Title, id, skip.Reason)
		} else {
			p.printf("  [%s]: %s\n", id, skip.Reason)
		}
	}

	switch {
	case applyErr != nil && errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0:
		p.printf("No applicable fixes found.\n")
	case applyErr != nil:
		if p.err != nil {
			return p.err
		}
		return applyErr
	case len(res.Applied) == 0:
		p.printf("No fixes applied.\n")
	case dryRun:
		p.printf("Dry run: no files were modified.\n")
	}
	return p.err
}
