package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"sdlint/internal/diag"
	"sdlint/internal/diagfmt"
	"sdlint/internal/driver"
	"sdlint/internal/observ"
	"sdlint/internal/rules"
	"sdlint/internal/source"
	"sdlint/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [path ...]",
	Short: "Lint GraphQL schema files",
	Long: `Lint GraphQL schema files for deprecation lifecycle problems: every
@deprecated member must carry a deletion date, and members whose date has
passed are reported as removable. Paths may be files, directories, or glob
patterns; with no paths the manifest's schema patterns are used.`,
	Args: cobra.ArbitraryArgs,
	RunE: runCheck,
}

// init registers the flags of the check command used by runCheck.
func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|sarif|short)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	checkCmd.Flags().Bool("preview", false, "show fix previews without modifying files")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("no-cache", false, "skip the persistent result cache")
	checkCmd.Flags().String("progress", "auto", "live progress display (auto|on|off)")
}

// runCheck executes the "check" command: it resolves the manifest, expands
// the lint targets, runs the rules across them, renders the diagnostics in
// the chosen format, and exits non-zero when any file has errors.
func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}

	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}

	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}

	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}

	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}

	preview, err := cmd.Flags().GetBool("preview")
	if err != nil {
		return fmt.Errorf("failed to get preview flag: %w", err)
	}

	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}

	progressStr, err := cmd.Flags().GetString("progress")
	if err != nil {
		return fmt.Errorf("failed to get progress flag: %w", err)
	}
	progressMode, err := readProgressMode(progressStr)
	if err != nil {
		return err
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	switch format {
	case "pretty", "json", "sarif", "short":
		// supported
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	timer := observ.NewTimer()

	manifestPhase := timer.Begin("manifest")
	cfg, err := loadManifest(cmd)
	if err != nil {
		return err
	}
	registry := rules.Default()
	ruleOptions, err := validateManifestRules(cfg, registry)
	if err != nil {
		return err
	}
	timer.End(manifestPhase, cfg.Path)

	targetsPhase := timer.Begin("targets")
	files, err := collectTargets(args, cfg)
	if err != nil {
		return err
	}
	timer.End(targetsPhase, fmt.Sprintf("%d file(s)", len(files)))

	var cache *driver.ResultCache
	if !noCache {
		cache, err = driver.OpenResultCache("sdlint")
		if err != nil {
			return fmt.Errorf("failed to open result cache: %w", err)
		}
	}
	stamp, err := cfg.Fingerprint()
	if err != nil {
		return cfgError(diag.CfgInvalidRuleOptions, cfg.Path, err)
	}

	opts := driver.Options{
		MaxDiagnostics:   maxDiagnostics,
		Jobs:             jobs,
		NoWarnings:       noWarnings,
		WarningsAsErrors: warningsAsErrors,
		Registry:         registry,
		Rules:            cfg.Config.Rules,
		RuleOptions:      ruleOptions,
		Cache:            cache,
		ConfigStamp:      stamp,
	}

	fileSet := newLintFileSet(cfg)

	// The live display owns stdout, so it only runs for human-facing
	// output. An explicit --progress on still wins.
	useProgress := shouldShowProgress(progressMode) && !quiet
	if progressMode == progressModeAuto && format != "pretty" {
		useProgress = false
	}

	lintPhase := timer.Begin("lint")
	var results []driver.FileResult
	if useProgress {
		title := fmt.Sprintf("Linting %d schema file(s)", len(files))
		results, err = runLintWithUI(cmd.Context(), title, fileSet, files, opts)
	} else {
		results, err = driver.LintFiles(cmd.Context(), fileSet, files, opts)
	}
	if err != nil {
		return fmt.Errorf("lint failed: %w", err)
	}
	if cached := tallyResults(results).cached; cached > 0 {
		timer.End(lintPhase, fmt.Sprintf("%d cached", cached))
	} else {
		timer.End(lintPhase, "")
	}

	exitCode := 0
	for _, r := range results {
		if r.Bag != nil && r.Bag.HasErrors() {
			exitCode = 1
			break
		}
	}

	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	showFixes := suggest || preview

	renderPhase := timer.Begin("render")
	switch format {
	case "pretty":
		prettyOpts := diagfmt.PrettyOpts{
			Color:       useColor,
			Context:     2,
			PathMode:    pathMode,
			ShowNotes:   withNotes,
			ShowFixes:   showFixes,
			ShowPreview: preview,
		}
		renderPrettyResults(os.Stdout, results, fileSet, prettyOpts, fullPath, quiet)
	case "short":
		allDiagnostics := make([]diag.Diagnostic, 0, len(results))
		for _, r := range results {
			if r.Bag == nil {
				continue
			}
			allDiagnostics = append(allDiagnostics, r.Bag.Items()...)
		}
		output := diag.FormatShortDiagnostics(allDiagnostics, fileSet, withNotes)
		if output != "" {
			fmt.Fprintln(os.Stdout, output)
		}
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
			IncludeFixes:     showFixes,
			IncludePreviews:  preview,
		}
		if err := renderJSONResults(os.Stdout, results, fileSet, jsonOpts, fullPath); err != nil {
			return err
		}
	case "sarif":
		merged := diag.NewBag(0)
		for _, r := range results {
			merged.Merge(r.Bag)
		}
		merged.Sort()
		meta := diagfmt.SarifRunMeta{
			ToolName:       "sdlint",
			ToolVersion:    version.Number,
			InvocationArgs: os.Args[1:],
		}
		if err := diagfmt.Sarif(os.Stdout, merged, fileSet, meta); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}
	timer.End(renderPhase, format)

	if showTimings {
		printTimings(results)
		fmt.Fprint(os.Stderr, timer.Summary())
	}

	if exitCode != 0 {
		// Suppress cobra usage output on lint errors
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("") // Silent error - diagnostics already printed
	}
	return nil
}

// renderPrettyResults prints each dirty file under a "== path ==" header
// (single-file runs skip the header) and closes with a summary line.
func renderPrettyResults(w io.Writer, results []driver.FileResult, fileSet *source.FileSet, prettyOpts diagfmt.PrettyOpts, fullPath, quiet bool) {
	shown := 0
	for _, r := range results {
		if r.Bag == nil || r.Bag.Len() == 0 {
			continue
		}
		if shown > 0 {
			fmt.Fprintln(w)
		}
		if len(results) > 1 {
			fmt.Fprintf(w, "== %s ==\n", displayPath(fileSet, r, fullPath))
		}
		diagfmt.Pretty(w, r.Bag, fileSet, prettyOpts)
		shown++
	}
	if !quiet {
		if shown > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, tallyResults(results).String())
	}
}

// renderJSONResults emits one document per run: the bare diagnostics output
// for a single file, a path-keyed object otherwise.
func renderJSONResults(w io.Writer, results []driver.FileResult, fileSet *source.FileSet, jsonOpts diagfmt.JSONOpts, fullPath bool) error {
	if len(results) == 1 {
		if err := diagfmt.JSON(w, results[0].Bag, fileSet, jsonOpts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
		return nil
	}

	output := make(map[string]diagfmt.DiagnosticsOutput, len(results))
	for _, r := range results {
		data, buildErr := diagfmt.BuildDiagnosticsOutput(r.Bag, fileSet, jsonOpts)
		if buildErr != nil {
			return fmt.Errorf("failed to build diagnostics output: %w", buildErr)
		}
		output[displayPath(fileSet, r, fullPath)] = data
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		return fmt.Errorf("failed to encode diagnostics output: %w", err)
	}
	return nil
}
