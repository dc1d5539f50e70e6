// Package driver orchestrates lint runs: it loads schema files, fans the
// parse/lint work out across workers, and consults the persistent result
// cache so unchanged files skip the parser entirely.
package driver

import (
	"context"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"sdlint/internal/diag"
	"sdlint/internal/pipeline"
	"sdlint/internal/rules"
	"sdlint/internal/schema"
	"sdlint/internal/source"
)

// DefaultMaxDiagnostics caps per-file bags when Options leaves the limit
// unset.
const DefaultMaxDiagnostics = 100

// Options configures a lint run.
type Options struct {
	// MaxDiagnostics caps each per-file bag; <=0 applies
	// DefaultMaxDiagnostics.
	MaxDiagnostics int
	// Jobs bounds worker parallelism; <=0 uses GOMAXPROCS.
	Jobs int
	// NoWarnings drops warning and info diagnostics after collection.
	NoWarnings bool
	// WarningsAsErrors promotes warnings to errors after collection.
	WarningsAsErrors bool

	// Registry supplies the rules; nil means rules.Default().
	Registry *rules.Registry
	// Rules restricts the run to the named rules; empty enables all.
	Rules []string
	// RuleOptions carries the decoded [options.<rule>] manifest tables.
	RuleOptions map[string]map[string]any

	// Now is the instant used for date comparisons; zero means time.Now().
	Now time.Time

	// Cache persists per-file verdicts across runs; nil disables it.
	Cache *ResultCache
	// ConfigStamp is the manifest fingerprint mixed into cache keys.
	ConfigStamp string

	// Sink receives progress events; nil disables reporting.
	Sink pipeline.Sink
}

// FileResult is the outcome for one linted file.
type FileResult struct {
	Path    string
	FileID  source.FileID
	Bag     *diag.Bag
	Cached  bool
	Elapsed time.Duration
}

// LintFiles loads every path into fileSet and lints them in parallel.
// Per-file problems (unreadable files, parse errors, rule findings) land in
// the result bags; the returned error is reserved for bad rule configuration
// and cancellation.
func LintFiles(ctx context.Context, fileSet *source.FileSet, paths []string, opts Options) ([]FileResult, error) {
	registry := opts.Registry
	if registry == nil {
		registry = rules.Default()
	}
	engine := rules.NewEngine(registry)
	if err := engine.Enable(opts.Rules); err != nil {
		return nil, err
	}
	if err := engine.Configure(opts.RuleOptions); err != nil {
		return nil, err
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	maxDiagnostics := opts.MaxDiagnostics
	if maxDiagnostics <= 0 {
		maxDiagnostics = DefaultMaxDiagnostics
	}

	// FileSet is not safe for concurrent mutation, so all loads happen
	// before the fan-out. Unreadable paths get a virtual entry so their
	// diagnostics still resolve to a file.
	fileIDs := make(map[string]source.FileID, len(paths))
	loadErrors := make(map[string]error, len(paths))
	for _, p := range paths {
		pipeline.Emit(opts.Sink, pipeline.Event{File: p, Stage: pipeline.StageLoad, Status: pipeline.StatusWorking})
		id, err := fileSet.Load(p)
		if err != nil {
			loadErrors[p] = err
			fileIDs[p] = fileSet.AddVirtual(p, nil)
			pipeline.Emit(opts.Sink, pipeline.Event{File: p, Stage: pipeline.StageLoad, Status: pipeline.StatusError, Err: err})
			continue
		}
		fileIDs[p] = id
		pipeline.Emit(opts.Sink, pipeline.Event{File: p, Stage: pipeline.StageLoad, Status: pipeline.StatusDone})
	}

	if len(paths) == 0 {
		return nil, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	stamp := runStamp{
		config: opts.ConfigStamp,
		rules:  enabledRuleNames(registry, opts.Rules),
		day:    now.Format("2006-01-02"),
		max:    maxDiagnostics,
	}

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func(i int, path string) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				started := time.Now()
				bag := diag.NewBag(maxDiagnostics)
				fileID := fileIDs[path]

				if loadErr, hadErr := loadErrors[path]; hadErr {
					bag.Add(diag.NewError(diag.IOLoadFileError,
						source.Span{File: fileID},
						"failed to load file: "+loadErr.Error()))
					results[i] = FileResult{Path: path, FileID: fileID, Bag: bag, Elapsed: time.Since(started)}
					return nil
				}

				file := fileSet.Get(fileID)
				key := resultKey(file.Hash, stamp)

				if opts.Cache != nil {
					var payload resultPayload
					if hit, err := opts.Cache.Get(key, &payload); err == nil && hit &&
						payload.ContentHash == file.Hash && payload.restore(fileID, bag) {
						elapsed := time.Since(started)
						results[i] = FileResult{Path: path, FileID: fileID, Bag: bag, Cached: true, Elapsed: elapsed}
						pipeline.Emit(opts.Sink, pipeline.Event{
							File: path, Stage: pipeline.StageLint, Status: pipeline.StatusCached,
							Elapsed: elapsed,
						})
						return nil
					}
				}

				pipeline.Emit(opts.Sink, pipeline.Event{File: path, Stage: pipeline.StageParse, Status: pipeline.StatusWorking})
				doc := schema.Load(fileSet, fileID, bag)
				pipeline.Emit(opts.Sink, pipeline.Event{File: path, Stage: pipeline.StageParse, Status: pipeline.StatusDone})

				if doc != nil {
					pipeline.Emit(opts.Sink, pipeline.Event{File: path, Stage: pipeline.StageLint, Status: pipeline.StatusWorking})
					engine.Run(rules.NewContext(fileSet, now, bag), doc)
				}

				if opts.Cache != nil {
					// Best effort: a failed write only costs the next run a reparse.
					_ = opts.Cache.Put(key, newResultPayload(file.Hash, bag.Items()))
				}

				status := pipeline.StatusDone
				if bag.HasErrors() {
					status = pipeline.StatusError
				}
				elapsed := time.Since(started)
				results[i] = FileResult{Path: path, FileID: fileID, Bag: bag, Elapsed: elapsed}
				pipeline.Emit(opts.Sink, pipeline.Event{
					File: path, Stage: pipeline.StageLint, Status: status,
					Elapsed: elapsed,
				})
				return nil
			}
		}(i, path))
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	// Warning handling happens after collection so cached payloads stay
	// independent of the run's flags.
	for i := range results {
		bag := results[i].Bag
		if bag == nil {
			continue
		}
		if opts.NoWarnings {
			bag.Filter(func(d *diag.Diagnostic) bool {
				return d.Severity != diag.SevWarning && d.Severity != diag.SevInfo
			})
		}
		if opts.WarningsAsErrors {
			bag.Transform(func(d *diag.Diagnostic) *diag.Diagnostic {
				if d.Severity == diag.SevWarning {
					d.Severity = diag.SevError
				}
				return d
			})
			bag.Sort()
		}
	}

	return results, nil
}

// LintFile is the single-file form of LintFiles.
func LintFile(ctx context.Context, fileSet *source.FileSet, path string, opts Options) (FileResult, error) {
	results, err := LintFiles(ctx, fileSet, []string{path}, opts)
	if err != nil {
		return FileResult{}, err
	}
	return results[0], nil
}

// enabledRuleNames returns the effective rule set, sorted, for cache keying.
func enabledRuleNames(registry *rules.Registry, enabled []string) []string {
	if len(enabled) == 0 {
		return registry.Names()
	}
	names := append([]string(nil), enabled...)
	sort.Strings(names)
	return names
}
