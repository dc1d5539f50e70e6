// Package prof wires the runtime profilers behind a single start/stop pair
// so commands can expose profiling flags without tracking file handles.
package prof

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Options names the output path for each profiler. An empty path leaves the
// corresponding profiler off.
type Options struct {
	CPUPath   string
	MemPath   string
	TracePath string
}

// Session owns the files backing the active profilers.
type Session struct {
	cpu     *os.File
	trace   *os.File
	memPath string
	stopped bool
}

// Start enables the requested profilers. On failure every profiler that
// already started is torn down again, so a failed Start never leaks a file.
func Start(opts Options) (*Session, error) {
	s := &Session{memPath: opts.MemPath}
	if opts.CPUPath != "" {
		f, err := os.Create(opts.CPUPath)
		if err != nil {
			return nil, fmt.Errorf("create cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("start cpu profile: %w", err)
		}
		s.cpu = f
	}
	if opts.TracePath != "" {
		f, err := os.Create(opts.TracePath)
		if err != nil {
			s.shutdown()
			return nil, fmt.Errorf("create runtime trace: %w", err)
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			s.shutdown()
			return nil, fmt.Errorf("start runtime trace: %w", err)
		}
		s.trace = f
	}
	return s, nil
}

// Stop tears the profilers down in reverse start order and writes the heap
// profile last, once the run's allocations have settled. Safe to call more
// than once.
func (s *Session) Stop() error {
	if s == nil || s.stopped {
		return nil
	}
	s.stopped = true
	s.shutdown()
	if s.memPath != "" {
		return writeHeapProfile(s.memPath)
	}
	return nil
}

func (s *Session) shutdown() {
	if s.trace != nil {
		trace.Stop()
		_ = s.trace.Close()
		s.trace = nil
	}
	if s.cpu != nil {
		pprof.StopCPUProfile()
		_ = s.cpu.Close()
		s.cpu = nil
	}
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create heap profile: %w", err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write heap profile: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close heap profile: %w", err)
	}
	return nil
}
