// Package observ carries the lightweight instrumentation behind --timings.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one timed slice of a run.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer collects phases in the order they begin.
type Timer struct {
	phases []Phase
}

// NewTimer creates an empty Timer.
func NewTimer() *Timer { return new(Timer) }

// Begin opens a new phase and returns its handle for End.
func (t *Timer) Begin(name string) int {
	idx := len(t.phases)
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return idx
}

// End closes the phase. The note lands next to the duration in Summary,
// so keep it short ("12 files", "3 cached").
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	t.phases[idx].Dur = time.Since(t.phases[idx].Start)
	t.phases[idx].Note = note
}

// Summary renders the phases as an aligned block for human eyes.
func (t *Timer) Summary() string {
	report := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&b, "  %-12s %8.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  // " + p.Note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-12s %8.2f ms\n", "total", report.TotalMS)
	return b.String()
}

// PhaseReport is the serializable view of one phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report aggregates every phase, durations in milliseconds.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report flattens the tracked phases into a Report.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	var total time.Duration
	phases := make([]PhaseReport, 0, len(t.phases))
	for _, p := range t.phases {
		total += p.Dur
		phases = append(phases, PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note})
	}
	return Report{TotalMS: millis(total), Phases: phases}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
