package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"sdlint/internal/diag"
	"sdlint/internal/source"
)

// Current payload schema - increment when resultPayload format changes.
const resultCacheSchema uint16 = 1

// ResultCache persists per-file lint verdicts on disk, keyed by a digest of
// everything that can change them. Thread-safe for concurrent access.
type ResultCache struct {
	mu  sync.RWMutex
	dir string
}

// resultPayload is the serialized form of one file's verdicts. Spans are
// stored as offsets only and rebound to the live FileID on restore, so a
// payload is valid across runs as long as the content hash matches.
type resultPayload struct {
	Schema      uint16
	ContentHash [32]byte
	Diagnostics []cachedDiagnostic
}

type cachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
	Params   map[string]string
	Notes    []cachedNote
	Fixes    []cachedFix
}

type cachedNote struct {
	Start uint32
	End   uint32
	Msg   string
}

type cachedFix struct {
	ID            string
	Title         string
	Kind          uint8
	Applicability uint8
	Preferred     bool
	Edits         []cachedEdit
}

type cachedEdit struct {
	Start   uint32
	End     uint32
	NewText string
	OldText string
}

// OpenResultCache initializes a result cache at the standard location:
// $XDG_CACHE_HOME/<app>, falling back to ~/.cache/<app>.
func OpenResultCache(app string) (*ResultCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ResultCache{dir: dir}, nil
}

func (c *ResultCache) pathFor(key [32]byte) string {
	return filepath.Join(c.dir, "results", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and writes a payload, replacing any previous entry
// atomically via tempfile+rename.
func (c *ResultCache) Put(key [32]byte, payload *resultPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// gone already when the rename succeeded
		if removeErr := os.Remove(f.Name()); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "failed to remove temp file: %v\n", removeErr)
		}
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes the payload stored under key. The boolean
// reports whether an entry existed.
func (c *ResultCache) Get(key [32]byte, out *resultPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		_ = f.Close()
	}()
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll invalidates every cached verdict, useful after format changes.
func (c *ResultCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// runStamp collects the run parameters that participate in cache keys.
type runStamp struct {
	config string
	rules  []string
	day    string
	max    int
}

// resultKey mixes everything that can legally change a verdict: the file
// bytes, the manifest fingerprint, the enabled rule set, the linting day
// (past-date verdicts flip at midnight UTC), the diagnostics cap, and the
// payload schema.
func resultKey(contentHash [32]byte, stamp runStamp) [32]byte {
	h := sha256.New()
	h.Write(contentHash[:])
	fmt.Fprintf(h, "|cfg=%s|rules=%s|day=%s|max=%d|schema=%d",
		stamp.config, strings.Join(stamp.rules, ","), stamp.day, stamp.max, resultCacheSchema)
	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}

// newResultPayload converts live diagnostics into their serialized form.
func newResultPayload(contentHash [32]byte, items []diag.Diagnostic) *resultPayload {
	payload := &resultPayload{
		Schema:      resultCacheSchema,
		ContentHash: contentHash,
	}
	payload.Diagnostics = make([]cachedDiagnostic, len(items))
	for i := range items {
		d := &items[i]
		cd := cachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
			Params:   d.Params,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, cachedNote{Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		for _, fx := range d.Fixes {
			cf := cachedFix{
				ID:            fx.ID,
				Title:         fx.Title,
				Kind:          uint8(fx.Kind),
				Applicability: uint8(fx.Applicability),
				Preferred:     fx.IsPreferred,
			}
			for _, e := range fx.Edits {
				cf.Edits = append(cf.Edits, cachedEdit{
					Start:   e.Span.Start,
					End:     e.Span.End,
					NewText: e.NewText,
					OldText: e.OldText,
				})
			}
			cd.Fixes = append(cd.Fixes, cf)
		}
		payload.Diagnostics[i] = cd
	}
	return payload
}

// restore rebinds the payload's diagnostics to the given file and adds them
// to bag. It reports false when the payload schema is stale, without
// touching the bag.
func (p *resultPayload) restore(id source.FileID, bag *diag.Bag) bool {
	if p.Schema != resultCacheSchema {
		return false
	}
	for i := range p.Diagnostics {
		cd := &p.Diagnostics[i]
		d := diag.Diagnostic{
			Severity: diag.Severity(cd.Severity),
			Code:     diag.Code(cd.Code),
			Message:  cd.Message,
			Primary:  source.Span{File: id, Start: cd.Start, End: cd.End},
			Params:   cd.Params,
		}
		for _, n := range cd.Notes {
			d.Notes = append(d.Notes, diag.Note{
				Span: source.Span{File: id, Start: n.Start, End: n.End},
				Msg:  n.Msg,
			})
		}
		for _, cf := range cd.Fixes {
			fx := diag.Fix{
				ID:            cf.ID,
				Title:         cf.Title,
				Kind:          diag.FixKind(cf.Kind),
				Applicability: diag.FixApplicability(cf.Applicability),
				IsPreferred:   cf.Preferred,
			}
			for _, e := range cf.Edits {
				fx.Edits = append(fx.Edits, diag.TextEdit{
					Span:    source.Span{File: id, Start: e.Start, End: e.End},
					NewText: e.NewText,
					OldText: e.OldText,
				})
			}
			d.Fixes = append(d.Fixes, fx)
		}
		bag.Add(d)
	}
	return true
}
