// Package config loads sdlint.toml, the linter's optional manifest. The
// manifest is discovered by walking up from the start directory, so running
// sdlint anywhere inside a project picks up the project's settings.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file sdlint looks for.
const FileName = "sdlint.toml"

// Config mirrors the manifest contents. Per-rule option tables stay raw
// until a rule claims them.
type Config struct {
	Schema  []string                  `toml:"schema"`
	Rules   []string                  `toml:"rules"`
	Options map[string]toml.Primitive `toml:"options"`
}

// File is a loaded manifest: the decoded config plus the metadata needed to
// finish decoding per-rule option tables.
type File struct {
	Path   string // absolute manifest path; empty for the built-in defaults
	Root   string // directory containing the manifest
	Config Config

	meta toml.MetaData
}

// Default returns the configuration used when no manifest exists: no schema
// patterns, every registered rule enabled, no options.
func Default() *File {
	return &File{}
}

// Find walks from startDir to the filesystem root looking for sdlint.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes the manifest at path. Keys outside the known schema are
// rejected; the contents of [options.*] tables are validated later, when the
// owning rule decodes them.
func Load(path string) (*File, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	for _, key := range meta.Undecoded() {
		// keys under options.<rule> are Primitives, decoded by the rule
		if len(key) >= 2 && key[0] == "options" {
			continue
		}
		return nil, fmt.Errorf("%s: unknown key %q", path, key.String())
	}
	if meta.IsDefined("rules") {
		for _, name := range cfg.Rules {
			if strings.TrimSpace(name) == "" {
				return nil, fmt.Errorf("%s: rules entries must not be empty", path)
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &File{
		Path:   abs,
		Root:   filepath.Dir(abs),
		Config: cfg,
		meta:   meta,
	}, nil
}

// Discover finds and loads the nearest manifest above startDir. The second
// result reports whether a manifest was found.
func Discover(startDir string) (*File, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return Default(), ok, err
	}
	f, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return f, true, nil
}

// OptionTables finishes decoding every [options.<rule>] table into plain
// maps keyed by rule name.
func (f *File) OptionTables() (map[string]map[string]any, error) {
	if len(f.Config.Options) == 0 {
		return nil, nil
	}
	out := make(map[string]map[string]any, len(f.Config.Options))
	for name, prim := range f.Config.Options {
		var opts map[string]any
		if err := f.meta.PrimitiveDecode(prim, &opts); err != nil {
			return nil, fmt.Errorf("%s: [options.%s]: %w", f.Path, name, err)
		}
		out[name] = opts
	}
	return out, nil
}

// RuleNames returns every rule name mentioned by the manifest: the enabled
// list plus every [options.*] table, deduplicated and sorted. The caller
// checks them against the registry.
func (f *File) RuleNames() []string {
	seen := make(map[string]bool)
	for _, name := range f.Config.Rules {
		seen[name] = true
	}
	for name := range f.Config.Options {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fingerprint returns a short stable hash of the effective configuration.
// It participates in the result cache key, so cached verdicts die with the
// settings that produced them.
func (f *File) Fingerprint() (string, error) {
	tables, err := f.OptionTables()
	if err != nil {
		return "", err
	}

	h := sha256.New()
	for _, pattern := range f.Config.Schema {
		fmt.Fprintf(h, "schema=%s\n", pattern)
	}
	for _, name := range f.Config.Rules {
		fmt.Fprintf(h, "rule=%s\n", name)
	}
	ruleNames := make([]string, 0, len(tables))
	for name := range tables {
		ruleNames = append(ruleNames, name)
	}
	sort.Strings(ruleNames)
	for _, name := range ruleNames {
		fmt.Fprintf(h, "options.%s=", name)
		writeCanonical(h, tables[name])
		io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}

// writeCanonical renders a decoded TOML value deterministically: map keys
// sorted, slices in order.
func writeCanonical(w io.Writer, v any) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		io.WriteString(w, "{")
		for i, k := range keys {
			if i > 0 {
				io.WriteString(w, ",")
			}
			fmt.Fprintf(w, "%s:", k)
			writeCanonical(w, val[k])
		}
		io.WriteString(w, "}")
	case []any:
		io.WriteString(w, "[")
		for i, item := range val {
			if i > 0 {
				io.WriteString(w, ",")
			}
			writeCanonical(w, item)
		}
		io.WriteString(w, "]")
	default:
		fmt.Fprintf(w, "%v", val)
	}
}
