package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IsSchemaFile reports whether the path carries one of the SDL extensions.
func IsSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".graphql", ".graphqls", ".gql":
		return true
	}
	return false
}

// listSchemaFiles walks dir and collects every SDL file under it.
func listSchemaFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsSchemaFile(path) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return files, nil
}

// ExpandTargets resolves what the user asked to lint into a sorted,
// deduplicated file list. Each arg may be a file (taken as-is), a directory
// (walked recursively for SDL files), or a glob pattern. When args is empty
// the manifest patterns are used instead, resolved relative to baseDir.
func ExpandTargets(args, patterns []string, baseDir string) ([]string, error) {
	specs := args
	relativeTo := ""
	if len(specs) == 0 {
		specs = patterns
		relativeTo = baseDir
	}

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, spec := range specs {
		resolved := spec
		if relativeTo != "" && !filepath.IsAbs(spec) {
			resolved = filepath.Join(relativeTo, spec)
		}

		if info, err := os.Stat(resolved); err == nil {
			if info.IsDir() {
				found, err := listSchemaFiles(resolved)
				if err != nil {
					return nil, err
				}
				for _, f := range found {
					add(f)
				}
				continue
			}
			add(resolved)
			continue
		}

		matches, err := filepath.Glob(resolved)
		if err != nil {
			return nil, fmt.Errorf("bad schema pattern %q: %w", spec, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no schema files match %q", spec)
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.IsDir() {
				found, err := listSchemaFiles(m)
				if err != nil {
					return nil, err
				}
				for _, f := range found {
					add(f)
				}
				continue
			}
			add(m)
		}
	}

	sort.Strings(files)
	return files, nil
}
