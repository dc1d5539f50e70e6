package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sdlint/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a project for sdlint",
	Long: `Initialize a project by creating a manifest (sdlint.toml) and an example
schema file (schema/schema.graphql). If [path] is omitted, initializes the
current directory. If a non-existing path is provided, the directory will be
created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

// runInit scaffolds an sdlint project at the target path. A manifest that is
// already present stops the run; an existing schema file is left alone.
func runInit(cmd *cobra.Command, args []string) error {
	target, err := resolveInitTarget(args)
	if err != nil {
		return err
	}
	if err := ensureDir(target); err != nil {
		return err
	}

	manifestPath := filepath.Join(target, config.FileName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	if err := os.WriteFile(manifestPath, []byte(buildStarterManifest()), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	schemaPath := filepath.Join(target, "schema", "schema.graphql")
	createdSchema, err := writeIfAbsent(schemaPath, starterSchema())
	if err != nil {
		return fmt.Errorf("failed to write example schema: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized sdlint project in %s\n", displayDir(target))
	fmt.Fprintf(out, "  - %s\n", config.FileName)
	if createdSchema {
		fmt.Fprintf(out, "  - schema/schema.graphql\n")
	} else {
		fmt.Fprintf(out, "  - schema/schema.graphql (existing)\n")
	}
	return nil
}

// resolveInitTarget turns the optional CLI argument into an absolute
// directory path, defaulting to the working directory.
func resolveInitTarget(args []string) (string, error) {
	if len(args) == 0 {
		return os.Getwd()
	}
	return filepath.Abs(args[0])
}

func ensureDir(path string) error {
	st, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", path, err)
		}
	case err != nil:
		return err
	case !st.IsDir():
		return fmt.Errorf("%q is not a directory", path)
	}
	return nil
}

// writeIfAbsent creates the file and any missing parent directories. It
// reports whether the file was written; an existing file is not touched.
func writeIfAbsent(path, content string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return false, err
	}
	return true, nil
}

// displayDir shortens the target to a working-directory-relative path for the
// success message.
func displayDir(target string) string {
	wd, err := os.Getwd()
	if err != nil {
		return target
	}
	rel, err := filepath.Rel(wd, target)
	if err != nil {
		return target
	}
	return rel
}

// buildStarterManifest returns the minimal manifest written by init. It
// points at the example schema layout and spells out the rule defaults so
// they are one uncomment away.
func buildStarterManifest() string {
	return `# sdlint manifest
schema = ["schema/*.graphql", "schema/*.graphqls", "schema/*.gql"]

# Run only the named rules; leave unset to run everything.
# rules = ["deprecation-date"]

[options.deprecation-date]
argument_name = "deletionDate"
# Year-first dates use this separator: 2030-01-01. Day-first dates are
# always accepted as DD/MM/YYYY.
# separator = "-"
`
}

// starterSchema returns the example SDL written by init, with one deprecated
// field demonstrating the deletion-date convention.
func starterSchema() string {
	return `"""Example schema created by sdlint init."""
type Query {
  "Current server time as an ISO-8601 string."
  serverTime: String!

  serverTimeLegacy: String
    @deprecated(reason: "Use serverTime instead.", deletionDate: "01/01/2030")
}
`
}
