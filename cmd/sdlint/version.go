package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sdlint/internal/version"
)

// versionTagline rides along in both output formats.
const versionTagline = "deprecate with a deadline"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show sdlint build fingerprints",
	RunE:  runVersion,
}

func init() {
	flags := versionCmd.Flags()
	flags.Bool("hash", false, "include git commit hash")
	flags.Bool("message", false, "include git commit message")
	flags.Bool("date", false, "include build timestamp")
	flags.Bool("full", false, "show every recorded bit of build metadata")
	flags.String("format", "pretty", "output format (pretty|json)")
}

type versionPayload struct {
	Tool       string `json:"tool"`
	Version    string `json:"version"`
	Tagline    string `json:"tagline"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
}

func runVersion(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	format, err := flags.GetString("format")
	if err != nil {
		return err
	}
	full, err := flags.GetBool("full")
	if err != nil {
		return err
	}
	var wantHash, wantMessage, wantDate bool
	for _, f := range []struct {
		name string
		dst  *bool
	}{
		{"hash", &wantHash},
		{"message", &wantMessage},
		{"date", &wantDate},
	} {
		on, err := flags.GetBool(f.name)
		if err != nil {
			return err
		}
		*f.dst = on || full
	}

	number := strings.TrimSpace(version.Number)
	if number == "" {
		number = "dev"
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		payload := versionPayload{Tool: "sdlint", Version: number, Tagline: versionTagline}
		if wantHash {
			payload.GitCommit = orUnknown(version.GitCommit)
		}
		if wantMessage {
			payload.GitMessage = orUnknown(version.GitMessage)
		}
		if wantDate {
			payload.BuildDate = orUnknown(version.BuildDate)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case "pretty":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	// The pretty header prefers the colorized form when a terminal will show it.
	display := strings.TrimSpace(version.Version)
	if display == "" {
		display = number
	}
	fmt.Fprintf(out, "sdlint %s - %s\n", display, versionTagline)

	shown := 0
	if wantHash {
		fmt.Fprintf(out, "commit: %s\n", orUnknown(version.GitCommit))
		shown++
	}
	if wantMessage {
		fmt.Fprintf(out, "message: %s\n", orUnknown(version.GitMessage))
		shown++
	}
	if wantDate {
		fmt.Fprintf(out, "built:  %s\n", orUnknown(version.BuildDate))
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(out, "set --hash, --message, --date, or --full for more build trivia")
	}
	return nil
}

// orUnknown keeps unset linker values readable.
func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
