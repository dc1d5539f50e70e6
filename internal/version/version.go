package version

import (
	"strings"

	"github.com/fatih/color"
)

// Build-time metadata for the sdlint CLI. Override with
// -ldflags "-X sdlint/internal/version.Number=..." and friends.

var (
	// Number is the plain semantic version, for SARIF logs and JSON payloads
	// where ANSI codes would be noise.
	Number = "0.1.0-dev"

	// Version is the colorized rendering shown on the terminal.
	Version = colorize(Number)

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// colorize paints the major, minor and patch components in distinct colors.
// Pre-release suffixes stay plain; anything that is not a three-part semver
// comes back untouched.
func colorize(v string) string {
	parts := strings.SplitN(v, ".", 3)
	if len(parts) != 3 {
		return v
	}
	patch, suffix, pre := strings.Cut(parts[2], "-")
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(patch)
	if pre {
		out += "-" + suffix
	}
	return out
}
