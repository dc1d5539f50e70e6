package diagfmt

// PathMode selects the rendering of file paths in output.
type PathMode uint8

const (
	// PathModeAuto keeps short or relative paths as is and collapses long
	// absolute paths to their basename.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always renders absolute paths.
	PathModeAbsolute
	// PathModeRelative renders paths relative to the file set's base dir.
	PathModeRelative
	// PathModeBasename renders only the file name.
	PathModeBasename
)

// PrettyOpts configures the human-readable renderer.
type PrettyOpts struct {
	Color    bool
	PathMode PathMode

	// Context is the number of extra source lines shown above and below
	// the primary line. Width caps excerpt line length, 0 for unlimited.
	Context uint8
	Width   uint8

	ShowNotes   bool
	ShowFixes   bool
	ShowPreview bool
}

// JSONOpts configures the machine-readable renderer.
type JSONOpts struct {
	PathMode PathMode

	// Max truncates the rendered document, leaving the Bag untouched.
	Max int

	IncludePositions bool // line/col pairs next to byte offsets
	IncludeNotes     bool
	IncludeFixes     bool
	IncludePreviews  bool
}

// SarifRunMeta describes the tool entry of a SARIF run.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InformationURI string
	InvocationArgs []string
}
