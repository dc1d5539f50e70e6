package diagfmt

import (
	"encoding/json"
	"io"
	"sort"

	"sdlint/internal/diag"
	"sdlint/internal/source"
)

const sarifSchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string        `json:"id"`
	ShortDescription *sarifMessage `json:"shortDescription,omitempty"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	RuleIndex int             `json:"ruleIndex"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
	Fixes     []sarifFix      `json:"fixes,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine,omitempty"`
	EndColumn   uint32 `json:"endColumn,omitempty"`
	CharOffset  uint32 `json:"charOffset"`
	CharLength  uint32 `json:"charLength"`
}

type sarifFix struct {
	Description     sarifMessage          `json:"description"`
	ArtifactChanges []sarifArtifactChange `json:"artifactChanges"`
}

type sarifArtifactChange struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Replacements     []sarifReplacement    `json:"replacements"`
}

type sarifReplacement struct {
	DeletedRegion   sarifRegion   `json:"deletedRegion"`
	InsertedContent *sarifMessage `json:"insertedContent,omitempty"`
}

// Sarif renders diagnostics as a single-run SARIF 2.1.0 log. Reporting
// descriptors are derived from the diagnostic codes present in the bag, in
// first-seen order, so ruleIndex stays stable for a given input.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	items := bag.Items()

	ruleIndex := make(map[diag.Code]int)
	rules := make([]sarifRule, 0)
	results := make([]sarifResult, 0, len(items))

	for i := range items {
		d := &items[i]

		idx, ok := ruleIndex[d.Code]
		if !ok {
			idx = len(rules)
			ruleIndex[d.Code] = idx
			rules = append(rules, sarifRule{
				ID:               d.Code.ID(),
				ShortDescription: &sarifMessage{Text: d.Code.Title()},
			})
		}

		result := sarifResult{
			RuleID:    d.Code.ID(),
			RuleIndex: idx,
			Level:     d.Severity.SarifLevel(),
			Message:   sarifMessage{Text: d.Message},
			Locations: []sarifLocation{makeSarifLocation(fs, d.Primary)},
		}
		for j := range d.Fixes {
			result.Fixes = append(result.Fixes, makeSarifFix(fs, &d.Fixes[j]))
		}
		results = append(results, result)
	}

	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           meta.ToolName,
			Version:        meta.ToolVersion,
			InformationURI: meta.InformationURI,
			Rules:          rules,
		}},
		Results: results,
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{
			Arguments:           meta.InvocationArgs,
			ExecutionSuccessful: true,
		}}
	}

	log := sarifLog{
		Schema:  sarifSchemaURI,
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(log)
}

func makeSarifLocation(fs *source.FileSet, span source.Span) sarifLocation {
	file := fs.Get(span.File)
	return sarifLocation{
		PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{
				URI: file.FormatPath("relative", fs.BaseDir()),
			},
			Region: makeSarifRegion(fs, span),
		},
	}
}

func makeSarifRegion(fs *source.FileSet, span source.Span) sarifRegion {
	startPos, endPos := fs.Resolve(span)
	return sarifRegion{
		StartLine:   startPos.Line,
		StartColumn: startPos.Col,
		EndLine:     endPos.Line,
		EndColumn:   endPos.Col,
		CharOffset:  span.Start,
		CharLength:  span.End - span.Start,
	}
}

func makeSarifFix(fs *source.FileSet, fix *diag.Fix) sarifFix {
	byFile := make(map[source.FileID][]sarifReplacement)
	for _, edit := range fix.Edits {
		repl := sarifReplacement{
			DeletedRegion: makeSarifRegion(fs, edit.Span),
		}
		if edit.NewText != "" {
			repl.InsertedContent = &sarifMessage{Text: edit.NewText}
		}
		byFile[edit.Span.File] = append(byFile[edit.Span.File], repl)
	}

	changes := make([]sarifArtifactChange, 0, len(byFile))
	for fileID, replacements := range byFile {
		file := fs.Get(fileID)
		changes = append(changes, sarifArtifactChange{
			ArtifactLocation: sarifArtifactLocation{
				URI: file.FormatPath("relative", fs.BaseDir()),
			},
			Replacements: replacements,
		})
	}
	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].ArtifactLocation.URI < changes[j].ArtifactLocation.URI
	})

	return sarifFix{
		Description:     sarifMessage{Text: fix.Title},
		ArtifactChanges: changes,
	}
}
