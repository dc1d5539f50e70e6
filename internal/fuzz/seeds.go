package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10 // clamp for the shared corpus

// sdlSeeds is the inline corpus: small schemas covering every member kind a
// directive can land on, plus the shapes that stress the extent scanner
// (descriptions, block strings, comments, nested argument values).
var sdlSeeds = []string{
	"",
	"type Query { ping: Boolean }",
	"type User {\n  firstname: String @deprecated(reason: \"use name\", deletionDate: \"25/12/2022\")\n  name: String\n}\n",
	"enum Color { RED @deprecated(deletionDate: \"2023-01-15\") GREEN }",
	"input Filter { legacy: Boolean @deprecated }",
	"type Query { search(filter: String @deprecated(deletionDate: \"31/02/2022\")): [String] }",
	"\"\"\"\nKeeps the extent scanner honest: @deprecated inside a description.\n\"\"\"\ntype Old @deprecated(deletionDate: \"01/01/2020\") { a: Int }",
	"type T { a: Int # comment with } brace\n b: Int }",
	"directive @deprecated(reason: String, deletionDate: String) on FIELD_DEFINITION | ENUM_VALUE",
	"extend type User { nick: String @deprecated(deletionDate: \"not-a-date\") }",
	"schema { query: Query }",
	"type M { f: Int @meta(conf: {list: [1, \")\", 2], flag: true}) }",
	"union Either = Left | Right",
	"type Broken {",
}

var seedExts = map[string]bool{
	".graphql":  true,
	".graphqls": true,
	".gql":      true,
}

// seedCorpus loads the inline seeds and every SDL fixture under testdata,
// each clamped so a pathological fixture stays cheap.
func seedCorpus(f *testing.F) {
	for _, s := range sdlSeeds {
		f.Add([]byte(s))
	}

	walk := func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || !seedExts[filepath.Ext(path)] {
			return nil
		}
		// #nosec G304 -- path comes from the repository testdata walk
		src, err := os.ReadFile(path)
		if err == nil {
			f.Add(clamp(src))
		}
		return nil
	}
	if _, err := os.Stat("testdata"); err == nil {
		_ = filepath.WalkDir("testdata", walk)
	}
}

func clamp(src []byte) []byte {
	if len(src) > maxSeedBytes {
		src = src[:maxSeedBytes]
	}
	return append([]byte(nil), src...)
}
