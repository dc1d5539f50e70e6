package diag

import "fmt"

// Code identifies a diagnostic kind. The thousands digit selects the family
// (2 syntax, 3 lint, 4 I/O, 5 configuration); the rendered ID keeps the full
// number, so codes stay stable when rules move between releases.
type Code uint16

const (
	UnknownCode Code = 0

	// Schema syntax (reported while parsing SDL)
	SynInfo       Code = 2000
	SynParseError Code = 2001

	// Lint rules
	LntInfo                  Code = 3000
	LntRequireDeletionDate   Code = 3001
	LntBadDeletionDateFormat Code = 3002
	LntInvalidDeletionDate   Code = 3003
	LntPastDeletionDate      Code = 3004

	// I/O
	IOLoadFileError Code = 4001

	// Configuration
	CfgInfo               Code = 5000
	CfgParseError         Code = 5001
	CfgUnknownRule        Code = 5002
	CfgBadSchemaPattern   Code = 5003
	CfgInvalidRuleOptions Code = 5004
)

var codeTitles = map[Code]string{
	UnknownCode:              "Unknown error",
	SynInfo:                  "Syntax information",
	SynParseError:            "Schema parse error",
	LntInfo:                  "Lint information",
	LntRequireDeletionDate:   "Deprecation requires a deletion date",
	LntBadDeletionDateFormat: "Malformed deletion date",
	LntInvalidDeletionDate:   "Impossible calendar date",
	LntPastDeletionDate:      "Deprecated member past its deletion date",
	IOLoadFileError:          "I/O load file error",
	CfgInfo:                  "Configuration information",
	CfgParseError:            "Configuration parse error",
	CfgUnknownRule:           "Unknown rule name",
	CfgBadSchemaPattern:      "Bad schema path pattern",
	CfgInvalidRuleOptions:    "Invalid rule options",
}

var codeFamilies = map[Code]string{
	2: "SYN",
	3: "LNT",
	4: "IO",
	5: "CFG",
}

// ID renders the stable identifier, e.g. LNT3001. Codes outside every known
// family render as E0000.
func (c Code) ID() string {
	family, ok := codeFamilies[c/1000]
	if !ok {
		return "E0000"
	}
	return fmt.Sprintf("%s%04d", family, uint16(c))
}

// Title returns the short human description of the code.
func (c Code) Title() string {
	if title, ok := codeTitles[c]; ok {
		return title
	}
	return codeTitles[UnknownCode]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
