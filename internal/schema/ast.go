package schema

import (
	"sdlint/internal/source"
)

// MemberKind tags the kind of schema element a directive can be attached to.
type MemberKind uint8

const (
	MemberType MemberKind = iota
	MemberField
	MemberEnumValue
	MemberArgument
)

func (k MemberKind) String() string {
	switch k {
	case MemberType:
		return "type"
	case MemberField:
		return "field"
	case MemberEnumValue:
		return "enum value"
	case MemberArgument:
		return "argument"
	}
	return "member"
}

// Member is one schema element: a type definition, a field (including input
// object fields), an enum value, or a field argument. Span covers the
// member's entire textual definition, description and directives included,
// so a fix can delete the member outright.
type Member struct {
	Kind       MemberKind
	Name       string
	Container  string // enclosing type (or "Type.field" for arguments); empty for type definitions
	NameSpan   source.Span
	Span       source.Span
	Directives []*Directive
}

// Directive is one directive application attached to a member. Parent is a
// non-owning back-reference established at load time; rules only read it.
type Directive struct {
	Name     string
	Args     []Argument
	NameSpan source.Span // "@name"
	Span     source.Span // "@name(...)" including arguments
	Parent   *Member
}

// Argument returns the named argument, if present. Argument names within one
// directive application are assumed unique.
func (d *Directive) Argument(name string) (*Argument, bool) {
	for i := range d.Args {
		if d.Args[i].Name == name {
			return &d.Args[i], true
		}
	}
	return nil, false
}

// Argument is a named literal value inside a directive application.
type Argument struct {
	Name  string
	Value *Value
}

// ValueKind tags the literal value union.
type ValueKind uint8

const (
	ValueString ValueKind = iota
	ValueBlockString
	ValueInt
	ValueFloat
	ValueBoolean
	ValueNull
	ValueEnum
	ValueList
	ValueObject
)

// ChildValue is a list element or an object field (Name is empty for list
// elements).
type ChildValue struct {
	Name  string
	Value *Value
}

// Value is a literal value node. Raw holds the unescaped literal text for
// scalars; Children hold list elements and object fields.
type Value struct {
	Kind     ValueKind
	Raw      string
	Span     source.Span
	Children []ChildValue
}

// Document is the lint view of one parsed SDL file: every member in source
// order (types first, then their fields, arguments and enum values).
type Document struct {
	File    source.FileID
	Members []*Member
}

// DirectivesNamed returns every application of the named directive in
// document order.
func (d *Document) DirectivesNamed(name string) []*Directive {
	var out []*Directive
	for _, m := range d.Members {
		for _, dir := range m.Directives {
			if dir.Name == name {
				out = append(out, dir)
			}
		}
	}
	return out
}
