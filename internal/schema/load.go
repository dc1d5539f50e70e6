package schema

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"

	"sdlint/internal/diag"
	"sdlint/internal/source"
)

// Load parses one SDL file and adapts the parser output into a Document.
// A parse failure is reported into bag and yields a nil document.
func Load(fileSet *source.FileSet, id source.FileID, bag *diag.Bag) *Document {
	file := fileSet.Get(id)
	doc, err := parser.ParseSchema(&ast.Source{Name: file.Path, Input: string(file.Content)})
	if err != nil {
		bag.Add(parseErrorDiagnostic(file, id, err))
		return nil
	}
	return adapt(doc, file.Content, id)
}

func parseErrorDiagnostic(file *source.File, id source.FileID, err error) diag.Diagnostic {
	span := source.Span{File: id}
	msg := err.Error()
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		msg = gqlErr.Message
		if len(gqlErr.Locations) > 0 {
			span = spanAt(file, id, gqlErr.Locations[0].Line, gqlErr.Locations[0].Column)
		}
	}
	return diag.NewError(diag.SynParseError, span, msg)
}

// spanAt converts a 1-based line/column pair into a one-byte span.
func spanAt(file *source.File, id source.FileID, line, col int) source.Span {
	off := 0
	switch {
	case line <= 1:
	case line-2 < len(file.LineIdx):
		off = int(file.LineIdx[line-2]) + 1
	default:
		off = len(file.Content)
	}
	off += col - 1
	if off < 0 {
		off = 0
	}
	if off > len(file.Content) {
		off = len(file.Content)
	}
	end := off
	if end < len(file.Content) {
		end = off + 1
	}
	start32, err := safecast.Conv[uint32](off)
	if err != nil {
		panic(fmt.Errorf("span start overflow: %w", err))
	}
	end32, err := safecast.Conv[uint32](end)
	if err != nil {
		panic(fmt.Errorf("span end overflow: %w", err))
	}
	return source.Span{File: id, Start: start32, End: end32}
}

// offsets maps the parser's rune offsets back to byte offsets. Pure ASCII
// content needs no table.
type offsets struct {
	toByte []int
}

func newOffsets(content []byte) *offsets {
	ascii := true
	for _, b := range content {
		if b >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return &offsets{}
	}
	idx := make([]int, 0, len(content)+1)
	for i := range string(content) {
		idx = append(idx, i)
	}
	idx = append(idx, len(content))
	return &offsets{toByte: idx}
}

func (o *offsets) byteOff(runeOff int) int {
	if o.toByte == nil {
		return runeOff
	}
	if runeOff < 0 {
		return 0
	}
	if runeOff >= len(o.toByte) {
		return o.toByte[len(o.toByte)-1]
	}
	return o.toByte[runeOff]
}

type docBuilder struct {
	content []byte
	file    source.FileID
	off     *offsets
	out     *Document

	topStarts []int // sorted start offsets of every top-level construct
	topEnds   []int // extent ends aligned with topStarts
}

func adapt(doc *ast.SchemaDocument, content []byte, id source.FileID) *Document {
	b := &docBuilder{
		content: content,
		file:    id,
		off:     newOffsets(content),
		out:     &Document{File: id},
	}

	type construct struct {
		start  int
		def    *ast.Definition
		dirDef *ast.DirectiveDefinition
	}
	var work []construct

	for _, def := range doc.Definitions {
		work = append(work, construct{start: b.pos(def.Position), def: def})
	}
	for _, def := range doc.Extensions {
		work = append(work, construct{start: b.pos(def.Position), def: def})
	}
	for _, def := range doc.Directives {
		work = append(work, construct{start: b.pos(def.Position), dirDef: def})
	}
	sort.Slice(work, func(i, j int) bool { return work[i].start < work[j].start })

	// Schema blocks produce no members but still bound their neighbours.
	for _, c := range work {
		b.topStarts = append(b.topStarts, c.start)
	}
	for _, s := range doc.Schema {
		b.topStarts = append(b.topStarts, b.pos(s.Position))
	}
	for _, s := range doc.SchemaExtension {
		b.topStarts = append(b.topStarts, b.pos(s.Position))
	}
	sort.Ints(b.topStarts)
	b.topEnds = make([]int, len(b.topStarts))
	for i, s := range b.topStarts {
		limit := len(content)
		if i+1 < len(b.topStarts) {
			limit = b.topStarts[i+1]
		}
		b.topEnds[i] = memberEnd(content, s, limit)
	}

	for _, c := range work {
		switch {
		case c.def != nil:
			b.definition(c.def)
		case c.dirDef != nil:
			b.directiveDefinition(c.dirDef)
		}
	}
	return b.out
}

// extent returns the precomputed end and the description start for the
// top-level construct beginning at start.
func (b *docBuilder) extent(start int) (descStart, end int) {
	i := sort.SearchInts(b.topStarts, start)
	if i >= len(b.topStarts) || b.topStarts[i] != start {
		return start, memberEnd(b.content, start, len(b.content))
	}
	from := 0
	if i > 0 {
		from = b.topEnds[i-1]
	}
	return scanDescStart(b.content, from, start), b.topEnds[i]
}

func (b *docBuilder) definition(def *ast.Definition) {
	start := b.pos(def.Position)
	descStart, end := b.extent(start)

	m := &Member{
		Kind:     MemberType,
		Name:     def.Name,
		NameSpan: b.identSpanAt(start, end, def.Name),
		Span:     b.span(descStart, end),
	}
	m.Directives = b.directives(def.Directives, m)
	b.out.Members = append(b.out.Members, m)

	if len(def.Fields) > 0 {
		b.fields(def, start, end)
	}
	if len(def.EnumValues) > 0 {
		b.enumValues(def, start, end)
	}
}

func (b *docBuilder) fields(def *ast.Definition, defStart, defEnd int) {
	prevEnd := defStart
	if open := scanOpen(b.content, defStart, defEnd, '{'); open >= 0 {
		prevEnd = open + 1
	}
	for i, f := range def.Fields {
		fStart := b.pos(f.Position)
		limit := defEnd
		if i+1 < len(def.Fields) {
			limit = b.pos(def.Fields[i+1].Position)
		}
		fEnd := memberEnd(b.content, fStart, limit)
		descStart := scanDescStart(b.content, prevEnd, fStart)

		m := &Member{
			Kind:      MemberField,
			Name:      f.Name,
			Container: def.Name,
			NameSpan:  b.identSpanAt(fStart, fEnd, f.Name),
			Span:      b.span(descStart, fEnd),
		}
		m.Directives = b.directives(f.Directives, m)
		b.out.Members = append(b.out.Members, m)

		b.arguments(f.Arguments, def.Name+"."+f.Name, fStart, fEnd)
		prevEnd = fEnd
	}
}

func (b *docBuilder) enumValues(def *ast.Definition, defStart, defEnd int) {
	prevEnd := defStart
	if open := scanOpen(b.content, defStart, defEnd, '{'); open >= 0 {
		prevEnd = open + 1
	}
	for i, ev := range def.EnumValues {
		vStart := b.pos(ev.Position)
		limit := defEnd
		if i+1 < len(def.EnumValues) {
			limit = b.pos(def.EnumValues[i+1].Position)
		}
		vEnd := memberEnd(b.content, vStart, limit)
		descStart := scanDescStart(b.content, prevEnd, vStart)

		m := &Member{
			Kind:      MemberEnumValue,
			Name:      ev.Name,
			Container: def.Name,
			NameSpan:  b.identSpanAt(vStart, vEnd, ev.Name),
			Span:      b.span(descStart, vEnd),
		}
		m.Directives = b.directives(ev.Directives, m)
		b.out.Members = append(b.out.Members, m)
		prevEnd = vEnd
	}
}

func (b *docBuilder) arguments(args ast.ArgumentDefinitionList, container string, ownerStart, ownerEnd int) {
	if len(args) == 0 {
		return
	}
	prevEnd := ownerStart
	if open := scanOpen(b.content, ownerStart, ownerEnd, '('); open >= 0 {
		prevEnd = open + 1
	}
	for i, a := range args {
		aStart := b.pos(a.Position)
		limit := ownerEnd
		if i+1 < len(args) {
			limit = b.pos(args[i+1].Position)
		}
		aEnd := memberEnd(b.content, aStart, limit)
		descStart := scanDescStart(b.content, prevEnd, aStart)

		m := &Member{
			Kind:      MemberArgument,
			Name:      a.Name,
			Container: container,
			NameSpan:  b.identSpanAt(aStart, aEnd, a.Name),
			Span:      b.span(descStart, aEnd),
		}
		m.Directives = b.directives(a.Directives, m)
		b.out.Members = append(b.out.Members, m)
		prevEnd = aEnd
	}
}

// directiveDefinition lifts the arguments of a directive definition; the
// definition itself cannot carry directives and is not a member.
func (b *docBuilder) directiveDefinition(def *ast.DirectiveDefinition) {
	start := b.pos(def.Position)
	_, end := b.extent(start)
	b.arguments(def.Arguments, "@"+def.Name, start, end)
}

func (b *docBuilder) directives(list ast.DirectiveList, parent *Member) []*Directive {
	if len(list) == 0 {
		return nil
	}
	out := make([]*Directive, 0, len(list))
	for _, d := range list {
		nameStart := b.pos(d.Position)
		// the parser anchors directives at the name; reclaim the "@"
		start := nameStart
		for k := nameStart - 1; k >= 0; k-- {
			c := b.content[k]
			if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
				continue
			}
			if c == '@' {
				start = k
			}
			break
		}
		nameEnd, end := scanDirectiveEnd(b.content, start, len(b.content))

		dir := &Directive{
			Name:     d.Name,
			NameSpan: b.span(start, nameEnd),
			Span:     b.span(start, end),
			Parent:   parent,
		}
		for _, a := range d.Arguments {
			dir.Args = append(dir.Args, Argument{Name: a.Name, Value: b.value(a.Value)})
		}
		out = append(out, dir)
	}
	return out
}

func (b *docBuilder) value(v *ast.Value) *Value {
	if v == nil {
		return nil
	}
	start := b.pos(v.Position)
	end := b.posEnd(v.Position)
	out := &Value{Raw: v.Raw}
	switch v.Kind {
	case ast.IntValue:
		out.Kind = ValueInt
	case ast.FloatValue:
		out.Kind = ValueFloat
	case ast.StringValue:
		out.Kind = ValueString
	case ast.BlockValue:
		out.Kind = ValueBlockString
	case ast.BooleanValue:
		out.Kind = ValueBoolean
	case ast.NullValue:
		out.Kind = ValueNull
	case ast.EnumValue, ast.Variable:
		out.Kind = ValueEnum
	case ast.ListValue:
		out.Kind = ValueList
		end = scanBalanced(b.content, start, len(b.content))
		for _, ch := range v.Children {
			out.Children = append(out.Children, ChildValue{Value: b.value(ch.Value)})
		}
	case ast.ObjectValue:
		out.Kind = ValueObject
		end = scanBalanced(b.content, start, len(b.content))
		for _, ch := range v.Children {
			out.Children = append(out.Children, ChildValue{Name: ch.Name, Value: b.value(ch.Value)})
		}
	default:
		panic(fmt.Sprintf("schema: unhandled parser value kind %d", v.Kind))
	}
	out.Span = b.span(start, end)
	return out
}

func (b *docBuilder) pos(p *ast.Position) int {
	if p == nil {
		return 0
	}
	return b.off.byteOff(p.Start)
}

func (b *docBuilder) posEnd(p *ast.Position) int {
	if p == nil {
		return 0
	}
	return b.off.byteOff(p.End)
}

func (b *docBuilder) span(start, end int) source.Span {
	if end < start {
		end = start
	}
	start32, err := safecast.Conv[uint32](start)
	if err != nil {
		panic(fmt.Errorf("span start overflow: %w", err))
	}
	end32, err := safecast.Conv[uint32](end)
	if err != nil {
		panic(fmt.Errorf("span end overflow: %w", err))
	}
	return source.Span{File: b.file, Start: start32, End: end32}
}

func (b *docBuilder) identSpanAt(start, limit int, name string) source.Span {
	s, e := identSpan(b.content, start, limit, name)
	return b.span(s, e)
}
