package rules

import (
	"errors"
	"fmt"

	"sdlint/internal/datefmt"
	"sdlint/internal/schema"
)

// DefaultArgumentName is the directive argument carrying the deletion date.
const DefaultArgumentName = "deletionDate"

// DeprecationRule enforces the deprecation lifecycle: every @deprecated
// member carries a deletion date, the date is well formed and denotes a real
// calendar day, and a member whose day has passed is reported as removable
// with an edit deleting its entire definition.
type DeprecationRule struct {
	argumentName string
	format       *datefmt.Format
}

// NewDeprecationRule creates the rule with its default configuration.
func NewDeprecationRule() *DeprecationRule {
	return &DeprecationRule{
		argumentName: DefaultArgumentName,
		format:       datefmt.New(datefmt.DefaultSeparator),
	}
}

func (r *DeprecationRule) Name() string { return "deprecation-date" }

func (r *DeprecationRule) Description() string {
	return "require a deletion date on @deprecated and report members past it as removable"
}

func (r *DeprecationRule) Directives() []string { return []string{"deprecated"} }

func (r *DeprecationRule) Fixable() bool { return true }

func (r *DeprecationRule) Messages() map[FindingKind]string {
	return map[FindingKind]string{
		FindingRequireDate:   "{nodeName} is deprecated without a deletion date",
		FindingInvalidFormat: "deletion date for {nodeName} must be {layouts}",
		FindingInvalidDate:   `invalid deletion date "{deletionDate}" for {nodeName}`,
		FindingCanBeRemoved:  "{nodeName} can be removed",
	}
}

// Configure accepts the rule's options table. Recognized keys:
// argument_name (directive argument to inspect) and separator (the
// year-first layout's separator).
func (r *DeprecationRule) Configure(opts map[string]any) error {
	for key, val := range opts {
		switch key {
		case "argument_name":
			s, ok := val.(string)
			if !ok {
				return fmt.Errorf("argument_name: expected a string, got %T", val)
			}
			if s == "" {
				return errors.New("argument_name: must not be empty")
			}
			r.argumentName = s
		case "separator":
			s, ok := val.(string)
			if !ok {
				return fmt.Errorf("separator: expected a string, got %T", val)
			}
			r.format = datefmt.New(s)
		default:
			return fmt.Errorf("unknown option %q", key)
		}
	}
	return nil
}

// CheckDirective runs the lifecycle state machine for one @deprecated
// application. States are evaluated in strict order and every state is
// terminal: at most one finding per application.
//
//  1. The configured argument is absent: the member needs a deletion date.
//  2. The argument's text matches neither accepted layout.
//  3. The layout matches but the day does not exist on the calendar.
//  4. The day lies strictly before now: the member can be removed, with an
//     edit deleting the member's whole source range. A present or future
//     day is not a finding.
func (r *DeprecationRule) CheckDirective(ctx *Context, dir *schema.Directive) *Finding {
	member := dir.Parent
	nodeName := member.Label()

	arg, ok := dir.Argument(r.argumentName)
	if !ok {
		return &Finding{
			Kind:   FindingRequireDate,
			Anchor: dir.NameSpan,
			Params: map[string]string{"nodeName": nodeName},
		}
	}

	// Non-string content never matches a layout and falls through to the
	// format finding.
	raw, _ := arg.Value.Native().(string)

	date, err := r.format.Parse(raw)
	var invalid *datefmt.InvalidDateError
	switch {
	case errors.As(err, &invalid):
		return &Finding{
			Kind:   FindingInvalidDate,
			Anchor: arg.Value.Span,
			Params: map[string]string{
				"nodeName":     nodeName,
				"deletionDate": invalid.Raw,
			},
		}
	case err != nil:
		return &Finding{
			Kind:   FindingInvalidFormat,
			Anchor: arg.Value.Span,
			Params: map[string]string{
				"nodeName": nodeName,
				"layouts":  r.format.Layouts(),
			},
		}
	}

	if !date.Time.Before(ctx.Now) {
		return nil
	}
	return &Finding{
		Kind:   FindingCanBeRemoved,
		Anchor: member.NameSpan,
		Params: map[string]string{"nodeName": nodeName},
		Notes: []FindingNote{{
			Span: arg.Value.Span,
			Text: fmt.Sprintf("deletion date %s has passed", date.Raw),
		}},
		Edit: &SuggestedEdit{
			Description: fmt.Sprintf("Remove `%s`", member.Name),
			DeleteSpan:  member.Span,
		},
	}
}
