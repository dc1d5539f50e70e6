package rules

import "testing"

type plainRule struct{ name string }

func (p *plainRule) Name() string                     { return p.name }
func (p *plainRule) Description() string              { return "test rule" }
func (p *plainRule) Messages() map[FindingKind]string { return nil }

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(NewDeprecationRule()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 rule, got %d", r.Len())
	}

	if err := r.Register(NewDeprecationRule()); err == nil {
		t.Error("expected an error for a duplicate rule name")
	}

	rule, ok := r.Get("deprecation-date")
	if !ok {
		t.Fatal("Get failed for a registered rule")
	}
	if f, ok := rule.(Fixer); !ok || !f.Fixable() {
		t.Error("deprecation rule should advertise fixes")
	}
	if _, ok := r.Get("nonexistent"); ok {
		t.Error("Get should miss for an unknown name")
	}
}

func TestRegistry_ForDirective(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewDeprecationRule()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&plainRule{name: "other"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	deprecated := r.ForDirective("deprecated")
	if len(deprecated) != 1 {
		t.Fatalf("expected 1 rule for @deprecated, got %d", len(deprecated))
	}
	if deprecated[0].Name() != "deprecation-date" {
		t.Errorf("rule = %q", deprecated[0].Name())
	}

	if got := r.ForDirective("skip"); got != nil {
		t.Errorf("expected no rules for @skip, got %d", len(got))
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&plainRule{name: "zeta"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&plainRule{name: "alpha"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("Names() = %v, want sorted [alpha zeta]", names)
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	if _, ok := r.Get("deprecation-date"); !ok {
		t.Error("default registry should hold the deprecation rule")
	}
}
