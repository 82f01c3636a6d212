package role

import (
	"errors"
	"testing"
)

func TestDefaultHierarchyReflexive(t *testing.T) {
	h := Default()
	for _, r := range []Role{Admin, Settlement, Tech, Consumer} {
		if !h.Satisfies(r, r) {
			t.Fatalf("expected %s to satisfy itself", r)
		}
	}
}

func TestDefaultHierarchyTotalOrder(t *testing.T) {
	h := Default()

	cases := []struct {
		actual   Role
		required Role
		want     bool
	}{
		{Admin, Settlement, true},
		{Admin, Tech, true},
		{Admin, Consumer, true},
		{Settlement, Admin, false},
		{Settlement, Tech, true},
		{Settlement, Consumer, true},
		{Tech, Settlement, false},
		{Tech, Consumer, true},
		{Consumer, Tech, false},
		{Consumer, Consumer, true},
	}

	for _, tc := range cases {
		if got := h.Satisfies(tc.actual, tc.required); got != tc.want {
			t.Fatalf("Satisfies(%s, %s) = %v, want %v", tc.actual, tc.required, got, tc.want)
		}
	}
}

func TestSatisfiesMatchesExpansionSet(t *testing.T) {
	h := Default()
	all := []Role{Admin, Settlement, Tech, Consumer}

	for _, r1 := range all {
		expanded := map[Role]bool{}
		for _, r := range h.Expand(r1) {
			expanded[r] = true
		}
		for _, r2 := range all {
			if h.Satisfies(r1, r2) != expanded[r2] {
				t.Fatalf("Satisfies(%s, %s) disagrees with Expand", r1, r2)
			}
		}
	}
}

func TestSatisfiesUnknownRole(t *testing.T) {
	h := Default()
	if h.Satisfies("auditor", Consumer) {
		t.Fatal("unknown actual role must satisfy nothing")
	}
	if h.Satisfies(Admin, "auditor") {
		t.Fatal("unknown required role must not be satisfied")
	}
}

func TestSatisfiesAny(t *testing.T) {
	h := Default()

	if !h.SatisfiesAny(Tech, []Role{Tech, Consumer}) {
		t.Fatal("tech must satisfy {tech, consumer}")
	}
	if h.SatisfiesAny(Tech, []Role{Admin}) {
		t.Fatal("tech must not satisfy {admin}")
	}
	if !h.SatisfiesAny(Consumer, nil) {
		t.Fatal("empty required set must admit any known role")
	}
	if h.SatisfiesAny("auditor", nil) {
		t.Fatal("empty required set must not admit an unknown role")
	}
}

func TestNewRejectsEmptyTable(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrEmptyHierarchy) {
		t.Fatalf("expected ErrEmptyHierarchy, got %v", err)
	}
}

func TestNewRejectsNonReflexiveTable(t *testing.T) {
	_, err := New(map[Role][]Role{
		Admin:    {Consumer},
		Consumer: {Consumer},
	})
	if !errors.Is(err, ErrNotReflexive) {
		t.Fatalf("expected ErrNotReflexive, got %v", err)
	}
}

func TestNewRejectsUnknownContainedRole(t *testing.T) {
	_, err := New(map[Role][]Role{
		Admin: {Admin, "ghost"},
	})
	if !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestNilHierarchyIsInert(t *testing.T) {
	var h *Hierarchy
	if h.Satisfies(Admin, Admin) {
		t.Fatal("nil hierarchy must satisfy nothing")
	}
	if h.Expand(Admin) != nil {
		t.Fatal("nil hierarchy must expand to nothing")
	}
}
