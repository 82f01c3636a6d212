package role

import "errors"

// Role identifies one of the platform's account roles.
//
// Role instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Role string

const (
	// Admin is the system administrator role.
	Admin Role = "admin"
	// Settlement is the settlement department role.
	Settlement Role = "settlement"
	// Tech is the technical department role.
	Tech Role = "tech"
	// Consumer is the data consumer role.
	Consumer Role = "consumer"
)

// ErrUnknownRole is returned when a hierarchy references a role it does not define.
var ErrUnknownRole = errors.New("unknown role")

// ErrNotReflexive is returned when a hierarchy entry does not contain its own role.
var ErrNotReflexive = errors.New("role hierarchy entry must contain its own role")

// ErrEmptyHierarchy is returned when a hierarchy is built from an empty table.
var ErrEmptyHierarchy = errors.New("role hierarchy table empty")

// Hierarchy maps each role to the set of roles it satisfies. A higher role
// contains every weaker role beneath it; every role contains itself.
//
// Hierarchy instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Hierarchy struct {
	satisfied map[Role]map[Role]struct{}
}

// New builds a Hierarchy from an explicit containment table. The table must
// be non-empty, reflexive, and must only reference roles it defines.
//
// New may return an error when input validation fails.
// New does not mutate shared global state and can be used concurrently.
func New(table map[Role][]Role) (*Hierarchy, error) {
	if len(table) == 0 {
		return nil, ErrEmptyHierarchy
	}

	satisfied := make(map[Role]map[Role]struct{}, len(table))
	for r, contained := range table {
		set := make(map[Role]struct{}, len(contained))
		for _, c := range contained {
			if _, ok := table[c]; !ok {
				return nil, ErrUnknownRole
			}
			set[c] = struct{}{}
		}
		if _, ok := set[r]; !ok {
			return nil, ErrNotReflexive
		}
		satisfied[r] = set
	}

	return &Hierarchy{satisfied: satisfied}, nil
}

// Default returns the platform's built-in total order:
// admin ⊇ settlement ⊇ tech ⊇ consumer.
func Default() *Hierarchy {
	h, err := New(map[Role][]Role{
		Admin:      {Admin, Settlement, Tech, Consumer},
		Settlement: {Settlement, Tech, Consumer},
		Tech:       {Tech, Consumer},
		Consumer:   {Consumer},
	})
	if err != nil {
		// The built-in table is statically valid.
		panic(err)
	}
	return h
}

// Satisfies reports whether actual is allowed to act as required. It is a
// pure lookup with no side effects; an actual role absent from the hierarchy
// satisfies nothing.
func (h *Hierarchy) Satisfies(actual, required Role) bool {
	if h == nil {
		return false
	}
	set, ok := h.satisfied[actual]
	if !ok {
		return false
	}
	_, ok = set[required]
	return ok
}

// SatisfiesAny reports whether actual satisfies at least one of the required
// roles. An empty required set is satisfied by any known role.
func (h *Hierarchy) SatisfiesAny(actual Role, required []Role) bool {
	if h == nil {
		return false
	}
	if len(required) == 0 {
		_, ok := h.satisfied[actual]
		return ok
	}
	for _, r := range required {
		if h.Satisfies(actual, r) {
			return true
		}
	}
	return false
}

// Expand returns the set of roles that actual satisfies, in unspecified
// order. The returned slice is a copy.
func (h *Hierarchy) Expand(actual Role) []Role {
	if h == nil {
		return nil
	}
	set, ok := h.satisfied[actual]
	if !ok {
		return nil
	}
	out := make([]Role, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	return out
}

// Known reports whether the hierarchy defines the given role.
func (h *Hierarchy) Known(r Role) bool {
	if h == nil {
		return false
	}
	_, ok := h.satisfied[r]
	return ok
}
