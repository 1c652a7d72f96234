/*
hierarchy.go - Passenger-type hierarchy precedence table

PURPOSE:
  Negotiated fares for certain passenger-type families follow a hierarchy:
  a candidate priced for a NARROWER passenger type always displaces one
  priced for a broader type in the same scope, regardless of amount. The
  families are the negotiated (NEG/CNE/INE), JCB (JCB/JNN/JNF) and PFA
  (PFA/CBC/CBI) groups. Adult and other codes are outside the hierarchy
  and compete on amount alone.

LIFECYCLE:
  The table is built once at package init and is read-only afterwards,
  so concurrent readers across fare markets are safe. Callers needing a
  custom ordering construct their own with NewPaxHierarchy.
*/
package pricing

// PaxHierarchy maps passenger-type codes to a precedence rank. Higher
// rank means narrower (more specific). Read-only after construction.
type PaxHierarchy struct {
	rank map[PaxTypeCode]int
}

// NewPaxHierarchy builds a hierarchy from an explicit rank table.
func NewPaxHierarchy(rank map[PaxTypeCode]int) *PaxHierarchy {
	cp := make(map[PaxTypeCode]int, len(rank))
	for k, v := range rank {
		cp[k] = v
	}
	return &PaxHierarchy{rank: cp}
}

// defaultHierarchy is built once at process start; never mutated after.
var defaultHierarchy = NewPaxHierarchy(map[PaxTypeCode]int{
	PaxNeg: 10,
	PaxCNE: 11,
	PaxINE: 12,
	PaxJCB: 20,
	PaxJNN: 21,
	PaxJNF: 22,
	PaxPFA: 30,
	PaxCBC: 31,
	PaxCBI: 32,
})

// DefaultPaxHierarchy returns the process-wide hierarchy table.
func DefaultPaxHierarchy() *PaxHierarchy { return defaultHierarchy }

// Applies reports whether the passenger type participates in hierarchy
// precedence at all.
func (h *PaxHierarchy) Applies(p PaxTypeCode) bool {
	_, ok := h.rank[p]
	return ok
}

// Narrower reports whether a is strictly narrower than b. Codes outside
// the hierarchy are never narrower than anything.
func (h *PaxHierarchy) Narrower(a, b PaxTypeCode) bool {
	ra, okA := h.rank[a]
	rb, okB := h.rank[b]
	if !okA || !okB {
		return false
	}
	return ra > rb
}
