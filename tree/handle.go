package tree

import "sync/atomic"

// Handle is a shared, thread-safe owning reference to a node in the
// expression DAG. It is a small value type: copying it with a bare Go
// assignment does NOT take out an additional reference (Go has no copy
// constructors) — call Clone to obtain one, and Drop when done with it.
// See DESIGN.md §6.2 for why this departs from the teacher's idioms, which
// has no analogous ownership type.
type Handle struct {
	n *nodeRecord
}

// IsValid reports whether h refers to a node (the zero Handle is invalid).
func (h Handle) IsValid() bool { return h.n != nil }

// Same reports whether h and o refer to the identical node record. Several
// simplification rules (min(x,x)=x, max(x,x)=x) are defined in terms of this
// identity, not structural equality.
func (h Handle) Same(o Handle) bool { return h.n == o.n }

// Clone returns a new owning reference to the same node, incrementing its
// refcount.
func (h Handle) Clone() Handle {
	if h.n == nil {
		return Handle{}
	}
	h.n.refcount.Add(1)
	return Handle{h.n}
}

func cloneRecord(n *nodeRecord) Handle {
	if n == nil {
		return Handle{}
	}
	n.refcount.Add(1)
	return Handle{n}
}

// refcount exposes the live reference count, for tests.
func (h Handle) refcount() int64 { return h.n.refcount.Load() }

// Drop releases h's reference. When the last reference to a node is
// dropped, the node is removed from the hash-cons table (if it was
// interned there) and its children are dropped in turn. This is iterative
// with an explicit stack so dropping a deep chain (depth >= 32768) never
// recurses.
func (h Handle) Drop() {
	if h.n == nil {
		return
	}
	stack := []*nodeRecord{h.n}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.refcount.Add(-1) > 0 {
			continue
		}

		if n.kind != KindVarFree && n.kind != KindOracle {
			globalCons.remove(n)
		}
		for i := 0; i < n.numChildren(); i++ {
			if c := n.children[i]; c != nil {
				stack = append(stack, c)
			}
		}
	}
}

// --- Axis singletons (VarX, VarY, VarZ) ---------------------------------

var (
	axisX = newAxis(OpVarX)
	axisY = newAxis(OpVarY)
	axisZ = newAxis(OpVarZ)
)

func newAxis(op Opcode) *nodeRecord {
	n := &nodeRecord{kind: KindAxis, op: op, flags: FlagHasXYZ}
	n.refcount.Store(1) // permanent hold, never paired with a Drop — see DESIGN.md §6.1
	return n
}

// VarX, VarY, VarZ return a fresh owned handle to the process-wide x, y, z
// singleton. The very first call to any of these observably returns a
// refcount of 2 (the permanent hold plus this handle), matching the
// original source's assertion.
func VarX() Handle { return cloneRecord(axisX) }
func VarY() Handle { return cloneRecord(axisY) }
func VarZ() Handle { return cloneRecord(axisZ) }

// --- Free variables -------------------------------------------------------

var freeIDCounter atomic.Uint64

// Var allocates a fresh free variable with process-wide unique identity.
// Free variables bypass the hash-cons table entirely: two calls to Var
// never produce the same node, by design.
func Var() Handle {
	id := freeIDCounter.Add(1)
	n := &nodeRecord{kind: KindVarFree, op: OpVarFree, freeID: id}
	n.refcount.Store(1)
	return Handle{n}
}
