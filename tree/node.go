package tree

import "sync/atomic"

// NodeKind distinguishes the handful of node shapes a record can take. Every
// node carries the same bookkeeping (refcount, flags) regardless of kind;
// only the payload differs, which is why this is a closed tag on one struct
// rather than an interface per variant.
type NodeKind uint8

const (
	KindConstant NodeKind = iota
	KindAxis           // VarX, VarY, VarZ — process-wide singletons
	KindVarFree        // a free variable, identified by FreeID
	KindUnary
	KindBinary
	KindRemap     // body remapped through x', y', z' substitutions
	KindConstVar  // wraps a subtree, freezing its free variables to constants
	KindOracle    // opaque leaf delegating to an OracleClause
)

// Flag bits, assigned in the declaration order of the original TreeData::
// TREE_FLAG_* constants (see SPEC_FULL.md §2).
const (
	FlagHasXYZ    uint8 = 1 << 0
	FlagHasRemap  uint8 = 1 << 1
	FlagHasOracle uint8 = 1 << 2
)

// nodeRecord is the immutable, shared storage behind a Handle. Once built it
// is never mutated except for refcount and its presence in the hash-cons
// table; every other field is set once at construction.
type nodeRecord struct {
	kind  NodeKind
	op    Opcode
	flags uint8

	refcount atomic.Int64

	constBits uint32 // KindConstant: float32 bits
	freeID    uint64 // KindVarFree: process-wide unique id

	// Children, by kind:
	//   KindUnary, KindConstVar: children[0]
	//   KindBinary:              children[0]=lhs, children[1]=rhs
	//   KindRemap:                children[0]=body, [1]=x', [2]=y', [3]=z'
	children [4]*nodeRecord

	oracle OracleClause // KindOracle only
}

func (n *nodeRecord) isConstant() bool { return n.kind == KindConstant }

func (n *nodeRecord) constValue() float32 {
	return float32FromBits(n.constBits)
}

func (n *nodeRecord) lhs() *nodeRecord { return n.children[0] }
func (n *nodeRecord) rhs() *nodeRecord { return n.children[1] }
func (n *nodeRecord) child() *nodeRecord { return n.children[0] }

func (n *nodeRecord) numChildren() int {
	switch n.kind {
	case KindUnary, KindConstVar:
		return 1
	case KindBinary:
		return 2
	case KindRemap:
		return 4
	default:
		return 0
	}
}

func computeFlags(op Opcode, children ...*nodeRecord) uint8 {
	var f uint8
	if op == OpVarX || op == OpVarY || op == OpVarZ {
		f |= FlagHasXYZ
	}
	if op == OpRemap {
		f |= FlagHasRemap
	}
	if op == OpOracle {
		f |= FlagHasOracle
	}
	for _, c := range children {
		if c == nil {
			continue
		}
		f |= c.flags
	}
	return f
}

// HasXYZ, HasRemap, HasOracle report whether the corresponding flag is set
// anywhere in h's subtree (checked in O(1) via the precomputed union).
func (h Handle) HasXYZ() bool    { return h.n.flags&FlagHasXYZ != 0 }
func (h Handle) HasRemap() bool  { return h.n.flags&FlagHasRemap != 0 }
func (h Handle) HasOracle() bool { return h.n.flags&FlagHasOracle != 0 }

// Kind and Op expose a handle's node shape and opcode, for callers that need
// to branch on structure (the printer, serializer, affine collector).
func (h Handle) Kind() NodeKind { return h.n.kind }
func (h Handle) Op() Opcode     { return h.n.op }

// IsConstant reports whether h is a constant leaf, and ConstValue its value
// (only meaningful when IsConstant is true).
func (h Handle) IsConstant() bool     { return h.n.isConstant() }
func (h Handle) ConstValue() float32  { return h.n.constValue() }

// Lhs, Rhs return a binary node's operands as fresh owned handles.
func (h Handle) Lhs() Handle { return cloneRecord(h.n.lhs()) }
func (h Handle) Rhs() Handle { return cloneRecord(h.n.rhs()) }

// Child returns a unary/const-var node's sole operand as a fresh owned handle.
func (h Handle) Child() Handle { return cloneRecord(h.n.child()) }

// RemapBody, RemapX, RemapY, RemapZ expose a KindRemap node's four children.
func (h Handle) RemapBody() Handle { return cloneRecord(h.n.children[0]) }
func (h Handle) RemapX() Handle    { return cloneRecord(h.n.children[1]) }
func (h Handle) RemapY() Handle    { return cloneRecord(h.n.children[2]) }
func (h Handle) RemapZ() Handle    { return cloneRecord(h.n.children[3]) }

// FreeID returns a KindVarFree node's process-wide identity.
func (h Handle) FreeID() uint64 { return h.n.freeID }

// Oracle returns a KindOracle node's clause.
func (h Handle) Oracle() OracleClause { return h.n.oracle }
