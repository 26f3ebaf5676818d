package tree

import "sync"

// consKey identifies a potential hash-cons entry by kind, opcode, children
// (by pointer identity — structurally equal children are themselves already
// interned to the same pointer) and constant bits. Because every field is
// Go-comparable, the key can be a plain map key instead of a custom hasher
// with a candidate list, per DESIGN.md's grounding note on
// gomlx-gomlx__builder_dedup.go and cue-lang-cue__unique.go.
type consKey struct {
	kind NodeKind
	op   Opcode
	c0   *nodeRecord
	c1   *nodeRecord
	c2   *nodeRecord
	c3   *nodeRecord
	bits uint32
}

func keyFor(kind NodeKind, op Opcode, bits uint32, children ...*nodeRecord) consKey {
	k := consKey{kind: kind, op: op, bits: bits}
	switch len(children) {
	case 4:
		k.c3 = children[3]
		fallthrough
	case 3:
		k.c2 = children[2]
		fallthrough
	case 2:
		k.c1 = children[1]
		fallthrough
	case 1:
		k.c0 = children[0]
	}
	return k
}

// consTable is the process-wide structural-deduplication table (C3). It
// does not own the nodes it points at for ordinary entries: when the last
// live handle to an entry is dropped, the entry is erased (see handle.go's
// Drop). Lookup-or-insert-and-increment happens under a single mutex, which
// trivially makes the operation linearizable.
type consTable struct {
	mu      sync.Mutex
	entries map[consKey]*nodeRecord
}

var globalCons = &consTable{entries: make(map[consKey]*nodeRecord)}

// intern returns the existing node for key if present (incrementing its
// refcount and reporting hit=true), or registers and returns a freshly
// allocated one built by make_ (hit=false). Callers that cloned child
// handles to build the candidate must drop those clones on a hit, since
// the cached entry's own children are used instead.
func (t *consTable) intern(key consKey, make_ func() *nodeRecord) (h Handle, hit bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n, ok := t.entries[key]; ok {
		// A count that was already zero belongs to a node a concurrent Drop
		// is tearing down; it is replaced below instead of being handed out.
		if n.refcount.Add(1) > 1 {
			return Handle{n}, true
		}
	}
	n := make_()
	n.refcount.Store(1)
	t.entries[key] = n
	return Handle{n}, false
}

func (t *consTable) remove(n *nodeRecord) {
	key := keyForNode(n)
	t.mu.Lock()
	if existing, ok := t.entries[key]; ok && existing == n {
		delete(t.entries, key)
	}
	t.mu.Unlock()
}

func keyForNode(n *nodeRecord) consKey {
	switch n.kind {
	case KindConstant:
		return keyFor(n.kind, n.op, n.constBits)
	case KindUnary, KindConstVar:
		return keyFor(n.kind, n.op, 0, n.children[0])
	case KindBinary:
		return keyFor(n.kind, n.op, 0, n.children[0], n.children[1])
	case KindRemap:
		return keyFor(n.kind, n.op, 0, n.children[0], n.children[1], n.children[2], n.children[3])
	default:
		return consKey{kind: n.kind, op: n.op}
	}
}

// size reports the number of live entries in the table, for tests.
func (t *consTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
