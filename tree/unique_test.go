package tree

import "testing"

// Unique rebuilds a DAG through the C4 constructors. Since every constant,
// axis and operator node is already interned at construction, these cases
// check that Unique keeps those identities, reapplies identity folds, and
// passes var-free and oracle leaves through.

func TestUnique_ReinternsPlainLeaves(t *testing.T) {
	a := Constant(7)
	b := Constant(7)
	defer a.Drop()
	defer b.Drop()

	// a and b are already the same interned node (C3 guarantees this), so
	// this mostly documents that Unique doesn't break that invariant.
	uniqA := Unique(a)
	uniqB := Unique(b)
	defer uniqA.Drop()
	defer uniqB.Drop()

	if !uniqA.Same(uniqB) {
		t.Error("Unique(7) and Unique(7) should be the same node")
	}
}

func TestUnique_CollapsesStructurallyEqualSubtrees(t *testing.T) {
	x := VarX()
	defer x.Drop()

	left := Add(x.Clone(), Constant(1))
	right := Add(x.Clone(), Constant(1))
	combined := Max(left, right)
	defer combined.Drop()

	// left and right were already hash-consed to the same node by C4, so
	// Max's own smart constructor already collapsed this to max(n, n) -> n.
	if combined.Op() != OpAdd {
		t.Fatalf("max((x+1),(x+1)): got opcode %v, want OpAdd (same-handle fold)", combined.Op())
	}

	got := Unique(combined)
	defer got.Drop()
	if !got.Same(combined) {
		t.Error("Unique on an already-canonical tree should return the same node")
	}
}

func TestUnique_RebuildsRemapChildren(t *testing.T) {
	x, y, z := VarX(), VarY(), VarZ()
	defer x.Drop()
	defer y.Drop()
	defer z.Drop()

	r := Remap(Add(x.Clone(), Constant(0)), y.Clone(), z.Clone(), x.Clone())
	defer r.Drop()

	got := Unique(r)
	defer got.Drop()

	if Print(got) != Print(r) {
		t.Errorf("Unique(remap): got %q, want %q", Print(got), Print(r))
	}
	body := got.RemapBody()
	defer body.Drop()
	if !body.Same(x) {
		t.Error("remap body x+0 should fold to x's own node under unique's rebuild")
	}
}

func TestUnique_LeavesVarFreeAndOracleUntouched(t *testing.T) {
	v := Var()
	defer v.Drop()

	got := Unique(v)
	defer got.Drop()
	if !got.Same(v) {
		t.Error("Unique(var-free) should pass the leaf through unchanged")
	}

	leaf := OracleLeaf(&ConstantShapeOracle{Value: 1})
	defer leaf.Drop()
	sum := Add(leaf.Clone(), Constant(0))
	defer sum.Drop()

	got2 := Unique(sum)
	defer got2.Drop()
	if !got2.Same(leaf) {
		t.Error("Unique(oracle+0) should fold to the oracle leaf's own node")
	}
}
