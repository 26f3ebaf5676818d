package tree

import "testing"

func TestWalk_PostOrderChildrenBeforeParent(t *testing.T) {
	x, y := VarX(), VarY()
	sum := Add(x.Clone(), y.Clone())
	defer x.Drop()
	defer y.Drop()
	defer sum.Drop()

	var seen []Opcode
	Walk(sum, func(h Handle) { seen = append(seen, h.Op()) })

	if len(seen) != 3 {
		t.Fatalf("expected 3 nodes, got %d: %v", len(seen), seen)
	}
	if seen[0] != OpVarX || seen[1] != OpVarY || seen[2] != OpAdd {
		t.Errorf("post-order lhs-before-rhs violated: %v", seen)
	}
}

func TestWalk_SharedSubtreeVisitedOnce(t *testing.T) {
	x := VarX()
	defer x.Drop()

	// x+x: the two operands are the same node.
	sum := Add(x.Clone(), x.Clone())
	defer sum.Drop()

	count := 0
	Walk(sum, func(Handle) { count++ })
	if count != 2 {
		t.Errorf("size(x+x): got %d, want 2", count)
	}
}

func TestSize_MatchesWalkLength(t *testing.T) {
	x, y := VarX(), VarY()
	defer x.Drop()
	defer y.Drop()

	xx := Add(x.Clone(), x.Clone())
	if got := Size(xx); got != 2 {
		t.Errorf("size(x+x): got %d, want 2", got)
	}
	xx.Drop()
	sum := Add(x.Clone(), y.Clone())
	if got := Size(sum); got != 3 {
		t.Errorf("size(x+y): got %d, want 3", got)
	}
	sum.Drop()
}

func TestWalk_DeepChainDoesNotOverflow(t *testing.T) {
	const depth = 32768
	h := VarX()
	for i := 0; i < depth; i++ {
		h = Add(h, Constant(1))
	}
	defer h.Drop()

	n := 0
	Walk(h, func(Handle) { n++ })
	if n == 0 {
		t.Error("expected at least one node")
	}
}
