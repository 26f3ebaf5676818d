package tree

import "testing"

func TestAdd_IdentityRules(t *testing.T) {
	x := VarX()
	defer x.Drop()

	zero := Constant(0)
	sum := Add(x, zero)
	zero.Drop()
	defer sum.Drop()

	if !sum.Same(x) {
		t.Error("x+0 should return x's own node")
	}
}

func TestAdd_ZeroPlusX(t *testing.T) {
	x := VarX()
	defer x.Drop()
	zero := Constant(0)
	sum := Add(zero, x)
	zero.Drop()
	defer sum.Drop()

	if !sum.Same(x) {
		t.Error("0+x should return x's own node")
	}
}

func TestAdd_XPlusNegYBecomesSub(t *testing.T) {
	x := VarX()
	y := VarY()
	defer x.Drop()
	defer y.Drop()

	negY := Neg(y)
	got := Add(x, negY)
	negY.Drop()
	defer got.Drop()

	want := Sub(x, y)
	defer want.Drop()

	if !got.Same(want) {
		t.Error("x+(-y) should hash-cons to the same node as x-y")
	}
	if got.Op() != OpSub {
		t.Errorf("x+(-y): got opcode %v, want OpSub", got.Op())
	}
}

func TestSub_ZeroMinusXBecomesNeg(t *testing.T) {
	x := VarX()
	defer x.Drop()
	zero := Constant(0)
	got := Sub(zero, x)
	zero.Drop()
	defer got.Drop()

	if got.Op() != OpNeg {
		t.Errorf("0-x: got opcode %v, want OpNeg", got.Op())
	}
}

func TestNeg_DoubleNegationCancels(t *testing.T) {
	x := VarX()
	defer x.Drop()

	negX := Neg(x)
	defer negX.Drop()
	negNegX := Neg(negX)
	defer negNegX.Drop()

	if !negNegX.Same(x) {
		t.Error("-(-x) should return x's own node")
	}
}

func TestAbs_Idempotent(t *testing.T) {
	x := VarX()
	defer x.Drop()

	a := Abs(x)
	b := Abs(a)
	defer a.Drop()
	defer b.Drop()

	if !a.Same(b) {
		t.Error("abs(abs(x)) should return the same node as abs(x)")
	}
}

func TestMul_IdentityRules(t *testing.T) {
	x := VarX()
	defer x.Drop()

	one := Constant(1)
	got := Mul(x, one)
	one.Drop()
	defer got.Drop()
	if !got.Same(x) {
		t.Error("x*1 should return x's own node")
	}
}

func TestMul_ByZeroIsAlwaysPositiveZero(t *testing.T) {
	x := VarX()
	defer x.Drop()

	negZero := Constant(float32FromBits(0x80000000)) // -0.0
	got := Mul(x, negZero)
	negZero.Drop()
	defer got.Drop()

	if !got.IsConstant() || got.ConstValue() != 0 {
		t.Fatalf("x*(-0) should fold to a constant zero, got %+v", got)
	}
	if float32Bits(got.ConstValue()) != float32Bits(0) {
		t.Error("x*(-0) should fold to +0.0 specifically")
	}
}

func TestMul_ByNegativeOneBecomesNeg(t *testing.T) {
	x := VarX()
	defer x.Drop()
	negOne := Constant(-1)
	got := Mul(negOne, x)
	defer got.Drop()

	if got.Op() != OpNeg {
		t.Errorf("-1*x: got opcode %v, want OpNeg", got.Op())
	}
}

func TestMin_SameHandleReturnsItself(t *testing.T) {
	x := VarX()
	defer x.Drop()

	got := Min(x, x)
	defer got.Drop()

	if !got.Same(x) {
		t.Error("min(x,x) should return x's own node")
	}
}

func TestConstantFolding_Add(t *testing.T) {
	a := Constant(2)
	b := Constant(3)
	got := Add(a, b)
	defer got.Drop()

	if !got.IsConstant() || got.ConstValue() != 5 {
		t.Errorf("2+3: got %+v, want constant 5", got)
	}
}

func TestConstant_PlusZeroAndMinusZeroAreDistinctNodes(t *testing.T) {
	posZero := Constant(0)
	negZero := Constant(float32FromBits(0x80000000))
	defer posZero.Drop()
	defer negZero.Drop()

	if posZero.Same(negZero) {
		t.Error("+0.0 and -0.0 should be distinct interned nodes")
	}
}

func TestConstVar_WrapsBodyAndTagsKindConstVar(t *testing.T) {
	// Ported from tree.cpp's TEST_CASE("Tree::with_const_vars"): 2*v+5*w
	// built from two free variables, then wrapped.
	v := Var()
	w := Var()
	defer v.Drop()
	defer w.Drop()

	two := Constant(2)
	five := Constant(5)
	term1 := Mul(two, v.Clone())
	term2 := Mul(five, w.Clone())
	two.Drop()
	five.Drop()

	body := Add(term1, term2)
	term1.Drop()
	term2.Drop()
	defer body.Drop()

	if want := "(+ (* 2 var-free) (* 5 var-free))"; Print(body) != want {
		t.Fatalf("body Print: got %q, want %q", Print(body), want)
	}

	cv := ConstVar(body.Clone())
	defer cv.Drop()

	if cv.Kind() != KindConstVar {
		t.Errorf("ConstVar(body).Kind(): got %v, want KindConstVar", cv.Kind())
	}
	if want := "(const-var (+ (* 2 var-free) (* 5 var-free)))"; Print(cv) != want {
		t.Errorf("ConstVar(body) Print: got %q, want %q", Print(cv), want)
	}
}

func TestHashConsing_StructurallyEqualNodesShareIdentity(t *testing.T) {
	x1 := VarX()
	x2 := VarX()
	defer x1.Drop()
	defer x2.Drop()

	a := Add(x1, Constant(1))
	b := Add(x2, Constant(1))
	defer a.Drop()
	defer b.Drop()

	if !a.Same(b) {
		t.Error("structurally identical expressions should hash-cons to the same node")
	}
}
