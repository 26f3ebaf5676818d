package tree

// Constant returns a handle to the interned constant node for v. +0 and -0
// are distinct bit patterns and therefore distinct (but value-equal) nodes,
// matching IEEE-754 semantics.
func Constant(v float32) Handle {
	bits := float32Bits(v)
	h, _ := globalCons.intern(keyFor(KindConstant, OpConstant, bits), func() *nodeRecord {
		return &nodeRecord{kind: KindConstant, op: OpConstant, constBits: bits}
	})
	return h
}

func isValue(h Handle, v float32) bool {
	return h.n.isConstant() && h.n.constValue() == v
}

// internUnary builds (or finds) the interned node for op applied to child,
// cloning child to obtain the node's own owned reference. On a cache hit
// the clone is dropped instead of stored. OpConstVar tags its node
// KindConstVar rather than KindUnary, so Kind() can tell the two variants
// apart the way node.go's children-layout comment promises; every other
// unary op keeps the plain KindUnary tag.
func internUnary(op Opcode, child Handle) Handle {
	kind := KindUnary
	if op == OpConstVar {
		kind = KindConstVar
	}

	owned := child.Clone()
	key := keyFor(kind, op, 0, owned.n)
	h, hit := globalCons.intern(key, func() *nodeRecord {
		return &nodeRecord{
			kind:     kind,
			op:       op,
			flags:    computeFlags(op, owned.n),
			children: [4]*nodeRecord{owned.n},
		}
	})
	if hit {
		owned.Drop()
	}
	return h
}

func internBinary(op Opcode, a, b Handle) Handle {
	lhs := a.Clone()
	rhs := b.Clone()
	key := keyFor(KindBinary, op, 0, lhs.n, rhs.n)
	h, hit := globalCons.intern(key, func() *nodeRecord {
		return &nodeRecord{
			kind:     KindBinary,
			op:       op,
			flags:    computeFlags(op, lhs.n, rhs.n),
			children: [4]*nodeRecord{lhs.n, rhs.n},
		}
	})
	if hit {
		lhs.Drop()
		rhs.Drop()
	}
	return h
}

// --- Unary constructors ---------------------------------------------------

func Neg(x Handle) Handle {
	if x.n.op == OpNeg {
		return x.n.child().cloneHandle()
	}
	if x.IsConstant() {
		return Constant(foldUnary(OpNeg, x.ConstValue()))
	}
	return internUnary(OpNeg, x)
}

func Abs(x Handle) Handle {
	if x.n.op == OpAbs {
		return x.Clone()
	}
	if x.IsConstant() {
		return Constant(foldUnary(OpAbs, x.ConstValue()))
	}
	return internUnary(OpAbs, x)
}

func unaryFold(op Opcode, x Handle) Handle {
	if x.IsConstant() {
		return Constant(foldUnary(op, x.ConstValue()))
	}
	return internUnary(op, x)
}

func Square(x Handle) Handle { return unaryFold(OpSquare, x) }
func Sqrt(x Handle) Handle   { return unaryFold(OpSqrt, x) }
func Sin(x Handle) Handle    { return unaryFold(OpSin, x) }
func Cos(x Handle) Handle    { return unaryFold(OpCos, x) }
func Tan(x Handle) Handle    { return unaryFold(OpTan, x) }
func Asin(x Handle) Handle   { return unaryFold(OpAsin, x) }
func Acos(x Handle) Handle   { return unaryFold(OpAcos, x) }
func Atan(x Handle) Handle   { return unaryFold(OpAtan, x) }
func Exp(x Handle) Handle    { return unaryFold(OpExp, x) }
func Log(x Handle) Handle    { return unaryFold(OpLog, x) }
func Recip(x Handle) Handle  { return unaryFold(OpRecip, x) }

// cloneHandle is a convenience for turning a raw *nodeRecord (as stored in
// children) into a fresh owned Handle.
func (n *nodeRecord) cloneHandle() Handle { return cloneRecord(n) }

// --- Binary constructors ---------------------------------------------------

// Add implements x+0=x, 0+x=x, x+(-y)=x-y, and constant folding, per
// spec.md §4.4.
func Add(a, b Handle) Handle {
	if isValue(b, 0) {
		return a.Clone()
	}
	if isValue(a, 0) {
		return b.Clone()
	}
	if b.n.op == OpNeg {
		return Sub(a, Handle{b.n.child()})
	}
	if a.IsConstant() && b.IsConstant() {
		return Constant(foldBinary(OpAdd, a.ConstValue(), b.ConstValue()))
	}
	return internBinary(OpAdd, a, b)
}

// Sub implements x-0=x, 0-x=-x, and constant folding.
func Sub(a, b Handle) Handle {
	if isValue(b, 0) {
		return a.Clone()
	}
	if isValue(a, 0) {
		return Neg(b)
	}
	if a.IsConstant() && b.IsConstant() {
		return Constant(foldBinary(OpSub, a.ConstValue(), b.ConstValue()))
	}
	return internBinary(OpSub, a, b)
}

// Mul implements 1*x=x, x*1=x, 0*x=0, x*0=0 (always +0.0), -1*x=-x,
// x*-1=-x, and constant folding.
func Mul(a, b Handle) Handle {
	if isValue(a, 1) {
		return b.Clone()
	}
	if isValue(b, 1) {
		return a.Clone()
	}
	if isValue(a, 0) || isValue(b, 0) {
		return Constant(0)
	}
	if isValue(a, -1) {
		return Neg(b)
	}
	if isValue(b, -1) {
		return Neg(a)
	}
	if a.IsConstant() && b.IsConstant() {
		return Constant(foldBinary(OpMul, a.ConstValue(), b.ConstValue()))
	}
	return internBinary(OpMul, a, b)
}

// Div implements constant folding only; no division identity is specified.
func Div(a, b Handle) Handle {
	if a.IsConstant() && b.IsConstant() {
		return Constant(foldBinary(OpDiv, a.ConstValue(), b.ConstValue()))
	}
	return internBinary(OpDiv, a, b)
}

// Min implements min(x,x)=x (by handle identity) and constant folding.
func Min(a, b Handle) Handle {
	if a.Same(b) {
		return a.Clone()
	}
	if a.IsConstant() && b.IsConstant() {
		return Constant(foldBinary(OpMin, a.ConstValue(), b.ConstValue()))
	}
	return internBinary(OpMin, a, b)
}

// Max implements max(x,x)=x (by handle identity) and constant folding.
func Max(a, b Handle) Handle {
	if a.Same(b) {
		return a.Clone()
	}
	if a.IsConstant() && b.IsConstant() {
		return Constant(foldBinary(OpMax, a.ConstValue(), b.ConstValue()))
	}
	return internBinary(OpMax, a, b)
}

// Pow implements pow(x,1)=x and constant folding.
func Pow(a, b Handle) Handle {
	if isValue(b, 1) {
		return a.Clone()
	}
	if a.IsConstant() && b.IsConstant() {
		return Constant(foldBinary(OpPow, a.ConstValue(), b.ConstValue()))
	}
	return internBinary(OpPow, a, b)
}

// NthRoot implements nth_root(x,1)=x and constant folding.
func NthRoot(a, b Handle) Handle {
	if isValue(b, 1) {
		return a.Clone()
	}
	if a.IsConstant() && b.IsConstant() {
		return Constant(foldBinary(OpNthRoot, a.ConstValue(), b.ConstValue()))
	}
	return internBinary(OpNthRoot, a, b)
}

func binaryFold(op Opcode, a, b Handle) Handle {
	if a.IsConstant() && b.IsConstant() {
		return Constant(foldBinary(op, a.ConstValue(), b.ConstValue()))
	}
	return internBinary(op, a, b)
}

func Atan2(a, b Handle) Handle   { return binaryFold(OpAtan2, a, b) }
func Mod(a, b Handle) Handle     { return binaryFold(OpMod, a, b) }
func Compare(a, b Handle) Handle { return binaryFold(OpCompare, a, b) }

// --- ConstVar ---------------------------------------------------------------

// ConstVar wraps body, freezing every free variable reachable within it to
// its current value when later evaluated (an operation this package does
// not itself perform — evaluation is out of scope — but whose graph
// representation it must carry faithfully).
func ConstVar(body Handle) Handle {
	return internUnary(OpConstVar, body)
}
