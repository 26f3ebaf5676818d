package tree

import "sort"

// CollectAffine rewrites every additive chain in h's DAG into a canonical
// sum-of-terms form: atoms (non-affine subtrees) are merged by identity with
// their coefficients summed, ordered by ascending |coefficient|, and
// recombined through a balanced pairwise reduction rather than a linear
// fold. See DESIGN.md §6.3-§6.4 for the worked derivation this is grounded
// on. The rest of the DAG is rebuilt through the ordinary C4 constructors,
// with one fold specific to this pass: a MUL node whose two (already
// collected) operands are handle-identical becomes a SQUARE.
func CollectAffine(h Handle) Handle {
	type frame struct {
		n      *nodeRecord
		pushed bool
	}

	memo := make(map[*nodeRecord]Handle)
	stack := []*frame{{n: h.n}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]

		if _, ok := memo[f.n]; ok {
			stack = stack[:len(stack)-1]
			continue
		}

		if !f.pushed {
			f.pushed = true
			nc := f.n.numChildren()
			for i := 0; i < nc; i++ {
				if c := f.n.children[i]; c != nil {
					if _, ok := memo[c]; !ok {
						stack = append(stack, &frame{n: c})
					}
				}
			}
			continue
		}

		var result Handle
		switch {
		case f.n.kind == KindBinary && (f.n.op == OpAdd || f.n.op == OpSub):
			result = buildAffine(f.n, memo)
		case f.n.kind == KindUnary || f.n.kind == KindConstVar:
			child := memo[f.n.children[0]]
			result = unaryCtors[f.n.op](child)
		case f.n.kind == KindBinary:
			l := memo[f.n.children[0]]
			r := memo[f.n.children[1]]
			if f.n.op == OpMul && l.Same(r) {
				result = Square(l)
			} else {
				result = binaryCtors[f.n.op](l, r)
			}
		case f.n.kind == KindRemap:
			body := memo[f.n.children[0]]
			x := memo[f.n.children[1]]
			y := memo[f.n.children[2]]
			z := memo[f.n.children[3]]
			result = Remap(body, x, y, z)
		default:
			result = reinternLeaf(f.n)
		}
		memo[f.n] = result
		stack = stack[:len(stack)-1]
	}

	final := memo[h.n]
	for n, hh := range memo {
		if n != h.n {
			hh.Drop()
		}
	}
	return final
}

// buildAffine collects n's additive structure (n must be an ADD or SUB
// node) into atoms with summed coefficients plus a running constant, then
// rebuilds the canonical form. Atom identity is by original node pointer;
// atoms' own already-collected replacements come out of memo.
func buildAffine(n *nodeRecord, memo map[*nodeRecord]Handle) Handle {
	var constant float32
	coeffs := make(map[*nodeRecord]float32)
	var order []*nodeRecord

	addAtom := func(atom *nodeRecord, coeff float32) {
		if _, ok := coeffs[atom]; !ok {
			order = append(order, atom)
		}
		coeffs[atom] += coeff
	}

	var collect func(nn *nodeRecord, sign float32)
	collect = func(nn *nodeRecord, sign float32) {
		switch {
		case nn.kind == KindBinary && nn.op == OpAdd:
			collect(nn.children[0], sign)
			collect(nn.children[1], sign)
		case nn.kind == KindBinary && nn.op == OpSub:
			collect(nn.children[0], sign)
			collect(nn.children[1], -sign)
		case nn.kind == KindUnary && nn.op == OpNeg:
			collect(nn.children[0], -sign)
		case nn.kind == KindBinary && nn.op == OpMul && nn.children[0].isConstant():
			collect(nn.children[1], sign*nn.children[0].constValue())
		case nn.kind == KindBinary && nn.op == OpMul && nn.children[1].isConstant():
			collect(nn.children[0], sign*nn.children[1].constValue())
		case nn.kind == KindBinary && nn.op == OpDiv && nn.children[1].isConstant():
			// x/c is treated as x*(1/c): descend into x with the sign scaled
			// by 1/c, per spec.md §4.7.
			collect(nn.children[0], sign/nn.children[1].constValue())
		case nn.isConstant():
			constant += sign * nn.constValue()
		default:
			addAtom(nn, sign)
		}
	}
	collect(n, 1)

	var atoms []*nodeRecord
	for _, a := range order {
		if coeffs[a] != 0 {
			atoms = append(atoms, a)
		}
	}
	sort.SliceStable(atoms, func(i, j int) bool {
		return absF32(coeffs[atoms[i]]) < absF32(coeffs[atoms[j]])
	})

	term := func(atom *nodeRecord, coeff float32) Handle {
		h := memo[atom]
		switch coeff {
		case 1:
			return h.Clone()
		case -1:
			return Neg(h)
		default:
			c := Constant(coeff)
			defer c.Drop()
			return Mul(h, c)
		}
	}

	if len(atoms) == 0 {
		return Constant(constant)
	}

	if len(atoms) == 1 {
		a := atoms[0]
		coeff := coeffs[a]
		if constant == 0 {
			return term(a, coeff)
		}
		absTerm := term(a, absF32(coeff))
		defer absTerm.Drop()
		c := Constant(constant)
		defer c.Drop()
		if coeff > 0 {
			return Add(c, absTerm)
		}
		return Sub(c, absTerm)
	}

	terms := make([]Handle, 0, len(atoms)+1)
	for _, a := range atoms {
		terms = append(terms, term(a, coeffs[a]))
	}
	if constant != 0 {
		terms = append(terms, Constant(constant))
	}
	return balancedReduce(terms)
}

// balancedReduce combines terms pairwise (Add on adjacent elements, repeated
// until one remains) rather than a left or right linear fold.
func balancedReduce(terms []Handle) Handle {
	for len(terms) > 1 {
		next := make([]Handle, 0, (len(terms)+1)/2)
		i := 0
		for ; i+1 < len(terms); i += 2 {
			sum := Add(terms[i], terms[i+1])
			terms[i].Drop()
			terms[i+1].Drop()
			next = append(next, sum)
		}
		if i < len(terms) {
			next = append(next, terms[i])
		}
		terms = next
	}
	return terms[0]
}

func absF32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Optimized applies flatten, unique, and collect_affine in sequence — the
// standard simplification pipeline a tree goes through before evaluation.
func Optimized(h Handle) Handle {
	flattened := Flatten(h)
	uniq := Unique(flattened)
	flattened.Drop()
	result := CollectAffine(uniq)
	uniq.Drop()
	return result
}
