package tree

// Remap wraps body in a substitution: x, y, z stand in for body's own x, y,
// z the next time the tree is flattened or evaluated. Construction is O(1)
// — body is never traversed — which is the entire point of remap versus
// flatten (C6).
func Remap(body, x, y, z Handle) Handle {
	bodyC := body.Clone()
	xC := x.Clone()
	yC := y.Clone()
	zC := z.Clone()
	key := keyFor(KindRemap, OpRemap, 0, bodyC.n, xC.n, yC.n, zC.n)
	h, hit := globalCons.intern(key, func() *nodeRecord {
		return &nodeRecord{
			kind:     KindRemap,
			op:       OpRemap,
			flags:    computeFlags(OpRemap, bodyC.n, xC.n, yC.n, zC.n),
			children: [4]*nodeRecord{bodyC.n, xC.n, yC.n, zC.n},
		}
	})
	if hit {
		bodyC.Drop()
		xC.Drop()
		yC.Drop()
		zC.Drop()
	}
	return h
}

// Flatten realizes every remap substitution reachable from h into ordinary
// nodes, returning a handle with HasRemap() == false. If h already has no
// remaps, this is an O(1) clone (the "early out" case); otherwise it's an
// iterative, memoized post-order pass, so a chain of nested remaps is
// resolved outer-over-inner in a single traversal and a shared subtree is
// only substituted once no matter how many remaps reference it.
func Flatten(h Handle) Handle {
	if !h.HasRemap() {
		return h.Clone()
	}
	return rebuildPostOrder(h, passthroughLeaf, func(body, x, y, z Handle) Handle {
		result := substituteAxes(body, x, y, z)
		return result
	})
}

// substituteAxes rebuilds body, replacing every x/y/z leaf with a clone of
// the corresponding replacement. x, y, z's own internal structure (which
// may itself reference the enclosing x/y/z) is left untouched — only
// body's leaves are rewritten.
func substituteAxes(body, x, y, z Handle) Handle {
	return rebuildPostOrder(body, func(n *nodeRecord) Handle {
		if n.kind == KindAxis {
			switch n.op {
			case OpVarX:
				return x.Clone()
			case OpVarY:
				return y.Clone()
			case OpVarZ:
				return z.Clone()
			}
		}
		return n.cloneHandle()
	}, func(innerBody, ix, iy, iz Handle) Handle {
		// body is guaranteed remap-free by the time Flatten calls here.
		return Remap(innerBody, ix, iy, iz)
	})
}
