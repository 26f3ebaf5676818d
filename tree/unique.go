package tree

// Unique rebuilds h's DAG bottom-up through the C4 smart constructors,
// canonicalising structurally-equal-but-differently-built subtrees (e.g.
// one built before a sibling was interned, one after) to the single shared
// node the hash-cons table would produce if built fresh in one pass. Remap
// nodes are rebuilt (their four children canonicalised) but not flattened;
// var-free and oracle leaves pass through unchanged, since neither is ever
// deduplicated.
func Unique(h Handle) Handle {
	return rebuildPostOrder(h, reinternLeaf, func(body, x, y, z Handle) Handle {
		return Remap(body, x, y, z)
	})
}
