// Package tree implements an immutable, hash-consed expression DAG over
// implicit scalar functions of x, y, z — the construction, simplification,
// traversal, and serialisation kernel of a CAD modeller.
package tree

// Opcode identifies the operation a node performs. Opcode metadata (symbol,
// arity, commutativity, associativity, identity) lives in the table below;
// constant folding (fold.go), the smart constructors (construct.go) and the
// rebuild dispatch maps (rebuild.go) are keyed on the named opcodes, so a new
// opcode needs entries there as well.
type Opcode uint8

const (
	OpInvalid Opcode = iota

	// Leaves.
	OpConstant
	OpVarX
	OpVarY
	OpVarZ
	OpVarFree

	// Unary.
	OpNeg
	OpAbs
	OpSquare
	OpSqrt
	OpSin
	OpCos
	OpTan
	OpAsin
	OpAcos
	OpAtan
	OpExp
	OpLog
	OpRecip

	// Binary.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMin
	OpMax
	OpPow
	OpNthRoot
	OpAtan2
	OpMod
	OpCompare

	// Meta.
	OpRemap
	OpConstVar
	OpOracle

	opcodeCount
)

// Arity is the number of operand children an opcode's node carries, for
// opcodes where that's a fixed, uniform count (meta opcodes have their own
// fixed child layouts and aren't represented here).
type Arity uint8

const (
	ArityLeaf Arity = iota
	ArityUnary
	ArityBinary
)

type opcodeInfo struct {
	symbol        string
	arity         Arity
	commutative   bool
	associative   bool
	hasIdentity   bool
	identityValue float32 // meaningful only when hasIdentity
}

var opcodeTable = [opcodeCount]opcodeInfo{
	OpInvalid:  {symbol: "<invalid>"},
	OpConstant: {symbol: "", arity: ArityLeaf},
	OpVarX:     {symbol: "x", arity: ArityLeaf},
	OpVarY:     {symbol: "y", arity: ArityLeaf},
	OpVarZ:     {symbol: "z", arity: ArityLeaf},
	OpVarFree:  {symbol: "var-free", arity: ArityLeaf},

	OpNeg:    {symbol: "-", arity: ArityUnary},
	OpAbs:    {symbol: "abs", arity: ArityUnary},
	OpSquare: {symbol: "square", arity: ArityUnary},
	OpSqrt:   {symbol: "sqrt", arity: ArityUnary},
	OpSin:    {symbol: "sin", arity: ArityUnary},
	OpCos:    {symbol: "cos", arity: ArityUnary},
	OpTan:    {symbol: "tan", arity: ArityUnary},
	OpAsin:   {symbol: "asin", arity: ArityUnary},
	OpAcos:   {symbol: "acos", arity: ArityUnary},
	OpAtan:   {symbol: "atan", arity: ArityUnary},
	OpExp:    {symbol: "exp", arity: ArityUnary},
	OpLog:    {symbol: "log", arity: ArityUnary},
	OpRecip:  {symbol: "recip", arity: ArityUnary},

	OpAdd:     {symbol: "+", arity: ArityBinary, commutative: true, associative: true, hasIdentity: true, identityValue: 0},
	OpSub:     {symbol: "-", arity: ArityBinary},
	OpMul:     {symbol: "*", arity: ArityBinary, commutative: true, associative: true, hasIdentity: true, identityValue: 1},
	OpDiv:     {symbol: "/", arity: ArityBinary},
	OpMin:     {symbol: "min", arity: ArityBinary, commutative: true, associative: true},
	OpMax:     {symbol: "max", arity: ArityBinary, commutative: true, associative: true},
	OpPow:     {symbol: "pow", arity: ArityBinary},
	OpNthRoot: {symbol: "nth-root", arity: ArityBinary},
	OpAtan2:   {symbol: "atan2", arity: ArityBinary},
	OpMod:     {symbol: "mod", arity: ArityBinary},
	OpCompare: {symbol: "compare", arity: ArityBinary},

	OpRemap:     {symbol: "remap", arity: ArityLeaf}, // fixed 4-child layout, not uniform arity
	OpConstVar:  {symbol: "const-var", arity: ArityUnary},
	OpOracle:    {symbol: "oracle", arity: ArityLeaf},
}

func (op Opcode) valid() bool { return op > OpInvalid && op < opcodeCount }

// Symbol is the textual operator used by the printer (C9).
func (op Opcode) Symbol() string { return opcodeTable[op].symbol }

// IsUnary reports whether op's node carries exactly one child.
func (op Opcode) IsUnary() bool { return opcodeTable[op].arity == ArityUnary }

// IsBinary reports whether op's node carries exactly two children.
func (op Opcode) IsBinary() bool { return opcodeTable[op].arity == ArityBinary }

// IsCommutative reports whether swapping op's operands preserves value.
func (op Opcode) IsCommutative() bool { return opcodeTable[op].commutative }

// IsAssociative reports whether op's chains can be freely re-parenthesised.
func (op Opcode) IsAssociative() bool { return opcodeTable[op].associative }

// Identity returns op's identity element and whether it has one
// (e.g. 0 for +, 1 for *).
func (op Opcode) Identity() (float32, bool) {
	info := opcodeTable[op]
	return info.identityValue, info.hasIdentity
}

// allOpcodes enumerates every defined opcode, for completeness checks.
var allOpcodes = func() []Opcode {
	ops := make([]Opcode, 0, opcodeCount-1)
	for op := OpConstant; op < opcodeCount; op++ {
		ops = append(ops, op)
	}
	return ops
}()
