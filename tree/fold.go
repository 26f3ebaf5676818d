package tree

import "math"

// foldUnary evaluates a unary opcode on a constant operand, matching the
// original source's constant-folding semantics: standard IEEE-754 math,
// NaN propagates.
func foldUnary(op Opcode, v float32) float32 {
	x := float64(v)
	switch op {
	case OpNeg:
		return float32(-x)
	case OpAbs:
		return float32(math.Abs(x))
	case OpSquare:
		return float32(x * x)
	case OpSqrt:
		return float32(math.Sqrt(x))
	case OpSin:
		return float32(math.Sin(x))
	case OpCos:
		return float32(math.Cos(x))
	case OpTan:
		return float32(math.Tan(x))
	case OpAsin:
		return float32(math.Asin(x))
	case OpAcos:
		return float32(math.Acos(x))
	case OpAtan:
		return float32(math.Atan(x))
	case OpExp:
		return float32(math.Exp(x))
	case OpLog:
		return float32(math.Log(x))
	case OpRecip:
		return float32(1 / x)
	default:
		panic("tree: foldUnary: not a unary opcode")
	}
}

// foldBinary evaluates a binary opcode on two constant operands.
func foldBinary(op Opcode, a, b float32) float32 {
	x, y := float64(a), float64(b)
	switch op {
	case OpAdd:
		return float32(x + y)
	case OpSub:
		return float32(x - y)
	case OpMul:
		return float32(x * y)
	case OpDiv:
		return float32(x / y)
	case OpMin:
		return float32(math.Min(x, y))
	case OpMax:
		return float32(math.Max(x, y))
	case OpPow:
		return float32(math.Pow(x, y))
	case OpNthRoot:
		return float32(math.Pow(x, 1/y))
	case OpAtan2:
		return float32(math.Atan2(x, y))
	case OpMod:
		return float32(math.Mod(x, y))
	case OpCompare:
		switch {
		case math.IsNaN(x) || math.IsNaN(y):
			return float32(math.NaN())
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	default:
		panic("tree: foldBinary: not a binary opcode")
	}
}
