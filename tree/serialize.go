package tree

import (
	"encoding/binary"
)

// Wire tags identify a node record's shape in the binary format. These are
// deliberately a separate, frozen enumeration from NodeKind/Opcode so the
// format's byte layout never shifts if the in-memory kinds are reordered.
const (
	wireConstant byte = 0x01
	wireAxisX    byte = 0x02
	wireAxisY    byte = 0x03
	wireAxisZ    byte = 0x04
	wireVarFree  byte = 0x05
	wireUnary    byte = 0x06
	wireBinary   byte = 0x07
	wireConstVar byte = 0x08
	wireRemap    byte = 0x09
	wireOracle   byte = 0x0A

	wireMagic byte = 0x54 // 'T'
)

// Serialize encodes h's DAG into the kernel's binary wire format: a magic
// byte, four '"'-terminated metadata strings (all empty here; see
// SerializeWithMetadata to fill them), one record per distinct node in
// post-order, and a 0xFF 0xFF terminator. Binary node records store their
// child indices as (rhsIndex, lhsIndex) rather than (lhs, rhs) — see
// DESIGN.md §6.5.
func Serialize(h Handle) []byte {
	return SerializeWithMetadata(h, [4]string{})
}

// SerializeWithMetadata is Serialize with the four metadata slots populated
// explicitly (name, doc, source, extra, in that order).
func SerializeWithMetadata(h Handle, metadata [4]string) []byte {
	var order []*nodeRecord
	index := make(map[*nodeRecord]uint32)
	Walk(h, func(node Handle) {
		index[node.n] = uint32(len(order))
		order = append(order, node.n)
	})

	buf := make([]byte, 0, 16+len(order)*12)
	buf = append(buf, wireMagic)
	for _, s := range metadata {
		buf = appendMetaString(buf, s)
	}
	for _, n := range order {
		buf = appendNodeRecord(buf, n, index)
	}
	buf = append(buf, 0xFF, 0xFF)
	return buf
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

// appendMetaString encodes a tree-level metadata string (name/author/
// licence/...) the way the original wire format does: raw content bytes
// followed by a '"' terminator, so an empty string is just the single
// terminator byte. This is why the worked example in spec.md §6 shows four
// bare '"' bytes for four empty metadata slots rather than four 4-byte
// zero-length prefixes.
func appendMetaString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	return append(buf, '"')
}

// appendLenString encodes a length-prefixed byte string, used for oracle
// clause tags/payloads (an extension of the wire format with no worked
// example to match bit-for-bit, since oracle semantics are out of scope —
// spec.md §4.8 just delegates to "the clause's serialisation callback").
// Length-prefixing (rather than a '"' terminator) is needed here because a
// CBOR payload may itself contain a 0x22 byte.
func appendLenString(buf []byte, s string) []byte {
	buf = appendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

func appendNodeRecord(buf []byte, n *nodeRecord, index map[*nodeRecord]uint32) []byte {
	switch n.kind {
	case KindConstant:
		buf = append(buf, wireConstant)
		buf = appendUint32(buf, n.constBits)

	case KindAxis:
		switch n.op {
		case OpVarX:
			buf = append(buf, wireAxisX)
		case OpVarY:
			buf = append(buf, wireAxisY)
		case OpVarZ:
			buf = append(buf, wireAxisZ)
		}

	case KindVarFree:
		buf = append(buf, wireVarFree)
		buf = appendUint64(buf, n.freeID)

	case KindConstVar:
		buf = append(buf, wireConstVar)
		buf = appendUint32(buf, index[n.children[0]])

	case KindUnary:
		buf = append(buf, wireUnary)
		buf = append(buf, byte(n.op))
		buf = appendUint32(buf, index[n.children[0]])

	case KindBinary:
		buf = append(buf, wireBinary)
		buf = append(buf, byte(n.op))
		buf = appendUint32(buf, index[n.children[1]]) // rhs first
		buf = appendUint32(buf, index[n.children[0]]) // then lhs

	case KindRemap:
		buf = append(buf, wireRemap)
		buf = appendUint32(buf, index[n.children[0]])
		buf = appendUint32(buf, index[n.children[1]])
		buf = appendUint32(buf, index[n.children[2]])
		buf = appendUint32(buf, index[n.children[3]])

	case KindOracle:
		buf = append(buf, wireOracle)
		buf = appendLenString(buf, n.oracle.RegistryTag())
		payload, err := n.oracle.MarshalPayload()
		if err != nil {
			// Serialize has no error return (matches the teacher's
			// hash serializer); an oracle clause that can't marshal its
			// own payload is a programming error in the clause, not a
			// runtime condition callers can recover from here.
			panic("tree: oracle payload marshal failed: " + err.Error())
		}
		buf = appendLenString(buf, string(payload))
	}
	return buf
}

type reader struct {
	data   []byte
	offset int
}

func (r *reader) byte() (byte, error) {
	if r.offset >= len(r.data) {
		return 0, newDeserializeError(r.offset, "unexpected end of input")
	}
	b := r.data[r.offset]
	r.offset++
	return b, nil
}

func (r *reader) uint32() (uint32, error) {
	if r.offset+4 > len(r.data) {
		return 0, newDeserializeError(r.offset, "truncated uint32")
	}
	v := binary.LittleEndian.Uint32(r.data[r.offset:])
	r.offset += 4
	return v, nil
}

func (r *reader) uint64() (uint64, error) {
	if r.offset+8 > len(r.data) {
		return 0, newDeserializeError(r.offset, "truncated uint64")
	}
	v := binary.LittleEndian.Uint64(r.data[r.offset:])
	r.offset += 8
	return v, nil
}

// metaString reads a '"'-terminated metadata string (the counterpart of
// appendMetaString).
func (r *reader) metaString() (string, error) {
	start := r.offset
	for {
		b, err := r.byte()
		if err != nil {
			return "", newDeserializeError(start, "unterminated metadata string")
		}
		if b == '"' {
			return string(r.data[start : r.offset-1]), nil
		}
	}
}

// lenString reads a length-prefixed string (the counterpart of
// appendLenString), used for oracle tags/payloads.
func (r *reader) lenString() (string, error) {
	n, err := r.uint32()
	if err != nil {
		return "", err
	}
	if r.offset+int(n) > len(r.data) {
		return "", newDeserializeError(r.offset, "truncated string")
	}
	s := string(r.data[r.offset : r.offset+int(n)])
	r.offset += int(n)
	return s, nil
}

// Deserialize decodes a payload produced by Serialize/SerializeWithMetadata.
// Every node is rebuilt through the C4 smart constructors, so the result is
// hash-consed exactly as if it had been built fresh by calling code: an
// identical tree serialized twice deserializes to the identical node, unless
// it contains var-free or oracle leaves, which are rebuilt as new nodes on
// every Deserialize.
func Deserialize(data []byte) (Handle, error) {
	r := &reader{data: data}

	magic, err := r.byte()
	if err != nil {
		return Handle{}, err
	}
	if magic != wireMagic {
		return Handle{}, newDeserializeError(0, "bad magic byte")
	}
	for i := 0; i < 4; i++ {
		if _, err := r.metaString(); err != nil {
			return Handle{}, err
		}
	}

	var built []Handle
	defer func() {
		for _, h := range built {
			h.Drop()
		}
	}()

	for {
		peekOffset := r.offset
		tag, err := r.byte()
		if err != nil {
			return Handle{}, err
		}
		if tag == 0xFF {
			tag2, err := r.byte()
			if err != nil {
				return Handle{}, err
			}
			if tag2 != 0xFF {
				return Handle{}, newDeserializeError(peekOffset, "malformed terminator")
			}
			break
		}

		h, err := readNodeRecord(tag, r, built)
		if err != nil {
			return Handle{}, err
		}
		built = append(built, h)
	}

	if len(built) == 0 {
		return Handle{}, newDeserializeError(r.offset, "empty tree")
	}
	root := built[len(built)-1].Clone()
	return root, nil
}

func readNodeRecord(tag byte, r *reader, built []Handle) (Handle, error) {
	child := func(idx uint32) (Handle, error) {
		if int(idx) >= len(built) {
			return Handle{}, newDeserializeError(r.offset, "child index out of range")
		}
		return built[idx], nil
	}

	switch tag {
	case wireConstant:
		bits, err := r.uint32()
		if err != nil {
			return Handle{}, err
		}
		return Constant(float32FromBits(bits)), nil

	case wireAxisX:
		return VarX(), nil
	case wireAxisY:
		return VarY(), nil
	case wireAxisZ:
		return VarZ(), nil

	case wireVarFree:
		if _, err := r.uint64(); err != nil {
			return Handle{}, err
		}
		return Var(), nil

	case wireConstVar:
		idx, err := r.uint32()
		if err != nil {
			return Handle{}, err
		}
		c, err := child(idx)
		if err != nil {
			return Handle{}, err
		}
		return ConstVar(c), nil

	case wireUnary:
		opByte, err := r.byte()
		if err != nil {
			return Handle{}, err
		}
		idx, err := r.uint32()
		if err != nil {
			return Handle{}, err
		}
		c, err := child(idx)
		if err != nil {
			return Handle{}, err
		}
		ctor, ok := unaryCtors[Opcode(opByte)]
		if !ok {
			return Handle{}, newDeserializeError(r.offset, "unknown unary opcode")
		}
		return ctor(c), nil

	case wireBinary:
		opByte, err := r.byte()
		if err != nil {
			return Handle{}, err
		}
		rhsIdx, err := r.uint32()
		if err != nil {
			return Handle{}, err
		}
		lhsIdx, err := r.uint32()
		if err != nil {
			return Handle{}, err
		}
		l, err := child(lhsIdx)
		if err != nil {
			return Handle{}, err
		}
		rr, err := child(rhsIdx)
		if err != nil {
			return Handle{}, err
		}
		ctor, ok := binaryCtors[Opcode(opByte)]
		if !ok {
			return Handle{}, newDeserializeError(r.offset, "unknown binary opcode")
		}
		return ctor(l, rr), nil

	case wireRemap:
		bodyIdx, err := r.uint32()
		if err != nil {
			return Handle{}, err
		}
		xIdx, err := r.uint32()
		if err != nil {
			return Handle{}, err
		}
		yIdx, err := r.uint32()
		if err != nil {
			return Handle{}, err
		}
		zIdx, err := r.uint32()
		if err != nil {
			return Handle{}, err
		}
		body, err := child(bodyIdx)
		if err != nil {
			return Handle{}, err
		}
		x, err := child(xIdx)
		if err != nil {
			return Handle{}, err
		}
		y, err := child(yIdx)
		if err != nil {
			return Handle{}, err
		}
		z, err := child(zIdx)
		if err != nil {
			return Handle{}, err
		}
		return Remap(body, x, y, z), nil

	case wireOracle:
		tag, err := r.lenString()
		if err != nil {
			return Handle{}, err
		}
		payload, err := r.lenString()
		if err != nil {
			return Handle{}, err
		}
		clause, err := GlobalOracleRegistry.Decode(tag, []byte(payload))
		if err != nil {
			return Handle{}, newDeserializeError(r.offset, err.Error())
		}
		return OracleLeaf(clause), nil

	default:
		return Handle{}, newDeserializeError(r.offset-1, "unknown wire tag")
	}
}
