package tree

import "testing"

func TestOracleLeaf_NeverSharesIdentity(t *testing.T) {
	a := OracleLeaf(&ConstantShapeOracle{Value: 2})
	b := OracleLeaf(&ConstantShapeOracle{Value: 2})
	defer a.Drop()
	defer b.Drop()

	if a.Same(b) {
		t.Error("two oracle leaves with equal payloads should still be distinct nodes (never hash-consed)")
	}
}

func TestOracleRegistry_RoundTripsConstantShape(t *testing.T) {
	leaf := OracleLeaf(&ConstantShapeOracle{Value: 3.5})
	defer leaf.Drop()

	data := Serialize(leaf)
	got, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	defer got.Drop()

	if got.Kind() != KindOracle {
		t.Fatalf("deserialized leaf kind: got %v, want KindOracle", got.Kind())
	}
	clause, ok := got.Oracle().(*ConstantShapeOracle)
	if !ok {
		t.Fatalf("deserialized oracle clause type: got %T, want *ConstantShapeOracle", got.Oracle())
	}
	if clause.Value != 3.5 {
		t.Errorf("round-tripped ConstantShapeOracle.Value: got %v, want 3.5", clause.Value)
	}
}

func TestOracleRegistry_RoundTripsNamedOracle(t *testing.T) {
	leaf := OracleLeaf(&NamedOracle{Ident: "CubeOracle"})
	defer leaf.Drop()

	data := Serialize(leaf)
	got, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	defer got.Drop()

	if got.Oracle().DisplayName() != "CubeOracle" {
		t.Errorf("round-tripped NamedOracle.DisplayName: got %q, want %q", got.Oracle().DisplayName(), "CubeOracle")
	}
}

func TestOracleRegistry_DecodeUnknownTagFails(t *testing.T) {
	_, err := GlobalOracleRegistry.Decode("NoSuchClause", nil)
	if err == nil {
		t.Fatal("expected an error decoding an unregistered oracle tag")
	}
}

func TestOracleClause_CloneIsIndependent(t *testing.T) {
	orig := &ConstantShapeOracle{Value: 9}
	clone := orig.Clone().(*ConstantShapeOracle)
	clone.Value = 10

	if orig.Value == clone.Value {
		t.Error("Clone should produce an independent copy, not an alias")
	}
}
