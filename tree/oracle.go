package tree

import (
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// OracleClause is the capability set an opaque leaf delegates to: evaluation
// logic the kernel itself never inspects or folds, only carries around by
// identity (spec.md §9's design note). A clause knows how to clone itself,
// name itself for the printer and registry, and (de)serialise its own
// parameters.
type OracleClause interface {
	// RegistryTag identifies the clause's concrete type, used to find the
	// right factory on Deserialize. Fixed per Go type, not per instance.
	RegistryTag() string

	// DisplayName is what the printer shows after the leading quote (C9),
	// and is typically instance-specific (e.g. a shape's given name).
	DisplayName() string

	// Clone returns an independent copy of the clause (oracle leaves aren't
	// hash-consed, so this backs Handle.Clone for KindOracle nodes only in
	// the sense that the clause itself, not the node, may need duplicating
	// by callers that build new leaves from an existing one).
	Clone() OracleClause

	// MarshalPayload encodes the clause's parameters for serialisation (C8).
	MarshalPayload() ([]byte, error)
}

// OracleFactory reconstructs a clause from a payload previously produced by
// MarshalPayload.
type OracleFactory func(payload []byte) (OracleClause, error)

// OracleRegistry maps registry tags to factories, so Deserialize can
// reconstruct a clause it has never seen a Go type for directly — only its
// tag and payload bytes. Grounded on vm/object_registry.go's
// map+mutex+lookup registry shape.
type OracleRegistry struct {
	mu        sync.RWMutex
	factories map[string]OracleFactory
}

// GlobalOracleRegistry is the process-wide registry Deserialize consults.
var GlobalOracleRegistry = NewOracleRegistry()

func NewOracleRegistry() *OracleRegistry {
	return &OracleRegistry{factories: make(map[string]OracleFactory)}
}

// Register installs factory under tag, overwriting any previous registration
// for the same tag.
func (r *OracleRegistry) Register(tag string, factory OracleFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[tag] = factory
}

// Decode looks up tag and invokes its factory on payload.
func (r *OracleRegistry) Decode(tag string, payload []byte) (OracleClause, error) {
	r.mu.RLock()
	factory, ok := r.factories[tag]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("tree: no oracle clause registered for tag %q", tag)
	}
	return factory(payload)
}

// OracleLeaf builds a fresh, non-interned KindOracle node around clause.
// Oracle leaves are compared by node identity only (never structurally
// deduplicated), matching how var-free leaves are handled.
func OracleLeaf(clause OracleClause) Handle {
	n := &nodeRecord{kind: KindOracle, op: OpOracle, flags: FlagHasOracle, oracle: clause}
	n.refcount.Store(1)
	return Handle{n}
}

// --- Example clauses --------------------------------------------------------

// ConstantShapeOracle always evaluates to the same scalar value everywhere;
// useful as a test double and as a minimal worked example of the interface.
type ConstantShapeOracle struct {
	Value float32 `cbor:"value"`
}

func (c *ConstantShapeOracle) RegistryTag() string { return "ConstantShape" }
func (c *ConstantShapeOracle) DisplayName() string { return "ConstantShape" }
func (c *ConstantShapeOracle) Clone() OracleClause {
	return &ConstantShapeOracle{Value: c.Value}
}
func (c *ConstantShapeOracle) MarshalPayload() ([]byte, error) {
	return cbor.Marshal(c)
}

func init() {
	GlobalOracleRegistry.Register("ConstantShape", func(payload []byte) (OracleClause, error) {
		var c ConstantShapeOracle
		if err := cbor.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("tree: decode ConstantShape oracle: %w", err)
		}
		return &c, nil
	})
}

// NamedOracle carries no evaluation logic of its own; it exists so an
// external plugin (see the oraclesvc package) can be referenced from a tree
// by name alone. DisplayName is the plugin's given identifier, which is why
// the printer shows 'CubeOracle rather than a fixed class tag.
type NamedOracle struct {
	Ident string `cbor:"ident"`
}

func (n *NamedOracle) RegistryTag() string { return "NamedOracle" }
func (n *NamedOracle) DisplayName() string { return n.Ident }
func (n *NamedOracle) Clone() OracleClause {
	return &NamedOracle{Ident: n.Ident}
}
func (n *NamedOracle) MarshalPayload() ([]byte, error) {
	return cbor.Marshal(n)
}

func init() {
	GlobalOracleRegistry.Register("NamedOracle", func(payload []byte) (OracleClause, error) {
		var n NamedOracle
		if err := cbor.Unmarshal(payload, &n); err != nil {
			return nil, fmt.Errorf("tree: decode NamedOracle: %w", err)
		}
		return &n, nil
	})
}
