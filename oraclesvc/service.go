// Package oraclesvc lets an out-of-process oracle plugin register itself and
// advertise the parameter schema its clauses accept, so a caller (typically
// the CLI) can inspect a plugin without evaluating any of its clauses — the
// kernel never evaluates oracle semantics itself (spec.md §1).
package oraclesvc

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/builder"
	"google.golang.org/protobuf/types/known/structpb"
)

// ParamKind is the small set of scalar types a plugin's parameter schema can
// declare a field as.
type ParamKind string

const (
	ParamString ParamKind = "string"
	ParamNumber ParamKind = "number"
	ParamBool   ParamKind = "bool"
)

// Registration is what a plugin advertises when it registers: the textual
// tag its clauses will carry on the wire (see tree.OracleClause.RegistryTag,
// though a plugin's tag is a NamedOracle instance identifier, not a Go
// type — the two tag spaces are independent), a human-readable name, and its
// parameter schema.
type Registration struct {
	SessionID   string
	Tag         string
	DisplayName string
	Params      map[string]ParamKind
	schema      *structpb.Struct
}

// Service tracks the set of currently registered oracle plugins. Grounded on
// server/eval_service.go's request/response shape, adapted from a Connect
// RPC handler to a plain in-process registry: wiring an actual Connect
// service here would need generated stubs from a .proto file this session
// can't run protoc to produce (see DESIGN.md's dropped-dependency notes).
type Service struct {
	mu    sync.RWMutex
	byTag map[string]*Registration
}

// New creates an empty plugin registry.
func New() *Service {
	return &Service{byTag: make(map[string]*Registration)}
}

// Register records a plugin's advertised name and parameter schema under
// tag, replacing any previous registration for the same tag, and returns a
// fresh opaque session id for this registration.
func (s *Service) Register(tag, displayName string, params map[string]ParamKind) (*Registration, error) {
	if tag == "" {
		return nil, fmt.Errorf("oraclesvc: plugin tag must not be empty")
	}

	schema, err := paramsToStruct(params)
	if err != nil {
		return nil, fmt.Errorf("oraclesvc: encoding schema for %q: %w", tag, err)
	}

	reg := &Registration{
		SessionID:   uuid.NewString(),
		Tag:         tag,
		DisplayName: displayName,
		Params:      params,
		schema:      schema,
	}

	s.mu.Lock()
	s.byTag[tag] = reg
	s.mu.Unlock()

	log.Printf("oraclesvc: registered plugin %q as %q (session %s)", tag, displayName, reg.SessionID)
	return reg, nil
}

// Unregister removes tag's registration, if any.
func (s *Service) Unregister(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byTag, tag)
}

// Lookup returns tag's current registration.
func (s *Service) Lookup(tag string) (*Registration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.byTag[tag]
	return reg, ok
}

// Tags returns every currently registered plugin tag.
func (s *Service) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tags := make([]string, 0, len(s.byTag))
	for tag := range s.byTag {
		tags = append(tags, tag)
	}
	return tags
}

// Describe builds a protobuf message descriptor for tag's parameter schema
// via desc/builder (constructed in-process, no .proto file or protoc run
// needed) — this is what `treeutil oracle describe` prints, the same
// introspection concern pkg/codegen/codegen_grpc.go serves with a live
// grpcreflect connection, adapted here to a schema this process already
// holds rather than one fetched over the wire.
func (s *Service) Describe(tag string) (*desc.MessageDescriptor, error) {
	reg, ok := s.Lookup(tag)
	if !ok {
		return nil, fmt.Errorf("oraclesvc: no plugin registered for tag %q", tag)
	}

	msgBuilder := builder.NewMessage(reg.Tag + "Params")
	for name, kind := range reg.Params {
		fieldType, err := fieldTypeFor(kind)
		if err != nil {
			return nil, fmt.Errorf("oraclesvc: describing %q: %w", tag, err)
		}
		msgBuilder.AddField(builder.NewField(name, fieldType))
	}

	msgDesc, err := msgBuilder.Build()
	if err != nil {
		return nil, fmt.Errorf("oraclesvc: building descriptor for %q: %w", tag, err)
	}
	return msgDesc, nil
}

// DescribeText renders tag's schema as a human-readable field list, the form
// `treeutil oracle describe` prints to stdout.
func (s *Service) DescribeText(tag string) (string, error) {
	msgDesc, err := s.Describe(tag)
	if err != nil {
		return "", err
	}
	reg, _ := s.Lookup(tag)

	out := fmt.Sprintf("%s (%s)\n", reg.DisplayName, tag)
	for _, f := range msgDesc.GetFields() {
		out += fmt.Sprintf("  %s: %s\n", f.GetName(), f.GetType())
	}
	return out, nil
}

func fieldTypeFor(kind ParamKind) (*builder.FieldType, error) {
	switch kind {
	case ParamString:
		return builder.FieldTypeString(), nil
	case ParamNumber:
		return builder.FieldTypeDouble(), nil
	case ParamBool:
		return builder.FieldTypeBool(), nil
	default:
		return nil, fmt.Errorf("unknown parameter kind %q", kind)
	}
}

func paramsToStruct(params map[string]ParamKind) (*structpb.Struct, error) {
	fields := make(map[string]interface{}, len(params))
	for name, kind := range params {
		fields[name] = string(kind)
	}
	return structpb.NewStruct(fields)
}
