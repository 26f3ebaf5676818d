package oraclesvc

import "testing"

func TestService_RegisterAndLookup(t *testing.T) {
	s := New()

	reg, err := s.Register("CubeOracle", "Cube", map[string]ParamKind{
		"size": ParamNumber,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.SessionID == "" {
		t.Error("Register should assign a non-empty session id")
	}

	got, ok := s.Lookup("CubeOracle")
	if !ok {
		t.Fatal("Lookup(CubeOracle): not found")
	}
	if got.DisplayName != "Cube" {
		t.Errorf("DisplayName: got %q, want %q", got.DisplayName, "Cube")
	}
}

func TestService_RegisterRejectsEmptyTag(t *testing.T) {
	s := New()
	if _, err := s.Register("", "Anonymous", nil); err == nil {
		t.Error("expected an error registering an empty tag")
	}
}

func TestService_RegisterTwiceGetsFreshSessionIDs(t *testing.T) {
	s := New()

	first, err := s.Register("CubeOracle", "Cube", nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	second, err := s.Register("CubeOracle", "Cube", nil)
	if err != nil {
		t.Fatalf("Register (again): %v", err)
	}
	if first.SessionID == second.SessionID {
		t.Error("re-registering the same tag should assign a new session id")
	}
}

func TestService_Unregister(t *testing.T) {
	s := New()
	if _, err := s.Register("CubeOracle", "Cube", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
	s.Unregister("CubeOracle")
	if _, ok := s.Lookup("CubeOracle"); ok {
		t.Error("plugin should no longer be registered after Unregister")
	}
}

func TestService_DescribeUnknownTagFails(t *testing.T) {
	s := New()
	if _, err := s.Describe("NoSuchPlugin"); err == nil {
		t.Error("expected an error describing an unregistered tag")
	}
}

func TestService_DescribeListsSchemaFields(t *testing.T) {
	s := New()
	_, err := s.Register("SphereOracle", "Sphere", map[string]ParamKind{
		"radius": ParamNumber,
		"label":  ParamString,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	msgDesc, err := s.Describe("SphereOracle")
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if len(msgDesc.GetFields()) != 2 {
		t.Errorf("field count: got %d, want 2", len(msgDesc.GetFields()))
	}

	text, err := s.DescribeText("SphereOracle")
	if err != nil {
		t.Fatalf("DescribeText: %v", err)
	}
	if text == "" {
		t.Error("DescribeText should return a non-empty description")
	}
}

func TestService_Tags(t *testing.T) {
	s := New()
	if _, err := s.Register("A", "A", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := s.Register("B", "B", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tags := s.Tags()
	if len(tags) != 2 {
		t.Errorf("Tags(): got %d entries, want 2", len(tags))
	}
}
