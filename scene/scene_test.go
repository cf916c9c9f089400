package scene

import "testing"

func TestNextIDsAreMonotonicAndPrefixed(t *testing.T) {
	s := New()
	if id := s.NextShapeID(); id != "s_1" {
		t.Fatalf("NextShapeID() = %q, want s_1", id)
	}
	if id := s.NextShapeID(); id != "s_2" {
		t.Fatalf("NextShapeID() = %q, want s_2", id)
	}
	if id := s.NextMaterialID(); id != "m_1" {
		t.Fatalf("NextMaterialID() = %q, want m_1", id)
	}
	if id := s.NextTextureID(); id != "t_1" {
		t.Fatalf("NextTextureID() = %q, want t_1", id)
	}
	if id := s.NextShapeGroupID(); id != "sg_1" {
		t.Fatalf("NextShapeGroupID() = %q, want sg_1", id)
	}
	if id := s.NextInstanceID(); id != "i_1" {
		t.Fatalf("NextInstanceID() = %q, want i_1", id)
	}
	if id := s.NextEnvironmentID(); id != "e_1" {
		t.Fatalf("NextEnvironmentID() = %q, want e_1", id)
	}
}

func TestAddMaterialRejectsDoubleAdd(t *testing.T) {
	s := New()
	m := &Material{Kind: MatteMaterial}
	if err := s.AddMaterial(m); err != nil {
		t.Fatalf("first AddMaterial failed: %v", err)
	}
	if err := s.AddMaterial(m); err == nil {
		t.Fatal("expected an error re-adding the same material pointer")
	}
	if len(s.Materials) != 1 {
		t.Fatalf("len(s.Materials) = %d, want 1", len(s.Materials))
	}
}

func TestAddShapeGroupAssignsShapeIDs(t *testing.T) {
	s := New()
	group := &ShapeGroup{Shapes: []*Shape{{}, {}}}
	if err := s.AddShapeGroup(group); err != nil {
		t.Fatalf("AddShapeGroup failed: %v", err)
	}
	if group.ID != "sg_1" {
		t.Fatalf("group.ID = %q, want sg_1", group.ID)
	}
	if group.Shapes[0].ID != "s_1" || group.Shapes[1].ID != "s_2" {
		t.Fatalf("shape ids = %q, %q, want s_1, s_2", group.Shapes[0].ID, group.Shapes[1].ID)
	}
}

func TestAddInstanceRequiresKnownGroup(t *testing.T) {
	s := New()
	orphan := &ShapeGroup{}
	inst := &Instance{Group: orphan}
	if err := s.AddInstance(inst); err == nil {
		t.Fatal("expected an error instancing a shape group that was never added to the scene")
	}
}

func TestAddInstanceSucceedsForAddedGroup(t *testing.T) {
	s := New()
	group := &ShapeGroup{}
	if err := s.AddShapeGroup(group); err != nil {
		t.Fatalf("AddShapeGroup failed: %v", err)
	}
	inst := &Instance{Group: group}
	if err := s.AddInstance(inst); err != nil {
		t.Fatalf("AddInstance failed: %v", err)
	}
	if inst.ID != "i_1" {
		t.Fatalf("inst.ID = %q, want i_1", inst.ID)
	}
}

func TestCameraHasNoIdentifier(t *testing.T) {
	// Cameras are explicitly excluded from the six id-prefix kinds;
	// AddCamera has nothing to assign.
	s := New()
	cam := &Camera{}
	s.AddCamera(cam)
	if len(s.Cameras) != 1 || s.Cameras[0] != cam {
		t.Fatal("AddCamera did not append the camera")
	}
}
