package pbrt

import "testing"

func TestGraphicsStateStackPushPopBalanced(t *testing.T) {
	s := newGraphicsStateStack()
	if s.depth() != 1 {
		t.Fatalf("initial depth = %d, want 1", s.depth())
	}
	s.push()
	s.push()
	if s.depth() != 3 {
		t.Fatalf("depth after 2 pushes = %d, want 3", s.depth())
	}
	if err := s.pop(); err != nil {
		t.Fatalf("pop failed: %v", err)
	}
	if err := s.pop(); err != nil {
		t.Fatalf("pop failed: %v", err)
	}
	if s.depth() != 1 {
		t.Fatalf("depth after popping back = %d, want 1", s.depth())
	}
}

func TestGraphicsStateStackUnmatchedPopErrors(t *testing.T) {
	s := newGraphicsStateStack()
	if err := s.pop(); err == nil {
		t.Fatal("expected an error popping the base graphics state with no matching push")
	}
}

func TestGraphicsStatePushCopiesTransformAndRestoresOnPop(t *testing.T) {
	s := newGraphicsStateStack()
	s.current().translate(1, 2, 3)
	before := s.current().ctm

	s.push()
	s.current().translate(10, 10, 10)
	if s.current().ctm == before {
		t.Fatal("transform inside the pushed scope should differ after Translate")
	}

	if err := s.pop(); err != nil {
		t.Fatalf("pop failed: %v", err)
	}
	if s.current().ctm != before {
		t.Fatal("popping should restore the transform active before the matching push")
	}
}

func TestGraphicsStateCloneDoesNotShareTextureTableMutations(t *testing.T) {
	g := newGraphicsState()
	g.textures["a"] = &DeclaredTexture{}

	clone := g.clone()
	clone.textures["b"] = &DeclaredTexture{}

	if _, ok := g.textures["b"]; ok {
		t.Fatal("mutating the clone's texture table should not affect the original")
	}
	if _, ok := clone.textures["a"]; !ok {
		t.Fatal("clone should inherit entries declared before the clone was taken")
	}
}
