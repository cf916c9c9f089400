// Package scene defines the in-memory scene graph produced by the pbrt
// package and the identifier/de-duplication rules used to assemble it.
package scene

import (
	"fmt"

	"github.com/gopbrt/pbrtscene/types"
)

// Camera describes a single perspective camera placed in the scene. Cameras
// are not assigned an identifier: spec.md's prefix table (s_, sg_, i_, m_,
// t_, e_) covers shapes, shape-groups, instances, materials, textures and
// environments only.
type Camera struct {
	// WorldToCamera is the inverse of the transformation matrix active
	// when the Camera directive was parsed.
	WorldToCamera types.Mat4

	FOV         float32 // vertical field of view, radians
	AspectRatio float32
	LensRadius  float32
	FocalDist   float32
}

// MaterialKind enumerates the supported PBRT material subtypes.
type MaterialKind uint8

const (
	MatteMaterial MaterialKind = iota
	PlasticMaterial
	MetalMaterial
	MirrorMaterial
	UberMaterial
	TranslucentMaterial
	GlassMaterial
	MixMaterial
)

// Material holds the blended shading parameters of a declared or inline
// PBRT material. Zero-valued textures (nil) mean "use the scalar field".
type Material struct {
	ID   string
	Name string // empty for unnamed (inline Material directive) materials

	Kind MaterialKind

	Diffuse     types.Vec3
	Specular    types.Vec3
	Reflective  types.Vec3
	Transmit    types.Vec3
	Roughness   float32
	IOR         float32

	DiffuseTex    *Texture
	SpecularTex   *Texture
	ReflectiveTex *Texture
	TransmitTex   *Texture
	BumpTex       *Texture

	// Emission, set by AreaLightSource applied to a shape's material.
	Emitted   types.Vec3
	TwoSided  bool
	IsEmitter bool
}

// TexturePixelType mirrors the "spectrum"/"rgb"/"float" pixeltype argument
// to the Texture directive.
type TexturePixelType uint8

const (
	SpectrumTexture TexturePixelType = iota
	RGBTexture
	FloatTexture
)

// Texture is a committed image or procedural texture.
type Texture struct {
	ID   string
	Name string

	PixelType TexturePixelType

	Width, Height uint32
	HDR           bool
	// Data is a tightly packed RGBA buffer (float32x4 if HDR, else
	// byte x4), matching imageio.Image.
	Data []byte
}

// Shape is a single renderable primitive: either a triangle mesh (from
// "trianglemesh"/"plymesh") or a procedural cube.
type Shape struct {
	ID string

	Vertices []types.Vec3
	Normals  []types.Vec3 // nil if not supplied/generated
	UVs      []types.Vec2 // nil if not supplied
	Indices  []int32      // flattened triangle index triples

	Material *Material
}

// ShapeGroup bundles the shapes produced by a single Shape directive so that
// instances can refer to the group as a unit. An ObjectBegin/ObjectEnd block
// holds one group per Shape directive inside it.
type ShapeGroup struct {
	ID     string
	Shapes []*Shape
}

// Instance places a ShapeGroup in the world using a frame transform.
type Instance struct {
	ID    string
	Group *ShapeGroup
	Frame types.Mat4
}

// Environment represents an infinite/distant light, optionally textured by
// an equirectangular map.
type Environment struct {
	ID       string
	Radiance types.Vec3
	Map      *Texture
}

// Scene is the fully assembled scene graph.
type Scene struct {
	Cameras      []*Camera
	ShapeGroups  []*ShapeGroup
	Instances    []*Instance
	Materials    []*Material
	Textures     []*Texture
	Environments []*Environment

	counters idCounters
}

type idCounters struct {
	shape       int
	shapeGroup  int
	instance    int
	material    int
	texture     int
	environment int
}

// New returns an empty scene graph.
func New() *Scene {
	return &Scene{}
}

// NextShapeID, NextShapeGroupID, ... generate stable, unique, monotonically
// increasing identifiers for a single parse. Prefixes match spec.md §4.13.
func (s *Scene) NextShapeID() string {
	s.counters.shape++
	return fmt.Sprintf("s_%d", s.counters.shape)
}

func (s *Scene) NextShapeGroupID() string {
	s.counters.shapeGroup++
	return fmt.Sprintf("sg_%d", s.counters.shapeGroup)
}

func (s *Scene) NextInstanceID() string {
	s.counters.instance++
	return fmt.Sprintf("i_%d", s.counters.instance)
}

func (s *Scene) NextMaterialID() string {
	s.counters.material++
	return fmt.Sprintf("m_%d", s.counters.material)
}

func (s *Scene) NextTextureID() string {
	s.counters.texture++
	return fmt.Sprintf("t_%d", s.counters.texture)
}

func (s *Scene) NextEnvironmentID() string {
	s.counters.environment++
	return fmt.Sprintf("e_%d", s.counters.environment)
}

// AddCamera appends a camera to the scene.
func (s *Scene) AddCamera(c *Camera) {
	s.Cameras = append(s.Cameras, c)
}

// AddMaterial appends a material to the scene, guarding against the same
// pointer being added twice (mirrors the teacher's Scene.AddMaterial
// identity check).
func (s *Scene) AddMaterial(m *Material) error {
	for _, existing := range s.Materials {
		if existing == m {
			return fmt.Errorf("scene: material already added")
		}
	}
	m.ID = s.NextMaterialID()
	s.Materials = append(s.Materials, m)
	return nil
}

// AddTexture commits a declared texture to the scene exactly once.
func (s *Scene) AddTexture(t *Texture) error {
	for _, existing := range s.Textures {
		if existing == t {
			return fmt.Errorf("scene: texture already added")
		}
	}
	t.ID = s.NextTextureID()
	s.Textures = append(s.Textures, t)
	return nil
}

// AddShapeGroup appends a shape group (and assigns ids to each of its
// shapes) to the scene.
func (s *Scene) AddShapeGroup(g *ShapeGroup) error {
	for _, existing := range s.ShapeGroups {
		if existing == g {
			return fmt.Errorf("scene: shape group already added")
		}
	}
	g.ID = s.NextShapeGroupID()
	for _, shape := range g.Shapes {
		shape.ID = s.NextShapeID()
	}
	s.ShapeGroups = append(s.ShapeGroups, g)
	return nil
}

// AddInstance appends an instance referencing an already-added shape group.
func (s *Scene) AddInstance(inst *Instance) error {
	found := false
	for _, existing := range s.ShapeGroups {
		if existing == inst.Group {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("scene: instance references a shape group that was not added to the scene")
	}
	inst.ID = s.NextInstanceID()
	s.Instances = append(s.Instances, inst)
	return nil
}

// AddEnvironment appends an environment light to the scene.
func (s *Scene) AddEnvironment(e *Environment) {
	e.ID = s.NextEnvironmentID()
	s.Environments = append(s.Environments, e)
}
