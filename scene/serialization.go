package scene

import (
	"encoding/json"
	"fmt"
	stdmath "math"
	"os"
	"path/filepath"

	"volumetric-fog/core"
	"volumetric-fog/fog"
	"volumetric-fog/math"
)

// ── JSON data structures ──────────────────────────────────────────────────────

type vec3JSON struct {
	X, Y, Z float32
}

type colorJSON struct {
	R, G, B, A float32
}

type transformJSON struct {
	Position vec3JSON
	Scale    *vec3JSON
	// Rotation around Axis, in degrees.
	Axis  *vec3JSON `json:",omitempty"`
	Angle float32   `json:",omitempty"`
}

type materialJSON struct {
	Albedo   colorJSON
	Emissive colorJSON
	Unlit    bool `json:",omitempty"`
}

// NodeDescription places a primitive or a glTF file in the scene.
type NodeDescription struct {
	Name string
	// Primitive is "plane", "cube" or "sphere"; Size is its edge length or
	// diameter.
	Primitive string  `json:",omitempty"`
	Size      float32 `json:",omitempty"`
	// GLTF is a .gltf or .glb path relative to the description file.
	GLTF      string `json:",omitempty"`
	Transform transformJSON
	Material  *materialJSON `json:",omitempty"`
	Spin      float32       `json:",omitempty"` // radians per second around Y
}

// LightDescription is a light and its fog settings.
type LightDescription struct {
	Name      string
	Type      string // "directional", "point" or "spot"
	Position  vec3JSON
	Direction vec3JSON
	Color     colorJSON
	Intensity float32
	Range     float32            `json:",omitempty"`
	SpotAngle float32            `json:",omitempty"`
	Main      bool               `json:",omitempty"`
	Override  *fog.LightOverride `json:",omitempty"`
}

type CameraDescription struct {
	Position vec3JSON
	Target   vec3JSON
	FOV      float32 // vertical, degrees
	Near     float32
	Far      float32
}

type SkyDescription struct {
	Zenith    colorJSON
	Horizon   colorJSON
	Ground    colorJSON
	Intensity float32
}

// Description is the JSON form of a fog test scene.
type Description struct {
	Version  int
	Camera   CameraDescription
	Sky      *SkyDescription `json:",omitempty"`
	Lights   []LightDescription
	Nodes    []NodeDescription
	Modifier *fog.VolumeModifier `json:",omitempty"`
	// Fog overrides the default fog configuration field by field.
	Fog json.RawMessage `json:",omitempty"`

	dir string
}

// LoadDescription reads a scene description. Relative glTF paths resolve
// against the file's directory.
func LoadDescription(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %q: %w", path, err)
	}
	var d Description
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal scene: %w", err)
	}
	d.dir = filepath.Dir(path)
	return &d, nil
}

// SaveDescription writes d as indented JSON.
func SaveDescription(d *Description, path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write scene %q: %w", path, err)
	}
	return nil
}

// Configuration returns the default fog configuration with the
// description's overrides applied, sanitised.
func (d *Description) Configuration() (fog.Configuration, error) {
	cfg := fog.DefaultConfiguration()
	if len(d.Fog) > 0 {
		if err := json.Unmarshal(d.Fog, &cfg); err != nil {
			return cfg, fmt.Errorf("scene fog: %w", err)
		}
	}
	cfg.Sanitize()
	return cfg, nil
}

// Build constructs the scene.
func (d *Description) Build() (*Scene, error) {
	s := NewScene()

	cam := d.Camera
	if cam.FOV <= 0 {
		cam.FOV = 60
	}
	if cam.Near <= 0 {
		cam.Near = 0.1
	}
	if cam.Far <= cam.Near {
		cam.Far = 500
	}
	s.Camera = NewCamera(cam.FOV*stdmath.Pi/180, 16.0/9.0, cam.Near, cam.Far)
	s.Camera.SetPosition(jsonToVec3(cam.Position))
	if target := jsonToVec3(cam.Target); target != s.Camera.Position {
		s.Camera.LookAt(target)
	} else {
		s.Camera.LookAt(target.Add(math.Vec3Back))
	}

	if d.Sky != nil {
		s.Sky = SkyProbe{
			Zenith:    jsonToColor(d.Sky.Zenith),
			Horizon:   jsonToColor(d.Sky.Horizon),
			Ground:    jsonToColor(d.Sky.Ground),
			Intensity: d.Sky.Intensity,
		}
	}

	for _, ld := range d.Lights {
		l, err := ld.light()
		if err != nil {
			return nil, err
		}
		s.AddLight(l)
	}

	for _, nd := range d.Nodes {
		n, err := nd.node(d.dir)
		if err != nil {
			return nil, err
		}
		s.AddNode(n)
	}

	if d.Modifier != nil {
		m := *d.Modifier
		s.Modifier = &m
	}
	return s, nil
}

var lightTypes = map[string]fog.LightType{
	"directional": fog.LightTypeDirectional,
	"point":       fog.LightTypePoint,
	"spot":        fog.LightTypeSpot,
}

func (ld LightDescription) light() (*Light, error) {
	typ, ok := lightTypes[ld.Type]
	if !ok {
		return nil, fmt.Errorf("light %q: unknown type %q", ld.Name, ld.Type)
	}
	l := &Light{
		Light: fog.Light{
			Type:      typ,
			Position:  jsonToVec3(ld.Position),
			Direction: jsonToVec3(ld.Direction).Normalize(),
			Color:     jsonToColor(ld.Color),
			Intensity: ld.Intensity,
			Range:     ld.Range,
			SpotAngle: ld.SpotAngle,
		},
		Name: ld.Name,
		Main: ld.Main,
	}
	if ld.Override != nil {
		o := ld.Override.Sanitized()
		l.Override = &o
	}
	return l, nil
}

func (nd NodeDescription) node(dir string) (*Node, error) {
	n := NewNode(nd.Name)
	size := nd.Size
	if size <= 0 {
		size = 1
	}

	switch {
	case nd.GLTF != "":
		path := nd.GLTF
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		roots, err := LoadGLTF(path)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", nd.Name, err)
		}
		for _, r := range roots {
			n.AddChild(r)
		}
	case nd.Primitive == "plane":
		n.Mesh = CreatePlane(size)
	case nd.Primitive == "cube":
		n.Mesh = CreateCube(size)
	case nd.Primitive == "sphere":
		n.Mesh = CreateSphere(size/2, 24, 16)
	default:
		return nil, fmt.Errorf("node %q: unknown primitive %q", nd.Name, nd.Primitive)
	}

	if nd.Material != nil {
		mat := &Material{
			Name:     nd.Name,
			Albedo:   jsonToColor(nd.Material.Albedo),
			Emissive: jsonToColor(nd.Material.Emissive),
			Unlit:    nd.Material.Unlit,
		}
		n.Traverse(func(c *Node) {
			if c.Mesh != nil {
				c.Mesh.Material = mat
			}
		})
	}

	n.Transform = jsonToTransform(nd.Transform)
	n.Spin = nd.Spin
	n.MarkWorldMatrixDirty()
	return n, nil
}

// ── conversion helpers ────────────────────────────────────────────────────────

func vec3ToJSON(v math.Vec3) vec3JSON    { return vec3JSON{v.X, v.Y, v.Z} }
func jsonToVec3(v vec3JSON) math.Vec3    { return math.Vec3{X: v.X, Y: v.Y, Z: v.Z} }
func colorToJSON(c core.Color) colorJSON { return colorJSON{c.R, c.G, c.B, c.A} }
func jsonToColor(c colorJSON) core.Color { return core.Color{R: c.R, G: c.G, B: c.B, A: c.A} }

func jsonToTransform(tj transformJSON) core.Transform {
	t := core.NewTransform()
	t.Position = jsonToVec3(tj.Position)
	if tj.Scale != nil {
		t.Scale = jsonToVec3(*tj.Scale)
	}
	if tj.Axis != nil && tj.Angle != 0 {
		t.Rotation = math.QuaternionFromAxisAngle(jsonToVec3(*tj.Axis), tj.Angle*stdmath.Pi/180)
	}
	return t
}

// DescribeCamera returns the JSON form of a camera.
func DescribeCamera(c *Camera) CameraDescription {
	return CameraDescription{
		Position: vec3ToJSON(c.Position),
		Target:   vec3ToJSON(c.Target),
		FOV:      c.FOV * 180 / stdmath.Pi,
		Near:     c.NearPlane,
		Far:      c.FarPlane,
	}
}

// DescribeLight returns the JSON form of a light.
func DescribeLight(l *Light) LightDescription {
	ld := LightDescription{
		Name:      l.Name,
		Position:  vec3ToJSON(l.Position),
		Direction: vec3ToJSON(l.Direction),
		Color:     colorToJSON(l.Color),
		Intensity: l.Intensity,
		Range:     l.Range,
		SpotAngle: l.SpotAngle,
		Main:      l.Main,
		Override:  l.Override,
	}
	for name, typ := range lightTypes {
		if typ == l.Type {
			ld.Type = name
		}
	}
	return ld
}

// DemoDescription is the built-in test scene: a ground plane, a few boxes
// and spheres, a low sun and two coloured point lights inside the fog.
func DemoDescription() *Description {
	return &Description{
		Version: 1,
		Camera: CameraDescription{
			Position: vec3JSON{0, 3, 14},
			Target:   vec3JSON{0, 1, 0},
			FOV:      60,
			Near:     0.1,
			Far:      200,
		},
		Lights: []LightDescription{
			{
				Name:      "Sun",
				Type:      "directional",
				Direction: vec3JSON{-0.4, -0.5, -0.75},
				Color:     colorJSON{1, 0.92, 0.8, 1},
				Intensity: 3,
				Main:      true,
			},
			{
				Name:      "Warm",
				Type:      "point",
				Position:  vec3JSON{-3, 1.5, 2},
				Color:     colorJSON{1, 0.5, 0.2, 1},
				Intensity: 8,
				Range:     8,
				Override:  &fog.LightOverride{Anisotropy: 0.25, Scattering: 2, Radius: 0.2},
			},
			{
				Name:      "Cold",
				Type:      "spot",
				Position:  vec3JSON{4, 5, 1},
				Direction: vec3JSON{-0.3, -1, 0},
				Color:     colorJSON{0.3, 0.6, 1, 1},
				Intensity: 12,
				Range:     12,
				SpotAngle: 30,
				Override:  &fog.LightOverride{Anisotropy: 0.6, Scattering: 1, Radius: 0.2},
			},
		},
		Nodes: []NodeDescription{
			{
				Name:      "Ground",
				Primitive: "plane",
				Size:      60,
			},
			{
				Name:      "Pillar",
				Primitive: "cube",
				Size:      1,
				Transform: transformJSON{Position: vec3JSON{-1.5, 2, -2}, Scale: &vec3JSON{1, 4, 1}},
				Material:  &materialJSON{Albedo: colorJSON{0.7, 0.7, 0.75, 1}},
			},
			{
				Name:      "Box",
				Primitive: "cube",
				Size:      1.5,
				Transform: transformJSON{Position: vec3JSON{2.5, 0.75, 0}, Axis: &vec3JSON{0, 1, 0}, Angle: 30},
				Spin:      0.5,
			},
			{
				Name:      "Orb",
				Primitive: "sphere",
				Size:      1.2,
				Transform: transformJSON{Position: vec3JSON{0, 0.6, 3}},
				Material:  &materialJSON{Albedo: colorJSON{0.2, 0.2, 0.2, 1}, Emissive: colorJSON{0.8, 0.4, 0.1, 1}},
			},
		},
		Fog: json.RawMessage(`{"distance": 60, "baseHeight": 0, "maximumHeight": 6, "density": 0.15}`),
	}
}
