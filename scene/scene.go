package scene

import (
	"volumetric-fog/fog"
)

// Light is a scene light with the volumetric settings it hands the fog.
type Light struct {
	fog.Light
	Name string
	// Main marks the directional light that casts the shadow map and
	// drives the fog main light term. Only the first one counts.
	Main bool
	// Override enables scattering of an additional light into the fog.
	Override *fog.LightOverride
}

// Scene manages a collection of nodes, lights and the active camera.
type Scene struct {
	Root     *Node
	Camera   *Camera
	Lights   []*Light
	Sky      SkyProbe
	Modifier *fog.VolumeModifier

	Time       float32
	FrameCount int
}

func NewScene() *Scene {
	return &Scene{
		Root:   NewNode("Root"),
		Camera: NewCamera(1.0472, 16.0/9.0, 0.1, 500.0), // 60 degrees FOV
		Sky:    DefaultSky(),
	}
}

func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

// AddLight appends l and assigns it the next light ID when it has none.
// Only the main light casts shadows.
func (s *Scene) AddLight(l *Light) {
	if l.ID == 0 {
		l.ID = fog.LightID(len(s.Lights) + 1)
	}
	l.ShadowIndex = -1
	s.Lights = append(s.Lights, l)
}

// MainLight returns the first directional light marked Main.
func (s *Scene) MainLight() (*Light, bool) {
	for _, l := range s.Lights {
		if l.Main && l.Type == fog.LightTypeDirectional {
			return l, true
		}
	}
	return nil, false
}

// Update advances node animation and the scene clock.
func (s *Scene) Update(deltaTime float32) {
	s.Root.Update(deltaTime)
	s.Time += deltaTime
}

// EndFrame snapshots the camera and node transforms for the next frame's
// motion vectors.
func (s *Scene) EndFrame() {
	s.Camera.EndFrame()
	s.Root.snapshot()
	s.FrameCount++
}

// meshNodes returns all visible nodes with meshes.
func (s *Scene) meshNodes() []*Node {
	var nodes []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.Visible {
			return
		}
		if n.Mesh != nil {
			nodes = append(nodes, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(s.Root)
	return nodes
}

// Bounds returns the world AABB of every visible mesh.
func (s *Scene) Bounds() (AABB, bool) {
	var box AABB
	found := false
	for _, n := range s.meshNodes() {
		b := ComputeAABB(n.Mesh, n.WorldMatrix())
		if !found {
			box, found = b, true
			continue
		}
		box = box.Union(b)
	}
	return box, found
}

// shadingLights returns the lights that can reach the camera frustum.
func (s *Scene) shadingLights() []*Light {
	frustum := s.Camera.Frustum()
	var out []*Light
	for _, l := range s.Lights {
		if l.Type != fog.LightTypeDirectional && l.Range > 0 && !frustum.ContainsSphere(l.Position, l.Range) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// LightData enumerates the visible lights for the fog. The main light keeps
// its own slot; additional lights beyond the fog's cap are dropped.
func (s *Scene) LightData() fog.LightData {
	data := fog.LightData{MainLightIndex: -1, Overrides: map[fog.LightID]fog.LightOverride{}}
	main, _ := s.MainLight()
	additional := 0
	for _, l := range s.shadingLights() {
		if l == main {
			data.MainLightIndex = len(data.Visible)
		} else {
			if additional >= fog.MaxAdditionalLights {
				continue
			}
			additional++
		}
		data.Visible = append(data.Visible, l.Light)
		if l.Override != nil {
			data.Overrides[l.ID] = *l.Override
		}
	}
	return data
}

// Frame renders the scene and returns the fog pipeline input for it. The
// shadow map may be nil.
func (s *Scene) Frame(r *Rasterizer, shadow *ShadowMap) *fog.FrameContext {
	s.Camera.UpdateAspectRatio(float32(r.Width()), float32(r.Height()))

	frame := &fog.FrameContext{
		Camera:      s.Camera.Data(),
		Lights:      s.LightData(),
		Modifier:    s.Modifier,
		Ambient:     s.Sky,
		Reflections: s.Sky,
		FrameCount:  s.FrameCount,
		Time:        s.Time,
	}

	var sampler fog.ShadowSampler
	if main, ok := s.MainLight(); ok && shadow != nil {
		shadow.Update(s, main.Direction)
		sampler = shadow
		frame.MainShadow = shadow
	}
	r.Render(s, sampler)

	frame.Color = r.Color
	frame.Depth = r.Depth
	frame.MotionVectors = r.Motion
	return frame
}
