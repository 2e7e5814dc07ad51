package scene

import (
	"testing"

	"volumetric-fog/math"
)

func occluderScene() *Scene {
	s := NewScene()
	ground := NewNode("ground")
	ground.Mesh = CreatePlane(20)
	s.AddNode(ground)

	roof := NewNode("roof")
	roof.Mesh = CreateCube(2)
	roof.SetPosition(math.NewVec3(0, 3, 0))
	s.AddNode(roof)
	return s
}

func TestShadowMapOcclusion(t *testing.T) {
	s := occluderScene()
	m := NewShadowMap(64)
	m.Update(s, math.Vec3Down)

	if v := m.Visibility(math.Vec3Zero); v != 0 {
		t.Errorf("visibility under the cube = %v, want 0", v)
	}
	if v := m.Visibility(math.NewVec3(8, 0, 8)); v != 1 {
		t.Errorf("visibility in the open = %v, want 1", v)
	}
	if v := m.Visibility(math.NewVec3(0, 4.5, 0)); v != 1 {
		t.Errorf("visibility above the cube = %v, want 1", v)
	}
}

func TestShadowMapOutsideIsLit(t *testing.T) {
	s := occluderScene()
	m := NewShadowMap(32)
	if v := m.Visibility(math.Vec3Zero); v != 1 {
		t.Errorf("visibility before Update = %v, want 1", v)
	}
	m.Update(s, math.NewVec3(-0.3, -1, 0.2))
	if v := m.Visibility(math.NewVec3(500, 0, 0)); v != 1 {
		t.Errorf("visibility outside the map = %v, want 1", v)
	}
}

func TestShadowMapEmptyScene(t *testing.T) {
	m := NewShadowMap(16)
	m.Update(NewScene(), math.Vec3Down)
	if v := m.Visibility(math.Vec3Zero); v != 1 {
		t.Errorf("visibility in an empty scene = %v, want 1", v)
	}
}
