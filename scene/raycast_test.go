package scene

import (
	"testing"

	"volumetric-fog/core"
	"volumetric-fog/math"
)

func TestRaycastPicksClosest(t *testing.T) {
	s := planeScene(core.ColorWhite)
	box := NewNode("box")
	box.Mesh = CreateCube(1)
	box.SetPosition(math.NewVec3(0, 0.5, 0))
	s.AddNode(box)

	ray := Ray{Origin: math.NewVec3(0, 5, 0), Direction: math.Vec3Down}
	hit, ok := s.Raycast(ray)
	if !ok {
		t.Fatal("ray missed")
	}
	if hit.Node != box {
		t.Errorf("hit %q, want the box", hit.Node.Name)
	}
	if !near(hit.Distance, 4, 1e-4) || !near(hit.Point.Y, 1, 1e-4) {
		t.Errorf("hit at %v after %v, want the box top", hit.Point, hit.Distance)
	}
	if !near(hit.Normal.Y, 1, 1e-5) {
		t.Errorf("normal = %v, want up", hit.Normal)
	}

	ray.Origin = math.NewVec3(5, 5, 5)
	hit, ok = s.Raycast(ray)
	if !ok || hit.Node.Name != "ground" {
		t.Errorf("side ray hit %+v, want the ground", hit)
	}

	ray.Direction = math.Vec3Up
	if _, ok := s.Raycast(ray); ok {
		t.Error("upward ray hit something")
	}
}

func TestCameraRayAtCentre(t *testing.T) {
	s := planeScene(core.ColorWhite)
	ray := s.Camera.RayAt(math.NewVec2(0.5, 0.5))
	if want := s.Camera.Forward(); ray.Direction.Dot(want) < 0.9999 {
		t.Errorf("centre ray = %v, want %v", ray.Direction, want)
	}
	hit, ok := s.Raycast(ray)
	if !ok || hit.Point.Length() > 1e-2 {
		t.Errorf("centre ray hit %v, want the origin", hit.Point)
	}
}
