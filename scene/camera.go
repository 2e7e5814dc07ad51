package scene

import (
	stdmath "math"

	"volumetric-fog/fog"
	"volumetric-fog/math"
)

// Camera is a perspective look-at camera. It remembers last frame's
// view-projection so motion vectors and fog reprojection can use it.
type Camera struct {
	Position    math.Vec3
	Target      math.Vec3
	Up          math.Vec3
	FOV         float32 // vertical, radians
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	prevViewProj math.Mat4
	hasPrevious  bool
}

func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	return &Camera{
		Position:    math.Vec3Zero,
		Target:      math.Vec3Back,
		Up:          math.Vec3Up,
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
	}
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 {
		c.AspectRatio = width / height
	}
}

func (c *Camera) SetPosition(pos math.Vec3) {
	c.Position = pos
}

func (c *Camera) LookAt(target math.Vec3) {
	c.Target = target
}

// Translate moves the camera and its target together.
func (c *Camera) Translate(delta math.Vec3) {
	c.Position = c.Position.Add(delta)
	c.Target = c.Target.Add(delta)
}

func (c *Camera) Forward() math.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

func (c *Camera) ViewMatrix() math.Mat4 {
	return math.Mat4LookAt(c.Position, c.Target, c.Up)
}

func (c *Camera) ProjectionMatrix() math.Mat4 {
	return math.Mat4Perspective(c.FOV, c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) ViewProjectionMatrix() math.Mat4 {
	return c.ViewMatrix().Mul(c.ProjectionMatrix())
}

// PreviousViewProjection returns last frame's view-projection, or the
// current one before the first EndFrame.
func (c *Camera) PreviousViewProjection() math.Mat4 {
	if !c.hasPrevious {
		return c.ViewProjectionMatrix()
	}
	return c.prevViewProj
}

// EndFrame records the current matrices as the previous frame.
func (c *Camera) EndFrame() {
	c.prevViewProj = c.ViewProjectionMatrix()
	c.hasPrevious = true
}

// ResetHistory forgets the previous frame, as after a camera cut.
func (c *Camera) ResetHistory() {
	c.hasPrevious = false
}

// Data returns the camera as seen by the fog pipeline.
func (c *Camera) Data() fog.CameraData {
	return fog.NewCameraData(c.ViewMatrix(), c.ProjectionMatrix(), c.PreviousViewProjection(),
		c.Position, c.NearPlane, c.FarPlane)
}

// Frustum returns the world-space clip planes.
func (c *Camera) Frustum() Frustum {
	return FrustumFromVP(c.ViewProjectionMatrix())
}

// OrbitCamera is a specialized camera for orbiting around a target
type OrbitCamera struct {
	Camera
	Distance float32
	Yaw      float32
	Pitch    float32
}

func NewOrbitCamera(target math.Vec3, distance, fov, aspectRatio float32) *OrbitCamera {
	c := &OrbitCamera{
		Distance: distance,
		Pitch:    0.3,
	}
	c.Camera = *NewCamera(fov, aspectRatio, 0.1, 1000.0)
	c.Target = target
	c.UpdatePosition()
	return c
}

func (c *OrbitCamera) UpdatePosition() {
	c.Pitch = math.Clamp(c.Pitch, -1.5, 1.5)

	cosPitch := float32(stdmath.Cos(float64(c.Pitch)))
	sinPitch := float32(stdmath.Sin(float64(c.Pitch)))
	cosYaw := float32(stdmath.Cos(float64(c.Yaw)))
	sinYaw := float32(stdmath.Sin(float64(c.Yaw)))

	offset := math.Vec3{
		X: c.Distance * cosPitch * sinYaw,
		Y: c.Distance * sinPitch,
		Z: c.Distance * cosPitch * cosYaw,
	}
	c.Position = c.Target.Add(offset)
}

func (c *OrbitCamera) Orbit(deltaYaw, deltaPitch float32) {
	c.Yaw += deltaYaw
	c.Pitch += deltaPitch
	c.UpdatePosition()
}

func (c *OrbitCamera) Zoom(delta float32) {
	c.Distance = max(c.Distance+delta, 0.1)
	c.UpdatePosition()
}
