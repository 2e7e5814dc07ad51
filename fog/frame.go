package fog

import (
	"volumetric-fog/internal/gpu"
	"volumetric-fog/math"
)

// CameraData carries the matrices of the rendering camera. Matrices use
// row vectors and OpenGL clip space; device depth is 0 at the near plane
// and 1 at the far plane.
type CameraData struct {
	View                   math.Mat4
	Projection             math.Mat4
	ViewProjection         math.Mat4
	InverseViewProjection  math.Mat4
	PreviousViewProjection math.Mat4
	Position               math.Vec3
	Near                   float32
	Far                    float32
}

// NewCameraData derives the combined and inverse matrices.
func NewCameraData(view, projection, previousViewProjection math.Mat4, position math.Vec3, near, far float32) CameraData {
	vp := view.Mul(projection)
	return CameraData{
		View:                   view,
		Projection:             projection,
		ViewProjection:         vp,
		InverseViewProjection:  vp.Inverse(),
		PreviousViewProjection: previousViewProjection,
		Position:               position,
		Near:                   near,
		Far:                    far,
	}
}

// WorldFromDepth reconstructs the world position at uv and device depth.
func (c *CameraData) WorldFromDepth(uv math.Vec2, depth float32) math.Vec3 {
	ndc := math.Vec4{X: uv.X*2 - 1, Y: 1 - uv.Y*2, Z: depth*2 - 1, W: 1}
	return ndc.MulMat(c.InverseViewProjection).ToVec3DivW()
}

// LinearDepth converts device depth to view space distance along the
// camera axis.
func (c *CameraData) LinearDepth(depth float32) float32 {
	n, f := c.Near, c.Far
	z := depth*2 - 1
	return 2 * n * f / (f + n - z*(f-n))
}

// ProjectUV returns the uv and device depth of a world position.
func (c *CameraData) ProjectUV(world math.Vec3) (math.Vec2, float32) {
	ndc := c.ViewProjection.MulPoint(world)
	return math.Vec2{X: ndc.X*0.5 + 0.5, Y: 0.5 - ndc.Y*0.5}, ndc.Z*0.5 + 0.5
}

// FrameContext is everything the host hands the pipeline for one frame.
type FrameContext struct {
	// Descriptor is the camera target. When invalid the colour buffer's
	// descriptor is used.
	Descriptor gpu.Descriptor
	// Color is read and overwritten with the composited result.
	Color *gpu.Texture
	// Depth holds device depth in R32F at full resolution.
	Depth *gpu.Texture
	// MotionVectors holds current minus previous uv in RG. Only read when
	// reprojection is enabled.
	MotionVectors *gpu.Texture

	Camera   CameraData
	Lights   LightData
	Modifier *VolumeModifier

	MainShadow        ShadowSampler
	AdditionalShadows AdditionalShadowSampler
	Ambient           AmbientProbe
	Reflections       ReflectionProbe

	FrameCount int
	Time       float32
}

func (f *FrameContext) targetDescriptor() gpu.Descriptor {
	if f.Descriptor.Valid() {
		return f.Descriptor
	}
	return f.Color.Descriptor()
}
