package scene

import (
	"sync/atomic"

	"volumetric-fog/core"
	"volumetric-fog/math"
)

// Node represents an object in the scene graph
type Node struct {
	Name      string
	Transform core.Transform
	Parent    *Node
	Children  []*Node
	Mesh      *Mesh
	Visible   bool
	ID        uint32

	// Spin rotates the node around its local Y axis, in radians per second.
	Spin float32

	// Cached world transform
	worldMatrixDirty bool
	worldMatrix      math.Mat4

	// World transform of the previous frame, for motion vectors.
	prevWorld    math.Mat4
	hasPrevWorld bool
}

var nodeIDCounter atomic.Uint32

func NewNode(name string) *Node {
	return &Node{
		Name:             name,
		Transform:        core.NewTransform(),
		Visible:          true,
		ID:               nodeIDCounter.Add(1),
		worldMatrixDirty: true,
	}
}

func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	child.MarkWorldMatrixDirty()
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			child.MarkWorldMatrixDirty()
			return
		}
	}
}

// WorldMatrix returns local to world, children applied before parents.
func (n *Node) WorldMatrix() math.Mat4 {
	if n.worldMatrixDirty {
		local := n.Transform.GetMatrix()
		if n.Parent != nil {
			n.worldMatrix = local.Mul(n.Parent.WorldMatrix())
		} else {
			n.worldMatrix = local
		}
		n.worldMatrixDirty = false
	}
	return n.worldMatrix
}

// PreviousWorldMatrix returns last frame's world matrix, or the current
// one before the first snapshot.
func (n *Node) PreviousWorldMatrix() math.Mat4 {
	if !n.hasPrevWorld {
		return n.WorldMatrix()
	}
	return n.prevWorld
}

func (n *Node) MarkWorldMatrixDirty() {
	n.worldMatrixDirty = true
	for _, child := range n.Children {
		child.MarkWorldMatrixDirty()
	}
}

func (n *Node) SetPosition(pos math.Vec3) {
	n.Transform.Position = pos
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetRotation(rot math.Quaternion) {
	n.Transform.Rotation = rot
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetScale(scale math.Vec3) {
	n.Transform.Scale = scale
	n.MarkWorldMatrixDirty()
}

func (n *Node) Translate(delta math.Vec3) {
	n.Transform.Position = n.Transform.Position.Add(delta)
	n.MarkWorldMatrixDirty()
}

func (n *Node) Rotate(axis math.Vec3, angle float32) {
	rotation := math.QuaternionFromAxisAngle(axis, angle)
	n.Transform.Rotation = n.Transform.Rotation.Mul(rotation).Normalize()
	n.MarkWorldMatrixDirty()
}

// Update advances animation for the node and its children.
func (n *Node) Update(deltaTime float32) {
	if n.Spin != 0 {
		n.Rotate(math.Vec3Up, n.Spin*deltaTime)
	}
	for _, child := range n.Children {
		child.Update(deltaTime)
	}
}

// snapshot remembers the current world matrices as the previous frame.
func (n *Node) snapshot() {
	n.prevWorld = n.WorldMatrix()
	n.hasPrevWorld = true
	for _, child := range n.Children {
		child.snapshot()
	}
}

// Traverse visits all nodes in the graph
func (n *Node) Traverse(callback func(*Node)) {
	callback(n)
	for _, child := range n.Children {
		child.Traverse(callback)
	}
}

// Find finds a node by name
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}
