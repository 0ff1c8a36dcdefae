// Package scene holds the imported scene graph, meshes and animation clips
// the evaluator consumes. Values are built once by an importer and treated
// as read-only afterwards.
package scene

import "github.com/Faultbox/skelanim/pkg/math"

// Node is a named node of the imported scene graph.
type Node struct {
	Name      string    // Identity key within one scene
	Transform math.Mat4 // Local bind transform
	Children  []*Node
	Meshes    []int // Indices into Scene.Meshes
}

// VertexWeight is one bone influence on a mesh vertex.
type VertexWeight struct {
	VertexID uint32
	Weight   float32
}

// Bone ties a skeleton node to the vertices it deforms.
type Bone struct {
	Name    string
	Offset  math.Mat4 // Inverse bind matrix: mesh space to bone space
	Weights []VertexWeight
}

// Mesh is a triangle mesh with optional skin data.
type Mesh struct {
	Name      string
	Positions []math.Vec3
	Normals   []math.Vec3
	TexCoords [][2]float32
	Indices   []uint32
	Bones     []Bone
}

// Scene is a fully imported asset.
type Scene struct {
	Root   *Node
	Meshes []Mesh
	Clips  []*Clip
}

// Clip returns the clip with the given name, or nil if not found.
func (s *Scene) Clip(name string) *Clip {
	for _, c := range s.Clips {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Walk visits every node in depth-first pre-order. Returning false from fn
// skips the node's children.
func (s *Scene) Walk(fn func(n *Node, depth int) bool) {
	if s.Root == nil {
		return
	}
	type item struct {
		node  *Node
		depth int
	}
	stack := []item{{s.Root, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(it.node, it.depth) {
			continue
		}
		for i := len(it.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.node.Children[i], it.depth + 1})
		}
	}
}

// BoneCount returns the number of bone entries across all meshes,
// counting repeated names once per mesh.
func (s *Scene) BoneCount() int {
	n := 0
	for i := range s.Meshes {
		n += len(s.Meshes[i].Bones)
	}
	return n
}
