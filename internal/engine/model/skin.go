package model

import (
	"github.com/Faultbox/skelanim/internal/engine/skinning"
	"github.com/Faultbox/skelanim/pkg/math"
)

// Skin deforms a mesh on the CPU the way the skinning vertex shader does:
// each vertex is moved by the weighted sum of its bones' palette matrices.
// Vertices without influences keep their bind position. dst is reused
// when it has enough capacity.
func Skin(mesh *Mesh, pal *skinning.Palette, dst []Vertex) ([]Vertex, Bounds) {
	if cap(dst) < len(mesh.Vertices) {
		dst = make([]Vertex, len(mesh.Vertices))
	}
	dst = dst[:len(mesh.Vertices)]

	for i := range mesh.Vertices {
		src := &mesh.Vertices[i]
		out := *src

		if src.TotalWeight() != 0 {
			var m math.Mat4
			for j, w := range src.BoneWeights {
				if w == 0 {
					continue
				}
				slot := int(src.BoneSlots[j])
				if slot >= skinning.MaxBones {
					// Bones past the palette stay in bind pose
					m = m.Add(math.Identity().Scaled(w))
					continue
				}
				m = m.Add(pal.Matrix(slot).Scaled(w))
			}
			// No divide by w: unnormalized weights scale the result like on the GPU
			pos := m.TransformDirection(math.Vec3FromArray(src.Position)).Add(m.Translation())
			out.Position = pos.Array()
			out.Normal = m.TransformDirection(math.Vec3FromArray(src.Normal)).Normalize().Array()
		}

		dst[i] = out
	}

	return dst, ComputeBounds(dst)
}
