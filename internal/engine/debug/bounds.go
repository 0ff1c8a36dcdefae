// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/Faultbox/skelanim/internal/engine/model"
	"github.com/Faultbox/skelanim/pkg/math"
)

// BoundsLineCount is the number of line vertices for a bounds wireframe (12 edges × 2).
const BoundsLineCount = 24

// BoundsLines appends the 12 edges of a wireframe box to dst as line-list
// pairs. padding expands the box on all sides; a box whose min exceeds its
// max on any axis (an empty mesh) appends nothing.
func BoundsLines(b model.Bounds, padding float32, dst []math.Vec3) []math.Vec3 {
	for i := 0; i < 3; i++ {
		if b.Min[i] > b.Max[i] {
			return dst
		}
	}

	minX, minY, minZ := b.Min[0]-padding, b.Min[1]-padding, b.Min[2]-padding
	maxX, maxY, maxZ := b.Max[0]+padding, b.Max[1]+padding, b.Max[2]+padding

	c := [8]math.Vec3{
		{X: minX, Y: minY, Z: minZ},
		{X: maxX, Y: minY, Z: minZ},
		{X: maxX, Y: minY, Z: maxZ},
		{X: minX, Y: minY, Z: maxZ},
		{X: minX, Y: maxY, Z: minZ},
		{X: maxX, Y: maxY, Z: minZ},
		{X: maxX, Y: maxY, Z: maxZ},
		{X: minX, Y: maxY, Z: maxZ},
	}
	return append(dst,
		// Bottom face
		c[0], c[1], c[1], c[2], c[2], c[3], c[3], c[0],
		// Top face
		c[4], c[5], c[5], c[6], c[6], c[7], c[7], c[4],
		// Vertical edges
		c[0], c[4], c[1], c[5], c[2], c[6], c[3], c[7],
	)
}

// FlattenLines packs line vertices as [x, y, z] float triples for upload
// to a vertex buffer. dst is truncated and reused.
func FlattenLines(lines []math.Vec3, dst []float32) []float32 {
	dst = dst[:0]
	for _, v := range lines {
		dst = append(dst, v.X, v.Y, v.Z)
	}
	return dst
}
