package model

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/skelanim/internal/engine/skinning"
	"github.com/Faultbox/skelanim/pkg/scene"
)

// ErrTooManyInfluences is returned in strict mode when a vertex is
// influenced by more than MaxInfluences bones.
var ErrTooManyInfluences = errors.New("vertex has more than 4 bone influences")

// weightEpsilon is the tolerance for "weights sum to 1".
const weightEpsilon = 1e-3

// BuildMesh converts an imported mesh into the skinned vertex layout,
// resolving bone names to registry slots.
func BuildMesh(src *scene.Mesh, reg *skinning.Registry, opts BuildOptions) (*Mesh, error) {
	mesh := &Mesh{
		Name:     src.Name,
		Vertices: make([]Vertex, len(src.Positions)),
		Indices:  append([]uint32(nil), src.Indices...),
	}

	for i, p := range src.Positions {
		v := &mesh.Vertices[i]
		v.Position = p.Array()
		if i < len(src.Normals) {
			v.Normal = src.Normals[i].Array()
		}
		if i < len(src.TexCoords) {
			v.TexCoord = src.TexCoords[i]
		}
	}

	for _, bone := range src.Bones {
		slot, ok := reg.SlotOf(bone.Name)
		if !ok {
			continue
		}
		for _, w := range bone.Weights {
			if int(w.VertexID) >= len(mesh.Vertices) {
				mesh.Stats.OutOfRange++
				continue
			}
			if !addInfluence(&mesh.Vertices[w.VertexID], uint32(slot), w.Weight) {
				if opts.Strict {
					return nil, fmt.Errorf("%w: mesh %q vertex %d", ErrTooManyInfluences, src.Name, w.VertexID)
				}
				mesh.Stats.Dropped++
			}
		}
	}

	for i := range mesh.Vertices {
		v := &mesh.Vertices[i]
		total := v.TotalWeight()
		switch {
		case total == 0:
			mesh.Stats.Unweighted++
			continue
		case math32.Abs(total-1) > weightEpsilon:
			mesh.Stats.Unnormalized++
		}
		if opts.NormalizeWeights {
			for j := range v.BoneWeights {
				v.BoneWeights[j] /= total
			}
		}
	}

	mesh.Bounds = ComputeBounds(mesh.Vertices)
	return mesh, nil
}

// addInfluence stores (slot, weight) in the first free influence, a free
// influence being one with zero weight. It reports false when all are used.
func addInfluence(v *Vertex, slot uint32, weight float32) bool {
	if weight == 0 {
		return true
	}
	for i := range v.BoneWeights {
		if v.BoneWeights[i] == 0 {
			v.BoneSlots[i] = slot
			v.BoneWeights[i] = weight
			return true
		}
	}
	return false
}

// ComputeBounds returns the axis-aligned box around all vertex positions.
// An empty list yields an inverted box with Min above Max.
func ComputeBounds(vertices []Vertex) Bounds {
	bounds := Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
	for i := range vertices {
		updateBounds(&bounds, vertices[i].Position)
	}
	return bounds
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
