// Package model builds GPU-ready skinned vertex data and provides a CPU
// reference of the skinning vertex shader.
package model

// MaxInfluences is the number of bone influences a vertex carries.
const MaxInfluences = 4

// Vertex represents a skinned mesh vertex with position, normal, texture
// coordinates and up to four (bone slot, weight) influences.
type Vertex struct {
	Position    [3]float32
	Normal      [3]float32
	TexCoord    [2]float32
	BoneSlots   [MaxInfluences]uint32
	BoneWeights [MaxInfluences]float32
}

// TotalWeight returns the sum of the vertex's influence weights.
func (v *Vertex) TotalWeight() float32 {
	var sum float32
	for _, w := range v.BoneWeights {
		sum += w
	}
	return sum
}

// Mesh holds the complete model mesh data ready for GPU upload.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
	Stats    BuildStats
}

// Bounds holds the axis-aligned bounding box of the model.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// BuildStats counts influences the builder could not place.
type BuildStats struct {
	Dropped      int // Influences beyond MaxInfluences
	OutOfRange   int // Weights naming a vertex the mesh does not have
	Unweighted   int // Vertices with no influence at all
	Unnormalized int // Vertices whose weights do not sum to 1
}

// BuildOptions contains options for mesh building.
type BuildOptions struct {
	// NormalizeWeights rescales each vertex's weights to sum to 1.
	// Off by default: source weights are used as authored.
	NormalizeWeights bool
	// Strict fails the build instead of dropping extra influences.
	Strict bool
}
