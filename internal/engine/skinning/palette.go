package skinning

import "github.com/Faultbox/skelanim/pkg/math"

// MaxBones is the number of skinning matrix slots a palette holds.
const MaxBones = 128

// Palette is the fixed-size skinning matrix array handed to the renderer.
// Transposed records whether matrices were stored transposed for a
// row-major consumer.
type Palette struct {
	Matrices   [MaxBones]math.Mat4
	Transposed bool
}

// NewPalette returns a palette with every slot set to identity.
func NewPalette(transposed bool) *Palette {
	p := &Palette{Transposed: transposed}
	p.Reset()
	return p
}

// Reset sets every slot to identity.
func (p *Palette) Reset() {
	id := math.Identity()
	for i := range p.Matrices {
		p.Matrices[i] = id
	}
}

// Matrix returns slot i in column-major, column-vector form regardless of
// the storage convention.
func (p *Palette) Matrix(i int) math.Mat4 {
	if p.Transposed {
		return p.Matrices[i].Transpose()
	}
	return p.Matrices[i]
}

// Floats flattens the palette into the contiguous float layout graphics
// APIs upload as one uniform array.
func (p *Palette) Floats() []float32 {
	out := make([]float32, 0, MaxBones*16)
	for i := range p.Matrices {
		out = append(out, p.Matrices[i][:]...)
	}
	return out
}
