// Package skinning maps bone names to dense GPU slots and builds the
// per-frame skinning matrix palette.
package skinning

import (
	"github.com/Faultbox/skelanim/pkg/math"
	"github.com/Faultbox/skelanim/pkg/scene"
)

// Registry assigns every distinct bone name a dense slot in first-seen
// order across meshes and remembers its offset (inverse bind) matrix.
// It is written once at load time and read-only afterwards.
type Registry struct {
	slots   map[string]int
	offsets map[string]math.Mat4
	names   []string
}

// NewRegistry scans the bone lists of all meshes in order. A name seen in
// several meshes keeps its first slot; its offset is taken from the last mesh.
func NewRegistry(meshes []scene.Mesh) *Registry {
	r := &Registry{
		slots:   make(map[string]int),
		offsets: make(map[string]math.Mat4),
	}
	for i := range meshes {
		for _, bone := range meshes[i].Bones {
			if _, seen := r.slots[bone.Name]; !seen {
				r.slots[bone.Name] = len(r.names)
				r.names = append(r.names, bone.Name)
			}
			r.offsets[bone.Name] = bone.Offset
		}
	}
	return r
}

// SlotOf returns the slot assigned to a bone.
func (r *Registry) SlotOf(name string) (int, bool) {
	slot, ok := r.slots[name]
	return slot, ok
}

// OffsetOf returns a bone's offset matrix. ok is false for names that are
// not skinned bones.
func (r *Registry) OffsetOf(name string) (math.Mat4, bool) {
	m, ok := r.offsets[name]
	return m, ok
}

// Len returns the number of registered bones; slots span [0, Len).
func (r *Registry) Len() int {
	return len(r.names)
}

// Names returns the bone names ordered by slot.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}
