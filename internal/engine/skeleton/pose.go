package skeleton

import "github.com/Faultbox/skelanim/pkg/math"

// Pose is per-frame scratch state: one local and one global transform per
// node handle. It is overwritten on every evaluation.
type Pose struct {
	Locals  []math.Mat4
	Globals []math.Mat4
}

// NewPose allocates a pose sized for s.
func (s *Skeleton) NewPose() *Pose {
	return &Pose{
		Locals:  make([]math.Mat4, len(s.nodes)),
		Globals: make([]math.Mat4, len(s.nodes)),
	}
}

// BindPose resets every local transform to the node's bind transform.
func (s *Skeleton) BindPose(p *Pose) {
	for i := range s.nodes {
		p.Locals[i] = s.nodes[i].Bind
	}
}

// Compose walks the hierarchy top-down and sets
// global = parentGlobal * local for every node, with identity above the root.
func (s *Skeleton) Compose(p *Pose) {
	for i := range s.nodes {
		parent := s.nodes[i].Parent
		if parent == NoHandle {
			p.Globals[i] = p.Locals[i]
			continue
		}
		p.Globals[i] = p.Globals[parent].Mul(p.Locals[i])
	}
}

// Global returns the world transform of the named node.
func (s *Skeleton) Global(p *Pose, name string) (math.Mat4, bool) {
	h, ok := s.byName[name]
	if !ok {
		return math.Mat4{}, false
	}
	return p.Globals[h], true
}

// GlobalMap returns a fresh name-keyed copy of the pose's world transforms.
func (s *Skeleton) GlobalMap(p *Pose) map[string]math.Mat4 {
	m := make(map[string]math.Mat4, len(s.byName))
	for name, h := range s.byName {
		m[name] = p.Globals[h]
	}
	return m
}
