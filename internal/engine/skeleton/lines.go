package skeleton

import "github.com/Faultbox/skelanim/pkg/math"

// JointPositions returns each node's world-space position from a composed
// pose. present[h] is false for nodes rejected by include; a nil include
// keeps every node.
func (s *Skeleton) JointPositions(p *Pose, include func(Handle) bool) (positions []math.Vec3, present []bool) {
	positions = make([]math.Vec3, len(s.nodes))
	present = make([]bool, len(s.nodes))
	for i := range s.nodes {
		h := Handle(i)
		if include != nil && !include(h) {
			continue
		}
		positions[i] = p.Globals[i].Translation()
		present[i] = true
	}
	return positions, present
}

// BoneLines rebuilds a line-list vertex buffer from a composed pose: one
// (parent, child) position pair for every edge whose two ends are both
// present. dst is truncated and reused.
func (s *Skeleton) BoneLines(p *Pose, include func(Handle) bool, dst []math.Vec3) []math.Vec3 {
	positions, present := s.JointPositions(p, include)

	dst = dst[:0]
	for i := range s.nodes {
		if !present[i] {
			continue
		}
		for _, c := range s.nodes[i].Children {
			if present[c] {
				dst = append(dst, positions[i], positions[c])
			}
		}
	}
	return dst
}
