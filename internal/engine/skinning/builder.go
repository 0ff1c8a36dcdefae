package skinning

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/skelanim/internal/engine/skeleton"
	"github.com/Faultbox/skelanim/internal/logger"
	"github.com/Faultbox/skelanim/pkg/math"
)

// Binding errors, only raised in strict mode.
var (
	ErrBoneOverflow = errors.New("bone slot exceeds palette capacity")
	ErrUnboundBone  = errors.New("registered bone has no skeleton node")
)

// Options selects the palette layout and the overflow policy.
type Options struct {
	// Transpose stores skin matrices transposed for row-major consumers.
	Transpose bool
	// Strict turns silent truncation and unmatched bones into errors.
	Strict bool
}

// Binding resolves registry entries to skeleton handles once, so the
// per-frame build does no name lookups.
type Binding struct {
	slots   []int // by handle; -1 for non-bone nodes
	offsets []math.Mat4
	bones   []skeleton.Handle // bound handles, slot order
	opts    Options
}

// Bind matches every registered bone to a skeleton node by name.
func Bind(skel *skeleton.Skeleton, reg *Registry, opts Options) (*Binding, error) {
	b := &Binding{
		slots:   make([]int, skel.Len()),
		offsets: make([]math.Mat4, skel.Len()),
		opts:    opts,
	}
	for i := range b.slots {
		b.slots[i] = -1
	}

	if reg.Len() > MaxBones {
		if opts.Strict {
			return nil, fmt.Errorf("%w: %d bones, capacity %d", ErrBoneOverflow, reg.Len(), MaxBones)
		}
		logger.Warn("bone count exceeds palette capacity, extra bones stay in bind pose",
			zap.Int("bones", reg.Len()),
			zap.Int("capacity", MaxBones))
	}

	for slot, name := range reg.names {
		h, ok := skel.Lookup(name)
		if !ok {
			if opts.Strict {
				return nil, fmt.Errorf("%w: %q", ErrUnboundBone, name)
			}
			logger.Debug("bone has no skeleton node", zap.String("bone", name))
			continue
		}
		b.slots[h] = slot
		b.offsets[h] = reg.offsets[name]
		b.bones = append(b.bones, h)
	}

	return b, nil
}

// Slot returns the palette slot of the node at h.
func (b *Binding) Slot(h skeleton.Handle) (int, bool) {
	slot := b.slots[h]
	return slot, slot >= 0
}

// IsBone reports whether the node at h is a registered bone.
func (b *Binding) IsBone(h skeleton.Handle) bool {
	return b.slots[h] >= 0
}

// Bones returns the number of bound bones.
func (b *Binding) Bones() int {
	return len(b.bones)
}

// Apply resets the palette and writes global * offset for every bound bone
// whose slot fits in the palette. It returns the number of slots written.
func (b *Binding) Apply(pose *skeleton.Pose, pal *Palette) int {
	pal.Reset()
	pal.Transposed = b.opts.Transpose

	written := 0
	for _, h := range b.bones {
		slot := b.slots[h]
		if slot >= MaxBones {
			continue
		}
		skin := pose.Globals[h].Mul(b.offsets[h])
		if b.opts.Transpose {
			skin = skin.Transpose()
		}
		pal.Matrices[slot] = skin
		written++
	}
	return written
}
