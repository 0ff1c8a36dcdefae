// Package animator drives single-clip skeletal evaluation: it binds a
// loaded scene to a skeleton arena, a bone registry and vertex meshes once,
// then turns a wall-clock time into a skinning palette and bone lines.
package animator

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/skelanim/internal/engine/animation"
	"github.com/Faultbox/skelanim/internal/engine/model"
	"github.com/Faultbox/skelanim/internal/engine/skeleton"
	"github.com/Faultbox/skelanim/internal/engine/skinning"
	"github.com/Faultbox/skelanim/internal/logger"
	"github.com/Faultbox/skelanim/pkg/math"
	"github.com/Faultbox/skelanim/pkg/scene"
)

// Animator errors.
var (
	ErrNoRoot         = skeleton.ErrNoRoot
	ErrNoMeshes       = errors.New("scene has no meshes")
	ErrNotLoaded      = errors.New("no scene loaded")
	ErrUnknownClip    = errors.New("animation clip not found")
	ErrUnboundChannel = errors.New("animation channel has no skeleton node")
	ErrInvalidClip    = errors.New("animation clip has keys but no duration")
)

// Options configures loading and evaluation.
type Options struct {
	DefaultTicksPerSecond float32 // Rate for clips that declare none
	Speed                 float32 // Playback multiplier; 0 means 1
	Strict                bool    // Error on overflow and unmatched names
	TransposePalette      bool    // Store skin matrices transposed
	NormalizeWeights      bool    // Rescale vertex weights to sum to 1
	BonesOnlyLines        bool    // Emit lines only between registered bones
	Clip                  string  // Clip to select at load; empty picks the first
}

// DefaultOptions returns the options matching the default configuration.
func DefaultOptions() Options {
	return Options{
		DefaultTicksPerSecond: animation.DefaultTicksPerSecond,
		Speed:                 1,
		TransposePalette:      true,
	}
}

// Frame is the per-frame context: the caller supplies the time and the
// write targets, Evaluate fills them.
type Frame struct {
	Seconds float32           // Wall-clock time since playback start
	Ticks   float32           // Clip position the frame was sampled at
	Palette *skinning.Palette // Allocated on first use when nil
	Lines   []math.Vec3       // Line-list pairs, reused across frames
}

// Animator holds the load-time bindings of one scene. It is not safe for
// concurrent Evaluate calls; the scene itself is treated as read-only.
type Animator struct {
	opts Options
	log  *zap.Logger

	scene    *scene.Scene
	skel     *skeleton.Skeleton
	registry *skinning.Registry
	binding  *skinning.Binding
	meshes   []*model.Mesh
	pose     *skeleton.Pose

	clip     *scene.Clip
	channels []*scene.Channel // by handle; nil keeps the bind transform
	loaded   bool
}

// New creates an animator with no scene loaded.
func New(opts Options) *Animator {
	if opts.Speed == 0 {
		opts.Speed = 1
	}
	if opts.DefaultTicksPerSecond <= 0 {
		opts.DefaultTicksPerSecond = animation.DefaultTicksPerSecond
	}
	return &Animator{
		opts: opts,
		log:  logger.Named("animator"),
	}
}

// Load binds s. Any previous scene is dropped first, so a failed load
// leaves the animator unloaded.
func (a *Animator) Load(s *scene.Scene) error {
	a.unload()

	if s == nil || s.Root == nil {
		return ErrNoRoot
	}
	if len(s.Meshes) == 0 {
		return ErrNoMeshes
	}

	skel, err := skeleton.Build(s.Root)
	if err != nil {
		return fmt.Errorf("building skeleton: %w", err)
	}

	reg := skinning.NewRegistry(s.Meshes)
	binding, err := skinning.Bind(skel, reg, skinning.Options{
		Transpose: a.opts.TransposePalette,
		Strict:    a.opts.Strict,
	})
	if err != nil {
		return fmt.Errorf("binding bones: %w", err)
	}

	meshes := make([]*model.Mesh, len(s.Meshes))
	for i := range s.Meshes {
		m, err := model.BuildMesh(&s.Meshes[i], reg, model.BuildOptions{
			NormalizeWeights: a.opts.NormalizeWeights,
			Strict:           a.opts.Strict,
		})
		if err != nil {
			return fmt.Errorf("building mesh %q: %w", s.Meshes[i].Name, err)
		}
		if st := m.Stats; st.Dropped > 0 || st.OutOfRange > 0 || st.Unnormalized > 0 {
			a.log.Debug("mesh skin data adjusted",
				zap.String("mesh", m.Name),
				zap.Int("dropped", st.Dropped),
				zap.Int("out_of_range", st.OutOfRange),
				zap.Int("unnormalized", st.Unnormalized))
		}
		meshes[i] = m
	}

	a.scene = s
	a.skel = skel
	a.registry = reg
	a.binding = binding
	a.meshes = meshes
	a.pose = skel.NewPose()
	a.channels = make([]*scene.Channel, skel.Len())

	var clip *scene.Clip
	switch {
	case a.opts.Clip != "":
		if clip = s.Clip(a.opts.Clip); clip == nil {
			a.unload()
			return fmt.Errorf("%w: %q", ErrUnknownClip, a.opts.Clip)
		}
	case len(s.Clips) > 0:
		clip = s.Clips[0]
	}
	if err := a.bindClip(clip); err != nil {
		a.unload()
		return err
	}

	a.loaded = true
	a.log.Info("scene loaded",
		zap.Int("nodes", skel.Len()),
		zap.Int("depth", skel.MaxDepth()),
		zap.Int("meshes", len(meshes)),
		zap.Int("bones", reg.Len()),
		zap.Int("bound", binding.Bones()),
		zap.String("clip", a.ClipName()))
	return nil
}

func (a *Animator) unload() {
	*a = Animator{opts: a.opts, log: a.log}
}

// SelectClip switches the active clip. An empty name selects no clip, so
// every node stays in its bind pose.
func (a *Animator) SelectClip(name string) error {
	if !a.loaded {
		return ErrNotLoaded
	}
	if name == "" {
		return a.bindClip(nil)
	}
	clip := a.scene.Clip(name)
	if clip == nil {
		return fmt.Errorf("%w: %q", ErrUnknownClip, name)
	}
	return a.bindClip(clip)
}

// bindClip resolves channel names to handles once. On error the previous
// clip binding is kept.
func (a *Animator) bindClip(clip *scene.Clip) error {
	channels := make([]*scene.Channel, a.skel.Len())
	if clip == nil {
		a.clip, a.channels = nil, channels
		return nil
	}

	if clip.Duration <= 0 && clip.HasKeys() {
		if a.opts.Strict {
			return fmt.Errorf("%w: %q", ErrInvalidClip, clip.Name)
		}
		a.log.Warn("ignoring clip without duration", zap.String("clip", clip.Name))
		a.clip, a.channels = nil, channels
		return nil
	}

	names := make([]string, 0, len(clip.Channels))
	for name := range clip.Channels {
		names = append(names, name)
	}
	slices.Sort(names)

	unbound := 0
	for _, name := range names {
		h, ok := a.skel.Lookup(name)
		if !ok {
			if a.opts.Strict {
				return fmt.Errorf("%w: %q in clip %q", ErrUnboundChannel, name, clip.Name)
			}
			a.log.Debug("channel has no skeleton node",
				zap.String("clip", clip.Name),
				zap.String("node", name))
			unbound++
			continue
		}
		channels[h] = clip.Channels[name]
	}
	if unbound > 0 {
		a.log.Warn("clip channels ignored",
			zap.String("clip", clip.Name),
			zap.Int("unbound", unbound))
	}

	a.clip, a.channels = clip, channels
	return nil
}

// Evaluate samples the active clip at f.Seconds, composes the pose and
// writes the palette and bone lines into f. When no scene is loaded it
// returns ErrNotLoaded and leaves f untouched, so the previous matrices
// remain usable.
func (a *Animator) Evaluate(f *Frame) error {
	if !a.loaded {
		return ErrNotLoaded
	}
	if f.Palette == nil {
		f.Palette = skinning.NewPalette(a.opts.TransposePalette)
	}

	ticks := a.Ticks(f.Seconds)
	for i := range a.channels {
		h := skeleton.Handle(i)
		a.pose.Locals[i] = animation.LocalTransform(a.channels[i], a.skel.Node(h).Bind, ticks)
	}
	a.skel.Compose(a.pose)
	a.binding.Apply(a.pose, f.Palette)

	var include func(skeleton.Handle) bool
	if a.opts.BonesOnlyLines {
		include = a.binding.IsBone
	}
	f.Lines = a.skel.BoneLines(a.pose, include, f.Lines)
	f.Ticks = ticks
	return nil
}

// Ticks converts wall-clock seconds to the active clip's tick position,
// applying the playback speed. Without a clip it is always 0.
func (a *Animator) Ticks(seconds float32) float32 {
	return animation.Ticks(a.clip, seconds*a.opts.Speed, a.opts.DefaultTicksPerSecond)
}

// Loaded reports whether a scene is bound.
func (a *Animator) Loaded() bool { return a.loaded }

// Options returns the options the animator was created with.
func (a *Animator) Options() Options { return a.opts }

// Scene returns the loaded scene.
func (a *Animator) Scene() *scene.Scene { return a.scene }

// Skeleton returns the node arena built at load.
func (a *Animator) Skeleton() *skeleton.Skeleton { return a.skel }

// Registry returns the bone registry built at load.
func (a *Animator) Registry() *skinning.Registry { return a.registry }

// Binding returns the bone-to-handle binding built at load.
func (a *Animator) Binding() *skinning.Binding { return a.binding }

// Meshes returns the vertex meshes built at load.
func (a *Animator) Meshes() []*model.Mesh { return a.meshes }

// Pose returns the scratch pose of the last evaluation.
func (a *Animator) Pose() *skeleton.Pose { return a.pose }

// Clip returns the active clip, or nil.
func (a *Animator) Clip() *scene.Clip { return a.clip }

// ClipName returns the active clip's name, or an empty string.
func (a *Animator) ClipName() string {
	if a.clip == nil {
		return ""
	}
	return a.clip.Name
}

// Globals returns a name-keyed copy of the last evaluated world transforms.
func (a *Animator) Globals() map[string]math.Mat4 {
	if !a.loaded {
		return nil
	}
	return a.skel.GlobalMap(a.pose)
}
