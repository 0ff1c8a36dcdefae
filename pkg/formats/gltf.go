// Package formats provides importers for 3D scene file formats.
// glTF 2.0 importer producing the scene model the evaluator consumes.
package formats

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/skelanim/pkg/math"
	"github.com/Faultbox/skelanim/pkg/scene"
)

// glTF import errors.
var (
	ErrNoScene             = errors.New("glTF document has no scene nodes")
	ErrUnsupportedAccessor = errors.New("unsupported glTF accessor layout")
	ErrIndexOutOfRange     = errors.New("glTF index out of range")
)

// SyntheticRootName names the node inserted above multiple scene roots.
const SyntheticRootName = "RootNode"

// ParseGLTFFile opens a .gltf or .glb file and converts it.
func ParseGLTFFile(path string) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading glTF file: %w", err)
	}
	return ParseGLTF(doc)
}

// ParseGLTF converts a decoded glTF document into a scene.
//
// Each mesh primitive becomes one scene mesh. Skinned primitives carry one
// bone per skin joint, named after the joint node. Animation times are in
// seconds, so clips are emitted with one tick per second.
func ParseGLTF(doc *gltf.Document) (*scene.Scene, error) {
	roots := sceneRoots(doc)
	if len(roots) == 0 {
		return nil, ErrNoScene
	}

	c := &gltfConverter{
		doc:    doc,
		names:  make([]string, len(doc.Nodes)),
		meshes: make(map[[2]int][]int),
		out:    &scene.Scene{},
	}
	for i, n := range doc.Nodes {
		c.names[i] = nodeName(n, i)
	}

	var top []*scene.Node
	for _, idx := range roots {
		n, err := c.convertNode(idx, make(map[int]bool))
		if err != nil {
			return nil, err
		}
		top = append(top, n)
	}
	if len(top) == 1 {
		c.out.Root = top[0]
	} else {
		c.out.Root = &scene.Node{
			Name:      SyntheticRootName,
			Transform: math.Identity(),
			Children:  top,
		}
	}

	for i, a := range doc.Animations {
		clip, err := c.convertAnimation(i, a)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
		c.out.Clips = append(c.out.Clips, clip)
	}

	return c.out, nil
}

type gltfConverter struct {
	doc    *gltf.Document
	names  []string
	meshes map[[2]int][]int // (mesh, skin) -> scene mesh indices
	out    *scene.Scene
}

// sceneRoots returns the root nodes of the default scene, falling back to
// the first scene and then to every parentless node.
func sceneRoots(doc *gltf.Document) []int {
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		return indices(doc.Scenes[*doc.Scene].Nodes)
	}
	if len(doc.Scenes) > 0 {
		return indices(doc.Scenes[0].Nodes)
	}

	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func indices(src []uint32) []int {
	out := make([]int, len(src))
	for i, v := range src {
		out[i] = int(v)
	}
	return out
}

func nodeName(n *gltf.Node, index int) string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("node%d", index)
}

func (c *gltfConverter) convertNode(idx int, path map[int]bool) (*scene.Node, error) {
	if idx < 0 || idx >= len(c.doc.Nodes) {
		return nil, fmt.Errorf("%w: node %d", ErrIndexOutOfRange, idx)
	}
	if path[idx] {
		return nil, fmt.Errorf("node %d: cyclic hierarchy", idx)
	}
	path[idx] = true
	defer delete(path, idx)

	src := c.doc.Nodes[idx]
	n := &scene.Node{
		Name:      c.names[idx],
		Transform: nodeTransform(src),
	}

	if src.Mesh != nil {
		skin := -1
		if src.Skin != nil {
			skin = int(*src.Skin)
		}
		meshes, err := c.convertMesh(int(*src.Mesh), skin)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.Name, err)
		}
		n.Meshes = meshes
	}

	for _, child := range src.Children {
		cn, err := c.convertNode(int(child), path)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, cn)
	}
	return n, nil
}

// nodeTransform returns the local transform from the node matrix when one
// is set, otherwise from its TRS properties. The decoder fills unset TRS
// fields with their defaults, so every TRS value is taken as authored.
func nodeTransform(n *gltf.Node) math.Mat4 {
	if n.Matrix != [16]float32{} && n.Matrix != gltf.DefaultMatrix {
		return math.Mat4(n.Matrix)
	}

	t := math.Vec3FromArray(n.Translation)
	r := math.Quat{X: n.Rotation[0], Y: n.Rotation[1], Z: n.Rotation[2], W: n.Rotation[3]}
	s := math.Vec3FromArray(n.Scale)
	return math.FromTRS(t, r, s)
}

// convertMesh emits one scene mesh per primitive. Results are cached per
// mesh and skin pair so instanced meshes share scene meshes.
func (c *gltfConverter) convertMesh(meshIdx, skinIdx int) ([]int, error) {
	key := [2]int{meshIdx, skinIdx}
	if ids, ok := c.meshes[key]; ok {
		return ids, nil
	}
	if meshIdx < 0 || meshIdx >= len(c.doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIdx)
	}

	var skin *gltf.Skin
	if skinIdx >= 0 {
		if skinIdx >= len(c.doc.Skins) {
			return nil, fmt.Errorf("skin index %d out of range", skinIdx)
		}
		skin = c.doc.Skins[skinIdx]
	}

	src := c.doc.Meshes[meshIdx]
	var ids []int
	for p, prim := range src.Primitives {
		name := src.Name
		if name == "" {
			name = fmt.Sprintf("mesh%d", meshIdx)
		}
		if len(src.Primitives) > 1 {
			name = fmt.Sprintf("%s.%d", name, p)
		}

		m, err := c.convertPrimitive(name, prim, skin)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", src.Name, p, err)
		}
		ids = append(ids, len(c.out.Meshes))
		c.out.Meshes = append(c.out.Meshes, m)
	}
	c.meshes[key] = ids
	return ids, nil
}

// accessor returns the accessor at idx or an error when the document has
// no such accessor.
func (c *gltfConverter) accessor(idx uint32) (*gltf.Accessor, error) {
	if int(idx) >= len(c.doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d of %d", ErrIndexOutOfRange, idx, len(c.doc.Accessors))
	}
	return c.doc.Accessors[idx], nil
}

func (c *gltfConverter) convertPrimitive(name string, prim *gltf.Primitive, skin *gltf.Skin) (scene.Mesh, error) {
	m := scene.Mesh{Name: name}
	doc := c.doc

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return m, fmt.Errorf("no POSITION attribute")
	}
	acr, err := c.accessor(posIdx)
	if err != nil {
		return m, fmt.Errorf("positions: %w", err)
	}
	positions, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return m, fmt.Errorf("read positions: %w", err)
	}
	m.Positions = make([]math.Vec3, len(positions))
	for i, p := range positions {
		m.Positions[i] = math.Vec3FromArray(p)
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acr, err := c.accessor(idx)
		if err != nil {
			return m, fmt.Errorf("normals: %w", err)
		}
		normals, err := modeler.ReadNormal(doc, acr, nil)
		if err != nil {
			return m, fmt.Errorf("read normals: %w", err)
		}
		m.Normals = make([]math.Vec3, len(normals))
		for i, n := range normals {
			m.Normals[i] = math.Vec3FromArray(n)
		}
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		acr, err := c.accessor(idx)
		if err != nil {
			return m, fmt.Errorf("texcoords: %w", err)
		}
		m.TexCoords, err = modeler.ReadTextureCoord(doc, acr, nil)
		if err != nil {
			return m, fmt.Errorf("read texcoords: %w", err)
		}
	}

	if prim.Indices != nil {
		acr, err := c.accessor(*prim.Indices)
		if err != nil {
			return m, fmt.Errorf("indices: %w", err)
		}
		m.Indices, err = modeler.ReadIndices(doc, acr, nil)
		if err != nil {
			return m, fmt.Errorf("read indices: %w", err)
		}
	} else {
		m.Indices = make([]uint32, len(positions))
		for i := range m.Indices {
			m.Indices[i] = uint32(i)
		}
	}

	if skin != nil {
		if m.Bones, err = c.convertSkin(prim, skin); err != nil {
			return m, err
		}
	}
	return m, nil
}

// convertSkin builds one bone per joint with its inverse bind matrix and
// the vertex weights read from JOINTS_0 and WEIGHTS_0.
func (c *gltfConverter) convertSkin(prim *gltf.Primitive, skin *gltf.Skin) ([]scene.Bone, error) {
	doc := c.doc
	bones := make([]scene.Bone, len(skin.Joints))
	for i, j := range skin.Joints {
		if int(j) >= len(c.names) {
			return nil, fmt.Errorf("%w: joint node %d", ErrIndexOutOfRange, j)
		}
		bones[i] = scene.Bone{Name: c.names[j], Offset: math.Identity()}
	}

	if skin.InverseBindMatrices != nil {
		acr, err := c.accessor(*skin.InverseBindMatrices)
		if err != nil {
			return nil, fmt.Errorf("inverse bind matrices: %w", err)
		}
		raw, err := modeler.ReadAccessor(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read inverse bind matrices: %w", err)
		}
		mats, ok := raw.([][4][4]float32)
		if !ok {
			return nil, fmt.Errorf("%w: inverse bind matrices are %T", ErrUnsupportedAccessor, raw)
		}
		for i := 0; i < len(mats) && i < len(bones); i++ {
			bones[i].Offset = mat4FromColumns(mats[i])
		}
	}

	jointIdx, hasJoints := prim.Attributes[gltf.JOINTS_0]
	weightIdx, hasWeights := prim.Attributes[gltf.WEIGHTS_0]
	if !hasJoints || !hasWeights {
		return bones, nil
	}

	jointAcr, err := c.accessor(jointIdx)
	if err != nil {
		return nil, fmt.Errorf("joints: %w", err)
	}
	weightAcr, err := c.accessor(weightIdx)
	if err != nil {
		return nil, fmt.Errorf("weights: %w", err)
	}
	joints, err := modeler.ReadJoints(doc, jointAcr, nil)
	if err != nil {
		return nil, fmt.Errorf("read joints: %w", err)
	}
	weights, err := modeler.ReadWeights(doc, weightAcr, nil)
	if err != nil {
		return nil, fmt.Errorf("read weights: %w", err)
	}
	if len(joints) != len(weights) {
		return nil, fmt.Errorf("%w: %d joints vs %d weights", ErrUnsupportedAccessor, len(joints), len(weights))
	}

	for v := range joints {
		for k := 0; k < 4; k++ {
			w := weights[v][k]
			if w <= 0 {
				continue
			}
			j := int(joints[v][k])
			if j >= len(bones) {
				return nil, fmt.Errorf("vertex %d references joint %d of %d", v, j, len(bones))
			}
			bones[j].Weights = append(bones[j].Weights, scene.VertexWeight{VertexID: uint32(v), Weight: w})
		}
	}
	return bones, nil
}

func mat4FromColumns(cols [4][4]float32) math.Mat4 {
	var m math.Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			m[c*4+r] = cols[c][r]
		}
	}
	return m
}

// convertAnimation merges all channels targeting a node into one scene
// channel. Cubic spline samplers keep only their value elements.
func (c *gltfConverter) convertAnimation(index int, a *gltf.Animation) (*scene.Clip, error) {
	clip := &scene.Clip{
		Name:           a.Name,
		TicksPerSecond: 1,
		Channels:       make(map[string]*scene.Channel),
	}
	if clip.Name == "" {
		clip.Name = fmt.Sprintf("animation%d", index)
	}

	for ci, ch := range a.Channels {
		if ch.Target.Node == nil || ch.Sampler == nil {
			continue
		}
		node := int(*ch.Target.Node)
		if node >= len(c.names) {
			return nil, fmt.Errorf("channel %d: %w: node %d", ci, ErrIndexOutOfRange, node)
		}
		if int(*ch.Sampler) >= len(a.Samplers) {
			return nil, fmt.Errorf("channel %d: %w: sampler %d", ci, ErrIndexOutOfRange, *ch.Sampler)
		}
		sampler := a.Samplers[*ch.Sampler]

		times, err := c.readTimes(sampler.Input)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ci, err)
		}
		for _, t := range times {
			if t > clip.Duration {
				clip.Duration = t
			}
		}

		stride, offset := 1, 0
		if sampler.Interpolation == gltf.InterpolationCubicSpline {
			stride, offset = 3, 1
		}

		name := c.names[node]
		dst, ok := clip.Channels[name]
		if !ok {
			dst = &scene.Channel{Node: name}
			clip.Channels[name] = dst
		}

		output, err := c.accessor(sampler.Output)
		if err != nil {
			return nil, fmt.Errorf("channel %d: output: %w", ci, err)
		}
		raw, err := modeler.ReadAccessor(c.doc, output, nil)
		if err != nil {
			return nil, fmt.Errorf("channel %d: read output: %w", ci, err)
		}

		switch ch.Target.Path {
		case gltf.TRSTranslation, gltf.TRSScale:
			values, ok := raw.([][3]float32)
			if !ok {
				return nil, fmt.Errorf("channel %d: %w: %T", ci, ErrUnsupportedAccessor, raw)
			}
			keys, err := vectorKeys(times, values, stride, offset)
			if err != nil {
				return nil, fmt.Errorf("channel %d: %w", ci, err)
			}
			if ch.Target.Path == gltf.TRSTranslation {
				dst.Positions = keys
			} else {
				dst.Scales = keys
			}
		case gltf.TRSRotation:
			values, ok := raw.([][4]float32)
			if !ok {
				return nil, fmt.Errorf("channel %d: %w: %T", ci, ErrUnsupportedAccessor, raw)
			}
			keys, err := quatKeys(times, values, stride, offset)
			if err != nil {
				return nil, fmt.Errorf("channel %d: %w", ci, err)
			}
			dst.Rotations = keys
		default:
			// Morph target weights are not part of the skeletal model.
		}
	}
	return clip, nil
}

func (c *gltfConverter) readTimes(idx uint32) ([]float32, error) {
	input, err := c.accessor(idx)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	raw, err := modeler.ReadAccessor(c.doc, input, nil)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	times, ok := raw.([]float32)
	if !ok {
		return nil, fmt.Errorf("%w: key times are %T", ErrUnsupportedAccessor, raw)
	}
	return times, nil
}

func vectorKeys(times []float32, values [][3]float32, stride, offset int) ([]scene.VectorKey, error) {
	if len(values) < len(times)*stride {
		return nil, fmt.Errorf("%w: %d keys but %d values", ErrUnsupportedAccessor, len(times), len(values))
	}
	keys := make([]scene.VectorKey, len(times))
	for i, t := range times {
		keys[i] = scene.VectorKey{Time: t, Value: math.Vec3FromArray(values[i*stride+offset])}
	}
	return keys, nil
}

func quatKeys(times []float32, values [][4]float32, stride, offset int) ([]scene.QuatKey, error) {
	if len(values) < len(times)*stride {
		return nil, fmt.Errorf("%w: %d keys but %d values", ErrUnsupportedAccessor, len(times), len(values))
	}
	keys := make([]scene.QuatKey, len(times))
	for i, t := range times {
		v := values[i*stride+offset]
		keys[i] = scene.QuatKey{Time: t, Value: math.Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]}}
	}
	return keys, nil
}
