package formats

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/skelanim/pkg/math"
	"github.com/Faultbox/skelanim/pkg/scene"
)

func loadSkinnedTriangle(t *testing.T) *scene.Scene {
	t.Helper()
	s, err := ParseGLTFFile(filepath.Join("testdata", "skinned_triangle.gltf"))
	if err != nil {
		t.Fatalf("ParseGLTFFile failed: %v", err)
	}
	return s
}

func TestParseGLTFFile_Hierarchy(t *testing.T) {
	s := loadSkinnedTriangle(t)

	if s.Root == nil || s.Root.Name != "Root" {
		t.Fatalf("expected root node 'Root', got %+v", s.Root)
	}
	if len(s.Root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(s.Root.Children))
	}

	bone := s.Root.Children[0]
	if bone.Name != "Bone" {
		t.Errorf("expected first child 'Bone', got %q", bone.Name)
	}
	if !bone.Transform.ApproxEqual(math.Translate(0, 1, 0), 1e-6) {
		t.Errorf("Bone transform = %v, want translate(0,1,0)", bone.Transform)
	}

	body := s.Root.Children[1]
	if len(body.Meshes) != 1 || body.Meshes[0] != 0 {
		t.Errorf("expected Body to reference mesh 0, got %v", body.Meshes)
	}
}

func TestParseGLTFFile_Mesh(t *testing.T) {
	s := loadSkinnedTriangle(t)

	if len(s.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(s.Meshes))
	}
	m := s.Meshes[0]
	if m.Name != "Tri" {
		t.Errorf("expected mesh name 'Tri', got %q", m.Name)
	}
	if len(m.Positions) != 3 || len(m.Normals) != 3 {
		t.Fatalf("expected 3 positions and normals, got %d/%d", len(m.Positions), len(m.Normals))
	}
	if m.Positions[1] != (math.Vec3{X: 1}) {
		t.Errorf("position 1 = %v, want (1,0,0)", m.Positions[1])
	}
	if len(m.Indices) != 3 || m.Indices[2] != 2 {
		t.Errorf("unexpected indices %v", m.Indices)
	}
	if s.BoneCount() != 2 {
		t.Errorf("expected 2 bones, got %d", s.BoneCount())
	}
}

func TestParseGLTFFile_Skin(t *testing.T) {
	s := loadSkinnedTriangle(t)
	bones := s.Meshes[0].Bones

	if len(bones) != 2 {
		t.Fatalf("expected 2 bones, got %d", len(bones))
	}
	if bones[0].Name != "Root" || bones[1].Name != "Bone" {
		t.Errorf("unexpected bone names %q, %q", bones[0].Name, bones[1].Name)
	}
	if !bones[0].Offset.ApproxEqual(math.Identity(), 1e-6) {
		t.Errorf("Root offset = %v, want identity", bones[0].Offset)
	}
	if !bones[1].Offset.ApproxEqual(math.Translate(0, -1, 0), 1e-6) {
		t.Errorf("Bone offset = %v, want translate(0,-1,0)", bones[1].Offset)
	}

	want := []scene.VertexWeight{{VertexID: 0, Weight: 1}, {VertexID: 1, Weight: 0.5}, {VertexID: 2, Weight: 1}}
	if len(bones[0].Weights) != len(want) {
		t.Fatalf("Root weights = %v, want %v", bones[0].Weights, want)
	}
	for i, w := range want {
		if bones[0].Weights[i] != w {
			t.Errorf("Root weight %d = %v, want %v", i, bones[0].Weights[i], w)
		}
	}
	if len(bones[1].Weights) != 1 || bones[1].Weights[0] != (scene.VertexWeight{VertexID: 1, Weight: 0.5}) {
		t.Errorf("Bone weights = %v", bones[1].Weights)
	}
}

func TestParseGLTFFile_Animation(t *testing.T) {
	s := loadSkinnedTriangle(t)

	clip := s.Clip("Slide")
	if clip == nil {
		t.Fatal("expected clip 'Slide'")
	}
	if clip.TicksPerSecond != 1 {
		t.Errorf("expected 1 tick per second, got %v", clip.TicksPerSecond)
	}
	if clip.Duration != 1 {
		t.Errorf("expected duration 1, got %v", clip.Duration)
	}
	if len(clip.Channels) != 2 {
		t.Fatalf("expected channels merged per node, got %d", len(clip.Channels))
	}

	root := clip.Channels["Root"]
	if root == nil {
		t.Fatal("missing Root channel")
	}
	if len(root.Positions) != 2 || root.Positions[1].Value != (math.Vec3{X: 10}) {
		t.Errorf("unexpected Root positions %v", root.Positions)
	}
	// Cubic spline keeps the middle element of each tangent triple
	if len(root.Scales) != 2 || root.Scales[1].Value != (math.Vec3{X: 2, Y: 2, Z: 2}) {
		t.Errorf("unexpected Root scales %v", root.Scales)
	}

	bone := clip.Channels["Bone"]
	if bone == nil || len(bone.Rotations) != 2 {
		t.Fatalf("unexpected Bone channel %+v", bone)
	}
	if bone.Rotations[0].Value != math.QuatIdentity() {
		t.Errorf("Bone rotation 0 = %v, want identity", bone.Rotations[0].Value)
	}
	if !clip.Animated() {
		t.Error("expected clip to be animated")
	}
}

func TestParseGLTFFile_Missing(t *testing.T) {
	_, err := ParseGLTFFile(filepath.Join("testdata", "missing.gltf"))
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestParseGLTF_Roots(t *testing.T) {
	tests := []struct {
		name      string
		doc       *gltf.Document
		wantRoot  string
		wantNames []string
		wantErr   error
	}{
		{
			name:    "no nodes",
			doc:     &gltf.Document{},
			wantErr: ErrNoScene,
		},
		{
			name: "single scene root",
			doc: &gltf.Document{
				Nodes:  []*gltf.Node{{Name: "Hips", Children: []uint32{1}}, {Name: "Spine"}},
				Scenes: []*gltf.Scene{{Nodes: []uint32{0}}},
			},
			wantRoot:  "Hips",
			wantNames: []string{"Spine"},
		},
		{
			name: "multiple roots get a synthetic parent",
			doc: &gltf.Document{
				Nodes:  []*gltf.Node{{Name: "Armature"}, {}},
				Scenes: []*gltf.Scene{{Nodes: []uint32{0, 1}}},
			},
			wantRoot:  SyntheticRootName,
			wantNames: []string{"Armature", "node1"},
		},
		{
			name: "no scenes falls back to parentless nodes",
			doc: &gltf.Document{
				Nodes: []*gltf.Node{{Name: "Child"}, {Name: "Parent", Children: []uint32{0}}},
			},
			wantRoot:  "Parent",
			wantNames: []string{"Child"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseGLTF(tt.doc)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Root.Name != tt.wantRoot {
				t.Errorf("root = %q, want %q", s.Root.Name, tt.wantRoot)
			}
			if len(s.Root.Children) != len(tt.wantNames) {
				t.Fatalf("got %d children, want %d", len(s.Root.Children), len(tt.wantNames))
			}
			for i, name := range tt.wantNames {
				if s.Root.Children[i].Name != name {
					t.Errorf("child %d = %q, want %q", i, s.Root.Children[i].Name, name)
				}
			}
		})
	}
}

func TestParseGLTF_Cycle(t *testing.T) {
	doc := &gltf.Document{
		Nodes:  []*gltf.Node{{Name: "A", Children: []uint32{1}}, {Name: "B", Children: []uint32{0}}},
		Scenes: []*gltf.Scene{{Nodes: []uint32{0}}},
	}
	if _, err := ParseGLTF(doc); err == nil {
		t.Error("expected error for cyclic node graph, got nil")
	}
}

// trsNode returns a node carrying the defaults the decoder fills in.
func trsNode() *gltf.Node {
	return &gltf.Node{Matrix: gltf.DefaultMatrix, Rotation: gltf.DefaultRotation, Scale: gltf.DefaultScale}
}

func TestNodeTransform(t *testing.T) {
	withTRS := func(tr [3]float32, s [3]float32) *gltf.Node {
		n := trsNode()
		n.Translation, n.Scale = tr, s
		return n
	}

	tests := []struct {
		name string
		node *gltf.Node
		want math.Mat4
	}{
		{
			name: "defaults",
			node: trsNode(),
			want: math.Identity(),
		},
		{
			name: "translation only",
			node: withTRS([3]float32{1, 2, 3}, gltf.DefaultScale),
			want: math.Translate(1, 2, 3),
		},
		{
			name: "matrix",
			node: &gltf.Node{Matrix: [16]float32{2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 2, 0, 4, 5, 6, 1}},
			want: math.Translate(4, 5, 6).Mul(math.Scale(2, 2, 2)),
		},
		{
			name: "scale and translation",
			node: withTRS([3]float32{1, 0, 0}, [3]float32{3, 3, 3}),
			want: math.Translate(1, 0, 0).Mul(math.Scale(3, 3, 3)),
		},
		{
			name: "zero scale is kept",
			node: withTRS([3]float32{1, 2, 3}, [3]float32{}),
			want: math.Translate(1, 2, 3).Mul(math.Scale(0, 0, 0)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nodeTransform(tt.node)
			if !got.ApproxEqual(tt.want, 1e-6) {
				t.Errorf("nodeTransform() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseGLTF_AccessorOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc *gltf.Document)
	}{
		{
			name:   "animation output",
			mutate: func(doc *gltf.Document) { doc.Animations[0].Samplers[0].Output = 99 },
		},
		{
			name:   "animation input",
			mutate: func(doc *gltf.Document) { doc.Animations[0].Samplers[0].Input = 99 },
		},
		{
			name:   "mesh positions",
			mutate: func(doc *gltf.Document) { doc.Meshes[0].Primitives[0].Attributes[gltf.POSITION] = 99 },
		},
		{
			name:   "mesh indices",
			mutate: func(doc *gltf.Document) { doc.Meshes[0].Primitives[0].Indices = gltf.Index(99) },
		},
		{
			name:   "skin weights",
			mutate: func(doc *gltf.Document) { doc.Meshes[0].Primitives[0].Attributes[gltf.WEIGHTS_0] = 99 },
		},
		{
			name:   "inverse bind matrices",
			mutate: func(doc *gltf.Document) { doc.Skins[0].InverseBindMatrices = gltf.Index(99) },
		},
		{
			name:   "channel sampler",
			mutate: func(doc *gltf.Document) { doc.Animations[0].Channels[0].Sampler = gltf.Index(99) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := gltf.Open(filepath.Join("testdata", "skinned_triangle.gltf"))
			if err != nil {
				t.Fatalf("gltf.Open failed: %v", err)
			}
			tt.mutate(doc)

			_, err = ParseGLTF(doc)
			if !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("expected ErrIndexOutOfRange, got %v", err)
			}
		})
	}
}
