// Package skeleton flattens a scene node tree into an arena addressed by
// integer handles and composes per-frame global transforms over it.
package skeleton

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/skelanim/internal/logger"
	"github.com/Faultbox/skelanim/pkg/math"
	"github.com/Faultbox/skelanim/pkg/scene"
)

// Skeleton build errors.
var (
	ErrNoRoot          = errors.New("skeleton has no root node")
	ErrCyclicHierarchy = errors.New("node hierarchy contains a cycle")
)

// Handle addresses a node inside a Skeleton.
type Handle int32

// NoHandle marks the missing parent of the root.
const NoHandle Handle = -1

// Node is one arena entry.
type Node struct {
	Name     string
	Bind     math.Mat4
	Parent   Handle
	Children []Handle
	Depth    int
}

// Skeleton is an immutable, depth-first ordered node arena. Every parent
// precedes its descendants, so a single forward pass visits the tree top-down.
type Skeleton struct {
	nodes  []Node
	byName map[string]Handle
}

// Build flattens the tree under root. The pointer tree must be acyclic;
// a node reached twice is reported as ErrCyclicHierarchy.
func Build(root *scene.Node) (*Skeleton, error) {
	if root == nil {
		return nil, ErrNoRoot
	}

	s := &Skeleton{byName: make(map[string]Handle)}
	visited := make(map[*scene.Node]bool)

	type item struct {
		node   *scene.Node
		parent Handle
		depth  int
	}
	stack := []item{{root, NoHandle, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[it.node] {
			return nil, fmt.Errorf("%w: node %q reached twice", ErrCyclicHierarchy, it.node.Name)
		}
		visited[it.node] = true

		h := Handle(len(s.nodes))
		s.nodes = append(s.nodes, Node{
			Name:   it.node.Name,
			Bind:   it.node.Transform,
			Parent: it.parent,
			Depth:  it.depth,
		})
		if it.parent != NoHandle {
			p := &s.nodes[it.parent]
			p.Children = append(p.Children, h)
		}

		if _, dup := s.byName[it.node.Name]; dup {
			logger.Debug("duplicate node name, first occurrence keeps the name",
				zap.String("name", it.node.Name),
				zap.Int("handle", int(h)))
		} else {
			s.byName[it.node.Name] = h
		}

		// Push in reverse so children pop in their authored order
		for i := len(it.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.node.Children[i], h, it.depth + 1})
		}
	}

	return s, nil
}

// Len returns the number of nodes.
func (s *Skeleton) Len() int {
	return len(s.nodes)
}

// Root returns the root handle.
func (s *Skeleton) Root() Handle {
	return 0
}

// Node returns the node at h.
func (s *Skeleton) Node(h Handle) *Node {
	return &s.nodes[h]
}

// Lookup resolves a node name to its handle.
func (s *Skeleton) Lookup(name string) (Handle, bool) {
	h, ok := s.byName[name]
	return h, ok
}

// MaxDepth returns the depth of the deepest node; the root has depth 0.
func (s *Skeleton) MaxDepth() int {
	depth := 0
	for i := range s.nodes {
		if s.nodes[i].Depth > depth {
			depth = s.nodes[i].Depth
		}
	}
	return depth
}
