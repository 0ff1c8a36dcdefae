// skelanim is a CLI for inspecting and evaluating skinned glTF animations.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/skelanim/internal/config"
	"github.com/Faultbox/skelanim/internal/engine/animator"
	"github.com/Faultbox/skelanim/internal/engine/debug"
	"github.com/Faultbox/skelanim/internal/engine/model"
	"github.com/Faultbox/skelanim/internal/engine/skeleton"
	"github.com/Faultbox/skelanim/internal/logger"
	"github.com/Faultbox/skelanim/pkg/formats"
	"github.com/Faultbox/skelanim/pkg/math"
	"github.com/Faultbox/skelanim/pkg/scene"
)

func main() {
	config.ParseFlags()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "help", "-h", "--help":
		printUsage()
		return
	case "info", "pose", "lines", "play":
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: skelanim [flags] %s <file.gltf>\n", command)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	s, err := formats.ParseGLTFFile(args[0])
	if err != nil {
		logger.Error("failed to import scene", zap.String("file", args[0]), zap.Error(err))
		os.Exit(1)
	}

	if command == "info" {
		cmdInfo(args[0], s)
		return
	}

	anim := animator.New(animatorOptions(cfg))
	if err := anim.Load(s); err != nil {
		logger.Error("failed to load scene", zap.String("file", args[0]), zap.Error(err))
		os.Exit(1)
	}

	start := float32(cfg.Playback.Start.Seconds())
	switch command {
	case "pose":
		err = cmdPose(anim, start)
	case "lines":
		err = cmdLines(anim, start)
	case "play":
		err = cmdPlay(anim, start, cfg.Playback.FPS, cfg.Playback.Frames)
	}
	if err != nil {
		logger.Error("evaluation failed", zap.Error(err))
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`skelanim - skeletal animation evaluator

Usage:
  skelanim [flags] <command> <file.gltf>

Commands:
  info   Show hierarchy, meshes, bones and clips
  pose   Print world transforms and skin matrices at -start
  lines  Print skeleton and skinned bounds segments at -start
  play   Evaluate -frames frames at -fps and print skinned bounds

Flags:
  -config <path>   Config file (default ./skelanim.yaml)
  -clip <name>     Animation clip (default: first clip)
  -start <dur>     Start time, e.g. 1.5s
  -fps <n>         Frames per second for play
  -frames <n>      Number of frames for play
  -strict          Fail on bone overflow and unmatched names
  -normalize       Normalize vertex bone weights
  -debug           Enable debug logging

Examples:
  skelanim info model.gltf
  skelanim -clip Walk -start 0.5s pose model.gltf
  skelanim -fps 30 -frames 60 play model.glb`)
}

func animatorOptions(cfg *config.Config) animator.Options {
	return animator.Options{
		DefaultTicksPerSecond: cfg.Animation.TicksPerSecond,
		Speed:                 cfg.Animation.Speed,
		Strict:                cfg.Animation.Strict,
		TransposePalette:      cfg.Animation.TransposePalette,
		NormalizeWeights:      cfg.Animation.NormalizeWeights,
		BonesOnlyLines:        cfg.Animation.BonesOnlyLines,
		Clip:                  cfg.Animation.Clip,
	}
}

func cmdInfo(path string, s *scene.Scene) {
	nodes, depth := 0, 0
	s.Walk(func(n *scene.Node, d int) bool {
		nodes++
		if d > depth {
			depth = d
		}
		return true
	})

	fmt.Printf("File:    %s\n", path)
	fmt.Printf("Root:    %s\n", s.Root.Name)
	fmt.Printf("Nodes:   %d (depth %d)\n", nodes, depth)
	fmt.Printf("Meshes:  %d\n", len(s.Meshes))
	fmt.Printf("Bones:   %d\n", s.BoneCount())
	fmt.Println()

	fmt.Println("Hierarchy:")
	s.Walk(func(n *scene.Node, d int) bool {
		suffix := ""
		if len(n.Meshes) > 0 {
			suffix = fmt.Sprintf("  [meshes %v]", n.Meshes)
		}
		fmt.Printf("  %s%s%s\n", strings.Repeat("  ", d), n.Name, suffix)
		return true
	})
	fmt.Println()

	fmt.Println("Meshes:")
	for i, m := range s.Meshes {
		fmt.Printf("  %-3d %-24s %6d verts %6d tris %4d bones\n",
			i, m.Name, len(m.Positions), len(m.Indices)/3, len(m.Bones))
	}
	fmt.Println()

	fmt.Println("Clips:")
	if len(s.Clips) == 0 {
		fmt.Println("  (none)")
	}
	for _, c := range s.Clips {
		fmt.Printf("  %-24s duration %.3f ticks @ %.1f/s, %d channels, animated=%v\n",
			c.Name, c.Duration, c.TicksPerSecond, len(c.Channels), c.Animated())
	}
}

func cmdPose(anim *animator.Animator, seconds float32) error {
	f := &animator.Frame{Seconds: seconds}
	if err := anim.Evaluate(f); err != nil {
		return err
	}

	skel := anim.Skeleton()
	pose := anim.Pose()

	fmt.Printf("Clip:  %q at %.3fs (tick %.3f)\n", anim.ClipName(), f.Seconds, f.Ticks)
	fmt.Println()
	fmt.Println("World positions:")
	for i := 0; i < skel.Len(); i++ {
		n := skel.Node(skeleton.Handle(i))
		p := pose.Globals[i].Translation()
		fmt.Printf("  %s%-20s (%8.4f, %8.4f, %8.4f)\n", strings.Repeat("  ", n.Depth), n.Name, p.X, p.Y, p.Z)
	}
	fmt.Println()

	fmt.Println("Skin matrices:")
	for _, name := range anim.Registry().Names() {
		slot, _ := anim.Registry().SlotOf(name)
		if slot >= len(f.Palette.Matrices) {
			fmt.Printf("  %3d %-20s (over capacity)\n", slot, name)
			continue
		}
		m := f.Palette.Matrix(slot)
		fmt.Printf("  %3d %-20s %v\n", slot, name, m)
	}
	return nil
}

func cmdLines(anim *animator.Animator, seconds float32) error {
	f := &animator.Frame{Seconds: seconds}
	if err := anim.Evaluate(f); err != nil {
		return err
	}

	fmt.Printf("Skeleton: %d segments\n", len(f.Lines)/2)
	printSegments(f.Lines)

	var boxes []math.Vec3
	for _, mesh := range anim.Meshes() {
		_, bounds := model.Skin(mesh, f.Palette, nil)
		boxes = debug.BoundsLines(bounds, 0, boxes)
	}
	fmt.Printf("Skinned bounds: %d segments\n", len(boxes)/2)
	printSegments(boxes)

	logger.Debug("line buffers built",
		zap.Int("skeleton_floats", len(debug.FlattenLines(f.Lines, nil))),
		zap.Int("bounds_floats", len(debug.FlattenLines(boxes, nil))))
	return nil
}

func printSegments(lines []math.Vec3) {
	for i := 0; i+1 < len(lines); i += 2 {
		a, b := lines[i], lines[i+1]
		fmt.Printf("  (%8.4f, %8.4f, %8.4f) -> (%8.4f, %8.4f, %8.4f)\n", a.X, a.Y, a.Z, b.X, b.Y, b.Z)
	}
}

func cmdPlay(anim *animator.Animator, start float32, fps, frames int) error {
	step := time.Second / time.Duration(fps)
	f := &animator.Frame{}
	skinned := make([][]model.Vertex, len(anim.Meshes()))

	began := time.Now()
	for i := 0; i < frames; i++ {
		f.Seconds = start + float32((time.Duration(i) * step).Seconds())
		if err := anim.Evaluate(f); err != nil {
			return err
		}

		var checksum float32
		for _, v := range f.Palette.Floats() {
			checksum += v
		}

		fmt.Printf("frame %4d  t=%7.3fs  tick=%8.3f  palette=%.4f\n", i, f.Seconds, f.Ticks, checksum)
		for m, mesh := range anim.Meshes() {
			var bounds model.Bounds
			skinned[m], bounds = model.Skin(mesh, f.Palette, skinned[m])
			fmt.Printf("  %-24s min(%.3f, %.3f, %.3f) max(%.3f, %.3f, %.3f)\n", mesh.Name,
				bounds.Min[0], bounds.Min[1], bounds.Min[2],
				bounds.Max[0], bounds.Max[1], bounds.Max[2])
		}
	}

	logger.Debug("playback finished",
		zap.Int("frames", frames),
		zap.Duration("elapsed", time.Since(began)))
	return nil
}
