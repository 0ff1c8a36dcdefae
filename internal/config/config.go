// Package config handles evaluator configuration loading and management.
package config

import "time"

// Config holds all settings.
type Config struct {
	Animation AnimationConfig `yaml:"animation"`
	Playback  PlaybackConfig  `yaml:"playback"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// AnimationConfig holds sampling and skinning policy settings.
type AnimationConfig struct {
	Clip             string  `yaml:"clip"`              // Clip name; empty selects the first clip
	TicksPerSecond   float32 `yaml:"ticks_per_second"`  // Used when a clip declares no rate
	Speed            float32 `yaml:"speed"`             // Playback speed multiplier
	Strict           bool    `yaml:"strict"`            // Error instead of truncating or ignoring
	TransposePalette bool    `yaml:"transpose_palette"` // Row-major palette for HLSL-style consumers
	NormalizeWeights bool    `yaml:"normalize_weights"` // Rescale vertex weights to sum to 1
	BonesOnlyLines   bool    `yaml:"bones_only_lines"`  // Skeleton lines between bones only
}

// PlaybackConfig holds frame stepping settings for the CLI.
type PlaybackConfig struct {
	FPS    int           `yaml:"fps"`
	Frames int           `yaml:"frames"`
	Start  time.Duration `yaml:"start"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Animation: AnimationConfig{
			Clip:             "",
			TicksPerSecond:   25,
			Speed:            1.0,
			Strict:           false,
			TransposePalette: true,
			NormalizeWeights: false,
			BonesOnlyLines:   false,
		},
		Playback: PlaybackConfig{
			FPS:    60,
			Frames: 1,
			Start:  0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
