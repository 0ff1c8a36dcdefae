package config

import (
	"flag"
	"time"
)

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagStrict    = flag.Bool("strict", false, "Fail on bone overflow and unmatched names")
	flagClip      = flag.String("clip", "", "Animation clip name")
	flagFPS       = flag.Int("fps", 0, "Frames per second for playback")
	flagFrames    = flag.Int("frames", 0, "Number of frames to evaluate")
	flagStart     = flag.Duration("start", 0, "Evaluation start time (e.g. 1.5s)")
	flagNormalize = flag.Bool("normalize", false, "Normalize vertex bone weights")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagStrict {
		cfg.Animation.Strict = true
	}
	if *flagClip != "" {
		cfg.Animation.Clip = *flagClip
	}
	if *flagFPS > 0 {
		cfg.Playback.FPS = *flagFPS
	}
	if *flagFrames > 0 {
		cfg.Playback.Frames = *flagFrames
	}
	if *flagStart > time.Duration(0) {
		cfg.Playback.Start = *flagStart
	}
	if *flagNormalize {
		cfg.Animation.NormalizeWeights = true
	}
}
