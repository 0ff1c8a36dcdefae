package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test animation defaults
	if cfg.Animation.TicksPerSecond != 25 {
		t.Errorf("expected ticks per second 25, got %v", cfg.Animation.TicksPerSecond)
	}
	if cfg.Animation.Speed != 1.0 {
		t.Errorf("expected speed 1.0, got %v", cfg.Animation.Speed)
	}
	if cfg.Animation.Strict {
		t.Error("expected strict to be false by default")
	}
	if !cfg.Animation.TransposePalette {
		t.Error("expected transpose_palette to be true by default")
	}
	if cfg.Animation.NormalizeWeights {
		t.Error("expected normalize_weights to be false by default")
	}
	if cfg.Animation.Clip != "" {
		t.Errorf("expected empty clip, got %s", cfg.Animation.Clip)
	}

	// Test playback defaults
	if cfg.Playback.FPS != 60 {
		t.Errorf("expected fps 60, got %d", cfg.Playback.FPS)
	}
	if cfg.Playback.Frames != 1 {
		t.Errorf("expected 1 frame, got %d", cfg.Playback.Frames)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	yamlContent := `
animation:
  clip: "Walk"
  ticks_per_second: 30
  speed: 0.5
  strict: true
  transpose_palette: false
  normalize_weights: true
  bones_only_lines: true

playback:
  fps: 24
  frames: 48
  start: 1500ms

logging:
  level: "debug"
  log_file: "skelanim.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Animation.Clip != "Walk" {
		t.Errorf("expected clip Walk, got %s", cfg.Animation.Clip)
	}
	if cfg.Animation.TicksPerSecond != 30 {
		t.Errorf("expected ticks per second 30, got %v", cfg.Animation.TicksPerSecond)
	}
	if cfg.Animation.Speed != 0.5 {
		t.Errorf("expected speed 0.5, got %v", cfg.Animation.Speed)
	}
	if !cfg.Animation.Strict {
		t.Error("expected strict to be true")
	}
	if cfg.Animation.TransposePalette {
		t.Error("expected transpose_palette to be false")
	}
	if !cfg.Animation.NormalizeWeights {
		t.Error("expected normalize_weights to be true")
	}
	if !cfg.Animation.BonesOnlyLines {
		t.Error("expected bones_only_lines to be true")
	}

	if cfg.Playback.FPS != 24 {
		t.Errorf("expected fps 24, got %d", cfg.Playback.FPS)
	}
	if cfg.Playback.Frames != 48 {
		t.Errorf("expected 48 frames, got %d", cfg.Playback.Frames)
	}
	if cfg.Playback.Start != 1500*time.Millisecond {
		t.Errorf("expected start 1.5s, got %v", cfg.Playback.Start)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "skelanim.log" {
		t.Errorf("expected log file 'skelanim.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
animation:
  speed: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/skelanim.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero ticks per second", func(c *Config) { c.Animation.TicksPerSecond = 0 }, true},
		{"negative fps", func(c *Config) { c.Playback.FPS = -1 }, true},
		{"negative frames", func(c *Config) { c.Playback.Frames = -3 }, true},
		{"zero frames", func(c *Config) { c.Playback.Frames = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if filepath.Base(dir) != "skelanim" {
		t.Errorf("ConfigDir should end in skelanim, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, FileName)
	if err := os.WriteFile(configPath, []byte("animation:\n  speed: 2\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path == "" {
		t.Errorf("expected to find %s in current directory", FileName)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.Animation.Clip = "Run"
	cfg.Playback.Start = 2 * time.Second
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.Animation.Clip != "Run" {
		t.Errorf("expected clip Run, got %s", loaded.Animation.Clip)
	}
	if loaded.Playback.Start != 2*time.Second {
		t.Errorf("expected start 2s, got %v", loaded.Playback.Start)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "strict flag",
			setup: func() {
				*flagStrict = true
			},
			verify: func(cfg *Config) {
				if !cfg.Animation.Strict {
					t.Error("expected strict to be enabled")
				}
			},
			teardown: func() {
				*flagStrict = false
			},
		},
		{
			name: "clip flag",
			setup: func() {
				*flagClip = "Jump"
			},
			verify: func(cfg *Config) {
				if cfg.Animation.Clip != "Jump" {
					t.Errorf("expected clip Jump, got %s", cfg.Animation.Clip)
				}
			},
			teardown: func() {
				*flagClip = ""
			},
		},
		{
			name: "playback flags",
			setup: func() {
				*flagFPS = 30
				*flagFrames = 10
				*flagStart = 250 * time.Millisecond
			},
			verify: func(cfg *Config) {
				if cfg.Playback.FPS != 30 {
					t.Errorf("expected fps 30, got %d", cfg.Playback.FPS)
				}
				if cfg.Playback.Frames != 10 {
					t.Errorf("expected 10 frames, got %d", cfg.Playback.Frames)
				}
				if cfg.Playback.Start != 250*time.Millisecond {
					t.Errorf("expected start 250ms, got %v", cfg.Playback.Start)
				}
			},
			teardown: func() {
				*flagFPS = 0
				*flagFrames = 0
				*flagStart = 0
			},
		},
		{
			name: "normalize flag",
			setup: func() {
				*flagNormalize = true
			},
			verify: func(cfg *Config) {
				if !cfg.Animation.NormalizeWeights {
					t.Error("expected normalize_weights to be enabled")
				}
			},
			teardown: func() {
				*flagNormalize = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	yamlContent := `
animation:
  clip: "Idle"
playback:
  fps: 24
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagClip = "Walk"
	defer func() {
		*flagConfig = ""
		*flagClip = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Clip should be from flag, not file
	if cfg.Animation.Clip != "Walk" {
		t.Errorf("expected clip Walk from flag, got %s", cfg.Animation.Clip)
	}

	// FPS should be from file since no flag override
	if cfg.Playback.FPS != 24 {
		t.Errorf("expected fps 24 from file, got %d", cfg.Playback.FPS)
	}
}
