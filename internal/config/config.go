// Package config loads the renderer's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"stg-renderer/internal/gfx"
	"stg-renderer/internal/utils"
)

const (
	DefaultWidth  = 1280
	DefaultHeight = 720
	DefaultFPS    = 60
)

type Window struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	FPS        int    `yaml:"fps"`
	VSync      bool   `yaml:"vsync"`
	Resizable  bool   `yaml:"resizable"`
	Fullscreen bool   `yaml:"fullscreen"`
}

type Renderer struct {
	// Levels lists feature levels by preference, e.g. ["gl3.3", "gles2"].
	Levels []string `yaml:"levels"`
	// MaxVertices caps a batch below the device limit; 0 keeps the limit.
	MaxVertices    int    `yaml:"max_vertices"`
	Sampler        string `yaml:"sampler"`
	MaxTextureSize int    `yaml:"max_texture_size,omitempty"`
	ClearColor     uint32 `yaml:"clear_color"`
}

type Assets struct {
	Dirs     []string `yaml:"dirs"`
	Manifest string   `yaml:"manifest"`
	// Pack is an optional archive whose entries are extracted into the
	// first asset directory before loading.
	Pack string `yaml:"pack,omitempty"`
}

type Logging struct {
	Level      string `yaml:"level"`
	RaylibInfo bool   `yaml:"raylib_info"`
}

type Config struct {
	Window   Window   `yaml:"window"`
	Renderer Renderer `yaml:"renderer"`
	Assets   Assets   `yaml:"assets"`
	Logging  Logging  `yaml:"logging"`
	Script   string   `yaml:"script"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Window: Window{
			Title:     "stg-renderer",
			Width:     DefaultWidth,
			Height:    DefaultHeight,
			FPS:       DefaultFPS,
			VSync:     true,
			Resizable: true,
		},
		Renderer: Renderer{
			Sampler:    gfx.SamplerLinearClamp.String(),
			ClearColor: 0xFF000000,
		},
		Assets: Assets{
			Dirs:     []string{"assets"},
			Manifest: "manifest.yaml",
		},
		Logging: Logging{Level: "warn"},
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	utils.Info("Config: loaded %s", path)
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width < 0 || c.Window.Height < 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d is negative", c.Window.Width, c.Window.Height))
	}
	if c.Window.FPS < 0 {
		errs = append(errs, fmt.Errorf("window fps %d is negative", c.Window.FPS))
	}
	if _, err := c.Levels(); err != nil {
		errs = append(errs, err)
	}
	if c.Renderer.MaxVertices < 0 || c.Renderer.MaxVertices > gfx.MaxBatchVertices {
		errs = append(errs, fmt.Errorf("max_vertices %d outside [0, %d]", c.Renderer.MaxVertices, gfx.MaxBatchVertices))
	}
	if c.Renderer.MaxVertices > 0 && c.Renderer.MaxVertices < 4 {
		errs = append(errs, fmt.Errorf("max_vertices %d cannot hold a quad", c.Renderer.MaxVertices))
	}
	if _, err := c.Sampler(); err != nil {
		errs = append(errs, err)
	}
	if c.Renderer.MaxTextureSize < 0 {
		errs = append(errs, fmt.Errorf("max_texture_size %d is negative", c.Renderer.MaxTextureSize))
	}
	if len(c.Assets.Dirs) == 0 {
		errs = append(errs, errors.New("assets.dirs is empty"))
	}
	if _, err := utils.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Levels parses Renderer.Levels, falling back to gfx.DefaultLevels.
func (c Config) Levels() ([]gfx.Level, error) {
	if len(c.Renderer.Levels) == 0 {
		return gfx.DefaultLevels(), nil
	}
	levels := make([]gfx.Level, 0, len(c.Renderer.Levels))
	for _, s := range c.Renderer.Levels {
		l, err := gfx.ParseLevel(s)
		if err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	return levels, nil
}

// Sampler parses Renderer.Sampler; empty means linear-clamp.
func (c Config) Sampler() (gfx.SamplerState, error) {
	if c.Renderer.Sampler == "" {
		return gfx.SamplerLinearClamp, nil
	}
	s, ok := gfx.ParseSamplerState(c.Renderer.Sampler)
	if !ok {
		return 0, fmt.Errorf("unknown sampler %q", c.Renderer.Sampler)
	}
	return s, nil
}

// ScreenSize returns the configured window size. A zero dimension is taken
// from the X11 screen, or DefaultWidth x DefaultHeight when there is none.
func (c Config) ScreenSize(probe func() (int, int, error)) (int, int) {
	w, h := c.Window.Width, c.Window.Height
	if w > 0 && h > 0 {
		return w, h
	}
	if probe != nil {
		sw, sh, err := probe()
		if err == nil && sw > 0 && sh > 0 {
			if w == 0 {
				w = sw
			}
			if h == 0 {
				h = sh
			}
			return w, h
		}
		utils.Warn("Config: screen size probe failed: %v", err)
	}
	if w == 0 {
		w = DefaultWidth
	}
	if h == 0 {
		h = DefaultHeight
	}
	return w, h
}
