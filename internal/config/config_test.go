package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stg-renderer/internal/gfx"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	levels, err := cfg.Levels()
	require.NoError(t, err)
	assert.Equal(t, gfx.DefaultLevels(), levels)

	s, err := cfg.Sampler()
	require.NoError(t, err)
	assert.Equal(t, gfx.SamplerLinearClamp, s)
}

func TestLoadKeepsDefaults(t *testing.T) {
	p := writeConfig(t, `
window:
  title: demo
  width: 800
renderer:
  levels: [gl3.3, gles2]
  max_vertices: 4096
  sampler: point-wrap
script: frames.yaml
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, DefaultHeight, cfg.Window.Height)
	assert.Equal(t, DefaultFPS, cfg.Window.FPS)
	assert.Equal(t, []string{"assets"}, cfg.Assets.Dirs)
	assert.Equal(t, "frames.yaml", cfg.Script)
	assert.Equal(t, 4096, cfg.Renderer.MaxVertices)

	levels, err := cfg.Levels()
	require.NoError(t, err)
	assert.Equal(t, []gfx.Level{gfx.LevelGL33, gfx.LevelGLES2}, levels)

	s, err := cfg.Sampler()
	require.NoError(t, err)
	assert.Equal(t, gfx.SamplerPointWrap, s)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "window: [1, 2"))
	assert.ErrorContains(t, err, "parse config")

	_, err = Load(writeConfig(t, `
renderer:
  levels: [vulkan]
  max_vertices: 100000
  sampler: trilinear
logging:
  level: loud
`))
	require.Error(t, err)
	for _, want := range []string{"vulkan", "max_vertices", "trilinear", "loud"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestValidateQuadLimit(t *testing.T) {
	cfg := Default()
	cfg.Renderer.MaxVertices = 3
	assert.ErrorContains(t, cfg.Validate(), "cannot hold a quad")

	cfg = Default()
	cfg.Assets.Dirs = nil
	assert.ErrorContains(t, cfg.Validate(), "assets.dirs")
}

func TestScreenSize(t *testing.T) {
	cfg := Default()
	w, h := cfg.ScreenSize(func() (int, int, error) { return 1920, 1080, nil })
	assert.Equal(t, DefaultWidth, w)
	assert.Equal(t, DefaultHeight, h)

	cfg.Window.Width, cfg.Window.Height = 0, 600
	w, h = cfg.ScreenSize(func() (int, int, error) { return 1920, 1080, nil })
	assert.Equal(t, 1920, w)
	assert.Equal(t, 600, h)

	cfg.Window.Width, cfg.Window.Height = 0, 0
	w, h = cfg.ScreenSize(func() (int, int, error) { return 0, 0, errors.New("no display") })
	assert.Equal(t, DefaultWidth, w)
	assert.Equal(t, DefaultHeight, h)

	w, h = cfg.ScreenSize(nil)
	assert.Equal(t, DefaultWidth, w)
	assert.Equal(t, DefaultHeight, h)
}
