package utils

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestResolveAsset(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	old := AssetDirs
	AssetDirs = []string{first, second}
	t.Cleanup(func() { AssetDirs = old })

	writeFile(t, filepath.Join(first, "shaders", "blur.fs"), "a")
	writeFile(t, filepath.Join(second, "shaders", "blur.fs"), "b")
	writeFile(t, filepath.Join(second, "images", "deep", "ball.png"), "png")
	writeFile(t, filepath.Join(second, "images", "deep", "ball.txt"), "txt")

	p, err := ResolveAsset("shaders/blur.fs")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(first, "shaders", "blur.fs"), p)

	p, err = ResolveAsset("shaders/blur", ".frag", ".fs")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(first, "shaders", "blur.fs"), p)

	// deep search only accepts the allowed extensions
	p, err = ResolveAsset("ball", ".png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(second, "images", "deep", "ball.png"), p)

	p, err = ResolveAsset(filepath.Join(second, "images", "deep", "ball.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(second, "images", "deep", "ball.txt"), p)

	_, err = ResolveAsset("ball", ".jpg")
	assert.ErrorIs(t, err, ErrAssetNotFound)
	_, err = ResolveAsset("")
	assert.ErrorIs(t, err, ErrAssetNotFound)
	_, err = ResolveAsset(filepath.Join(first, "missing.png"))
	assert.ErrorIs(t, err, ErrAssetNotFound)

	data, p, err := ReadAsset("shaders/blur.fs")
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
	assert.Equal(t, filepath.Join(first, "shaders", "blur.fs"), p)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{
		"debug": LevelDebug, "INFO": LevelInfo, " warning ": LevelWarn, "": LevelWarn, "error": LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestSetDebugLowersLevel(t *testing.T) {
	oldMode, oldLevel := DebugMode, CurrentLevel
	t.Cleanup(func() { DebugMode, CurrentLevel = oldMode, oldLevel })

	CurrentLevel = LevelError
	SetDebug(false)
	assert.Equal(t, LevelError, CurrentLevel)
	SetDebug(true)
	assert.True(t, DebugMode)
	assert.Equal(t, LevelDebug, CurrentLevel)
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	oldLevel, oldInfo := CurrentLevel, ShowRaylibInfo
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags)
		CurrentLevel, ShowRaylibInfo = oldLevel, oldInfo
	})
	return &buf
}

func TestLogFiltersByLevel(t *testing.T) {
	buf := captureLog(t)
	CurrentLevel = LevelWarn

	Info("hidden %d", 1)
	Debug("hidden")
	assert.Empty(t, buf.String())

	Warn("shown %d", 2)
	Error("failed")
	out := buf.String()
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "[ERROR]")
	assert.Equal(t, "UNKNOWN", LogLevel(9).String())
}

func TestRaylibLogCallback(t *testing.T) {
	buf := captureLog(t)
	CurrentLevel = LevelWarn
	ShowRaylibInfo = false

	RaylibLogCallback(3, "INFO: GL ready")
	RaylibLogCallback(2, "DEBUG: ignored")
	RaylibLogCallback(0, "all")
	assert.Empty(t, buf.String())

	ShowRaylibInfo = true
	RaylibLogCallback(3, "GL 3.3 at 100%")
	RaylibLogCallback(4, "texture missing")
	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "[RAYLIB]")
	assert.Contains(t, out, "GL 3.3 at 100%")
	assert.Contains(t, out, "[WARN]")
	assert.NotContains(t, out, "ignored")
}
