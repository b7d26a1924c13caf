package main

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"stg-renderer/internal/command"
	"stg-renderer/internal/config"
	"stg-renderer/internal/debug"
	"stg-renderer/internal/device/rldevice"
	"stg-renderer/internal/gfx"
	"stg-renderer/internal/render"
	"stg-renderer/internal/resource"
	"stg-renderer/internal/script"
	"stg-renderer/internal/utils"
)

type Window struct {
	cfg      config.Config
	device   *rldevice.Device
	renderer *render.Renderer
	registry *resource.Registry
	binding  *command.Binding
	player   *script.Player
	overlay  *debug.DebugOverlay
	width    int
	height   int
}

func NewWindow(cfg config.Config, scr *script.Script) (*Window, error) {
	width, height := cfg.ScreenSize(utils.ScreenSize)
	levels, err := cfg.Levels()
	if err != nil {
		return nil, err
	}
	sampler, err := cfg.Sampler()
	if err != nil {
		return nil, err
	}

	var flags uint32
	if cfg.Window.VSync {
		flags |= rl.FlagVsyncHint
	}
	if cfg.Window.Resizable {
		flags |= rl.FlagWindowResizable
	}
	if cfg.Window.Fullscreen {
		flags |= rl.FlagFullscreenMode
	}
	rl.SetConfigFlags(flags)
	rl.InitWindow(int32(width), int32(height), cfg.Window.Title)
	rl.SetTargetFPS(int32(cfg.Window.FPS))

	dev, err := rldevice.New(rldevice.Options{Levels: levels, MaxTextureSize: cfg.Renderer.MaxTextureSize})
	if err != nil {
		rl.CloseWindow()
		return nil, fmt.Errorf("create device: %w", err)
	}

	defaults := render.DefaultDrawState()
	defaults.Sampler = sampler
	r, err := render.New(dev, render.Options{
		BaseViewport: gfx.NewBox(float32(width), float32(height)),
		BaseScissor:  gfx.NewRect(float32(width), float32(height)),
		MaxVertices:  cfg.Renderer.MaxVertices,
		Defaults:     &defaults,
	})
	if err != nil {
		dev.Close()
		rl.CloseWindow()
		return nil, err
	}

	reg, err := loadResources(cfg, dev, width, height)
	if err != nil {
		dev.Close()
		rl.CloseWindow()
		return nil, err
	}

	window := &Window{
		cfg:      cfg,
		device:   dev,
		renderer: r,
		registry: reg,
		binding:  command.NewBinding(r, reg),
		overlay:  debug.NewDebugOverlay(),
		width:    width,
		height:   height,
	}
	if scr != nil {
		window.player = script.NewPlayer(scr)
	}
	utils.Info("Window %dx%d, %d vertices per batch", width, height, r.BatchLimit())
	return window, nil
}

// Run drives the frame loop until the window closes, or for frames frames
// when frames is positive.
func (window *Window) Run(frames int) {
	for n := 0; !rl.WindowShouldClose(); n++ {
		if frames > 0 && n >= frames {
			break
		}
		window.Update()

		rl.BeginDrawing()
		window.Draw()
		rl.EndDrawing()
	}
}

func (window *Window) Update() {
	if rl.IsWindowResized() {
		w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
		if w != window.width || h != window.height {
			window.width, window.height = w, h
			err := window.renderer.ResizeBase(gfx.NewBox(float32(w), float32(h)), gfx.NewRect(float32(w), float32(h)))
			if err != nil {
				utils.Error("Resize: %v", err)
			}
			utils.Debug("Window resized to %dx%d", w, h)
		}
	}
	window.registry.Update(rl.GetFrameTime())
	window.overlay.Update()
}

func (window *Window) Draw() {
	if err := window.renderer.ClearRenderTarget(window.cfg.Renderer.ClearColor); err != nil {
		utils.Error("Clear: %v", err)
	}

	if window.player != nil && !window.player.Done() {
		if err := window.player.Step(window.binding); err != nil {
			utils.Error("Script: %v", err)
		}
	}
	// A failing script can leave a scope or targets open; close them so
	// the next frame starts clean.
	if window.renderer.InScope() {
		if err := window.renderer.End(); err != nil {
			utils.Error("Render: %v", err)
		}
	}
	for window.renderer.TargetDepth() > 0 {
		if err := window.renderer.PopRenderTarget(); err != nil {
			utils.Error("Render: %v", err)
			break
		}
	}

	stats := window.renderer.Stats()
	if utils.DebugMode {
		utils.Debug("Frame: %v", stats)
	}
	frame := debug.Frame{FPS: rl.GetFPS(), Stats: stats, BatchSize: window.renderer.BatchLimit(), Resources: window.registry.String()}
	if window.player != nil {
		frame.Tick = window.player.Tick()
	}
	window.overlay.Draw(frame, window.registry.ParticleSystems())
	window.renderer.ResetStats()
}

func (window *Window) Close() {
	window.registry.Release()
	window.device.Close()
	rl.CloseWindow()
}
