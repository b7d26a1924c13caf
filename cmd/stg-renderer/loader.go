package main

import (
	"errors"
	"image"
	"os"
	"runtime"

	"github.com/schollz/progressbar/v3"

	"stg-renderer/internal/config"
	"stg-renderer/internal/convert"
	"stg-renderer/internal/device/rldevice"
	"stg-renderer/internal/gfx"
	"stg-renderer/internal/resource"
	"stg-renderer/internal/utils"
)

// deviceFactory hands rldevice resources to the loader as gfx handles.
type deviceFactory struct {
	d *rldevice.Device
}

var _ resource.Factory = deviceFactory{}

func (f deviceFactory) LoadTexture(name string, img image.Image) (gfx.Texture, error) {
	t, err := f.d.LoadTexture(name, img)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (f deviceFactory) LoadRenderTarget(name string, width, height int) (gfx.RenderTarget, error) {
	rt, err := f.d.LoadRenderTarget(name, width, height)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (f deviceFactory) LoadEffect(name, fragment string, params []gfx.ParameterDesc) (gfx.Effect, error) {
	fx, err := f.d.LoadEffect(name, fragment, params)
	if err != nil {
		return nil, err
	}
	return fx, nil
}

func (f deviceFactory) LoadModel(name, path string) (gfx.Mesh, error) {
	m, err := f.d.LoadModel(name, path)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (f deviceFactory) MaxTextureSize() int { return f.d.Capabilities().MaxTextureSize }

func newBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// loadResources loads the manifest's resources. A missing manifest yields
// an empty registry; entries that fail to load are logged and skipped.
func loadResources(cfg config.Config, dev *rldevice.Device, width, height int) (*resource.Registry, error) {
	m, err := resource.ReadManifest(cfg.Assets.Manifest)
	if errors.Is(err, utils.ErrAssetNotFound) {
		utils.Warn("No manifest %s, starting without resources", cfg.Assets.Manifest)
		return resource.NewRegistry(), nil
	}
	if err != nil {
		return nil, err
	}

	bar := newBar(m.Len(), "Loading resources")
	reg, err := resource.Load(m, deviceFactory{dev}, resource.Options{
		ScreenWidth:    width,
		ScreenHeight:   height,
		MaxTextureSize: cfg.Renderer.MaxTextureSize,
		Progress: func(kind, name string) {
			bar.Describe(kind + " " + name)
			bar.Add(1)
		},
	})
	bar.Finish()
	if err != nil {
		utils.Warn("Some resources failed to load, continuing without them")
	}
	return reg, nil
}

// runConvert writes a PNG for every texture container under dir.
func runConvert(dir, outDir string) error {
	utils.Info("Converting textures under %s to %s...", dir, outDir)
	bar := newBar(-1, "Converting")
	n, err := convert.ConvertDir(dir, outDir, runtime.NumCPU(), func() { bar.Add(1) })
	bar.Finish()
	utils.Info("Converted %d textures", n)
	return err
}
