package resource

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"stg-renderer/internal/command"
	"stg-renderer/internal/convert"
	"stg-renderer/internal/gfx"
	"stg-renderer/internal/particle"
	"stg-renderer/internal/render"
	"stg-renderer/internal/utils"
)

// Factory creates device resources.
type Factory interface {
	LoadTexture(name string, img image.Image) (gfx.Texture, error)
	LoadRenderTarget(name string, width, height int) (gfx.RenderTarget, error)
	LoadEffect(name, fragment string, params []gfx.ParameterDesc) (gfx.Effect, error)
	LoadModel(name, path string) (gfx.Mesh, error)
	MaxTextureSize() int
}

// Options tune a Load call.
type Options struct {
	// ScreenWidth and ScreenHeight size render targets declared without one.
	ScreenWidth, ScreenHeight int
	// MaxTextureSize lowers the factory's limit when positive.
	MaxTextureSize int
	// Progress is called once per manifest entry.
	Progress func(kind, name string)
}

var imageExts = []string{".png", ".jpg", ".jpeg", ".bmp", ".webp", ".gif", ".tex"}

// DecodeImage decodes a texture container or any registered image format.
func DecodeImage(data []byte, path string) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".tex") {
		img, _, err := convert.DecodeTexture(bytes.NewReader(data))
		return img, err
	}
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}

// FitTexture downscales img to fit limit x limit, keeping the aspect ratio.
func FitTexture(img image.Image, limit int) image.Image {
	b := img.Bounds()
	if limit <= 0 || (b.Dx() <= limit && b.Dy() <= limit) {
		return img
	}
	utils.Warn("Texture: %dx%d exceeds %d, downscaling", b.Dx(), b.Dy(), limit)
	return imaging.Fit(img, limit, limit, imaging.Lanczos)
}

type loader struct {
	reg  *Registry
	f    Factory
	opts Options
	errs []error
}

func (l *loader) fail(err error) {
	utils.Error("Resource: %v", err)
	l.errs = append(l.errs, err)
}

func (l *loader) progress(kind, name string) {
	if l.opts.Progress != nil {
		l.opts.Progress(kind, name)
	}
}

// Load creates every resource of m through f. Paths resolve against
// utils.AssetDirs. A failing entry is logged and skipped; the registry
// holds everything that loaded and the error joins every failure.
func Load(m *Manifest, f Factory, opts Options) (*Registry, error) {
	l := &loader{reg: NewRegistry(), f: f, opts: opts}

	for _, t := range m.Textures {
		l.progress("texture", t.Name)
		if err := l.texture(t); err != nil {
			l.fail(fmt.Errorf("texture %s: %w", t.Name, err))
		}
	}
	for _, t := range m.Targets {
		l.progress("target", t.Name)
		if err := l.target(t); err != nil {
			l.fail(fmt.Errorf("render target %s: %w", t.Name, err))
		}
	}
	for _, e := range m.Effects {
		l.progress("effect", e.Name)
		if err := l.effect(e); err != nil {
			l.fail(fmt.Errorf("effect %s: %w", e.Name, err))
		}
	}
	for _, md := range m.Models {
		l.progress("model", md.Name)
		if err := l.model(md); err != nil {
			l.fail(fmt.Errorf("model %s: %w", md.Name, err))
		}
	}
	for _, s := range m.Sprites {
		l.progress("sprite", s.Name)
		sp, err := l.sprite(s, s.Rect[0], s.Rect[1])
		if err == nil {
			err = l.reg.AddSprite(sp)
		}
		if err != nil {
			l.fail(fmt.Errorf("sprite %s: %w", s.Name, err))
		}
	}
	for _, q := range m.Sequences {
		l.progress("sequence", q.Name)
		if err := l.sequence(q); err != nil {
			l.fail(fmt.Errorf("sequence %s: %w", q.Name, err))
		}
	}
	for _, p := range m.Particles {
		l.progress("particle", p.Name)
		if err := l.particles(p); err != nil {
			l.fail(fmt.Errorf("particle %s: %w", p.Name, err))
		}
	}

	utils.Info("Resource: loaded %v", l.reg)
	return l.reg, errors.Join(l.errs...)
}

func (l *loader) texture(t TextureSpec) error {
	data, path, err := utils.ReadAsset(t.Path, imageExts...)
	if err != nil {
		return err
	}
	img, err := DecodeImage(data, path)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	limit := l.f.MaxTextureSize()
	if l.opts.MaxTextureSize > 0 && (limit <= 0 || l.opts.MaxTextureSize < limit) {
		limit = l.opts.MaxTextureSize
	}
	tex, err := l.f.LoadTexture(t.Name, FitTexture(img, limit))
	if err != nil {
		return err
	}
	return l.reg.AddTexture(t.Name, tex)
}

func (l *loader) target(t TargetSpec) error {
	w, h := t.Width, t.Height
	if w == 0 {
		w = l.opts.ScreenWidth
	}
	if h == 0 {
		h = l.opts.ScreenHeight
	}
	rt, err := l.f.LoadRenderTarget(t.Name, w, h)
	if err != nil {
		return err
	}
	return l.reg.AddRenderTarget(t.Name, rt)
}

func (l *loader) effect(e EffectSpec) error {
	data, _, err := utils.ReadAsset(e.Path, ".fs", ".frag", ".glsl")
	if err != nil {
		return err
	}
	params := make([]gfx.ParameterDesc, len(e.Params))
	for i, p := range e.Params {
		kind, _ := gfx.ParseParameterKind(p.Kind)
		params[i] = gfx.ParameterDesc{Name: p.Name, Kind: kind}
	}
	fx, err := l.f.LoadEffect(e.Name, string(data), params)
	if err != nil {
		return err
	}
	return l.reg.AddEffect(e.Name, fx)
}

func (l *loader) model(md ModelSpec) error {
	path, err := utils.ResolveAsset(md.Path, ".obj", ".gltf", ".glb", ".iqm")
	if err != nil {
		return err
	}
	mesh, err := l.f.LoadModel(md.Name, path)
	if err != nil {
		return err
	}
	return l.reg.AddModel(render.Model{Name: md.Name, Mesh: mesh, Lighting: md.Lighting.lighting()})
}

// sprite builds the sprite s describes with its rect moved to (x, y).
func (l *loader) sprite(s SpriteSpec, x, y float32) (*render.Sprite, error) {
	tex, err := l.reg.Texture(s.Texture)
	if err != nil {
		return nil, err
	}
	w, h := s.Rect[2], s.Rect[3]
	sp := render.NewSprite(s.Name, tex, gfx.Rect{Left: x, Top: y, Right: x + w, Bottom: y + h})
	if s.Anchor != nil {
		sp.AnchorX, sp.AnchorY = s.Anchor[0], s.Anchor[1]
	}
	if s.Blend != "" {
		if sp.VertexColor, sp.Blend, err = command.ParseBlendMode(s.Blend); err != nil {
			return nil, err
		}
	}
	if s.Color != nil {
		sp.SetColor(*s.Color)
	}
	return sp, nil
}

func (l *loader) sequence(q SequenceSpec) error {
	columns := q.Columns
	if columns <= 0 {
		columns = q.Count
	}
	seq := &render.SpriteSequence{Name: q.Name, Interval: max(q.Interval, 1)}
	for i := 0; i < q.Count; i++ {
		x := q.Rect[0] + float32(i%columns)*q.Rect[2]
		y := q.Rect[1] + float32(i/columns)*q.Rect[3]
		frame, err := l.sprite(q.SpriteSpec, x, y)
		if err != nil {
			return err
		}
		frame.Name = fmt.Sprintf("%s#%d", q.Name, i)
		seq.Frames = append(seq.Frames, frame)
	}
	return l.reg.AddSpriteSequence(seq)
}

func (l *loader) particles(cfg particle.Config) error {
	sp, err := l.reg.Sprite(cfg.Sprite)
	if err != nil {
		return err
	}
	if cfg.Blend != "" {
		if _, _, err := command.ParseBlendMode(cfg.Blend); err != nil {
			return err
		}
	}
	return l.reg.AddParticles(particle.New(cfg, sp))
}
