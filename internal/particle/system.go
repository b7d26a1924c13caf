package particle

import (
	"math/rand/v2"

	"github.com/chewxy/math32"

	"stg-renderer/internal/render"
)

// ControlPoints is the number of control points a system tracks.
const ControlPoints = 8

const defaultMaxCount = 100

type Particle struct {
	Position     Vec3
	Velocity     Vec3
	Color        Vec3 // 0..1 per channel
	Life         float32
	MaxLife      float32
	Alpha        float32
	InitialAlpha float32
	Rotation     float32
	AngularVel   float32
	Size         float32
	InitialSize  float32
	SpawnTime    float32
	Phase        float32
}

// Age is the elapsed fraction of the particle's lifetime.
func (p *Particle) Age() float32 {
	if p.MaxLife <= 0 {
		return 1
	}
	return (p.MaxLife - p.Life) / p.MaxLife
}

// System is a live emitter. It is not safe for concurrent use.
type System struct {
	Config    Config
	Sprite    *render.Sprite
	Particles []*Particle
	// ControlPoints are positions operators can attract particles to.
	ControlPoints [ControlPoints]Vec3
	// Origin is the offset of the last Draw.
	Origin Vec3

	timers []float32
	time   float32
	rng    *rand.Rand
}

// New creates a system drawing with sprite. Config.Seed makes the
// simulation reproducible.
func New(cfg Config, sprite *render.Sprite) *System {
	return &System{
		Config: cfg,
		Sprite: sprite,
		timers: make([]float32, len(cfg.Emitters)),
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
}

// Time is the simulated time in seconds.
func (s *System) Time() float32 { return s.time }

// Reset drops every particle and restarts the clock.
func (s *System) Reset() {
	s.Particles = s.Particles[:0]
	s.time = 0
	clear(s.timers)
}

func (s *System) maxCount() int {
	if s.Config.MaxCount <= 0 {
		return defaultMaxCount
	}
	return s.Config.MaxCount
}

func (s *System) between(lo, hi float32) float32 {
	return lo + s.rng.Float32()*(hi-lo)
}

// Update advances the simulation by dt seconds: spawns due particles,
// expires dead ones and applies the operators.
func (s *System) Update(dt float32) {
	if dt <= 0 {
		return
	}
	s.time += dt

	limit := s.maxCount()
	for i, e := range s.Config.Emitters {
		if e.Rate <= 0 {
			continue
		}
		s.timers[i] += dt
		interval := 1 / e.Rate
		for s.timers[i] >= interval {
			s.timers[i] -= interval
			if len(s.Particles) < limit {
				s.spawn(e)
			}
		}
	}

	live := s.Particles[:0]
	for _, p := range s.Particles {
		p.Life -= dt
		if p.Life <= 0 {
			continue
		}
		s.applyOperators(p, dt)
		p.Position.X += p.Velocity.X * dt
		p.Position.Y += p.Velocity.Y * dt
		p.Position.Z += p.Velocity.Z * dt
		p.Rotation += p.AngularVel * dt
		live = append(live, p)
	}
	clear(s.Particles[len(live):])
	s.Particles = live
}

func (s *System) spawn(e Emitter) {
	p := &Particle{
		Position:     e.Origin,
		Color:        Vec3{X: 1, Y: 1, Z: 1},
		Life:         1,
		MaxLife:      1,
		Alpha:        1,
		InitialAlpha: 1,
		Size:         1,
		InitialSize:  1,
		SpawnTime:    s.time,
		Phase:        s.rng.Float32() * 2 * math32.Pi,
	}

	switch e.Kind {
	case "box":
		p.Position.X += s.spread(e.DistanceMin.X, e.DistanceMax.X)
		p.Position.Y += s.spread(e.DistanceMin.Y, e.DistanceMax.Y)
		p.Position.Z += s.spread(e.DistanceMin.Z, e.DistanceMax.Z)
	case "sphere":
		lo, hi := e.DistanceMin.X, e.DistanceMax.X
		if hi == 0 {
			hi = max(lo, 1)
		}
		angle := s.rng.Float32() * 2 * math32.Pi
		elevation := s.rng.Float32()*math32.Pi - math32.Pi/2
		radius := s.between(lo, hi)
		p.Position.X += math32.Cos(elevation) * math32.Cos(angle) * radius
		p.Position.Y += math32.Cos(elevation) * math32.Sin(angle) * radius
		p.Position.Z += math32.Sin(elevation) * radius
	}

	for _, init := range s.Config.Initializers {
		s.applyInitializer(p, init)
	}
	s.Particles = append(s.Particles, p)
}

// spread picks a signed offset whose magnitude lies in lo..hi.
func (s *System) spread(lo, hi float32) float32 {
	d := s.between(lo, hi)
	if s.rng.IntN(2) == 0 {
		return -d
	}
	return d
}

func (s *System) applyInitializer(p *Particle, init Initializer) {
	lo, hi := init.Min, init.Max
	switch init.Kind {
	case "lifetime":
		p.MaxLife = max(s.between(lo.X, hi.X), 1e-3)
		p.Life = p.MaxLife
	case "size":
		t := s.rng.Float32()
		if init.Exponent != 0 {
			t = math32.Pow(t, init.Exponent)
		}
		p.Size = lo.X + t*(hi.X-lo.X)
		p.InitialSize = p.Size
	case "velocity":
		p.Velocity = Vec3{X: s.between(lo.X, hi.X), Y: s.between(lo.Y, hi.Y), Z: s.between(lo.Z, hi.Z)}
	case "rotation":
		if lo.X == 0 && hi.X == 0 {
			p.Rotation = s.rng.Float32() * 2 * math32.Pi
		} else {
			p.Rotation = s.between(lo.X, hi.X)
		}
	case "angularvelocity":
		p.AngularVel = s.between(lo.X, hi.X)
	case "color":
		// channels are given in 0..255
		p.Color = Vec3{X: s.between(lo.X, hi.X) / 255, Y: s.between(lo.Y, hi.Y) / 255, Z: s.between(lo.Z, hi.Z) / 255}
	case "alpha":
		p.Alpha = s.between(lo.X, hi.X)
		p.InitialAlpha = p.Alpha
	}
}
