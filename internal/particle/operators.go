package particle

import "github.com/chewxy/math32"

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// defaultFade ramps alpha in over the first tenth of the lifetime and out
// over the last fifth.
func defaultFade(age float32) float32 {
	f := float32(1)
	if age < 0.1 {
		f = age / 0.1
	}
	if age > 0.8 {
		f = min(f, (1-age)/0.2)
	}
	return f
}

func (s *System) applyOperators(p *Particle, dt float32) {
	age := p.Age()
	fade := float32(-1)
	oscillate := float32(1)

	for _, op := range s.Config.Operators {
		switch op.Kind {
		case "movement":
			p.Velocity.X += op.Gravity.X * dt
			p.Velocity.Y += op.Gravity.Y * dt
			p.Velocity.Z += op.Gravity.Z * dt
			if op.Drag > 0 {
				k := max(1-op.Drag*dt, 0)
				p.Velocity.X *= k
				p.Velocity.Y *= k
				p.Velocity.Z *= k
			}

		case "alphafade":
			f := float32(1)
			if op.FadeIn > 0 && age < op.FadeIn {
				f = age / op.FadeIn
			}
			if op.FadeOut > 0 && age > 1-op.FadeOut {
				f = min(f, (1-age)/op.FadeOut)
			}
			fade = f

		case "turbulence":
			if op.SpeedMax <= 0 {
				continue
			}
			timeScale := op.TimeScale
			if timeScale == 0 {
				timeScale = 1
			}
			scale := op.ScaleMax
			if scale == 0 {
				scale = 1
			}
			t := s.time * timeScale
			nx := math32.Sin(t*0.7+p.Position.X*scale) * math32.Cos(t*0.3)
			ny := math32.Cos(t*0.5+p.Position.Y*scale) * math32.Sin(t*0.8)
			speed := s.between(op.SpeedMin, op.SpeedMax)
			p.Velocity.X += nx * speed * dt
			p.Velocity.Y += ny * speed * dt

		case "controlpointattract":
			cp := s.ControlPoints[op.ControlPoint]
			dx, dy := cp.X-p.Position.X, cp.Y-p.Position.Y
			d2 := dx*dx + dy*dy
			threshold := op.Threshold
			if threshold <= 0 {
				threshold = 100
			}
			if d2 > 1 && d2 < threshold*threshold {
				d := math32.Sqrt(d2)
				strength := op.Strength / d2
				p.Velocity.X += dx / d * strength * dt
				p.Velocity.Y += dy / d * strength * dt
			}

		case "colorchange":
			if op.EndTime > op.StartTime && age >= op.StartTime && age <= op.EndTime {
				t := (age - op.StartTime) / (op.EndTime - op.StartTime)
				p.Color = Vec3{
					X: lerp(op.StartValue.X, op.EndValue.X, t),
					Y: lerp(op.StartValue.Y, op.EndValue.Y, t),
					Z: lerp(op.StartValue.Z, op.EndValue.Z, t),
				}
			}

		case "sizechange":
			from, to := op.StartValue.X, op.EndValue.X
			if from == 0 {
				from = 1
			}
			if to == 0 {
				to = 1
			}
			p.Size = p.InitialSize * lerp(from, to, age)

		case "oscillateposition":
			freq := s.frequency(op, p.Phase)
			t := s.time - p.SpawnTime
			phase := t*freq*2*math32.Pi + p.Phase
			p.Position.X += math32.Sin(phase) * op.ScaleMax * dt
			p.Position.Y += math32.Cos(phase+1) * op.ScaleMax * dt

		case "oscillatealpha":
			freq := s.frequency(op, p.SpawnTime)
			hi := op.ScaleMax
			if hi == 0 {
				hi = 1
			}
			t := s.time - p.SpawnTime
			wave := (math32.Sin(t*freq*2*math32.Pi) + 1) / 2
			oscillate = lerp(op.ScaleMin, hi, wave)
		}
	}

	if fade < 0 {
		fade = defaultFade(age)
	}
	p.Alpha = p.InitialAlpha * fade * oscillate
}

// frequency picks a per-particle frequency in the operator's range, seeded
// by seed so it stays stable over the particle's life.
func (s *System) frequency(op Operator, seed float32) float32 {
	f := op.FrequencyMax
	if op.FrequencyMin > 0 && op.FrequencyMax > op.FrequencyMin {
		f = lerp(op.FrequencyMin, op.FrequencyMax, math32.Abs(math32.Sin(seed)))
	}
	if f == 0 {
		f = 1
	}
	return f
}
