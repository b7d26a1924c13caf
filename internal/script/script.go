// Package script replays YAML frame scripts against command.Commands.
//
// A script is a list of frames. Each frame holds calls by name with their
// arguments and runs Repeat times; numeric arguments may advance by a
// per-tick step:
//
//	loop: true
//	frames:
//	  - repeat: 120
//	    calls:
//	      - call: BeginScene
//	      - call: Clear
//	        args: {color: 0xFF000000}
//	      - call: DrawSprite
//	        args: {name: ball, x: 320, y: 240}
//	        step: {rot: 3}
//	      - call: EndScene
package script

import (
	"bytes"
	"fmt"
	"maps"

	"gopkg.in/yaml.v3"

	"stg-renderer/internal/command"
	"stg-renderer/internal/utils"
)

type Script struct {
	Loop   bool    `yaml:"loop"`
	Frames []Frame `yaml:"frames"`
}

type Frame struct {
	// Repeat is how many ticks the frame runs; 0 means once.
	Repeat int    `yaml:"repeat"`
	Calls  []Call `yaml:"calls"`
}

// Call is one command invocation. Step adds step*n to the named numeric
// arguments on the frame's n-th repetition.
type Call struct {
	Name string             `yaml:"call"`
	Args map[string]any     `yaml:"args"`
	Step map[string]float64 `yaml:"step"`
}

func (f Frame) ticks() int { return max(f.Repeat, 1) }

// Len is the number of ticks one pass of the script takes.
func (s *Script) Len() int {
	n := 0
	for _, f := range s.Frames {
		n += f.ticks()
	}
	return n
}

// Parse decodes a script and checks every call name and argument set.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, f := range s.Frames {
		if f.Repeat < 0 {
			return nil, fmt.Errorf("frame %d: negative repeat %d", i, f.Repeat)
		}
		for j, c := range f.Calls {
			h, ok := handlers[c.Name]
			if !ok {
				return nil, fmt.Errorf("frame %d call %d: unknown command %q", i, j, c.Name)
			}
			args, err := c.args(0)
			if err == nil {
				err = h.check(args)
			}
			if err != nil {
				return nil, fmt.Errorf("frame %d call %d (%s): %w", i, j, c.Name, err)
			}
		}
	}
	return &s, nil
}

// Load resolves path against utils.AssetDirs and parses it.
func Load(path string) (*Script, error) {
	data, p, err := utils.ReadAsset(path, ".yaml", ".yml")
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	utils.Debug("Script: %s has %d frames, %d ticks", p, len(s.Frames), s.Len())
	return s, nil
}

// args returns the call's arguments for repetition n, encoded as YAML.
func (c Call) args(n int) ([]byte, error) {
	args := c.Args
	if len(c.Step) > 0 {
		args = maps.Clone(c.Args)
		if args == nil {
			args = map[string]any{}
		}
		for key, step := range c.Step {
			base, err := number(args[key])
			if err != nil {
				return nil, fmt.Errorf("step %s: %w", key, err)
			}
			args[key] = base + step*float64(n)
		}
	}
	if args == nil {
		return []byte("{}"), nil
	}
	return yaml.Marshal(args)
}

func number(v any) (float64, error) {
	switch v := v.(type) {
	case nil:
		return 0, nil
	case int:
		return float64(v), nil
	case float64:
		return v, nil
	}
	return 0, fmt.Errorf("%v is not a number", v)
}

// decode strictly decodes YAML arguments into a.
func decode(data []byte, a any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(a); err != nil {
		return fmt.Errorf("arguments: %w", err)
	}
	return nil
}

// Player steps through a script one tick at a time.
type Player struct {
	script *Script
	frame  int // index into script.Frames
	rep    int // repetition of the current frame
	tick   int
}

func NewPlayer(s *Script) *Player { return &Player{script: s} }

// Tick is the number of ticks run so far.
func (p *Player) Tick() int { return p.tick }

// Done reports whether a non-looping script has run every frame.
func (p *Player) Done() bool { return p.frame >= len(p.script.Frames) }

// Step runs the current frame's calls and advances. A failing call stops
// the rest of the frame; the player still advances.
func (p *Player) Step(c command.Commands) error {
	if p.Done() {
		return nil
	}
	f := p.script.Frames[p.frame]
	err := p.run(c, f)

	p.tick++
	p.rep++
	if p.rep >= f.ticks() {
		p.rep = 0
		p.frame++
		if p.frame == len(p.script.Frames) && p.script.Loop {
			p.frame = 0
		}
	}
	return err
}

func (p *Player) run(c command.Commands, f Frame) error {
	for i, call := range f.Calls {
		args, err := call.args(p.rep)
		if err == nil {
			err = handlers[call.Name].run(c, args, p.tick)
		}
		if err != nil {
			return fmt.Errorf("tick %d frame %d call %d (%s): %w", p.tick, p.frame, i, call.Name, err)
		}
	}
	return nil
}
