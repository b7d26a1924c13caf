package render

import (
	"fmt"

	"stg-renderer/internal/gfx"
)

// DrawState is the full state a batch is drawn with. Texture is compared by
// handle identity.
type DrawState struct {
	VertexColor gfx.VertexColorBlend
	Fog         gfx.Fog
	Depth       gfx.DepthState
	Blend       gfx.BlendState
	Texture     gfx.Texture
	Sampler     gfx.SamplerState
}

// DefaultDrawState is the state a batch scope opens with unless
// Options.Defaults says otherwise.
func DefaultDrawState() DrawState {
	return DrawState{
		VertexColor: gfx.VertexColorMul,
		Fog:         gfx.Fog{Mode: gfx.FogDisable},
		Depth:       gfx.DepthDisable,
		Blend:       gfx.BlendDisable,
		Sampler:     gfx.SamplerLinearClamp,
	}
}

// Pipeline returns the non-resource part of the state.
func (s DrawState) Pipeline() gfx.PipelineState {
	return gfx.PipelineState{
		VertexColor: s.VertexColor,
		Fog:         s.Fog,
		Depth:       s.Depth,
		Blend:       s.Blend,
	}
}

func (s DrawState) Equal(o DrawState) bool {
	return s.VertexColor == o.VertexColor &&
		s.Fog == o.Fog &&
		s.Depth == o.Depth &&
		s.Blend == o.Blend &&
		s.Texture == o.Texture &&
		s.Sampler == o.Sampler
}

// Changed lists the axes on which s and o differ, for logging.
func (s DrawState) Changed(o DrawState) []string {
	var axes []string
	if s.VertexColor != o.VertexColor {
		axes = append(axes, fmt.Sprintf("vertex-color %v->%v", s.VertexColor, o.VertexColor))
	}
	if s.Fog != o.Fog {
		axes = append(axes, fmt.Sprintf("fog %v->%v", s.Fog.Mode, o.Fog.Mode))
	}
	if s.Depth != o.Depth {
		axes = append(axes, fmt.Sprintf("depth %v->%v", s.Depth, o.Depth))
	}
	if s.Blend != o.Blend {
		axes = append(axes, fmt.Sprintf("blend %v->%v", s.Blend, o.Blend))
	}
	if s.Texture != o.Texture {
		axes = append(axes, "texture")
	}
	if s.Sampler != o.Sampler {
		axes = append(axes, fmt.Sprintf("sampler %v->%v", s.Sampler, o.Sampler))
	}
	return axes
}

func (s DrawState) validate() error {
	switch {
	case !s.VertexColor.Valid():
		return fmt.Errorf("%w: vertex color blend %v", ErrInvalidArgument, s.VertexColor)
	case !s.Fog.Mode.Valid():
		return fmt.Errorf("%w: fog mode %v", ErrInvalidArgument, s.Fog.Mode)
	case !s.Depth.Valid():
		return fmt.Errorf("%w: depth state %v", ErrInvalidArgument, s.Depth)
	case !s.Blend.Valid():
		return fmt.Errorf("%w: blend state %v", ErrInvalidArgument, s.Blend)
	case !s.Sampler.Valid():
		return fmt.Errorf("%w: sampler state %v", ErrInvalidArgument, s.Sampler)
	case s.Texture != nil && !s.Texture.Valid():
		return fmt.Errorf("%w: texture handle is no longer valid", ErrUnknownResource)
	}
	return nil
}

// StateTracker pairs the pending state with the state last submitted.
type StateTracker struct {
	Pending   DrawState
	submitted DrawState
}

// Reset sets both pending and submitted to s.
func (t *StateTracker) Reset(s DrawState) {
	t.Pending = s
	t.submitted = s
}

// Matches reports whether candidate equals the submitted state on every axis.
func (t *StateTracker) Matches(candidate DrawState) bool {
	return t.submitted.Equal(candidate)
}

// Commit records candidate as the submitted state.
func (t *StateTracker) Commit(candidate DrawState) {
	t.submitted = candidate
}

func (t *StateTracker) Submitted() DrawState { return t.submitted }
