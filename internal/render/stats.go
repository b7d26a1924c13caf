package render

import "fmt"

// Stats counts the work the renderer handed to the device.
type Stats struct {
	Submissions    int
	Vertices       int
	Indices        int
	StateChanges   int
	TargetSwitches int
	Effects        int
	Models         int
}

func (s Stats) String() string {
	return fmt.Sprintf("draws=%d verts=%d tris=%d states=%d targets=%d effects=%d models=%d",
		s.Submissions, s.Vertices, s.Indices/3, s.StateChanges, s.TargetSwitches, s.Effects, s.Models)
}

func (r *Renderer) Stats() Stats { return r.stats }

func (r *Renderer) ResetStats() { r.stats = Stats{} }
