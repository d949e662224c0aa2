package resolve

import (
	"math"

	"casegen/internal/catalog"
)

// BaseActivation is the activation a model records for its components.
type BaseActivation interface {
	IsActive(name string) bool
}

// SinkState is the activation of one sink in one case. Addressed is false
// when the case sets no numeric flow for the sink; such a sink keeps its
// activation from the base model, which Activate alone takes as active.
type SinkState struct {
	Active    bool
	Addressed bool
	Flow      float64
}

type Activation struct {
	sinks  []string
	states map[string]SinkState
}

// Activate derives the activation of every catalog sink from the resolved
// flows. A sink is active when its flow magnitude exceeds threshold. The
// result depends only on its arguments.
func Activate(set *ResolvedBoundarySet, cat *catalog.Catalog, threshold float64) Activation {
	sinks := cat.OfType(catalog.Sink)
	a := Activation{
		sinks:  make([]string, 0, len(sinks)),
		states: make(map[string]SinkState, len(sinks)),
	}
	for _, sink := range sinks {
		state := SinkState{Active: true}
		if flow, ok := set.Flow(sink.Name); ok {
			state = SinkState{
				Active:    math.Abs(flow) > threshold,
				Addressed: true,
				Flow:      flow,
			}
		}
		a.sinks = append(a.sinks, sink.Name)
		a.states[sink.Name] = state
	}
	return a
}

// WithBase returns a copy in which every unaddressed sink carries the
// activation recorded in base.
func (a Activation) WithBase(base BaseActivation) Activation {
	out := Activation{
		sinks:  a.sinks,
		states: make(map[string]SinkState, len(a.states)),
	}
	for name, state := range a.states {
		if !state.Addressed && base != nil {
			state.Active = base.IsActive(name)
		}
		out.states[name] = state
	}
	return out
}

func (a Activation) State(sink string) (SinkState, bool) {
	s, ok := a.states[sink]
	return s, ok
}

func (a Activation) Sinks() []string {
	return append([]string(nil), a.sinks...)
}

// Inactive lists the sinks shut in by this case, in catalog order.
func (a Activation) Inactive() []string {
	var out []string
	for _, name := range a.sinks {
		if !a.states[name].Active {
			out = append(out, name)
		}
	}
	return out
}

func (a Activation) ActiveCount() int {
	n := 0
	for _, s := range a.states {
		if s.Active {
			n++
		}
	}
	return n
}
