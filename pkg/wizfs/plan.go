package wizfs

import (
	"fmt"

	"github.com/gammazero/toposort"

	"github.com/wizkit/wizfs/pkg/wizfs/history"
)

// Plan collects operations with declared dependencies and resolves an
// execution order via topological sort. Document scaffolding uses it so a
// folder's creation always precedes its files', whatever order the steps
// were added in.
type Plan struct {
	steps []planStep
	index map[string]int
}

type planStep struct {
	id   string
	deps []string
	op   history.Op
}

// NewPlan creates an empty plan.
func NewPlan() *Plan {
	return &Plan{index: make(map[string]int)}
}

// Add appends a step. deps name steps that must execute first.
func (p *Plan) Add(id string, op history.Op, deps ...string) error {
	if _, exists := p.index[id]; exists {
		return fmt.Errorf("duplicate plan step %q", id)
	}
	p.index[id] = len(p.steps)
	p.steps = append(p.steps, planStep{id: id, deps: deps, op: op})
	return nil
}

// Resolve returns the operations in dependency order. Steps with no edges
// keep their insertion order after the sorted ones. Unknown dependency
// references and cycles are errors.
func (p *Plan) Resolve() ([]history.Op, error) {
	for _, step := range p.steps {
		for _, dep := range step.deps {
			if _, ok := p.index[dep]; !ok {
				return nil, fmt.Errorf("step %q depends on unknown step %q", step.id, dep)
			}
		}
	}

	edges := make([]toposort.Edge, 0)
	for _, step := range p.steps {
		for _, dep := range step.deps {
			edges = append(edges, toposort.Edge{dep, step.id})
		}
	}
	sortedIDs, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("dependency cycle: %w", err)
	}

	seen := make(map[string]bool, len(sortedIDs))
	ops := make([]history.Op, 0, len(p.steps))
	for _, id := range sortedIDs {
		name, ok := id.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected id type %T", id)
		}
		seen[name] = true
		ops = append(ops, p.steps[p.index[name]].op)
	}
	for _, step := range p.steps {
		if !seen[step.id] {
			ops = append(ops, step.op)
		}
	}
	return ops, nil
}
