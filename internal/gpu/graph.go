package gpu

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrReadBeforeWrite is returned when a pass reads a texture that was
	// neither imported nor written by an earlier pass.
	ErrReadBeforeWrite = errors.New("gpu: read before write")
	// ErrReadWriteHazard is returned when a pass reads and writes the same
	// texture without being declared unsafe.
	ErrReadWriteHazard = errors.New("gpu: read/write hazard")
	// ErrNilTexture is returned when a pass declares a nil texture.
	ErrNilTexture = errors.New("gpu: nil texture")
)

// PassFunc executes a pass.
type PassFunc func() error

type pass struct {
	name   string
	reads  []*Texture
	writes []*Texture
	exec   PassFunc
	unsafe bool
}

// Graph records passes with their declared read and write sets, validates
// the dependencies, and executes them in recording order.
type Graph struct {
	name     string
	imported []*Texture
	passes   []*pass
}

func NewGraph(name string) *Graph {
	return &Graph{name: name}
}

// Import declares textures whose contents exist before the first pass.
func (g *Graph) Import(textures ...*Texture) {
	g.imported = append(g.imported, textures...)
}

// AddPass records a pass that may not read and write the same texture.
func (g *Graph) AddPass(name string, reads, writes []*Texture, exec PassFunc) {
	g.passes = append(g.passes, &pass{name: name, reads: reads, writes: writes, exec: exec})
}

// AddUnsafePass records a pass allowed to read and write one texture, such
// as a copy that manages its own ordering.
func (g *Graph) AddUnsafePass(name string, reads, writes []*Texture, exec PassFunc) {
	g.passes = append(g.passes, &pass{name: name, reads: reads, writes: writes, exec: exec, unsafe: true})
}

// Passes returns the recorded pass names in execution order.
func (g *Graph) Passes() []string {
	names := make([]string, len(g.passes))
	for i, p := range g.passes {
		names[i] = p.name
	}
	return names
}

// Validate checks every declared dependency without running anything.
func (g *Graph) Validate() error {
	available := make(map[*Texture]bool, len(g.imported))
	for _, t := range g.imported {
		if t == nil {
			return fmt.Errorf("graph %s: import: %w", g.name, ErrNilTexture)
		}
		if t.released {
			return fmt.Errorf("graph %s: import %s: %w", g.name, t.name, ErrReleased)
		}
		available[t] = true
	}

	for _, p := range g.passes {
		for _, t := range p.reads {
			if t == nil {
				return fmt.Errorf("pass %q: read: %w", p.name, ErrNilTexture)
			}
			if t.released {
				return fmt.Errorf("pass %q: read %s: %w", p.name, t.name, ErrReleased)
			}
			if !available[t] {
				return fmt.Errorf("pass %q: read %s: %w", p.name, t.name, ErrReadBeforeWrite)
			}
			if !p.unsafe {
				for _, w := range p.writes {
					if w == t {
						return fmt.Errorf("pass %q: %s: %w", p.name, t.name, ErrReadWriteHazard)
					}
				}
			}
		}
		for _, t := range p.writes {
			if t == nil {
				return fmt.Errorf("pass %q: write: %w", p.name, ErrNilTexture)
			}
			if t.released {
				return fmt.Errorf("pass %q: write %s: %w", p.name, t.name, ErrReleased)
			}
			available[t] = true
		}
	}
	return nil
}

// Execute validates the graph and runs every pass in order. A pass does
// not start before the previous one returns.
func (g *Graph) Execute() error {
	if err := g.Validate(); err != nil {
		return err
	}
	log := slogger()
	for _, p := range g.passes {
		start := time.Now()
		if err := p.exec(); err != nil {
			return fmt.Errorf("pass %q: %w", p.name, err)
		}
		log.Debug("gpu: pass executed", "graph", g.name, "pass", p.name, "elapsed", time.Since(start))
	}
	return nil
}
