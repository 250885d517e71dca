package world

import (
	"fmt"
	"math/rand"

	"antcolony/internal/geom"
	"antcolony/internal/pheromone"
)

// Zone is a fixed set of cells acting as a destination and a saturated trail source.
type Zone struct {
	name  string
	cells []geom.Vec
	index map[geom.Vec]struct{}
}

func NewZone(name string, cells []geom.Vec) Zone {
	z := Zone{name: name, index: make(map[geom.Vec]struct{}, len(cells))}
	for _, c := range cells {
		if _, dup := z.index[c]; dup {
			continue
		}
		z.index[c] = struct{}{}
		z.cells = append(z.cells, c)
	}
	return z
}

// SquareZone builds a size x size block with its top-left corner at origin.
func SquareZone(name string, origin geom.Vec, size int) Zone {
	cells := make([]geom.Vec, 0, size*size)
	for dy := 0; dy < size; dy++ {
		for dx := 0; dx < size; dx++ {
			cells = append(cells, geom.Vec{X: origin.X + dx, Y: origin.Y + dy})
		}
	}
	return NewZone(name, cells)
}

func (z Zone) Name() string {
	return z.name
}

func (z Zone) Contains(cell geom.Vec) bool {
	_, ok := z.index[cell]
	return ok
}

func (z Zone) Len() int {
	return len(z.cells)
}

func (z Zone) Cells() []geom.Vec {
	return append([]geom.Vec(nil), z.cells...)
}

// RandomCell picks a zone cell uniformly.
func (z Zone) RandomCell(rng *rand.Rand) geom.Vec {
	return z.cells[rng.Intn(len(z.cells))]
}

// Layout describes the static geometry of a world.
type Layout struct {
	Bounds geom.Bounds `json:"bounds" yaml:"bounds"`
	Home   []geom.Vec  `json:"home" yaml:"home"`
	Target []geom.Vec  `json:"target" yaml:"target"`
}

func (l Layout) Validate() error {
	if l.Bounds.Cols <= 0 || l.Bounds.Rows <= 0 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", l.Bounds.Cols, l.Bounds.Rows)
	}
	if len(l.Home) == 0 {
		return fmt.Errorf("home zone is empty")
	}
	if len(l.Target) == 0 {
		return fmt.Errorf("target zone is empty")
	}
	for _, zone := range []struct {
		name  string
		cells []geom.Vec
	}{{"home", l.Home}, {"target", l.Target}} {
		if len(zone.cells) > l.Bounds.Area() {
			return fmt.Errorf("%s zone has %d cells, larger than the %dx%d grid", zone.name, len(zone.cells), l.Bounds.Cols, l.Bounds.Rows)
		}
		for _, c := range zone.cells {
			if !l.Bounds.Contains(c) {
				return fmt.Errorf("%s zone cell %s outside %dx%d grid", zone.name, c, l.Bounds.Cols, l.Bounds.Rows)
			}
		}
	}
	return nil
}

// World owns the grid, both zones and one pheromone field per trail.
type World struct {
	bounds geom.Bounds
	home   Zone
	target Zone
	fields map[pheromone.Trail]*pheromone.Field
}

func New(layout Layout, home, target pheromone.Params) (*World, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		bounds: layout.Bounds,
		home:   NewZone("home", layout.Home),
		target: NewZone("target", layout.Target),
		fields: make(map[pheromone.Trail]*pheromone.Field, 2),
	}
	homeField, err := pheromone.NewField(pheromone.Home, layout.Bounds, home, w.home)
	if err != nil {
		return nil, err
	}
	targetField, err := pheromone.NewField(pheromone.Target, layout.Bounds, target, w.target)
	if err != nil {
		return nil, err
	}
	w.fields[pheromone.Home] = homeField
	w.fields[pheromone.Target] = targetField
	return w, nil
}

func (w *World) Bounds() geom.Bounds {
	return w.bounds
}

func (w *World) InBounds(cell geom.Vec) bool {
	return w.bounds.Contains(cell)
}

func (w *World) Home() Zone {
	return w.home
}

func (w *World) Target() Zone {
	return w.target
}

// Zone returns the zone a trail leads to.
func (w *World) Zone(trail pheromone.Trail) Zone {
	if trail == pheromone.Target {
		return w.target
	}
	return w.home
}

func (w *World) Field(trail pheromone.Trail) *pheromone.Field {
	return w.fields[trail]
}

// Evolve applies one tick of decay followed by dispersion to every field.
func (w *World) Evolve() {
	for _, trail := range pheromone.Trails() {
		w.fields[trail].Decay()
	}
	for _, trail := range pheromone.Trails() {
		w.fields[trail].Disperse()
	}
}

// ResetFields zeroes every trail.
func (w *World) ResetFields() {
	for _, f := range w.fields {
		f.Reset()
	}
}

// Snapshots copies every field keyed by trail name.
func (w *World) Snapshots() map[string][]float64 {
	out := make(map[string][]float64, len(w.fields))
	for _, trail := range pheromone.Trails() {
		out[trail.String()] = w.fields[trail].Snapshot()
	}
	return out
}
