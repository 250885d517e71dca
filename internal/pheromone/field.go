package pheromone

import (
	"errors"
	"fmt"
	"math"

	"antcolony/internal/geom"
)

// Trail names one of the two chemical channels.
type Trail int

const (
	Home Trail = iota
	Target
)

func (t Trail) String() string {
	switch t {
	case Home:
		return "home"
	case Target:
		return "target"
	default:
		return fmt.Sprintf("trail(%d)", int(t))
	}
}

// Trails lists every trail in processing order.
func Trails() []Trail {
	return []Trail{Home, Target}
}

var (
	ErrNegativeAmount = errors.New("negative deposit amount")
	ErrOutOfBounds    = errors.New("cell out of bounds")
)

// SourceReading is what Read reports for cells inside the emitting zone.
const SourceReading = 1.0

// Source reports whether a cell permanently emits a trail at saturation.
type Source interface {
	Contains(cell geom.Vec) bool
}

type Params struct {
	Cap            float64 `json:"cap" yaml:"cap"`
	DecayRate      float64 `json:"decay_rate" yaml:"decay_rate"`
	DispersionRate float64 `json:"dispersion_rate" yaml:"dispersion_rate"`
}

func (p Params) Validate() error {
	if !(p.Cap > 0) || math.IsInf(p.Cap, 0) {
		return fmt.Errorf("cap must be a finite value > 0, got %v", p.Cap)
	}
	if math.IsNaN(p.DecayRate) || p.DecayRate < 0 || p.DecayRate > 1 {
		return fmt.Errorf("decay rate must be in [0,1], got %v", p.DecayRate)
	}
	if math.IsNaN(p.DispersionRate) || p.DispersionRate < 0 || p.DispersionRate > 1 {
		return fmt.Errorf("dispersion rate must be in [0,1], got %v", p.DispersionRate)
	}
	return nil
}

// Field is a bounded scalar grid for one trail. Every stored value stays in [0, Cap].
type Field struct {
	trail  Trail
	bounds geom.Bounds
	params Params
	source Source

	values  []float64
	scratch []float64
}

func NewField(trail Trail, bounds geom.Bounds, params Params, source Source) (*Field, error) {
	if bounds.Cols <= 0 || bounds.Rows <= 0 {
		return nil, fmt.Errorf("field %s: invalid bounds %dx%d", trail, bounds.Cols, bounds.Rows)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("field %s: %w", trail, err)
	}
	return &Field{
		trail:   trail,
		bounds:  bounds,
		params:  params,
		source:  source,
		values:  make([]float64, bounds.Area()),
		scratch: make([]float64, bounds.Area()),
	}, nil
}

func (f *Field) Trail() Trail {
	return f.trail
}

func (f *Field) Bounds() geom.Bounds {
	return f.bounds
}

func (f *Field) Cap() float64 {
	return f.params.Cap
}

func (f *Field) Params() Params {
	return f.params
}

// Deposit adds amount at cell, clamped to the cap.
func (f *Field) Deposit(cell geom.Vec, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeAmount, amount)
	}
	if !f.bounds.Contains(cell) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, cell)
	}
	idx := f.bounds.Index(cell)
	f.values[idx] = clamp(f.values[idx]+amount, 0, f.params.Cap)
	return nil
}

// Read returns the trail strength sensed at cell. Source cells always read as saturated;
// off-grid cells read as zero.
func (f *Field) Read(cell geom.Vec) float64 {
	if f.source != nil && f.source.Contains(cell) {
		return SourceReading
	}
	return f.Value(cell)
}

// Value returns the stored amount, ignoring the source zone.
func (f *Field) Value(cell geom.Vec) float64 {
	if !f.bounds.Contains(cell) {
		return 0
	}
	return f.values[f.bounds.Index(cell)]
}

// Decay removes DecayRate of every cell's amount.
func (f *Field) Decay() {
	keep := 1 - f.params.DecayRate
	if keep == 1 {
		return
	}
	for i, v := range f.values {
		f.values[i] = clamp(v*keep, 0, f.params.Cap)
	}
}

// Disperse spreads DispersionRate of every cell evenly over its eight neighbours. The share
// aimed at an off-grid neighbour stays in the emitting cell, so total mass is conserved.
func (f *Field) Disperse() {
	rate := f.params.DispersionRate
	if rate == 0 {
		return
	}
	share := rate / 8
	for i := range f.scratch {
		f.scratch[i] = 0
	}
	for i, v := range f.values {
		if v == 0 {
			continue
		}
		cell := f.bounds.At(i)
		retained := v * (1 - rate)
		for _, d := range geom.Compass() {
			n := cell.Add(d.Vec())
			if !f.bounds.Contains(n) {
				retained += v * share
				continue
			}
			f.scratch[f.bounds.Index(n)] += v * share
		}
		f.scratch[i] += retained
	}
	for i, v := range f.scratch {
		f.values[i] = clamp(v, 0, f.params.Cap)
	}
}

// Reset zeroes the whole field.
func (f *Field) Reset() {
	for i := range f.values {
		f.values[i] = 0
	}
}

func (f *Field) Sum() float64 {
	total := 0.0
	for _, v := range f.values {
		total += v
	}
	return total
}

func (f *Field) Max() float64 {
	best := 0.0
	for _, v := range f.values {
		if v > best {
			best = v
		}
	}
	return best
}

// Snapshot copies the stored values in row-major order.
func (f *Field) Snapshot() []float64 {
	return append([]float64(nil), f.values...)
}

// Load replaces the stored values, clamping each to the cap.
func (f *Field) Load(values []float64) error {
	if len(values) != len(f.values) {
		return fmt.Errorf("field %s: expected %d values, got %d", f.trail, len(f.values), len(values))
	}
	for i, v := range values {
		f.values[i] = clamp(v, 0, f.params.Cap)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
