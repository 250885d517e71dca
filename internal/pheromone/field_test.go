package pheromone

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"antcolony/internal/geom"
)

type cellSet map[geom.Vec]bool

func (s cellSet) Contains(cell geom.Vec) bool { return s[cell] }

func newTestField(t *testing.T, bounds geom.Bounds, params Params, source Source) *Field {
	t.Helper()
	f, err := NewField(Home, bounds, params, source)
	if err != nil {
		t.Fatalf("new field: %v", err)
	}
	return f
}

func TestDepositClampsToCap(t *testing.T) {
	f := newTestField(t, geom.Bounds{Cols: 3, Rows: 3}, Params{Cap: 1}, nil)
	cell := geom.Vec{X: 1, Y: 1}
	for i := 0; i < 30; i++ {
		if err := f.Deposit(cell, 0.05); err != nil {
			t.Fatalf("deposit: %v", err)
		}
	}
	if got := f.Value(cell); got != 1 {
		t.Fatalf("expected clamp to cap 1, got %v", got)
	}
	if err := f.Deposit(cell, -0.1); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	if err := f.Deposit(geom.Vec{X: 3, Y: 0}, 0.1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestReadReportsSourceAsSaturated(t *testing.T) {
	home := geom.Vec{X: 0, Y: 0}
	f := newTestField(t, geom.Bounds{Cols: 4, Rows: 4}, Params{Cap: 2}, cellSet{home: true})
	if got := f.Read(home); got != SourceReading {
		t.Fatalf("expected source reading %v, got %v", SourceReading, got)
	}
	if got := f.Value(home); got != 0 {
		t.Fatalf("expected stored value untouched, got %v", got)
	}
	if err := f.Deposit(geom.Vec{X: 2, Y: 2}, 0.5); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if got := f.Read(geom.Vec{X: 2, Y: 2}); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
	if got := f.Read(geom.Vec{X: -1, Y: 2}); got != 0 {
		t.Fatalf("expected off-grid read 0, got %v", got)
	}
}

func TestDecayIsProportional(t *testing.T) {
	f := newTestField(t, geom.Bounds{Cols: 2, Rows: 1}, Params{Cap: 1, DecayRate: 0.25}, nil)
	_ = f.Deposit(geom.Vec{X: 0, Y: 0}, 0.8)
	f.Decay()
	if got := f.Value(geom.Vec{X: 0, Y: 0}); math.Abs(got-0.6) > 1e-12 {
		t.Fatalf("expected 0.6, got %v", got)
	}
}

func TestZeroRatesLeaveFieldUnchanged(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	bounds := geom.Bounds{Cols: 7, Rows: 5}
	f := newTestField(t, bounds, Params{Cap: 1}, nil)
	for i := 0; i < 40; i++ {
		_ = f.Deposit(bounds.At(rng.Intn(bounds.Area())), rng.Float64()*0.3)
	}
	before := f.Snapshot()
	f.Decay()
	f.Disperse()
	after := f.Snapshot()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("cell %d changed: %v -> %v", i, before[i], after[i])
		}
	}
}

func TestDisperseSpreadsToNeighbours(t *testing.T) {
	f := newTestField(t, geom.Bounds{Cols: 3, Rows: 3}, Params{Cap: 1, DispersionRate: 0.8}, nil)
	centre := geom.Vec{X: 1, Y: 1}
	_ = f.Deposit(centre, 0.8)
	f.Disperse()
	if got := f.Value(centre); math.Abs(got-0.16) > 1e-12 {
		t.Fatalf("expected centre 0.16, got %v", got)
	}
	for _, d := range geom.Compass() {
		if got := f.Value(centre.Add(d.Vec())); math.Abs(got-0.08) > 1e-12 {
			t.Fatalf("expected neighbour %s to hold 0.08, got %v", d, got)
		}
	}
}

func TestDisperseConservesMassAtEdges(t *testing.T) {
	f := newTestField(t, geom.Bounds{Cols: 4, Rows: 4}, Params{Cap: 1, DispersionRate: 0.4}, nil)
	corner := geom.Vec{X: 0, Y: 0}
	_ = f.Deposit(corner, 0.5)
	f.Disperse()
	if got := f.Sum(); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("expected mass 0.5, got %v", got)
	}
	// 5 of 8 neighbours are off-grid for a corner.
	want := 0.5*(1-0.4) + 0.5*0.05*5
	if got := f.Value(corner); math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected corner %v, got %v", want, got)
	}
}

func TestRandomSequencesStayWithinCap(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	bounds := geom.Bounds{Cols: 9, Rows: 6}
	for trial := 0; trial < 20; trial++ {
		params := Params{Cap: 0.5 + rng.Float64(), DecayRate: rng.Float64(), DispersionRate: rng.Float64()}
		f := newTestField(t, bounds, params, nil)
		for step := 0; step < 200; step++ {
			switch rng.Intn(3) {
			case 0:
				_ = f.Deposit(bounds.At(rng.Intn(bounds.Area())), rng.Float64())
			case 1:
				f.Decay()
			default:
				mass := f.Sum()
				f.Disperse()
				if math.Abs(f.Sum()-mass) > 1e-9 {
					t.Fatalf("disperse changed mass %v -> %v", mass, f.Sum())
				}
			}
			for i, v := range f.Snapshot() {
				if v < 0 || v > params.Cap {
					t.Fatalf("trial %d step %d: cell %d out of range: %v (cap %v)", trial, step, i, v, params.Cap)
				}
			}
		}
	}
}

func TestResetAndLoad(t *testing.T) {
	f := newTestField(t, geom.Bounds{Cols: 2, Rows: 2}, Params{Cap: 1}, nil)
	if err := f.Load([]float64{0.1, 2, -1, 0.4}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Max() != 1 || f.Value(geom.Vec{X: 0, Y: 1}) != 0 {
		t.Fatalf("expected load to clamp, got %v", f.Snapshot())
	}
	if err := f.Load([]float64{1}); err == nil {
		t.Fatal("expected size mismatch error")
	}
	f.Reset()
	if f.Sum() != 0 {
		t.Fatalf("expected empty field after reset, got %v", f.Sum())
	}
}

func TestParamsValidate(t *testing.T) {
	bad := []Params{
		{Cap: 0},
		{Cap: 1, DecayRate: -0.1},
		{Cap: 1, DecayRate: 1.1},
		{Cap: 1, DispersionRate: 2},
		{Cap: math.Inf(1)},
		{Cap: 1, DecayRate: math.NaN()},
		{Cap: 1, DispersionRate: math.NaN()},
	}
	for _, p := range bad {
		if err := p.Validate(); err == nil {
			t.Fatalf("expected %+v to be rejected", p)
		}
	}
	if _, err := NewField(Target, geom.Bounds{}, Params{Cap: 1}, nil); err == nil {
		t.Fatal("expected empty bounds to be rejected")
	}
}
