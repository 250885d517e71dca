package geom

import "testing"

func TestForwardOffsetsFollowFacing(t *testing.T) {
	cases := []struct {
		facing     Direction
		left       Vec
		front      Vec
		right      Vec
		reversedTo Direction
	}{
		{North, Vec{-1, -1}, Vec{0, -1}, Vec{1, -1}, South},
		{East, Vec{1, -1}, Vec{1, 0}, Vec{1, 1}, West},
		{SouthWest, Vec{0, 1}, Vec{-1, 1}, Vec{-1, 0}, NorthEast},
		{NorthWest, Vec{-1, 0}, Vec{-1, -1}, Vec{0, -1}, SouthEast},
	}
	for _, tc := range cases {
		if got := tc.facing.FrontLeft(); got != tc.left {
			t.Fatalf("%s front-left: expected %v, got %v", tc.facing, tc.left, got)
		}
		if got := tc.facing.Front(); got != tc.front {
			t.Fatalf("%s front: expected %v, got %v", tc.facing, tc.front, got)
		}
		if got := tc.facing.FrontRight(); got != tc.right {
			t.Fatalf("%s front-right: expected %v, got %v", tc.facing, tc.right, got)
		}
		if got := tc.facing.Reverse(); got != tc.reversedTo {
			t.Fatalf("%s reverse: expected %s, got %s", tc.facing, tc.reversedTo, got)
		}
	}
}

func TestDirectionOfRoundTripsCompass(t *testing.T) {
	for _, d := range Compass() {
		got, ok := DirectionOf(d.Vec())
		if !ok || got != d {
			t.Fatalf("expected %s, got %s ok=%t", d, got, ok)
		}
		if d.Vec().Add(d.Reverse().Vec()) != (Vec{}) {
			t.Fatalf("reverse of %s does not cancel", d)
		}
	}
	if _, ok := DirectionOf(Vec{X: 2}); ok {
		t.Fatal("expected non-unit step to have no direction")
	}
	if len(Cardinal()) != 4 {
		t.Fatalf("expected 4 cardinal directions, got %d", len(Cardinal()))
	}
}

func TestBoundsIndexing(t *testing.T) {
	b := Bounds{Cols: 5, Rows: 3}
	for i := 0; i < b.Area(); i++ {
		v := b.At(i)
		if !b.Contains(v) {
			t.Fatalf("cell %v out of bounds", v)
		}
		if b.Index(v) != i {
			t.Fatalf("expected index %d, got %d", i, b.Index(v))
		}
	}
	for _, v := range []Vec{{-1, 0}, {5, 0}, {0, 3}, {0, -1}} {
		if b.Contains(v) {
			t.Fatalf("expected %v outside bounds", v)
		}
	}
}
