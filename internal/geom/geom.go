package geom

import "fmt"

// Vec is a grid coordinate or a unit step between cells. Y grows downward.
type Vec struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (v Vec) Add(o Vec) Vec {
	return Vec{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec) Sub(o Vec) Vec {
	return Vec{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec) Neg() Vec {
	return Vec{X: -v.X, Y: -v.Y}
}

func (v Vec) String() string {
	return fmt.Sprintf("(%d,%d)", v.X, v.Y)
}

// Direction indexes the compass vectors clockwise starting at north.
type Direction int

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

const numDirections = 8

var compass = [numDirections]Vec{
	{X: 0, Y: -1},
	{X: 1, Y: -1},
	{X: 1, Y: 0},
	{X: 1, Y: 1},
	{X: 0, Y: 1},
	{X: -1, Y: 1},
	{X: -1, Y: 0},
	{X: -1, Y: -1},
}

var directionNames = [numDirections]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Compass lists all eight facings in clockwise order.
func Compass() []Direction {
	return []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}
}

// Cardinal lists the four axis-aligned facings.
func Cardinal() []Direction {
	return []Direction{North, East, South, West}
}

func (d Direction) Valid() bool {
	return d >= 0 && d < numDirections
}

// Vec returns the unit step for d.
func (d Direction) Vec() Vec {
	return compass[d.normalize()]
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// Front is the cell straight ahead, relative to the facing cell.
func (d Direction) Front() Vec {
	return d.Vec()
}

// FrontLeft is the offset 45 degrees counter-clockwise of the facing.
func (d Direction) FrontLeft() Vec {
	return d.Left().Vec()
}

// FrontRight is the offset 45 degrees clockwise of the facing.
func (d Direction) FrontRight() Vec {
	return d.Right().Vec()
}

func (d Direction) Left() Direction {
	return (d + numDirections - 1).normalize()
}

func (d Direction) Right() Direction {
	return (d + 1).normalize()
}

// Reverse turns the facing by 180 degrees.
func (d Direction) Reverse() Direction {
	return (d + numDirections/2).normalize()
}

func (d Direction) normalize() Direction {
	n := d % numDirections
	if n < 0 {
		n += numDirections
	}
	return n
}

// DirectionOf maps a unit step back to its facing.
func DirectionOf(step Vec) (Direction, bool) {
	for i, v := range compass {
		if v == step {
			return Direction(i), true
		}
	}
	return 0, false
}

// Bounds is the addressable area [0, Cols) x [0, Rows).
type Bounds struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

func (b Bounds) Contains(v Vec) bool {
	return v.X >= 0 && v.X < b.Cols && v.Y >= 0 && v.Y < b.Rows
}

func (b Bounds) Area() int {
	return b.Cols * b.Rows
}

// Index flattens v in row-major order. v must be inside b.
func (b Bounds) Index(v Vec) int {
	return v.Y*b.Cols + v.X
}

func (b Bounds) At(index int) Vec {
	return Vec{X: index % b.Cols, Y: index / b.Cols}
}
