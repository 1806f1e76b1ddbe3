package engine

// Hex is an offset coordinate on the board. Q is the column, R the row.
type Hex struct {
	Q int `json:"q"`
	R int `json:"r"`
}

type Direction int

const (
	DirEast Direction = iota
	DirNorthEast
	DirNorthWest
	DirWest
	DirSouthWest
	DirSouthEast
)

var directionNames = [6]string{"east", "northeast", "northwest", "west", "southwest", "southeast"}

// Axial deltas indexed by Direction.
var axialDeltas = [6]Hex{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

func (d Direction) Valid() bool { return d >= 0 && d <= 5 }

func (d Direction) String() string {
	if !d.Valid() {
		return "invalid"
	}
	return directionNames[d]
}

func offsetToAxial(h Hex) Hex {
	return Hex{Q: h.Q - (h.R+(h.R&1))/2, R: h.R}
}

func axialToOffset(h Hex) Hex {
	return Hex{Q: h.Q + (h.R+(h.R&1))/2, R: h.R}
}

// Neighbor returns the adjacent coordinate in direction d. The result may be
// out of bounds; callers check with InBounds.
func Neighbor(h Hex, d Direction) Hex {
	a := offsetToAxial(h)
	delta := axialDeltas[RotateDirection(d, 0)]
	return axialToOffset(Hex{Q: a.Q + delta.Q, R: a.R + delta.R})
}

// RotateDirection turns d by steps sixths of a circle. The result is always in [0,5].
func RotateDirection(d Direction, steps int) Direction {
	next := (int(d) + steps) % 6
	if next < 0 {
		next += 6
	}
	return Direction(next)
}

func InBounds(rows, cols int, h Hex) bool {
	return h.Q >= 0 && h.Q < cols && h.R >= 0 && h.R < rows
}
