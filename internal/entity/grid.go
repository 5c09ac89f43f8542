package entity

import "fmt"

// Coordinate addresses a grid cell by row and column.
type Coordinate struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", that.Row, that.Col)
}

// Grid is a square board of marks indexed as grid[row][col].
type Grid [][]Mark

// Size - returns the number of rows.
func (that Grid) Size() int {
	return len(that)
}

// IsSquare reports whether the grid is non-empty and every row has Size() cells.
func (that Grid) IsSquare() bool {
	if len(that) == 0 {
		return false
	}

	for _, row := range that {
		if len(row) != len(that) {
			return false
		}
	}

	return true
}

// InBounds reports whether the coordinate addresses a cell of the grid.
func (that Grid) InBounds(coord Coordinate) bool {
	if coord.Row < 0 || coord.Row >= len(that) {
		return false
	}

	return coord.Col >= 0 && coord.Col < len(that[coord.Row])
}

func (that Grid) At(coord Coordinate) Mark {
	return that[coord.Row][coord.Col]
}

func (that Grid) Set(coord Coordinate, mark Mark) {
	that[coord.Row][coord.Col] = mark
}

// Clone - returns a deep copy, nil for a nil grid.
func (that Grid) Clone() Grid {
	if that == nil {
		return nil
	}

	clone := make(Grid, len(that))
	for i, row := range that {
		clone[i] = append([]Mark(nil), row...)
	}

	return clone
}

// WinResult is the outcome of a single win check.
type WinResult struct {
	Won         bool         `json:"won"`
	Coordinates []Coordinate `json:"coordinates"`
}
