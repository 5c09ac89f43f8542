package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-match/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
)

const (
	// MatchCount is the number of consecutive marks that win a match.
	MatchCount = 3
	// GridDimension is the board size of the reference ruleset.
	GridDimension = 3
)

// Rand is the random source used to pick empty cells. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// Rules holds the board dimension and the winning run length.
type Rules struct {
	GridSize   int
	MatchCount int
}

var DefaultRules = Rules{GridSize: GridDimension, MatchCount: MatchCount}

func (that Rules) Validate() error {
	if that.GridSize <= 0 {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidDimension, that.GridSize)
	}

	if that.MatchCount < 1 || that.MatchCount > that.GridSize {
		return fmt.Errorf("%w: %d for grid size %d", apperror.ErrInvalidMatchCount, that.MatchCount, that.GridSize)
	}

	return nil
}

// scan is one directional walk across the grid.
type scan struct {
	start   entity.Coordinate
	rowStep int
	colStep int
}

// CreateGrid - returns a size x size grid with every cell empty.
func CreateGrid(size int) (entity.Grid, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", apperror.ErrInvalidDimension, size)
	}

	grid := make(entity.Grid, size)
	for i := range grid {
		grid[i] = make([]entity.Mark, size)
	}

	return grid, nil
}

// CheckWinner - looks for MatchCount consecutive target marks on any row, column or main diagonal.
func CheckWinner(grid entity.Grid, target entity.Mark) (entity.WinResult, error) {
	return CheckWinnerWithCount(grid, target, MatchCount)
}

// CheckWinnerWithCount - scans rows, then columns, then the main and anti diagonals and
// returns the first run of matchCount target marks it finds.
func CheckWinnerWithCount(grid entity.Grid, target entity.Mark, matchCount int) (entity.WinResult, error) {
	if !target.IsPlayer() {
		return entity.WinResult{}, fmt.Errorf("%w: %d", apperror.ErrInvalidTarget, target)
	}

	if !grid.IsSquare() {
		return entity.WinResult{}, fmt.Errorf("%w: grid must be square and non-empty", apperror.ErrInvalidDimension)
	}

	if matchCount < 1 {
		return entity.WinResult{}, fmt.Errorf("%w: %d", apperror.ErrInvalidMatchCount, matchCount)
	}

	for _, s := range scansFor(grid.Size()) {
		if matched, ok := checkSequence(grid, s, target, matchCount); ok {
			return entity.WinResult{Won: true, Coordinates: matched}, nil
		}
	}

	return entity.WinResult{Coordinates: []entity.Coordinate{}}, nil
}

// scansFor - returns the scan order: rows, columns, main diagonal, anti-diagonal.
func scansFor(size int) []scan {
	scans := make([]scan, 0, 2*size+2)

	for row := 0; row < size; row++ {
		scans = append(scans, scan{start: entity.Coordinate{Row: row}, colStep: 1})
	}

	for col := 0; col < size; col++ {
		scans = append(scans, scan{start: entity.Coordinate{Col: col}, rowStep: 1})
	}

	return append(scans,
		scan{start: entity.Coordinate{}, rowStep: 1, colStep: 1},
		scan{start: entity.Coordinate{Col: size - 1}, rowStep: 1, colStep: -1},
	)
}

// checkSequence - walks one scan and reports the run that first reaches matchCount.
func checkSequence(grid entity.Grid, s scan, target entity.Mark, matchCount int) ([]entity.Coordinate, bool) {
	run := make([]entity.Coordinate, 0, matchCount)

	for i := 0; i < grid.Size(); i++ {
		coord := entity.Coordinate{Row: s.start.Row + i*s.rowStep, Col: s.start.Col + i*s.colStep}
		if !grid.InBounds(coord) {
			break
		}

		if grid.At(coord) != target {
			run = run[:0]
			continue
		}

		run = append(run, coord)
		if len(run) == matchCount {
			return run, true
		}
	}

	return nil, false
}

// EmptyCells - lists every empty cell in row-major order.
func EmptyCells(grid entity.Grid) []entity.Coordinate {
	cells := make([]entity.Coordinate, 0, len(grid)*len(grid))

	for row := range grid {
		for col := range grid[row] {
			if grid[row][col] == entity.MarkEmpty {
				cells = append(cells, entity.Coordinate{Row: row, Col: col})
			}
		}
	}

	return cells
}

// TryGetRandomEmptyCell - picks an empty cell uniformly at random, false when the grid is full.
func TryGetRandomEmptyCell(grid entity.Grid, rnd Rand) (entity.Coordinate, bool) {
	cells := EmptyCells(grid)
	if len(cells) == 0 {
		return entity.Coordinate{Row: -1, Col: -1}, false
	}

	return cells[rnd.IntN(len(cells))], true
}
