package board

// Empty marks a cell no token has landed in yet.
const Empty = -1

// Grid is a rows x columns matrix of turn-indexes, row 0 is the top.
type Grid [][]int

// New returns a grid with every cell set to Empty.
func New(rows, columns int) Grid {
	grid := make(Grid, rows)
	for row := range grid {
		grid[row] = make([]int, columns)
		for col := range grid[row] {
			grid[row][col] = Empty
		}
	}

	return grid
}

func (that Grid) Rows() int {
	return len(that)
}

func (that Grid) Columns() int {
	if len(that) == 0 {
		return 0
	}

	return len(that[0])
}

// Clone returns a deep copy of the grid.
func (that Grid) Clone() Grid {
	clone := make(Grid, len(that))
	for row := range that {
		clone[row] = append([]int(nil), that[row]...)
	}

	return clone
}

// CheckWinner reports whether target owns runLength consecutive cells in a row, a column or a diagonal.
//
// Every runLength x runLength box that fits on the grid is scanned: all of its rows, all of its
// columns and both of its diagonals. A run of exactly runLength cells always fits in such a box.
func CheckWinner(grid Grid, target, runLength int) bool {
	if runLength < 1 {
		return false
	}

	rows, cols := grid.Rows(), grid.Columns()
	for boxRow := 0; boxRow+runLength <= rows; boxRow++ {
		for boxCol := 0; boxCol+runLength <= cols; boxCol++ {
			if boxHasRun(grid, boxRow, boxCol, target, runLength) {
				return true
			}
		}
	}

	return false
}

func boxHasRun(grid Grid, boxRow, boxCol, target, size int) bool {
	for offset := 0; offset < size; offset++ {
		// row segment
		if lineOf(grid, boxRow+offset, boxCol, 0, 1, target, size) {
			return true
		}

		// column segment
		if lineOf(grid, boxRow, boxCol+offset, 1, 0, target, size) {
			return true
		}
	}

	// slope -1, top-left to bottom-right
	if lineOf(grid, boxRow, boxCol, 1, 1, target, size) {
		return true
	}

	// slope 1, bottom-left to top-right
	return lineOf(grid, boxRow+size-1, boxCol, -1, 1, target, size)
}

func lineOf(grid Grid, row, col, rowStep, colStep, target, size int) bool {
	for i := 0; i < size; i++ {
		if grid[row+i*rowStep][col+i*colStep] != target {
			return false
		}
	}

	return true
}
