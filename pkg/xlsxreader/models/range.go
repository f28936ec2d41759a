package models

// Range describes the inclusive rectangular bounds a sheet declares as
// containing data. Coordinates are 1-based. StartRow <= EndRow and
// StartCol <= EndCol whenever the range is non-empty; an empty sheet is
// represented with EndRow below StartRow. A Range is computed once per sheet
// load and stays fixed until the sheet is reloaded.
type Range struct {
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// Rows returns the number of rows in the range.
func (r Range) Rows() int {
	if r.EndRow < r.StartRow {
		return 0
	}
	return r.EndRow - r.StartRow + 1
}

// Cols returns the number of columns in the range.
func (r Range) Cols() int {
	if r.EndCol < r.StartCol {
		return 0
	}
	return r.EndCol - r.StartCol + 1
}
