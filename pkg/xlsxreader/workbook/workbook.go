// Package workbook adapts spreadsheet file formats to the sparse grid
// interface consumed by the sheet cursor. The xlsx adapter is backed by
// excelize and the legacy xls adapter by extrame/xls; both expose the declared
// used range and random cell access without materializing whole sheets.
package workbook

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader/models"
)

// ErrNoSuchSheet indicates the requested sheet does not exist in the workbook.
var ErrNoSuchSheet = errors.New("no such sheet")

// Grid is a sparse two-dimensional cell space for one sheet.
type Grid interface {
	// UsedRange returns the inclusive bounds the sheet declares as holding
	// data.
	UsedRange() models.Range
	// Get returns the value at the 1-based (row, col) position, or nil when
	// no cell is stored there.
	Get(row, col int) models.CellValue
}

// Source is an open workbook. Whoever opened it owns it; cursors hold
// non-owning references and never close it.
type Source interface {
	// SheetNames returns sheet names in workbook order.
	SheetNames() []string
	// Sheet returns the grid for the named sheet.
	Sheet(name string) (Grid, error)
	// Epoch1904 reports whether the workbook uses the 1904 date epoch.
	Epoch1904() bool
	// Close releases the underlying file.
	Close() error
}

// Open opens path with the adapter matching its extension: .xls through the
// BIFF reader, anything else through excelize.
func Open(path string) (Source, error) {
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		return OpenXLS(path)
	}
	return OpenXLSX(path)
}

// parseValue renders a raw cell string as int64, float64 or string, in that
// order of preference.
func parseValue(s string) models.CellValue {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
