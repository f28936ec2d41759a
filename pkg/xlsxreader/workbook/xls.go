package workbook

import (
	"fmt"

	"github.com/extrame/xls"

	"github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader/models"
)

// XLSSource reads legacy BIFF .xls workbooks.
type XLSSource struct {
	book *xls.WorkBook
}

// OpenXLS opens a legacy workbook. The charset hint covers workbooks whose
// shared strings predate Unicode; utf-8 is tried first, windows-1252 second.
func OpenXLS(path string) (*XLSSource, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		wb, err = xls.Open(path, "windows-1252")
		if err != nil {
			return nil, err
		}
	}
	return &XLSSource{book: wb}, nil
}

// SheetNames returns sheet names in workbook order.
func (s *XLSSource) SheetNames() []string {
	names := make([]string, 0, s.book.NumSheets())
	for i := 0; i < s.book.NumSheets(); i++ {
		if sh := s.book.GetSheet(i); sh != nil {
			names = append(names, sh.Name)
		}
	}
	return names
}

// Epoch1904 reports the workbook's date epoch. The BIFF reader does not
// surface the DATEMODE record, so the 1900 epoch is assumed.
func (s *XLSSource) Epoch1904() bool { return false }

// Close is a no-op; the BIFF reader holds no open handle after parsing.
func (s *XLSSource) Close() error { return nil }

// Sheet returns the grid for the named sheet.
func (s *XLSSource) Sheet(name string) (Grid, error) {
	for i := 0; i < s.book.NumSheets(); i++ {
		if sh := s.book.GetSheet(i); sh != nil && sh.Name == name {
			return &xlsGrid{sheet: sh, rng: xlsRange(sh)}, nil
		}
	}
	return nil, fmt.Errorf("sheet %q: %w", name, ErrNoSuchSheet)
}

func xlsRange(sh *xls.WorkSheet) models.Range {
	maxRow := int(sh.MaxRow)
	endCol := 0
	for i := 0; i <= maxRow; i++ {
		if row := sh.Row(i); row != nil && row.LastCol() > endCol {
			endCol = row.LastCol()
		}
	}
	if endCol == 0 {
		return models.Range{StartRow: 1, StartCol: 1, EndRow: 0, EndCol: 0}
	}
	return models.Range{StartRow: 1, StartCol: 1, EndRow: maxRow + 1, EndCol: endCol}
}

type xlsGrid struct {
	sheet *xls.WorkSheet
	rng   models.Range
}

// UsedRange returns the bounds computed when the grid was created.
func (g *xlsGrid) UsedRange() models.Range { return g.rng }

// Get looks the cell up by 1-based coordinates. The BIFF reader renders every
// cell as a string, so empty strings and absent cells collapse to nil here.
func (g *xlsGrid) Get(row, col int) models.CellValue {
	r := g.sheet.Row(row - 1)
	if r == nil {
		return nil
	}
	if col-1 < r.FirstCol() || col-1 >= r.LastCol() {
		return nil
	}
	raw := r.Col(col - 1)
	if raw == "" {
		return nil
	}
	return parseValue(raw)
}
