package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader/models"
)

// XLSXSource reads .xlsx workbooks through excelize.
type XLSXSource struct {
	file      *excelize.File
	epoch1904 bool
}

// OpenXLSX opens an xlsx workbook.
func OpenXLSX(path string) (*XLSXSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	src := &XLSXSource{file: f}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		src.epoch1904 = *props.Date1904
	}
	return src, nil
}

// SheetNames returns sheet names in workbook order.
func (s *XLSXSource) SheetNames() []string { return s.file.GetSheetList() }

// Epoch1904 reports whether the workbook declares the 1904 date epoch.
func (s *XLSXSource) Epoch1904() bool { return s.epoch1904 }

// Close releases the underlying file.
func (s *XLSXSource) Close() error { return s.file.Close() }

// Sheet returns the grid for the named sheet. The used range comes from the
// sheet's declared dimension, falling back to a row scan when the sheet does
// not carry a usable one.
func (s *XLSXSource) Sheet(name string) (Grid, error) {
	idx, err := s.file.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q: %w", name, ErrNoSuchSheet)
	}
	rng, err := s.usedRange(name)
	if err != nil {
		return nil, err
	}
	return &xlsxGrid{file: s.file, sheet: name, rng: rng}, nil
}

func (s *XLSXSource) usedRange(name string) (models.Range, error) {
	dim, err := s.file.GetSheetDimension(name)
	if err != nil {
		return models.Range{}, err
	}
	if rng, ok := parseDimension(dim); ok {
		return rng, nil
	}
	return s.scanRange(name)
}

// parseDimension parses a dimension ref like "A1:C10" or "B2". A bare "A1"
// is what untouched sheets declare regardless of content, so it is rejected
// in favor of a scan.
func parseDimension(dim string) (models.Range, bool) {
	parts := strings.Split(dim, ":")
	switch len(parts) {
	case 1:
		if dim == "" || dim == "A1" {
			return models.Range{}, false
		}
		col, row, err := excelize.CellNameToCoordinates(parts[0])
		if err != nil {
			return models.Range{}, false
		}
		return models.Range{StartRow: row, StartCol: col, EndRow: row, EndCol: col}, true
	case 2:
		c1, r1, err1 := excelize.CellNameToCoordinates(parts[0])
		c2, r2, err2 := excelize.CellNameToCoordinates(parts[1])
		if err1 != nil || err2 != nil {
			return models.Range{}, false
		}
		return models.Range{StartRow: r1, StartCol: c1, EndRow: r2, EndCol: c2}, true
	}
	return models.Range{}, false
}

// scanRange derives the used range by walking the sheet's rows.
func (s *XLSXSource) scanRange(name string) (models.Range, error) {
	rows, err := s.file.GetRows(name)
	if err != nil {
		return models.Range{}, err
	}
	endRow, endCol := 0, 0
	for i, row := range rows {
		if len(row) > 0 {
			endRow = i + 1
		}
		if len(row) > endCol {
			endCol = len(row)
		}
	}
	if endRow == 0 || endCol == 0 {
		return models.Range{StartRow: 1, StartCol: 1, EndRow: 0, EndCol: 0}, nil
	}
	return models.Range{StartRow: 1, StartCol: 1, EndRow: endRow, EndCol: endCol}, nil
}

type xlsxGrid struct {
	file  *excelize.File
	sheet string
	rng   models.Range
}

// UsedRange returns the bounds computed when the grid was created.
func (g *xlsxGrid) UsedRange() models.Range { return g.rng }

// Get looks the cell up by coordinates. Positions with no stored cell return
// nil; a stored empty string stays an empty string.
func (g *xlsxGrid) Get(row, col int) models.CellValue {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil
	}
	raw, err := g.file.GetCellValue(g.sheet, cell)
	if err != nil {
		return nil
	}
	ctype, err := g.file.GetCellType(g.sheet, cell)
	if err != nil {
		ctype = excelize.CellTypeUnset
	}
	if ctype == excelize.CellTypeBool {
		return strings.EqualFold(raw, "TRUE") || raw == "1"
	}
	if raw == "" && ctype == excelize.CellTypeUnset {
		return nil
	}
	return parseValue(raw)
}
