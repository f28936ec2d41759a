package xlsxreader

import "github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader/models"

// StartFunc runs once per sheet load, before the first row is read.
type StartFunc func(rng models.Range)

// BeforeRecordFunc runs before each row is handed to the record handler.
type BeforeRecordFunc func(rowIndex int)

// CellFunc runs once per cell of each row read, in column order.
type CellFunc func(value models.CellValue, rowIndex, colIndex int)

// RecordFunc receives each raw row with its index. Returning true aborts the
// read after the current row.
type RecordFunc func(row models.Row, rowIndex int) bool

// SheetFunc runs after a sheet is loaded and before its rows are read.
// Returning true skips that sheet's rows and every remaining sheet.
type SheetFunc func(name string, index int) bool

// EndFunc runs once per completed read with the number of rows visited,
// inclusive of an aborting row.
type EndFunc func(rowsProcessed int)

// ErrorFunc receives errors raised during cursor operations. When registered,
// the failing call returns a null result instead of surfacing the error.
type ErrorFunc func(err error)

// Handlers holds at most one callback per cursor event. Events fire
// synchronously and in fixed order per row: start (once per load), then
// beforerecord, one cell call per column, and record.
type Handlers struct {
	Start        StartFunc
	BeforeRecord BeforeRecordFunc
	Cell         CellFunc
	Record       RecordFunc
	End          EndFunc
	Error        ErrorFunc
}
