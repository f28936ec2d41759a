package xlsxreader

import (
	"github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader/models"
	"github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader/workbook"
)

// SheetCursor iterates one loaded sheet of a workbook row by row. It holds a
// non-owning reference to the source: Destroy severs the reference, while
// closing the workbook stays with whoever opened it.
//
// A cursor is single-threaded and synchronous: every read blocks until the
// row and all of its event callbacks have returned. Abort is cooperative,
// requested by a record or sheet handler returning true; nothing interrupts a
// callback already in progress. Two cursors must not share one workbook
// source; callers needing concurrent sheets use independent sources.
type SheetCursor struct {
	src  workbook.Source
	grid workbook.Grid
	rng  models.Range

	rowIndex int
	colIndex int
	current  models.Row

	loaded    bool
	started   bool
	destroyed bool

	handlers Handlers
}

// NewCursor returns an unloaded cursor over src.
func NewCursor(src workbook.Source) *SheetCursor {
	return &SheetCursor{src: src}
}

// Handle registers the cursor's event handlers, replacing any previous set.
func (c *SheetCursor) Handle(h Handlers) { c.handlers = h }

// Range returns the used range of the loaded sheet.
func (c *SheetCursor) Range() models.Range { return c.rng }

// Current returns the row read by the most recent MoveNext or read call.
func (c *SheetCursor) Current() models.Row { return c.current }

// Position returns the cursor's last-used row and column.
func (c *SheetCursor) Position() (row, col int) { return c.rowIndex, c.colIndex }

// Loaded reports whether a sheet is loaded.
func (c *SheetCursor) Loaded() bool { return c.loaded }

// Destroyed reports whether the cursor has been destroyed.
func (c *SheetCursor) Destroyed() bool { return c.destroyed }

// LoadSheet loads the named sheet: the used range is recomputed, the position
// returns to before the first row, and the one-shot start event is rearmed.
func (c *SheetCursor) LoadSheet(name string) error {
	if c.destroyed {
		return c.report(ErrDestroyed)
	}
	// Unload first so a failed (or handler-consumed) load cannot leave the
	// previous sheet's grid reachable.
	c.loaded = false
	c.grid = nil
	grid, err := c.src.Sheet(name)
	if err != nil {
		return c.report(err)
	}
	c.grid = grid
	c.rng = grid.UsedRange()
	c.rowIndex = c.rng.StartRow - 1 // before-first sentinel
	c.colIndex = c.rng.StartCol
	c.current = nil
	c.loaded = true
	c.started = false
	return nil
}

// LoadSheetAt loads the sheet at the given position in workbook order. A
// negative index counts back from the last sheet.
func (c *SheetCursor) LoadSheetAt(index int) error {
	if c.destroyed {
		return c.report(ErrDestroyed)
	}
	names := c.src.SheetNames()
	i := resolveIndex(index, len(names))
	if i < 0 || i >= len(names) {
		return c.report(&BoundsError{Index: index, Min: 0, Max: len(names) - 1})
	}
	return c.LoadSheet(names[i])
}

// Reset returns the cursor to before the first row of the loaded sheet.
func (c *SheetCursor) Reset() error {
	if c.destroyed {
		return c.report(ErrDestroyed)
	}
	c.rowIndex = c.rng.StartRow - 1
	return nil
}

// Destroy severs the cursor from its source. Terminal: every later operation
// reports ErrDestroyed and touches no grid. The underlying workbook stays
// open.
func (c *SheetCursor) Destroy() {
	c.destroyed = true
	c.loaded = false
	c.src = nil
	c.grid = nil
	c.current = nil
}

// MoveNext advances to the next row and reads it into the current slot. It
// returns false at the end of the used range without mutating state.
func (c *SheetCursor) MoveNext() (bool, error) {
	if c.destroyed {
		return false, c.report(ErrDestroyed)
	}
	if !c.loaded {
		return false, c.report(ErrNotLoaded)
	}
	if c.rowIndex+1 > c.rng.EndRow {
		return false, nil
	}
	c.rowIndex++
	c.readRow(c.rowIndex, nil)
	return true, nil
}

// ReadAt reads the row at index without moving the cursor position. Negative
// indices address rows from the end of the range, -1 being the last row.
// Out-of-range indices report a BoundsError and return a nil row.
//
// Reading a row fires the one-shot start event first, then beforerecord, one
// cell event per column, and finally onRecord (or the registered record
// handler when onRecord is nil) with the row and its index.
func (c *SheetCursor) ReadAt(index int, onRecord RecordFunc) (models.Row, error) {
	if c.destroyed {
		return nil, c.report(ErrDestroyed)
	}
	if !c.loaded {
		return nil, c.report(ErrNotLoaded)
	}
	i := c.resolveRow(index)
	if i < c.rng.StartRow || i > c.rng.EndRow {
		return nil, c.report(&BoundsError{Index: index, Min: c.rng.StartRow, Max: c.rng.EndRow})
	}
	row, _ := c.readRow(i, onRecord)
	return row, nil
}

// ReadMany reads up to count rows starting at startIndex. A negative
// startIndex reads backward from the end of the range; otherwise rows are
// read forward. The result stops early at the grid boundary, so its length is
// the smaller of count and the rows available in that direction.
func (c *SheetCursor) ReadMany(startIndex, count int) ([]models.Row, error) {
	if c.destroyed {
		return nil, c.report(ErrDestroyed)
	}
	if !c.loaded {
		return nil, c.report(ErrNotLoaded)
	}
	if count < 0 {
		return nil, c.report(ErrNegativeCount)
	}
	backwards := startIndex < 0
	i := c.resolveRow(startIndex)
	rows := make([]models.Row, 0, count)
	for n := 0; n < count; n++ {
		if i < c.rng.StartRow || i > c.rng.EndRow {
			break
		}
		row, _ := c.readRow(i, nil)
		rows = append(rows, row)
		if backwards {
			i--
		} else {
			i++
		}
	}
	return rows, nil
}

// ReadAll visits every row of the used range in strictly increasing order, or
// strictly decreasing when backwards, handing each row to onRecord (or the
// registered record handler when onRecord is nil). A true return aborts after
// that row. The end event fires once with the number of rows visited; an
// empty range still fires start and end with a count of 0.
func (c *SheetCursor) ReadAll(backwards bool, onRecord RecordFunc) (int, error) {
	if c.destroyed {
		return 0, c.report(ErrDestroyed)
	}
	if !c.loaded {
		return 0, c.report(ErrNotLoaded)
	}
	if onRecord == nil {
		onRecord = c.handlers.Record
	}
	if onRecord == nil {
		return 0, c.report(ErrMissingRecordHandler)
	}
	c.fireStart()
	start, stop, step := c.rng.StartRow, c.rng.EndRow+1, 1
	if backwards {
		start, stop, step = c.rng.EndRow, c.rng.StartRow-1, -1
	}
	visited := 0
	for i := start; i != stop; i += step {
		_, abort := c.readRow(i, onRecord)
		visited++
		if abort {
			break
		}
	}
	if c.handlers.End != nil {
		c.handlers.End(visited)
	}
	return visited, nil
}

// ReadAllSheets runs ReadAll over every sheet in workbook order and returns
// the total row count across the sheets it processed. The onSheet callback
// runs after each sheet loads; returning true skips that sheet's rows and
// every remaining sheet.
func (c *SheetCursor) ReadAllSheets(onSheet SheetFunc, onRecord RecordFunc, backwards bool) (int, error) {
	if c.destroyed {
		return 0, c.report(ErrDestroyed)
	}
	total := 0
	for i, name := range c.src.SheetNames() {
		if err := c.LoadSheet(name); err != nil {
			return total, err
		}
		if !c.loaded {
			// Load failure consumed by the error handler; skip the sheet.
			continue
		}
		if onSheet != nil && onSheet(name, i) {
			break
		}
		n, err := c.ReadAll(backwards, onRecord)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ReadCell returns the value at (col, row), 1-based. A non-positive col or
// row falls back to the cursor's last-used column or row.
func (c *SheetCursor) ReadCell(col, row int) (models.CellValue, error) {
	if c.destroyed {
		return nil, c.report(ErrDestroyed)
	}
	if !c.loaded {
		return nil, c.report(ErrNotLoaded)
	}
	if col <= 0 {
		col = c.colIndex
	}
	if row <= 0 {
		row = c.rowIndex
	}
	c.colIndex, c.rowIndex = col, row
	return c.grid.Get(row, col), nil
}

// readRow reads row i from the grid into the current slot and fires the
// per-row events. It never mutates rowIndex; positional moves belong to
// MoveNext. The bool result is the record handler's abort signal.
func (c *SheetCursor) readRow(i int, onRecord RecordFunc) (models.Row, bool) {
	c.fireStart()
	if c.handlers.BeforeRecord != nil {
		c.handlers.BeforeRecord(i)
	}
	row := make(models.Row, c.rng.Cols())
	for col := c.rng.StartCol; col <= c.rng.EndCol; col++ {
		v := c.grid.Get(i, col)
		row[col-c.rng.StartCol] = v
		c.colIndex = col
		if c.handlers.Cell != nil {
			c.handlers.Cell(v, i, col)
		}
	}
	c.current = row
	if onRecord == nil {
		onRecord = c.handlers.Record
	}
	abort := false
	if onRecord != nil {
		abort = onRecord(row, i)
	}
	return row, abort
}

func (c *SheetCursor) fireStart() {
	if c.started {
		return
	}
	c.started = true
	if c.handlers.Start != nil {
		c.handlers.Start(c.rng)
	}
}

// resolveRow maps a negative row index to its offset from the end of the used
// range, -1 addressing the last row. Resolution happens before any bounds
// check; the result may still be out of range.
func (c *SheetCursor) resolveRow(index int) int {
	return resolveIndex(index, c.rng.EndRow+1)
}

// resolveIndex turns a possibly negative index into an absolute one, counting
// negative values back from length.
func resolveIndex(index, length int) int {
	if index < 0 {
		return length + index
	}
	return index
}

// report routes err through the registered error handler when one exists, in
// which case the failing call returns a null result and a nil error. Without
// a handler the error surfaces to the caller.
func (c *SheetCursor) report(err error) error {
	if c.handlers.Error != nil {
		c.handlers.Error(err)
		return nil
	}
	return err
}
