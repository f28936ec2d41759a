package xlsxreader

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader/models"
	"github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader/workbook"
)

// saveSource saves f to a temp file and opens it as a workbook source.
func saveSource(t *testing.T, f *excelize.File) workbook.Source {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save test file: %v", err)
	}
	src, err := workbook.Open(path)
	if err != nil {
		t.Fatalf("failed to open test file: %v", err)
	}
	t.Cleanup(func() { src.Close() })
	return src
}

// numberedSource builds a sheet with rows rows and two columns: column A
// holds the row number, column B the string "r<row>".
func numberedSource(t *testing.T, rows int) workbook.Source {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i := 1; i <= rows; i++ {
		f.SetCellValue("Sheet1", fmt.Sprintf("A%d", i), i)
		f.SetCellValue("Sheet1", fmt.Sprintf("B%d", i), fmt.Sprintf("r%d", i))
	}
	return saveSource(t, f)
}

func loadedCursor(t *testing.T, src workbook.Source) *SheetCursor {
	t.Helper()
	c := NewCursor(src)
	if err := c.LoadSheetAt(0); err != nil {
		t.Fatalf("LoadSheetAt(0): %v", err)
	}
	return c
}

func TestReadAtRowLength(t *testing.T) {
	c := loadedCursor(t, numberedSource(t, 10))

	rng := c.Range()
	for i := rng.StartRow; i <= rng.EndRow; i++ {
		row, err := c.ReadAt(i, nil)
		if err != nil {
			t.Fatalf("ReadAt(%d): %v", i, err)
		}
		if len(row) != rng.Cols() {
			t.Errorf("ReadAt(%d) row length = %d, want %d", i, len(row), rng.Cols())
		}
	}
}

func TestReadAtNegativeIndex(t *testing.T) {
	c := loadedCursor(t, numberedSource(t, 10))

	row, err := c.ReadAt(-1, nil)
	if err != nil {
		t.Fatalf("ReadAt(-1): %v", err)
	}
	if row[1] != "r10" {
		t.Errorf("ReadAt(-1) = %v, want last row", row)
	}
}

func TestReadAtOutOfRange(t *testing.T) {
	c := loadedCursor(t, numberedSource(t, 10))

	row, err := c.ReadAt(11, nil)
	var boundsErr *BoundsError
	if !errors.As(err, &boundsErr) {
		t.Fatalf("ReadAt(11) error = %v, want BoundsError", err)
	}
	if row != nil {
		t.Errorf("ReadAt(11) row = %v, want nil", row)
	}

	// rowIndex must not move on a failed read.
	if r, _ := c.Position(); r != c.Range().StartRow-1 {
		t.Errorf("rowIndex = %d, want before-first sentinel", r)
	}
}

func TestReadAtErrorHandlerConsumesError(t *testing.T) {
	c := loadedCursor(t, numberedSource(t, 10))

	var seen error
	c.Handle(Handlers{Error: func(err error) { seen = err }})

	row, err := c.ReadAt(99, nil)
	if err != nil {
		t.Fatalf("registered handler should consume the error, got %v", err)
	}
	if row != nil {
		t.Errorf("row = %v, want nil", row)
	}
	var boundsErr *BoundsError
	if !errors.As(seen, &boundsErr) {
		t.Errorf("handler received %v, want BoundsError", seen)
	}
}

func TestMoveNext(t *testing.T) {
	c := loadedCursor(t, numberedSource(t, 3))

	count := 0
	for {
		ok, err := c.MoveNext()
		if err != nil {
			t.Fatalf("MoveNext: %v", err)
		}
		if !ok {
			break
		}
		count++
		if c.Current() == nil {
			t.Fatal("MoveNext should fill the current slot")
		}
	}
	if count != 3 {
		t.Errorf("MoveNext visited %d rows, want 3", count)
	}
}

func TestResetRewindsCursor(t *testing.T) {
	c := loadedCursor(t, numberedSource(t, 3))

	for i := 0; i < 3; i++ {
		c.MoveNext()
	}
	if err := c.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	ok, err := c.MoveNext()
	if err != nil || !ok {
		t.Fatalf("MoveNext after Reset = (%v, %v), want first row again", ok, err)
	}
	if r, _ := c.Position(); r != c.Range().StartRow {
		t.Errorf("rowIndex = %d, want %d", r, c.Range().StartRow)
	}
}

func TestReadManyFromEnd(t *testing.T) {
	c := loadedCursor(t, numberedSource(t, 10))

	rows, err := c.ReadMany(-1, 3)
	if err != nil {
		t.Fatalf("ReadMany(-1, 3): %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("ReadMany(-1, 3) returned %d rows, want 3", len(rows))
	}
	for i, want := range []string{"r10", "r9", "r8"} {
		if rows[i][1] != want {
			t.Errorf("rows[%d] = %v, want %s", i, rows[i], want)
		}
	}
}

func TestReadManyStopsAtBoundary(t *testing.T) {
	c := loadedCursor(t, numberedSource(t, 10))

	rows, err := c.ReadMany(-1, 20)
	if err != nil {
		t.Fatalf("ReadMany(-1, 20): %v", err)
	}
	if len(rows) != 10 {
		t.Errorf("ReadMany(-1, 20) returned %d rows, want 10", len(rows))
	}

	rows, err = c.ReadMany(8, 5)
	if err != nil {
		t.Fatalf("ReadMany(8, 5): %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("ReadMany(8, 5) returned %d rows, want 3", len(rows))
	}
}

func TestReadManyNegativeCount(t *testing.T) {
	c := loadedCursor(t, numberedSource(t, 10))

	rows, err := c.ReadMany(1, -1)
	if !errors.Is(err, ErrNegativeCount) {
		t.Fatalf("ReadMany(1, -1) error = %v, want ErrNegativeCount", err)
	}
	if rows != nil {
		t.Errorf("rows = %v, want nil", rows)
	}
}

func TestReadAllVisitsEveryRowInOrder(t *testing.T) {
	c := loadedCursor(t, numberedSource(t, 10))

	var visited []int
	n, err := c.ReadAll(false, func(row models.Row, rowIndex int) bool {
		visited = append(visited, rowIndex)
		return false
	})
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if n != 10 {
		t.Errorf("ReadAll = %d, want 10", n)
	}
	for i := 1; i < len(visited); i++ {
		if visited[i] != visited[i-1]+1 {
			t.Fatalf("rows not strictly increasing: %v", visited)
		}
	}
	if visited[0] != 1 || visited[len(visited)-1] != 10 {
		t.Errorf("visited %v, want 1 through 10", visited)
	}
}

func TestReadAllBackwards(t *testing.T) {
	c := loadedCursor(t, numberedSource(t, 10))

	var visited []int
	n, err := c.ReadAll(true, func(row models.Row, rowIndex int) bool {
		visited = append(visited, rowIndex)
		return false
	})
	if err != nil {
		t.Fatalf("ReadAll backwards: %v", err)
	}
	if n != 10 {
		t.Errorf("ReadAll = %d, want 10", n)
	}
	for i := 1; i < len(visited); i++ {
		if visited[i] != visited[i-1]-1 {
			t.Fatalf("rows not strictly decreasing: %v", visited)
		}
	}
	if visited[0] != 10 || visited[len(visited)-1] != 1 {
		t.Errorf("visited %v, want 10 through 1", visited)
	}
}

func TestReadAllAbort(t *testing.T) {
	c := loadedCursor(t, numberedSource(t, 10))

	var endCount int
	c.Handle(Handlers{End: func(n int) { endCount = n }})

	var visited []int
	n, err := c.ReadAll(false, func(row models.Row, rowIndex int) bool {
		visited = append(visited, rowIndex)
		return rowIndex == 5
	})
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if n != 5 {
		t.Errorf("ReadAll = %d, want 5 rows through the aborting row", n)
	}
	if endCount != 5 {
		t.Errorf("end event count = %d, want 5", endCount)
	}
	for _, i := range visited {
		if i > 5 {
			t.Errorf("row %d visited after abort", i)
		}
	}
}

func TestReadAllMissingHandler(t *testing.T) {
	c := loadedCursor(t, numberedSource(t, 10))

	n, err := c.ReadAll(false, nil)
	if !errors.Is(err, ErrMissingRecordHandler) {
		t.Fatalf("ReadAll error = %v, want ErrMissingRecordHandler", err)
	}
	if n != 0 {
		t.Errorf("ReadAll = %d, want 0", n)
	}
}

func TestReadAllUsesRegisteredRecordHandler(t *testing.T) {
	c := loadedCursor(t, numberedSource(t, 3))

	count := 0
	c.Handle(Handlers{Record: func(row models.Row, rowIndex int) bool {
		count++
		return false
	}})
	n, err := c.ReadAll(false, nil)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if n != 3 || count != 3 {
		t.Errorf("ReadAll = %d with %d handler calls, want 3 and 3", n, count)
	}
}

func TestReadAllEmptySheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	c := loadedCursor(t, saveSource(t, f))

	started, ended, endCount := false, false, -1
	c.Handle(Handlers{
		Start: func(rng models.Range) { started = true },
		End:   func(n int) { ended, endCount = true, n },
	})
	n, err := c.ReadAll(false, func(row models.Row, rowIndex int) bool { return false })
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if n != 0 {
		t.Errorf("ReadAll = %d, want 0", n)
	}
	if !started || !ended || endCount != 0 {
		t.Errorf("empty sheet should still fire start and end with count 0 (start=%v end=%v count=%d)",
			started, ended, endCount)
	}
}

func TestEventOrder(t *testing.T) {
	c := loadedCursor(t, numberedSource(t, 2))

	var events []string
	c.Handle(Handlers{
		Start:        func(rng models.Range) { events = append(events, "start") },
		BeforeRecord: func(i int) { events = append(events, "before") },
		Cell:         func(v models.CellValue, r, col int) { events = append(events, "cell") },
		End:          func(n int) { events = append(events, "end") },
	})
	_, err := c.ReadAll(false, func(row models.Row, rowIndex int) bool {
		events = append(events, "record")
		return false
	})
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	want := []string{
		"start",
		"before", "cell", "cell", "record",
		"before", "cell", "cell", "record",
		"end",
	}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events[%d] = %s, want %s (full: %v)", i, events[i], want[i], events)
		}
	}
}

func TestStartFiresOncePerLoad(t *testing.T) {
	c := loadedCursor(t, numberedSource(t, 3))

	starts := 0
	c.Handle(Handlers{Start: func(rng models.Range) { starts++ }})

	c.ReadAt(1, nil)
	c.ReadAt(2, nil)
	if starts != 1 {
		t.Errorf("start fired %d times, want 1", starts)
	}

	// Reloading rearms the one-shot event.
	if err := c.LoadSheetAt(0); err != nil {
		t.Fatalf("LoadSheetAt: %v", err)
	}
	c.ReadAt(1, nil)
	if starts != 2 {
		t.Errorf("start fired %d times after reload, want 2", starts)
	}
}

func TestDestroy(t *testing.T) {
	c := loadedCursor(t, numberedSource(t, 3))
	c.Destroy()

	if !c.Destroyed() {
		t.Fatal("Destroyed() = false after Destroy")
	}
	if _, err := c.ReadAt(1, nil); !errors.Is(err, ErrDestroyed) {
		t.Errorf("ReadAt after Destroy = %v, want ErrDestroyed", err)
	}
	if err := c.Reset(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Reset after Destroy = %v, want ErrDestroyed", err)
	}
	if _, err := c.ReadAll(false, func(models.Row, int) bool { return false }); !errors.Is(err, ErrDestroyed) {
		t.Errorf("ReadAll after Destroy = %v, want ErrDestroyed", err)
	}
	if _, err := c.ReadCell(1, 1); !errors.Is(err, ErrDestroyed) {
		t.Errorf("ReadCell after Destroy = %v, want ErrDestroyed", err)
	}
}

func TestDestroyWithErrorHandler(t *testing.T) {
	c := loadedCursor(t, numberedSource(t, 3))

	var seen []error
	c.Handle(Handlers{Error: func(err error) { seen = append(seen, err) }})
	c.Destroy()

	if _, err := c.ReadAt(1, nil); err != nil {
		t.Errorf("handler should consume the error, got %v", err)
	}
	if len(seen) != 1 || !errors.Is(seen[0], ErrDestroyed) {
		t.Errorf("handler received %v, want one ErrDestroyed", seen)
	}
}

func TestReadCell(t *testing.T) {
	c := loadedCursor(t, numberedSource(t, 3))

	v, err := c.ReadCell(2, 2)
	if err != nil {
		t.Fatalf("ReadCell(2, 2): %v", err)
	}
	if v != "r2" {
		t.Errorf("ReadCell(2, 2) = %v, want \"r2\"", v)
	}

	// Omitted coordinates fall back to the last-used position.
	v, err = c.ReadCell(0, 0)
	if err != nil {
		t.Fatalf("ReadCell(0, 0): %v", err)
	}
	if v != "r2" {
		t.Errorf("ReadCell(0, 0) = %v, want last-used cell \"r2\"", v)
	}
}

func TestReadAllSheets(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", 1)
	f.SetCellValue("Sheet1", "A2", 2)
	if _, err := f.NewSheet("Second"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	f.SetCellValue("Second", "A1", 3)
	c := loadedCursor(t, saveSource(t, f))

	total, err := c.ReadAllSheets(nil, func(row models.Row, rowIndex int) bool { return false }, false)
	if err != nil {
		t.Fatalf("ReadAllSheets: %v", err)
	}
	if total != 3 {
		t.Errorf("ReadAllSheets = %d, want 3", total)
	}
}

func TestReadAllSheetsAbort(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", 1)
	if _, err := f.NewSheet("Second"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	f.SetCellValue("Second", "A1", 2)
	c := loadedCursor(t, saveSource(t, f))

	var names []string
	total, err := c.ReadAllSheets(func(name string, index int) bool {
		names = append(names, name)
		return index == 1 // skip the second sheet's rows and everything after
	}, func(row models.Row, rowIndex int) bool { return false }, false)
	if err != nil {
		t.Fatalf("ReadAllSheets: %v", err)
	}
	if total != 1 {
		t.Errorf("ReadAllSheets = %d, want 1: aborted sheet rows must not count", total)
	}
	if len(names) != 2 {
		t.Errorf("onSheet ran for %v, want both sheets", names)
	}
}

func TestLoadSheetUnknownName(t *testing.T) {
	c := NewCursor(numberedSource(t, 3))
	if err := c.LoadSheet("Nope"); !errors.Is(err, workbook.ErrNoSuchSheet) {
		t.Errorf("LoadSheet(\"Nope\") = %v, want ErrNoSuchSheet", err)
	}
}

// gridStub is an in-memory single-column grid with rows rows; each cell
// holds its row number.
type gridStub struct{ rows int }

func (g gridStub) UsedRange() models.Range {
	return models.Range{StartRow: 1, StartCol: 1, EndRow: g.rows, EndCol: 1}
}

func (g gridStub) Get(row, col int) models.CellValue { return int64(row) }

// sourceStub lists names regardless of whether a grid backs them, so a sheet
// can appear in SheetNames yet fail to load.
type sourceStub struct {
	names []string
	grids map[string]workbook.Grid
}

func (s sourceStub) SheetNames() []string { return s.names }

func (s sourceStub) Sheet(name string) (workbook.Grid, error) {
	g, ok := s.grids[name]
	if !ok {
		return nil, workbook.ErrNoSuchSheet
	}
	return g, nil
}

func (s sourceStub) Epoch1904() bool { return false }
func (s sourceStub) Close() error    { return nil }

func TestLoadSheetFailureUnloadsPriorSheet(t *testing.T) {
	src := sourceStub{
		names: []string{"Good", "Ghost"},
		grids: map[string]workbook.Grid{"Good": gridStub{rows: 2}},
	}
	c := NewCursor(src)
	if err := c.LoadSheet("Good"); err != nil {
		t.Fatalf("LoadSheet(Good): %v", err)
	}

	var seen error
	c.Handle(Handlers{Error: func(err error) { seen = err }})

	if err := c.LoadSheet("Ghost"); err != nil {
		t.Fatalf("registered handler should consume the error, got %v", err)
	}
	if !errors.Is(seen, workbook.ErrNoSuchSheet) {
		t.Errorf("handler received %v, want ErrNoSuchSheet", seen)
	}
	if c.Loaded() {
		t.Fatal("cursor still loaded after the failed load")
	}
	c.Handle(Handlers{})
	noop := func(row models.Row, rowIndex int) bool { return false }
	if _, err := c.ReadAll(false, noop); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("ReadAll after failed load = %v, want ErrNotLoaded", err)
	}
}

func TestReadAllSheetsSkipsConsumedLoadFailure(t *testing.T) {
	src := sourceStub{
		names: []string{"Good", "Ghost", "Tail"},
		grids: map[string]workbook.Grid{
			"Good": gridStub{rows: 2},
			"Tail": gridStub{rows: 1},
		},
	}
	c := NewCursor(src)
	c.Handle(Handlers{Error: func(err error) {}})

	var names []string
	total, err := c.ReadAllSheets(func(name string, index int) bool {
		names = append(names, name)
		return false
	}, func(row models.Row, rowIndex int) bool { return false }, false)
	if err != nil {
		t.Fatalf("ReadAllSheets: %v", err)
	}
	// The unloadable sheet contributes nothing; its neighbor's rows must not
	// be counted in its place.
	if total != 3 {
		t.Errorf("ReadAllSheets = %d, want 3", total)
	}
	if want := []string{"Good", "Tail"}; !reflect.DeepEqual(names, want) {
		t.Errorf("onSheet ran for %v, want %v", names, want)
	}
}
