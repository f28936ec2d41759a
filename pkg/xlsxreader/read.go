package xlsxreader

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader/models"
	"github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader/output"
	"github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader/workbook"
)

// Result carries the outcome of a read: the buffered records when buffering
// was enabled (nil when records were streamed or handed to a callback) and
// the total number of rows visited, consumed header rows included.
type Result struct {
	Records []models.Record
	Rows    int
}

// Read opens the input workbook and streams every row of the selected sheet,
// or of all sheets, through the materializer, routing each record to the
// OnRecord callback, the output sink, and/or the in-memory accumulator. The
// workbook is closed before Read returns.
func Read(opts Options) (*Result, error) {
	if opts.Input == "" {
		return nil, ErrNoInput
	}
	src, err := workbook.Open(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer src.Close()
	return ReadFrom(src, opts)
}

// ReadFrom is Read over an already open workbook source. The source stays
// open and owned by the caller.
func ReadFrom(src workbook.Source, opts Options) (*Result, error) {
	sink, closer, err := resolveSink(opts)
	if err != nil {
		return nil, err
	}

	run := &readRun{
		opts:   opts,
		mat:    NewRowMaterializer(opts, src.Epoch1904()),
		sink:   sink,
		buffer: opts.ShouldBuffer(),
	}
	cursor := NewCursor(src)
	cursor.Handle(Handlers{
		Cell:  opts.OnCell,
		Error: opts.OnError,
	})

	if sink != nil {
		if err := sink.WriteHeaderMarker(); err != nil {
			finalizeSink(sink, closer)
			return nil, fmt.Errorf("write header marker: %w", err)
		}
	}

	var total int
	if opts.AllSheets {
		total, err = cursor.ReadAllSheets(run.sheetFunc(cursor), run.record, opts.Backwards)
	} else {
		err = run.loadTarget(cursor)
		if err == nil && cursor.Loaded() {
			run.prepareHeader(cursor)
			total, err = cursor.ReadAll(opts.Backwards, run.record)
		}
	}

	if ferr := finalizeSink(sink, closer); ferr != nil && err == nil {
		err = ferr
	}
	if err == nil {
		err = run.err
	}

	var records []models.Record
	if run.buffer {
		records = run.records
	}
	if opts.OnFinish != nil {
		opts.OnFinish(records, total)
	}
	return &Result{Records: records, Rows: total}, err
}

// readRun holds the mutable state of one facade-driven read.
type readRun struct {
	opts    Options
	mat     *RowMaterializer
	sink    output.RowSink
	buffer  bool
	records []models.Record

	headerRow int
	err       error
	aborted   bool
}

// loadTarget loads the configured sheet: a decimal value selects by position,
// anything else by name, and the empty default means the first sheet.
func (r *readRun) loadTarget(c *SheetCursor) error {
	if r.opts.Sheet == "" {
		return c.LoadSheetAt(0)
	}
	if i, err := strconv.Atoi(r.opts.Sheet); err == nil {
		return c.LoadSheetAt(i)
	}
	return c.LoadSheet(r.opts.Sheet)
}

// sheetFunc wraps the caller's OnSheet with the per-sheet materializer reset
// and header preparation. An error abort on an earlier sheet stops the whole
// read, so remaining sheets are skipped here.
func (r *readRun) sheetFunc(c *SheetCursor) SheetFunc {
	return func(name string, index int) bool {
		if r.aborted {
			return true
		}
		r.mat.NextSheet()
		r.headerRow = 0
		r.prepareHeader(c)
		if r.opts.OnSheet != nil {
			return r.opts.OnSheet(name, index)
		}
		return false
	}
}

// prepareHeader resolves the header from the first row of the range ahead of
// a backwards pass, so records materialized before the loop reaches that row
// already have column names. Forward passes resolve inline, on the first row
// visited. Cell events are suppressed during the pre-read so the header row
// fires them once.
func (r *readRun) prepareHeader(c *SheetCursor) {
	if !r.opts.Backwards || !r.opts.ShouldUseHeader() {
		return
	}
	rng := c.Range()
	if rng.Rows() == 0 {
		return
	}
	saved := c.handlers
	c.Handle(Handlers{Error: saved.Error})
	rows, err := c.ReadMany(rng.StartRow, 1)
	c.Handle(saved)
	if err == nil && len(rows) == 1 && r.mat.ResolveHeader(rows[0]) {
		r.headerRow = rng.StartRow
		r.fireHeader()
	}
}

// record is the per-row handler driving materialization and routing. It
// returns true to abort iteration.
func (r *readRun) record(row models.Row, rowIndex int) bool {
	if r.headerRow > 0 && rowIndex == r.headerRow {
		// Already consumed as the header by the backwards pre-read.
		return false
	}
	if !r.mat.HeaderResolved() {
		if r.mat.ResolveHeader(row) {
			r.headerRow = rowIndex
			r.fireHeader()
			return false
		}
		r.fireHeader()
	}
	rec, err := r.mat.Materialize(row)
	if err != nil {
		r.err = r.reportErr(err)
		r.aborted = true
		return true
	}
	if r.opts.OnRecord != nil && r.opts.OnRecord(rec, rowIndex) {
		return true
	}
	if r.sink != nil {
		if err := r.sink.WriteRecord(rec); err != nil {
			r.err = r.reportErr(fmt.Errorf("write record: %w", err))
			r.aborted = true
			return true
		}
	}
	if r.buffer {
		r.records = append(r.records, rec)
	}
	return false
}

func (r *readRun) fireHeader() {
	if r.opts.OnHeader != nil {
		r.opts.OnHeader(r.mat.Header())
	}
}

// reportErr mirrors the cursor's error routing: a registered handler consumes
// the error and the read stops gracefully without surfacing it.
func (r *readRun) reportErr(err error) error {
	if r.opts.OnError != nil {
		r.opts.OnError(err)
		return nil
	}
	return err
}

// resolveSink picks the sink for this read: the caller's own sink, a
// file-backed built-in sink for Output, or none.
func resolveSink(opts Options) (output.RowSink, io.Closer, error) {
	if opts.Sink != nil {
		return opts.Sink, nil, nil
	}
	if opts.Output == "" {
		return nil, nil, nil
	}
	f, err := os.Create(opts.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	switch opts.FormatOrDefault() {
	case FormatJSON:
		return output.NewJSONSink(f), f, nil
	case FormatCSV:
		return output.NewCSVSink(f), f, nil
	default:
		f.Close()
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownFormat, opts.Format)
	}
}

// finalizeSink finalizes the sink exactly once and closes the file backing
// it, if the facade created one.
func finalizeSink(sink output.RowSink, closer io.Closer) error {
	if sink == nil {
		return nil
	}
	err := sink.Finalize()
	if closer != nil {
		if cerr := closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
