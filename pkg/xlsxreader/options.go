// Package xlsxreader streams rows out of spreadsheet workbooks one at a time
// instead of materializing whole sheets, so very large sheets can be
// processed with bounded memory. Rows can be re-expressed through a
// column-to-property schema and emitted to a serialized sink as they are
// produced.
package xlsxreader

import (
	"github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader/models"
	"github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader/output"
)

// Format identifies a built-in output serialization.
type Format string

const (
	// FormatJSON streams records as one JSON array.
	FormatJSON Format = "json"
	// FormatCSV streams records as CSV lines under a header row.
	FormatCSV Format = "csv"
)

// DefaultHeaderPrefix names synthesized header columns.
const DefaultHeaderPrefix = "header_"

// Options configures a read operation.
type Options struct {
	// Input is the workbook path. Required by Read, ignored by ReadFrom.
	Input string
	// Output is the path the serialized stream is written to. Empty disables
	// the file sink.
	Output string
	// Sink receives serialized records directly. Takes precedence over
	// Output.
	Sink output.RowSink
	// Format selects the built-in sink used for Output (default json).
	Format Format
	// Sheet selects the sheet by name or decimal 0-based index. Empty means
	// the first sheet.
	Sheet string
	// AllSheets reads every sheet in workbook order instead of one.
	AllSheets bool
	// HasHeader declares whether the first row holds column names. Nil
	// defaults to true.
	HasHeader *bool
	// HeaderPrefix names synthesized header columns (default "header_").
	HeaderPrefix string
	// LowerCaseHeaders folds declared and synthesized header names to lower
	// case.
	LowerCaseHeaders bool
	// Schema maps source columns to target properties with optional casts.
	Schema models.Schema
	// Backwards iterates rows from the end of the used range.
	Backwards bool
	// UseMemoryForItems buffers records into the Result. Buffering only
	// engages when no OnRecord callback and no sink would consume the
	// records instead.
	UseMemoryForItems bool

	// OnHeader runs once per sheet with the resolved column names.
	OnHeader func(header []string)
	// OnSheet runs before each sheet's rows in AllSheets mode; returning
	// true skips the remaining sheets.
	OnSheet SheetFunc
	// OnCell runs for every cell read.
	OnCell CellFunc
	// OnRecord receives each materialized record; returning true aborts the
	// read.
	OnRecord func(rec models.Record, rowIndex int) bool
	// OnFinish runs after finalization with the buffered records (nil when
	// records were streamed) and the total row count.
	OnFinish func(records []models.Record, rows int)
	// OnError receives reader errors; when set, the failing call returns a
	// null result instead of an error.
	OnError ErrorFunc
}

// DefaultOptions returns the default read configuration.
func DefaultOptions() Options {
	return Options{
		Format:       FormatJSON,
		HeaderPrefix: DefaultHeaderPrefix,
	}
}

// ShouldUseHeader reports whether the first row is treated as column names.
func (o Options) ShouldUseHeader() bool {
	if o.HasHeader != nil {
		return *o.HasHeader
	}
	return true
}

// HeaderPrefixOrDefault returns the synthesized-column prefix.
func (o Options) HeaderPrefixOrDefault() string {
	if o.HeaderPrefix != "" {
		return o.HeaderPrefix
	}
	return DefaultHeaderPrefix
}

// FormatOrDefault returns the output format tag.
func (o Options) FormatOrDefault() Format {
	if o.Format != "" {
		return o.Format
	}
	return FormatJSON
}

// ShouldBuffer reports whether records accumulate in memory: only when asked
// for, and only when neither a per-row callback nor a sink consumes them.
func (o Options) ShouldBuffer() bool {
	return o.UseMemoryForItems && o.OnRecord == nil && o.Sink == nil && o.Output == ""
}
