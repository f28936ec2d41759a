package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader/models"
)

// CSVSink streams records as CSV lines under a single header line.
type CSVSink struct {
	w       *csv.Writer
	columns []string
	done    bool
}

// NewCSVSink returns a sink writing CSV to w. When columns are given they fix
// the column order and the header line is written with the header marker;
// otherwise the order is derived from the first record's sorted keys.
func NewCSVSink(w io.Writer, columns ...string) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w), columns: columns}
}

// WriteHeaderMarker writes the header line when the columns are known up
// front.
func (s *CSVSink) WriteHeaderMarker() error {
	if len(s.columns) == 0 {
		return nil
	}
	return s.w.Write(s.columns)
}

// WriteRecord appends one record as a CSV line.
func (s *CSVSink) WriteRecord(rec models.Record) error {
	if len(s.columns) == 0 {
		s.columns = make([]string, 0, len(rec))
		for k := range rec {
			s.columns = append(s.columns, k)
		}
		sort.Strings(s.columns)
		if err := s.w.Write(s.columns); err != nil {
			return err
		}
	}
	fields := make([]string, len(s.columns))
	for i, col := range s.columns {
		fields[i] = formatField(rec[col])
	}
	return s.w.Write(fields)
}

// Finalize flushes the stream. Calling it again is a no-op.
func (s *CSVSink) Finalize() error {
	if s.done {
		return nil
	}
	s.done = true
	s.w.Flush()
	return s.w.Error()
}

func formatField(v models.CellValue) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
