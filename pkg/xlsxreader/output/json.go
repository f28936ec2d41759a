package output

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader/models"
)

// JSONSink streams records as one JSON array.
type JSONSink struct {
	w     *bufio.Writer
	wrote bool
	done  bool
}

// NewJSONSink returns a sink writing a JSON array to w. The caller keeps
// ownership of w; Finalize flushes but does not close it.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{w: bufio.NewWriter(w)}
}

// WriteHeaderMarker writes the opening bracket.
func (s *JSONSink) WriteHeaderMarker() error {
	return s.w.WriteByte('[')
}

// WriteRecord appends one record, separated from the previous one by a comma.
func (s *JSONSink) WriteRecord(rec models.Record) error {
	if s.wrote {
		if err := s.w.WriteByte(','); err != nil {
			return err
		}
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := s.w.Write(b); err != nil {
		return err
	}
	s.wrote = true
	return nil
}

// Finalize writes the closing bracket and flushes. Calling it again is a
// no-op.
func (s *JSONSink) Finalize() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.w.WriteByte(']'); err != nil {
		return err
	}
	return s.w.Flush()
}
