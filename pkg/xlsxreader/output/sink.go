// Package output implements row sinks: serialization targets that receive a
// header marker, a stream of records, and a single finalize, in that order.
package output

import "github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader/models"

// RowSink receives serialized records in strict order: one header marker,
// zero or more record writes, then exactly one Finalize. The reader holds to
// that order on success and abort alike.
type RowSink interface {
	// WriteHeaderMarker writes the stream's opening marker.
	WriteHeaderMarker() error
	// WriteRecord appends one serialized record, managing inter-record
	// separators.
	WriteRecord(rec models.Record) error
	// Finalize writes any closing marker and releases the sink.
	Finalize() error
}
