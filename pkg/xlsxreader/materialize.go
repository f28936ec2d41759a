package xlsxreader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader/models"
)

// RowMaterializer turns raw rows into a header and records according to the
// header and schema configuration of one read operation. It is stateful: the
// header resolves once per sheet, and a schema mapping failure is reported
// once per read operation no matter how many sheets or rows follow.
type RowMaterializer struct {
	hasHeader bool
	prefix    string
	lowerCase bool
	schema    models.Schema
	epoch1904 bool

	header        []string
	headerDone    bool
	rowsProcessed int
	current       models.Record
	schemaErrSeen bool
}

// NewRowMaterializer builds a materializer for one read operation over a
// workbook with the given date epoch.
func NewRowMaterializer(opts Options, epoch1904 bool) *RowMaterializer {
	return &RowMaterializer{
		hasHeader: opts.ShouldUseHeader(),
		prefix:    opts.HeaderPrefixOrDefault(),
		lowerCase: opts.LowerCaseHeaders,
		schema:    opts.Schema,
		epoch1904: epoch1904,
	}
}

// Header returns the resolved column names.
func (m *RowMaterializer) Header() []string { return m.header }

// HeaderResolved reports whether the header has been resolved for the
// current sheet.
func (m *RowMaterializer) HeaderResolved() bool { return m.headerDone }

// RowsProcessed returns the running count of materialized rows. A consumed
// header row counts as processed.
func (m *RowMaterializer) RowsProcessed() int { return m.rowsProcessed }

// Current returns the most recently materialized record.
func (m *RowMaterializer) Current() models.Record { return m.current }

// NextSheet rearms header resolution for a new sheet. The rows-processed
// counter and the once-per-read schema error suppression carry over.
func (m *RowMaterializer) NextSheet() {
	m.header = nil
	m.headerDone = false
}

// ResolveHeader consumes the first raw row of a sheet. When headers are
// declared present the row's trimmed string forms become the header and the
// row is not emitted as data. Otherwise the header comes from the schema keys
// when a schema is supplied, or from synthesized ordinal names, and the row
// stays ordinary data. It reports whether the row was consumed.
func (m *RowMaterializer) ResolveHeader(first models.Row) bool {
	if m.headerDone {
		return false
	}
	m.headerDone = true
	if m.hasHeader {
		m.header = make([]string, len(first))
		for i, v := range first {
			m.header[i] = m.fold(strings.TrimSpace(stringify(v)))
		}
		m.rowsProcessed++
		return true
	}
	if m.schema != nil {
		m.header = m.schema.Keys()
		return false
	}
	m.header = make([]string, len(first))
	for i := range first {
		m.header[i] = m.fold(fmt.Sprintf("%s%d", m.prefix, i+1))
	}
	return false
}

// Materialize maps one data row onto a record using the resolved header.
// Without a schema the record is keyed directly by header names with values
// taken verbatim. With a schema every value is coerced through its entry's
// cast, absent cells becoming empty strings first; a header column with no
// entry returns a SchemaMappingError exactly once per read operation, after
// which further unmapped columns are skipped silently.
func (m *RowMaterializer) Materialize(row models.Row) (models.Record, error) {
	rec := make(models.Record, len(m.header))
	var mappingErr error
	for i, name := range m.header {
		var v models.CellValue
		if i < len(row) {
			v = row[i]
		}
		if m.schema == nil {
			rec[name] = v
			continue
		}
		entry, ok := m.schema[name]
		if !ok {
			if !m.schemaErrSeen {
				m.schemaErrSeen = true
				mappingErr = &SchemaMappingError{Column: name}
			}
			continue
		}
		if v == nil {
			v = ""
		}
		rec[entry.Prop] = m.cast(entry.Cast, v)
	}
	m.rowsProcessed++
	m.current = rec
	if mappingErr != nil {
		return rec, mappingErr
	}
	return rec, nil
}

func (m *RowMaterializer) cast(c models.Cast, v models.CellValue) models.CellValue {
	switch c.Kind {
	case models.CastNumber:
		return toNumber(v)
	case models.CastString:
		return stringify(v)
	case models.CastDate:
		return TryConvertDate(v, m.epoch1904)
	case models.CastCustom:
		if c.Func != nil {
			return c.Func(v)
		}
	}
	return v
}

func (m *RowMaterializer) fold(s string) string {
	if m.lowerCase {
		return strings.ToLower(s)
	}
	return s
}

// toNumber coerces v to a float64, returning v unchanged when it does not
// parse as one.
func toNumber(v models.CellValue) models.CellValue {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case bool:
		if t {
			return float64(1)
		}
		return float64(0)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return v
}

// stringify renders a cell value as its string form; absent cells become the
// empty string.
func stringify(v models.CellValue) string {
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
	default:
		return fmt.Sprint(t)
	}
}
