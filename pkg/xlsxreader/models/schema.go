package models

import "sort"

// CastKind identifies how a schema entry transforms a source cell value.
// The set is closed so callers can inspect the cast kind directly instead of
// comparing function identities.
type CastKind int

const (
	// CastNone passes the value through unchanged.
	CastNone CastKind = iota
	// CastNumber coerces the value to a float64.
	CastNumber
	// CastString coerces the value to its string form.
	CastString
	// CastDate converts a serial day count to a time.Time.
	CastDate
	// CastCustom applies a caller-supplied function.
	CastCustom
)

// Cast describes a schema entry's value conversion. Func is consulted only
// when Kind is CastCustom. The zero value passes values through unchanged.
type Cast struct {
	Kind CastKind
	Func func(CellValue) CellValue
}

// NumberCast returns a cast coercing values to float64.
func NumberCast() Cast { return Cast{Kind: CastNumber} }

// StringCast returns a cast coercing values to their string form.
func StringCast() Cast { return Cast{Kind: CastString} }

// DateCast returns a cast converting serial day counts to time.Time.
func DateCast() Cast { return Cast{Kind: CastDate} }

// CustomCast returns a cast applying fn to each value.
func CustomCast(fn func(CellValue) CellValue) Cast {
	return Cast{Kind: CastCustom, Func: fn}
}

// Entry maps one source column to a target property with an optional cast.
type Entry struct {
	// Prop is the target property name in the materialized record.
	Prop string
	// Cast transforms the cell value before it is stored.
	Cast Cast
}

// Schema maps source column names to entries. It is caller-supplied, read-only
// configuration for the lifetime of one read operation. A header column with
// no entry is unmapped; encountering one during a schema read stops the read.
type Schema map[string]Entry

// Keys returns the column names in sorted order, giving the schema a
// deterministic column sequence when it stands in for a declared header.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
