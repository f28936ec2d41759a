// Package models defines the data structures shared by the cursor, the
// materializer and the workbook adapters.
package models

// CellValue is a single cell value: float64 or int64 for numeric cells,
// string for text, bool for booleans. A nil CellValue marks an absent cell,
// which is distinct from an empty string.
type CellValue = any

// Row is one row of cells covering the sheet's used range, one entry per
// column from Range.StartCol through Range.EndCol.
type Row []CellValue

// Record maps target property names to cast cell values. Records are created
// fresh per row and have no identity beyond the call that produced them.
type Record map[string]CellValue
