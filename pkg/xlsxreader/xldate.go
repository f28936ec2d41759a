package xlsxreader

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bigabdoul/fast-xlsx-reader/pkg/xlsxreader/models"
)

const (
	// epochOffsetDays is the day count between the 1900 spreadsheet epoch and
	// the Unix epoch.
	epochOffsetDays = 70*365 + 19
	// epoch1904OffsetDays is the serial day offset of the 1904 epoch relative
	// to the 1900 epoch.
	epoch1904OffsetDays = 1462

	msPerDay = 24 * 60 * 60 * 1000
	halfDay  = 12 * 60 * 60 * 1000
)

// ParseDate converts a spreadsheet serial day count to a UTC instant. The
// fractional part carries the time of day, rounded to the nearest
// millisecond; a fixed half-day shift normalizes the time of day.
// ParseDate(1, false) is 1899-12-31T12:00:00Z.
func ParseDate(serial float64, epoch1904 bool) time.Time {
	if epoch1904 {
		serial += epoch1904OffsetDays
	}
	ms := math.Round((serial - epochOffsetDays) * msPerDay)
	return time.UnixMilli(int64(ms) + halfDay).UTC()
}

// dateLayouts are tried in order when a string is not an integer serial.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// TryConvertDate converts value to a time.Time when it looks like a date:
// numbers are serial day counts, strings are tried as integer serials first
// and as calendar dates second. Anything unconvertible comes back unchanged;
// conversion never fails, it only degrades.
func TryConvertDate(value models.CellValue, epoch1904 bool) models.CellValue {
	switch v := value.(type) {
	case time.Time:
		return v
	case float64:
		return ParseDate(v, epoch1904)
	case int64:
		return ParseDate(float64(v), epoch1904)
	case int:
		return ParseDate(float64(v), epoch1904)
	}
	s := strings.TrimSpace(stringify(value))
	if n, err := strconv.Atoi(s); err == nil {
		return ParseDate(float64(n), epoch1904)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return value
}
