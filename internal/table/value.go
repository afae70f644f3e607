package table

import (
	"cmp"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the type carried by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindTime
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindTime:
		return "datetime"
	case KindText:
		return "text"
	default:
		return "null"
	}
}

// Value is a single table cell. The zero Value is null.
type Value struct {
	kind Kind
	text string
	num  float64
	tm   time.Time
}

// Null returns the null cell value.
func Null() Value { return Value{} }

// Text returns a text cell.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number returns a numeric cell. Non-finite numbers are stored as null.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Time returns a date-time cell.
func Time(t time.Time) Value { return Value{kind: KindTime, tm: t} }

// Kind reports the cell type.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell is absent.
func (v Value) IsNull() bool { return v.kind == KindNull }

// String renders the cell as text. Null renders as the empty string and
// date-times as RFC 3339.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindTime:
		return v.tm.Format(time.RFC3339)
	default:
		return ""
	}
}

// Float coerces the cell to a number. Text cells are parsed; anything that
// does not coerce reports false.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		return parseFloat(v.text)
	default:
		return 0, false
	}
}

// TimeValue returns the date-time held by the cell.
func (v Value) TimeValue() (time.Time, bool) {
	if v.kind != KindTime {
		return time.Time{}, false
	}
	return v.tm, true
}

// Equal reports whether two cells hold the same kind and value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	return Compare(v, o) == 0
}

// Compare orders two non-null cells. Cells of different kinds order by kind
// (numbers, then date-times, then text). Null cells order after everything.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind == KindNull {
			return 1
		}
		if b.kind == KindNull {
			return -1
		}
		return cmp.Compare(a.kind, b.kind)
	}
	switch a.kind {
	case KindNumber:
		return cmp.Compare(a.num, b.num)
	case KindTime:
		return a.tm.Compare(b.tm)
	case KindText:
		return strings.Compare(a.text, b.text)
	default:
		return 0
	}
}

func parseFloat(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
