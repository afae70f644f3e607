package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxColumns is the known width of the issue export.
const DefaultMaxColumns = 23

// ErrNoHeader is returned when the input has no header row.
var ErrNoHeader = errors.New("missing header row")

// nullMarkers are cell texts read as missing values.
var nullMarkers = map[string]struct{}{
	"#N/A": {}, "#NA": {}, "N/A": {}, "n/a": {}, "NA": {}, "<NA>": {},
	"NULL": {}, "null": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {}, "None": {},
}

// ParseOptions tunes Parse.
type ParseOptions struct {
	// MaxColumns caps the header width; columns past it are dropped.
	// Zero means no limit.
	MaxColumns int
	// Location is used for date cells without a zone. Defaults to UTC.
	Location *time.Location
}

// ParseString parses delimited text held in memory.
func ParseString(raw string, opts ParseOptions) (*Table, error) {
	return Parse(strings.NewReader(raw), opts)
}

// Parse reads comma-delimited text with a header row into a Table. Malformed
// cells never fail the parse; they become null. Only unreadable input or a
// missing header is an error.
func Parse(r io.Reader, opts ParseOptions) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	names := normalizeHeader(header)
	if opts.MaxColumns > 0 && len(names) > opts.MaxColumns {
		names = names[:opts.MaxColumns]
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if isBlankRecord(record) {
			continue
		}
		records = append(records, record)
	}

	columns := make([]Column, len(names))
	cells := make([][]Value, len(names))
	for i, name := range names {
		raw := make([]string, len(records))
		for j, record := range records {
			if i < len(record) {
				raw[j] = record[i]
			}
		}
		columns[i] = Column{Name: name}
		columns[i].Type, cells[i] = typeColumn(name, raw, opts.Location)
	}

	rows := make([]Row, len(records))
	for j := range records {
		row := make(Row, len(names))
		for i, name := range names {
			row[name] = cells[i][j]
		}
		rows[j] = row
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

// typeColumn converts one column's raw cells. Date columns parse per cell;
// other columns are numeric only when every present cell is a number.
func typeColumn(name string, raw []string, loc *time.Location) (Kind, []Value) {
	values := make([]Value, len(raw))

	if IsDateColumn(name) {
		for i, cell := range raw {
			if isNullCell(cell) {
				continue
			}
			if t, ok := ParseDate(cell, loc); ok {
				values[i] = Time(t)
			}
		}
		return KindTime, values
	}

	numeric := true
	present := 0
	for _, cell := range raw {
		if isNullCell(cell) {
			continue
		}
		present++
		if _, ok := parseFloat(cell); !ok {
			numeric = false
			break
		}
	}

	if numeric && present > 0 {
		for i, cell := range raw {
			if f, ok := parseFloat(cell); ok && !isNullCell(cell) {
				values[i] = Number(f)
			}
		}
		return KindNumber, values
	}

	for i, cell := range raw {
		if isNullCell(cell) {
			continue
		}
		values[i] = Text(cell)
	}
	return KindText, values
}

func normalizeHeader(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if strings.TrimSpace(name) == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			base := name
			for k := n + 1; ; k++ {
				candidate := base + "." + strconv.Itoa(k)
				if _, taken := seen[candidate]; !taken {
					seen[base] = k
					name = candidate
					break
				}
			}
		}
		seen[name] = 0
		names[i] = name
	}
	return names
}

func isNullCell(cell string) bool {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return true
	}
	_, ok := nullMarkers[trimmed]
	return ok
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if cell != "" {
			return false
		}
	}
	return true
}
