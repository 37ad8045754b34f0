package device

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Fields lists the columns of `arduino-cli board list` in the order the
// tool prints them.
var Fields = [...]string{"Port", "Protocol", "Type", "Board", "FQBN", "Core"}

// noBoardsMessage is printed instead of a table when nothing is attached.
const noBoardsMessage = "no boards found"

// ErrMalformedHeader matches every *HeaderError via errors.Is.
var ErrMalformedHeader = errors.New("malformed listing header")

// HeaderError reports a header line that does not carry the expected columns.
type HeaderError struct {
	Header string
	Field  string
	Reason string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("%v: column %q %s (header %q)", ErrMalformedHeader, e.Field, e.Reason, e.Header)
}

func (e *HeaderError) Is(target error) bool {
	return target == ErrMalformedHeader
}

// Row is one data row of the listing.
type Row struct {
	Port     string
	Protocol string
	Type     string
	Board    string
	FQBN     string
	Core     string
}

// Values returns the row's fields in Fields order.
func (r Row) Values() []string {
	return []string{r.Port, r.Protocol, r.Type, r.Board, r.FQBN, r.Core}
}

// Get returns the value of the named field, or "" for an unknown name.
func (r Row) Get(field string) string {
	for i, name := range Fields {
		if name == field {
			return r.Values()[i]
		}
	}
	return ""
}

func rowFromValues(v []string) Row {
	return Row{Port: v[0], Protocol: v[1], Type: v[2], Board: v[3], FQBN: v[4], Core: v[5]}
}

// Columns holds the starting offset of each field in the header, counted in
// runes. Values can contain spaces ("Arduino Uno"), so rows are cut at these
// offsets rather than split on whitespace.
type Columns [len(Fields)]int

// HeaderIndices locates every field of Fields in header. The first
// occurrence of each name wins, and the offsets must increase in field
// order; anything else is reported as a *HeaderError.
func HeaderIndices(header string) (Columns, error) {
	var cols Columns
	prev := -1
	for i, name := range Fields {
		idx := runeIndex(header, name)
		if idx < 0 {
			return Columns{}, &HeaderError{Header: header, Field: name, Reason: "not found"}
		}
		if idx <= prev {
			return Columns{}, &HeaderError{Header: header, Field: name, Reason: "out of order"}
		}
		cols[i] = idx
		prev = idx
	}
	return cols, nil
}

func runeIndex(s, substr string) int {
	i := strings.Index(s, substr)
	if i < 0 {
		return -1
	}
	return utf8.RuneCountInString(s[:i])
}

// Cut slices line at the column offsets without trimming. The last field
// runs to the end of the line; offsets past the end yield empty strings.
func (c Columns) Cut(line string) []string {
	runes := []rune(line)
	out := make([]string, len(c))
	for i := range c {
		start := min(c[i], len(runes))
		end := len(runes)
		if i+1 < len(c) {
			end = min(c[i+1], len(runes))
		}
		out[i] = string(runes[start:end])
	}
	return out
}

// Row cuts line into a Row with surrounding whitespace trimmed from each
// value. Interior whitespace is kept.
func (c Columns) Row(line string) Row {
	values := c.Cut(line)
	for i := range values {
		values[i] = strings.TrimSpace(values[i])
	}
	return rowFromValues(values)
}

// Table is the listing split into its header and candidate data lines.
type Table struct {
	Header  string
	Columns Columns
	Lines   []string
}

// ParseTable splits raw listing output. The first non-blank line is the
// header; trailing blank lines are dropped and blank lines in between are
// skipped. Output with no content, or only the tool's "No boards found."
// message, gives an empty table.
func ParseTable(raw string) (Table, error) {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	first := 0
	for first < len(lines) && isBlank(lines[first]) {
		first++
	}
	last := len(lines)
	for last > first && isBlank(lines[last-1]) {
		last--
	}
	if first >= last {
		return Table{}, nil
	}

	header := strings.TrimRight(lines[first], " \t")
	if last-first == 1 && strings.HasPrefix(strings.ToLower(strings.TrimSpace(header)), noBoardsMessage) {
		return Table{}, nil
	}

	cols, err := HeaderIndices(header)
	if err != nil {
		return Table{}, err
	}

	table := Table{Header: header, Columns: cols}
	for _, line := range lines[first+1 : last] {
		if isBlank(line) {
			continue
		}
		table.Lines = append(table.Lines, strings.TrimRight(line, "\r"))
	}
	return table, nil
}

// Rows cuts every data line into a Row.
func (t Table) Rows() []Row {
	rows := make([]Row, 0, len(t.Lines))
	for _, line := range t.Lines {
		rows = append(rows, t.Columns.Row(line))
	}
	return rows
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
