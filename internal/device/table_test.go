package device

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingTwoArduinos = `Port         Protocol Type              Board Name                FQBN             Core
/dev/ttyACM0 serial   Serial Port (USB) Arduino Uno               arduino:avr:uno  arduino:avr
/dev/ttyS0   serial   Serial Port       Unknown
/dev/ttyACM1 serial   Serial Port (USB) Arduino Mega or Mega 2560 arduino:avr:mega arduino:avr

`

// alignedTable pads every cell to its column width, the way the listing
// tool lays out its output.
func alignedTable(header []string, rows ...[]string) string {
	all := append([][]string{header}, rows...)
	widths := make([]int, len(header))
	for _, r := range all {
		for i, cell := range r {
			if n := len([]rune(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	var sb strings.Builder
	for _, r := range all {
		var line strings.Builder
		for i, cell := range r {
			line.WriteString(cell)
			if i < len(r)-1 {
				line.WriteString(strings.Repeat(" ", widths[i]-len([]rune(cell))+2))
			}
		}
		sb.WriteString(strings.TrimRight(line.String(), " "))
		sb.WriteString("\n")
	}
	return sb.String()
}

func TestHeaderIndices(t *testing.T) {
	cols, err := HeaderIndices("Port         Protocol Type              Board Name                FQBN             Core")
	require.NoError(t, err)
	assert.Equal(t, Columns{0, 13, 22, 40, 66, 83}, cols)
}

func TestHeaderIndicesRoundTrip(t *testing.T) {
	headers := []string{
		"Port Protocol Type Board FQBN Core",
		"Port  Protocol  Type  Board  FQBN         Core",
		"  Port     Protocol Type Board Name     FQBN     Core   ",
		"Port\tProtocol\tType\tBoard\tFQBN\tCore",
	}
	lines := []string{
		"/dev/ttyACM0  serial  Serial Port (USB)  Arduino Uno  arduino:avr:uno  arduino:avr",
		"COM3",
		"",
		"ümlaut-port ß protocol with spaces and more text than the header has columns",
	}

	for _, header := range headers {
		cols, err := HeaderIndices(header)
		require.NoError(t, err, header)
		for i := 1; i < len(cols); i++ {
			assert.Greater(t, cols[i], cols[i-1], "offsets must increase for %q", header)
		}

		for _, line := range lines {
			parts := cols.Cut(line)
			runes := []rune(line)
			prefix := string(runes[:min(cols[0], len(runes))])
			assert.Equal(t, line, prefix+strings.Join(parts, ""), "re-join of %q with header %q", line, header)
		}
	}
}

func TestHeaderIndicesMissingField(t *testing.T) {
	for _, field := range Fields {
		header := strings.Replace("Port Protocol Type Board FQBN Core", field, "Xxxx", 1)
		_, err := HeaderIndices(header)
		require.Error(t, err, "header without %s", field)
		assert.True(t, errors.Is(err, ErrMalformedHeader))

		var headerErr *HeaderError
		require.True(t, errors.As(err, &headerErr))
		assert.Equal(t, field, headerErr.Field)
	}
}

func TestHeaderIndicesOutOfOrder(t *testing.T) {
	_, err := HeaderIndices("Port Protocol Board Type FQBN Core")

	var headerErr *HeaderError
	require.True(t, errors.As(err, &headerErr))
	assert.Equal(t, "Board", headerErr.Field)
	assert.Equal(t, "out of order", headerErr.Reason)
}

func TestColumnsRowKeepsInteriorSpaces(t *testing.T) {
	table, err := ParseTable(listingTwoArduinos)
	require.NoError(t, err)
	rows := table.Rows()
	require.Len(t, rows, 3)

	assert.Equal(t, Row{
		Port:     "/dev/ttyACM1",
		Protocol: "serial",
		Type:     "Serial Port (USB)",
		Board:    "Arduino Mega or Mega 2560",
		FQBN:     "arduino:avr:mega",
		Core:     "arduino:avr",
	}, rows[2])
	assert.Equal(t, "Arduino Mega or Mega 2560", rows[2].Get("Board"))
	assert.Equal(t, "", rows[2].Get("Vendor"))
}

func TestColumnsRowShortLine(t *testing.T) {
	table, err := ParseTable(listingTwoArduinos)
	require.NoError(t, err)

	row := table.Rows()[1]
	assert.Equal(t, "/dev/ttyS0", row.Port)
	assert.Equal(t, "Unknown", row.Board)
	assert.Empty(t, row.FQBN)
	assert.Empty(t, row.Core)
}

func TestColumnsRowCountsRunes(t *testing.T) {
	text := alignedTable(
		[]string{"Port", "Protocol", "Type", "Board", "FQBN", "Core"},
		[]string{"/dev/ttyACM0", "serial", "Sériel Pört", "Arduino Ünø", "arduino:avr:uno", "arduino:avr"},
	)
	table, err := ParseTable(text)
	require.NoError(t, err)

	row := table.Rows()[0]
	assert.Equal(t, "Sériel Pört", row.Type)
	assert.Equal(t, "Arduino Ünø", row.Board)
	assert.Equal(t, "arduino:avr:uno", row.FQBN)
}

func TestParseTableEmpty(t *testing.T) {
	for _, raw := range []string{"", "\n", "  \n\n\t\n", "No boards found.\n", "\nNo boards found.\n\n"} {
		table, err := ParseTable(raw)
		require.NoError(t, err, "%q", raw)
		assert.Empty(t, table.Lines, "%q", raw)
	}
}

func TestParseTableHeaderOnly(t *testing.T) {
	table, err := ParseTable("Port Protocol Type Board FQBN Core\n\n")
	require.NoError(t, err)
	assert.Empty(t, table.Lines)
	assert.Equal(t, "Port Protocol Type Board FQBN Core", table.Header)
}

func TestParseTableCRLF(t *testing.T) {
	raw := strings.ReplaceAll(listingTwoArduinos, "\n", "\r\n")
	table, err := ParseTable(raw)
	require.NoError(t, err)
	require.Len(t, table.Lines, 3)
	assert.Equal(t, "arduino:avr", table.Rows()[0].Core)
}

func TestParseTableMalformed(t *testing.T) {
	_, err := ParseTable("Port Protocol Board FQBN Core\n/dev/ttyACM0 serial Uno arduino:avr:uno arduino:avr\n")
	assert.True(t, errors.Is(err, ErrMalformedHeader))
}
