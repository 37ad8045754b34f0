package device

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/buckleypaul/catbot/internal/config"
)

// Kind is the outcome of classifying a listing.
type Kind int

const (
	NoneFound Kind = iota
	ExactlyOne
	MultipleFound
)

func (k Kind) String() string {
	switch k {
	case NoneFound:
		return "none"
	case ExactlyOne:
		return "one"
	case MultipleFound:
		return "multiple"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var (
	ErrNoneFound     = errors.New("no boards found")
	ErrMultipleFound = errors.New("multiple boards found")
)

// Classification is the decision taken over the candidate rows of one
// listing. It is computed fresh on every discovery.
type Classification struct {
	Kind Kind
	Rows []Row
	// Saved is the board config written for ExactlyOne, if any.
	Saved *config.BoardConfig
}

// Board returns the single matched row for ExactlyOne.
func (c Classification) Board() (Row, bool) {
	if c.Kind != ExactlyOne || len(c.Rows) != 1 {
		return Row{}, false
	}
	return c.Rows[0], true
}

// Err maps NoneFound and MultipleFound to their sentinel errors.
func (c Classification) Err() error {
	switch c.Kind {
	case NoneFound:
		return ErrNoneFound
	case MultipleFound:
		return fmt.Errorf("%w: %d candidates", ErrMultipleFound, len(c.Rows))
	}
	return nil
}

// BoardConfigFor derives the persisted record from a row.
func BoardConfigFor(r Row) config.BoardConfig {
	return config.BoardConfig{FQBN: r.FQBN, Port: r.Port, Protocol: r.Protocol}
}

// BoardWriter persists the board chosen by an ExactlyOne classification.
type BoardWriter interface {
	WriteBoard(config.BoardConfig) error
}

// Classifier turns raw `board list` output into a Classification.
type Classifier struct {
	// Vendor is matched case-insensitively against each raw row. Empty
	// means config.DefaultVendor.
	Vendor string
	// Debug keeps every row, vendor or not, and never writes a board config.
	Debug bool
	// Boards receives the config on ExactlyOne. Nil skips persistence.
	Boards BoardWriter
	Logger *slog.Logger
}

// Classify parses raw and decides between none, one and many candidate
// boards. A malformed header is returned as an error with no
// classification. On ExactlyOne the board config is written through
// Boards; a write failure is returned alongside the classification.
func (c Classifier) Classify(raw string) (Classification, error) {
	table, err := ParseTable(raw)
	if err != nil {
		return Classification{}, err
	}

	vendor := strings.ToLower(c.Vendor)
	if vendor == "" {
		vendor = config.DefaultVendor
	}

	var rows []Row
	for _, line := range table.Lines {
		if !c.Debug && !strings.Contains(strings.ToLower(line), vendor) {
			continue
		}
		rows = append(rows, table.Columns.Row(line))
	}

	result := Classification{Rows: rows}
	switch len(rows) {
	case 0:
		result.Kind = NoneFound
	case 1:
		result.Kind = ExactlyOne
	default:
		result.Kind = MultipleFound
	}

	logger := c.logger()
	logger.Info("boards classified",
		"result", result.Kind.String(),
		"candidates", len(rows),
		"rows", len(table.Lines),
		"debug", c.Debug,
	)

	if result.Kind != ExactlyOne || c.Debug || c.Boards == nil {
		return result, nil
	}

	board := BoardConfigFor(rows[0])
	if err := c.Boards.WriteBoard(board); err != nil {
		return result, fmt.Errorf("save board config: %w", err)
	}
	result.Saved = &board
	logger.Info("board config saved", "fqbn", board.FQBN, "port", board.Port, "protocol", board.Protocol)
	return result, nil
}

func (c Classifier) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
