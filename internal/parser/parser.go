package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/raidstats/zonetracker/internal/util"
)

// ErrInsufficientArgs is returned when a command carries fewer arguments
// than its format requires.
var ErrInsufficientArgs = errors.New("insufficient arguments")

// parseIntFromFloat parses a string that may be an integer ("32") or float ("32.00") into int64.
// The game bridge serializes every number as a float.
func parseIntFromFloat(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("parseIntFromFloat: %q is not a valid int64", s)
	}
	return int64(f), nil
}

// parseFinite parses a float and rejects NaN and infinities, which
// strconv accepts but JSON cannot encode.
func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("parseFinite: %q is not a finite number", s)
	}
	return f, nil
}

// Parser provides pure []string -> domain struct conversion.
// It has zero external dependencies beyond a logger.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// prepare cleans the raw arguments and checks there are at least n.
func prepare(command string, data []string, n int) ([]string, error) {
	if len(data) < n {
		return nil, fmt.Errorf("%s: want %d args, got %d: %w", command, n, len(data), ErrInsufficientArgs)
	}
	return util.CleanArgs(data), nil
}
