// Package testutil provides test fixtures for the grid engine and sheet loaders.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// SheetFixture is a small table used to exercise loaders and the UI.
type SheetFixture struct {
	Description string     `json:"description"`
	Headers     []string   `json:"headers"`
	Rows        [][]string `json:"rows"`
}

// GeneratorConfig controls sheet generation.
type GeneratorConfig struct {
	Seed         int64   // Random seed for determinism (0 = use current time)
	HeaderPrefix string  // Prefix for column headers (default: "col")
	NumericRatio float64 // Share of columns holding numbers (default: 0.5)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:         42, // Deterministic
		HeaderPrefix: "col",
		NumericRatio: 0.5,
	}
}

// Generator creates sheet fixtures.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.HeaderPrefix == "" {
		cfg.HeaderPrefix = "col"
	}
	if cfg.NumericRatio <= 0 {
		cfg.NumericRatio = 0.5
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Sheet creates a rows x cols fixture. The first ceil(cols*NumericRatio)
// columns hold integers, the rest hold words.
func (g *Generator) Sheet(rows, cols int) SheetFixture {
	headers := make([]string, cols)
	for c := range headers {
		headers[c] = fmt.Sprintf("%s%d", g.cfg.HeaderPrefix, c)
	}

	numeric := int(float64(cols)*g.cfg.NumericRatio + 0.999)
	data := make([][]string, rows)
	for r := range data {
		row := make([]string, cols)
		for c := range row {
			if c < numeric {
				row[c] = strconv.Itoa(g.rng.Intn(1000))
			} else {
				row[c] = sampleWords[g.rng.Intn(len(sampleWords))]
			}
		}
		data[r] = row
	}

	return SheetFixture{
		Description: fmt.Sprintf("%dx%d sheet, %d numeric columns", rows, cols, numeric),
		Headers:     headers,
		Rows:        data,
	}
}

// Labeled creates a rows x cols fixture whose cells name their coordinate,
// e.g. "r3c7".
func Labeled(rows, cols int) SheetFixture {
	headers := make([]string, cols)
	for c := range headers {
		headers[c] = fmt.Sprintf("c%d", c)
	}
	data := make([][]string, rows)
	for r := range data {
		row := make([]string, cols)
		for c := range row {
			row[c] = fmt.Sprintf("r%dc%d", r, c)
		}
		data[r] = row
	}
	return SheetFixture{
		Description: fmt.Sprintf("%dx%d labeled sheet", rows, cols),
		Headers:     headers,
		Rows:        data,
	}
}

var sampleWords = []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india", "juliet"}

// ToCSV renders a fixture as CSV with a header row.
func ToCSV(f SheetFixture) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write(f.Headers)
	_ = w.WriteAll(f.Rows)
	return sb.String()
}

// ToJSONL renders a fixture as a headers line followed by one JSON array per
// row.
func ToJSONL(f SheetFixture) string {
	var sb strings.Builder
	head, err := json.Marshal(map[string][]string{"headers": f.Headers})
	if err != nil {
		return ""
	}
	sb.Write(head)
	sb.WriteByte('\n')
	for _, row := range f.Rows {
		data, err := json.Marshal(row)
		if err != nil {
			continue
		}
		sb.Write(data)
		sb.WriteByte('\n')
	}
	return sb.String()
}
