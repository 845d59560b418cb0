package datasource

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	json "github.com/goccy/go-json"
)

// DefaultMaxLineSize is the longest JSONL line read before it is skipped.
const DefaultMaxLineSize = 1024 * 1024 * 10

// ParseOptions configures ReadJSONL.
type ParseOptions struct {
	// WarningHandler receives messages about skipped lines. Nil discards them.
	WarningHandler func(string)
	// BufferSize overrides DefaultMaxLineSize.
	BufferSize int
}

type headerLine struct {
	Headers []string `json:"headers"`
}

// ReadJSONL parses one row per line. A line is either a JSON array of values
// or a JSON object whose keys become columns in first-seen order (keys new to
// a line are added sorted). The first line may be {"headers": [...]}.
// Malformed lines are skipped with a warning.
func ReadJSONL(r io.Reader, opts ParseOptions) (*Sheet, error) {
	maxCapacity := opts.BufferSize
	if maxCapacity <= 0 {
		maxCapacity = DefaultMaxLineSize
	}
	warn := opts.WarningHandler
	if warn == nil {
		warn = func(string) {}
	}
	reader := bufio.NewReaderSize(r, maxCapacity)

	sheet := &Sheet{}
	columns := map[string]int{}
	lineNum := 0
	for {
		lineNum++
		line, isPrefix, err := reader.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading JSONL stream at line %d: %w", lineNum, err)
		}
		if isPrefix {
			warn(fmt.Sprintf("skipping line %d: line too long (exceeds %d bytes)", lineNum, maxCapacity))
			for isPrefix {
				_, isPrefix, err = reader.ReadLine()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return nil, fmt.Errorf("error skipping long line at line %d: %w", lineNum, err)
				}
			}
			continue
		}

		line = bytes.TrimSpace(line)
		if lineNum == 1 {
			line = bytes.TrimPrefix(line, []byte("\xef\xbb\xbf"))
		}
		if len(line) == 0 {
			continue
		}

		switch line[0] {
		case '[':
			var values []any
			if err := json.Unmarshal(line, &values); err != nil {
				warn(fmt.Sprintf("skipping malformed JSON on line %d: %v", lineNum, err))
				continue
			}
			row := make([]string, len(values))
			for i, v := range values {
				row[i] = formatValue(v)
			}
			sheet.Rows = append(sheet.Rows, row)

		case '{':
			if lineNum == 1 {
				var h headerLine
				if err := json.Unmarshal(line, &h); err == nil && h.Headers != nil {
					sheet.Headers = h.Headers
					for i, name := range h.Headers {
						columns[name] = i
					}
					continue
				}
			}
			var obj map[string]any
			if err := json.Unmarshal(line, &obj); err != nil {
				warn(fmt.Sprintf("skipping malformed JSON on line %d: %v", lineNum, err))
				continue
			}
			var fresh []string
			for k := range obj {
				if _, ok := columns[k]; !ok {
					fresh = append(fresh, k)
				}
			}
			slices.Sort(fresh)
			for _, k := range fresh {
				columns[k] = len(sheet.Headers)
				sheet.Headers = append(sheet.Headers, k)
			}
			row := make([]string, len(sheet.Headers))
			for k, v := range obj {
				row[columns[k]] = formatValue(v)
			}
			sheet.Rows = append(sheet.Rows, row)

		default:
			warn(fmt.Sprintf("skipping line %d: expected a JSON array or object", lineNum))
		}
	}
	return sheet, nil
}

// LoadJSONL reads a JSONL file.
func LoadJSONL(path string, opts ParseOptions) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open JSONL file: %w", err)
	}
	defer f.Close()

	sheet, err := ReadJSONL(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sheet.Name = filepath.Base(path)
	return sheet, nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	}
}
