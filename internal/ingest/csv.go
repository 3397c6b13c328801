// Package ingest turns raw CSV bytes into header-keyed rows.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrEmptyInput is returned when the input holds no header row.
var ErrEmptyInput = errors.New("csv input is empty")

// Encodings reported in Result.Encoding.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseError is a non-fatal problem with one CSV line.
type ParseError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Result is the tokenized content of one CSV file.
type Result struct {
	Headers   []string            `json:"headers"`
	Rows      []map[string]string `json:"-"`
	Errors    []ParseError        `json:"errors"`
	Delimiter rune                `json:"-"`
	Encoding  string              `json:"encoding"`
}

// Parse reads the whole input and tokenizes it. The first record is the
// header row. Rows with a wrong field count are kept and reported in
// Result.Errors; blank lines are skipped.
func Parse(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes tokenizes data. A leading UTF-8 byte order mark is dropped
// and input that is not valid UTF-8 is decoded as Windows-1252.
func ParseBytes(data []byte) (*Result, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	res := &Result{Encoding: EncodingUTF8}
	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		res.Encoding = EncodingWindows1252
		src = transform.NewReader(src, charmap.Windows1252.NewDecoder())
	}
	text, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to decode csv: %w", err)
	}
	if len(bytes.TrimSpace(text)) == 0 {
		return nil, ErrEmptyInput
	}

	res.Delimiter = detectDelimiter(text)
	cr := csv.NewReader(bytes.NewReader(text))
	cr.Comma = res.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				res.Errors = append(res.Errors, ParseError{Line: pe.Line, Message: pe.Err.Error()})
				continue
			}
			return nil, fmt.Errorf("failed to tokenize csv: %w", err)
		}
		if blank(record) {
			continue
		}

		if res.Headers == nil {
			res.Headers = uniqueHeaders(record)
			continue
		}

		if len(record) != len(res.Headers) {
			line, _ := cr.FieldPos(0)
			res.Errors = append(res.Errors, ParseError{
				Line:    line,
				Message: fmt.Sprintf("expected %d fields, got %d", len(res.Headers), len(record)),
			})
		}
		row := make(map[string]string, len(res.Headers))
		for i, h := range res.Headers {
			if i < len(record) {
				row[h] = record[i]
			}
		}
		res.Rows = append(res.Rows, row)
	}

	if res.Headers == nil {
		return nil, ErrEmptyInput
	}
	return res, nil
}

// uniqueHeaders trims header cells and renames repeats as Name_1, Name_2
// so every column keeps its own key.
func uniqueHeaders(record []string) []string {
	out := make([]string, len(record))
	seen := make(map[string]bool, len(record))
	for i, h := range record {
		h = strings.TrimSpace(h)
		name := h
		for n := 1; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", h, n)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// detectDelimiter picks the most frequent of comma, semicolon and tab on
// the first non-empty line, defaulting to comma.
func detectDelimiter(text []byte) rune {
	var first []byte
	for _, line := range bytes.Split(text, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			first = line
			break
		}
	}
	best, bestCount := ',', bytes.Count(first, []byte(","))
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(first, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
