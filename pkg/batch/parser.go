// Package batch turns inventory export files into validated, enriched records.
package batch

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse decodes r according to format.
func Parse(r io.Reader, format Format) (*Result, error) {
	switch format {
	case FormatCSV:
		return ParseCSV(r)
	case FormatXLSX:
		return ParseXLSX(r)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// ParseCSV decodes a comma-separated export. Quoting is lenient and rows whose
// width differs from the header are padded or truncated.
func ParseCSV(r io.Reader) (*Result, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Result{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	return decode(header, cr)
}

// ParseXLSX decodes the first worksheet of an Excel workbook.
func ParseXLSX(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Result{}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	// Blank rows are skipped, as the CSV reader does for blank lines.
	var nonEmpty [][]string
	for _, cells := range rows {
		if len(cells) > 0 {
			nonEmpty = append(nonEmpty, cells)
		}
	}
	if len(nonEmpty) == 0 {
		return &Result{}, nil
	}

	header := nonEmpty[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], string(utf8BOM))
	}
	return decode(header, &sliceReader{rows: nonEmpty[1:]})
}

// decode runs the shared row pipeline over any record source.
func decode(rawHeader []string, src csvutil.Reader) (*Result, error) {
	header := normalizeHeader(rawHeader)

	dec, err := csvutil.NewDecoder(&paddingReader{src: src, width: len(header)}, header...)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	result := &Result{}
	for {
		var raw row
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode row %d: %w", result.Stats.RowsFound+1, err)
		}

		result.Stats.RowsFound++
		if rec, ok := raw.toRecord(); ok {
			result.Records = append(result.Records, rec)
		}
	}
	result.Stats.RowsAccepted = len(result.Records)
	return result, nil
}

// normalizeHeader trims names and makes repeated names unique so that the first
// occurrence of a column is the one decoded.
func normalizeHeader(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	header := make([]string, len(raw))
	for i, name := range raw {
		name = strings.TrimSpace(name)
		if seen[name] {
			name = name + "#" + strconv.Itoa(i)
		}
		seen[name] = true
		header[i] = name
	}
	return header
}

// paddingReader fits every record to the header width.
type paddingReader struct {
	src   csvutil.Reader
	width int
}

func (p *paddingReader) Read() ([]string, error) {
	rec, err := p.src.Read()
	if err != nil {
		return nil, err
	}
	switch {
	case len(rec) > p.width:
		rec = rec[:p.width]
	case len(rec) < p.width:
		padded := make([]string, p.width)
		copy(padded, rec)
		rec = padded
	}
	return rec, nil
}

// sliceReader serves in-memory rows through the csvutil.Reader interface.
type sliceReader struct {
	rows [][]string
	pos  int
}

func (s *sliceReader) Read() ([]string, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	rec := s.rows[s.pos]
	s.pos++
	return rec, nil
}
