// Package csvfile loads outbreak datasets from delimited text files.
package csvfile

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/outbreak-report/internal/domain"
)

// sniffBytes bounds how much of the file is inspected to pick a delimiter.
const sniffBytes = 64 * 1024

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// candidateDelimiters are tried in order; the first wins ties.
var candidateDelimiters = []rune{',', ';', '\t', '|'}

// Loader reads a single delimited file into a domain.Dataset.
// It implements pipeline.Loader.
type Loader struct {
	path   string
	logger *slog.Logger
}

// NewLoader creates a Loader for the file at path.
func NewLoader(path string, logger *slog.Logger) *Loader {
	return &Loader{path: path, logger: logger}
}

// Source returns the base name of the file, used to label the report.
func (l *Loader) Source() string {
	return filepath.Base(l.path)
}

// Load reads and parses the file. Any failure is returned as a
// *domain.DataLoadError.
func (l *Loader) Load(ctx context.Context) (*domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.DataLoadError{Path: l.path, Err: err}
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, &domain.DataLoadError{Path: l.path, Err: err}
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, sniffBytes)
	comma := delimiterFor(l.path, br)

	ds, err := Parse(br, comma)
	if err != nil {
		return nil, &domain.DataLoadError{Path: l.path, Err: err}
	}

	l.logger.Info("dataset loaded",
		"path", l.path,
		"records", ds.Len(),
		"columns", len(ds.Columns()),
		"delimiter", string(comma),
	)
	return ds, nil
}

// Parse reads a header row and data rows separated by comma. Rows with more
// fields than the header are rejected; shorter rows are padded by the
// dataset. Blank lines and a leading UTF-8 BOM are skipped.
func Parse(r io.Reader, comma rune) (*domain.Dataset, error) {
	br := bufio.NewReader(r)
	if b, _ := br.Peek(len(utf8BOM)); bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(rec) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %d fields, header has %d", line, len(rec), len(header))
		}
		rows = append(rows, rec)
	}

	return domain.NewDataset(header, rows)
}

// delimiterFor picks the delimiter from the file name, falling back to the
// most frequent candidate on the first line.
func delimiterFor(path string, br *bufio.Reader) rune {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	buf, _ := br.Peek(sniffBytes) // short reads still return what is available
	return SniffDelimiter(buf)
}

// SniffDelimiter returns the candidate delimiter that occurs most often on
// the first line of sample, ignoring quoted sections. Defaults to ','.
func SniffDelimiter(sample []byte) rune {
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		sample = sample[:i]
	}

	counts := make(map[rune]int, len(candidateDelimiters))
	quoted := false
	for _, r := range string(sample) {
		if r == '"' {
			quoted = !quoted
			continue
		}
		if !quoted {
			counts[r]++
		}
	}

	best, bestCount := ',', 0
	for _, d := range candidateDelimiters {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}
	return best
}
