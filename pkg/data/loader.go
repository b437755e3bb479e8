package data

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

// Table is a header plus string rows, as read from a delimited text file.
// Every row has exactly len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	name = strings.TrimSpace(name)
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Column copies the values of column j.
func (t *Table) Column(j int) []string {
	col := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		col[i] = r[j]
	}
	return col
}

var delimiters = []rune{',', ';', '\t', '|'}

// ReadTable reads a delimited text file with a header row. The delimiter is
// chosen from the extension (.csv, .tsv) or sniffed from the header line.
func ReadTable(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	br := bufio.NewReader(file)
	var comma rune
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		comma = ','
	case ".tsv":
		comma = '\t'
	default:
		head, err := br.Peek(4096)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, err
		}
		comma = SniffDelimiter(string(head))
	}
	return ReadTableFrom(br, comma)
}

// SniffDelimiter picks the delimiter that occurs most often on the first line.
// Ties and lines without any candidate resolve to a comma.
func SniffDelimiter(text string) rune {
	line, _, _ := strings.Cut(text, "\n")
	best, bestCount := ',', 0
	for _, d := range delimiters {
		if c := strings.Count(line, string(d)); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}

// ReadTableFrom parses delimited text from r. Short rows are padded with
// empty (missing) cells; rows wider than the header are rejected.
func ReadTableFrom(r io.Reader, comma rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("data: file has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("data: reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	seen := make(map[string]struct{}, len(header))
	t := &Table{Header: make([]string, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := seen[h]; dup && h != "" {
			return nil, fmt.Errorf("data: duplicate column %q", h)
		}
		seen[h] = struct{}{}
		t.Header[i] = h
	}

	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("data: %w", err)
		}
		if len(rec) > len(t.Header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("data: line %d has %d fields, header has %d", line, len(rec), len(t.Header))
		}
		row := make([]string, len(t.Header))
		for j, v := range rec {
			row[j] = strings.TrimSpace(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Batch represents a collection of data points.
type Batch struct {
	X [][]float64
	Y []float64
}

// Batches shuffles row order with rnd and emits mini-batches of at most
// batchSize rows. Close the returned done chan to stop early.
func Batches(X [][]float64, Y []float64, batchSize int, rnd *rand.Rand) (<-chan Batch, chan struct{}) {
	out := make(chan Batch)
	done := make(chan struct{})
	if batchSize <= 0 {
		batchSize = len(X)
	}
	order := rnd.Perm(len(X))

	go func() {
		defer close(out)
		for start := 0; start < len(order); start += batchSize {
			end := min(start+batchSize, len(order))
			b := Batch{X: make([][]float64, 0, end-start), Y: make([]float64, 0, end-start)}
			for _, i := range order[start:end] {
				b.X = append(b.X, X[i])
				b.Y = append(b.Y, Y[i])
			}
			select {
			case <-done:
				return
			case out <- b:
			}
		}
	}()
	return out, done
}
