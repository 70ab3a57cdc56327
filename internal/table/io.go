package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read loads a CSV file with a header row. UTF-8 (with or without BOM) is
// tried first, GBK is the fallback for bytes that are not valid UTF-8.
func Read(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// Parse decodes and parses CSV bytes. An empty input gives an empty table.
func Parse(data []byte) (*Table, error) {
	text, err := decode(data)
	if err != nil {
		return nil, err
	}

	r := newReader(bytes.NewReader(text))
	header, err := r.Read()
	if err == io.EOF {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}

	t := New(header...)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(header), len(record))
		}
		t.Append(record...)
	}
	return t, nil
}

// CountRows returns the number of data records (header excluded). Quoted
// fields spanning several lines count once; an empty file has 0 rows.
func CountRows(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	text, err := decode(data)
	if err != nil {
		return 0, err
	}

	r := newReader(bytes.NewReader(text))
	r.ReuseRecord = true

	records := 0
	for {
		_, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		records++
	}

	if records == 0 {
		return 0, nil
	}
	return records - 1, nil
}

// Write writes t to path, creating parent directories. bom prepends the
// UTF-8 byte order mark expected by spreadsheet tools.
func Write(path string, t *Table, bom bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.Encode(f, bom); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes the header and rows as CSV
func (t *Table) Encode(w io.Writer, bom bool) error {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return err
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr
}

func decode(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}
	out, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("input is neither UTF-8 nor GBK: %w", err)
	}
	return out, nil
}
