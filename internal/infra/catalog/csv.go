package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/bryanwahyu/rxscan/internal/domain/substances"
)

// Column headers as they appear in the catalog spreadsheet export.
const (
	colName       = "nombre"
	colNormalized = "nombrenormalizado"
	colCategory   = "categoria"
	colStatement  = "declaracion de seguridad"
)

// Encoding of the CSV file.
type Encoding string

const (
	EncodingLatin1 Encoding = "latin-1"
	EncodingUTF8   Encoding = "utf-8"
)

// LoadCSV reads a catalog file from disk.
func LoadCSV(path string, enc Encoding) ([]substances.Substance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseCSV(f, enc)
}

// ParseCSV decodes catalog rows. Name, category and statement columns are
// required; the normalized name column is optional. Rows without a name are skipped.
func ParseCSV(r io.Reader, enc Encoding) ([]substances.Substance, error) {
	if enc != EncodingUTF8 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog csv: empty file")
		}
		return nil, fmt.Errorf("catalog csv header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[substances.Key(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range []string{colName, colCategory, colStatement} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("catalog csv: missing column %q", col)
		}
	}

	field := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []substances.Substance
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog csv: %w", err)
		}
		s := substances.Substance{
			Name:           field(rec, colName),
			NormalizedName: field(rec, colNormalized),
			Category:       field(rec, colCategory),
			Description:    field(rec, colStatement),
		}
		if s.Name == "" {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
