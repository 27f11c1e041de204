// Package csv reads delimited study files into tables. Header names are kept
// as written (after trimming and Unicode NFC normalization) because study
// descriptors refer to raw columns by their exact spelling.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"vlingest/pkg/records"
)

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// ExpectedFields, when > 0, enforces a fixed field count per record. Rows
	// with a different width are skipped (soft-fail) and counted.
	ExpectedFields int

	// HeaderMap maps source header names to other keys. Only applies when
	// HasHeader is true.
	HeaderMap map[string]string

	// LowerHeaders lower-cases header names and turns spaces into underscores.
	LowerHeaders bool

	// NullTokens reads common missing-value spellings ("NA", "NaN", "<NA>",
	// "null", ...) as null in addition to the empty field.
	NullTokens bool
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// skipLogLimit caps per-row skip warnings for one input.
const skipLogLimit = 400

// Parse consumes CSV records from r and returns the parsed table along with
// the number of rows skipped due to parse errors or field-count mismatches.
// Rows shorter than the header are padded with nulls; longer rows are
// skipped.
func (p *Parser) Parse(r io.Reader) (records.Table, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1

	var (
		headers []string
		out     records.Table
		skipped int
	)

	if p.opt.HasHeader {
		h, err := cr.Read()
		if err == io.EOF {
			return out, 0, nil
		}
		if err != nil {
			return out, 0, fmt.Errorf("read csv header: %w", err)
		}
		headers = normalizeHeaders(h, p.opt)
	} else if p.opt.ExpectedFields > 0 {
		headers = make([]string, p.opt.ExpectedFields)
		for i := range headers {
			headers[i] = fmt.Sprintf("col_%d", i)
		}
	}
	out.Columns = append(out.Columns, headers...)

	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < skipLogLimit {
				zap.L().Warn("csv: skipping row", zap.Int("line", line), zap.Error(err))
			}
			skipped++
			continue
		}

		width := len(headers)
		if p.opt.ExpectedFields > 0 {
			width = p.opt.ExpectedFields
		}
		if (p.opt.ExpectedFields > 0 && len(row) != width) || (width > 0 && len(row) > width) {
			if skipped < skipLogLimit {
				zap.L().Warn("csv: skipping row: incorrect number of fields",
					zap.Int("line", line), zap.Int("expected", width), zap.Int("got", len(row)))
			}
			skipped++
			continue
		}

		rec := make(records.Record, max(len(row), len(headers)))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			key := keyFor(i, headers)
			if i >= len(headers) {
				out.AddColumn(key)
			}
			rec[key] = p.cell(val)
		}
		for i := len(row); i < len(headers); i++ {
			rec[headers[i]] = nil
		}
		out.Rows = append(out.Rows, rec)
	}
	if skipped > skipLogLimit {
		zap.L().Warn("csv: additional skipped rows not logged", zap.Int("skipped", skipped))
	}
	return out, skipped, nil
}

func (p *Parser) cell(s string) any {
	if s == "" || (p.opt.NullTokens && records.IsNullToken(s)) {
		return nil
	}
	return s
}

// keyFor returns the column key for index idx, using headers when available,
// otherwise synthesizing a "col_N" name.
func keyFor(idx int, headers []string) string {
	if idx < len(headers) && headers[idx] != "" {
		return headers[idx]
	}
	return fmt.Sprintf("col_%d", idx)
}

// normalizeHeaders trims, NFC-normalizes, and optionally maps or lower-cases
// header names. Blank names become "Unnamed: N" and repeats get a ".N" suffix
// so every column key is unique.
func normalizeHeaders(h []string, opt Options) []string {
	h = StripHeaderBOM(h)
	res := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, col := range h {
		c := norm.NFC.String(strings.TrimSpace(col))
		if m, ok := opt.HeaderMap[c]; ok {
			c = m
		} else if opt.LowerHeaders {
			c = strings.ReplaceAll(strings.ToLower(c), " ", "_")
		}
		if c == "" {
			c = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[c]; dup {
			seen[c] = n + 1
			c = c + "." + strconv.Itoa(n+1)
		} else {
			seen[c] = 0
		}
		res[i] = c
	}
	return res
}
